package importer

import "dgamaster/internal/textkey"

// NoiseClassifier rejects worksheets whose title marks them as an index,
// reference page, template or example.
type NoiseClassifier struct {
	tokens []string
}

func NewNoiseClassifier(tokens []string) NoiseClassifier {
	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if key := textkey.Normalize(token); key != "" {
			keys = append(keys, key)
		}
	}
	return NoiseClassifier{tokens: keys}
}

func (c NoiseClassifier) IsNoise(title string) bool {
	return textkey.ContainsAny(title, c.tokens)
}
