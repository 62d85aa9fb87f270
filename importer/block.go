package importer

import (
	"fmt"
	"strings"

	"dgamaster/internal/textkey"
)

// BlockLayout locates the reading block of a transformer sheet. Columns are
// 1-based and inclusive.
type BlockLayout struct {
	FirstDataRow int
	StartCol     int
	EndCol       int
}

func (l BlockLayout) Width() int {
	return l.EndCol - l.StartCol + 1
}

// ReferenceFilter classifies rows that repeat limit or calibration values
// instead of carrying a lab reading.
type ReferenceFilter struct {
	tokens    map[string]struct{}
	minHits   int
	maxOthers int
}

func NewReferenceFilter(tokens []string, minHits, maxOthers int) ReferenceFilter {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[strings.ToLower(strings.TrimSpace(token))] = struct{}{}
	}
	return ReferenceFilter{tokens: set, minHits: minHits, maxOthers: maxOthers}
}

// IsReference reports whether at least minHits non-empty cells are reference
// tokens while at most maxOthers are not.
func (f ReferenceFilter) IsReference(values []string) bool {
	hits, others := 0, 0
	for _, value := range values {
		token := strings.ToLower(strings.TrimSpace(value))
		if token == "" {
			continue
		}
		if _, ok := f.tokens[token]; ok {
			hits++
		} else {
			others++
		}
	}
	return hits >= f.minHits && others <= f.maxOthers
}

// Block is the header and data rows read from one sheet.
type Block struct {
	Headers     []string
	Rows        [][]string
	SkippedRefs int
	SentinelRow int
	LastRowRead int
}

// ReadBlock reads headers from the row above the first data row, then data
// rows until a row of blanks and zeros or the end of the sheet.
func ReadBlock(grid *Grid, layout BlockLayout, filter ReferenceFilter) Block {
	block := Block{Headers: make([]string, layout.Width())}
	for i := range block.Headers {
		header := textkey.Display(grid.Cell(layout.FirstDataRow-1, layout.StartCol+i))
		if header == "" {
			header = PlaceholderHeader(i)
		}
		block.Headers[i] = header
	}

	for row := layout.FirstDataRow; row <= grid.MaxRow(); row++ {
		block.LastRowRead = row
		values := make([]string, layout.Width())
		for i := range values {
			values[i] = strings.TrimSpace(grid.Cell(row, layout.StartCol+i))
		}

		if isSentinelRow(values) {
			block.SentinelRow = row
			break
		}
		if filter.IsReference(values) {
			block.SkippedRefs++
			continue
		}
		block.Rows = append(block.Rows, values)
	}

	return block
}

// PlaceholderHeader names a blank header cell by its 0-based position.
func PlaceholderHeader(position int) string {
	return fmt.Sprintf("Col%d", position+1)
}

func isSentinelRow(values []string) bool {
	for _, value := range values {
		key := textkey.Normalize(value)
		if key != "" && key != "0" {
			return false
		}
	}
	return true
}
