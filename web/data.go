package web

import (
	"sort"
	"strings"

	"dgamaster/diagnosis"
	"dgamaster/reading"
)

// Cell is one diagnosis value together with its badge class.
type Cell struct {
	Text  string
	Class string
}

type SummaryRowView struct {
	Plant       string
	Transformer string
	Location    string
	SampleDate  string
	IEEE        Cell
	Ratios      Cell
	IEC         Cell
	Duval       Cell
	Final       Cell
	Confidence  int
	DetailLink  string
}

// FinalCount is the number of transformers with one final label.
type FinalCount struct {
	Label string
	Class string
	Count int
}

type SummaryView struct {
	Plants   []string
	Selected string
	Rows     []SummaryRowView
	Counts   []FinalCount
}

type TransformerView struct {
	Key      reading.Key
	Row      SummaryRowView
	R1       string
	R2       string
	R3       string
	Gases    []diagnosis.Gas
	HasGases bool
}

// BuildSummaryView lists the summary rows of one plant, or of all plants
// when plant is empty.
func BuildSummaryView(snapshot *diagnosis.Snapshot, plant string) SummaryView {
	plant = strings.TrimSpace(plant)
	view := SummaryView{Selected: plant}

	plants := make(map[string]bool)
	counts := make(map[string]int)
	for _, row := range snapshot.Summary {
		plants[row.Key.Plant] = true
		if plant != "" && row.Key.Plant != plant {
			continue
		}
		view.Rows = append(view.Rows, buildRowView(row))
		counts[row.Final]++
	}

	for name := range plants {
		view.Plants = append(view.Plants, name)
	}
	sort.Strings(view.Plants)

	for label, count := range counts {
		view.Counts = append(view.Counts, FinalCount{
			Label: label,
			Class: badgeClass(diagnosis.ColumnColor(diagnosis.ColumnFinal, label)),
			Count: count,
		})
	}
	sort.Slice(view.Counts, func(i, j int) bool {
		if view.Counts[i].Count != view.Counts[j].Count {
			return view.Counts[i].Count > view.Counts[j].Count
		}
		return view.Counts[i].Label < view.Counts[j].Label
	})
	return view
}

// BuildTransformerView returns the detail of one transformer.
func BuildTransformerView(snapshot *diagnosis.Snapshot, key reading.Key) (TransformerView, bool) {
	row, ok := snapshot.Find(key)
	if !ok {
		return TransformerView{}, false
	}
	gases := snapshot.Gases[key]
	return TransformerView{
		Key:      key,
		Row:      buildRowView(row),
		R1:       row.R1,
		R2:       row.R2,
		R3:       row.R3,
		Gases:    gases,
		HasGases: len(gases) > 0,
	}, true
}

func buildRowView(row diagnosis.SummaryRow) SummaryRowView {
	return SummaryRowView{
		Plant:       row.Key.Plant,
		Transformer: row.Key.Transformer,
		Location:    row.Key.Location,
		SampleDate:  row.SampleDate,
		IEEE:        newCell(diagnosis.ColumnIEEE, row.IEEE),
		Ratios:      newCell(diagnosis.ColumnRatios, row.Ratios),
		IEC:         newCell(diagnosis.ColumnIEC, row.IEC),
		Duval:       newCell(diagnosis.ColumnDuval, row.Duval),
		Final:       newCell(diagnosis.ColumnFinal, row.Final),
		Confidence:  row.Confidence,
		DetailLink:  transformerLink(row.Key),
	}
}

func newCell(column, label string) Cell {
	return Cell{Text: label, Class: badgeClass(diagnosis.ColumnColor(column, label))}
}

func badgeClass(color string) string {
	switch color {
	case diagnosis.ColorGreen:
		return "badge-ok"
	case diagnosis.ColorYellow:
		return "badge-warn"
	case diagnosis.ColorRed:
		return "badge-bad"
	case diagnosis.ColorBlue:
		return "badge-info"
	default:
		return "badge-none"
	}
}
