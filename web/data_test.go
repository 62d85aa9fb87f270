package web

import (
	"testing"

	"dgamaster/diagnosis"
	"dgamaster/reading"
)

func testSnapshot() *diagnosis.Snapshot {
	normal := reading.Key{Plant: "Monterrey", Transformer: "TR-A", Location: "Molino"}
	critical := reading.Key{Plant: "Monterrey", Transformer: "TR-B", Location: "Molino"}
	caution := reading.Key{Plant: "Tepeaca", Transformer: "TR-09", Location: "Horno"}
	return &diagnosis.Snapshot{
		Summary: []diagnosis.SummaryRow{
			{Key: normal, IEEE: diagnosis.Normal, Ratios: diagnosis.Normal, Final: "Normal (100%)", Confidence: 100},
			{Key: critical, IEEE: diagnosis.Critico, Ratios: diagnosis.RatiosT1, Duval: diagnosis.DuvalT2, Final: "Crítico (100%)", Confidence: 100},
			{Key: caution, IEEE: diagnosis.Preocupante, Ratios: diagnosis.RatiosDT, R1: "3", Duval: diagnosis.DuvalPD, Final: "Preocupante (85%)", Confidence: 85},
		},
		Gases: map[reading.Key][]diagnosis.Gas{
			caution: {{Name: "H2", Value: "20"}, {Name: "CH4", Value: ""}},
		},
	}
}

func TestBuildSummaryView_AllPlants(t *testing.T) {
	view := BuildSummaryView(testSnapshot(), "")

	if len(view.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(view.Rows))
	}
	if len(view.Plants) != 2 || view.Plants[0] != "Monterrey" || view.Plants[1] != "Tepeaca" {
		t.Fatalf("unexpected plants: %v", view.Plants)
	}
	if len(view.Counts) != 3 {
		t.Fatalf("expected 3 final labels, got %v", view.Counts)
	}

	critical := view.Rows[1]
	if critical.IEEE.Class != "badge-bad" || critical.Ratios.Class != "badge-ok" || critical.Duval.Class != "badge-warn" {
		t.Fatalf("unexpected badge classes: %+v", critical)
	}
	if got := view.Rows[2].Duval.Class; got != "badge-info" {
		t.Fatalf("expected PD badge-info, got %q", got)
	}
	if got := view.Rows[0].Duval.Class; got != "badge-none" {
		t.Fatalf("expected empty duval to stay uncolored, got %q", got)
	}
}

func TestBuildSummaryView_FiltersPlant(t *testing.T) {
	view := BuildSummaryView(testSnapshot(), " Tepeaca ")

	if view.Selected != "Tepeaca" {
		t.Fatalf("expected trimmed selection, got %q", view.Selected)
	}
	if len(view.Rows) != 1 || view.Rows[0].Transformer != "TR-09" {
		t.Fatalf("unexpected rows: %+v", view.Rows)
	}
	if len(view.Plants) != 2 {
		t.Fatalf("plant list must not depend on the filter, got %v", view.Plants)
	}
	if len(view.Counts) != 1 || view.Counts[0].Label != "Preocupante (85%)" || view.Counts[0].Class != "badge-warn" {
		t.Fatalf("unexpected counts: %+v", view.Counts)
	}
}

func TestBuildTransformerView(t *testing.T) {
	snapshot := testSnapshot()

	detail, ok := BuildTransformerView(snapshot, reading.Key{Plant: "Tepeaca", Transformer: "TR-09", Location: "Horno"})
	if !ok {
		t.Fatalf("expected transformer to be found")
	}
	if !detail.HasGases || len(detail.Gases) != 2 || detail.R1 != "3" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Row.DetailLink != "/transformer?location=Horno&plant=Tepeaca&transformer=TR-09" {
		t.Fatalf("unexpected detail link: %q", detail.Row.DetailLink)
	}

	detail, ok = BuildTransformerView(snapshot, reading.Key{Plant: "Monterrey", Transformer: "TR-A", Location: "Molino"})
	if !ok || detail.HasGases {
		t.Fatalf("expected transformer without gases, got %+v", detail)
	}

	if _, ok := BuildTransformerView(snapshot, reading.Key{Plant: "Monterrey", Transformer: "TR-Z"}); ok {
		t.Fatalf("expected unknown transformer to be missing")
	}
}
