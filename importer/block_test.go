package importer

import (
	"testing"

	"dgamaster/config"
)

func defaultFilter() ReferenceFilter {
	return NewReferenceFilter(config.DefaultReferenceTokens(), 6, 2)
}

func TestReferenceFilterBoundary(t *testing.T) {
	filter := defaultFilter()

	tests := []struct {
		name   string
		values []string
		want   bool
	}{
		{name: "six hits two others", values: []string{"100", "120", "350", "2500", "50", "65", "12.5", "Lab"}, want: true},
		{name: "five hits three others", values: []string{"100", "120", "350", "2500", "50", "12.5", "Lab", "3"}, want: false},
		{name: "six hits three others", values: []string{"100", "120", "350", "2500", "50", "65", "1", "2", "3"}, want: false},
		{name: "blanks ignored", values: []string{"", "100", " ", "-", "120", "350", "", "720", "35"}, want: true},
		{name: "regular reading", values: []string{"Lab A", "15/01/2023", "", "10", "20", "5", "3", "0"}, want: false},
		{name: "case and spacing", values: []string{" 100 ", "120", "350", "2500", "50", "65"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.IsReference(tt.values); got != tt.want {
				t.Fatalf("IsReference(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestReadBlockStopsAtSentinelButNotAtReference(t *testing.T) {
	grid := gridFromRows(
		[]string{"", "", "", "H2", "CH4"},
		[]string{"Lab", "01/01/2023", "", "10", "20"},
		[]string{"", "", "", "100", "120"},
		[]string{"100", "120", "350", "2500", "50", "65"},
		[]string{"Lab", "01/02/2023", "", "11", "21"},
		[]string{"0", "", "0", "0", " 0 "},
		[]string{"Lab", "01/03/2023", "", "12", "22"},
	)
	layout := BlockLayout{FirstDataRow: 2, StartCol: 1, EndCol: 6}

	block := ReadBlock(grid, layout, defaultFilter())

	if len(block.Rows) != 3 {
		t.Fatalf("expected 3 rows before the sentinel, got %d: %v", len(block.Rows), block.Rows)
	}
	if block.SkippedRefs != 1 {
		t.Fatalf("expected one reference row skipped, got %d", block.SkippedRefs)
	}
	if block.SentinelRow != 6 {
		t.Fatalf("expected sentinel at row 6, got %d", block.SentinelRow)
	}
	if block.Rows[2][1] != "01/02/2023" {
		t.Fatalf("unexpected third row %v", block.Rows[2])
	}
}

func TestReadBlockHeaderPlaceholders(t *testing.T) {
	grid := gridFromRows(
		[]string{"", "Fecha", "", "H2"},
		[]string{"Lab", "01/01/2023", "", "10"},
	)
	block := ReadBlock(grid, BlockLayout{FirstDataRow: 2, StartCol: 1, EndCol: 5}, defaultFilter())

	want := []string{"Col1", "Fecha", "Col3", "H2", "Col5"}
	for i, header := range want {
		if block.Headers[i] != header {
			t.Fatalf("header %d: expected %q, got %q", i, header, block.Headers[i])
		}
	}
	if len(block.Rows) != 1 || len(block.Rows[0]) != 5 {
		t.Fatalf("expected one row padded to block width, got %v", block.Rows)
	}
}

func TestReadBlockRespectsColumnOffset(t *testing.T) {
	grid := gridFromCells(map[string]string{
		"B1": "ignored", "C1": "H2", "D1": "CH4",
		"B2": "x", "C2": "5", "D2": "7",
	})
	block := ReadBlock(grid, BlockLayout{FirstDataRow: 2, StartCol: 3, EndCol: 4}, defaultFilter())

	if len(block.Headers) != 2 || block.Headers[0] != "H2" || block.Headers[1] != "CH4" {
		t.Fatalf("unexpected headers %v", block.Headers)
	}
	if len(block.Rows) != 1 || block.Rows[0][0] != "5" || block.Rows[0][1] != "7" {
		t.Fatalf("unexpected rows %v", block.Rows)
	}
}
