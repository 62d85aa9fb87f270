package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dgamaster/reading"

	"github.com/xuri/excelize/v2"
)

func sampleTable() *reading.Table {
	table := &reading.Table{Schema: []string{"H2", "CH4"}}
	table.Append(reading.Record{Plant: "Monterrey", Transformer: "TR-01", Location: "Molino", Company: "Lab", SampleRaw: "15/01/2023", Gases: []string{"10", "x"}})
	table.Append(reading.Record{Plant: "Monterrey", Transformer: "TR-01", Location: "Molino", Company: "Lab", SampleRaw: "01/06/2023", Gases: []string{"11", ""}})
	table.Append(reading.Record{Plant: "Tepeaca", Transformer: "TR-09", Location: "Horno", Company: "Lab", ReportRaw: "15/03/2024", Gases: []string{"12.5", "3"}})
	table.Append(reading.Record{Plant: "Tepeaca", Transformer: "TR-10", Location: "Horno", Company: "Lab", Gases: []string{"1", "2"}})
	table.Reconcile()
	return table
}

func TestWriteMaster_WritesSheetsAndTables(t *testing.T) {
	datos := sampleTable()
	latest := datos.Latest(reading.KeepLast)
	path := filepath.Join(t.TempDir(), "out", "maestro.xlsx")

	if err := WriteMaster(path, datos, latest); err != nil {
		t.Fatalf("write master: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	want := append([]string{SheetDatos, SheetLatest}, PlaceholderSheets...)
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheet %d to be %q, got %q", i, want[i], sheets[i])
		}
	}

	rows, err := file.GetRows(SheetDatos)
	if err != nil {
		t.Fatalf("read datos: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Planta" || rows[0][5] != "Compañía de Análisis" || rows[0][6] != "H2" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][3] != "15-Jan-23" || rows[3][3] != "15-Mar-24" || rows[4][3] != "NA" {
		t.Fatalf("unexpected sample dates: %q %q %q", rows[1][3], rows[3][3], rows[4][3])
	}
	if rows[2][7] != "NA" {
		t.Fatalf("expected empty gas to render as NA, got %q", rows[2][7])
	}

	tables, err := file.GetTables(SheetDatos)
	if err != nil {
		t.Fatalf("get tables: %v", err)
	}
	if len(tables) != 1 || tables[0].Name != TableDatos || tables[0].Range != "A1:H5" {
		t.Fatalf("unexpected tables on Datos: %+v", tables)
	}

	latestRows, err := file.GetRows(SheetLatest)
	if err != nil {
		t.Fatalf("read latest: %v", err)
	}
	if len(latestRows) != 4 {
		t.Fatalf("expected header plus 3 transformers, got %d", len(latestRows))
	}
	if latestRows[1][3] != "01-Jun-23" {
		t.Fatalf("expected latest TR-01 reading, got %v", latestRows[1])
	}

	estados, err := file.GetRows("Estados")
	if err != nil {
		t.Fatalf("read Estados: %v", err)
	}
	if len(estados) != 1 || estados[0][3] != "Diagnóstico Estados" {
		t.Fatalf("unexpected placeholder sheet %v", estados)
	}
}

func TestWriteMaster_EmptyTablesStillWriteHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteMaster(path, &reading.Table{}, &reading.Table{}); err != nil {
		t.Fatalf("write master: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(SheetDatos)
	if err != nil {
		t.Fatalf("read datos: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != len(reading.FixedColumns) {
		t.Fatalf("expected only the fixed header, got %v", rows)
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	writer, err := WriterForFormat("CSV")
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	if err := writer.Write(path, sampleTable()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 csv rows, got %d", len(records))
	}
	if records[3][0] != "Tepeaca" || records[3][6] != "12.5" {
		t.Fatalf("unexpected csv row %v", records[3])
	}
}

func TestWriterForFormatRejectsUnknown(t *testing.T) {
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCellValue(t *testing.T) {
	if got, ok := CellValue("12.5").(float64); !ok || got != 12.5 {
		t.Fatalf("expected float, got %#v", CellValue("12.5"))
	}
	for _, raw := range []string{"NA", "", "inf", "12,5"} {
		if _, ok := CellValue(raw).(string); !ok {
			t.Fatalf("expected %q to stay text", raw)
		}
	}
}

func TestBuildPlantSummaries(t *testing.T) {
	summaries := BuildPlantSummaries(sampleTable())
	if len(summaries) != 2 {
		t.Fatalf("expected 2 plants, got %d", len(summaries))
	}

	monterrey := summaries[0]
	if monterrey.Plant != "Monterrey" || monterrey.Transformers != 1 || monterrey.Readings != 2 {
		t.Fatalf("unexpected summary %+v", monterrey)
	}
	if !monterrey.FirstSample.Time.Equal(time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first sample %v", monterrey.FirstSample)
	}
	if monterrey.LastSample.Display() != "01-Jun-23" {
		t.Fatalf("unexpected last sample %v", monterrey.LastSample.Display())
	}

	tepeaca := summaries[1]
	if tepeaca.Transformers != 2 || tepeaca.Undated != 1 || tepeaca.LastSample.Display() != "15-Mar-24" {
		t.Fatalf("unexpected summary %+v", tepeaca)
	}
}

func TestWritePlantSummaries(t *testing.T) {
	dir := t.TempDir()
	summaries := BuildPlantSummaries(sampleTable())

	if err := WritePlantSummaries(filepath.Join(dir, "plants.csv"), "csv", summaries); err != nil {
		t.Fatalf("write csv summaries: %v", err)
	}
	if err := WritePlantSummaries(filepath.Join(dir, "plants.xlsx"), "excel", summaries); err != nil {
		t.Fatalf("write excel summaries: %v", err)
	}
	if err := WritePlantSummaries(filepath.Join(dir, "plants.pdf"), "pdf", summaries); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
