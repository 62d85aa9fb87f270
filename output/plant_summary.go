package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"dgamaster/reading"

	"github.com/xuri/excelize/v2"
)

type PlantSummary struct {
	Plant        string
	Transformers int
	Readings     int
	FirstSample  reading.Date
	LastSample   reading.Date
	Undated      int
}

var plantSummaryHeaders = []string{"Planta", "Transformadores", "Lecturas", "PrimeraMuestra", "UltimaMuestra", "SinFecha"}

func BuildPlantSummaries(table *reading.Table) []PlantSummary {
	if table == nil || table.Len() == 0 {
		return []PlantSummary{}
	}

	byPlant := make(map[string][]reading.Record)
	for _, record := range table.Records {
		byPlant[record.Plant] = append(byPlant[record.Plant], record)
	}

	plants := make([]string, 0, len(byPlant))
	for plant := range byPlant {
		plants = append(plants, plant)
	}
	sort.Strings(plants)

	summaries := make([]PlantSummary, 0, len(plants))
	for _, plant := range plants {
		summaries = append(summaries, summarizePlant(plant, byPlant[plant]))
	}
	return summaries
}

func summarizePlant(plant string, records []reading.Record) PlantSummary {
	summary := PlantSummary{Plant: plant, Readings: len(records)}
	transformers := make(map[reading.Key]struct{})
	for _, record := range records {
		transformers[record.Key()] = struct{}{}
		if !record.SampleDate.Valid {
			summary.Undated++
			continue
		}
		if !summary.FirstSample.Valid || record.SampleDate.Before(summary.FirstSample) {
			summary.FirstSample = record.SampleDate
		}
		if summary.LastSample.Before(record.SampleDate) {
			summary.LastSample = record.SampleDate
		}
	}
	summary.Transformers = len(transformers)
	return summary
}

func (s PlantSummary) values() []string {
	return []string{
		s.Plant,
		strconv.Itoa(s.Transformers),
		strconv.Itoa(s.Readings),
		s.FirstSample.Display(),
		s.LastSample.Display(),
		strconv.Itoa(s.Undated),
	}
}

func WritePlantSummaries(path, format string, summaries []PlantSummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writePlantSummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writePlantSummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for plant summaries: %s", format)
	}
}

func writePlantSummariesCSV(path string, summaries []PlantSummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(plantSummaryHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, summary := range summaries {
		if err := writer.Write(summary.values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func writePlantSummariesExcel(path string, summaries []PlantSummary) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for col, header := range plantSummaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, summary := range summaries {
		for col, value := range summary.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, CellValue(value)); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
