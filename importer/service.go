package importer

import (
	"fmt"
	"strings"

	"dgamaster/config"
	"dgamaster/reading"

	"go.uber.org/zap"
)

type SheetStatus string

const (
	SheetAccepted SheetStatus = "accepted"
	SheetSkipped  SheetStatus = "skipped"
)

type SkipReason string

const (
	ReasonNone            SkipReason = ""
	ReasonNoise           SkipReason = "noise"
	ReasonMissingIdentity SkipReason = "missing_identity"
	ReasonNotInIndex      SkipReason = "not_in_index"
	ReasonUnreadable      SkipReason = "unreadable"
	ReasonEmptyBlock      SkipReason = "empty_block"
)

// SheetOutcome is the tagged result of classifying and extracting one sheet.
type SheetOutcome struct {
	Sheet    string
	Status   SheetStatus
	Reason   SkipReason
	Identity Identity
	Rows     int
	Err      error
}

// PlantOutcome records what happened to one plant folder.
type PlantOutcome struct {
	Plant        string
	Path         string
	IndexSheet   string
	IndexEntries int
	Skipped      bool
	Warning      string
	Sheets       []SheetOutcome
}

// SchemaMismatch reports a sheet whose block header differs from the
// canonical header fixed by the first accepted sheet.
type SchemaMismatch struct {
	Plant    string
	Sheet    string
	Position int
	Expected string
	Got      string
}

type Result struct {
	PlantsProcessed      int
	PlantsSkipped        int
	SheetsAccepted       int
	SheetsSkipped        int
	RowsRead             int
	ReferenceRowsSkipped int
	SchemaMismatches     []SchemaMismatch
	Plants               []PlantOutcome
	Dates                reading.ReconcileResult
	Datos                *reading.Table
	Latest               *reading.Table
}

// Opener opens a source workbook read-only.
type Opener func(path string) (Workbook, error)

func openExcel(path string) (Workbook, error) {
	return OpenExcelWorkbook(path)
}

// Service aggregates every plant workbook into the master and latest tables.
type Service struct {
	cfg      config.Config
	logger   *zap.Logger
	open     Opener
	noise    NoiseClassifier
	filter   ReferenceFilter
	block    BlockLayout
	tieBreak reading.TieBreak
}

func NewService(cfg config.Config, logger *zap.Logger) (*Service, error) {
	start, end, err := cfg.Layout.ColumnRange()
	if err != nil {
		return nil, err
	}
	block := BlockLayout{FirstDataRow: cfg.Layout.FirstDataRow, StartCol: start, EndCol: end}
	if block.Width() < len(positionalColumns) {
		return nil, fmt.Errorf("reading block %s:%s must span at least %d columns", cfg.Layout.StartCol, cfg.Layout.EndCol, len(positionalColumns))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:      cfg,
		logger:   logger,
		open:     openExcel,
		noise:    NewNoiseClassifier(cfg.Noise.Tokens),
		filter:   NewReferenceFilter(cfg.Reference.Tokens, cfg.Reference.MinHits, cfg.Reference.MaxOthers),
		block:    block,
		tieBreak: reading.ParseTieBreak(cfg.Dedup.TieBreak),
	}, nil
}

// WithOpener replaces the workbook opener.
func (s *Service) WithOpener(open Opener) *Service {
	s.open = open
	return s
}

// Run discovers plant folders under the configured base directory and
// processes them.
func (s *Service) Run() (*Result, error) {
	sources, err := DiscoverPlants(s.cfg.Paths.BaseDir, s.cfg.Discovery)
	if err != nil {
		return nil, err
	}
	return s.RunSources(sources)
}

// RunSources processes the given plants in order, then reconciles dates and
// builds the latest-per-transformer table.
func (s *Service) RunSources(sources []PlantSource) (*Result, error) {
	result := &Result{Datos: &reading.Table{}}
	var canonical *schema

	for _, source := range sources {
		plant := s.processPlant(source, result, &canonical)
		result.Plants = append(result.Plants, plant)
		if plant.Skipped {
			result.PlantsSkipped++
			continue
		}
		result.PlantsProcessed++
	}

	if canonical != nil {
		result.Datos.Schema = canonical.names
	}
	result.Dates = result.Datos.Reconcile()
	result.Latest = result.Datos.Latest(s.tieBreak)

	s.logger.Info("aggregation finished",
		zap.Int("plants", result.PlantsProcessed),
		zap.Int("plants_skipped", result.PlantsSkipped),
		zap.Int("rows", result.Datos.Len()),
		zap.Int("transformers", result.Latest.Len()),
		zap.Int("sample_dates_backfilled", result.Dates.SampleBackfilled),
	)
	return result, nil
}

func (s *Service) processPlant(source PlantSource, result *Result, canonical **schema) PlantOutcome {
	plant := PlantOutcome{Plant: source.Plant, Path: source.Path}
	logger := s.logger.With(zap.String("plant", source.Plant))

	if source.Warning != "" {
		plant.Skipped = true
		plant.Warning = source.Warning
		logger.Warn("plant skipped: folder unreadable", zap.String("folder", source.Folder), zap.String("reason", source.Warning))
		return plant
	}

	if source.Path == "" {
		plant.Skipped = true
		plant.Warning = fmt.Sprintf("%s: no transformer workbook found", source.Folder)
		logger.Warn("plant skipped: no transformer workbook", zap.String("folder", source.Folder))
		return plant
	}

	workbook, err := s.open(source.Path)
	if err != nil {
		plant.Skipped = true
		plant.Warning = err.Error()
		logger.Warn("plant skipped: workbook unreadable", zap.String("path", source.Path), zap.Error(err))
		return plant
	}
	defer workbook.Close()

	logger.Info("processing workbook", zap.String("path", source.Path))

	index, err := ReadIndex(workbook, s.cfg.Layout, s.cfg.Index)
	if err != nil {
		plant.Warning = fmt.Sprintf("index unreadable: %v", err)
		logger.Warn("index sheet unreadable", zap.Error(err))
	}
	plant.IndexSheet = index.Sheet
	plant.IndexEntries = len(index.Entries)
	if index.Sheet == "" {
		logger.Warn("workbook has no index sheet; no sheet can pass the index gate")
	}
	logger.Info("index read", zap.String("sheet", index.Sheet), zap.Int("entries", len(index.Entries)))

	for _, sheet := range workbook.SheetNames() {
		outcome := s.processSheet(source.Plant, sheet, workbook, index.Entries, result, canonical)
		if outcome.Status == SheetAccepted {
			result.SheetsAccepted++
		} else {
			result.SheetsSkipped++
			logger.Debug("sheet skipped", zap.String("sheet", sheet), zap.String("reason", string(outcome.Reason)))
		}
		plant.Sheets = append(plant.Sheets, outcome)
	}

	return plant
}

func (s *Service) processSheet(plant, sheet string, workbook Workbook, index IndexSet, result *Result, canonical **schema) SheetOutcome {
	outcome := classifySheet(sheet, workbook, s.noise, s.cfg.Layout, index)
	if outcome.Status != SheetAccepted {
		return outcome
	}

	grid, err := workbook.Grid(sheet)
	if err != nil {
		return skipped(sheet, ReasonUnreadable, err)
	}

	block := ReadBlock(grid, s.block, s.filter)
	result.ReferenceRowsSkipped += block.SkippedRefs
	if len(block.Rows) == 0 {
		outcome.Status = SheetSkipped
		outcome.Reason = ReasonEmptyBlock
		return outcome
	}

	if *canonical == nil {
		*canonical = newSchema(block.Headers)
	} else if mismatch, ok := (*canonical).compare(block.Headers); ok {
		mismatch.Plant = plant
		mismatch.Sheet = sheet
		result.SchemaMismatches = append(result.SchemaMismatches, mismatch)
		s.logger.Warn("sheet header differs from canonical header",
			zap.String("plant", plant),
			zap.String("sheet", sheet),
			zap.Int("position", mismatch.Position),
			zap.String("expected", mismatch.Expected),
			zap.String("got", mismatch.Got),
		)
	}

	for _, values := range block.Rows {
		result.Datos.Append((*canonical).record(plant, outcome.Identity, values))
	}
	outcome.Rows = len(block.Rows)
	result.RowsRead += len(block.Rows)
	return outcome
}

// classifySheet is the gating stage: noise title, identity, index membership.
func classifySheet(sheet string, workbook Workbook, noise NoiseClassifier, layout config.LayoutConfig, index IndexSet) SheetOutcome {
	if noise.IsNoise(sheet) {
		return skipped(sheet, ReasonNoise, nil)
	}

	grid, err := workbook.Grid(sheet)
	if err != nil {
		return skipped(sheet, ReasonUnreadable, err)
	}

	identity := ReadIdentity(grid, layout)
	if !identity.Complete() {
		outcome := skipped(sheet, ReasonMissingIdentity, nil)
		outcome.Identity = identity
		return outcome
	}
	if !index.Contains(identity.Name, identity.Location) {
		outcome := skipped(sheet, ReasonNotInIndex, nil)
		outcome.Identity = identity
		return outcome
	}

	return SheetOutcome{Sheet: sheet, Status: SheetAccepted, Identity: identity}
}

func skipped(sheet string, reason SkipReason, err error) SheetOutcome {
	return SheetOutcome{Sheet: sheet, Status: SheetSkipped, Reason: reason, Err: err}
}

// The first three block columns carry company, sample date and report date.
var positionalColumns = []string{reading.ColumnCompany, reading.ColumnSampleDate, reading.ColumnReportDate}

// schema is the canonical gas tail: output names and their block positions.
type schema struct {
	headers   []string
	names     []string
	positions []int
}

func newSchema(headers []string) *schema {
	s := &schema{headers: append([]string(nil), headers...)}
	seen := make(map[string]int)
	for i := len(positionalColumns); i < len(headers); i++ {
		header := headers[i]
		if strings.Contains(header, "%") {
			continue
		}
		name := header
		if count := seen[header]; count > 0 {
			name = fmt.Sprintf("%s (%d)", header, count+1)
		}
		seen[header]++
		s.names = append(s.names, name)
		s.positions = append(s.positions, i)
	}
	return s
}

// compare returns the first header position that differs from the canonical
// header.
func (s *schema) compare(headers []string) (SchemaMismatch, bool) {
	for i := range s.headers {
		got := ""
		if i < len(headers) {
			got = headers[i]
		}
		if got != s.headers[i] {
			return SchemaMismatch{Position: i + 1, Expected: s.headers[i], Got: got}, true
		}
	}
	return SchemaMismatch{}, false
}

func (s *schema) record(plant string, identity Identity, values []string) reading.Record {
	gases := make([]string, len(s.positions))
	for i, position := range s.positions {
		if position < len(values) {
			gases[i] = values[position]
		}
	}
	return reading.Record{
		Plant:       plant,
		Transformer: identity.Name,
		Location:    identity.Location,
		Company:     values[0],
		SampleRaw:   values[1],
		ReportRaw:   values[2],
		Gases:       gases,
	}
}
