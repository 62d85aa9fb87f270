package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"
)

const (
	KeyBaseDir    = "paths.base_dir"
	KeyOutputFile = "paths.output_file"
	KeyDBPath     = "paths.db"

	KeyFolderSuffix = "discovery.folder_suffix"
	KeyFileToken    = "discovery.file_token"
	KeyExtensions   = "discovery.extensions"

	KeyFirstDataRow  = "layout.first_data_row"
	KeyStartCol      = "layout.start_col"
	KeyEndCol        = "layout.end_col"
	KeyNameCells     = "layout.name_cells"
	KeyLocationCells = "layout.location_cells"
	KeyNameLabel     = "layout.name_label"
	KeyLocationLabel = "layout.location_label"
	KeyScanRows      = "layout.scan_rows"
	KeyScanCols      = "layout.scan_cols"

	KeyIndexSheetToken    = "index.sheet_token"
	KeyIndexNameToken     = "index.name_token"
	KeyIndexLocationToken = "index.location_token"
	KeyIndexExampleToken  = "index.example_token"
	KeyIndexEmptyRows     = "index.empty_row_tolerance"
	KeyIndexMaxRows       = "index.max_rows"

	KeyReferenceTokens    = "reference.tokens"
	KeyReferenceMinHits   = "reference.min_hits"
	KeyReferenceMaxOthers = "reference.max_others"

	KeyNoiseTokens = "noise.tokens"

	KeyDedupTieBreak = "dedup.tie_break"
)

const (
	TieBreakLast  = "last"
	TieBreakFirst = "first"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	Index     IndexConfig     `mapstructure:"index"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Noise     NoiseConfig     `mapstructure:"noise"`
	Dedup     DedupConfig     `mapstructure:"dedup"`
}

type PathsConfig struct {
	BaseDir    string `mapstructure:"base_dir" validate:"required"`
	OutputFile string `mapstructure:"output_file" validate:"required"`
	DB         string `mapstructure:"db"`
}

type DiscoveryConfig struct {
	FolderSuffix string   `mapstructure:"folder_suffix" validate:"required"`
	FileToken    string   `mapstructure:"file_token" validate:"required"`
	Extensions   []string `mapstructure:"extensions" validate:"min=1,dive,required"`
}

// LayoutConfig describes where a transformer sheet keeps its identity cells
// and its reading block.
type LayoutConfig struct {
	FirstDataRow  int      `mapstructure:"first_data_row" validate:"min=2"`
	StartCol      string   `mapstructure:"start_col" validate:"required"`
	EndCol        string   `mapstructure:"end_col" validate:"required"`
	NameCells     []string `mapstructure:"name_cells"`
	LocationCells []string `mapstructure:"location_cells"`
	NameLabel     string   `mapstructure:"name_label" validate:"required"`
	LocationLabel string   `mapstructure:"location_label" validate:"required"`
	ScanRows      int      `mapstructure:"scan_rows" validate:"min=1"`
	ScanCols      int      `mapstructure:"scan_cols" validate:"min=2"`
}

type IndexConfig struct {
	SheetToken        string `mapstructure:"sheet_token" validate:"required"`
	NameToken         string `mapstructure:"name_token" validate:"required"`
	LocationToken     string `mapstructure:"location_token" validate:"required"`
	ExampleToken      string `mapstructure:"example_token"`
	EmptyRowTolerance int    `mapstructure:"empty_row_tolerance" validate:"min=1"`
	MaxRows           int    `mapstructure:"max_rows" validate:"min=1"`
}

// ReferenceConfig tunes the heuristic that tells calibration rows apart from
// lab readings.
type ReferenceConfig struct {
	Tokens    []string `mapstructure:"tokens" validate:"min=1"`
	MinHits   int      `mapstructure:"min_hits" validate:"min=1"`
	MaxOthers int      `mapstructure:"max_others" validate:"min=0"`
}

type NoiseConfig struct {
	Tokens []string `mapstructure:"tokens"`
}

type DedupConfig struct {
	TieBreak string `mapstructure:"tie_break" validate:"oneof=first last"`
}

// ColumnRange returns the 1-based inclusive column bounds of the reading block.
func (l LayoutConfig) ColumnRange() (int, int, error) {
	start, err := excelize.ColumnNameToNumber(strings.TrimSpace(l.StartCol))
	if err != nil {
		return 0, 0, fmt.Errorf("layout.start_col %q: %w", l.StartCol, err)
	}
	end, err := excelize.ColumnNameToNumber(strings.TrimSpace(l.EndCol))
	if err != nil {
		return 0, 0, fmt.Errorf("layout.end_col %q: %w", l.EndCol, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("layout.end_col %q is before layout.start_col %q", l.EndCol, l.StartCol)
	}
	return start, end, nil
}

func DefaultNoiseTokens() []string {
	return []string{
		"indice", "índice", "bdatos", "pbianual", "normas", "cromatogra",
		"fisicas trafo", "fisicoquimico", "fisicoquímico", "bpc", "furan",
		"blank", "ejemplo", "example", "plantilla", "template", "formato",
	}
}

func DefaultReferenceTokens() []string {
	return []string{"100", "-", "120", "350", "2500", "50", "65", "35", "720"}
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// Default returns a validated-shape configuration with all defaults applied
// and the given paths. Neither path is checked for existence. It panics if
// the built-in defaults cannot be decoded.
func Default(baseDir, outputFile string) Config {
	local := viper.New()
	setDefaults(local)
	local.Set(KeyBaseDir, baseDir)
	local.Set(KeyOutputFile, outputFile)

	var cfg Config
	if err := local.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("decode default config: %v", err))
	}
	return cfg
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# dgamaster configuration
paths:
  base_dir: "/srv/dga/plantas"
  output_file: "/srv/dga/out/trafos_maestro_tabla.xlsx"
  db: ""

discovery:
  folder_suffix: " - Captura de datos"
  file_token: "transfor"
  extensions: [".xlsm", ".xlsx"]

layout:
  first_data_row: 16
  start_col: "AT"
  end_col: "BH"
  name_cells: ["G9"]
  location_cells: ["H9", "G11", "C5"]

dedup:
  tie_break: "last"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints and the spreadsheet references.
func Validate(cfg Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, _, err := cfg.Layout.ColumnRange(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := validateCells("layout.name_cells", cfg.Layout.NameCells); err != nil {
		return err
	}
	if err := validateCells("layout.location_cells", cfg.Layout.LocationCells); err != nil {
		return err
	}
	for i, ext := range cfg.Discovery.Extensions {
		if !strings.HasPrefix(strings.TrimSpace(ext), ".") {
			return fmt.Errorf("validation failed: discovery.extensions[%d] %q must start with a dot", i, ext)
		}
	}
	return nil
}

func validateCells(key string, cells []string) error {
	for i, cell := range cells {
		if _, _, err := excelize.CellNameToCoordinates(strings.TrimSpace(cell)); err != nil {
			return fmt.Errorf("validation failed: %s[%d] %q is not a cell reference", key, i, cell)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, "")

	v.SetDefault(KeyFolderSuffix, " - Captura de datos")
	v.SetDefault(KeyFileToken, "transfor")
	v.SetDefault(KeyExtensions, []string{".xlsm", ".xlsx"})

	v.SetDefault(KeyFirstDataRow, 16)
	v.SetDefault(KeyStartCol, "AT")
	v.SetDefault(KeyEndCol, "BH")
	v.SetDefault(KeyNameCells, []string{"G9"})
	v.SetDefault(KeyLocationCells, []string{"H9", "G11", "C5"})
	v.SetDefault(KeyNameLabel, "Nombre")
	v.SetDefault(KeyLocationLabel, "Ubicación")
	v.SetDefault(KeyScanRows, 120)
	v.SetDefault(KeyScanCols, 200)

	v.SetDefault(KeyIndexSheetToken, "indice")
	v.SetDefault(KeyIndexNameToken, "nombre")
	v.SetDefault(KeyIndexLocationToken, "ubic")
	v.SetDefault(KeyIndexExampleToken, "ejemplo")
	v.SetDefault(KeyIndexEmptyRows, 80)
	v.SetDefault(KeyIndexMaxRows, 5000)

	v.SetDefault(KeyReferenceTokens, DefaultReferenceTokens())
	v.SetDefault(KeyReferenceMinHits, 6)
	v.SetDefault(KeyReferenceMaxOthers, 2)

	v.SetDefault(KeyNoiseTokens, DefaultNoiseTokens())

	v.SetDefault(KeyDedupTieBreak, TieBreakLast)
}
