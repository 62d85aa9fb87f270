package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"dgamaster/config"
	"dgamaster/output"
	"dgamaster/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	exportFormat string
	exportMode   string
	exportTable  string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored build snapshot from SQLite to CSV/Excel",
	Long: `Export the snapshot stored by "dgamaster build --db".

Tables:
- datos: every reading
- latest: the latest reading per transformer

Modes:
- raw: export each row of the selected table
- plants: export per-plant aggregates (transformers, readings, first/last sample date)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export all readings to CSV
  dgamaster export --table datos --db ./dgamaster.db --output ./datos.csv

  # Export latest readings to Excel
  dgamaster export --table latest --db ./dgamaster.db --output ./ultimas.xlsx

  # Export per-plant summary to CSV
  dgamaster export --mode plants --db ./dgamaster.db --output ./plantas.csv

  # Force Excel format independent of extension
  dgamaster export --format excel --db ./dgamaster.db --output ./datos.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		dbPath := resolveExportDBPath(exportDBPath, viper.GetString(config.KeyDBPath))
		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		table, err := store.LoadSnapshot(strings.TrimSpace(strings.ToLower(exportTable)))
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, table); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Table: %s, Mode: raw, Format: %s, File: %s\n", table.Len(), exportTable, format, exportOutput)
		case "plants":
			summaries := output.BuildPlantSummaries(table)
			if err := output.WritePlantSummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Plants: %d, Table: %s, Mode: plants, Format: %s, File: %s\n", len(summaries), exportTable, format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, plants)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func resolveExportDBPath(flagValue, configValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if strings.TrimSpace(configValue) != "" {
		return configValue
	}
	return "./dgamaster.db"
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|plants")
	exportCmd.Flags().StringVar(&exportTable, "table", storage.TableDatos, "Snapshot table: datos|latest")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to local SQLite database (default: paths.db, then ./dgamaster.db)")

	_ = exportCmd.MarkFlagRequired("output")
}
