package cmd

import (
	"fmt"
	"strings"
	"time"

	"dgamaster/config"
	"dgamaster/importer"
	"dgamaster/output"
	"dgamaster/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	buildBaseDir string
	buildOutput  string
	buildDBPath  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Consolidate plant DGA workbooks into the master workbook",
	Long: `Discover plant folders below paths.base_dir, read every transformer sheet that
passes the noise, identity and index gates, and write the master workbook.

The workbook contains:
- Datos: every reading, in plant and sheet order
- UltimaPorTrafo: the latest reading per (plant, transformer, location)
- empty diagnosis sheets for a later "dgamaster diagnose" run

With --db (or paths.db) the same tables are stored as a snapshot in SQLite,
replacing the previous one.`,
	Example: `
  # Build with paths from the config file
  dgamaster build

  # Override input and output paths
  dgamaster build --base-dir ./plantas --output ./out/trafos_maestro_tabla.xlsx

  # Store a snapshot for later exports
  dgamaster build --db ./dgamaster.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyPathOverrides(map[string]string{
			config.KeyBaseDir:    buildBaseDir,
			config.KeyOutputFile: buildOutput,
			config.KeyDBPath:     buildDBPath,
		})

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		started := time.Now()
		service, err := importer.NewService(*cfg, logger)
		if err != nil {
			return err
		}
		result, err := service.Run()
		if err != nil {
			return err
		}

		if err := output.WriteMaster(cfg.Paths.OutputFile, result.Datos, result.Latest); err != nil {
			return err
		}

		fmt.Printf("Build completed. Plants: %d, Plants skipped: %d, Sheets accepted: %d, Sheets skipped: %d, Rows: %d, Reference rows skipped: %d, Transformers: %d, File: %s\n",
			result.PlantsProcessed,
			result.PlantsSkipped,
			result.SheetsAccepted,
			result.SheetsSkipped,
			result.Datos.Len(),
			result.ReferenceRowsSkipped,
			result.Latest.Len(),
			cfg.Paths.OutputFile,
		)
		fmt.Printf("Dates. Sample parsed: %d, Report parsed: %d, Sample backfilled: %d, Both missing: %d\n",
			result.Dates.SampleParsed,
			result.Dates.ReportParsed,
			result.Dates.SampleBackfilled,
			result.Dates.BothMissing,
		)
		for _, mismatch := range result.SchemaMismatches {
			fmt.Printf("Header mismatch. Plant: %s, Sheet: %s, Column: %d, Expected: %q, Got: %q\n",
				mismatch.Plant, mismatch.Sheet, mismatch.Position, mismatch.Expected, mismatch.Got)
		}

		if strings.TrimSpace(cfg.Paths.DB) == "" {
			return nil
		}

		store, err := storage.OpenSQLite(cfg.Paths.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.SaveSnapshot(storage.NewBuildRun(started, result.PlantsProcessed), result.Datos, result.Latest)
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot stored. Run: %s, Rows: %d, Latest: %d, DB: %s\n", run.ID, run.RowsDatos, run.RowsLatest, cfg.Paths.DB)
		return nil
	},
}

// applyPathOverrides sets non-empty flag values on viper before the config is
// loaded, so flags win over the file.
func applyPathOverrides(overrides map[string]string) {
	for key, value := range overrides {
		if strings.TrimSpace(value) != "" {
			viper.Set(key, value)
		}
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildBaseDir, "base-dir", "", "Directory holding the plant folders (overrides paths.base_dir)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Master workbook path (overrides paths.output_file)")
	buildCmd.Flags().StringVar(&buildDBPath, "db", "", "SQLite snapshot path (overrides paths.db; empty disables the snapshot)")
}
