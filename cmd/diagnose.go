package cmd

import (
	"errors"
	"fmt"

	"dgamaster/config"
	"dgamaster/diagnosis"

	"github.com/spf13/cobra"
)

var diagnoseInput string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Classify the latest reading per transformer",
	Long: `Read "UltimaPorTrafo" from the master workbook and write one sheet per method:
- Estados: IEEE C57.104 gas limits
- Diag_3Ratios: three-ratio method
- Diag_IEC: IEC 60599 gas limits
- Diag_Duval: Duval triangle 1
- Resumen: all methods per transformer with a final label

A method whose gas columns are missing is skipped and its sheet is left as it was.
The command still writes the other sheets and exits with an error listing the
skipped methods.`,
	Example: `
  # Diagnose the workbook from paths.output_file
  dgamaster diagnose

  # Diagnose another workbook
  dgamaster diagnose --input ./out/trafos_maestro_tabla.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyPathOverrides(map[string]string{config.KeyOutputFile: diagnoseInput})

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		report, runErr := diagnosis.Run(cfg.Paths.OutputFile, logger)
		var missing *diagnosis.MissingResourceError
		if errors.As(runErr, &missing) {
			return fmt.Errorf("%w (run \"dgamaster build\" first)", runErr)
		}
		if report == nil {
			return runErr
		}

		for _, stage := range report.Stages {
			if stage.Err != nil {
				fmt.Printf("Stage skipped. Sheet: %s, Reason: %v\n", stage.Sheet, stage.Err)
				continue
			}
			fmt.Printf("Stage written. Sheet: %s, Rows: %d\n", stage.Sheet, stage.Rows)
		}
		fmt.Printf("Diagnose completed. Transformers: %d, Stages failed: %d, Summary rows: %d, File: %s\n",
			report.InputRows,
			report.Failed(),
			report.SummaryRows,
			report.Path,
		)
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().StringVarP(&diagnoseInput, "input", "i", "", "Master workbook path (overrides paths.output_file)")
}
