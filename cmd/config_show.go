package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"dgamaster/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  dgamaster config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded; showing defaults and environment values.")
		}
		fmt.Println("Configuration:")
		printConfig(os.Stdout, cfg)
	},
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "%s: %s\n", config.KeyBaseDir, cfg.Paths.BaseDir)
	fmt.Fprintf(w, "%s: %s\n", config.KeyOutputFile, cfg.Paths.OutputFile)
	fmt.Fprintf(w, "%s: %s\n", config.KeyDBPath, cfg.Paths.DB)
	fmt.Fprintf(w, "%s: %q\n", config.KeyFolderSuffix, cfg.Discovery.FolderSuffix)
	fmt.Fprintf(w, "%s: %s\n", config.KeyFileToken, cfg.Discovery.FileToken)
	fmt.Fprintf(w, "%s: %s\n", config.KeyExtensions, strings.Join(cfg.Discovery.Extensions, ", "))
	fmt.Fprintf(w, "%s: %d\n", config.KeyFirstDataRow, cfg.Layout.FirstDataRow)
	fmt.Fprintf(w, "%s: %s\n", config.KeyStartCol, cfg.Layout.StartCol)
	fmt.Fprintf(w, "%s: %s\n", config.KeyEndCol, cfg.Layout.EndCol)
	fmt.Fprintf(w, "%s: %s\n", config.KeyNameCells, strings.Join(cfg.Layout.NameCells, ", "))
	fmt.Fprintf(w, "%s: %s\n", config.KeyLocationCells, strings.Join(cfg.Layout.LocationCells, ", "))
	fmt.Fprintf(w, "%s: %s\n", config.KeyNameLabel, cfg.Layout.NameLabel)
	fmt.Fprintf(w, "%s: %s\n", config.KeyLocationLabel, cfg.Layout.LocationLabel)
	fmt.Fprintf(w, "%s: %d\n", config.KeyScanRows, cfg.Layout.ScanRows)
	fmt.Fprintf(w, "%s: %d\n", config.KeyScanCols, cfg.Layout.ScanCols)
	fmt.Fprintf(w, "%s: %s\n", config.KeyIndexSheetToken, cfg.Index.SheetToken)
	fmt.Fprintf(w, "%s: %s\n", config.KeyIndexNameToken, cfg.Index.NameToken)
	fmt.Fprintf(w, "%s: %s\n", config.KeyIndexLocationToken, cfg.Index.LocationToken)
	fmt.Fprintf(w, "%s: %s\n", config.KeyIndexExampleToken, cfg.Index.ExampleToken)
	fmt.Fprintf(w, "%s: %d\n", config.KeyIndexEmptyRows, cfg.Index.EmptyRowTolerance)
	fmt.Fprintf(w, "%s: %d\n", config.KeyIndexMaxRows, cfg.Index.MaxRows)
	fmt.Fprintf(w, "%s: %s\n", config.KeyReferenceTokens, strings.Join(cfg.Reference.Tokens, ", "))
	fmt.Fprintf(w, "%s: %d\n", config.KeyReferenceMinHits, cfg.Reference.MinHits)
	fmt.Fprintf(w, "%s: %d\n", config.KeyReferenceMaxOthers, cfg.Reference.MaxOthers)
	fmt.Fprintf(w, "%s: %s\n", config.KeyNoiseTokens, strings.Join(cfg.Noise.Tokens, ", "))
	fmt.Fprintf(w, "%s: %s\n", config.KeyDedupTieBreak, cfg.Dedup.TieBreak)
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
