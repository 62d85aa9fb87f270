/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"dgamaster/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dgamaster",
	Short: "Consolidate transformer DGA workbooks into one master workbook and diagnose them.",
	Long: `
**********************************************
*                 DGA MASTER                 *
**********************************************

This CLI walks the plant folders below a base directory, reads every transformer
sheet of each plant's DGA workbook, and writes one master workbook with the full
reading history ("Datos") and the latest reading per transformer ("UltimaPorTrafo").

The diagnose command classifies the latest readings (IEEE C57.104, three ratios,
IEC 60599, Duval triangle 1) and writes one sheet per method plus a summary.

Supported workbook formats:
- Excel: .xlsm, .xlsx
`,
	Example: `
  # Create configuration file
  dgamaster config create

  # Build the master workbook
  dgamaster build

  # Build and keep a snapshot in SQLite
  dgamaster build --db ./dgamaster.db

  # Diagnose the latest reading per transformer
  dgamaster diagnose

  # Export the stored history to CSV
  dgamaster export --table datos --output ./datos.csv

  # Export a per-plant summary to Excel
  dgamaster export --mode plants --output ./plantas.xlsx
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		built, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = built
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.dgamaster.yaml, then ./.dgamaster.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	built, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return built, nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".dgamaster" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dgamaster")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: dgamaster config create")
	}
}
