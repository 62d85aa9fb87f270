package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by dgamaster.

The --configFile path wins over the discovered file. If no configuration file
is active, the command returns an error.`,
	Example: `
  # Delete active config
  dgamaster config delete

  # Delete config at a custom path
  dgamaster --configFile ./custom-dgamaster.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := activeConfigPath(cfgFile, viper.ConfigFileUsed())
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		if err := os.Remove(configPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("configuration file does not exist: %s", configPath)
			}
			return fmt.Errorf("error deleting configuration file: %w", err)
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func activeConfigPath(configFileFlag, configFileUsed string) string {
	if strings.TrimSpace(configFileFlag) != "" {
		return configFileFlag
	}
	return strings.TrimSpace(configFileUsed)
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
