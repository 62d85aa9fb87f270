package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dgamaster configuration file values.",
	Long: `Create, edit, display, and delete the dgamaster configuration file.

The configuration stores paths and the workbook layout heuristics:
- paths.base_dir / paths.output_file / paths.db
- discovery.folder_suffix / discovery.file_token / discovery.extensions
- layout.* (reading block, identity cells and labels)
- index.*, reference.*, noise.tokens, dedup.tie_break`,
	Example: `
  # Create default config in $HOME/.dgamaster.yaml
  dgamaster config create

  # Show active config and source file
  dgamaster config show

  # Open active config in editor (creates example if missing)
  dgamaster config edit

  # Delete active config file
  dgamaster config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
