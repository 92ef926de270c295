package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geuryroustand/nail-design-try-on/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Inspect and generate nailtry configuration files.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a configuration file populated with the default settings.

The file can then be edited and picked up automatically from the working
directory, ~/.config/nailtry/, or passed explicitly with --config.

Examples:
  nailtry config init
  nailtry config init --output /etc/nailtry/nailtry.yaml`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(output); err == nil {
		if !force {
			return fmt.Errorf("refusing to overwrite existing file %s (use --force)", output)
		}
		if err := os.Remove(output); err != nil {
			return fmt.Errorf("failed to replace %s: %w", output, err)
		}
	}
	if err := config.WriteDefault(output); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	cmd.Printf("Wrote default configuration to %s\n", output)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
		cmd.Printf("# loaded from %s\n", used)
	}
	cmd.Print(string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().StringP("output", "o", "nailtry.yaml", "path of the file to write")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
