package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aerissecure/drilldown/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View drilldown configuration",
	Long: `View drilldown configuration.

Without arguments, displays the effective configuration.
Use subcommands to create a config file or locate it.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/drilldown/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

const defaultConfigContent = `# Drilldown Configuration

# Border weight drawn between row groups
# 1 thin, 2 medium, 3 dashed, 4 dotted, 5 thick, 6 double, 7 hair
group_border_style: 1

# Per-role style overrides, merged into the built-in styles.
# Roles: title, description, index_header, column_header, index_cell,
# body_cell, link
styles:
  # title:
  #   font_size: 20
  # link:
  #   font_color: "#0563c1"

render:
  # Keep rendering the other pages when one page fails
  skip_errors: false
  # Number of pages rendered concurrently
  parallelism: 1

output:
  # xlsx, html, text or docx
  format: xlsx

logging:
  # debug, info, warn or error
  level: info
  # text or json
  format: text
  # Log file, empty logs to stderr
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	// Check if config file already exists
	if exists, _ := afero.Exists(appFs, configFile); exists {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := appFs.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(appFs, configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	_, _ = fmt.Fprintln(out, "\nSearch paths:")
	_, _ = fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	_, _ = fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	_, _ = fmt.Fprintln(out, "\nEnvironment variables: DRILLDOWN_* (e.g., DRILLDOWN_OUTPUT_FORMAT)")
	return nil
}
