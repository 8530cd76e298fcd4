package cmd

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aerissecure/drilldown/internal/config"
	"github.com/aerissecure/drilldown/internal/logging"
)

// appFs is the filesystem books, outputs and log files live on.
var appFs afero.Fs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "drilldown",
	Short: "Render linked drilldown reports",
	Long: `Drilldown renders a book of linked pages, each a titled table with
hierarchical row labels, into a navigable workbook. Repeated row labels are
merged, group boundaries get a border, and cells can link to other pages.

Books are written as xlsx workbooks, standalone HTML, Word documents or a
plain text preview.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/drilldown/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()
	viper.SetFs(appFs)

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DRILLDOWN")
	// e.g., DRILLDOWN_RENDER_SKIP_ERRORS for render.skip_errors
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds the logger described by cfg. Without a log file it
// writes to stderr. The returned func releases the log file.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	if cfg.Logging.File == "" {
		return logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format), func() {}, nil
	}
	logger, f, err := logging.NewFile(appFs, cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = f.Close() }, nil
}
