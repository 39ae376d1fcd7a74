package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/qrscan/internal/config"
	"github.com/MeKo-Tech/qrscan/internal/version"
)

// app carries the configuration shared by all subcommands of one root command.
type app struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
}

// NewRootCommand builds the qrscan command tree.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoaderWithViper(viper.New())}

	rootCmd := &cobra.Command{
		Use:   "qrscan",
		Short: "Find and decode QR codes in invoices, scans and camera frames",
		Long: `qrscan locates a QR code in an image, a raw luminance frame or the images
embedded in a PDF, using a staged strategy: the full frame first, then the
top-right region where invoices usually carry their payment code, then a
contrast-enhanced retry.

Examples:
  qrscan image invoice.png
  qrscan raw --width 640 --height 480 frame.y
  qrscan batch scans/ --recursive --format csv --output codes.csv
  qrscan pdf invoice.pdf --pages 1-2
  qrscan serve --port 8080`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			}
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/qrscan, /etc/qrscan)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("version", false, "print version information and exit")

	v := a.loader.GetViper()
	_ = v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))

	rootCmd.AddCommand(
		newImageCmd(a),
		newRawCmd(a),
		newBatchCmd(a),
		newPDFCmd(a),
		newCleanCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and installs the JSON logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)

	slog.Debug("configuration loaded", "file", a.loader.GetConfigFileUsed(), "log_level", cfg.LogLevel)
	return nil
}

func logLevel(cfg *config.Config) slog.Level {
	// Verbose wins over log_level
	if cfg.Verbose {
		return slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
