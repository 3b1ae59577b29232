package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
	"github.com/hisgarden/mcp-server-meal-prep/pkg/app"
)

var (
	flagConfig   string
	flagProvider string
	flagRaw      bool
	flagWidth    int
)

// rootCmd defines the base command for mealprep
var rootCmd = &cobra.Command{
	Use:   "mealprep",
	Short: "Plan meals and shopping lists from a recipe catalog",
	Long: "mealprep serves a recipe catalog over the Model Context Protocol and answers the same " +
		"questions from the terminal. Without a subcommand it starts an interactive shell (:help lists commands).",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.Shell(cmd.Context(), cmd.InOrStdin())
	},
}

// newApp loads configuration and builds the app for a command.
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	return app.New(cfg,
		app.WithOutput(cmd.OutOrStdout()),
		app.WithProvider(flagProvider),
		app.WithRaw(flagRaw),
		app.WithWidth(flagWidth),
	)
}

// Execute runs the Cobra root command.
func Execute() {
	// Load environment from .env if present and configure logger
	_ = godotenv.Load()
	level := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if level == "" && (os.Getenv("DEBUG") == "1" || strings.EqualFold(os.Getenv("DEBUG"), "true")) {
		level = "debug"
	}
	switch level {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	// stdout carries protocol frames and rendered output
	logrus.SetOutput(os.Stderr)

	// Optional file logging via LOG_FILE. If set, duplicate output to file.
	var logFile *os.File
	if lf := strings.TrimSpace(os.Getenv("LOG_FILE")); lf != "" {
		if strings.HasPrefix(lf, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				lf = filepath.Join(home, strings.TrimPrefix(lf, "~"))
			}
		}
		if err := os.MkdirAll(filepath.Dir(lf), 0o755); err == nil {
			f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				logFile = f
				logrus.SetOutput(io.MultiWriter(os.Stderr, f))
				logrus.WithField("file", lf).Info("logging to file enabled")
			} else {
				logrus.WithError(err).Warn("failed to open LOG_FILE; using stderr only")
			}
		} else {
			logrus.WithError(err).Warn("failed to create directory for LOG_FILE; using stderr only")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: ./"+config.FileName+" or ~/.config/mealprep/"+config.FileName+")")
	pf.StringVar(&flagProvider, "provider", "", "Configured MCP server entry to use (default: first entry)")
	pf.BoolVar(&flagRaw, "raw", false, "Print plain markdown instead of rendering it for the terminal")
	pf.IntVar(&flagWidth, "width", 80, "Terminal rendering width")
}
