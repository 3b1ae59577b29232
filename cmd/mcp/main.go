package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
	"github.com/hisgarden/mcp-server-meal-prep/internal/mcp"
	_ "github.com/hisgarden/mcp-server-meal-prep/internal/providers/recipes" // register recipes provider via init
)

func main() {
	var (
		cfgPath      string
		providerName string
		catalogPath  string
		debug        bool
	)
	flag.StringVarP(&cfgPath, "config", "c", os.Getenv("MEALPREP_CONFIG"), "Config file (optional)")
	flag.StringVarP(&providerName, "provider", "p", "recipes", "MCP provider to run")
	flag.StringVar(&catalogPath, "catalog", "", "YAML recipe catalog (default: built-in)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}

	logrus.WithFields(logrus.Fields{
		"provider": providerName,
		"catalog":  catalogPath,
		"days":     cfg.Planner.DefaultDays,
		"servings": cfg.Planner.DefaultServings,
	}).Info("starting MCP server")

	factory := mcp.Lookup(providerName)
	if factory == nil {
		logrus.Fatalf("unknown provider: %s (registered: %v)", providerName, mcp.Registered())
	}

	opts := map[string]any{
		"serverName":      cfg.Server.Name,
		"catalogPath":     catalogPath,
		"defaultDays":     cfg.Planner.DefaultDays,
		"defaultServings": cfg.Planner.DefaultServings,
	}

	provider, err := factory(opts)
	if err != nil {
		logrus.Fatalf("provider init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(provider, mcp.WithVersion(cfg.Server.Version))
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "mcp error: %v\n", err)
		os.Exit(1)
	}
}
