package root

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
)

var (
	initName    string
	initCatalog string
	initForce   bool
	initLocal   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mealprep configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a starter config at the default location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir := ""
		if !initLocal {
			dir, err := config.DefaultDir()
			if err != nil {
				return err
			}
			configDir = dir
		}
		cfgPath := config.DefaultPath(configDir)

		catalogPath := initCatalog
		if catalogPath != "" {
			abs, err := filepath.Abs(catalogPath)
			if err != nil {
				return err
			}
			catalogPath = abs
		}

		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil && !initForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", cfgPath)
		}
		if err := os.WriteFile(cfgPath, []byte(config.Starter(initName, catalogPath)), 0o644); err != nil {
			return err
		}
		logrus.WithField("path", cfgPath).Info("wrote mealprep config")
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVar(&initName, "name", "recipes", "Name for the MCP server entry")
	configInitCmd.Flags().StringVar(&initCatalog, "catalog", "", "YAML recipe catalog to serve instead of the built-in one")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config if present")
	configInitCmd.Flags().BoolVar(&initLocal, "local", false, "Write "+config.FileName+" to the working directory")
}
