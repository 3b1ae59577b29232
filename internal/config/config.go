package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the base name of the config file searched for by Load.
const FileName = "mealprep.toml"

// Config is the full mealprep configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Planner PlannerConfig `mapstructure:"planner"`
	MCP     MCPConfig     `mapstructure:"mcp"`
}

type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// CatalogConfig points at a YAML recipe catalog. An empty path selects the
// built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type PlannerConfig struct {
	DefaultDays     int `mapstructure:"default_days"`
	DefaultServings int `mapstructure:"default_servings"`
}

type MCPServerEntry struct {
	Name     string `mapstructure:"name"`
	Provider string `mapstructure:"provider"`
	Catalog  string `mapstructure:"catalog"`
}

type MCPConfig struct {
	Servers []MCPServerEntry `mapstructure:"servers"`
}

// Load reads configuration from path, or from mealprep.toml in the working
// directory and ~/.config/mealprep when path is empty. A missing file is only
// an error when path was given. MEALPREP_* environment variables override
// file values (e.g. MEALPREP_PLANNER_DEFAULT_DAYS).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("MEALPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "mealprep")
	v.SetDefault("server.version", "0.1.0")
	v.SetDefault("catalog.path", "")
	v.SetDefault("planner.default_days", 7)
	v.SetDefault("planner.default_servings", 4)
}

// normalize fills provider entries and makes catalog paths absolute.
func (c *Config) normalize() {
	if len(c.MCP.Servers) == 0 {
		c.MCP.Servers = []MCPServerEntry{{Name: "recipes", Provider: "recipes"}}
	}
	c.Catalog.Path = absPath(c.Catalog.Path)
	for i := range c.MCP.Servers {
		s := &c.MCP.Servers[i]
		if s.Provider == "" {
			s.Provider = "recipes"
		}
		if s.Name == "" {
			s.Name = s.Provider
		}
		if s.Catalog == "" {
			s.Catalog = c.Catalog.Path
		}
		s.Catalog = absPath(s.Catalog)
	}
}

// Validate checks the values that have no safe fallback.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Planner.DefaultDays < 1 || c.Planner.DefaultDays > 255 {
		return fmt.Errorf("planner.default_days must be between 1 and 255, got %d", c.Planner.DefaultDays)
	}
	if c.Planner.DefaultServings < 1 || c.Planner.DefaultServings > 255 {
		return fmt.Errorf("planner.default_servings must be between 1 and 255, got %d", c.Planner.DefaultServings)
	}
	seen := map[string]bool{}
	for _, s := range c.MCP.Servers {
		if seen[s.Name] {
			return fmt.Errorf("duplicate mcp server name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// DefaultDir is ~/.config/mealprep.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mealprep"), nil
}

// DefaultPath returns the config file location inside configDir, or inside
// the working directory when configDir is empty.
func DefaultPath(configDir string) string {
	if configDir == "" {
		wd, _ := os.Getwd()
		return filepath.Join(wd, FileName)
	}
	return filepath.Join(configDir, FileName)
}

// Starter renders a commented config file for `mealprep config init`.
func Starter(name, catalogPath string) string {
	catalogLine := `# catalog = "/path/to/recipes.yaml"`
	if catalogPath != "" {
		catalogLine = fmt.Sprintf("catalog = %q", catalogPath)
	}
	return fmt.Sprintf(`# mealprep configuration
# Uncomment and adjust options as needed

[server]
name = "mealprep"
# version = "0.1.0"

[planner]
default_days = 7
default_servings = 4

[[mcp.servers]]
name = %q
provider = "recipes"
%s
`, name, catalogLine)
}

func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
