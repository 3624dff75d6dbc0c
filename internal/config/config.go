package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Bad-data handling modes.
const (
	BadDataReport = "report"
	BadDataInsert = "insert"
)

const defaultPostgresPort = 5432

type Config struct {
	Database Database `yaml:"database"`
	Import   Import   `yaml:"import"`
	Output   Output   `yaml:"output"`
}

// Database enumerates exactly the recognized connection parameters.
type Database struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"` // sqlite only
}

type Import struct {
	URL              string `yaml:"url"`
	RemoveDuplicates bool   `yaml:"remove_duplicates"`
	PreAnalysis      bool   `yaml:"pre_analysis"`
	BadData          string `yaml:"bad_data"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

// ConfigDir returns the XDG config directory for csv-import.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "csv-import")
}

// DataDir returns the XDG data directory for csv-import.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "csv-import")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/csv-import/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'csv-import init' to create a default config",
		xdgConfig,
	)
}

// Load reads, parses, and validates a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults and validating
// the result.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Database: Database{
			Driver: DriverSQLite,
			Port:   defaultPostgresPort,
		},
		Import: Import{
			BadData: BadDataReport,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for the postgres driver")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for the postgres driver")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database.dbname is required for the postgres driver")
		}
		if c.Database.Port <= 0 {
			c.Database.Port = defaultPostgresPort
		}
	default:
		return fmt.Errorf("unknown database.driver %q (want %q or %q)",
			c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	switch c.Import.BadData {
	case BadDataReport, BadDataInsert:
	default:
		return fmt.Errorf("unknown import.bad_data mode %q (want %q or %q)",
			c.Import.BadData, BadDataReport, BadDataInsert)
	}

	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// GetDBPath returns the sqlite database path from config or the default
// inside the data directory.
func (c *Config) GetDBPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.GetDataDir(), "csv-import.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
