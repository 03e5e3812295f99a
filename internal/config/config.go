package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

// Backends.
const (
	BackendSheets = "sheets"
	BackendExcel  = "excel"
)

// PathEnv names the optional YAML file when no path is given on the command line.
const PathEnv = "SHEETDESK_CONFIG"

const envPrefix = "SHEETDESK_"

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Sheet  SheetConfig  `yaml:"sheet" envPrefix:"SHEET_"`
	Cache  CacheConfig  `yaml:"cache" envPrefix:"CACHE_"`
	Date   DateConfig   `yaml:"date" envPrefix:"DATE_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type SheetConfig struct {
	Backend         string `yaml:"backend" env:"BACKEND"`
	SpreadsheetID   string `yaml:"spreadsheet_id" env:"SPREADSHEET_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	ExcelDir        string `yaml:"excel_dir" env:"EXCEL_DIR"`
}

type CacheConfig struct {
	TTL  time.Duration `yaml:"ttl" env:"TTL"`
	Size int           `yaml:"size" env:"SIZE"`
}

// DateConfig holds the layouts of date cells, in Go reference time form.
type DateConfig struct {
	Read  string `yaml:"read" env:"READ"`
	Write string `yaml:"write" env:"WRITE"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Sheet: SheetConfig{
			Backend:  BackendSheets,
			ExcelDir: "data",
		},
		Cache: CacheConfig{
			TTL:  sheetdesk.DefaultCacheTTL,
			Size: 64,
		},
		Date: DateConfig{
			Read:  sheetdesk.DefaultDateLayout,
			Write: sheetdesk.DefaultDateLayout,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file,
// SHEETDESK_* environment variables and overrides, each layer winning over
// the previous one. An empty path falls back to $SHEETDESK_CONFIG.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	switch c.Sheet.Backend {
	case BackendSheets:
		if c.Sheet.SpreadsheetID == "" {
			errs = append(errs, errors.New("sheet.spreadsheet_id is required for the sheets backend"))
		}
	case BackendExcel:
		if c.Sheet.ExcelDir == "" {
			errs = append(errs, errors.New("sheet.excel_dir is required for the excel backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sheet.backend %q", c.Sheet.Backend))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server.port %d", c.Server.Port))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	if c.Date.Read == "" || c.Date.Write == "" {
		errs = append(errs, errors.New("date.read and date.write are required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DateFormat returns the date layouts for the sheet client.
func (c Config) DateFormat() sheetdesk.DateFormat {
	return sheetdesk.DateFormat{Read: c.Date.Read, Write: c.Date.Write}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
