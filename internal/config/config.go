package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
// Values come from config.yaml when present, overridden by SVP_* environment
// variables. There are no domain CLI flags; everything is file-path based.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/svpulse.log"`
}

// PathsConfig contains the base directories for input data and batch output.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ResultsDir string `yaml:"results_dir" envconfig:"RESULTS_DIR" default:"results"`
}

// DataConfig pins the reporting window and forecast target year.
type DataConfig struct {
	FirstYear  int `yaml:"first_year" envconfig:"FIRST_YEAR" default:"2020"`
	LastYear   int `yaml:"last_year" envconfig:"LAST_YEAR" default:"2024"`
	TargetYear int `yaml:"target_year" envconfig:"TARGET_YEAR" default:"2030"`
}

// Years returns the configured reporting years in order.
func (d DataConfig) Years() []int {
	years := make([]int, 0, d.LastYear-d.FirstYear+1)
	for y := d.FirstYear; y <= d.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// Load loads configuration from an optional config file and the environment.
// Environment variables take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("SVP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks the configuration for obvious mistakes.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Data.FirstYear > c.Data.LastYear {
		return fmt.Errorf("first year %d after last year %d", c.Data.FirstYear, c.Data.LastYear)
	}
	if c.Data.TargetYear < c.Data.LastYear {
		return fmt.Errorf("forecast target year %d before last observed year %d", c.Data.TargetYear, c.Data.LastYear)
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/svpulse.log"
	}
	return nil
}

// findConfigFile checks the common config file locations.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration used by tests and the batch tool.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/svpulse.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ResultsDir: "results",
		},
		Data: DataConfig{
			FirstYear:  2020,
			LastYear:   2024,
			TargetYear: 2030,
		},
	}
}
