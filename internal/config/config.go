package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/maisquelle/maisquelle/internal/models"
)

// envKeyReplacer maps nested keys to env var form: mysql.password
// becomes MAISQUELLE_MYSQL_PASSWORD.
var envKeyReplacer = strings.NewReplacer(".", "_")

// MySQLConfig holds target server connection settings
type MySQLConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	Retries        int           `mapstructure:"retries"`
}

// AnthropicConfig holds reasoning service settings. An empty API key
// disables the service entirely.
type AnthropicConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config holds all configuration for Maisquelle
type Config struct {
	// Target server
	MySQL MySQLConfig `mapstructure:"mysql"`

	// Inspection depth (basic, advanced, expert)
	Level string `mapstructure:"level"`

	// Explicit check selection; replaces the level defaults when set
	EnabledChecks []string `mapstructure:"enabled_checks"`

	// Expensive table statistics need this on top of expert level
	EnableTables bool `mapstructure:"enable_tables"`

	// Path to a thresholds YAML file; empty uses the built-in rules
	ThresholdsFile string `mapstructure:"thresholds_file"`

	// Output format (text, json, both)
	Format string `mapstructure:"format"`

	// Write the report to this file instead of stdout
	Output string `mapstructure:"output"`

	// Persist reports under storage_dir/runs
	Store      bool   `mapstructure:"store"`
	StorageDir string `mapstructure:"storage_dir"`

	// Exit non-zero when findings at or above this severity exist.
	// Empty disables the gate.
	FailSeverity string `mapstructure:"fail_severity"`

	// Reasoning service
	Anthropic AnthropicConfig `mapstructure:"anthropic"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		MySQL: MySQLConfig{
			Host:           "localhost",
			Port:           3306,
			User:           "root",
			ConnectTimeout: 5 * time.Second,
			QueryTimeout:   30 * time.Second,
			Retries:        3,
		},
		Level:      "basic",
		Format:     "text",
		StorageDir: ".maisquelle",
		Anthropic: AnthropicConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/maisquelle.yaml or ./maisquelle.yaml)
// 3. Environment variables (MAISQUELLE_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("mysql.host", defaults.MySQL.Host)
	v.SetDefault("mysql.port", defaults.MySQL.Port)
	v.SetDefault("mysql.user", defaults.MySQL.User)
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.connect_timeout", defaults.MySQL.ConnectTimeout)
	v.SetDefault("mysql.query_timeout", defaults.MySQL.QueryTimeout)
	v.SetDefault("mysql.retries", defaults.MySQL.Retries)
	v.SetDefault("level", defaults.Level)
	v.SetDefault("enabled_checks", []string{})
	v.SetDefault("enable_tables", false)
	v.SetDefault("thresholds_file", "")
	v.SetDefault("format", defaults.Format)
	v.SetDefault("output", "")
	v.SetDefault("store", false)
	v.SetDefault("storage_dir", defaults.StorageDir)
	v.SetDefault("fail_severity", "")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.timeout", defaults.Anthropic.Timeout)
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)

	v.SetConfigName("maisquelle")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search for config in standard locations
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "maisquelle"))
		}
	}

	// MAISQUELLE_MYSQL_PASSWORD, MAISQUELLE_ANTHROPIC_API_KEY, ...
	v.SetEnvPrefix("MAISQUELLE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is OK, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := models.ParseLevel(c.Level); err != nil {
		return err
	}

	for _, check := range c.EnabledChecks {
		if !models.IsSupportedCheck(models.CheckType(check)) {
			return fmt.Errorf("unknown check: %s", check)
		}
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"both": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text, json, or both)", c.Format)
	}

	if c.FailSeverity != "" && !models.ValidSeverity(c.FailSeverity) {
		return fmt.Errorf("invalid fail_severity: %s (must be critical, high, medium, or low)", c.FailSeverity)
	}

	if c.MySQL.Port <= 0 || c.MySQL.Port > 65535 {
		return fmt.Errorf("mysql.port out of range: %d", c.MySQL.Port)
	}

	if c.MySQL.Retries <= 0 {
		return fmt.Errorf("mysql.retries must be positive")
	}

	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}

	return nil
}

// ParsedLevel returns the inspection level. Validate must have passed.
func (c *Config) ParsedLevel() models.Level {
	level, _ := models.ParseLevel(c.Level)
	return level
}

// CheckTypes converts the enabled check names to their typed form.
func (c *Config) CheckTypes() []models.CheckType {
	out := make([]models.CheckType, 0, len(c.EnabledChecks))
	for _, check := range c.EnabledChecks {
		out = append(out, models.CheckType(check))
	}
	return out
}

// GetStoragePath returns the absolute path to the storage directory
func (c *Config) GetStoragePath() (string, error) {
	// Expand ~ to home directory
	if len(c.StorageDir) >= 2 && c.StorageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.StorageDir[2:]), nil
	}

	absPath, err := filepath.Abs(c.StorageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// ShouldFailOn reports whether a finding at the given severity trips the
// CI/CD gate.
func (c *Config) ShouldFailOn(severity string) bool {
	if c.FailSeverity == "" {
		return false
	}
	return models.SeverityRank(severity) >= models.SeverityRank(c.FailSeverity)
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# Maisquelle Configuration
# Save this file as ~/maisquelle.yaml or ./maisquelle.yaml

# Target MySQL server
mysql:
  host: localhost
  port: 3306
  user: root
  # Prefer MAISQUELLE_MYSQL_PASSWORD over storing the password here
  # password: secret
  connect_timeout: 5s
  query_timeout: 30s
  retries: 3

# Inspection depth: basic, advanced, or expert
level: basic

# Explicit check selection; replaces the level defaults when non-empty
# enabled_checks: [system_resources, innodb]

# Table statistics scan whole schemas; needs expert level AND this flag
enable_tables: false

# Custom thresholds file; empty uses the built-in rules
# thresholds_file: thresholds.yaml

# Output format: text, json, or both
format: text

# Write the report to a file instead of stdout
# output: report.json

# Persist reports under storage_dir/runs
store: false
storage_dir: .maisquelle

# Exit code 1 when findings at or above this severity exist
# fail_severity: high

# Reasoning service for enriched recommendations (optional)
# Prefer MAISQUELLE_ANTHROPIC_API_KEY over storing the key here
anthropic:
  # api_key: sk-ant-your-key
  # model: claude-sonnet-4-20250514
  timeout: 30s

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
