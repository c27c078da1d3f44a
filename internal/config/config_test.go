package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maisquelle/maisquelle/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MySQL.Host != "localhost" || cfg.MySQL.Port != 3306 || cfg.MySQL.User != "root" {
		t.Errorf("unexpected mysql defaults: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnectTimeout != 5*time.Second || cfg.MySQL.Retries != 3 {
		t.Errorf("unexpected mysql timing defaults: %+v", cfg.MySQL)
	}
	if cfg.Level != "basic" {
		t.Errorf("expected level=basic, got %s", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("expected format=text, got %s", cfg.Format)
	}
	if cfg.StorageDir != ".maisquelle" {
		t.Errorf("expected storage_dir=.maisquelle, got %s", cfg.StorageDir)
	}
	if cfg.EnableTables {
		t.Error("expected enable_tables=false")
	}
	if cfg.Anthropic.APIKey != "" {
		t.Error("expected no API key by default")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := *DefaultConfig()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"valid expert", func(c *Config) { c.Level = "expert" }, ""},
		{"valid numeric level", func(c *Config) { c.Level = "2" }, ""},
		{"valid checks", func(c *Config) { c.EnabledChecks = []string{"innodb", "query_cache"} }, ""},
		{"valid fail severity", func(c *Config) { c.FailSeverity = "high" }, ""},
		{"bad level", func(c *Config) { c.Level = "ultra" }, "unknown level"},
		{"bad check", func(c *Config) { c.EnabledChecks = []string{"replication"} }, "unknown check"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "invalid format"},
		{"bad fail severity", func(c *Config) { c.FailSeverity = "fatal" }, "invalid fail_severity"},
		{"bad port", func(c *Config) { c.MySQL.Port = 70000 }, "out of range"},
		{"zero retries", func(c *Config) { c.MySQL.Retries = 0 }, "retries must be positive"},
		{"empty storage", func(c *Config) { c.StorageDir = "" }, "storage_dir cannot be empty"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error to contain %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestParsedLevelAndCheckTypes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "expert"
	cfg.EnabledChecks = []string{"innodb", "system_resources"}

	if cfg.ParsedLevel() != models.LevelExpert {
		t.Errorf("expected expert, got %v", cfg.ParsedLevel())
	}

	checks := cfg.CheckTypes()
	if len(checks) != 2 || checks[0] != models.CheckInnoDB {
		t.Errorf("unexpected check types: %v", checks)
	}
}

func TestShouldFailOn(t *testing.T) {
	tests := []struct {
		name     string
		gate     string
		severity string
		expected bool
	}{
		{"disabled", "", "critical", false},
		{"below gate", "high", "medium", false},
		{"at gate", "high", "high", true},
		{"above gate", "high", "critical", true},
		{"low gate catches all", "low", "low", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{FailSeverity: tt.gate}
			if got := cfg.ShouldFailOn(tt.severity); got != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestGetStoragePath(t *testing.T) {
	tests := []struct {
		name       string
		storageDir string
	}{
		{"relative path", ".maisquelle"},
		{"home expansion", "~/maisquelle-data"},
		{"absolute path", "/tmp/maisquelle"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{StorageDir: tt.storageDir}
			path, err := cfg.GetStoragePath()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if path == "" || strings.HasPrefix(path, "~") {
				t.Fatalf("expected expanded absolute path, got %q", path)
			}
		})
	}
}

func TestLoadFromFileWithConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maisquelle.yaml")

	content := `mysql:
  host: db1.internal
  port: 3307
  user: monitor
  retries: 5
level: advanced
enabled_checks: [innodb]
enable_tables: true
format: json
storage_dir: /custom/path
fail_severity: high
anthropic:
  model: claude-sonnet-4-20250514
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.MySQL.Host != "db1.internal" || cfg.MySQL.Port != 3307 || cfg.MySQL.User != "monitor" {
		t.Errorf("mysql section not loaded: %+v", cfg.MySQL)
	}
	if cfg.MySQL.Retries != 5 {
		t.Errorf("expected retries=5, got %d", cfg.MySQL.Retries)
	}
	if cfg.Level != "advanced" {
		t.Errorf("expected level=advanced, got %s", cfg.Level)
	}
	if len(cfg.EnabledChecks) != 1 || cfg.EnabledChecks[0] != "innodb" {
		t.Errorf("expected enabled_checks=[innodb], got %v", cfg.EnabledChecks)
	}
	if !cfg.EnableTables {
		t.Error("expected enable_tables=true")
	}
	if cfg.Format != "json" || cfg.StorageDir != "/custom/path" || cfg.FailSeverity != "high" {
		t.Errorf("unexpected output settings: %+v", cfg)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("anthropic section not loaded: %+v", cfg.Anthropic)
	}
	if !cfg.Verbose {
		t.Error("expected verbose=true")
	}
}

func TestLoadFromFileInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maisquelle.yaml")

	if err := os.WriteFile(path, []byte("level: ultra\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestLoadFromFileNoFile(t *testing.T) {
	// Load with no config file should use defaults
	dir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageDir != ".maisquelle" {
		t.Errorf("expected default storage_dir, got %s", cfg.StorageDir)
	}
	if cfg.Level != "basic" {
		t.Errorf("expected default level, got %s", cfg.Level)
	}
}

func TestLoadFromFileWithEnvVars(t *testing.T) {
	dir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MAISQUELLE_FORMAT", "json")
	t.Setenv("MAISQUELLE_MYSQL_PASSWORD", "s3cret")
	t.Setenv("MAISQUELLE_ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("expected format=json from env, got %s", cfg.Format)
	}
	if cfg.MySQL.Password != "s3cret" {
		t.Errorf("expected password from env, got %q", cfg.MySQL.Password)
	}
	if cfg.Anthropic.APIKey != "sk-ant-test" {
		t.Errorf("expected API key from env, got %q", cfg.Anthropic.APIKey)
	}
}

func TestGenerateSampleConfig(t *testing.T) {
	sample := GenerateSampleConfig()
	if sample == "" {
		t.Fatal("expected non-empty sample config")
	}
	expectedFragments := []string{
		"mysql:",
		"host:",
		"level:",
		"enable_tables:",
		"format:",
		"storage_dir:",
		"fail_severity",
		"anthropic:",
	}
	for _, frag := range expectedFragments {
		if !strings.Contains(sample, frag) {
			t.Errorf("expected sample config to contain %q", frag)
		}
	}
	if strings.Contains(sample, "password: secret\n") && !strings.Contains(sample, "# password") {
		t.Error("sample must not ship an uncommented password")
	}
}
