package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/runger/cmdvault/internal/cmdutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capture.DefaultShell != "auto" {
		t.Errorf("Expected default_shell=auto, got %s", cfg.Capture.DefaultShell)
	}
	if cfg.Capture.MinCommandLength != 2 {
		t.Errorf("Expected min_command_length=2, got %d", cfg.Capture.MinCommandLength)
	}
	if !cfg.Capture.SkipDuplicates {
		t.Error("Expected skip_duplicates=true")
	}
	if !cfg.Capture.SkipSecrets {
		t.Error("Expected skip_secrets=true")
	}
	if cfg.Store.MaxCommands != 500 {
		t.Errorf("Expected max_commands=500, got %d", cfg.Store.MaxCommands)
	}
	if cfg.Store.TrashRetentionDays != 90 {
		t.Errorf("Expected trash_retention_days=90, got %d", cfg.Store.TrashRetentionDays)
	}
	if cfg.Store.EvictionBuffer != 10 {
		t.Errorf("Expected eviction_buffer=10, got %d", cfg.Store.EvictionBuffer)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected log.level=info, got %s", cfg.Log.Level)
	}
	if len(cfg.Overrides) != 0 {
		t.Errorf("Expected no overrides, got %v", cfg.Overrides)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestStoreConfigPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.MaxCommands = 42
	cfg.Store.RecentDays = 7

	p := cfg.Store.Policy()
	if p.MaxCommands != 42 || p.RecentDays != 7 || p.TrashRetentionDays != 90 {
		t.Errorf("unexpected policy: %+v", p)
	}
}

func TestConfigGet(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key      string
		expected string
	}{
		{"capture.default_shell", "auto"},
		{"capture.min_command_length", "2"},
		{"capture.skip_duplicates", "true"},
		{"capture.skip_secrets", "true"},
		{"capture.max_line_bytes", "16384"},
		{"store.max_commands", "500"},
		{"store.trash_retention_days", "90"},
		{"store.most_used_threshold", "10"},
		{"store.recent_days", "30"},
		{"store.eviction_buffer", "10"},
		{"store.maintenance_interval_mins", "60"},
		{"log.level", "info"},
		{"log.file", ""},
		{"overrides.bash", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.expected {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"capture.default_shell", "zsh"},
		{"capture.min_command_length", "5"},
		{"capture.skip_duplicates", "false"},
		{"capture.skip_secrets", "false"},
		{"capture.max_line_bytes", "4096"},
		{"store.max_commands", "100"},
		{"store.trash_retention_days", "30"},
		{"store.recent_days", "14"},
		{"log.level", "debug"},
		{"log.file", "/tmp/cmdvault.log"},
		{"overrides.bash", `^\[.*\]\$ `},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) error: %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("after Set, Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestConfigGetInvalidKey(t *testing.T) {
	cfg := DefaultConfig()

	for _, key := range []string{"nodot", "too.many.parts", "unknown.field", "store.unknown", "overrides.tcsh"} {
		if _, err := cfg.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
}

func TestConfigSetInvalidValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"capture.default_shell", "tcsh"},
		{"capture.min_command_length", "abc"},
		{"capture.min_command_length", "-1"},
		{"capture.skip_duplicates", "maybe"},
		{"capture.max_line_bytes", "10"},
		{"store.max_commands", "lots"},
		{"log.level", "verbose"},
		{"overrides.bash", "([unclosed"},
		{"overrides.tcsh", "^> "},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%q, %q) should fail", tt.key, tt.value)
			}
		})
	}
}

func TestSetOverride(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.SetOverride("pwsh", `^PS> `); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}
	if got := cfg.Overrides["powershell"]; got != `^PS> ` {
		t.Errorf("override stored under wrong key: %v", cfg.Overrides)
	}

	err := cfg.SetOverride("bash", "(")
	var verr *cmdutil.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "overrides.bash" {
		t.Errorf("Field = %q, want overrides.bash", verr.Field)
	}

	if err := cfg.SetOverride("powershell", ""); err != nil {
		t.Fatalf("removing override failed: %v", err)
	}
	if _, ok := cfg.Overrides["powershell"]; ok {
		t.Error("empty pattern should remove the override")
	}
}

func TestStoreValidateAndFix(t *testing.T) {
	s := StoreConfig{
		MaxCommands:             0,
		TrashRetentionDays:      99999,
		MostUsedThreshold:       10,
		RecentDays:              -5,
		EvictionBuffer:          -1,
		MaintenanceIntervalMins: 60,
	}

	warnings := s.ValidateAndFix()
	if len(warnings) != 4 {
		t.Errorf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	if s.MaxCommands != 500 {
		t.Errorf("MaxCommands = %d, want 500", s.MaxCommands)
	}
	if s.TrashRetentionDays != 3650 {
		t.Errorf("TrashRetentionDays = %d, want 3650", s.TrashRetentionDays)
	}
	if s.RecentDays != 30 {
		t.Errorf("RecentDays = %d, want 30", s.RecentDays)
	}
	if s.EvictionBuffer != 0 {
		t.Errorf("EvictionBuffer = %d, want 0", s.EvictionBuffer)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad shell", func(c *Config) { c.Capture.DefaultShell = "tcsh" }, true},
		{"negative min length", func(c *Config) { c.Capture.MinCommandLength = -1 }, true},
		{"tiny line limit", func(c *Config) { c.Capture.MaxLineBytes = 1 }, true},
		{"bad override regex", func(c *Config) { c.Overrides = map[string]string{"zsh": "("} }, true},
		{"unknown override shell", func(c *Config) { c.Overrides = map[string]string{"tcsh": "^> "} }, true},
		{"store values are clamped", func(c *Config) { c.Store.TrashRetentionDays = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CMDVAULT_DEBUG", "1")
	t.Setenv("CMDVAULT_LOG_LEVEL", "")
	t.Setenv("CMDVAULT_SHELL", "fish")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.Log.Level != "debug" {
		t.Errorf("CMDVAULT_DEBUG should set debug level, got %s", cfg.Log.Level)
	}
	if cfg.Capture.DefaultShell != "fish" {
		t.Errorf("CMDVAULT_SHELL should set default shell, got %s", cfg.Capture.DefaultShell)
	}

	t.Setenv("CMDVAULT_LOG_LEVEL", "error")
	t.Setenv("CMDVAULT_SHELL", "tcsh")
	cfg = DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.Log.Level != "error" {
		t.Errorf("CMDVAULT_LOG_LEVEL should win, got %s", cfg.Log.Level)
	}
	if cfg.Capture.DefaultShell != "auto" {
		t.Errorf("invalid CMDVAULT_SHELL should be ignored, got %s", cfg.Capture.DefaultShell)
	}
}

func TestLoadFromFile_NonExistent(t *testing.T) {
	cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadFromFile should return defaults for nonexistent file: %v", err)
	}
	if cfg.Store.MaxCommands != 500 {
		t.Errorf("Expected default max_commands=500, got %d", cfg.Store.MaxCommands)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")

	invalidYAML := `
store:
  max_commands: [not valid yaml
  this is broken
`
	if err := os.WriteFile(configFile, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write invalid YAML: %v", err)
	}

	if _, err := LoadFromFile(configFile); err == nil {
		t.Error("LoadFromFile should have returned an error for invalid YAML")
	}
}

func TestLoadFromFile_PartialConfig(t *testing.T) {
	t.Setenv("CMDVAULT_DEBUG", "")
	t.Setenv("CMDVAULT_LOG_LEVEL", "")
	configFile := filepath.Join(t.TempDir(), "config.yaml")

	partialYAML := `
store:
  max_commands: 99
log:
  level: warn
overrides:
  bash: '^\w+@\w+:\S*\$ '
`
	if err := os.WriteFile(configFile, []byte(partialYAML), 0644); err != nil {
		t.Fatalf("Failed to write partial YAML: %v", err)
	}

	cfg, err := LoadFromFile(configFile)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Store.MaxCommands != 99 {
		t.Errorf("Expected max_commands=99, got %d", cfg.Store.MaxCommands)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log.level=warn, got %s", cfg.Log.Level)
	}
	if cfg.Overrides["bash"] == "" {
		t.Error("Expected bash override to be loaded")
	}
	if cfg.Store.TrashRetentionDays != 90 {
		t.Errorf("Expected default trash_retention_days=90, got %d", cfg.Store.TrashRetentionDays)
	}
	if cfg.Capture.MinCommandLength != 2 {
		t.Errorf("Expected default min_command_length=2, got %d", cfg.Capture.MinCommandLength)
	}
}

func TestLoadFromFile_ReadError(t *testing.T) {
	subDir := filepath.Join(t.TempDir(), "subdir")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	if _, err := LoadFromFile(subDir); err == nil {
		t.Error("LoadFromFile should have returned an error when reading a directory")
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("CMDVAULT_DEBUG", "")
	t.Setenv("CMDVAULT_LOG_LEVEL", "")
	t.Setenv("CMDVAULT_SHELL", "")
	configFile := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Store.MaxCommands = 250
	cfg.Capture.DefaultShell = "zsh"
	if err := cfg.SetOverride("fish", `^> `); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}

	if err := cfg.SaveToFile(configFile); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(configFile)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Store.MaxCommands != 250 {
		t.Errorf("Expected max_commands=250, got %d", loaded.Store.MaxCommands)
	}
	if loaded.Capture.DefaultShell != "zsh" {
		t.Errorf("Expected default_shell=zsh, got %s", loaded.Capture.DefaultShell)
	}
	if loaded.Overrides["fish"] != `^> ` {
		t.Errorf("Expected fish override, got %v", loaded.Overrides)
	}
}

func TestListKeysAllGettable(t *testing.T) {
	cfg := DefaultConfig()

	for _, key := range ListKeys() {
		t.Run(key, func(t *testing.T) {
			if _, err := cfg.Get(key); err != nil {
				t.Errorf("Get(%q) failed for key from ListKeys: %v", key, err)
			}
		})
	}
}

func TestListKeysIncludesEverySection(t *testing.T) {
	keySet := make(map[string]bool)
	for _, k := range ListKeys() {
		keySet[k] = true
	}
	for _, want := range []string{
		"capture.default_shell",
		"store.max_commands",
		"store.maintenance_interval_mins",
		"log.level",
		"overrides.powershell",
		"overrides.cmd",
	} {
		if !keySet[want] {
			t.Errorf("ListKeys missing expected key: %s", want)
		}
	}
}
