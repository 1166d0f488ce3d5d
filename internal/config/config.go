package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/cmdvault/internal/prompt"
	"github.com/runger/cmdvault/internal/retention"
)

// Config represents the cmdvault configuration.
type Config struct {
	Capture   CaptureConfig     `yaml:"capture"`
	Store     StoreConfig       `yaml:"store"`
	Log       LogConfig         `yaml:"log"`
	Overrides map[string]string `yaml:"overrides,omitempty"` // dialect -> prompt regex
}

// CaptureConfig holds settings for cleaning and capturing terminal lines.
type CaptureConfig struct {
	DefaultShell     string `yaml:"default_shell"`      // auto, bash, zsh, fish, powershell or cmd
	MinCommandLength int    `yaml:"min_command_length"` // Shorter cleaned commands are dropped
	SkipDuplicates   bool   `yaml:"skip_duplicates"`    // Don't save text already in the library
	SkipSecrets      bool   `yaml:"skip_secrets"`       // Don't save commands carrying credentials
	MaxLineBytes     int    `yaml:"max_line_bytes"`     // Longest line read by capture
}

// StoreConfig holds library capacity and retention settings.
type StoreConfig struct {
	MaxCommands             int `yaml:"max_commands"`              // Active records before eviction
	TrashRetentionDays      int `yaml:"trash_retention_days"`      // Days a trashed record is kept
	MostUsedThreshold       int `yaml:"most_used_threshold"`       // Uses that make a record most-used
	RecentDays              int `yaml:"recent_days"`               // Window for recently used records
	EvictionBuffer          int `yaml:"eviction_buffer"`           // Extra records evicted per pass
	MaintenanceIntervalMins int `yaml:"maintenance_interval_mins"` // Trash sweep interval in follow mode
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (empty = stderr)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			DefaultShell:     "auto",
			MinCommandLength: 2,
			SkipDuplicates:   true,
			SkipSecrets:      true,
			MaxLineBytes:     16384,
		},
		Store: StoreConfig{
			MaxCommands:             retention.DefaultMaxCommands,
			TrashRetentionDays:      retention.DefaultTrashRetentionDays,
			MostUsedThreshold:       retention.DefaultMostUsedThreshold,
			RecentDays:              retention.DefaultRecentDays,
			EvictionBuffer:          retention.DefaultEvictionBuffer,
			MaintenanceIntervalMins: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Policy converts the store section to a retention policy.
func (s StoreConfig) Policy() retention.Policy {
	return retention.Policy{
		MaxCommands:        s.MaxCommands,
		TrashRetentionDays: s.TrashRetentionDays,
		MostUsedThreshold:  s.MostUsedThreshold,
		RecentDays:         s.RecentDays,
		EvictionBuffer:     s.EvictionBuffer,
	}.Normalize()
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from flag or XDG default
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "store.max_commands" or "overrides.bash"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "capture":
		return c.getCaptureField(field)
	case "store":
		return c.getStoreField(field)
	case "log":
		return c.getLogField(field)
	case "overrides":
		if !prompt.ParseDialect(field).IsKnown() {
			return "", fmt.Errorf("unknown shell: %s", field)
		}
		return c.Overrides[field], nil
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "capture":
		return c.setCaptureField(field, value)
	case "store":
		return c.setStoreField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "overrides":
		return c.SetOverride(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

// SetOverride stores a prompt override for shell after checking that the
// pattern compiles. An empty pattern removes the override.
func (c *Config) SetOverride(shell, pattern string) error {
	d := prompt.ParseDialect(shell)
	if !d.IsKnown() {
		return fmt.Errorf("unknown shell: %s", shell)
	}
	if _, err := prompt.ValidateOverridePattern(d, pattern); err != nil {
		return err
	}
	if pattern == "" {
		delete(c.Overrides, d.String())
		return nil
	}
	if c.Overrides == nil {
		c.Overrides = make(map[string]string)
	}
	c.Overrides[d.String()] = pattern
	return nil
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getCaptureField(field string) (string, error) {
	switch field {
	case "default_shell":
		return c.Capture.DefaultShell, nil
	case "min_command_length":
		return strconv.Itoa(c.Capture.MinCommandLength), nil
	case "skip_duplicates":
		return strconv.FormatBool(c.Capture.SkipDuplicates), nil
	case "skip_secrets":
		return strconv.FormatBool(c.Capture.SkipSecrets), nil
	case "max_line_bytes":
		return strconv.Itoa(c.Capture.MaxLineBytes), nil
	default:
		return "", fmt.Errorf("unknown field: capture.%s", field)
	}
}

func (c *Config) setCaptureField(field, value string) error {
	switch field {
	case "default_shell":
		if !isValidShell(value) {
			return fmt.Errorf("invalid default_shell: %s (must be auto, bash, zsh, fish, powershell, or cmd)", value)
		}
		c.Capture.DefaultShell = value
	case "min_command_length":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for min_command_length: %w", err)
		}
		if v < 0 {
			return errors.New("min_command_length must be >= 0")
		}
		c.Capture.MinCommandLength = v
	case "skip_duplicates":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for skip_duplicates: %w", err)
		}
		c.Capture.SkipDuplicates = v
	case "skip_secrets":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for skip_secrets: %w", err)
		}
		c.Capture.SkipSecrets = v
	case "max_line_bytes":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_line_bytes: %w", err)
		}
		if v < 1024 {
			return errors.New("max_line_bytes must be >= 1024")
		}
		c.Capture.MaxLineBytes = v
	default:
		return fmt.Errorf("unknown field: capture.%s", field)
	}
	return nil
}

func (c *Config) storeFields() map[string]*int {
	return map[string]*int{
		"max_commands":              &c.Store.MaxCommands,
		"trash_retention_days":      &c.Store.TrashRetentionDays,
		"most_used_threshold":       &c.Store.MostUsedThreshold,
		"recent_days":               &c.Store.RecentDays,
		"eviction_buffer":           &c.Store.EvictionBuffer,
		"maintenance_interval_mins": &c.Store.MaintenanceIntervalMins,
	}
}

func (c *Config) getStoreField(field string) (string, error) {
	ptr, ok := c.storeFields()[field]
	if !ok {
		return "", fmt.Errorf("unknown field: store.%s", field)
	}
	return strconv.Itoa(*ptr), nil
}

func (c *Config) setStoreField(field, value string) error {
	ptr, ok := c.storeFields()[field]
	if !ok {
		return fmt.Errorf("unknown field: store.%s", field)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	*ptr = v
	c.Store.ValidateAndFix()
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration. Out-of-range store values are
// clamped rather than rejected.
func (c *Config) Validate() error {
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	if !isValidShell(c.Capture.DefaultShell) {
		return fmt.Errorf("capture.default_shell must be auto, bash, zsh, fish, powershell, or cmd (got: %s)", c.Capture.DefaultShell)
	}

	if c.Capture.MinCommandLength < 0 {
		return errors.New("capture.min_command_length must be >= 0")
	}

	if c.Capture.MaxLineBytes < 1024 {
		return errors.New("capture.max_line_bytes must be >= 1024")
	}

	for shell, pattern := range c.Overrides {
		d := prompt.ParseDialect(shell)
		if !d.IsKnown() {
			return fmt.Errorf("overrides: unknown shell %s", shell)
		}
		if _, err := prompt.ValidateOverridePattern(d, pattern); err != nil {
			return err
		}
	}

	c.Store.ValidateAndFix()
	return nil
}

// ValidationWarning represents a config value that was replaced.
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidateAndFix clamps store values to their usable range and returns
// what it changed.
func (s *StoreConfig) ValidateAndFix() []ValidationWarning {
	defaults := DefaultConfig().Store
	var warnings []ValidationWarning

	warn := func(field, msg string) {
		warnings = append(warnings, ValidationWarning{Field: field, Message: msg})
	}

	positives := []struct {
		name string
		val  *int
		def  int
	}{
		{"max_commands", &s.MaxCommands, defaults.MaxCommands},
		{"most_used_threshold", &s.MostUsedThreshold, defaults.MostUsedThreshold},
		{"recent_days", &s.RecentDays, defaults.RecentDays},
		{"maintenance_interval_mins", &s.MaintenanceIntervalMins, defaults.MaintenanceIntervalMins},
	}
	for _, p := range positives {
		if *p.val < 1 {
			warn(p.name, fmt.Sprintf("must be >= 1, got %d; falling back to default %d", *p.val, p.def))
			*p.val = p.def
		}
	}

	if s.TrashRetentionDays < retention.MinTrashRetentionDays {
		warn("trash_retention_days", fmt.Sprintf("must be >= %d, got %d; clamped", retention.MinTrashRetentionDays, s.TrashRetentionDays))
		s.TrashRetentionDays = retention.MinTrashRetentionDays
	}
	if s.TrashRetentionDays > retention.MaxTrashRetentionDays {
		warn("trash_retention_days", fmt.Sprintf("must be <= %d, got %d; clamped", retention.MaxTrashRetentionDays, s.TrashRetentionDays))
		s.TrashRetentionDays = retention.MaxTrashRetentionDays
	}

	if s.EvictionBuffer < 0 {
		warn("eviction_buffer", fmt.Sprintf("must be >= 0, got %d; clamped", s.EvictionBuffer))
		s.EvictionBuffer = 0
	}

	return warnings
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidShell(shell string) bool {
	if shell == "auto" {
		return true
	}
	d := prompt.ParseDialect(shell)
	return d.IsKnown() && d.String() == shell
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CMDVAULT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("CMDVAULT_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("CMDVAULT_SHELL"); v != "" {
		if isValidShell(v) {
			c.Capture.DefaultShell = v
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	keys := []string{
		"capture.default_shell",
		"capture.min_command_length",
		"capture.skip_duplicates",
		"capture.skip_secrets",
		"capture.max_line_bytes",
		"log.level",
		"log.file",
	}
	var store []string
	for k := range (&Config{}).storeFields() {
		store = append(store, "store."+k)
	}
	sort.Strings(store)
	keys = append(keys, store...)
	for _, d := range prompt.Dialects() {
		keys = append(keys, "overrides."+d.String())
	}
	return keys
}
