// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/SehejGit/lofi-hack/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lofi configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Backend   BackendConfig   `toml:"backend" json:"backend"`
	Debounce  DebounceConfig  `toml:"debounce" json:"debounce"`
	Audio     AudioConfig     `toml:"audio" json:"audio"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	UI        UIConfig        `toml:"ui" json:"ui"`
	Telemetry TelemetryConfig `toml:"telemetry" json:"telemetry"`
}

// BackendConfig describes the generation service.
type BackendConfig struct {
	// BaseURL is the service root, e.g. http://localhost:8000
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds a single generation request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond limits outgoing calls; negative disables the limit
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	// Burst is the limiter bucket size
	Burst int `toml:"burst" json:"burst"`
}

// DebounceConfig holds the two quiet periods applied to prompt edits.
type DebounceConfig struct {
	SuggestionsMs int `toml:"suggestions_ms" json:"suggestions_ms"`
	MediaMs       int `toml:"media_ms" json:"media_ms"`
}

// AudioConfig controls track buffering and playback.
type AudioConfig struct {
	// ReadyTimeoutMs bounds the wait for a track to become playable
	ReadyTimeoutMs int `toml:"ready_timeout_ms" json:"ready_timeout_ms"`
	// ReadyBytes reports readiness once this much is buffered (0 = whole file)
	ReadyBytes int64 `toml:"ready_bytes" json:"ready_bytes"`
	// PlayerCommand is the argv used to play a track; "{file}" is replaced
	// with the cached path. Empty disables playback.
	PlayerCommand []string `toml:"player_command" json:"player_command"`
	// CacheDir holds downloaded tracks (empty = ~/.lofi/cache/audio)
	CacheDir string `toml:"cache_dir" json:"cache_dir"`
}

// StorageConfig points at the saved themes database and generated files.
type StorageConfig struct {
	// DatabasePath is the sqlite file (empty = ~/.lofi/lofi.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
	// ImageDir holds the backgrounds of the running session (empty = ~/.lofi/cache/images)
	ImageDir string `toml:"image_dir" json:"image_dir"`
	// OutputDir receives backgrounds kept by "lofi generate" (empty = ~/.lofi/backgrounds)
	OutputDir string `toml:"output_dir" json:"output_dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowPreview renders the generated background in the terminal
	ShowPreview bool `toml:"show_preview" json:"show_preview"`
}

// TelemetryConfig controls where diagnostics go.
type TelemetryConfig struct {
	// LogFile receives log output while the TUI owns the terminal
	LogFile string `toml:"log_file" json:"log_file"`
	// TraceFile receives OpenTelemetry spans (empty = tracing off)
	TraceFile string `toml:"trace_file" json:"trace_file"`
	// SentryDSN enables Sentry error reporting
	SentryDSN string `toml:"sentry_dsn" json:"sentry_dsn"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,

		Backend: BackendConfig{
			BaseURL:           "http://localhost:8000",
			TimeoutSecs:       120,
			RequestsPerSecond: 4,
			Burst:             6,
		},

		Debounce: DebounceConfig{
			SuggestionsMs: 500,
			MediaMs:       2000,
		},

		Audio: AudioConfig{
			ReadyTimeoutMs: 5000,
			ReadyBytes:     256 << 10,
			PlayerCommand:  []string{"ffplay", "-nodisp", "-autoexit", "-loop", "0", "-loglevel", "quiet", "{file}"},
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowPreview: true,
		},
	}
}

// SuggestionDelay returns the short debounce window.
func (c *Config) SuggestionDelay() time.Duration {
	return time.Duration(c.Debounce.SuggestionsMs) * time.Millisecond
}

// MediaDelay returns the long debounce window.
func (c *Config) MediaDelay() time.Duration {
	return time.Duration(c.Debounce.MediaMs) * time.Millisecond
}

// ReadyTimeout returns the audio readiness bound.
func (c *Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Audio.ReadyTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the per-request backend timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lofi configuration directory path. LOFI_HOME
// overrides the default of ~/.lofi.
func ConfigDir() (string, error) {
	if dir := os.Getenv("LOFI_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lofi"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// .env files and environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	tomlPath, _ := ConfigPathTOML()
	jsonPath, _ := ConfigPathJSON()

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		}
	case fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			cfg = Default()
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	LoadDotEnv()
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg. Keys missing from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadDotEnv reads .env from the working directory and the config
// directory. Variables already set in the environment win.
func LoadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if fileExists(p) {
			_ = godotenv.Load(p)
		}
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML. The file may hold a Sentry
// DSN, so it is created 0600.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# lofi configuration file\n")
	buf.WriteString("# Generated by lofi - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{Field: "backend.base_url", Message: "must be an http(s) URL"})
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{Field: "backend.timeout_secs", Message: "must be between 1 and 3600"})
	}
	if c.Backend.Burst < 1 {
		errs = append(errs, ValidationError{Field: "backend.burst", Message: "must be at least 1"})
	}

	if c.Debounce.SuggestionsMs < 0 {
		errs = append(errs, ValidationError{Field: "debounce.suggestions_ms", Message: "must not be negative"})
	}
	if c.Debounce.MediaMs < 0 {
		errs = append(errs, ValidationError{Field: "debounce.media_ms", Message: "must not be negative"})
	}

	if c.Audio.ReadyTimeoutMs < 1 {
		errs = append(errs, ValidationError{Field: "audio.ready_timeout_ms", Message: "must be positive"})
	}
	if c.Audio.ReadyBytes < 0 {
		errs = append(errs, ValidationError{Field: "audio.ready_bytes", Message: "must not be negative"})
	}
	if len(c.Audio.PlayerCommand) > 0 && !containsPlaceholder(c.Audio.PlayerCommand) {
		errs = append(errs, ValidationError{Field: "audio.player_command", Message: "must contain {file}"})
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{Field: "ui.theme", Message: "must be dark, light or auto"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func containsPlaceholder(argv []string) bool {
	for _, a := range argv {
		if strings.Contains(a, "{file}") {
			return true
		}
	}
	return false
}

// SetDefaults fills zero values that have a meaningful default and
// resolves the per-user paths.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = d.Backend.BaseURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Backend.RequestsPerSecond == 0 {
		c.Backend.RequestsPerSecond = d.Backend.RequestsPerSecond
	}
	if c.Backend.Burst == 0 {
		c.Backend.Burst = d.Backend.Burst
	}
	if c.Audio.ReadyTimeoutMs == 0 {
		c.Audio.ReadyTimeoutMs = d.Audio.ReadyTimeoutMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}

	dir, err := ConfigDir()
	if err != nil {
		return
	}
	if c.Audio.CacheDir == "" {
		c.Audio.CacheDir = filepath.Join(dir, "cache", "audio")
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = filepath.Join(dir, "lofi.db")
	}
	if c.Storage.ImageDir == "" {
		c.Storage.ImageDir = filepath.Join(dir, "cache", "images")
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = filepath.Join(dir, "backgrounds")
	}
	if c.Telemetry.LogFile == "" {
		c.Telemetry.LogFile = filepath.Join(dir, "lofi.log")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LOFI_BACKEND_URL: overrides backend.base_url
//   - LOFI_PLAYER: overrides audio.player_command (space separated; "none" disables)
//   - LOFI_DB: overrides storage.database_path
//   - LOFI_THEME: overrides ui.theme
//   - LOFI_LOG_FILE: overrides telemetry.log_file
//   - LOFI_TRACE_FILE: overrides telemetry.trace_file
//   - LOFI_SENTRY_DSN / SENTRY_DSN: overrides telemetry.sentry_dsn
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LOFI_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("LOFI_PLAYER"); v != "" {
		if strings.EqualFold(v, "none") {
			c.Audio.PlayerCommand = nil
		} else {
			c.Audio.PlayerCommand = strings.Fields(v)
		}
	}
	if v := os.Getenv("LOFI_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("LOFI_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("LOFI_LOG_FILE"); v != "" {
		c.Telemetry.LogFile = v
	}
	if v := os.Getenv("LOFI_TRACE_FILE"); v != "" {
		c.Telemetry.TraceFile = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		c.Telemetry.SentryDSN = v
	}
	if v := os.Getenv("LOFI_SENTRY_DSN"); v != "" {
		c.Telemetry.SentryDSN = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "debounce.media_ms").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.ToLower(strVal))
			if err != nil {
				boolVal = strings.EqualFold(strVal, "yes")
			}
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(strings.Fields(strVal)))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		section := f.Tag.Get("toml")
		if f.Type.Kind() != reflect.Struct {
			keys = append(keys, section)
			continue
		}
		for j := 0; j < f.Type.NumField(); j++ {
			keys = append(keys, section+"."+f.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Audio.PlayerCommand != nil {
		clone.Audio.PlayerCommand = append([]string(nil), c.Audio.PlayerCommand...)
	}
	return &clone
}

// String returns a JSON rendering with the Sentry DSN redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Telemetry.SentryDSN != "" {
		safe.Telemetry.SentryDSN = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// TOML renders the config as TOML with the Sentry DSN redacted.
func (c *Config) TOML() (string, error) {
	safe := c.Clone()
	if safe.Telemetry.SentryDSN != "" {
		safe.Telemetry.SentryDSN = "[REDACTED]"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if cfg == nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
