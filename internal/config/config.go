package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the inkwell configuration.
type Config struct {
	Editor   EditorConfig   `yaml:"editor"`
	Assist   AssistConfig   `yaml:"assist"`
	Provider ProviderConfig `yaml:"provider"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
	Storage  StorageConfig  `yaml:"storage"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
}

// EditorConfig holds editor surface settings.
type EditorConfig struct {
	AutosaveSecs int    `yaml:"autosave_secs"` // Autosave interval in seconds (0 = off)
	WrapColumn   int    `yaml:"wrap_column"`   // Soft wrap width (0 = follow terminal)
	ShowStats    bool   `yaml:"show_stats"`    // Word/character counts in the status bar
	Theme        string `yaml:"theme"`         // auto, dark, or light
}

// AssistConfig holds suggestion trigger settings.
type AssistConfig struct {
	Enabled        bool `yaml:"enabled"`          // Master toggle for writing assistance
	MinWords       int  `yaml:"min_words"`        // Tail word count before the first automatic fetch
	FirstDelayMs   int  `yaml:"first_delay_ms"`   // Inactivity debounce before the first fetch in ms
	CueDelayMs     int  `yaml:"cue_delay_ms"`     // Inactivity debounce before the continue cue in ms
	CueCooldownMs  int  `yaml:"cue_cooldown_ms"`  // Cue suppression after dismissal in ms
	MaxCandidates  int  `yaml:"max_candidates"`   // Max suggestions requested per fetch
	FetchTimeoutMs int  `yaml:"fetch_timeout_ms"` // Per-fetch provider timeout in ms
	TailChars      int  `yaml:"tail_chars"`       // Context tail length in characters
}

// ProviderConfig holds suggestion provider settings.
type ProviderConfig struct {
	Name         string `yaml:"name"`           // gemini or none
	Model        string `yaml:"model"`          // Provider-specific model
	APIKeyEnv    string `yaml:"api_key_env"`    // Env var holding the generation API key
	SearchKeyEnv string `yaml:"search_key_env"` // Env var holding the search API key
	UseSearch    bool   `yaml:"use_search"`     // Ground suggestions in web search
	CacheTTLMins int    `yaml:"cache_ttl_mins"` // Suggestion cache lifetime in minutes
}

// PrivacyConfig holds privacy-related settings.
type PrivacyConfig struct {
	RedactSecrets bool `yaml:"redact_secrets"` // Apply regex redaction before provider calls
}

// StorageConfig holds draft storage settings.
type StorageConfig struct {
	DBPath               string `yaml:"db_path"`                 // SQLite path (overrides default)
	RetentionDays        int    `yaml:"retention_days"`          // Revision retention in days (0 = keep forever)
	MaxRevisionsPerDraft int    `yaml:"max_revisions_per_draft"` // Revisions kept per draft
}

// NotifyConfig holds draft event notification settings.
type NotifyConfig struct {
	Enabled          bool   `yaml:"enabled"`            // Emit draft events on the unix socket
	SocketPath       string `yaml:"socket_path"`        // Unix socket path (empty = auto)
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"` // Socket connect timeout in ms
	WriteTimeoutMs   int    `yaml:"write_timeout_ms"`   // Socket write timeout in ms
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			AutosaveSecs: 15,
			WrapColumn:   0, // Follow the terminal width
			ShowStats:    true,
			Theme:        "auto",
		},
		Assist: DefaultAssistConfig(),
		Provider: ProviderConfig{
			Name:         "gemini",
			Model:        "gemini-2.0-flash",
			APIKeyEnv:    "GEMINI_API_KEY",
			SearchKeyEnv: "SEARCH_API_KEY",
			UseSearch:    true,
			CacheTTLMins: 60,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
		Storage: StorageConfig{
			DBPath:               "", // Use default from paths
			RetentionDays:        90,
			MaxRevisionsPerDraft: 200,
		},
		Notify: NotifyConfig{
			Enabled:          true,
			SocketPath:       "", // Use default from paths
			ConnectTimeoutMs: 15,
			WriteTimeoutMs:   20,
		},
		Log: LogConfig{
			Level: "info",
			File:  "", // Use default from paths
		},
	}
}

// DefaultAssistConfig returns the default trigger settings.
func DefaultAssistConfig() AssistConfig {
	return AssistConfig{
		Enabled:        true,
		MinWords:       5,
		FirstDelayMs:   5000,
		CueDelayMs:     1000,
		CueCooldownMs:  15000,
		MaxCandidates:  3,
		FetchTimeoutMs: 20000,
		TailChars:      300,
	}
}

// Load loads configuration from INKWELL_CONFIG or the default path.
func Load() (*Config, error) {
	if v := os.Getenv("INKWELL_CONFIG"); v != "" {
		return LoadFromFile(v)
	}
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
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
	// Derive directory from path and ensure it exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "assist.min_words" or "provider.model"
func (c *Config) Get(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "editor":
		return c.getEditorField(field)
	case "assist":
		return c.getAssistField(field)
	case "provider":
		return c.getProviderField(field)
	case "privacy":
		return c.getPrivacyField(field)
	case "storage":
		return c.getStorageField(field)
	case "notify":
		return c.getNotifyField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "editor":
		return c.setEditorField(field, value)
	case "assist":
		return c.setAssistField(field, value)
	case "provider":
		return c.setProviderField(field, value)
	case "privacy":
		return c.setPrivacyField(field, value)
	case "storage":
		return c.setStorageField(field, value)
	case "notify":
		return c.setNotifyField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) getEditorField(field string) (string, error) {
	switch field {
	case "autosave_secs":
		return strconv.Itoa(c.Editor.AutosaveSecs), nil
	case "wrap_column":
		return strconv.Itoa(c.Editor.WrapColumn), nil
	case "show_stats":
		return strconv.FormatBool(c.Editor.ShowStats), nil
	case "theme":
		return c.Editor.Theme, nil
	default:
		return "", fmt.Errorf("unknown field: editor.%s", field)
	}
}

func (c *Config) setEditorField(field, value string) error {
	switch field {
	case "autosave_secs":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for autosave_secs: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid autosave_secs: must be non-negative")
		}
		c.Editor.AutosaveSecs = v
	case "wrap_column":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for wrap_column: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid wrap_column: must be non-negative")
		}
		c.Editor.WrapColumn = v
	case "show_stats":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for show_stats: %w", err)
		}
		c.Editor.ShowStats = v
	case "theme":
		if !isValidTheme(value) {
			return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", value)
		}
		c.Editor.Theme = value
	default:
		return fmt.Errorf("unknown field: editor.%s", field)
	}
	return nil
}

func (c *Config) getAssistField(field string) (string, error) {
	switch field {
	case "enabled":
		return strconv.FormatBool(c.Assist.Enabled), nil
	case "min_words":
		return strconv.Itoa(c.Assist.MinWords), nil
	case "first_delay_ms":
		return strconv.Itoa(c.Assist.FirstDelayMs), nil
	case "cue_delay_ms":
		return strconv.Itoa(c.Assist.CueDelayMs), nil
	case "cue_cooldown_ms":
		return strconv.Itoa(c.Assist.CueCooldownMs), nil
	case "max_candidates":
		return strconv.Itoa(c.Assist.MaxCandidates), nil
	case "fetch_timeout_ms":
		return strconv.Itoa(c.Assist.FetchTimeoutMs), nil
	case "tail_chars":
		return strconv.Itoa(c.Assist.TailChars), nil
	default:
		return "", fmt.Errorf("unknown field: assist.%s", field)
	}
}

func (c *Config) setAssistField(field, value string) error {
	switch field {
	case "enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %w", err)
		}
		c.Assist.Enabled = v
	case "min_words":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for min_words: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid min_words: must be >= 1")
		}
		c.Assist.MinWords = v
	case "first_delay_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for first_delay_ms: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid first_delay_ms: must be >= 1")
		}
		c.Assist.FirstDelayMs = v
	case "cue_delay_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for cue_delay_ms: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid cue_delay_ms: must be >= 1")
		}
		c.Assist.CueDelayMs = v
	case "cue_cooldown_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for cue_cooldown_ms: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid cue_cooldown_ms: must be non-negative")
		}
		c.Assist.CueCooldownMs = v
	case "max_candidates":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_candidates: %w", err)
		}
		if v < 1 {
			v = 1
		}
		if v > 10 {
			v = 10
		}
		c.Assist.MaxCandidates = v
	case "fetch_timeout_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for fetch_timeout_ms: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid fetch_timeout_ms: must be >= 1")
		}
		c.Assist.FetchTimeoutMs = v
	case "tail_chars":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for tail_chars: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid tail_chars: must be >= 1")
		}
		c.Assist.TailChars = v
	default:
		return fmt.Errorf("unknown field: assist.%s", field)
	}
	return nil
}

func (c *Config) getProviderField(field string) (string, error) {
	switch field {
	case "name":
		return c.Provider.Name, nil
	case "model":
		return c.Provider.Model, nil
	case "api_key_env":
		return c.Provider.APIKeyEnv, nil
	case "search_key_env":
		return c.Provider.SearchKeyEnv, nil
	case "use_search":
		return strconv.FormatBool(c.Provider.UseSearch), nil
	case "cache_ttl_mins":
		return strconv.Itoa(c.Provider.CacheTTLMins), nil
	default:
		return "", fmt.Errorf("unknown field: provider.%s", field)
	}
}

func (c *Config) setProviderField(field, value string) error {
	switch field {
	case "name":
		if !isValidProviderName(value) {
			return fmt.Errorf("invalid provider: %s (must be gemini or none)", value)
		}
		c.Provider.Name = value
	case "model":
		c.Provider.Model = value
	case "api_key_env":
		c.Provider.APIKeyEnv = value
	case "search_key_env":
		c.Provider.SearchKeyEnv = value
	case "use_search":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for use_search: %w", err)
		}
		c.Provider.UseSearch = v
	case "cache_ttl_mins":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for cache_ttl_mins: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid cache_ttl_mins: must be non-negative")
		}
		c.Provider.CacheTTLMins = v
	default:
		return fmt.Errorf("unknown field: provider.%s", field)
	}
	return nil
}

func (c *Config) getPrivacyField(field string) (string, error) {
	switch field {
	case "redact_secrets":
		return strconv.FormatBool(c.Privacy.RedactSecrets), nil
	default:
		return "", fmt.Errorf("unknown field: privacy.%s", field)
	}
}

func (c *Config) setPrivacyField(field, value string) error {
	switch field {
	case "redact_secrets":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for redact_secrets: %w", err)
		}
		c.Privacy.RedactSecrets = v
	default:
		return fmt.Errorf("unknown field: privacy.%s", field)
	}
	return nil
}

func (c *Config) getStorageField(field string) (string, error) {
	switch field {
	case "db_path":
		return c.Storage.DBPath, nil
	case "retention_days":
		return strconv.Itoa(c.Storage.RetentionDays), nil
	case "max_revisions_per_draft":
		return strconv.Itoa(c.Storage.MaxRevisionsPerDraft), nil
	default:
		return "", fmt.Errorf("unknown field: storage.%s", field)
	}
}

func (c *Config) setStorageField(field, value string) error {
	switch field {
	case "db_path":
		c.Storage.DBPath = value
	case "retention_days":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for retention_days: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid retention_days: must be non-negative")
		}
		c.Storage.RetentionDays = v
	case "max_revisions_per_draft":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_revisions_per_draft: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid max_revisions_per_draft: must be >= 1")
		}
		c.Storage.MaxRevisionsPerDraft = v
	default:
		return fmt.Errorf("unknown field: storage.%s", field)
	}
	return nil
}

func (c *Config) getNotifyField(field string) (string, error) {
	switch field {
	case "enabled":
		return strconv.FormatBool(c.Notify.Enabled), nil
	case "socket_path":
		return c.Notify.SocketPath, nil
	case "connect_timeout_ms":
		return strconv.Itoa(c.Notify.ConnectTimeoutMs), nil
	case "write_timeout_ms":
		return strconv.Itoa(c.Notify.WriteTimeoutMs), nil
	default:
		return "", fmt.Errorf("unknown field: notify.%s", field)
	}
}

func (c *Config) setNotifyField(field, value string) error {
	switch field {
	case "enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %w", err)
		}
		c.Notify.Enabled = v
	case "socket_path":
		c.Notify.SocketPath = value
	case "connect_timeout_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for connect_timeout_ms: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid connect_timeout_ms: must be >= 1")
		}
		c.Notify.ConnectTimeoutMs = v
	case "write_timeout_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for write_timeout_ms: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid write_timeout_ms: must be >= 1")
		}
		c.Notify.WriteTimeoutMs = v
	default:
		return fmt.Errorf("unknown field: notify.%s", field)
	}
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
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Editor.AutosaveSecs < 0 {
		return errors.New("editor.autosave_secs must be >= 0")
	}

	if c.Editor.WrapColumn < 0 {
		return errors.New("editor.wrap_column must be >= 0")
	}

	if !isValidTheme(c.Editor.Theme) {
		return fmt.Errorf("editor.theme must be auto, dark, or light (got: %s)", c.Editor.Theme)
	}

	if !isValidProviderName(c.Provider.Name) {
		return fmt.Errorf("provider.name must be gemini or none (got: %s)", c.Provider.Name)
	}

	if c.Provider.CacheTTLMins < 0 {
		return errors.New("provider.cache_ttl_mins must be >= 0")
	}

	if c.Storage.RetentionDays < 0 {
		return errors.New("storage.retention_days must be >= 0")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	// Trigger timings never prevent startup; they fall back with warnings
	c.Assist.ValidateAndFix()

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidTheme(theme string) bool {
	switch theme {
	case "auto", "dark", "light":
		return true
	default:
		return false
	}
}

func isValidProviderName(name string) bool {
	switch name {
	case "gemini", "none":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables override config file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("INKWELL_ASSIST_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Assist.Enabled = b
		}
	}
	if v := os.Getenv("INKWELL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("INKWELL_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("INKWELL_SOCKET"); v != "" {
		c.Notify.SocketPath = v
	}
}

// ListKeys returns user-facing configuration keys.
// Wiring details (storage paths, notify transport, log file) are not exposed.
func ListKeys() []string {
	return []string{
		"editor.autosave_secs",
		"editor.wrap_column",
		"editor.show_stats",
		"editor.theme",
		"assist.enabled",
		"assist.min_words",
		"assist.max_candidates",
		"provider.name",
		"provider.model",
		"provider.use_search",
		"privacy.redact_secrets",
	}
}

// ValidationWarning represents a config validation warning.
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidateAndFix validates trigger timing values. Invalid values are fixed
// by falling back to defaults or clamping. Returns a list of warnings for
// diagnostics. Validation never prevents startup.
func (a *AssistConfig) ValidateAndFix() []ValidationWarning {
	defaults := DefaultAssistConfig()
	var warnings []ValidationWarning

	warn := func(field, msg string) {
		w := ValidationWarning{Field: field, Message: msg}
		warnings = append(warnings, w)
		log.Printf("WARN config: assist.%s: %s", field, msg)
	}

	// --- Timings (must be >= 1) ---
	timings := []struct {
		name string
		val  *int
		def  int
	}{
		{"first_delay_ms", &a.FirstDelayMs, defaults.FirstDelayMs},
		{"cue_delay_ms", &a.CueDelayMs, defaults.CueDelayMs},
		{"fetch_timeout_ms", &a.FetchTimeoutMs, defaults.FetchTimeoutMs},
	}
	for _, t := range timings {
		if *t.val < 1 {
			warn(t.name, fmt.Sprintf("must be >= 1, got %d; falling back to default %d", *t.val, t.def))
			*t.val = t.def
		}
	}

	// --- Cue cooldown (>= 0; 0 = no suppression) ---
	if a.CueCooldownMs < 0 {
		warn("cue_cooldown_ms", fmt.Sprintf("must be >= 0, got %d; falling back to default %d", a.CueCooldownMs, defaults.CueCooldownMs))
		a.CueCooldownMs = defaults.CueCooldownMs
	}

	// --- Word minimum (must be >= 1) ---
	if a.MinWords < 1 {
		warn("min_words", fmt.Sprintf("must be >= 1, got %d; falling back to default %d", a.MinWords, defaults.MinWords))
		a.MinWords = defaults.MinWords
	}

	// --- Candidates (clamp to [1, 10]) ---
	if a.MaxCandidates < 1 {
		warn("max_candidates", fmt.Sprintf("must be >= 1, got %d; clamping to 1", a.MaxCandidates))
		a.MaxCandidates = 1
	}
	if a.MaxCandidates > 10 {
		warn("max_candidates", fmt.Sprintf("must be <= 10, got %d; clamping to 10", a.MaxCandidates))
		a.MaxCandidates = 10
	}

	// --- Tail length (clamp to [80, 2000]) ---
	if a.TailChars < 80 {
		warn("tail_chars", fmt.Sprintf("must be >= 80, got %d; clamping to 80", a.TailChars))
		a.TailChars = 80
	}
	if a.TailChars > 2000 {
		warn("tail_chars", fmt.Sprintf("must be <= 2000, got %d; clamping to 2000", a.TailChars))
		a.TailChars = 2000
	}

	return warnings
}
