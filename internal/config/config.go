package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Config is the root configuration for multibot.
type Config struct {
	General   GeneralConfig   `json:"general"`
	Channels  ChannelsConfig  `json:"channels"`
	Providers ProvidersConfig `json:"providers"`
	Menu      MenuConfig      `json:"menu"`
	Journal   JournalConfig   `json:"journal"`
	Metrics   MetricsConfig   `json:"metrics"`
}

type GeneralConfig struct {
	LogLevel              string `json:"logLevel"`
	LogFile               string `json:"logFile,omitempty"` // optional log file path
	MaxConcurrentMessages int    `json:"maxConcurrentMessages"`
	FetchTimeoutSeconds   int    `json:"fetchTimeoutSeconds"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	CLI      CLIConfig      `json:"cli"`
}

type TelegramConfig struct {
	Enabled   bool           `json:"enabled"`
	Token     string         `json:"token"`
	AllowFrom FlexStringList `json:"allowFrom"`
	ParseMode string         `json:"parseMode"`
}

type CLIConfig struct {
	Enabled bool `json:"enabled"`
}

type ProvidersConfig struct {
	CatAPI   CatAPIConfig   `json:"catapi"`
	NASA     NASAConfig     `json:"nasa"`
	SpaceX   SpaceXConfig   `json:"spacex"`
	Petstore PetstoreConfig `json:"petstore"`
}

type CatAPIConfig struct {
	APIBase string `json:"apiBase,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

type NASAConfig struct {
	APIBase string `json:"apiBase,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

type SpaceXConfig struct {
	APIBase string `json:"apiBase,omitempty"`
}

type PetstoreConfig struct {
	APIBase string `json:"apiBase,omitempty"`
}

// MenuConfig points at an optional YAML file overriding the menu labels.
type MenuConfig struct {
	Path string `json:"path,omitempty"`
}

type JournalConfig struct {
	Enabled       bool   `json:"enabled"`
	DBPath        string `json:"dbPath"`
	RetentionDays int    `json:"retentionDays"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"` // host:port for the Prometheus endpoint
}

// FlexStringList is a []string that can unmarshal from JSON arrays containing
// both strings and numbers (e.g. ["123", 456] both become "123", "456").
type FlexStringList []string

func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	// Fallback: array of mixed types
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			result = append(result, strconv.FormatInt(int64(n), 10))
			continue
		}
		result = append(result, string(item))
	}
	*f = result
	return nil
}

// DefaultConfigDir returns the default config directory (~/.multibot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".multibot"
	}
	return filepath.Join(home, ".multibot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Journal.DBPath = ExpandPath(cfg.Journal.DBPath)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Menu.Path = ExpandPath(cfg.Menu.Path)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.General.MaxConcurrentMessages < 1 || cfg.General.MaxConcurrentMessages > 100 {
		errs = append(errs, "general.maxConcurrentMessages must be between 1 and 100")
	}
	if cfg.General.FetchTimeoutSeconds < 1 || cfg.General.FetchTimeoutSeconds > 120 {
		errs = append(errs, "general.fetchTimeoutSeconds must be between 1 and 120")
	}
	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token == "" {
		errs = append(errs, "channels.telegram.token is required when the channel is enabled")
	}

	if cfg.Journal.Enabled && cfg.Journal.DBPath == "" {
		errs = append(errs, "journal.dbPath is required when the journal is enabled")
	}
	if cfg.Journal.RetentionDays < 1 {
		errs = append(errs, "journal.retentionDays must be >= 1")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ApplyEnvOverrides fills credential fields from the environment when the
// config leaves them empty. godotenv loads .env before this runs, so
// TOKEN / THE_CAT_API / NASA_API_KEY can live there instead of the config.
func ApplyEnvOverrides(cfg *Config) {
	if cfg.Channels.Telegram.Token == "" {
		cfg.Channels.Telegram.Token = os.Getenv("TOKEN")
	}
	if cfg.Providers.CatAPI.APIKey == "" {
		cfg.Providers.CatAPI.APIKey = os.Getenv("THE_CAT_API")
	}
	if v := os.Getenv("NASA_API_KEY"); v != "" && (cfg.Providers.NASA.APIKey == "" || cfg.Providers.NASA.APIKey == "DEMO_KEY") {
		cfg.Providers.NASA.APIKey = v
	}
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
