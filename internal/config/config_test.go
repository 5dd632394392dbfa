package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// --- Validate ---

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_ConcurrencyBounds(t *testing.T) {
	cfg := Defaults()
	cfg.General.MaxConcurrentMessages = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxConcurrentMessages=0")
	}

	cfg.General.MaxConcurrentMessages = 101
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxConcurrentMessages=101")
	}

	cfg.General.MaxConcurrentMessages = 100
	if err := Validate(cfg); err != nil {
		t.Fatalf("maxConcurrentMessages=100 should be valid: %v", err)
	}
}

func TestValidate_FetchTimeoutBounds(t *testing.T) {
	cfg := Defaults()
	cfg.General.FetchTimeoutSeconds = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for fetchTimeoutSeconds=0")
	}

	cfg.General.FetchTimeoutSeconds = 121
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for fetchTimeoutSeconds=121")
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.General.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestValidate_TelegramEnabledNeedsToken(t *testing.T) {
	cfg := Defaults()
	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for enabled telegram without token")
	}

	cfg.Channels.Telegram.Token = "123:abc"
	if err := Validate(cfg); err != nil {
		t.Fatalf("token present should validate: %v", err)
	}
}

func TestValidate_JournalNeedsDBPath(t *testing.T) {
	cfg := Defaults()
	cfg.Journal.DBPath = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for enabled journal without dbPath")
	}

	cfg.Journal.Enabled = false
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled journal should not need a path: %v", err)
	}
}

// --- Load / Save ---

func TestLoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Defaults()
	cfg.General.LogLevel = "debug"
	cfg.Providers.CatAPI.APIKey = "k"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.General.LogLevel != "debug" || loaded.Providers.CatAPI.APIKey != "k" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Defaults()
	cfg.General.FetchTimeoutSeconds = 0
	data, _ := json.Marshal(cfg)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error on load")
	}
}

// --- Env var expansion ---

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MB_TEST_TOKEN", "tok123")

	got := ExpandEnvVars(`{"token": "${MB_TEST_TOKEN}"}`)
	if got != `{"token": "tok123"}` {
		t.Errorf("got %q", got)
	}
}

func TestExpandEnvVars_DefaultValue(t *testing.T) {
	os.Unsetenv("MB_TEST_UNSET")

	got := ExpandEnvVars(`${MB_TEST_UNSET:-fallback}`)
	if got != "fallback" {
		t.Errorf("got %q", got)
	}
}

func TestExpandEnvVars_UnsetWithoutDefaultKept(t *testing.T) {
	os.Unsetenv("MB_TEST_UNSET")

	got := ExpandEnvVars(`${MB_TEST_UNSET}`)
	if got != "${MB_TEST_UNSET}" {
		t.Errorf("got %q", got)
	}
}

func TestExpandEnvVars_EmptyVarUsesDefault(t *testing.T) {
	t.Setenv("MB_TEST_EMPTY", "")

	got := ExpandEnvVars(`${MB_TEST_EMPTY:-dflt}`)
	if got != "dflt" {
		t.Errorf("got %q", got)
	}
}

// --- Env overrides ---

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN", "tg-token")
	t.Setenv("THE_CAT_API", "cat-key")
	t.Setenv("NASA_API_KEY", "nasa-key")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Channels.Telegram.Token != "tg-token" {
		t.Errorf("telegram token = %q", cfg.Channels.Telegram.Token)
	}
	if cfg.Providers.CatAPI.APIKey != "cat-key" {
		t.Errorf("cat api key = %q", cfg.Providers.CatAPI.APIKey)
	}
	if cfg.Providers.NASA.APIKey != "nasa-key" {
		t.Errorf("DEMO_KEY must be replaced, got %q", cfg.Providers.NASA.APIKey)
	}
}

func TestApplyEnvOverrides_ConfigValuesWin(t *testing.T) {
	t.Setenv("TOKEN", "env-token")
	t.Setenv("NASA_API_KEY", "env-nasa")

	cfg := Defaults()
	cfg.Channels.Telegram.Token = "cfg-token"
	cfg.Providers.NASA.APIKey = "cfg-nasa"
	ApplyEnvOverrides(cfg)

	if cfg.Channels.Telegram.Token != "cfg-token" {
		t.Errorf("explicit config token overridden: %q", cfg.Channels.Telegram.Token)
	}
	if cfg.Providers.NASA.APIKey != "cfg-nasa" {
		t.Errorf("explicit nasa key overridden: %q", cfg.Providers.NASA.APIKey)
	}
}

// --- FlexStringList ---

func TestFlexStringList_MixedTypes(t *testing.T) {
	var f FlexStringList
	if err := json.Unmarshal([]byte(`["123", 456, "abc"]`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"123", "456", "abc"}
	if len(f) != len(want) {
		t.Fatalf("got %v", f)
	}
	for i := range want {
		if f[i] != want[i] {
			t.Errorf("f[%d] = %q, want %q", i, f[i], want[i])
		}
	}
}

func TestFlexStringList_PlainStrings(t *testing.T) {
	var f FlexStringList
	if err := json.Unmarshal([]byte(`["a", "b"]`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(f) != 2 || f[0] != "a" {
		t.Errorf("got %v", f)
	}
}

// --- ExpandPath ---

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x/y.db"); got != filepath.Join(home, "x/y.db") {
		t.Errorf("got %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute paths must pass through, got %q", got)
	}
}
