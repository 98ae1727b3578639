package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("expected default model gemini-2.5-pro, got %q", cfg.Model)
	}
	if cfg.Trending.Limit != 6 {
		t.Errorf("expected trending limit 6, got %d", cfg.Trending.Limit)
	}
	if cfg.Visitors.FlagTTLMinutes != 24*60 {
		t.Errorf("expected visitor flag ttl of one day, got %d", cfg.Visitors.FlagTTLMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestVisitorTTLIndependentOfAdmin(t *testing.T) {
	t.Setenv("QUOTEGEN_ADMIN__SESSION_TTL_MINUTES", "5")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.SessionTTLMinutes != 5 {
		t.Errorf("expected admin ttl 5, got %d", cfg.Admin.SessionTTLMinutes)
	}
	if cfg.Visitors.FlagTTLMinutes != 24*60 {
		t.Errorf("admin ttl leaked into visitor flags: %d", cfg.Visitors.FlagTTLMinutes)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.quotegen.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Server.Port = 9090
	original.Admin.Secret = "s3cret"
	original.History.PageSize = 20
	original.Storage.Driver = StorageMemory

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.Admin.Secret != "s3cret" {
		t.Errorf("admin secret: got %q", loaded.Admin.Secret)
	}
	if loaded.History.PageSize != 20 {
		t.Errorf("page size: got %d, want 20", loaded.History.PageSize)
	}
	if loaded.Storage.Driver != StorageMemory {
		t.Errorf("storage driver: got %q", loaded.Storage.Driver)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load on missing file should not error, got: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
}

func TestLoadResolvesModelForProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	if err := os.WriteFile(path, []byte("provider: ollama\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "llama3" {
		t.Errorf("model = %q, want llama3", cfg.Model)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	if err := os.WriteFile(path, []byte("admin:\n  secret: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("QUOTEGEN_ADMIN__SECRET", "from-env")
	t.Setenv("QUOTEGEN_PROVIDER", "mock")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Secret != "from-env" {
		t.Errorf("admin secret = %q, want from-env", cfg.Admin.Secret)
	}
	if cfg.Provider != ProviderMock {
		t.Errorf("provider = %q, want mock", cfg.Provider)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("provider: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"QUOTEGEN_PROVIDER":            "provider",
		"QUOTEGEN_ADMIN__SECRET":       "admin.secret",
		"QUOTEGEN_HISTORY__PAGE_SIZE":  "history.page_size",
		"QUOTEGEN_TELEMETRY__ENDPOINT": "telemetry.endpoint",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default", modify: func(c *Config) {}, wantErr: false},
		{name: "empty provider", modify: func(c *Config) { c.Provider = "" }, wantErr: true},
		{name: "unknown provider", modify: func(c *Config) { c.Provider = "anthropic" }, wantErr: true},
		{name: "empty model", modify: func(c *Config) { c.Model = "" }, wantErr: true},
		{name: "negative rpm", modify: func(c *Config) { c.Generation.RPM = -1 }, wantErr: true},
		{name: "port out of range", modify: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "unknown driver", modify: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: true},
		{name: "sqlite without path", modify: func(c *Config) { c.Storage.Path = "" }, wantErr: true},
		{name: "memory without path", modify: func(c *Config) {
			c.Storage.Driver = StorageMemory
			c.Storage.Path = ""
		}, wantErr: false},
		{name: "zero page size", modify: func(c *Config) { c.History.PageSize = 0 }, wantErr: true},
		{name: "zero trending limit", modify: func(c *Config) { c.Trending.Limit = 0 }, wantErr: true},
		{name: "zero session ttl", modify: func(c *Config) { c.Admin.SessionTTLMinutes = 0 }, wantErr: true},
		{name: "negative visitor flag ttl", modify: func(c *Config) { c.Visitors.FlagTTLMinutes = -1 }, wantErr: true},
		{name: "visitor flags kept forever", modify: func(c *Config) { c.Visitors.FlagTTLMinutes = 0 }, wantErr: false},
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

func TestAdminSecretFallback(t *testing.T) {
	cfg := DefaultConfig()
	secret, configured := cfg.AdminSecret()
	if secret != DefaultAdminSecret || configured {
		t.Errorf("AdminSecret() = %q, %v; want default fallback", secret, configured)
	}

	cfg.Admin.Secret = "x"
	secret, configured = cfg.AdminSecret()
	if secret != "x" || !configured {
		t.Errorf("AdminSecret() = %q, %v", secret, configured)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderGoogle); got != "GEMINI_API_KEY" {
		t.Errorf("google = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("ollama = %q, want empty", got)
	}
}
