package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// descends into a section: QUOTEGEN_ADMIN__SECRET sets admin.secret.
const EnvPrefix = "QUOTEGEN_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (QUOTEGEN_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults. The model is resolved after the provider is known.
	cfg := DefaultConfig()
	cfg.Model = ""

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return cfg, nil
}

// envKey maps QUOTEGEN_HISTORY__PAGE_SIZE to history.page_size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
	ProviderOllama: true,
	ProviderMock:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of google, openai, ollama, mock", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Generation.RPM < 0 {
		return fmt.Errorf("generation.rpm must be non-negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q: must be sqlite or memory", c.Storage.Driver)
	}

	if c.History.PageSize <= 0 {
		return fmt.Errorf("history.page_size must be positive")
	}

	if c.Trending.Limit <= 0 {
		return fmt.Errorf("trending.limit must be positive")
	}

	if c.Admin.SessionTTLMinutes <= 0 {
		return fmt.Errorf("admin.session_ttl_minutes must be positive")
	}

	if c.Visitors.FlagTTLMinutes < 0 {
		return fmt.Errorf("visitors.flag_ttl_minutes must be non-negative")
	}

	return nil
}

// AdminSecret returns the configured admin secret, or DefaultAdminSecret
// and false when none is set.
func (c *Config) AdminSecret() (string, bool) {
	if c.Admin.Secret == "" {
		return DefaultAdminSecret, false
	}
	return c.Admin.Secret, true
}
