package config

// DefaultAdminSecret is used when no admin secret is configured. It is
// public knowledge; deployments are expected to override it.
const DefaultAdminSecret = "admin"

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderGoogle: "gemini-2.5-pro",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderOllama: "llama3",
	ProviderMock:   "mock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGoogle,
		Model:    defaultModels[ProviderGoogle],
		Generation: GenerationConfig{
			RPM: 30,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
			Path:   "data/quotegen.db",
		},
		Admin: AdminConfig{
			SessionTTLMinutes: 30,
		},
		History: HistoryConfig{
			PageSize: 12,
		},
		Trending: TrendingConfig{
			Limit: 6,
		},
		Visitors: VisitorsConfig{
			FlagTTLMinutes: 24 * 60,
		},
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider ProviderType) string {
	return defaultModels[provider]
}
