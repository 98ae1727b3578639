package config

// ProviderType identifies a text-generation provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	ProviderMock   ProviderType = "mock"
)

// StorageDriver selects the document store implementation.
type StorageDriver string

const (
	StorageSQLite StorageDriver = "sqlite"
	StorageMemory StorageDriver = "memory"
)

// Config is the top-level quotegen configuration, corresponding to .quotegen.yml.
type Config struct {
	Provider   ProviderType     `yaml:"provider" koanf:"provider"`
	Model      string           `yaml:"model" koanf:"model"`
	APIKey     string           `yaml:"api_key,omitempty" koanf:"api_key"`
	BaseURL    string           `yaml:"base_url,omitempty" koanf:"base_url"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Storage    StorageConfig    `yaml:"storage" koanf:"storage"`
	Admin      AdminConfig      `yaml:"admin" koanf:"admin"`
	History    HistoryConfig    `yaml:"history" koanf:"history"`
	Trending   TrendingConfig   `yaml:"trending" koanf:"trending"`
	Visitors   VisitorsConfig   `yaml:"visitors" koanf:"visitors"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" koanf:"telemetry"`
}

// GenerationConfig tunes calls to the provider.
type GenerationConfig struct {
	RPM         int     `yaml:"rpm" koanf:"rpm"`
	Temperature float64 `yaml:"temperature" koanf:"temperature"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// StorageConfig selects where generation history and site stats live.
type StorageConfig struct {
	Driver StorageDriver `yaml:"driver" koanf:"driver"`
	Path   string        `yaml:"path" koanf:"path"`
}

// AdminConfig configures the history gate. Secret is compared verbatim; it
// deters casual visitors and is not a security boundary.
type AdminConfig struct {
	Secret            string `yaml:"secret,omitempty" koanf:"secret"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" koanf:"session_ttl_minutes"`
}

// HistoryConfig sizes history pages.
type HistoryConfig struct {
	PageSize int `yaml:"page_size" koanf:"page_size"`
}

// TrendingConfig sizes the trending-topics window.
type TrendingConfig struct {
	Limit int `yaml:"limit" koanf:"limit"`
}

// VisitorsConfig tunes visit counting. The browser's recorded-visit cookie
// is what stops a session counting twice; the server-side flag only
// collapses concurrent activations and is forgotten after FlagTTLMinutes
// idle.
type VisitorsConfig struct {
	FlagTTLMinutes int `yaml:"flag_ttl_minutes" koanf:"flag_ttl_minutes"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint,omitempty" koanf:"endpoint"`
}
