package genai

import (
	"fmt"
	"os"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider string // "google", "openai", "ollama" or "mock"
	Model    string
	APIKey   string // falls back to the provider's environment variable
	BaseURL  string
	RPM      int // requests per minute, 0 disables limiting
}

// APIKeyEnvVars lists the environment variables consulted for each provider,
// in order of precedence.
var APIKeyEnvVars = map[string][]string{
	"google": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai": {"OPENAI_API_KEY"},
}

// New creates the configured Client.
func New(s Settings) (Client, error) {
	apiKey := s.APIKey
	if apiKey == "" {
		for _, name := range APIKeyEnvVars[s.Provider] {
			if v := os.Getenv(name); v != "" {
				apiKey = v
				break
			}
		}
	}

	var c Client
	switch s.Provider {
	case "google":
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
		c = NewGemini(apiKey, s.Model, s.BaseURL)

	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		c = NewOpenAI(apiKey, s.Model, s.BaseURL)

	case "ollama":
		host := s.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		c = NewOllama(host, s.Model)

	case "mock":
		c = NewMock()

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", s.Provider)
	}

	if s.RPM > 0 {
		c = NewRateLimited(c, s.RPM)
	}
	return c, nil
}
