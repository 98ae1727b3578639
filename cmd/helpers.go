package cmd

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/quotegen/internal/config"
	"github.com/ziadkadry99/quotegen/internal/db"
	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/genai"
	"github.com/ziadkadry99/quotegen/internal/quotes"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `quotegen init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openStore opens the configured document store. forceMemory overrides the
// configured driver. The returned close func is never nil.
func openStore(cfg *config.Config, forceMemory bool) (docstore.Store, func() error, error) {
	if forceMemory || cfg.Storage.Driver == config.StorageMemory {
		return docstore.NewMemory(), func() error { return nil }, nil
	}
	database, err := db.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Database: %s\n", database.Path())
	}
	return docstore.NewSQLite(database), database.Close, nil
}

// createClientFromConfig creates the text-generation client.
func createClientFromConfig(cfg *config.Config) (genai.Client, error) {
	return genai.New(genai.Settings{
		Provider: string(cfg.Provider),
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		RPM:      cfg.Generation.RPM,
	})
}

// newQuoteService wires a client and store into the generation service.
func newQuoteService(cfg *config.Config, store docstore.Store) (*quotes.Service, error) {
	client, err := createClientFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Provider, err)
	}
	var opts []quotes.Option
	if cfg.Generation.Temperature > 0 {
		opts = append(opts, quotes.WithTemperature(cfg.Generation.Temperature))
	}
	return quotes.NewService(client, store, cfg.Model, opts...), nil
}
