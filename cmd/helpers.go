package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/agent"
	"github.com/ziadkadry99/apptagent/internal/auth"
	"github.com/ziadkadry99/apptagent/internal/config"
	"github.com/ziadkadry99/apptagent/internal/db"
	"github.com/ziadkadry99/apptagent/internal/llm"
	"github.com/ziadkadry99/apptagent/internal/logger"
	"github.com/ziadkadry99/apptagent/internal/metrics"
)

// app bundles what every command needs: configuration, logging and a
// Host configured with the business from the config file, if any.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	db      *db.DB
	host    *agent.Host
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `apptagent init` to create a config file", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(p, cfg.RateLimitRPM), nil
}

// newApp wires the runtime. A missing API key is not fatal: the agent
// still books, answering free-form turns with an apology.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		log.Warn("text generation disabled", zap.String("provider", string(cfg.Provider)), zap.Error(err))
	}

	backends := &agent.Backends{
		Calendar:        string(cfg.Calendar.Backend),
		Records:         string(cfg.Records.Backend),
		CredentialsFile: cfg.Google.CredentialsFile,
		LLM:             provider,
	}
	if cfg.UsesGoogle() && cfg.Google.CredentialsFile == "" {
		stored, err := auth.Load(auth.CredentialPath(cfg.DataDir))
		if err != nil {
			return nil, err
		}
		backends.OAuth = stored.Google
	}
	if cfg.Calendar.Backend == config.BackendLocal || cfg.Records.Backend == config.BackendLocal {
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = database
		backends.DB = database
	}

	a.host = agent.NewHost(backends, agent.Options{
		Logger:  log,
		Metrics: a.metrics,
		Generation: llm.Options{
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
	})

	if cfg.Business != nil {
		if _, err := a.host.Configure(ctx, *cfg.Business); err != nil {
			a.Close()
			return nil, fmt.Errorf("configuring business: %w", err)
		}
	}
	return a, nil
}

// agent returns the configured agent or explains how to configure one.
func (a *app) agent() (*agent.Agent, error) {
	ag, err := a.host.Agent()
	if errors.Is(err, agent.ErrNotConfigured) {
		return nil, fmt.Errorf("no business configured in %s; run `apptagent init` or add a business section", cfgFile)
	}
	return ag, err
}

// Close flushes the logger and closes the database.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.log.Sync()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
