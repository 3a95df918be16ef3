package main

import (
	"fmt"

	"github.com/anodelabs/anode-agent/internal/deploy"
	"github.com/anodelabs/anode-agent/internal/store"
	"github.com/anodelabs/anode-agent/internal/store/memory"
	"github.com/anodelabs/anode-agent/internal/store/postgres"
	"github.com/anodelabs/anode-agent/pkg/config"
	"github.com/anodelabs/anode-agent/pkg/logger"
)

// openStore returns the run-history store: PostgreSQL when a DSN is
// configured, otherwise an in-memory store for the lifetime of the process.
func openStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	if cfg.DatabaseDSN == "" {
		return memory.NewMemoryStore(), nil
	}
	st, err := postgres.NewPostgresStore(postgres.DefaultConfig(cfg.DatabaseDSN), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening run-history store: %w", err)
	}
	return st, nil
}

// deployerOptions maps cluster config to deploy options.
func deployerOptions(cfg *config.Config) deploy.Options {
	return deploy.Options{
		WeightsFileProperty:   cfg.Cluster.WeightsFileProperty,
		InlineWeightsProperty: cfg.Cluster.InlineWeightsProperty,
	}
}
