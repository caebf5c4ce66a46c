package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/detector"
	"github.com/kozaktomas/face-gate/internal/events"
	"github.com/kozaktomas/face-gate/internal/registry"
	"github.com/kozaktomas/face-gate/internal/registry/postgres"
	"github.com/kozaktomas/face-gate/internal/service"
	"github.com/kozaktomas/face-gate/internal/trigger"
)

// openStore picks the registry backend: PostgreSQL when DATABASE_URL is
// set, the JSON file registry otherwise. The caller owns the returned
// store and must Close it.
func openStore(ctx context.Context, cfg *config.Config) (registry.Store, error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return postgres.NewUserStore(pool), nil
	}

	store, err := registry.NewFileStore(cfg.RegistryPath(), cfg.DescriptorDim())
	if err != nil {
		return nil, fmt.Errorf("opening registry file: %w", err)
	}
	return store, nil
}

// buildService wires the full workflow stack from configuration.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, registry.Store, *detector.Client, *events.Hub, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	det := detector.NewClient(cfg.Detector.URL, cfg.ModelName())
	hub := events.NewHub()
	gate := trigger.NewGate(cfg.Trigger.Cooldown)
	svc := service.New(store, det, hub, gate, cfg.MatchThreshold(), cfg.DescriptorDim())
	return svc, store, det, hub, nil
}
