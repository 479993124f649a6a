package api

import (
	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/internal/infrastructure"
	"github.com/JaimeStill/hearth/internal/scoring"
	"github.com/JaimeStill/hearth/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Engine     *scoring.Engine
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	engine, err := cfg.Scoring.Engine()
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Clock:     infra.Clock,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Engine:     engine,
		Pagination: cfg.API.Pagination,
	}, nil
}
