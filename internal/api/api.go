// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/internal/infrastructure"
	"github.com/JaimeStill/hearth/pkg/formatting"
	"github.com/JaimeStill/hearth/pkg/middleware"
	"github.com/JaimeStill/hearth/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Domain startup hooks are registered with the infrastructure lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}
	if err := domain.Start(runtime); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	runtime.Logger.Info(
		"api module ready",
		"base_path", cfg.API.BasePath,
		"backend", cfg.Store.Backend,
		"max_upload", formatting.FormatBytes(cfg.API.MaxUploadSizeBytes(), 1),
	)

	return module.New(
		cfg.API.BasePath,
		mux,
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		middleware.Recover(runtime.Logger),
	), nil
}
