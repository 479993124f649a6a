package api

import (
	"net/http"

	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/internal/scoring"
	"github.com/JaimeStill/hearth/pkg/routes"
)

func routeGroups(domain *Domain, cfg *config.Config, runtime *Runtime) []routes.Group {
	return []routes.Group{
		scoring.NewHandler(runtime.Engine, runtime.Logger).Routes(),
		domain.Records.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Analytics.Handler().Routes(),
		domain.Messages.Handler().Routes(),
		domain.Lottery.Handler().Routes(),
		domain.Wishes.Handler().Routes(),
		domain.Events.Handler().Routes(),
		domain.Photos.Handler().Routes(),
		domain.Overview.Handler().Routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	groups := routeGroups(domain, cfg, runtime)
	routes.Register(mux, groups...)

	for _, p := range routes.Patterns(groups...) {
		runtime.Logger.Debug("route registered", "base_path", cfg.API.BasePath, "pattern", p)
	}
}
