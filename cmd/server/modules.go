package main

import (
	"net/http"

	"github.com/JaimeStill/hearth/internal/api"
	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/internal/infrastructure"
	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type readiness struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, readiness{Status: "ok"})
	})

	// Startup check failures keep the service not ready; a failed record
	// load is reported here while the API keeps serving an empty set.
	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, readiness{Status: "not ready"})
			return
		}
		if failures := infra.Lifecycle.Failures(); len(failures) > 0 {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, readiness{
				Status:   "degraded",
				Failures: failures,
			})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, readiness{Status: "ready"})
	})

	return router
}
