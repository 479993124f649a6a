package main

import (
	"maps"
	"slices"
	"time"

	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/internal/infrastructure"
)

// Server ties the infrastructure, the mounted modules and the HTTP listener together.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"hearth initialized",
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"version", cfg.Version,
		"records", cfg.Store.Backend,
		"photos", cfg.Storage.Provider,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(cfg, router, infra.Logger),
	}, nil
}

// Start registers the infrastructure checks and begins listening. The
// listener comes up before the checks finish so /readyz can report progress.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go s.reportStartup()
	return nil
}

func (s *Server) reportStartup() {
	lc := s.infra.Lifecycle
	lc.WaitForStartup()

	failures := lc.Failures()
	if len(failures) == 0 {
		s.infra.Logger.Info("hearth ready")
		return
	}

	for _, name := range slices.Sorted(maps.Keys(failures)) {
		s.infra.Logger.Warn("startup check failed", "check", name, "error", failures[name])
	}
	s.infra.Logger.Warn("hearth running degraded", "failed", len(failures))
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
