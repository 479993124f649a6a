package lottery

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Handler provides HTTP endpoints for the lottery.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a lottery Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "lottery"),
	}
}

// Routes returns the route group definition for lottery endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/lottery",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Pools},
			{Method: "PUT", Pattern: "", Handler: h.Replace},
			{Method: "POST", Pattern: "/{pool}/draw", Handler: h.Draw},
		},
	}
}

func (h *Handler) Pools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.sys.Pools(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, pools)
}

// Replace overwrites both pools with the request body.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var req Pools
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	pools, err := h.sys.Replace(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, pools)
}

func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	draw, err := h.sys.Draw(r.Context(), r.PathValue("pool"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, draw)
}
