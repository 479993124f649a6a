package events

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Handler provides HTTP endpoints for events.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// AddRequest is the body of a new event. Date uses YYYY-MM-DD.
type AddRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// NewHandler creates an events Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "events"),
	}
}

// Routes returns the route group definition for event endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/events",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Add},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	ev, err := h.sys.Add(r.Context(), req.Name, req.Date)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, ev)
}
