package wishes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Handler provides HTTP endpoints for the wish list.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// AddRequest is the body of a new wish.
type AddRequest struct {
	Text string `json:"text"`
}

// NewHandler creates a wish list Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "wishes"),
	}
}

// Routes returns the route group definition for wish endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/wishes",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Add},
			{Method: "POST", Pattern: "/{id}/toggle", Handler: h.Toggle},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	wish, err := h.sys.Add(r.Context(), req.Text)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, wish)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	wish, err := h.sys.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, wish)
}
