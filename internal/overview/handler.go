package overview

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hearth/internal/events"
	"github.com/JaimeStill/hearth/internal/messages"
	"github.com/JaimeStill/hearth/internal/wishes"
	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Handler provides the overview endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates an overview Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "overview"),
	}
}

// Routes returns the route group definition for the overview endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/overview",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get},
		},
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ov, err := h.sys.Build(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, mapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ov)
}

func mapHTTPStatus(err error) int {
	if errors.Is(err, wishes.ErrStorage) ||
		errors.Is(err, events.ErrStorage) ||
		errors.Is(err, messages.ErrStorage) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
