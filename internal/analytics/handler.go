package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/hearth/internal/records"
	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Handler provides HTTP endpoints for analytics.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates an analytics Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the route group definition for analytics endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/distribution", Handler: h.Distribution},
			{Method: "GET", Pattern: "/top-liked", Handler: h.TopLiked},
			{Method: "GET", Pattern: "/streak", Handler: h.Streak},
			{Method: "GET", Pattern: "/comfort", Handler: h.Comfort},
		},
	}
}

// Distribution accepts the same filters as the record listing.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	filters := records.FiltersFromQuery(r.URL.Query())
	handlers.RespondJSON(w, http.StatusOK, h.sys.Distribution(filters))
}

func (h *Handler) TopLiked(w http.ResponseWriter, r *http.Request) {
	n := DefaultTopN
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLimit)
			return
		}
		n = parsed
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.TopLiked(n))
}

func (h *Handler) Streak(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]int{"streak": h.sys.Streak()})
}

func (h *Handler) Comfort(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Comfort(r.URL.Query().Get("context")))
}
