package scoring

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Vocabulary is the grade vocabulary together with the active scoring settings.
type Vocabulary struct {
	Groups              []grades.Group `json:"groups"`
	Tiers               []Tier         `json:"tiers"`
	Weight              float64        `json:"weight"`
	RecommendThreshold  float64        `json:"recommend_threshold"`
	AcceptableThreshold float64        `json:"acceptable_threshold"`
}

// PreviewRequest scores a grade pair without recording it.
// An empty secondary scores the primary alone.
type PreviewRequest struct {
	PrimaryMain    string   `json:"primary_main"`
	PrimaryGrade   string   `json:"primary_grade"`
	SecondaryMain  string   `json:"secondary_main"`
	SecondaryGrade string   `json:"secondary_grade"`
	Weight         *float64 `json:"weight"`
}

// Handler serves the grade vocabulary and score previews.
type Handler struct {
	engine *Engine
	logger *slog.Logger
}

func NewHandler(engine *Engine, logger *slog.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger.With("handler", "grades"),
	}
}

// Routes returns the route group definition for grade endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/grades",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Vocabulary},
			{Method: "POST", Pattern: "/score", Handler: h.Preview},
		},
	}
}

func (h *Handler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Vocabulary{
		Groups:              grades.Vocabulary(),
		Tiers:               Tiers,
		Weight:              h.engine.Weight,
		RecommendThreshold:  h.engine.RecommendThreshold,
		AcceptableThreshold: h.engine.AcceptableThreshold,
	})
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.preview(req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) preview(req PreviewRequest) (Result, error) {
	primary, err := grades.Resolve(req.PrimaryMain, req.PrimaryGrade)
	if err != nil {
		return Result{}, err
	}

	if req.SecondaryGrade == "" {
		if req.Weight != nil {
			if err := ValidateWeight(*req.Weight); err != nil {
				return Result{}, err
			}
		}
		return h.engine.ScoreSingle(primary)
	}

	secondary, err := grades.Resolve(req.SecondaryMain, req.SecondaryGrade)
	if err != nil {
		return Result{}, err
	}
	return h.engine.ScoreGrades(primary, secondary, req.Weight)
}
