package records

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/hearth/pkg/handlers"
	"github.com/JaimeStill/hearth/pkg/pagination"
	"github.com/JaimeStill/hearth/pkg/routes"
)

// Handler provides HTTP endpoints for record operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// BatchDeleteRequest lists the records to remove.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "records"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for record endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/types", Handler: h.Types},
			{Method: "GET", Pattern: "/matches", Handler: h.Matches},
			{Method: "GET", Pattern: "/status", Handler: h.Status},
			{Method: "GET", Pattern: "/export.csv", Handler: h.export("csv")},
			{Method: "GET", Pattern: "/export.xlsx", Handler: h.export("xlsx")},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "POST", Pattern: "/delete", Handler: h.DeleteBatch},
			{Method: "POST", Pattern: "/flush", Handler: h.Flush},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "DELETE", Pattern: "", Handler: h.Clear},
		},
	}
}

// List returns a paginated list of records with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single record by ID.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Types returns the suggested and recorded types and contexts.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Types())
}

// Matches returns the records sharing the name query parameter.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyName)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Matches(name))
}

// Status reports the record count and any pending persistence problem.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Status())
}

// Submit accepts a rating as JSON or as a multipart form with an optional photo field.
// A name conflict in auto mode answers 409 with the existing records.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.readSubmit(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		var match *MatchError
		if errors.As(err, &match) {
			h.logger.Warn("submission matches existing records", "name", match.Name, "matches", len(match.Matches))
			handlers.RespondJSON(w, http.StatusConflict, map[string]any{
				"error":   err.Error(),
				"matches": match.Matches,
			})
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusCreated
	if result.Action == Updated {
		status = http.StatusOK
	}
	handlers.RespondJSON(w, status, result)
}

// DeleteBatch removes the records listed in the request body.
func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidInput, err))
		return
	}

	removed, err := h.sys.DeleteBatch(r.Context(), req.IDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// Flush retries persisting the in-memory record set.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Flush(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Status())
}

// Delete removes a record by ID.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every record.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Clear(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) export(format string) http.HandlerFunc {
	filename := "records." + format
	contentType := exportTypes[format]

	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := h.sys.Export(r.Context(), format, &buf); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Warn("export write failed", "format", format, "error", err)
		}
	}
}

var exportTypes = map[string]string{
	"csv":  "text/csv; charset=utf-8",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (h *Handler) readSubmit(w http.ResponseWriter, r *http.Request) (SubmitCommand, error) {
	var cmd SubmitCommand

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := handlers.DecodeJSON(r, &cmd); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return cmd, ErrFileTooLarge
			}
			return cmd, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return cmd, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return cmd, ErrFileTooLarge
		}
		return cmd, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	cmd = SubmitCommand{
		Type:    r.FormValue("type"),
		Name:    r.FormValue("name"),
		Link:    r.FormValue("link"),
		Context: r.FormValue("context"),
		Grade:   GradeInput{Main: r.FormValue("grade_main"), Sub: r.FormValue("grade_sub")},
		Mood:    r.FormValue("mood"),
		Remark:  r.FormValue("remark"),
		Mode:    Mode(r.FormValue("mode")),
	}

	if sub := r.FormValue("second_sub"); sub != "" {
		cmd.SecondGrade = &GradeInput{Main: r.FormValue("second_main"), Sub: sub}
	}

	if v := strings.TrimSpace(r.FormValue("weight")); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cmd, fmt.Errorf("%w: weight %q", ErrInvalidInput, v)
		}
		cmd.Weight = &weight
	}

	file, header, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return cmd, nil
	case err != nil:
		return cmd, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return cmd, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(data) > 0 {
		cmd.Photo = &PhotoUpload{Filename: header.Filename, Data: data}
	}

	return cmd, nil
}
