package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/facet/internal/assistant"
	"github.com/hyperengineering/facet/internal/store"
	"github.com/hyperengineering/facet/internal/types"
	"github.com/hyperengineering/facet/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	store     store.Store
	assistant assistant.Assistant
	apiKey    string
	version   string
	now       func() time.Time
}

// NewHandler creates a new Handler with store.Store interface. The
// assistant may be nil, in which case /chat returns 503.
func NewHandler(s store.Store, a assistant.Assistant, apiKey, version string) *Handler {
	return &Handler{
		store:     s,
		assistant: a,
		apiKey:    apiKey,
		version:   version,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	projects, timeLogs, err := h.store.Counts(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		ProjectCount: projects,
		TimeLogCount: timeLogs,
	})
}

// CreateProject handles POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.NewProject
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateNewProject(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	project, err := h.store.CreateProject(r.Context(), req)
	if err != nil {
		slog.Error("create project failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// ListProjects handles GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if projects == nil {
		projects = []types.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject handles GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject handles PATCH /api/v1/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateProjectUpdate(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	project, err := h.store.UpdateProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/v1/projects/{id}. Time logs cascade;
// already-aggregated history for them moves to the unknown bucket.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTimeLog handles POST /api/v1/logs
func (h *Handler) CreateTimeLog(w http.ResponseWriter, r *http.Request) {
	var req types.NewTimeLog
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateNewTimeLog(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	log, err := h.store.CreateTimeLog(r.Context(), req)
	if err != nil {
		slog.Error("create time log failed", "error", err, "project_id", req.ProjectID)
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, log)
}

// ListTimeLogs handles GET /api/v1/logs with an optional window filter:
// ?days=N limits to the last N days, ?since=RFC3339 to an explicit start.
func (h *Handler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	var since *time.Time

	if days := r.URL.Query().Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			WriteProblem(w, r, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		t := h.now().Add(-time.Duration(n) * 24 * time.Hour)
		since = &t
	} else if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteProblem(w, r, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = &t
	}

	logs, err := h.store.ListTimeLogs(r.Context(), since)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if logs == nil {
		logs = []types.TimeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// GetTimeLog handles GET /api/v1/logs/{id}
func (h *Handler) GetTimeLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.store.GetTimeLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// UpdateTimeLog handles PATCH /api/v1/logs/{id}
func (h *Handler) UpdateTimeLog(w http.ResponseWriter, r *http.Request) {
	var req types.TimeLogUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateTimeLogUpdate(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	log, err := h.store.UpdateTimeLog(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// DeleteTimeLog handles DELETE /api/v1/logs/{id}
func (h *Handler) DeleteTimeLog(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTimeLog(r.Context(), chi.URLParam(r, "id")); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateJournalEntry handles POST /api/v1/journal
func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req types.NewJournalEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateNewJournalEntry(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	entry, err := h.store.CreateJournalEntry(r.Context(), req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListJournalEntries handles GET /api/v1/journal
func (h *Handler) ListJournalEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListJournalEntries(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if entries == nil {
		entries = []types.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// DeleteJournalEntry handles DELETE /api/v1/journal/{id}
func (h *Handler) DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteJournalEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
