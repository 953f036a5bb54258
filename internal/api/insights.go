package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/facet/internal/engine"
	"github.com/hyperengineering/facet/internal/types"
	"github.com/hyperengineering/facet/internal/validation"
)

// RefreshInsights handles POST /api/v1/insights/refresh: runs the insight
// generator over the full record set and persists the result. Insights the
// user has already dismissed, acted on, or rated survive the refresh.
func (h *Handler) RefreshInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	insights, err := engine.GenerateInsights(snap.TimeLogs, snap.Projects, snap.JournalEntries, now)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	saved, err := h.store.SaveInsights(ctx, insights)
	if err != nil {
		slog.Error("failed to save insights", "error", err)
		MapStoreError(w, r, err)
		return
	}
	if saved == nil {
		saved = []types.Insight{}
	}

	slog.Info("insights refreshed", "generated", len(saved))
	writeJSON(w, http.StatusOK, saved)
}

// ListInsights handles GET /api/v1/insights: the active set, meaning not
// dismissed and not expired, highest priority first.
func (h *Handler) ListInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.store.ListActiveInsights(r.Context(), h.now())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if insights == nil {
		insights = []types.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

// DismissRequest is the POST /insights/{id}/dismiss payload.
type DismissRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DismissInsight handles POST /api/v1/insights/{id}/dismiss. Dismissing an
// already-dismissed insight is a no-op that keeps the original reason and
// timestamp.
func (h *Handler) DismissInsight(w http.ResponseWriter, r *http.Request) {
	var req DismissRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
			return
		}
	}

	id := chi.URLParam(r, "id")
	if err := h.store.DismissInsight(r.Context(), id, req.Reason, h.now()); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkInsightActedOn handles POST /api/v1/insights/{id}/acted. Independent
// of dismissal; repeat calls are no-ops.
func (h *Handler) MarkInsightActedOn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.MarkInsightActedOn(r.Context(), id, h.now()); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FeedbackRequest is the POST /insights/{id}/feedback payload.
type FeedbackRequest struct {
	Feedback types.Feedback `json:"feedback"`
}

// SetInsightFeedback handles POST /api/v1/insights/{id}/feedback. The first
// recorded verdict wins; later calls are no-ops.
func (h *Handler) SetInsightFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateFeedback(req.Feedback); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.SetInsightFeedback(r.Context(), id, req.Feedback); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
