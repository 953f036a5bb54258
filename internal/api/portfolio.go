package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/engine"
	"github.com/hyperengineering/facet/internal/types"
)

// PortfolioResponse is the GET /portfolio payload: current target and
// freshly recomputed actuals plus the full balance report and the rolling
// weekly trend, oldest bucket first.
type PortfolioResponse struct {
	Portfolio *types.Portfolio      `json:"portfolio"`
	Report    *engine.BalanceReport `json:"report"`
	Trend     []*engine.Aggregate   `json:"trend"`
	Unknown   float64               `json:"unknown_hours"`
	LogCount  int                   `json:"log_count"`
}

// GetPortfolio handles GET /api/v1/portfolio. Actuals are recomputed from
// the full record set on every call and the resulting snapshot persisted.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	portfolio, err := h.store.GetPortfolio(ctx)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	agg, err := engine.AggregateLogs(snap.TimeLogs, snap.Projects, engine.AllTime())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	report, err := engine.Score(agg.CategoryPercentages, portfolio.TargetAllocation)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	trend, err := engine.WeeklyTrend(snap.TimeLogs, snap.Projects, now)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	if err := h.store.SavePortfolioSnapshot(ctx, agg.CategoryPercentages, agg.TotalHours, report.Score, report.Grade, now); err != nil {
		// The computed answer is still good; log and serve it.
		slog.Error("failed to persist portfolio snapshot", "error", err)
	}

	portfolio.ActualAllocation = agg.CategoryPercentages
	portfolio.TotalHours = agg.TotalHours
	portfolio.Score = report.Score
	portfolio.Grade = report.Grade
	portfolio.LastCalculatedAt = &now

	writeJSON(w, http.StatusOK, PortfolioResponse{
		Portfolio: portfolio,
		Report:    report,
		Trend:     trend,
		Unknown:   agg.UnknownHours,
		LogCount:  agg.LogCount,
	})
}

// TargetAllocationRequest is the PUT /portfolio/target payload.
type TargetAllocationRequest struct {
	TargetAllocation map[category.Category]float64 `json:"target_allocation"`
}

// UpdateTargetAllocation handles PUT /api/v1/portfolio/target. The new
// allocation must cover exactly the known categories and sum to 100.
func (h *Handler) UpdateTargetAllocation(w http.ResponseWriter, r *http.Request) {
	var req TargetAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if err := h.store.UpdateTargetAllocation(r.Context(), req.TargetAllocation); err != nil {
		MapStoreError(w, r, err)
		return
	}

	portfolio, err := h.store.GetPortfolio(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}
