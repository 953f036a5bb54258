package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/engine"
	"github.com/hyperengineering/facet/internal/types"
)

// GetPortfolio returns the singleton portfolio row: the target allocation
// plus the most recently computed actuals.
func (s *SQLiteStore) GetPortfolio(ctx context.Context) (*types.Portfolio, error) {
	var targetJSON string
	var actualJSON sql.NullString
	var lastCalculatedAt sql.NullString
	p := &types.Portfolio{}

	err := s.db.QueryRowContext(ctx, `
		SELECT target_allocation, actual_allocation, total_hours, score, grade, last_calculated_at
		FROM portfolio WHERE id = 1
	`).Scan(&targetJSON, &actualJSON, &p.TotalHours, &p.Score, &p.Grade, &lastCalculatedAt)
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}

	if err := json.Unmarshal([]byte(targetJSON), &p.TargetAllocation); err != nil {
		return nil, fmt.Errorf("parse target allocation: %w", err)
	}
	if actualJSON.Valid && actualJSON.String != "" {
		if err := json.Unmarshal([]byte(actualJSON.String), &p.ActualAllocation); err != nil {
			return nil, fmt.Errorf("parse actual allocation: %w", err)
		}
	}
	p.LastCalculatedAt = parseNullTime(lastCalculatedAt)
	return p, nil
}

// UpdateTargetAllocation replaces the target allocation after validating it
// against the closed category set and the sum-to-100 invariant.
func (s *SQLiteStore) UpdateTargetAllocation(ctx context.Context, target map[category.Category]float64) error {
	if err := engine.ValidateAllocation(target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAllocation, err)
	}

	targetJSON, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("marshal target allocation: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE portfolio SET target_allocation = ? WHERE id = 1`, string(targetJSON))
	if err != nil {
		return fmt.Errorf("update target allocation: %w", err)
	}
	return nil
}

// SavePortfolioSnapshot records the last computed actuals on the portfolio
// row. Purely informational; every portfolio read recomputes from scratch.
func (s *SQLiteStore) SavePortfolioSnapshot(ctx context.Context, actual map[category.Category]float64, totalHours, score float64, grade string, at time.Time) error {
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		return fmt.Errorf("marshal actual allocation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE portfolio
		SET actual_allocation = ?, total_hours = ?, score = ?, grade = ?, last_calculated_at = ?
		WHERE id = 1
	`, string(actualJSON), totalHours, score, grade, formatTime(at))
	if err != nil {
		return fmt.Errorf("save portfolio snapshot: %w", err)
	}
	return nil
}
