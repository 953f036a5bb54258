package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/facet/internal/types"
	"github.com/oklog/ulid/v2"
)

const insightColumns = `id, type, title, description, confidence, priority, actionable,
	suggested_actions, based_on, generated_at, valid_until,
	dismissed, dismiss_reason, dismissed_at, acted_on, acted_on_at, feedback`

func scanInsight(scanner interface{ Scan(...any) error }) (*types.Insight, error) {
	var in types.Insight
	var actionable, dismissed, actedOn int
	var actionsJSON, basedOnJSON, generatedAt string
	var validUntil, dismissedAt, actedOnAt sql.NullString

	err := scanner.Scan(
		&in.ID,
		&in.Type,
		&in.Title,
		&in.Description,
		&in.Confidence,
		&in.Priority,
		&actionable,
		&actionsJSON,
		&basedOnJSON,
		&generatedAt,
		&validUntil,
		&dismissed,
		&in.DismissReason,
		&dismissedAt,
		&actedOn,
		&actedOnAt,
		&in.Feedback,
	)
	if err != nil {
		return nil, err
	}

	in.Actionable = actionable != 0
	in.Dismissed = dismissed != 0
	in.ActedOn = actedOn != 0
	in.GeneratedAt = parseTime(generatedAt)
	in.ValidUntil = parseNullTime(validUntil)
	in.DismissedAt = parseNullTime(dismissedAt)
	in.ActedOnAt = parseNullTime(actedOnAt)

	if actionsJSON != "" {
		if err := json.Unmarshal([]byte(actionsJSON), &in.SuggestedActions); err != nil {
			return nil, fmt.Errorf("parse suggested actions JSON: %w", err)
		}
	}
	if basedOnJSON != "" && basedOnJSON != "{}" {
		if err := json.Unmarshal([]byte(basedOnJSON), &in.BasedOn); err != nil {
			return nil, fmt.Errorf("parse based_on JSON: %w", err)
		}
	}
	return &in, nil
}

// SaveInsights persists a freshly generated batch, assigning IDs. Previous
// insights the user has not touched (not dismissed, not acted on, no
// feedback) are replaced; anything carrying user state survives so lifecycle
// history is never silently discarded.
func (s *SQLiteStore) SaveInsights(ctx context.Context, insights []types.Insight) ([]types.Insight, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM insights WHERE dismissed = 0 AND acted_on = 0 AND feedback = ''`)
	if err != nil {
		return nil, fmt.Errorf("clear untouched insights: %w", err)
	}

	saved := make([]types.Insight, 0, len(insights))
	for _, in := range insights {
		in.ID = ulid.Make().String()

		actionsJSON, err := json.Marshal(in.SuggestedActions)
		if err != nil {
			return nil, fmt.Errorf("marshal suggested actions: %w", err)
		}
		basedOnJSON, err := json.Marshal(in.BasedOn)
		if err != nil {
			return nil, fmt.Errorf("marshal based_on: %w", err)
		}

		actionable := 0
		if in.Actionable {
			actionable = 1
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO insights (id, type, title, description, confidence, priority, actionable, suggested_actions, based_on, generated_at, valid_until)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, in.ID, in.Type, in.Title, in.Description, in.Confidence, in.Priority, actionable,
			string(actionsJSON), string(basedOnJSON), formatTime(in.GeneratedAt), formatTimePtr(in.ValidUntil))
		if err != nil {
			return nil, fmt.Errorf("insert insight: %w", err)
		}
		saved = append(saved, in)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// ListActiveInsights returns insights that are not dismissed and not
// expired, sorted by priority (high first) then generation time (newest
// first).
func (s *SQLiteStore) ListActiveInsights(ctx context.Context, now time.Time) ([]types.Insight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+insightColumns+`
		FROM insights
		WHERE dismissed = 0 AND (valid_until IS NULL OR valid_until >= ?)
		ORDER BY
			CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC,
			generated_at DESC,
			id DESC
	`, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("list active insights: %w", err)
	}
	defer rows.Close()

	var insights []types.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, *in)
	}
	return insights, rows.Err()
}

// getInsight fetches a single insight or ErrNotFound.
func (s *SQLiteStore) getInsight(ctx context.Context, id string) (*types.Insight, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE id = ?`, id)
	in, err := scanInsight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get insight: %w", err)
	}
	return in, nil
}

// DismissInsight marks an insight dismissed. Dismissing an already-dismissed
// insight is a no-op: the original reason and timestamp are preserved.
func (s *SQLiteStore) DismissInsight(ctx context.Context, id, reason string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE insights SET dismissed = 1, dismiss_reason = ?, dismissed_at = ?
		WHERE id = ? AND dismissed = 0
	`, reason, formatTime(now), id)
	if err != nil {
		return fmt.Errorf("dismiss insight: %w", err)
	}
	return s.checkLifecycleTarget(ctx, res, id)
}

// MarkInsightActedOn flags an insight as acted on. Independent of dismissal;
// a second call is a no-op preserving the original timestamp.
func (s *SQLiteStore) MarkInsightActedOn(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE insights SET acted_on = 1, acted_on_at = ?
		WHERE id = ? AND acted_on = 0
	`, formatTime(now), id)
	if err != nil {
		return fmt.Errorf("mark acted on: %w", err)
	}
	return s.checkLifecycleTarget(ctx, res, id)
}

// SetInsightFeedback records the user's verdict. First feedback wins;
// repeated calls are no-ops.
func (s *SQLiteStore) SetInsightFeedback(ctx context.Context, id string, fb types.Feedback) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE insights SET feedback = ?
		WHERE id = ? AND feedback = ''
	`, fb, id)
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	return s.checkLifecycleTarget(ctx, res, id)
}

// checkLifecycleTarget distinguishes an idempotent no-op from a missing
// record when a guarded UPDATE touched no rows.
func (s *SQLiteStore) checkLifecycleTarget(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	if _, err := s.getInsight(ctx, id); err != nil {
		return err
	}
	return nil
}

// PurgeOldDismissed deletes dismissed insights whose dismissal is older than
// maxAge. Returns the number deleted.
func (s *SQLiteStore) PurgeOldDismissed(ctx context.Context, maxAge time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-maxAge)
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM insights WHERE dismissed = 1 AND dismissed_at IS NOT NULL AND dismissed_at < ?
	`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge dismissed insights: %w", err)
	}
	return res.RowsAffected()
}
