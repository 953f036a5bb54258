package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/facet/internal/types"
	"github.com/oklog/ulid/v2"
)

const timeLogColumns = `id, project_id, date, duration, activity_type,
	energy_level, productivity_feeling, enjoyment_level, notes, created_at, updated_at`

func scanTimeLog(scanner interface{ Scan(...any) error }) (*types.TimeLog, error) {
	var l types.TimeLog
	var date, createdAt, updatedAt string
	var energy, productivity, enjoyment sql.NullInt64

	err := scanner.Scan(
		&l.ID,
		&l.ProjectID,
		&date,
		&l.Duration,
		&l.ActivityType,
		&energy,
		&productivity,
		&enjoyment,
		&l.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Date = parseTime(date)
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	if energy.Valid {
		v := int(energy.Int64)
		l.EnergyLevel = &v
	}
	if productivity.Valid {
		v := int(productivity.Int64)
		l.ProductivityFeeling = &v
	}
	if enjoyment.Valid {
		v := int(enjoyment.Int64)
		l.EnjoymentLevel = &v
	}
	return &l, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// CreateTimeLog inserts a time log and applies the compensating updates to
// the owning project inside the same transaction: the duration is added to
// the running total and the last-worked timestamp advances when the log's
// date is newer than what is recorded. A backdated log never moves the
// timestamp backward. The running total is maintained procedurally, not
// derived; an interrupted sequence of writes can leave it drifted from the
// true sum of logs.
func (s *SQLiteStore) CreateTimeLog(ctx context.Context, nl types.NewTimeLog) (*types.TimeLog, error) {
	now := time.Now().UTC()
	l := types.TimeLog{
		ID:                  ulid.Make().String(),
		ProjectID:           nl.ProjectID,
		Date:                nl.Date,
		Duration:            nl.Duration,
		ActivityType:        nl.ActivityType,
		EnergyLevel:         nl.EnergyLevel,
		ProductivityFeeling: nl.ProductivityFeeling,
		EnjoymentLevel:      nl.EnjoymentLevel,
		Notes:               nl.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, l.ProjectID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrProjectNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO time_logs (id, project_id, date, duration, activity_type, energy_level, productivity_feeling, enjoyment_level, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.ProjectID, formatTime(l.Date), l.Duration, l.ActivityType,
		nullableInt(l.EnergyLevel), nullableInt(l.ProductivityFeeling), nullableInt(l.EnjoymentLevel),
		l.Notes, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert time log: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE projects
		SET total_hours_logged = total_hours_logged + ?,
			last_worked_at = CASE WHEN last_worked_at IS NULL OR last_worked_at < ? THEN ? ELSE last_worked_at END,
			updated_at = ?
		WHERE id = ?
	`, l.Duration, formatTime(l.Date), formatTime(l.Date), formatTime(now), l.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("update project totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &l, nil
}

// GetTimeLog fetches a time log by id.
func (s *SQLiteStore) GetTimeLog(ctx context.Context, id string) (*types.TimeLog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE id = ?`, id)
	l, err := scanTimeLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get time log: %w", err)
	}
	return l, nil
}

// ListTimeLogs returns time logs, newest first, optionally restricted to
// dates at or after since.
func (s *SQLiteStore) ListTimeLogs(ctx context.Context, since *time.Time) ([]types.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs`
	var args []any
	if since != nil {
		query += ` WHERE date >= ?`
		args = append(args, formatTime(*since))
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	var logs []types.TimeLog
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// UpdateTimeLog applies a partial update. A duration change applies the
// compensating delta to the owning project's running total, and a date change
// advances the project's last-worked timestamp when the new date is newer,
// all in the same transaction.
func (s *SQLiteStore) UpdateTimeLog(ctx context.Context, id string, u types.TimeLogUpdate) (*types.TimeLog, error) {
	l, err := s.GetTimeLog(ctx, id)
	if err != nil {
		return nil, err
	}

	previousDuration := l.Duration
	if u.Date != nil {
		l.Date = *u.Date
	}
	if u.Duration != nil {
		l.Duration = *u.Duration
	}
	if u.ActivityType != nil {
		l.ActivityType = *u.ActivityType
	}
	if u.EnergyLevel != nil {
		l.EnergyLevel = u.EnergyLevel
	}
	if u.ProductivityFeeling != nil {
		l.ProductivityFeeling = u.ProductivityFeeling
	}
	if u.EnjoymentLevel != nil {
		l.EnjoymentLevel = u.EnjoymentLevel
	}
	if u.Notes != nil {
		l.Notes = *u.Notes
	}
	l.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE time_logs
		SET date = ?, duration = ?, activity_type = ?, energy_level = ?, productivity_feeling = ?, enjoyment_level = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, formatTime(l.Date), l.Duration, l.ActivityType,
		nullableInt(l.EnergyLevel), nullableInt(l.ProductivityFeeling), nullableInt(l.EnjoymentLevel),
		l.Notes, formatTime(l.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("update time log: %w", err)
	}

	if delta := l.Duration - previousDuration; delta != 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE projects SET total_hours_logged = total_hours_logged + ?, updated_at = ? WHERE id = ?
		`, delta, formatTime(l.UpdatedAt), l.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("apply duration delta: %w", err)
		}
	}

	if u.Date != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE projects
			SET last_worked_at = CASE WHEN last_worked_at IS NULL OR last_worked_at < ? THEN ? ELSE last_worked_at END,
				updated_at = ?
			WHERE id = ?
		`, formatTime(l.Date), formatTime(l.Date), formatTime(l.UpdatedAt), l.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("advance last worked at: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}

// DeleteTimeLog removes a time log and subtracts its duration from the
// owning project's running total.
func (s *SQLiteStore) DeleteTimeLog(ctx context.Context, id string) error {
	l, err := s.GetTimeLog(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete time log: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE projects SET total_hours_logged = total_hours_logged - ?, updated_at = ? WHERE id = ?
	`, l.Duration, formatTime(now), l.ProjectID)
	if err != nil {
		return fmt.Errorf("apply compensating delta: %w", err)
	}

	return tx.Commit()
}
