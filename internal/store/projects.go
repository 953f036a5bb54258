package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/types"
	"github.com/oklog/ulid/v2"
)

const projectColumns = `id, name, legacy_type, status, category, category_alignment,
	total_hours_logged, target_hours, last_worked_at, created_at, updated_at`

// scanProject scans a project row.
func scanProject(scanner interface{ Scan(...any) error }) (*types.Project, error) {
	var p types.Project
	var targetHours sql.NullFloat64
	var lastWorkedAt sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.LegacyType,
		&p.Status,
		&p.Category,
		&p.CategoryAlignment,
		&p.TotalHoursLogged,
		&targetHours,
		&lastWorkedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if targetHours.Valid {
		p.TargetHours = &targetHours.Float64
	}
	p.LastWorkedAt = parseNullTime(lastWorkedAt)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// CreateProject stores a new project.
func (s *SQLiteStore) CreateProject(ctx context.Context, np types.NewProject) (*types.Project, error) {
	now := time.Now().UTC()
	p := types.Project{
		ID:                ulid.Make().String(),
		Name:              np.Name,
		LegacyType:        np.LegacyType,
		Status:            np.Status,
		Category:          np.Category,
		CategoryAlignment: np.CategoryAlignment,
		TargetHours:       np.TargetHours,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.Status == "" {
		p.Status = types.StatusPlanning
	}

	var targetHours any
	if p.TargetHours != nil {
		targetHours = *p.TargetHours
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, legacy_type, status, category, category_alignment, total_hours_logged, target_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
	`, p.ID, p.Name, p.LegacyType, p.Status, p.Category, p.CategoryAlignment, targetHours, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return &p, nil
}

// GetProject fetches a project by id.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject applies a partial update and returns the updated project.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, u types.ProjectUpdate) (*types.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.CategoryAlignment != nil {
		p.CategoryAlignment = *u.CategoryAlignment
	}
	if u.TargetHours != nil {
		p.TargetHours = u.TargetHours
	}
	p.UpdatedAt = time.Now().UTC()

	var targetHours any
	if p.TargetHours != nil {
		targetHours = *p.TargetHours
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, status = ?, category = ?, category_alignment = ?, target_hours = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Status, p.Category, p.CategoryAlignment, targetHours, formatTime(p.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	return p, nil
}

// DeleteProject removes a project. Its time logs and journal entries go with
// it via foreign-key cascade.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// BackfillCategories assigns categories to legacy projects that predate the
// category field, using the registry's fixed type mapping. Projects whose
// legacy type has no mapping are left untouched. Returns the number of
// projects updated.
func (s *SQLiteStore) BackfillCategories(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, legacy_type FROM projects WHERE category = '' AND legacy_type != ''`)
	if err != nil {
		return 0, fmt.Errorf("query legacy projects: %w", err)
	}
	defer rows.Close()

	type pending struct {
		id  string
		cat category.Category
	}
	var updates []pending
	for rows.Next() {
		var id, legacyType string
		if err := rows.Scan(&id, &legacyType); err != nil {
			return 0, err
		}
		if c, ok := category.FromLegacyType(legacyType); ok {
			updates = append(updates, pending{id: id, cat: c})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	now := formatTime(time.Now().UTC())
	var count int64
	for _, u := range updates {
		res, err := s.db.ExecContext(ctx,
			`UPDATE projects SET category = ?, updated_at = ? WHERE id = ?`, u.cat, now, u.id)
		if err != nil {
			return count, fmt.Errorf("backfill project %s: %w", u.id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count += n
		}
	}
	return count, nil
}
