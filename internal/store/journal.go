package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/facet/internal/types"
	"github.com/oklog/ulid/v2"
)

const journalColumns = `id, date, project_id, entry_type, content, sentiment, favorite, tags, created_at`

func scanJournalEntry(scanner interface{ Scan(...any) error }) (*types.JournalEntry, error) {
	var e types.JournalEntry
	var date, createdAt, tagsJSON string
	var projectID sql.NullString
	var favorite int

	err := scanner.Scan(
		&e.ID,
		&date,
		&projectID,
		&e.EntryType,
		&e.Content,
		&e.Sentiment,
		&favorite,
		&tagsJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date = parseTime(date)
	e.CreatedAt = parseTime(createdAt)
	e.Favorite = favorite != 0
	if projectID.Valid {
		e.ProjectID = projectID.String
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
			return nil, fmt.Errorf("parse tags JSON: %w", err)
		}
	}
	return &e, nil
}

// CreateJournalEntry stores a new journal entry.
func (s *SQLiteStore) CreateJournalEntry(ctx context.Context, ne types.NewJournalEntry) (*types.JournalEntry, error) {
	now := time.Now().UTC()
	e := types.JournalEntry{
		ID:        ulid.Make().String(),
		Date:      ne.Date,
		ProjectID: ne.ProjectID,
		EntryType: ne.EntryType,
		Content:   ne.Content,
		Sentiment: ne.Sentiment,
		Favorite:  ne.Favorite,
		Tags:      ne.Tags,
		CreatedAt: now,
	}
	if e.EntryType == "" {
		e.EntryType = types.EntryGeneral
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	tagsJSON, err := json.Marshal(e.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	var projectID any
	if e.ProjectID != "" {
		projectID = e.ProjectID
	}
	favorite := 0
	if e.Favorite {
		favorite = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, date, project_id, entry_type, content, sentiment, favorite, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, formatTime(e.Date), projectID, e.EntryType, e.Content, e.Sentiment, favorite, string(tagsJSON), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	return &e, nil
}

// ListJournalEntries returns all journal entries, newest first.
func (s *SQLiteStore) ListJournalEntries(ctx context.Context) ([]types.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journal_entries ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []types.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteJournalEntry removes an entry by id.
func (s *SQLiteStore) DeleteJournalEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Snapshot reads the full record set the engine needs for one computation
// pass.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.ListTimeLogs(ctx, nil)
	if err != nil {
		return nil, err
	}
	entries, err := s.ListJournalEntries(ctx)
	if err != nil {
		return nil, err
	}
	return &types.Snapshot{
		Projects:       projects,
		TimeLogs:       logs,
		JournalEntries: entries,
	}, nil
}
