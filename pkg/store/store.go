// Package store persists form templates in a local SQLite database. Templates
// are stored as JSON rows; the backend remains the system of record once a
// template is published, this store covers standalone and offline use.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/formmaster/go-formmaster/pkg/formdef"
)

// ErrNotFound is returned when a template id has no row.
var ErrNotFound = errors.New("store: template not found")

// TemplateStore keeps versioned form templates in SQLite.
type TemplateStore struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a TemplateStore.
type Option func(*TemplateStore)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TemplateStore) { s.now = now }
}

// Open creates (or opens) the template database at path. Use ":memory:" for
// an ephemeral store.
func Open(path string, options ...Option) (*TemplateStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &TemplateStore{db: db, now: time.Now}
	for _, option := range options {
		option(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *TemplateStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS form_templates (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		version    INTEGER NOT NULL,
		body       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *TemplateStore) Close() error { return s.db.Close() }

// Save writes a template, bumping its version and updatedAt. The returned
// template carries the persisted version.
func (s *TemplateStore) Save(ctx context.Context, t formdef.FormTemplate) (formdef.FormTemplate, error) {
	var current int
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM form_templates WHERE id = ?`, t.ID,
	).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return formdef.FormTemplate{}, fmt.Errorf("store: read version: %w", err)
	}

	t.Version = current + 1
	t.UpdatedAt = s.now().UTC()

	body, err := json.Marshal(t)
	if err != nil {
		return formdef.FormTemplate{}, fmt.Errorf("store: encode template: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO form_templates (id, name, version, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		t.ID, t.Name, t.Version, string(body), t.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return formdef.FormTemplate{}, fmt.Errorf("store: save %s: %w", t.ID, err)
	}
	return t, nil
}

// Get loads one template by id.
func (s *TemplateStore) Get(ctx context.Context, id string) (formdef.FormTemplate, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM form_templates WHERE id = ?`, id,
	).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return formdef.FormTemplate{}, ErrNotFound
	case err != nil:
		return formdef.FormTemplate{}, fmt.Errorf("store: get %s: %w", id, err)
	}

	var t formdef.FormTemplate
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return formdef.FormTemplate{}, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return t, nil
}

// ListEntry is a template row without its full body.
type ListEntry struct {
	ID        string
	Name      string
	Version   int
	UpdatedAt time.Time
}

// List returns all stored templates, most recently updated first.
func (s *TemplateStore) List(ctx context.Context) ([]ListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, version, updated_at FROM form_templates ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []ListEntry
	for rows.Next() {
		var entry ListEntry
		var updated string
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Version, &updated); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			entry.UpdatedAt = ts
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes a template. Deleting an unknown id returns ErrNotFound.
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM form_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
