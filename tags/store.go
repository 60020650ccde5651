// Package tags manages the registry of tags scheduled for harvesting, backed
// by SQLite. The registry tracks per-tag enable state and run history so
// scheduled runs know what to collect and when a tag keeps failing.
package tags

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for registry operations.
var (
	ErrTagNotFound  = errors.New("tag not found")
	ErrDuplicateTag = errors.New("tag already registered")
)

// DisableThreshold is the number of consecutive failed runs after which a tag
// is auto-disabled.
const DisableThreshold = 10

// Store manages tag configurations and run history using SQLite.
type Store struct {
	db *sql.DB
}

// Tag represents one registered tag.
type Tag struct {
	Name          string     `json:"name"`
	EnabledAt     *time.Time `json:"enabled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	LastLinkCount int        `json:"last_link_count"`
	RunErrorCount int        `json:"run_error_count"`
	LastError     *string    `json:"last_error,omitempty"`
}

// IsEnabled returns true if the tag is currently enabled for harvesting.
func (t *Tag) IsEnabled() bool {
	return t.EnabledAt != nil
}

// Run records the outcome of one collection run.
type Run struct {
	RunID          uuid.UUID `json:"run_id"`
	Tag            string    `json:"tag"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	LinksCollected int       `json:"links_collected"`
	StopReason     string    `json:"stop_reason"`
}

// NewStore creates a tag registry with the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the registry tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tags (
		name TEXT PRIMARY KEY,
		enabled_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		last_run_at TEXT,
		last_link_count INTEGER DEFAULT 0,
		run_error_count INTEGER DEFAULT 0,
		last_error TEXT
	);

	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		tag TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		links_collected INTEGER NOT NULL,
		stop_reason TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTag registers a tag, enabled immediately.
func (s *Store) CreateTag(name string) (*Tag, error) {
	now := time.Now()
	tag := &Tag{
		Name:      name,
		EnabledAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO tags (name, enabled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		tag.Name,
		formatTime(tag.EnabledAt),
		formatTime(&tag.CreatedAt),
		formatTime(&tag.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTag
		}
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}

	return tag, nil
}

// GetTag retrieves a tag by name.
func (s *Store) GetTag(name string) (*Tag, error) {
	query := `
		SELECT name, enabled_at, created_at, updated_at,
		       last_run_at, last_link_count, run_error_count, last_error
		FROM tags
		WHERE name = ?
	`

	tag, err := scanTag(s.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}

	return tag, nil
}

// ListTags lists all registered tags, oldest first.
func (s *Store) ListTags() ([]Tag, error) {
	query := `
		SELECT name, enabled_at, created_at, updated_at,
		       last_run_at, last_link_count, run_error_count, last_error
		FROM tags
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}

	return tags, rows.Err()
}

// EnabledTags returns the names of all currently enabled tags.
func (s *Store) EnabledTags() ([]string, error) {
	tags, err := s.ListTags()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, tag := range tags {
		if tag.IsEnabled() {
			names = append(names, tag.Name)
		}
	}
	return names, nil
}

// SetEnabled enables or disables a tag.
func (s *Store) SetEnabled(name string, enabled bool) error {
	now := time.Now()
	var enabledAt *time.Time
	if enabled {
		enabledAt = &now
	}

	result, err := s.db.Exec(
		"UPDATE tags SET enabled_at = ?, updated_at = ? WHERE name = ?",
		formatTime(enabledAt), formatTime(&now), name,
	)
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	return requireRow(result)
}

// DeleteTag removes a tag from the registry. Its run history is kept.
func (s *Store) DeleteTag(name string) error {
	result, err := s.db.Exec("DELETE FROM tags WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	return requireRow(result)
}

// RecordRun stores a completed run and resets the tag's error streak.
func (s *Store) RecordRun(run Run) error {
	query := `
		INSERT INTO runs (run_id, tag, started_at, finished_at, links_collected, stop_reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		run.RunID.String(),
		run.Tag,
		formatTime(&run.StartedAt),
		formatTime(&run.FinishedAt),
		run.LinksCollected,
		run.StopReason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	now := time.Now()
	_, err = s.db.Exec(`
		UPDATE tags
		SET last_run_at = ?, last_link_count = ?, run_error_count = 0,
		    last_error = NULL, updated_at = ?
		WHERE name = ?`,
		formatTime(&run.FinishedAt), run.LinksCollected, formatTime(&now), run.Tag,
	)
	if err != nil {
		return fmt.Errorf("failed to update tag after run: %w", err)
	}

	return nil
}

// RecordRunError increments a tag's consecutive-failure count and disables
// the tag once the count reaches DisableThreshold.
func (s *Store) RecordRunError(name string, runErr error) error {
	tag, err := s.GetTag(name)
	if err != nil {
		return err
	}

	now := time.Now()
	errMsg := runErr.Error()
	newCount := tag.RunErrorCount + 1

	if newCount >= DisableThreshold {
		_, err = s.db.Exec(`
			UPDATE tags
			SET run_error_count = ?, last_error = ?, enabled_at = NULL, updated_at = ?
			WHERE name = ?`,
			newCount, errMsg, formatTime(&now), name,
		)
	} else {
		_, err = s.db.Exec(`
			UPDATE tags
			SET run_error_count = ?, last_error = ?, updated_at = ?
			WHERE name = ?`,
			newCount, errMsg, formatTime(&now), name,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to record run error: %w", err)
	}

	return nil
}

// ListRuns returns a tag's run history, newest first.
func (s *Store) ListRuns(name string) ([]Run, error) {
	query := `
		SELECT run_id, tag, started_at, finished_at, links_collected, stop_reason
		FROM runs
		WHERE tag = ?
		ORDER BY started_at DESC
	`

	rows, err := s.db.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var runIDStr, startedAtStr, finishedAtStr string

		err := rows.Scan(&runIDStr, &run.Tag, &startedAtStr, &finishedAtStr,
			&run.LinksCollected, &run.StopReason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.RunID, _ = uuid.Parse(runIDStr)
		run.StartedAt = parseTime(startedAtStr)
		run.FinishedAt = parseTime(finishedAtStr)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTag(row rowScanner) (*Tag, error) {
	var tag Tag
	var createdAtStr, updatedAtStr string
	var enabledAtStr, lastRunAtStr, lastError sql.NullString

	err := row.Scan(&tag.Name, &enabledAtStr, &createdAtStr, &updatedAtStr,
		&lastRunAtStr, &tag.LastLinkCount, &tag.RunErrorCount, &lastError)
	if err != nil {
		return nil, err
	}

	tag.CreatedAt = parseTime(createdAtStr)
	tag.UpdatedAt = parseTime(updatedAtStr)
	if enabledAtStr.Valid {
		t := parseTime(enabledAtStr.String)
		tag.EnabledAt = &t
	}
	if lastRunAtStr.Valid {
		t := parseTime(lastRunAtStr.String)
		tag.LastRunAt = &t
	}
	if lastError.Valid {
		tag.LastError = &lastError.String
	}

	return &tag, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTagNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Helper functions for time formatting.
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
