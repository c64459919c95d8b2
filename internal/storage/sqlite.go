// Package storage provides SQLite-based persistence for local settings and
// match results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Setting keys.
const (
	KeyAPIBase       = "api_base"
	keyActiveProfile = "active_profile_id"
)

// ActiveProfileKey returns the settings key holding the active profile id
// for scope. The empty scope is the local terminal; SSH users get their own.
func ActiveProfileKey(scope string) string {
	if scope == "" {
		return keyActiveProfile
	}
	return keyActiveProfile + ":" + scope
}

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// LocalResult is a finished match as kept on this machine, whether or not
// it reached the remote service.
type LocalResult struct {
	ID           string
	SessionID    string
	ProfileID    string // empty when no profile was active
	Score        int
	Result       string // win or loss
	Level        int
	Difficulty   string
	Rows         int
	Cols         int
	DurationSecs int
	Posted       bool
	CreatedAt    time.Time
}

// LocalStats aggregates local results.
type LocalStats struct {
	Games      int
	Wins       int
	Losses     int
	TotalScore int
	HighScore  int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS local_results (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			profile_id TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			result TEXT NOT NULL,
			level INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			grid_rows INTEGER NOT NULL,
			grid_cols INTEGER NOT NULL,
			duration_secs INTEGER NOT NULL,
			posted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_local_results_created ON local_results(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_local_results_profile ON local_results(profile_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Setting returns the value stored under key. ok is false if it is unset.
func (s *Store) Setting(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Removing an unset key is not an error.
func (s *Store) DeleteSetting(key string) error {
	if _, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete setting %s: %w", key, err)
	}
	return nil
}

// SaveResult records a finished match and returns its id.
// An id is generated when r.ID is empty; CreatedAt defaults to now.
func (s *Store) SaveResult(r LocalResult) (string, error) {
	if r.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return "", fmt.Errorf("storage: cannot generate result id: %w", err)
		}
		r.ID = id
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO local_results
		 (id, session_id, profile_id, score, result, level, difficulty, grid_rows, grid_cols, duration_secs, posted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.SessionID,
		r.ProfileID,
		r.Score,
		r.Result,
		r.Level,
		r.Difficulty,
		r.Rows,
		r.Cols,
		r.DurationSecs,
		r.Posted,
		r.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save result: %w", err)
	}
	return r.ID, nil
}

// MarkPosted flags a result as delivered to the remote service.
func (s *Store) MarkPosted(id string) error {
	res, err := s.db.Exec("UPDATE local_results SET posted = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot mark result posted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: no result with id %s", id)
	}
	return nil
}

const resultColumns = `id, session_id, profile_id, score, result, level, difficulty,
	grid_rows, grid_cols, duration_secs, posted, created_at`

// RecentResults returns the newest results first.
func (s *Store) RecentResults(limit int) ([]LocalResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryResults(
		"SELECT "+resultColumns+" FROM local_results ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
}

// TopResults returns the best results, highest score first.
func (s *Store) TopResults(limit int) ([]LocalResult, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryResults(
		"SELECT "+resultColumns+" FROM local_results ORDER BY score DESC, created_at ASC LIMIT ?",
		limit,
	)
}

// ProfileResults returns the results recorded for a profile, newest first.
func (s *Store) ProfileResults(profileID string, limit int) ([]LocalResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryResults(
		"SELECT "+resultColumns+" FROM local_results WHERE profile_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		profileID, limit,
	)
}

func (s *Store) queryResults(query string, args ...any) ([]LocalResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []LocalResult
	for rows.Next() {
		var r LocalResult
		var createdAt any
		if err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.ProfileID,
			&r.Score,
			&r.Result,
			&r.Level,
			&r.Difficulty,
			&r.Rows,
			&r.Cols,
			&r.DurationSecs,
			&r.Posted,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// HighScore returns the best local score. Returns 0 if no results exist.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(score) FROM local_results").Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// Stats aggregates local results. An empty profileID covers all results.
func (s *Store) Stats(profileID string) (LocalStats, error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN result = 'win' THEN 0 ELSE 1 END), 0),
		COALESCE(SUM(score), 0),
		COALESCE(MAX(score), 0)
		FROM local_results`
	var args []any
	if profileID != "" {
		query += " WHERE profile_id = ?"
		args = append(args, profileID)
	}

	var st LocalStats
	err := s.db.QueryRow(query, args...).Scan(&st.Games, &st.Wins, &st.Losses, &st.TotalScore, &st.HighScore)
	if err != nil {
		return LocalStats{}, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	return st, nil
}

// ClearResults deletes every local result.
func (s *Store) ClearResults() error {
	if _, err := s.db.Exec("DELETE FROM local_results"); err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and the string forms SQLite may return.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{
			"2006-01-02 15:04:05.999999999-07:00",
			"2006-01-02 15:04:05.999999999",
			"2006-01-02 15:04:05",
			time.RFC3339Nano,
		} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
