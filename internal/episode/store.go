package episode

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bostonbriefing/briefing/internal/logger"
)

// Store is the SQLite episode index.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the episode index under dataDir.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "briefing.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL for better concurrency between the server and the generator
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("[episode] index opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `CREATE TABLE IF NOT EXISTS episodes (
		date TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		script TEXT DEFAULT '',
		audio_url TEXT DEFAULT '',
		duration INTEGER DEFAULT 0,
		generated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate episodes table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or updates the episode for its date.
func (s *Store) Save(ep Episode) error {
	_, err := s.db.Exec(`INSERT INTO episodes (date, title, script, audio_url, duration, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			title = excluded.title,
			script = excluded.script,
			audio_url = excluded.audio_url,
			duration = excluded.duration,
			generated_at = excluded.generated_at`,
		ep.Date, ep.Title, ep.Script, ep.AudioURL, ep.Duration, ep.GeneratedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save episode %s: %w", ep.Date, err)
	}
	return nil
}

// List returns all indexed episodes, newest first.
func (s *Store) List() ([]Episode, error) {
	rows, err := s.db.Query(`SELECT date, title, script, audio_url, duration, generated_at
		FROM episodes ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var ep Episode
		var generatedAt string
		if err := rows.Scan(&ep.Date, &ep.Title, &ep.Script, &ep.AudioURL, &ep.Duration, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan episode row: %w", err)
		}
		ep.ID = ep.Date
		if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			ep.GeneratedAt = t
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// Get returns the episode for a date, or sql.ErrNoRows.
func (s *Store) Get(date string) (Episode, error) {
	var ep Episode
	var generatedAt string
	err := s.db.QueryRow(`SELECT date, title, script, audio_url, duration, generated_at
		FROM episodes WHERE date = ?`, date).
		Scan(&ep.Date, &ep.Title, &ep.Script, &ep.AudioURL, &ep.Duration, &generatedAt)
	if err != nil {
		return Episode{}, err
	}
	ep.ID = ep.Date
	if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		ep.GeneratedAt = t
	}
	return ep, nil
}
