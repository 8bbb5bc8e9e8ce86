package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// ErrNotFound marks a lookup whose absence is meaningful to the caller.
var ErrNotFound = errors.New("storage: not found")

// Store is the sqlite-backed persistence layer behind every storage port.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// Open opens (creating if needed) the sqlite database at path and applies
// schema initialization plus targeted migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// sqlite handles one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			topic TEXT,
			app_name TEXT,
			app_description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS search_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			url TEXT,
			snippet TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			raw_response TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS twitter_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			url TEXT,
			snippet TEXT,
			screen_name TEXT,
			followers_count INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			tweet_created_at TEXT,
			favorite_count INTEGER DEFAULT 0,
			quote_count INTEGER DEFAULT 0,
			reply_count INTEGER DEFAULT 0,
			retweet_count INTEGER DEFAULT 0,
			raw_response TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS reviewer_outputs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			distilled_topics TEXT,
			talking_points TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			raw_response TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS editor_outputs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			topic TEXT,
			content TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS content_fingerprints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_type TEXT NOT NULL,
			primary_identifier TEXT NOT NULL,
			url TEXT,
			content_hash TEXT NOT NULL,
			platform TEXT NOT NULL,
			first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			processing_status TEXT DEFAULT 'new',
			platform_metadata TEXT,
			UNIQUE(content_type, primary_identifier)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fingerprints_content_hash
			ON content_fingerprints (content_hash)`,
		`CREATE TABLE IF NOT EXISTS processing_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_date DATE NOT NULL,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			status TEXT DEFAULT 'running',
			new_search_results INTEGER DEFAULT 0,
			new_tweets INTEGER DEFAULT 0,
			duplicates_skipped INTEGER DEFAULT 0,
			content_generated INTEGER DEFAULT 0,
			session_id INTEGER,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			priority REAL DEFAULT 0.5,
			config_json TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			skill_slug TEXT,
			platform TEXT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			draft_content TEXT NOT NULL,
			published_content TEXT,
			x_tweet_id TEXT,
			planned_for TIMESTAMP,
			published_at TIMESTAMP,
			metadata_json TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER,
			skill_slug TEXT,
			x_tweet_url TEXT NOT NULL,
			x_tweet_id TEXT,
			author_handle TEXT,
			author_followers INTEGER,
			snippet TEXT,
			reason TEXT,
			suggested_reply TEXT,
			status TEXT DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions (id)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_briefs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT UNIQUE NOT NULL,
			content_md TEXT NOT NULL,
			summary_json TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS metrics_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL,
			captured_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			impressions INTEGER,
			likes INTEGER,
			replies INTEGER,
			retweets INTEGER,
			bookmarks INTEGER,
			profile_visits INTEGER,
			link_clicks INTEGER,
			raw_json TEXT,
			FOREIGN KEY (post_id) REFERENCES posts (id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// migrate applies targeted schema changes for databases created before a
// column existed. Kept additive; sqlite cannot drop columns cheaply.
func (s *Store) migrate() error {
	has, err := s.hasColumn("twitter_results", "tweet_created_at")
	if err != nil {
		return err
	}
	if !has {
		if _, err := s.db.Exec(`ALTER TABLE twitter_results ADD COLUMN tweet_created_at TEXT`); err != nil {
			return fmt.Errorf("add tweet_created_at: %w", err)
		}
	}
	return nil
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

func parseTimestamp(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	text := strings.TrimSpace(value.String)
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
