package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStore implements Store using a SQLite database. The whole record is
// replaced in one transaction per write; a revision counter in the settings
// table lets other processes poll for changes.
type SQLiteStore struct {
	db           *sql.DB
	path         string
	pollInterval time.Duration
	log          logger.Logger

	mu           sync.Mutex
	lastRevision int64

	hub      hub
	stopPoll chan struct{}
	pollOnce sync.Once
	stopOnce sync.Once
}

// SQLiteStoreParams holds parameters for creating a SQLiteStore.
type SQLiteStoreParams struct {
	Path         string
	PollInterval time.Duration
	Logger       logger.Logger
}

// NewSQLiteStore opens (and if needed creates) the database at the given
// path and runs migrations.
func NewSQLiteStore(params SQLiteStoreParams) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(params.Path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", params.Path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	interval := params.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	s := &SQLiteStore{
		db:           db,
		path:         params.Path,
		pollInterval: interval,
		log:          log,
		stopPoll:     make(chan struct{}),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	s.lastRevision, _ = s.revision()

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS categories (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			hostname TEXT NOT NULL,
			favicon TEXT NOT NULL,
			category TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			position INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_category ON bookmarks(category);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		CREATE TABLE IF NOT EXISTS category_usage (
			category TEXT PRIMARY KEY NOT NULL,
			last_used INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Read loads the record. If nothing has been written yet it returns the
// seeded default record without persisting it.
func (s *SQLiteStore) Read() (*model.StorageRecord, error) {
	seeded, err := s.setting("initialized")
	if err != nil {
		return nil, err
	}
	if seeded == "" {
		return model.NewStorageRecord(), nil
	}

	record := &model.StorageRecord{
		Bookmarks:     []model.Bookmark{},
		CategoryUsage: map[string]int64{},
	}

	rows, err := s.db.Query("SELECT name FROM categories ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		record.Categories = append(record.Categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT id, url, title, hostname, favicon, category, created_at
		FROM bookmarks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.Hostname, &b.Favicon, &b.Category, &b.CreatedAt); err != nil {
			return nil, err
		}
		record.Bookmarks = append(record.Bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT category, last_used FROM category_usage")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var lastUsed int64
		if err := rows.Scan(&category, &lastUsed); err != nil {
			return nil, err
		}
		record.CategoryUsage[category] = lastUsed
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	record.SecretPassword, _ = s.setting("secret_password")
	record.SecretCategoryName, _ = s.setting("secret_category_name")
	record.LastSavedCategory, _ = s.setting("last_saved_category")

	record.Normalize()
	return record, nil
}

// Write replaces the whole record in one transaction and bumps the
// revision counter.
func (s *SQLiteStore) Write(record *model.StorageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"categories", "bookmarks", "category_usage"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	catStmt, err := tx.Prepare("INSERT INTO categories (position, name) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer catStmt.Close()
	for i, name := range record.Categories {
		if _, err := catStmt.Exec(i, name); err != nil {
			return err
		}
	}

	bmStmt, err := tx.Prepare(`
		INSERT INTO bookmarks (id, url, title, hostname, favicon, category, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer bmStmt.Close()
	for i, b := range record.Bookmarks {
		if _, err := bmStmt.Exec(b.ID, b.URL, b.Title, b.Hostname, b.Favicon, b.Category, b.CreatedAt, i); err != nil {
			return err
		}
	}

	usageStmt, err := tx.Prepare("INSERT INTO category_usage (category, last_used) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer usageStmt.Close()
	for category, lastUsed := range record.CategoryUsage {
		if _, err := usageStmt.Exec(category, lastUsed); err != nil {
			return err
		}
	}

	revision := s.lastRevision + 1
	settings := map[string]string{
		"initialized":          "1",
		"secret_password":      record.SecretPassword,
		"secret_category_name": record.SecretCategoryName,
		"last_saved_category":  record.LastSavedCategory,
		"revision":             strconv.FormatInt(revision, 10),
	}
	setStmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer setStmt.Close()
	for key, value := range settings {
		if _, err := setStmt.Exec(key, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.lastRevision = revision
	s.hub.notify(record)
	return nil
}

// Subscribe registers a change callback. The first subscription starts the
// revision poller that watches for writes from other processes.
func (s *SQLiteStore) Subscribe(fn func(*model.StorageRecord)) (cancel func()) {
	s.pollOnce.Do(func() { go s.poll() })
	return s.hub.subscribe(fn)
}

// Close stops the poller and closes the database.
func (s *SQLiteStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopPoll) })
	return s.db.Close()
}

func (s *SQLiteStore) poll() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.checkExternalChange()
		}
	}
}

func (s *SQLiteStore) checkExternalChange() {
	revision, err := s.revision()
	if err != nil {
		return
	}

	s.mu.Lock()
	changed := revision != s.lastRevision
	if changed {
		s.lastRevision = revision
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	record, err := s.Read()
	if err != nil {
		s.log.Warn("reload after external change failed", logger.Error(err))
		return
	}
	s.hub.notify(record)
}

func (s *SQLiteStore) revision() (int64, error) {
	value, err := s.setting("revision")
	if err != nil || value == "" {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

func (s *SQLiteStore) setting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

// ReadPrefs reads the view preferences from the settings table.
func (s *SQLiteStore) ReadPrefs() (Prefs, error) {
	prefs := DefaultPrefs()
	if v, err := s.setting("pref_view_mode"); err == nil && v != "" {
		prefs.ViewMode = v
	}
	if v, err := s.setting("pref_theme"); err == nil && v != "" {
		prefs.Theme = v
	}
	return prefs, nil
}

// WritePrefs stores the view preferences in the settings table.
func (s *SQLiteStore) WritePrefs(p Prefs) error {
	for key, value := range map[string]string{
		"pref_view_mode": p.ViewMode,
		"pref_theme":     p.Theme,
	} {
		if _, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
			return err
		}
	}
	return nil
}
