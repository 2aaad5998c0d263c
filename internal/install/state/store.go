// Package state persists installer progress between invocations.
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the installer's key/value state. Reads take a default that is
// returned when the key was never set; any other read failure is returned as
// an error so callers never mistake a broken store for a fresh one.
type Store interface {
	Has(key string) (bool, error)
	GetInt(key string, def int) (int, error)
	GetBool(key string, def bool) (bool, error)
	GetString(key, def string) (string, error)
	Set(key string, value any) error
	Delete(key string) error
}

type SQLiteStore struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

func (s *SQLiteStore) Init() error {
	if dir := filepath.Dir(s.dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?_busy_timeout=5000")
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	s.db = db

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS install_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

	_, err = s.db.Exec(createTableSQL)
	return err
}

func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) raw(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM install_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read state %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Has(key string) (bool, error) {
	_, ok, err := s.raw(key)
	return ok, err
}

func (s *SQLiteStore) GetInt(key string, def int) (int, error) { return get(s, key, def) }

func (s *SQLiteStore) GetBool(key string, def bool) (bool, error) { return get(s, key, def) }

func (s *SQLiteStore) GetString(key, def string) (string, error) { return get(s, key, def) }

// get decodes the JSON value under key. A value of the wrong type is an
// error, not a default.
func get[T any](s *SQLiteStore, key string, def T) (T, error) {
	raw, ok, err := s.raw(key)
	if err != nil || !ok {
		return def, err
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, fmt.Errorf("decode state %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) Set(key string, value any) error {
	if key == "" {
		return errors.New("empty state key")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO install_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM install_state WHERE key = ?`, key)
	return err
}

// Reset drops every key.
func (s *SQLiteStore) Reset() error {
	_, err := s.db.Exec(`DELETE FROM install_state`)
	return err
}

// Entry is one raw row, for status output.
type Entry struct {
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

func (s *SQLiteStore) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT key, value, updated_at FROM install_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var updatedAtStr string
		if err := rows.Scan(&e.Key, &e.Value, &updatedAtStr); err != nil {
			return nil, err
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, rows.Err()
}
