package storage

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStorage persists keys in a local SQLite database. Useful when
// the host application already carries a database file and wants its
// session state in the same place.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (and if needed initializes) the database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteStorage] open")
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[NewSQLiteStorage] create schema")
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrapf(ErrNotFound, "[SQLiteStorage.Get] %q", key)
	}
	if err != nil {
		return "", errors.Wrap(err, "[SQLiteStorage.Get]")
	}
	return value, nil
}

func (s *SQLiteStorage) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return errors.Wrap(err, "[SQLiteStorage.Set]")
	}
	return nil
}

func (s *SQLiteStorage) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return errors.Wrap(err, "[SQLiteStorage.Delete]")
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
