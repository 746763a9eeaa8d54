package devserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is a small SQLite-backed document store: every CRM record is
// kept as a JSON document keyed by (collection, id). The dev backend
// does not interpret the documents beyond their id — validation is the
// client's job, which keeps this server honest as a stand-in for the
// real one.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database file. Pass ":memory:" for
// tests.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Single connection avoids "database is locked" under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS accounts (
	email         TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	profile       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	data BLOB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// List returns all documents of a collection in insertion order.
func (s *Store) List(collection string) ([]json.RawMessage, error) {
	rows, err := s.db.Query(
		`SELECT data FROM documents WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		docs = append(docs, json.RawMessage(data))
	}
	return docs, rows.Err()
}

func (s *Store) Insert(collection, id string, doc []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(doc))
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

// Update replaces a document wholesale; reports whether the id existed.
func (s *Store) Update(collection, id string, doc []byte) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`,
		string(doc), collection, id)
	if err != nil {
		return false, fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) Delete(collection, id string) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return false, fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) Get(collection, id string) (json.RawMessage, bool, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(data), true, nil
}

func (s *Store) Count(collection string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

// EnsureAccount creates the account if the email is not yet known.
func (s *Store) EnsureAccount(email, passwordHash string, profile []byte) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO accounts (email, password_hash, profile) VALUES (?, ?, ?)`,
		email, passwordHash, string(profile))
	return err
}

func (s *Store) Account(email string) (passwordHash string, profile json.RawMessage, ok bool, err error) {
	var hash, prof string
	err = s.db.QueryRow(
		`SELECT password_hash, profile FROM accounts WHERE email = ?`, email).Scan(&hash, &prof)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}
	return hash, json.RawMessage(prof), true, nil
}

func (s *Store) SaveFile(id, name string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO files (id, name, data) VALUES (?, ?, ?)`, id, name, data)
	return err
}

func (s *Store) File(id string) (name string, data []byte, ok bool, err error) {
	err = s.db.QueryRow(`SELECT name, data FROM files WHERE id = ?`, id).Scan(&name, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}
	return name, data, true, nil
}
