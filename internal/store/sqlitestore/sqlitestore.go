// Package sqlitestore is a database/sql + mattn/go-sqlite3 backed
// implementation of store.Store, for durable single-node deployments.
//
// Grounded on the teacher's internal/database/database.go and
// db_init.go connection setup (sql.Open("sqlite3", path+
// "?_journal_mode=WAL&_timeout=5000")) and its one-handle-per-database
// shape; simplified here to a single file holding groups, canonical
// articles, and per-group article placement, since this contract is far
// narrower than go-pugleaf's full schema (see DESIGN.md).
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-while/postus/internal/article"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/wire"
)

const schema = `
CREATE TABLE IF NOT EXISTS groups (
	name TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	posting_mode INTEGER NOT NULL DEFAULT 2,
	created_at DATETIME NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	ignored INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS articles (
	message_id TEXT PRIMARY KEY,
	headers_json TEXT NOT NULL,
	body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rejected_ids (
	message_id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS group_articles (
	group_name TEXT NOT NULL,
	article_num INTEGER NOT NULL,
	message_id TEXT NOT NULL,
	inserted_at DATETIME NOT NULL,
	rejected INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (group_name, article_num)
);
CREATE INDEX IF NOT EXISTS idx_group_articles_msgid ON group_articles(group_name, message_id);
`

// execer is satisfied by both *sql.DB and *sql.Tx, letting Store route
// every query through whichever is currently active (see Checkpoint).
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store is a SQLite-backed store.Store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
	tx *sql.Tx // non-nil between Checkpoint and Commit/Rollback
}

// Open opens (creating if absent) a SQLite database at path and returns a
// Store ready for Init.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Init() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	return nil
}

func (s *Store) conn() execer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return fmt.Errorf("sqlitestore: checkpoint already open")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlitestore: begin: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Store) Commit() error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

func (s *Store) Rollback() error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx == nil {
		return nil
	}
	return tx.Rollback()
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) HasArticle(id wire.MessageId) (bool, error) {
	var n int
	err := s.conn().QueryRow(`SELECT COUNT(1) FROM articles WHERE message_id = ?`, string(id)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) IsRejected(id wire.MessageId) (bool, error) {
	var n int
	err := s.conn().QueryRow(`SELECT COUNT(1) FROM rejected_ids WHERE message_id = ?`, string(id)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkRejected records id as permanently rejected.
func (s *Store) MarkRejected(id wire.MessageId) error {
	_, err := s.conn().Exec(`INSERT OR IGNORE INTO rejected_ids(message_id) VALUES (?)`, string(id))
	return err
}

func (s *Store) GetArticle(id wire.MessageId) (*article.Article, error) {
	var headersJSON, body string
	err := s.conn().QueryRow(`SELECT headers_json, body FROM articles WHERE message_id = ?`, string(id)).Scan(&headersJSON, &body)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound{What: string(id)}
	}
	if err != nil {
		return nil, err
	}
	h := make(article.Headers)
	if err := json.Unmarshal([]byte(headersJSON), &h); err != nil {
		return nil, fmt.Errorf("sqlitestore: decode headers: %w", err)
	}
	return &article.Article{ID: id, Headers: h, Body: body}, nil
}

func (s *Store) GetGroupByName(name wire.NewsgroupName) (store.Group, error) {
	var exists int
	err := s.conn().QueryRow(`SELECT COUNT(1) FROM groups WHERE name = ?`, string(name)).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, store.ErrNotFound{What: string(name)}
	}
	return &group{store: s, name: name}, nil
}

func (s *Store) AddGroup(name wire.NewsgroupName, description string, mode store.PostingMode, createdAt time.Time, createdBy string, ignored bool) error {
	_, err := s.conn().Exec(
		`INSERT OR REPLACE INTO groups(name, description, posting_mode, created_at, created_by, ignored) VALUES (?, ?, ?, ?, ?, ?)`,
		string(name), description, int(mode), createdAt.UTC(), createdBy, boolToInt(ignored),
	)
	return err
}

func (s *Store) ListAllGroups(subscribedOnly, includeIgnored bool) ([]store.Group, error) {
	q := `SELECT name FROM groups`
	if !includeIgnored {
		q += ` WHERE ignored = 0`
	}
	q += ` ORDER BY name`
	rows, err := s.conn().Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Group
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, &group{store: s, name: wire.NewsgroupName(name)})
	}
	return out, rows.Err()
}

func (s *Store) ListAllGroupsAddedSince(t time.Time) ([]store.Group, error) {
	rows, err := s.conn().Query(`SELECT name FROM groups WHERE created_at > ? ORDER BY name`, t.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Group
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, &group{store: s, name: wire.NewsgroupName(name)})
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalHeaders(h article.Headers) (string, error) {
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
