// Package bcryptidentity is a bcrypt-backed identity.Identity, storing
// accounts in a SQLite table via database/sql.
//
// Grounded on the teacher's internal/nntp/nntp-auth-manager.go
// (AuthenticateUser's shape: look up by username, verify, track a
// session) and internal/database/db_nntp_users.go (bcrypt.
// GenerateFromPassword/CompareHashAndPassword, InsertNNTPUser,
// VerifyNNTPUserPassword), adapted to identity.Identity's tri-state
// RequiresPassword and opaque Token contract.
package bcryptidentity

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-while/postus/internal/identity"
)

const schema = `
CREATE TABLE IF NOT EXISTS nntp_users (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	last_login DATETIME
);
`

// Identity is a SQLite + bcrypt backed identity.Identity.
type Identity struct {
	db   *sql.DB
	host string

	mu     sync.Mutex
	tokens map[identity.Token]string // token -> username, valid until process restart
}

// Open opens (creating if absent) an account database at path.
// hostIdentifier is returned by HostIdentifier and used to synthesize
// Message-IDs.
func Open(path, hostIdentifier string) (*Identity, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("bcryptidentity: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("bcryptidentity: migrate: %w", err)
	}
	return &Identity{db: db, host: hostIdentifier, tokens: make(map[identity.Token]string)}, nil
}

// CreateUser inserts a new account with a bcrypt-hashed password,
// mirroring the teacher's InsertNNTPUser.
func (id *Identity) CreateUser(username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcryptidentity: hash: %w", err)
	}
	_, err = id.db.Exec(`INSERT INTO nntp_users(username, password_hash, active) VALUES (?, ?, 1)`, username, string(hashed))
	return err
}

// SetActive enables or disables an account without deleting it.
func (id *Identity) SetActive(username string, active bool) error {
	v := 0
	if active {
		v = 1
	}
	_, err := id.db.Exec(`UPDATE nntp_users SET active = ? WHERE username = ?`, v, username)
	return err
}

// Account is one row of nntp_users, as reported by ListUsers.
type Account struct {
	Username  string
	Active    bool
	LastLogin sql.NullTime
}

// ListUsers returns every account, ordered by username, for the admin CLI.
func (id *Identity) ListUsers() ([]Account, error) {
	rows, err := id.db.Query(`SELECT username, active, last_login FROM nntp_users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		var active int
		if err := rows.Scan(&a.Username, &active, &a.LastLogin); err != nil {
			return nil, err
		}
		a.Active = active != 0
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (id *Identity) lookup(username string) (hash string, active bool, err error) {
	err = id.db.QueryRow(`SELECT password_hash, active FROM nntp_users WHERE username = ?`, username).Scan(&hash, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	return hash, active, err
}

func (id *Identity) RequiresPassword(subject string) identity.Tri {
	_, active, err := id.lookup(subject)
	if err != nil {
		return identity.Unknown
	}
	if !active {
		return identity.Unknown
	}
	return identity.Yes
}

func (id *Identity) Authenticate(subject, password string) (identity.Token, error) {
	hash, active, err := id.lookup(subject)
	if err != nil {
		return "", fmt.Errorf("bcryptidentity: lookup: %w", err)
	}
	if hash == "" || !active {
		return "", identity.ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", identity.ErrAuthFailed
	}
	id.db.Exec(`UPDATE nntp_users SET last_login = ? WHERE username = ?`, time.Now().UTC(), subject)

	tok, err := newToken()
	if err != nil {
		return "", err
	}
	id.mu.Lock()
	id.tokens[tok] = subject
	id.mu.Unlock()
	return tok, nil
}

func (id *Identity) IsValid(tok identity.Token) bool {
	id.mu.Lock()
	defer id.mu.Unlock()
	_, ok := id.tokens[tok]
	return ok
}

// CreateMessageID synthesizes a Message-ID of the form
// <random@host> when the posted article arrived without one.
func (id *Identity) CreateMessageID(headers map[string][]string) string {
	rnd, err := newToken()
	if err != nil {
		rnd = "fallback"
	}
	return fmt.Sprintf("<%s@%s>", strings.ToLower(string(rnd)), id.host)
}

func (id *Identity) HostIdentifier() string { return id.host }

func (id *Identity) Close() error { return id.db.Close() }

func newToken() (identity.Token, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return identity.Token(hex.EncodeToString(b)), nil
}
