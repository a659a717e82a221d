// Package user implements the credential store: a JSON file mapping
// usernames to a password hash and account metadata, looked up by the web
// front-end during login and signup.
package user

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// ErrUserExists is returned by Create for a taken username.
var ErrUserExists = errors.New("username already exists")

// Record is one stored account. LastLogin is nil until the first login.
type Record struct {
	PasswordHash string  `json:"password_hash"`
	Email        string  `json:"email"`
	CreatedAt    string  `json:"created_at"`
	LastLogin    *string `json:"last_login"`
}

// Info is account metadata with the password hash stripped.
type Info struct {
	Email     string
	CreatedAt string
	LastLogin *string
}

// Manager loads the whole user table into memory and rewrites the file on
// every change, with the same fail-open load policy as ledgers.
type Manager struct {
	mu     sync.Mutex
	path   string
	users  map[string]Record
	logger *slog.Logger
}

// NewManager loads (or starts) the user table at dir/users.json.
func NewManager(ctx context.Context, dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	m := &Manager{
		path:   filepath.Join(dir, "users.json"),
		users:  make(map[string]Record),
		logger: applog.ForComponent(applog.ComponentUsers),
	}
	m.load(ctx)
	return m, nil
}

// Create registers a new account. The username must already satisfy the
// restricted character set since it names the user's ledger file.
func (m *Manager) Create(ctx context.Context, username, password, email string) error {
	if err := core.ValidateUsername(username); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return ErrUserExists
	}
	m.users[username] = Record{
		PasswordHash: hashPassword(password),
		Email:        email,
		CreatedAt:    time.Now().Format(time.RFC3339),
	}
	m.save(ctx)
	return nil
}

// Authenticate checks the credentials and records the login time on success.
func (m *Manager) Authenticate(ctx context.Context, username, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[username]
	if !ok {
		return false
	}
	hash := hashPassword(password)
	if subtle.ConstantTimeCompare([]byte(rec.PasswordHash), []byte(hash)) != 1 {
		return false
	}

	now := time.Now().Format(time.RFC3339)
	rec.LastLogin = &now
	m.users[username] = rec
	m.save(ctx)
	return true
}

// Exists reports whether the username is taken.
func (m *Manager) Exists(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[username]
	return ok
}

// Info returns account metadata without the password hash.
func (m *Manager) Info(username string) (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[username]
	if !ok {
		return Info{}, false
	}
	return Info{Email: rec.Email, CreatedAt: rec.CreatedAt, LastLogin: rec.LastLogin}, true
}

func (m *Manager) save(ctx context.Context) {
	data, err := json.MarshalIndent(m.users, "", "  ")
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed marshaling user table", applog.FieldError, err)
		return
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		m.logger.ErrorContext(ctx, "Failed writing user table",
			"path", m.path, applog.FieldError, err)
	}
}

func (m *Manager) load(ctx context.Context) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed reading user table, starting empty",
			"path", m.path, applog.FieldError, err)
		return
	}
	if err := json.Unmarshal(data, &m.users); err != nil {
		m.logger.ErrorContext(ctx, "Failed parsing user table, starting empty",
			"path", m.path, applog.FieldError, err)
		m.users = make(map[string]Record)
	}
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
