// Package sessionstore keeps bearer sessions and one-time email codes in a
// local SQLite database. Only SHA-256 digests of tokens and codes are stored.
package sessionstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrSessionNotFound is returned for unknown or revoked tokens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned for tokens past their expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrCodeNotFound is returned when no code is pending for the subject.
	ErrCodeNotFound = errors.New("code not found")
	// ErrCodeMismatch is returned when the supplied code is wrong.
	ErrCodeMismatch = errors.New("code mismatch")
	// ErrCodeExpired is returned when the code timed out or ran out of attempts.
	ErrCodeExpired = errors.New("code expired")
)

// Purpose separates the code spaces of different flows.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposeResetPassword Purpose = "reset_password"
)

// Session is a stored bearer session.
type Session struct {
	TokenHash string
	UserID    string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the SQLite backed session and code store.
type Store struct {
	db    *sql.DB
	nowFn func() time.Time
}

// Open creates (if needed) and opens the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, nowFn: time.Now}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initialize() error {
	sessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	`

	codesTable := `
	CREATE TABLE IF NOT EXISTS one_time_codes (
		subject TEXT NOT NULL,
		purpose TEXT NOT NULL,
		code_hash TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		PRIMARY KEY (subject, purpose)
	);
	CREATE INDEX IF NOT EXISTS idx_codes_expires ON one_time_codes(expires_at);
	`

	for _, stmt := range []string{`PRAGMA busy_timeout = 5000;`, sessionsTable, codesTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initialise session store: %w", err)
		}
	}
	return nil
}

// WithClock overrides the time provider (used primarily in tests).
func (s *Store) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateSession issues a new random bearer token for userID. The plain token
// is returned once and never stored.
func (s *Store) CreateSession(ctx context.Context, userID, role string, ttl time.Duration) (string, Session, error) {
	token, err := randomToken()
	if err != nil {
		return "", Session{}, err
	}
	now := s.nowFn().UTC()
	sess := Session{
		TokenHash: hashValue(token),
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	const q = `INSERT INTO sessions (token_hash, user_id, role, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, sess.TokenHash, sess.UserID, sess.Role, toMillis(sess.CreatedAt), toMillis(sess.ExpiresAt)); err != nil {
		return "", Session{}, fmt.Errorf("insert session: %w", err)
	}
	return token, sess, nil
}

// LookupSession resolves a bearer token. Expired sessions are deleted on sight.
func (s *Store) LookupSession(ctx context.Context, token string) (Session, error) {
	hash := hashValue(token)
	const q = `SELECT user_id, role, created_at, expires_at FROM sessions WHERE token_hash = ?`

	var (
		sess               Session
		created, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, q, hash).Scan(&sess.UserID, &sess.Role, &created, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup session: %w", err)
	}
	sess.TokenHash = hash
	sess.CreatedAt = fromMillis(created)
	sess.ExpiresAt = fromMillis(expiresAt)

	if !s.nowFn().Before(sess.ExpiresAt) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, hash); err != nil {
			return Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return Session{}, ErrSessionExpired
	}
	return sess, nil
}

// RevokeSession deletes the session behind token. Unknown tokens are ignored.
func (s *Store) RevokeSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, hashValue(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeUserSessions deletes every session of userID and reports how many.
func (s *Store) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return res.RowsAffected()
}

// RevokeOtherSessions deletes every session of userID except the one behind keepToken.
func (s *Store) RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ? AND token_hash <> ?`, userID, hashValue(keepToken))
	if err != nil {
		return 0, fmt.Errorf("revoke other sessions: %w", err)
	}
	return res.RowsAffected()
}

// IssueCode stores a fresh six digit code for subject, replacing any code
// pending for the same purpose, and returns it.
func (s *Store) IssueCode(ctx context.Context, subject string, purpose Purpose, ttl time.Duration, maxAttempts int) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}
	now := s.nowFn().UTC()
	const q = `
	INSERT INTO one_time_codes (subject, purpose, code_hash, attempts, max_attempts, created_at, expires_at)
	VALUES (?, ?, ?, 0, ?, ?, ?)
	ON CONFLICT(subject, purpose) DO UPDATE SET
		code_hash = excluded.code_hash,
		attempts = 0,
		max_attempts = excluded.max_attempts,
		created_at = excluded.created_at,
		expires_at = excluded.expires_at`
	if _, err := s.db.ExecContext(ctx, q, subject, string(purpose), hashValue(code), maxAttempts, toMillis(now), toMillis(now.Add(ttl))); err != nil {
		return "", fmt.Errorf("issue code: %w", err)
	}
	return code, nil
}

// VerifyCode consumes the pending code of subject when it matches. A wrong
// guess burns one attempt; once attempts run out the code behaves as expired.
func (s *Store) VerifyCode(ctx context.Context, subject string, purpose Purpose, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin verify code: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `SELECT code_hash, attempts, max_attempts, expires_at FROM one_time_codes WHERE subject = ? AND purpose = ?`
	var (
		stored             string
		attempts, maxTries int
		expiresAt          int64
	)
	err = tx.QueryRowContext(ctx, q, subject, string(purpose)).Scan(&stored, &attempts, &maxTries, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup code: %w", err)
	}

	if !s.nowFn().Before(fromMillis(expiresAt)) || attempts >= maxTries {
		if _, err := tx.ExecContext(ctx, `DELETE FROM one_time_codes WHERE subject = ? AND purpose = ?`, subject, string(purpose)); err != nil {
			return fmt.Errorf("delete expired code: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit verify code: %w", err)
		}
		return ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashValue(code))) != 1 {
		if _, err := tx.ExecContext(ctx, `UPDATE one_time_codes SET attempts = attempts + 1 WHERE subject = ? AND purpose = ?`, subject, string(purpose)); err != nil {
			return fmt.Errorf("record code attempt: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit verify code: %w", err)
		}
		return ErrCodeMismatch
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM one_time_codes WHERE subject = ? AND purpose = ?`, subject, string(purpose)); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verify code: %w", err)
	}
	return nil
}

// PurgeExpired removes expired sessions and codes and reports how many rows went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	now := toMillis(s.nowFn())
	var total int64
	for _, q := range []string{
		`DELETE FROM sessions WHERE expires_at <= ?`,
		`DELETE FROM one_time_codes WHERE expires_at <= ?`,
	} {
		res, err := s.db.ExecContext(ctx, q, now)
		if err != nil {
			return total, fmt.Errorf("purge expired: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("purge expired: %w", err)
		}
		total += n
	}
	return total, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashValue returns a deterministic SHA-256 hash for the provided value.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
