// Package auth signs staff in and guards the admin routes.
//
// Accounts come from configuration as bcrypt hashes. Sessions are random
// tokens held in memory with a fixed lifetime; a restart signs everyone out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is how long a session lasts when none is configured.
const DefaultSessionTTL = 12 * time.Hour

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
// The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

// User is a configured staff account.
type User struct {
	Email        string
	PasswordHash string
}

// Session is an authenticated sign-in.
type Session struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1OD4JyqWgW3KbOq7B6O4Y6u")

// Authenticator checks credentials and tracks sessions.
//
// Thread-safety: safe for concurrent use.
type Authenticator struct {
	users    map[string]string // normalized email -> bcrypt hash
	ttl      time.Duration
	disabled bool
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

// Option customizes an Authenticator.
type Option func(*Authenticator)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithLogger sets the logger for sign-in events.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Authenticator) { a.logger = logger }
}

// Disabled makes every request count as signed in.
func Disabled() Option {
	return func(a *Authenticator) { a.disabled = true }
}

// NewAuthenticator builds an Authenticator for users. A non-positive ttl
// means DefaultSessionTTL.
func NewAuthenticator(users []User, ttl time.Duration, opts ...Option) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	a := &Authenticator{
		users:    make(map[string]string, len(users)),
		ttl:      ttl,
		now:      time.Now,
		logger:   zap.NewNop(),
		sessions: make(map[string]Session),
	}
	for _, u := range users {
		a.users[normalizeEmail(u.Email)] = u.PasswordHash
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether sign-in is enforced.
func (a *Authenticator) Enabled() bool {
	return !a.disabled
}

// SignIn checks the password and opens a session.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)

	hash, ok := a.users[email]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		a.logger.Info("sign-in rejected", zap.String("email", email), zap.String("reason", "unknown user"))
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		a.logger.Info("sign-in rejected", zap.String("email", email), zap.String("reason", "password"))
		return Session{}, ErrInvalidCredentials
	}

	token, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}
	s := Session{
		Token:     token.String(),
		Email:     email,
		ExpiresAt: a.now().Add(a.ttl),
	}

	a.mu.Lock()
	a.sweepLocked()
	a.sessions[s.Token] = s
	a.mu.Unlock()

	a.logger.Info("signed in", zap.String("email", email), zap.Time("expires_at", s.ExpiresAt))
	return s, nil
}

// Lookup returns the live session for token. Expired sessions are removed.
func (a *Authenticator) Lookup(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !a.now().Before(s.ExpiresAt) {
		delete(a.sessions, token)
		return Session{}, false
	}
	return s, true
}

// SignOut ends the session for token. Unknown tokens are ignored.
func (a *Authenticator) SignOut(token string) {
	a.mu.Lock()
	s, ok := a.sessions[token]
	delete(a.sessions, token)
	a.mu.Unlock()

	if ok {
		a.logger.Info("signed out", zap.String("email", s.Email))
	}
}

// ActiveSessions counts unexpired sessions.
func (a *Authenticator) ActiveSessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sweepLocked()
	return len(a.sessions)
}

// sweepLocked drops expired sessions. Caller holds a.mu.
func (a *Authenticator) sweepLocked() {
	now := a.now()
	for token, s := range a.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(a.sessions, token)
		}
	}
}

// HashPassword returns a bcrypt hash suitable for auth.users[].password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("hash password: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
