package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrNoSession is returned by SessionStore.Load when nobody is signed in.
var ErrNoSession = errors.New("no active session")

// User is the signed-in administrator as returned by POST /auth/login.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Session pairs the user with the bearer token issued at login.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	// APIURL records which API issued the token.
	APIURL string `json:"apiUrl,omitempty"`
	// FromEnv is set when the token came from FOLIO_TOKEN.
	FromEnv bool `json:"-"`
}

// SessionStore loads, saves and clears the persisted session.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// Validate reports whether a session can be persisted.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	return nil
}

type envStore struct {
	next SessionStore
}

// EnvOverride wraps next so that a FOLIO_TOKEN environment variable wins
// over the stored session. Save and Clear still reach next.
func EnvOverride(next SessionStore) SessionStore {
	return &envStore{next: next}
}

func (e *envStore) Load() (*Session, error) {
	// Checked first so CI and scripts never hit a keychain prompt.
	if token := strings.TrimSpace(os.Getenv(EnvVarName)); token != "" {
		return &Session{Token: token, FromEnv: true}, nil
	}
	if e.next == nil {
		return nil, ErrNoSession
	}
	return e.next.Load()
}

func (e *envStore) Save(s *Session) error {
	if e.next == nil {
		return fmt.Errorf("no session store configured")
	}
	return e.next.Save(s)
}

func (e *envStore) Clear() error {
	if e.next == nil {
		return nil
	}
	return e.next.Clear()
}

type storeKey struct{}

// WithStore attaches the session store to ctx.
func WithStore(ctx context.Context, store SessionStore) context.Context {
	return context.WithValue(ctx, storeKey{}, store)
}

// StoreFromContext returns the store attached with WithStore, or nil.
func StoreFromContext(ctx context.Context) SessionStore {
	if s, ok := ctx.Value(storeKey{}).(SessionStore); ok {
		return s
	}
	return nil
}

// SessionAgeDays calculates the age of a session in days from its creation time.
// Returns 0 if createdAt is zero (age unknown).
func SessionAgeDays(createdAt time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	return int(time.Since(createdAt).Hours() / 24)
}

// FormatSessionAge formats the sign-in time and age in a human-readable way.
// Returns empty string if createdAt is zero.
func FormatSessionAge(createdAt time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	age := SessionAgeDays(createdAt)
	dateStr := createdAt.Format("2006-01-02")
	switch age {
	case 0:
		return fmt.Sprintf("signed in today (%s)", dateStr)
	case 1:
		return fmt.Sprintf("signed in 1 day ago (%s)", dateStr)
	default:
		return fmt.Sprintf("signed in %d days ago (%s)", age, dateStr)
	}
}
