package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
)

func newMockStore() (*KeyringStore, *keyring.ArrayKeyring) {
	ring := keyring.NewArrayKeyring(nil)
	return NewKeyringStoreWithProvider(ring), ring
}

func seedSession(t *testing.T, ring *keyring.ArrayKeyring, s Session) {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := ring.Set(keyring.Item{Key: SessionKey, Data: data}); err != nil {
		t.Fatal(err)
	}
}

func TestKeyringStore_LoadEmpty(t *testing.T) {
	store, _ := newMockStore()

	_, err := store.Load()
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got: %v", err)
	}
}

func TestKeyringStore_SaveAndLoad(t *testing.T) {
	store, _ := newMockStore()

	in := &Session{
		User:  User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		Token: "jwt_abc123",
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if got.Token != "jwt_abc123" {
		t.Errorf("expected token %q, got %q", "jwt_abc123", got.Token)
	}
	if got.User.Email != "ada@example.com" {
		t.Errorf("expected email %q, got %q", "ada@example.com", got.User.Email)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if !in.CreatedAt.IsZero() {
		t.Error("Save should not modify the caller's session")
	}
}

func TestKeyringStore_SaveEmptyToken(t *testing.T) {
	store, _ := newMockStore()

	if err := store.Save(&Session{User: User{ID: "u1"}}); err == nil {
		t.Fatal("expected error when saving empty token")
	}
	if err := store.Save(nil); err == nil {
		t.Fatal("expected error when saving nil session")
	}
}

func TestKeyringStore_PreserveCreatedAt(t *testing.T) {
	store, mock := newMockStore()

	created := time.Now().Add(-72 * time.Hour).Truncate(time.Second)
	seedSession(t, mock, Session{Token: "same_token", CreatedAt: created})

	if err := store.Save(&Session{Token: "same_token", User: User{Name: "renamed"}}); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt %v to be preserved, got %v", created, got.CreatedAt)
	}
	if got.User.Name != "renamed" {
		t.Errorf("expected user to be updated, got %q", got.User.Name)
	}
}

func TestKeyringStore_NewCreatedAtOnTokenChange(t *testing.T) {
	store, mock := newMockStore()

	created := time.Now().Add(-72 * time.Hour)
	seedSession(t, mock, Session{Token: "old_token", CreatedAt: created})

	if err := store.Save(&Session{Token: "new_token"}); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	got, _ := store.Load()
	if time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("expected fresh CreatedAt for a new token, got %v", got.CreatedAt)
	}
}

func TestKeyringStore_Clear(t *testing.T) {
	store, mock := newMockStore()
	seedSession(t, mock, Session{Token: "t"})

	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after Clear, got: %v", err)
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected error on second clear: %v", err)
	}
}

func TestKeyringStore_Unavailable(t *testing.T) {
	store := &KeyringStore{open: func() (KeyringProvider, error) {
		return nil, fmt.Errorf("keyring not available")
	}}

	if _, err := store.Load(); err == nil || errors.Is(err, ErrNoSession) {
		t.Errorf("expected open error, got: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear should ignore an unavailable keyring, got: %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	store, mock := newMockStore()
	seedSession(t, mock, Session{Token: "stored_token"})
	wrapped := EnvOverride(store)

	t.Setenv(EnvVarName, "env_token")
	got, err := wrapped.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "env_token" || !got.FromEnv {
		t.Errorf("expected env token to win, got %+v", got)
	}

	t.Setenv(EnvVarName, "")
	got, err = wrapped.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "stored_token" || got.FromEnv {
		t.Errorf("expected stored token, got %+v", got)
	}

	if err := wrapped.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Clear should reach the wrapped store, got: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(nil)
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got: %v", err)
	}
	if err := store.Save(&Session{Token: "t1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.Load()
	if got.Token != "t1" {
		t.Errorf("expected t1, got %q", got.Token)
	}
	_ = store.Clear()
	if store.Cleared != 1 {
		t.Errorf("expected one Clear call, got %d", store.Cleared)
	}
}

func TestShouldForceFileBackend(t *testing.T) {
	tests := []struct {
		goos string
		dbus string
		want bool
	}{
		{"linux", "", true},
		{"linux", "  ", true},
		{"linux", "unix:path=/run/user/1000/bus", false},
		{"darwin", "", false},
		{"windows", "", false},
	}
	for _, tt := range tests {
		if got := shouldForceFileBackend(tt.goos, tt.dbus); got != tt.want {
			t.Errorf("shouldForceFileBackend(%q, %q) = %v, want %v", tt.goos, tt.dbus, got, tt.want)
		}
	}
}

func TestKeyringFileDir_FromEnv(t *testing.T) {
	t.Setenv(CredentialsDirEnvVarName, "/tmp/creds")
	if got := keyringFileDir(); got != "/tmp/creds/folio-cli/keyring" {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestKeyringFilePassword(t *testing.T) {
	t.Setenv(KeyringPasswordEnvVarName, "")
	if got := keyringFilePassword(); got != ServiceName {
		t.Errorf("expected default password %q, got %q", ServiceName, got)
	}
	t.Setenv(KeyringPasswordEnvVarName, "s3cret")
	if got := keyringFilePassword(); got != "s3cret" {
		t.Errorf("expected env password, got %q", got)
	}
}

func TestSessionAgeDays(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		want      int
	}{
		{"zero time", time.Time{}, 0},
		{"now", time.Now(), 0},
		{"two days", time.Now().Add(-49 * time.Hour), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionAgeDays(tt.createdAt); got != tt.want {
				t.Errorf("SessionAgeDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatSessionAge(t *testing.T) {
	if got := FormatSessionAge(time.Time{}); got != "" {
		t.Errorf("expected empty string for zero time, got %q", got)
	}
	if got := FormatSessionAge(time.Now()); !strings.HasPrefix(got, "signed in today") {
		t.Errorf("unexpected format %q", got)
	}
	if got := FormatSessionAge(time.Now().Add(-25 * time.Hour)); !strings.HasPrefix(got, "signed in 1 day ago") {
		t.Errorf("unexpected format %q", got)
	}
	if got := FormatSessionAge(time.Now().Add(-24 * 10 * time.Hour)); !strings.HasPrefix(got, "signed in 10 days ago") {
		t.Errorf("unexpected format %q", got)
	}
}
