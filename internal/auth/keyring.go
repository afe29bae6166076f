package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/99designs/keyring"
)

const (
	// ServiceName is the keyring service name for folio
	ServiceName = "folio-cli"
	// SessionKey is the keyring key holding the JSON encoded session
	SessionKey = "folio-session"
	// EnvVarName is the environment variable that overrides the stored token
	EnvVarName = "FOLIO_TOKEN"
	// CredentialsDirEnvVarName controls the credential storage root directory.
	// Keyring files are stored under: <dir>/folio-cli/keyring
	CredentialsDirEnvVarName = "FOLIO_CREDENTIALS_DIR"
	// KeyringPasswordEnvVarName sets the file keyring passphrase for non-interactive setups.
	KeyringPasswordEnvVarName = "FOLIO_KEYRING_PASSWORD"
	// DBUSSessionAddressEnvVarName is used to detect Linux headless mode.
	DBUSSessionAddressEnvVarName = "DBUS_SESSION_BUS_ADDRESS"
)

// KeyringProvider defines an interface for keyring operations
type KeyringProvider interface {
	Get(key string) (keyring.Item, error)
	Set(item keyring.Item) error
	Remove(key string) error
}

// osKeyring wraps the actual OS keyring implementation
type osKeyring struct {
	ring keyring.Keyring
}

func keyringFileDir() string {
	if dir := strings.TrimSpace(os.Getenv(CredentialsDirEnvVarName)); dir != "" {
		return filepath.Join(dir, ServiceName, "keyring")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}

	configDir = strings.TrimSpace(configDir)
	if configDir == "" {
		return string(os.PathSeparator) + filepath.Join(ServiceName, "keyring")
	}
	return filepath.Join(configDir, ServiceName, "keyring")
}

func keyringFilePassword() string {
	if password := strings.TrimSpace(os.Getenv(KeyringPasswordEnvVarName)); password != "" {
		return password
	}
	return ServiceName
}

func shouldForceFileBackend(goos string, dbusAddr string) bool {
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

// newOSKeyring opens the platform keyring
func newOSKeyring() (KeyringProvider, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		// macOS Keychain settings
		KeychainTrustApplication:       true,
		KeychainSynchronizable:         false,
		KeychainAccessibleWhenUnlocked: true,
		// File-based fallback (for environments without GUI keyring)
		FileDir:          keyringFileDir(),
		FilePasswordFunc: func(_ string) (string, error) { return keyringFilePassword(), nil },
	}

	if shouldForceFileBackend(runtime.GOOS, os.Getenv(DBUSSessionAddressEnvVarName)) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &osKeyring{ring: ring}, nil
}

func (k *osKeyring) Get(key string) (keyring.Item, error) {
	return k.ring.Get(key)
}

func (k *osKeyring) Set(item keyring.Item) error {
	return k.ring.Set(item)
}

func (k *osKeyring) Remove(key string) error {
	return k.ring.Remove(key)
}

// KeyringStore persists the session as JSON in a keyring. The keyring is
// opened on first use so commands that never touch the session never
// trigger an unlock prompt.
type KeyringStore struct {
	open func() (KeyringProvider, error)

	once     sync.Once
	provider KeyringProvider
	openErr  error
}

// NewKeyringStore returns a store backed by the OS keyring.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{open: newOSKeyring}
}

// NewKeyringStoreWithProvider returns a store backed by p (used in tests).
func NewKeyringStoreWithProvider(p KeyringProvider) *KeyringStore {
	return &KeyringStore{open: func() (KeyringProvider, error) { return p, nil }}
}

func (k *KeyringStore) ring() (KeyringProvider, error) {
	k.once.Do(func() {
		k.provider, k.openErr = k.open()
	})
	if k.openErr != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", k.openErr)
	}
	return k.provider, nil
}

// Load returns the stored session or ErrNoSession.
func (k *KeyringStore) Load() (*Session, error) {
	provider, err := k.ring()
	if err != nil {
		return nil, err
	}

	item, err := provider.Get(SessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from keyring: %w", err)
	}
	if len(item.Data) == 0 {
		return nil, ErrNoSession
	}

	var s Session
	if err := json.Unmarshal(item.Data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Save stores s, keeping CreatedAt when the token has not changed.
func (k *KeyringStore) Save(s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	provider, err := k.ring()
	if err != nil {
		return err
	}

	stored := *s
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
		if existing, err := k.Load(); err == nil && existing.Token == s.Token && !existing.CreatedAt.IsZero() {
			stored.CreatedAt = existing.CreatedAt
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = provider.Set(keyring.Item{
		Key:   SessionKey,
		Label: "Folio CLI Session",
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

// Clear removes the stored session. A missing session is not an error.
func (k *KeyringStore) Clear() error {
	provider, err := k.ring()
	if err != nil {
		// If we can't open the keyring, there's nothing to delete
		return nil
	}

	err = provider.Remove(SessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
