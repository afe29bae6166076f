// Package auth stores the signed-in admin session.
//
// A Session (user plus bearer token) is persisted through a SessionStore.
// KeyringStore keeps it in the OS keyring (macOS Keychain, Windows
// Credential Manager, Linux Secret Service) via github.com/99designs/keyring,
// falling back to an encrypted file backend on headless Linux. The file
// backend root can be moved with FOLIO_CREDENTIALS_DIR and its passphrase set
// with FOLIO_KEYRING_PASSWORD.
//
// The store is created once at startup and handed to both the commands and
// the API client; there is no package-level session. The API client clears
// the store when the server answers 401.
//
// Priority order for Load:
//  1. FOLIO_TOKEN environment variable (see EnvOverride)
//  2. The wrapped store
//
// Example usage:
//
//	store := auth.EnvOverride(auth.NewKeyringStore())
//	if err := store.Save(&auth.Session{User: user, Token: token}); err != nil {
//	    log.Fatal(err)
//	}
//
//	sess, err := store.Load()
//	if errors.Is(err, auth.ErrNoSession) {
//	    fmt.Println("not signed in")
//	}
package auth
