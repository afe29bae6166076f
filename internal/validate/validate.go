// Package validate holds field checks shared by commands before they reach the API.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLength bounds the profile display name.
	MaxNameLength = 100
	// MinPasswordLength is the shortest password the API accepts.
	MinPasswordLength = 6
	// MaxPerPage is the largest page size the API serves.
	MaxPerPage = 100
)

func fail(field, format string, args ...any) error {
	return fmt.Errorf("%s: "+format, append([]any{field}, args...)...)
}

// NonEmpty rejects blank values.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fail(field, "cannot be empty")
	}
	return nil
}

// MaxLength counts characters, not bytes.
func MaxLength(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fail(field, "must be at most %d characters, got %d", limit, n)
	}
	return nil
}

// Email accepts a bare address with a dotted domain, such as
// admin@example.com. Display-name forms are rejected.
func Email(field, value string) error {
	if value == "" {
		return fail(field, "cannot be empty")
	}
	addr, err := mail.ParseAddress(value)
	if err == nil && addr.Address == value {
		_, domain, _ := strings.Cut(value, "@")
		if strings.Contains(domain, ".") {
			return nil
		}
	}
	return fail(field, "must be a valid email address, got %q", value)
}

// Password checks a new password against its confirmation. Both empty
// means the password is left unchanged.
func Password(password, confirm string) error {
	switch {
	case password == "" && confirm == "":
		return nil
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return fail("password", "must be at least %d characters", MinPasswordLength)
	case password != confirm:
		return fail("confirm-password", "passwords do not match")
	}
	return nil
}

func between(field string, v, lo, hi int) error {
	if v < lo {
		return fail(field, "must be at least %d, got %d", lo, v)
	}
	if hi > 0 && v > hi {
		return fail(field, "must be at most %d, got %d", hi, v)
	}
	return nil
}

// PerPage accepts 1 through MaxPerPage.
func PerPage(size int) error { return between("per-page", size, 1, MaxPerPage) }

// Page accepts any 1-based page number.
func Page(page int) error { return between("page", page, 1, 0) }

// URL requires an absolute URL with a scheme and host.
func URL(field, raw string) error {
	if raw == "" {
		return fail(field, "cannot be empty")
	}
	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return fail(field, "must be a valid URL, got error: %v", err)
	case u.Scheme == "":
		return fail(field, "must have a scheme (http, https, etc.), got %q", raw)
	case u.Host == "":
		return fail(field, "must have a host, got %q", raw)
	}
	return nil
}
