package validate

import (
	"strings"
	"testing"
)

func TestNonEmpty(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"value", "Go", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NonEmpty("name", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NonEmpty(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestMaxLength(t *testing.T) {
	if err := MaxLength("name", strings.Repeat("a", MaxNameLength), MaxNameLength); err != nil {
		t.Errorf("exact limit should pass: %v", err)
	}
	// Multi-byte characters count once each.
	if err := MaxLength("name", strings.Repeat("ñ", MaxNameLength), MaxNameLength); err != nil {
		t.Errorf("runes should be counted, not bytes: %v", err)
	}
	err := MaxLength("name", strings.Repeat("a", MaxNameLength+1), MaxNameLength)
	if err == nil || !strings.Contains(err.Error(), "at most 100") {
		t.Errorf("expected length error, got %v", err)
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"admin@example.com", false},
		{"first.last@sub.example.org", false},
		{"", true},
		{"admin", true},
		{"admin@localhost", true},
		{"Admin <admin@example.com>", true},
		{"admin@@example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := Email("email", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Email(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		errMsg   string
	}{
		{"unchanged", "", "", ""},
		{"valid", "secret1", "secret1", ""},
		{"too short", "abc", "abc", "at least 6"},
		{"mismatch", "secret1", "secret2", "do not match"},
		{"confirm only", "", "secret1", "at least 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password, tt.confirm)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Password() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Password() error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestPerPage(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{1, false},
		{10, false},
		{100, false},
		{0, true},
		{-3, true},
		{101, true},
	}
	for _, tt := range tests {
		err := PerPage(tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("PerPage(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
	}
}

func TestPage(t *testing.T) {
	if err := Page(1); err != nil {
		t.Errorf("Page(1) error = %v", err)
	}
	if err := Page(0); err == nil {
		t.Error("Page(0) expected error")
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://localhost:3000/api", false},
		{"example.com", true},
		{"https://", true},
		{"", true},
	}
	for _, tt := range tests {
		err := URL("api_url", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("URL(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}
