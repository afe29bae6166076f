// Package errors holds folio's typed CLI errors. Commands map them to
// exit codes and to the stderr error envelope.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ValidationError is a bad value for one named input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// UserError is a failure the user can fix. Suggestion says how.
type UserError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }
func (e *UserError) hint() string  { return e.Suggestion }

func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

func WrapUserError(err error, message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion, Err: err}
}

// RateLimitError is a 429 that outlived the client's retries.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
}

// AuthError is a missing, rejected or expired session.
type AuthError struct {
	Reason     string
	Suggestion string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s: %v", e.Reason, e.Err)
	}
	return "authentication error: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) hint() string  { return e.Suggestion }

// AuthRequiredError is returned when no session is stored.
func AuthRequiredError(err error) error {
	return &AuthError{
		Reason:     "authentication required",
		Suggestion: "Run 'folio auth login' to sign in",
		Err:        err,
	}
}

// SessionExpiredError is returned after the API rejects the stored token.
func SessionExpiredError(err error) error {
	return &AuthError{
		Reason:     "session expired",
		Suggestion: "Run 'folio auth login' to sign in again",
		Err:        err,
	}
}

// CircuitBreakerError means the client stopped calling a failing API.
type CircuitBreakerError struct{}

func (e *CircuitBreakerError) Error() string {
	return "service temporarily unavailable (circuit breaker open)"
}

func (e *CircuitBreakerError) hint() string {
	return "Wait a few seconds and try again"
}

func is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsRateLimitError(err error) bool      { return is[*RateLimitError](err) }
func IsAuthError(err error) bool           { return is[*AuthError](err) }
func IsCircuitBreakerError(err error) bool { return is[*CircuitBreakerError](err) }
func IsValidationError(err error) bool     { return is[*ValidationError](err) }
func IsUserError(err error) bool           { return is[*UserError](err) }
func IsContextualError(err error) bool     { return is[*ContextualError](err) }

type hinter interface {
	hint() string
}

// UserSuggestion returns the suggestion of the outermost error in the
// chain that carries one.
func UserSuggestion(err error) string {
	var h hinter
	if errors.As(err, &h) {
		return h.hint()
	}
	return ""
}

// ContextualError records the request an API error came from.
// StatusCode is 0 when no response arrived.
type ContextualError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// WrapContext returns nil for a nil err.
func WrapContext(method, url string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &ContextualError{Method: method, URL: url, StatusCode: statusCode, Err: err}
}

func (e *ContextualError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *ContextualError) Unwrap() error { return e.Err }

// UnknownResourceError lists the valid names.
func UnknownResourceError(name string, known []string) error {
	return NewUserError(
		fmt.Sprintf("unknown resource %q", name),
		"Valid resources:\n"+bulleted(known),
	)
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "  • %s\n", item)
	}
	return b.String()
}

// APINotFoundError turns a 404 for resource/id into a UserError with a
// hint. Other errors are returned unchanged.
func APINotFoundError(err error, resource, id string) error {
	if err == nil || !isNotFound(err) {
		return err
	}
	return WrapUserError(err, fmt.Sprintf("failed to get %s record", resource),
		fmt.Sprintf("The record %q was not found.\n\nSuggestions:\n  • Run 'folio %s list' to see existing records\n  • Check the ID is correct", id, resource))
}

var notFoundPhrases = []string{"not found", "could not find", "no encontrad"}

func isNotFound(err error) bool {
	var ce *ContextualError
	if errors.As(err, &ce) && ce.StatusCode != 0 {
		return ce.StatusCode == http.StatusNotFound
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range notFoundPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
