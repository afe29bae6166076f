package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Messages holds the API "message" field, which is a string for most
// failures and a list of strings for validation failures.
type Messages []string

func (m *Messages) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*m = Messages{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = many
	return nil
}

// String joins the messages with "; ".
func (m Messages) String() string {
	return strings.Join(m, "; ")
}

// ErrorResponse is the API error body: {"statusCode", "message", "error"}.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    Messages `json:"message"`
	Reason     string   `json:"error,omitempty"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	msg := e.Message.String()
	if msg == "" {
		msg = e.Reason
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, msg)
}

// APIError wraps an ErrorResponse with additional context
type APIError struct {
	StatusCode int
	Response   *ErrorResponse
	RetryAfter time.Duration
	RequestID  string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Response != nil && (len(e.Response.Message) > 0 || e.Response.Reason != "") {
		return e.Response.Error()
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}
