package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/folio-cli/internal/api"
	ctxerrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/output"
)

var errorFormats = []string{"auto", "text", "json", "yaml"}

func validateErrorFormat(format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || slices.Contains(errorFormats, format) {
		return nil
	}
	return ctxerrors.NewUserError(
		fmt.Sprintf("invalid --error-format %q", format),
		"Use one of: "+strings.Join(errorFormats, ", "),
	)
}

// effectiveErrorFormat resolves auto against the data format, so a
// json or yaml pipeline also gets a parseable error on stderr.
func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format != "" && format != "auto" {
		return format
	}
	switch output.FormatFromContext(ctx) {
	case output.FormatJSON, output.FormatNDJSON:
		return "json"
	case output.FormatYAML:
		return "yaml"
	}
	return "text"
}

// errorEnvelope is the machine-readable form of a failed command.
type errorEnvelope struct {
	Error errorDetail `json:"error" yaml:"error"`
}

type errorDetail struct {
	Message           string   `json:"message" yaml:"message"`
	ExitCode          int      `json:"exit_code" yaml:"exit_code"`
	Category          string   `json:"category" yaml:"category"`
	Type              string   `json:"type,omitempty" yaml:"type,omitempty"`
	Suggestion        string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Method            string   `json:"method,omitempty" yaml:"method,omitempty"`
	URL               string   `json:"url,omitempty" yaml:"url,omitempty"`
	Status            int      `json:"status,omitempty" yaml:"status,omitempty"`
	Details           []string `json:"details,omitempty" yaml:"details,omitempty"`
	Reason            string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	RequestID         string   `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Field             string   `json:"field,omitempty" yaml:"field,omitempty"`
	RetryAfterSeconds int      `json:"retry_after_seconds,omitempty" yaml:"retry_after_seconds,omitempty"`
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	w := stderrFromContext(ctx)

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
	default:
		_, _ = fmt.Fprintln(w, "Error:", err)
		if suggestion := ctxerrors.UserSuggestion(err); suggestion != "" {
			_, _ = fmt.Fprintf(w, "Hint: %s\n", suggestion)
		}
	}
}

func buildErrorEnvelope(err error) errorEnvelope {
	d := errorDetail{
		Message:    err.Error(),
		ExitCode:   ExitCode(err),
		Suggestion: ctxerrors.UserSuggestion(err),
	}
	switch d.ExitCode {
	case ExitUser, ExitAuth, ExitNotFound:
		d.Category = "user"
	default:
		d.Category = "system"
	}

	var contextual *ctxerrors.ContextualError
	if errors.As(err, &contextual) {
		d.Method, d.URL, d.Status = contextual.Method, contextual.URL, contextual.StatusCode
	}

	// Later matches are more specific and overwrite Type.
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		d.Type = "api"
		if apiErr.StatusCode > 0 {
			d.Status = apiErr.StatusCode
		}
		if apiErr.Response != nil {
			d.Details = []string(apiErr.Response.Message)
			d.Reason = apiErr.Response.Reason
		}
		d.RequestID = apiErr.RequestID
		d.RetryAfterSeconds = int(apiErr.RetryAfter.Seconds())
	}

	var rlErr *ctxerrors.RateLimitError
	if errors.As(err, &rlErr) {
		d.Type = "rate_limit"
		d.RetryAfterSeconds = int(rlErr.RetryAfter.Seconds())
	}
	if ctxerrors.IsAuthError(err) {
		d.Type = "auth"
	}
	var validationErr *ctxerrors.ValidationError
	if errors.As(err, &validationErr) {
		d.Type = "validation"
		d.Field = validationErr.Field
	}
	if ctxerrors.IsCircuitBreakerError(err) {
		d.Type = "circuit_breaker"
	}

	return errorEnvelope{Error: d}
}
