package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/salmonumbrella/folio-cli/internal/api"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
)

// Process exit codes. Scripts branch on these, so they never change.
const (
	ExitOK        = 0
	ExitSystem    = 1
	ExitUser      = 2
	ExitAuth      = 3
	ExitNotFound  = 4
	ExitRateLimit = 5
	ExitTemp      = 6
	ExitCanceled  = 130
)

// typedExits are checked in order before any API status. The typed
// errors wrap the API error they came from.
var typedExits = []struct {
	match func(error) bool
	code  int
}{
	{clierrors.IsRateLimitError, ExitRateLimit},
	{clierrors.IsAuthError, ExitAuth},
	{clierrors.IsCircuitBreakerError, ExitTemp},
}

var statusExits = map[int]int{
	http.StatusUnauthorized:       ExitAuth,
	http.StatusForbidden:          ExitAuth,
	http.StatusNotFound:           ExitNotFound,
	http.StatusTooManyRequests:    ExitRateLimit,
	http.StatusBadGateway:         ExitTemp,
	http.StatusServiceUnavailable: ExitTemp,
	http.StatusGatewayTimeout:     ExitTemp,
}

// ExitCode maps a command error to its exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	for _, t := range typedExits {
		if t.match(err) {
			return t.code
		}
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return statusExit(apiErr.StatusCode)
	}
	if clierrors.IsValidationError(err) || clierrors.IsUserError(err) {
		return ExitUser
	}
	return ExitSystem
}

func statusExit(status int) int {
	if code, ok := statusExits[status]; ok {
		return code
	}
	if status >= 400 && status < 500 {
		return ExitUser
	}
	return ExitSystem
}
