package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/salmonumbrella/folio-cli/internal/api"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":             {nil, ExitOK},
		"canceled":        {fmt.Errorf("wrapped: %w", context.Canceled), ExitCanceled},
		"wrapped_api_404": {clierrors.WrapContext("GET", "http://x/skill/1", 404, &api.APIError{StatusCode: 404}), ExitNotFound},
		"rate_limit":      {&clierrors.RateLimitError{RetryAfter: time.Second}, ExitRateLimit},
		"auth_over_api":   {clierrors.SessionExpiredError(&api.APIError{StatusCode: 401}), ExitAuth},
		"circuit":         {&clierrors.CircuitBreakerError{}, ExitTemp},
		"user":            {clierrors.NewUserError("bad", ""), ExitUser},
		"validation":      {&clierrors.ValidationError{Field: "page", Message: "bad"}, ExitUser},
		"plain":           {errors.New("boom"), ExitSystem},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode_APIStatus(t *testing.T) {
	want := map[int]int{
		400: ExitUser,
		401: ExitAuth,
		403: ExitAuth,
		404: ExitNotFound,
		409: ExitUser,
		429: ExitRateLimit,
		500: ExitSystem,
		502: ExitTemp,
		503: ExitTemp,
		504: ExitTemp,
	}
	for status, code := range want {
		if got := ExitCode(&api.APIError{StatusCode: status}); got != code {
			t.Errorf("status %d: ExitCode() = %d, want %d", status, got, code)
		}
	}
}
