// Package debug provides the --debug flag plumbing and an HTTP transport
// that traces API traffic with credentials redacted.
package debug

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	maxRequestBody  = 500
	maxResponseBody = 1000
)

// JSON string fields whose values never reach the trace: the login
// request carries a password and its response a bearer token.
var secretFields = regexp.MustCompile(`("(?:password|token|confirmPassword)"\s*:\s*)"[^"]*"`)

type contextKey struct{}

// WithDebug injects the debug flag into the context
func WithDebug(ctx context.Context, debug bool) context.Context {
	return context.WithValue(ctx, contextKey{}, debug)
}

// IsDebug returns true if debug mode is enabled in the context
func IsDebug(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// DebugTransport wraps http.RoundTripper to log requests/responses when debug mode is enabled
type DebugTransport struct {
	Transport http.RoundTripper
	Output    io.Writer
}

// NewDebugTransport creates a new DebugTransport with the given base transport
// If output is nil, it defaults to os.Stderr
func NewDebugTransport(base http.RoundTripper, output io.Writer) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if output == nil {
		output = os.Stderr
	}
	return &DebugTransport{
		Transport: base,
		Output:    output,
	}
}

// RedactHeader masks credentials in a header value.
func RedactHeader(key, val string) string {
	switch http.CanonicalHeaderKey(key) {
	case "Authorization":
		token, ok := strings.CutPrefix(val, "Bearer ")
		if !ok {
			return "[redacted]"
		}
		if len(token) > 10 {
			return "Bearer ..." + token[len(token)-4:]
		}
		return "Bearer [redacted]"
	case "Cookie", "Set-Cookie":
		return "[redacted]"
	}
	return val
}

// RedactBody masks password and token values in a JSON body.
func RedactBody(body string) string {
	return secretFields.ReplaceAllString(body, `$1"[redacted]"`)
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "... [truncated]"
	}
	return s
}

// RoundTrip implements http.RoundTripper
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.printf("\n--> %s %s\n", req.Method, req.URL)
	t.headers(req.Header)
	if req.Body != nil {
		req.Body = t.body("request", req.Body, maxRequestBody)
	}

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.printf("<-- ERROR: %v (%s)\n\n", err, duration)
		return resp, err
	}

	t.printf("<-- %d %s (%s)\n", resp.StatusCode, resp.Status, duration)
	if rl := resp.Header.Get("X-RateLimit-Remaining"); rl != "" {
		t.printf("    Rate-Limit: %s/%s remaining%s\n", rl, resp.Header.Get("X-RateLimit-Limit"), resetIn(resp.Header.Get("X-RateLimit-Reset")))
	}
	t.headers(resp.Header)
	if resp.Body != nil {
		resp.Body = t.body("response", resp.Body, maxResponseBody)
	}

	_, _ = fmt.Fprintln(t.Output)
	return resp, nil
}

// headers prints h in key order.
func (t *DebugTransport) headers(h http.Header) {
	for _, key := range slices.Sorted(maps.Keys(h)) {
		t.printf("    %s: %s\n", key, RedactHeader(key, strings.Join(h[key], ", ")))
	}
}

// body prints a redacted, truncated copy of rc and returns a reader
// over the same bytes.
func (t *DebugTransport) body(label string, rc io.ReadCloser, limit int) io.ReadCloser {
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.printf("    [ERROR reading %s body: %v]\n", label, err)
	}
	if len(data) > 0 {
		t.printf("    Body: %s\n", truncate(RedactBody(string(data)), limit))
	}
	return io.NopCloser(bytes.NewReader(data))
}

func (t *DebugTransport) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.Output, format, args...)
}

// resetIn renders a unix-seconds reset header as " (resets in Ns)".
func resetIn(reset string) string {
	ts, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return ""
	}
	remaining := time.Until(time.Unix(ts, 0))
	if remaining <= 0 {
		return ""
	}
	return fmt.Sprintf(" (resets in %ds)", int(remaining.Seconds()))
}
