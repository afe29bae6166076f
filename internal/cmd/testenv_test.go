package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	"github.com/salmonumbrella/folio-cli/internal/config"
	"github.com/salmonumbrella/folio-cli/internal/testutil"
)

// testEnv runs the CLI against a mock API with buffered stdio.
type testEnv struct {
	t     *testing.T
	mock  *testutil.MockServer
	store *auth.MemoryStore
	// envToken routes the store through auth.EnvOverride.
	envToken bool
	cfgPath  string
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	stdin    string
	opened   []string
}

func adminSession() *auth.Session {
	return &auth.Session{
		Token: "tok",
		User:  auth.User{ID: "u1", Name: "Admin", Email: "admin@example.com"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mock := testutil.NewMockServer()
	t.Cleanup(mock.Close)

	e := &testEnv{
		t:       t,
		mock:    mock,
		store:   auth.NewMemoryStore(adminSession()),
		cfgPath: filepath.Join(t.TempDir(), "config.yaml"),
	}

	t.Setenv(config.APIURLEnvVar, mock.URL())
	t.Setenv(config.SiteURLEnvVar, "")
	t.Setenv(config.LocaleEnvVar, "en")
	t.Setenv(auth.EnvVarName, "")

	orig := config.SetConfigPathFunc(func() (string, error) { return e.cfgPath, nil })
	t.Cleanup(func() { config.SetConfigPathFunc(orig) })

	e.writeConfig(&config.Config{Cache: config.CacheConfig{Dir: t.TempDir(), Disabled: true}})
	return e
}

func (e *testEnv) writeConfig(cfg *config.Config) {
	e.t.Helper()
	if err := cfg.SaveToPath(e.cfgPath); err != nil {
		e.t.Fatalf("save config: %v", err)
	}
}

func (e *testEnv) app() *App {
	var store auth.SessionStore = e.store
	if e.envToken {
		store = auth.EnvOverride(e.store)
	}
	return &App{
		Stdout:  &e.stdout,
		Stderr:  &e.stderr,
		Stdin:   strings.NewReader(e.stdin),
		Build:   Build{Version: "test"},
		Store:   store,
		OpenURL: func(url string) error {
			e.opened = append(e.opened, url)
			return nil
		},
	}
}

// run executes args with fresh output buffers.
func (e *testEnv) run(args ...string) error {
	e.t.Helper()
	e.stdout.Reset()
	e.stderr.Reset()
	return e.app().Execute(context.Background(), args)
}

// mustRun fails the test when the command errors.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	if err := e.run(args...); err != nil {
		e.t.Fatalf("%s: %v\nstderr: %s", strings.Join(args, " "), err, e.stderr.String())
	}
	return e.stdout.String()
}

// decode unmarshals the JSON written to stdout.
func (e *testEnv) decode(v any) {
	e.t.Helper()
	if err := json.Unmarshal(e.stdout.Bytes(), v); err != nil {
		e.t.Fatalf("stdout is not JSON: %v\n%s", err, e.stdout.String())
	}
}

func (e *testEnv) requests(method, path string) []testutil.Request {
	var out []testutil.Request
	for _, r := range e.mock.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func skillRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"id":       fmt.Sprint(i + 1),
			"name":     fmt.Sprintf("Skill %d", i+1),
			"icon":     "https://cdn.example.com/go.svg",
			"category": map[string]any{"name": "Backend"},
		}
	}
	return rows
}

func experienceRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"id":          fmt.Sprint(i + 1),
			"title":       fmt.Sprintf("Job %d", i+1),
			"dateRange":   "2020 - 2022",
			"description": "Built things",
		}
	}
	return rows
}

func assertExit(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with exit code %d", want)
	}
	if got := ExitCode(err); got != want {
		t.Fatalf("exit code = %d, want %d (err: %v)", got, want, err)
	}
}
