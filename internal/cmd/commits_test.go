package cmd

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/salmonumbrella/folio-cli/internal/config"
)

func commitRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"sha":      fmt.Sprintf("c%06d89abcdef", i+1),
			"html_url": fmt.Sprintf("https://github.com/ana/site/commit/%d", i+1),
			"commit": map[string]any{
				"message": fmt.Sprintf("change %d\n\ndetails", i+1),
				"author":  map[string]any{"name": "Ana", "date": "2026-10-01T12:00:00Z"},
			},
			"author": nil,
		}
	}
	return rows
}

// githubEnv points the GitHub client at the mock server.
func githubEnv(t *testing.T, repo string) *testEnv {
	env := newTestEnv(t)
	t.Setenv(config.GitHubTokenEnvVar, "")
	t.Setenv(config.GitHubRepoEnvVar, "")
	env.writeConfig(&config.Config{
		Cache:  config.CacheConfig{Dir: t.TempDir(), Disabled: true},
		GitHub: config.GitHubConfig{Repo: repo, Branch: "master", APIURL: env.mock.URL(), Token: "ghp_fromfile"},
	})
	return env
}

func TestCommits(t *testing.T) {
	env := githubEnv(t, "ana/site")
	env.mock.HandleJSON(http.MethodGet, "/repos/ana/site/commits", http.StatusOK, commitRows(5))

	env.mustRun("commits", "--page", "2")

	var rows []map[string]any
	env.decode(&rows)
	if len(rows) != 5 || rows[0]["message"] != "change 1" || rows[0]["id"] != "c000001" {
		t.Fatalf("rows = %v", rows)
	}

	req := env.requests(http.MethodGet, "/repos/ana/site/commits")[0]
	if req.Query["page"] != "2" || req.Query["per_page"] != "5" || req.Query["sha"] != "master" {
		t.Errorf("query = %v", req.Query)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer ghp_fromfile" {
		t.Errorf("Authorization = %q, want the GitHub token and never the folio session", got)
	}
}

func TestCommits_TableOutput(t *testing.T) {
	env := githubEnv(t, "ana/site")
	env.mock.HandleJSON(http.MethodGet, "/repos/ana/site/commits", http.StatusOK, commitRows(5))

	out := env.mustRun("commits", "-o", "table")
	for _, want := range []string{"change 5", "Ana", "c000003"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestCommits_FlagsOverrideConfig(t *testing.T) {
	env := githubEnv(t, "ana/site")
	env.mock.HandleJSON(http.MethodGet, "/repos/bob/blog/commits", http.StatusOK, commitRows(1))
	t.Setenv(config.GitHubTokenEnvVar, "ghp_env")

	env.mustRun("commits", "--repo", "bob/blog", "--per-page", "10", "--branch", "main")

	req := env.requests(http.MethodGet, "/repos/bob/blog/commits")[0]
	if req.Query["per_page"] != "10" || req.Query["sha"] != "main" {
		t.Errorf("query = %v", req.Query)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer ghp_env" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestCommits_Errors(t *testing.T) {
	env := githubEnv(t, "")
	assertExit(t, env.run("commits"), ExitUser)
	assertExit(t, env.run("commits", "--repo", "not-a-repo"), ExitUser)
	assertExit(t, env.run("commits", "--repo", "ana/site", "--page", "0"), ExitUser)

	env.mock.HandleError(http.MethodGet, "/repos/ana/site/commits", http.StatusNotFound, "Not Found")
	assertExit(t, env.run("commits", "--repo", "ana/site"), ExitNotFound)

	env.mock.HandleError(http.MethodGet, "/repos/ana/private/commits", http.StatusUnauthorized, "Bad credentials")
	assertExit(t, env.run("commits", "--repo", "ana/private"), ExitAuth)
	if env.store.Cleared != 0 {
		t.Error("a rejected GitHub token must not sign out of folio")
	}
}
