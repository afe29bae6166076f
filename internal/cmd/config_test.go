package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/salmonumbrella/folio-cli/internal/config"
)

func TestConfigSetGet(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("config", "set", "site_url", "https://ada.dev")
	if out := env.mustRun("config", "get", "site_url"); strings.TrimSpace(out) != "https://ada.dev" {
		t.Errorf("get site_url = %q", out)
	}

	env.mustRun("config", "set", "output", "JSONL")
	cfg, err := config.LoadFromPath(env.cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "ndjson" {
		t.Errorf("output = %q, want ndjson", cfg.Output)
	}
	if cfg.SiteURL != "https://ada.dev" {
		t.Errorf("site_url = %q", cfg.SiteURL)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("config", "set", "output", "xml"); err == nil {
		t.Error("expected invalid output to fail")
	}
	if err := env.run("config", "set", "nope", "1"); err == nil {
		t.Error("expected unknown key to fail")
	}
}

func TestConfigPath(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("config", "path")
	if !strings.Contains(out, env.cfgPath) || !strings.Contains(out, "(file exists)") {
		t.Errorf("path output = %q", out)
	}
}

func TestConfigList(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("config", "list")

	var rows []map[string]string
	env.decode(&rows)
	effective := map[string]string{}
	for _, r := range rows {
		effective[r["key"]] = r["effective"]
	}
	if effective["api_url"] != env.mock.URL() {
		t.Errorf("api_url effective = %q", effective["api_url"])
	}
	if effective["locale"] != "en" {
		t.Errorf("locale effective = %q", effective["locale"])
	}
}

func TestConfigListMasksGitHubToken(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.GitHubTokenEnvVar, "")
	env.mustRun("config", "set", "github.token", "ghp_abcdefgh1234")

	env.mustRun("config", "list")
	if strings.Contains(env.stdout.String(), "ghp_abcdefgh1234") {
		t.Fatalf("token leaked: %s", env.stdout.String())
	}
	var rows []map[string]string
	env.decode(&rows)
	for _, r := range rows {
		if r["key"] == "github.token" && (r["value"] != "************1234" || r["effective"] != "************1234") {
			t.Errorf("github.token row = %v", r)
		}
	}
}

func TestConfigCommandsSkipBrokenConfig(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.cfgPath, []byte("api_url: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	assertExit(t, env.run("skills", "list"), ExitUser)
	if out := env.mustRun("config", "path"); !strings.Contains(out, env.cfgPath) {
		t.Errorf("config path output = %q", out)
	}
}
