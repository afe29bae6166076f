package cmd

import (
	"strings"
	"testing"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	"github.com/salmonumbrella/folio-cli/internal/config"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("--version")
	if !strings.HasPrefix(out, "folio test") {
		t.Errorf("version output = %q", out)
	}
}

func TestHelpGroupsCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("--help")
	for _, want := range []string{
		"Content commands:", "skills", "skill-categories", "work-experiences", "projects", "contact-forms",
		"page", "stats", "commits", "preview",
		"Account and tooling:", "auth", "settings", "config", "cache", "mcp",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestOutputFormatPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		cfg    string
		args   []string
		prefix string
	}{
		{name: "non_terminal_defaults_to_json", prefix: "{"},
		{name: "config_default", cfg: "yaml", prefix: "authenticated:"},
		{name: "flag_beats_config", cfg: "yaml", args: []string{"-o", "json"}, prefix: "{"},
		{name: "alias_flag", args: []string{"--out", "yaml"}, prefix: "authenticated:"},
		{name: "json_shorthand_wins", cfg: "table", args: []string{"--json", "-o", "yaml"}, prefix: "{"},
		{name: "table", args: []string{"-o", "table"}, prefix: "API_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.cfg != "" {
				env.writeConfig(&config.Config{Output: tt.cfg, Cache: config.CacheConfig{Disabled: true}})
			}

			out := env.mustRun(append([]string{"auth", "status"}, tt.args...)...)
			if !strings.HasPrefix(strings.TrimSpace(out), tt.prefix) {
				t.Errorf("output = %q, want prefix %q", out, tt.prefix)
			}
		})
	}
}

func TestGlobalFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid_output", []string{"-o", "xml"}, "invalid --output format"},
		{"invalid_error_format", []string{"--error-format", "xml"}, "invalid --error-format"},
		{"invalid_color", []string{"--color", "sometimes"}, "color"},
		{"query_and_jq", []string{"--query", ".", "--jq", "."}, "use only one of --query or --jq"},
		{"query_and_fields", []string{"--query", ".", "--fields", "id"}, "use only one of"},
		{"fields_and_jsonpath", []string{"--fields", "id", "--jsonpath", "$.id"}, "use only one of --fields or --jsonpath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			err := env.run(append([]string{"auth", "status"}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestQueryFlag(t *testing.T) {
	env := newTestEnv(t)
	env.mock.HandlePages("/skill", skillRows(3), 10)

	out := env.mustRun("skills", "list", "--query", ".[1].name")
	if strings.TrimSpace(out) != `"Skill 2"` {
		t.Errorf("output = %q", out)
	}

	out = env.mustRun("skills", "list", "--jsonpath", "$[2].category.name")
	if !strings.Contains(out, "Backend") {
		t.Errorf("jsonpath output = %q", out)
	}
}

func TestDebugLogsRequests(t *testing.T) {
	env := newTestEnv(t)
	env.store = auth.NewMemoryStore(&auth.Session{Token: "tok_abcdefghijklmnop"})
	env.mock.HandlePages("/skill", skillRows(1), 10)

	env.mustRun("--debug", "skills", "list")
	if !strings.Contains(env.stderr.String(), "--> GET "+env.mock.URL()+"/skill") {
		t.Errorf("expected request log on stderr, got %q", env.stderr.String())
	}
	if strings.Contains(env.stderr.String(), "abcdefghijklmnop") {
		t.Error("debug output leaked the session token")
	}
}

func TestIsConfigCommand(t *testing.T) {
	root := newTestEnv(t).app().RootCommand()

	for args, want := range map[string]bool{
		"config set":   true,
		"config path":  true,
		"skills list":  false,
		"page get":     false,
		"settings get": false,
	} {
		cmd, _, err := root.Find(strings.Fields(args))
		if err != nil {
			t.Fatalf("find %q: %v", args, err)
		}
		if got := isConfigCommand(cmd); got != want {
			t.Errorf("isConfigCommand(%q) = %v, want %v", args, got, want)
		}
	}
}

func TestCompletion(t *testing.T) {
	env := newTestEnv(t)

	for shell, want := range map[string]string{
		"bash":       "bash completion V2 for folio",
		"zsh":        "#compdef folio",
		"fish":       "fish completion for folio",
		"powershell": "powershell completion for folio",
	} {
		if out := env.mustRun("completion", shell); !strings.Contains(out, want) {
			t.Errorf("%s completion missing %q", shell, want)
		}
	}
	if err := env.run("completion", "tcsh"); err == nil {
		t.Error("expected unsupported shell to fail")
	}
}
