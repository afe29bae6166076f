package cmd

import (
	"testing"
)

func TestMCPTools(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("mcp", "tools")

	var tools []map[string]string
	env.decode(&tools)
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool["name"]
		if tool["description"] == "" {
			t.Errorf("tool %q has no description", tool["name"])
		}
	}
	want := []string{"delete_row", "get_row", "list_resources", "list_rows"}
	if len(names) != len(want) {
		t.Fatalf("tools = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tools = %v, want %v", names, want)
			break
		}
	}
}
