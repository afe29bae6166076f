package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
)

type skill struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Level    int            `json:"level"`
	Category map[string]any `json:"category,omitempty"`
}

func sampleSkills() []skill {
	return []skill{
		{ID: "1", Name: "Go", Level: 5, Category: map[string]any{"name": "Backend"}},
		{ID: "2", Name: "React", Level: 4, Category: map[string]any{"name": "Frontend"}},
	}
}

func render(t *testing.T, ctx context.Context, format Format, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewPrinter(&buf, format).Print(ctx, data); err != nil {
		t.Fatalf("Print(%s) error = %v", format, err)
	}
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"json", FormatJSON, false},
		{"jsonl", FormatNDJSON, false},
		{"ndjson", FormatNDJSON, false},
		{"table", FormatTable, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrint_NilIsNoop(t *testing.T) {
	if out := render(t, context.Background(), FormatJSON, nil); out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestPrint_JSON(t *testing.T) {
	out := render(t, context.Background(), FormatJSON, sampleSkills()[0])
	if !strings.Contains(out, "\n  \"name\": \"Go\"") {
		t.Errorf("expected indented JSON, got %s", out)
	}

	compact := render(t, WithCompactJSON(context.Background(), true), FormatJSON, sampleSkills()[0])
	if strings.Count(compact, "\n") != 1 {
		t.Errorf("compact JSON should be one line, got %q", compact)
	}
}

func TestPrint_JSONDoesNotEscapeHTML(t *testing.T) {
	out := render(t, context.Background(), FormatJSON, map[string]string{"message": "<b>hola</b> & adiós"})
	if !strings.Contains(out, "<b>hola</b> & adiós") {
		t.Errorf("HTML should be preserved, got %s", out)
	}
}

func TestPrint_NDJSON(t *testing.T) {
	out := render(t, context.Background(), FormatNDJSON, sampleSkills())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if first["name"] != "Go" {
		t.Errorf("first line = %v", first)
	}
}

func TestPrint_TextObject(t *testing.T) {
	out := render(t, context.Background(), FormatText, map[string]any{"name": "Go", "id": "1", "isActive": true})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if got := strings.Fields(lines[0]); len(got) != 2 || got[0] != "id:" || got[1] != "1" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "true") || !strings.HasPrefix(lines[1], "isActive:") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestPrint_TextList(t *testing.T) {
	out := render(t, context.Background(), FormatText, sampleSkills())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", out)
	}
	header := strings.Fields(lines[0])
	if header[0] != "ID" {
		t.Errorf("id column should lead, got %v", header)
	}
	if !strings.Contains(lines[1], `{"name":"Backend"}`) {
		t.Errorf("nested values render as compact JSON, got %q", lines[1])
	}
}

func TestPrint_TextScalars(t *testing.T) {
	out := render(t, context.Background(), FormatText, []string{"skills", "projects"})
	if out != "skills\nprojects\n" {
		t.Errorf("got %q", out)
	}
}

func TestPrint_TableValue(t *testing.T) {
	tbl := Table{Headers: []string{"name", "level"}, Rows: [][]string{{"Go", "5"}, {"React"}}}

	text := render(t, context.Background(), FormatTable, tbl)
	if !strings.HasPrefix(text, "NAME") {
		t.Errorf("header order should be kept, got %q", text)
	}

	out := render(t, context.Background(), FormatJSON, tbl)
	var recs []map[string]string
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(recs) != 2 || recs[1]["level"] != "" || recs[0]["name"] != "Go" {
		t.Errorf("records = %v", recs)
	}
}

func TestPrint_TableRejectsScalars(t *testing.T) {
	var buf bytes.Buffer
	err := NewPrinter(&buf, FormatTable).Print(context.Background(), []int{1, 2})
	if !clierrors.IsUserError(err) {
		t.Errorf("expected user error, got %v", err)
	}
}

func TestPrint_YAML(t *testing.T) {
	out := render(t, context.Background(), FormatYAML, sampleSkills()[1])
	for _, want := range []string{"name: React", "level: 4", "category:\n  name: Frontend"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
}

func TestPrint_Query(t *testing.T) {
	ctx := WithQuery(context.Background(), `.[] | select(.level > 4) | .name`)
	if out := render(t, ctx, FormatJSON, sampleSkills()); strings.TrimSpace(out) != `"Go"` {
		t.Errorf("JSON query = %q", out)
	}
	if out := render(t, ctx, FormatText, sampleSkills()); strings.TrimSpace(out) != "Go" {
		t.Errorf("text query = %q", out)
	}
}

func TestPrint_QueryEscapedBang(t *testing.T) {
	ctx := WithQuery(context.Background(), `[.[] | select(.name \!= "Go") | .name]`)
	out := render(t, WithCompactJSON(ctx, true), FormatJSON, sampleSkills())
	if strings.TrimSpace(out) != `["React"]` {
		t.Errorf("got %q", out)
	}
}

func TestPrint_InvalidQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), `.[`)
	err := NewPrinter(&buf, FormatJSON).Print(ctx, sampleSkills())
	if err == nil || !strings.Contains(err.Error(), "invalid --query") {
		t.Errorf("expected invalid query error, got %v", err)
	}
	if ValidateQuery(`.[`) == nil {
		t.Error("ValidateQuery should reject an incomplete query")
	}
	if err := ValidateQuery(`.name`); err != nil {
		t.Errorf("ValidateQuery(.name) = %v", err)
	}
}

func TestPrint_FailEmpty(t *testing.T) {
	ctx := WithFailEmpty(context.Background(), true)
	var buf bytes.Buffer

	err := NewPrinter(&buf, FormatJSON).Print(ctx, []skill{})
	if !clierrors.IsUserError(err) {
		t.Errorf("expected user error for empty list, got %v", err)
	}

	err = NewPrinter(&buf, FormatJSON).Print(ctx, map[string]any{"data": []any{}, "meta": map[string]any{"totalCount": 0}})
	if !clierrors.IsUserError(err) {
		t.Errorf("expected user error for empty envelope, got %v", err)
	}

	if err := NewPrinter(&buf, FormatJSON).Print(ctx, sampleSkills()); err != nil {
		t.Errorf("non-empty list should print, got %v", err)
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in          string
		want        string
		wantChanged bool
	}{
		{`.name`, `.name`, false},
		{`select(.a \!= 1)`, `select(.a != 1)`, true},
		{`"keep \!"`, `"keep \!"`, false},
	}
	for _, tt := range tests {
		got, changed := NormalizeQuery(tt.in)
		if got != tt.want || changed != tt.wantChanged {
			t.Errorf("NormalizeQuery(%q) = %q, %v; want %q, %v", tt.in, got, changed, tt.want, tt.wantChanged)
		}
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if FormatFromContext(ctx) != FormatText {
		t.Error("default format should be text")
	}
	if QueryFromContext(ctx) != "" || FieldsFromContext(ctx) != "" || JSONPathFromContext(ctx) != "" {
		t.Error("string flags should default empty")
	}
	if YesFromContext(ctx) || QuietFromContext(ctx) || FailEmptyFromContext(ctx) || CompactJSONFromContext(ctx) {
		t.Error("bool flags should default false")
	}

	ctx = WithYes(WithQuiet(WithFormat(ctx, FormatYAML), true), true)
	if FormatFromContext(ctx) != FormatYAML || !YesFromContext(ctx) || !QuietFromContext(ctx) {
		t.Error("values should round trip through context")
	}
}

func TestRunQuery(t *testing.T) {
	data := []map[string]any{{"name": "Go"}, {"name": "Rust"}}

	got, err := runQuery(`.[] | .name`, data)
	if err != nil || len(got) != 2 || got[1] != "Rust" {
		t.Fatalf("runQuery = %v, %v", got, err)
	}

	got, err = runQuery(`.[0].name, halt, .[1].name`, data)
	if err != nil || len(got) != 1 {
		t.Errorf("halt should end the stream quietly, got %v, %v", got, err)
	}

	if _, err := runQuery(`.[0].name | error("boom")`, data); err == nil || !strings.Contains(err.Error(), "query error") {
		t.Errorf("runtime error = %v", err)
	}

	if err := ValidateQuery(`nosuchfn(1)`); err == nil {
		t.Error("ValidateQuery should reject an undefined function")
	}
}
