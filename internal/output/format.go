package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable key-value format (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// maxCellWidth truncates wide values in text and table output.
const maxCellWidth = 60

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|jsonl|table|yaml)")
	}
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Print outputs data in the configured format.
func (p *Printer) Print(ctx context.Context, data any) error {
	if data == nil {
		return nil
	}

	if t, ok := data.(Table); ok && p.format != FormatText && p.format != FormatTable {
		data = t.Records()
	}

	updated, err := applyOutputTransforms(ctx, data, p.format)
	if err != nil {
		return err
	}
	data = updated
	if FailEmptyFromContext(ctx) && isEmptyResult(data) {
		return clierrors.NewUserError("no results", "Remove --fail-empty to allow empty output")
	}

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatTable:
		return p.printTable(data)
	case FormatText:
		return p.printText(ctx, data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

func (p *Printer) printYAML(data any) error {
	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(normalized)
}

// printText renders objects as "key: value" lines and lists as tables.
// A --query filter runs first and each result is rendered in turn.
func (p *Printer) printText(ctx context.Context, data any) error {
	if t, ok := data.(Table); ok {
		return p.printTableValue(t)
	}

	if query := QueryFromContext(ctx); query != "" {
		results, err := runQuery(query, data)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := p.printTextValue(r); err != nil {
				return err
			}
		}
		return nil
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}
	return p.printTextValue(normalized)
}

func (p *Printer) printTextValue(v any) error {
	switch val := v.(type) {
	case map[string]any:
		tbl := uitable.New()
		tbl.Separator = " "
		tbl.MaxColWidth = maxCellWidth
		for _, k := range sortedKeys(val) {
			tbl.AddRow(k+":", cellText(val[k]))
		}
		_, err := fmt.Fprintln(p.w, tbl)
		return err
	case []any:
		if allObjects(val) {
			return p.printTableValue(tableFromObjects(val))
		}
		for _, item := range val {
			if _, err := fmt.Fprintln(p.w, cellText(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, cellText(val))
		return err
	}
}

// printTable renders lists with a header row; single objects become a
// one-row table.
func (p *Printer) printTable(data any) error {
	if t, ok := data.(Table); ok {
		return p.printTableValue(t)
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}

	switch val := normalized.(type) {
	case []any:
		if !allObjects(val) {
			return clierrors.NewUserError("table output requires a list of objects", "Use --output json or text instead")
		}
		return p.printTableValue(tableFromObjects(val))
	case map[string]any:
		return p.printTableValue(tableFromObjects([]any{val}))
	default:
		return clierrors.NewUserError("table output requires a list of objects", "Use --output json or text instead")
	}
}

func (p *Printer) printTableValue(t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxCellWidth
	tbl.AddRow(toAny(upper(t.Headers))...)
	for _, row := range t.Rows {
		tbl.AddRow(toAny(row)...)
	}
	_, err := fmt.Fprintln(p.w, tbl)
	return err
}

// tableFromObjects unions the keys of every object. "id" leads, the rest sort.
func tableFromObjects(items []any) Table {
	seen := map[string]bool{}
	var headers []string
	for _, item := range items {
		for k := range item.(map[string]any) {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Slice(headers, func(i, j int) bool {
		if headers[i] == "id" || headers[j] == "id" {
			return headers[i] == "id"
		}
		return headers[i] < headers[j]
	})

	t := Table{Headers: headers}
	for _, item := range items {
		m := item.(map[string]any)
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cellText(m[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cellText renders scalars plainly and nested values as compact JSON.
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func allObjects(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func upper(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ToUpper(h)
	}
	return out
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
