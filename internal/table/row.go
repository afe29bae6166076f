package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row is one record. It must carry an "id" (string or number); every other
// field is free-form. Tables only read rows.
type Row map[string]any

// ID returns the row identifier as a string, or "" when absent.
func (r Row) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Lookup resolves a field name or a dotted path. The walk stops with
// ok=false as soon as an intermediate value is nil or not an object.
func (r Row) Lookup(path string) (any, bool) {
	if !strings.Contains(path, ".") {
		v, ok := r[path]
		return v, ok
	}

	var cur any = r
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case Row:
			cur = m[seg]
		case map[string]any:
			cur = m[seg]
		default:
			return nil, false
		}
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// RowsFrom converts typed records into rows through their JSON encoding.
func RowsFrom[T any](items []T) ([]Row, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
