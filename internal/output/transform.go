package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
)

const (
	fieldsExample   = "Example: --fields id,name,category=category.name"
	jsonPathExample = "Example: --jsonpath '$[0].name'"
)

// applyOutputTransforms runs --fields, then --jsonpath, over structured
// data. Text tables cannot be reshaped.
func applyOutputTransforms(ctx context.Context, data any, format Format) (any, error) {
	fields := strings.TrimSpace(FieldsFromContext(ctx))
	path := strings.TrimSpace(JSONPathFromContext(ctx))
	if fields == "" && path == "" {
		return data, nil
	}
	if _, isTable := data.(Table); isTable {
		return nil, clierrors.NewUserError(
			fmt.Sprintf("--fields/--jsonpath are not supported with %s output", format),
			"Use --output json|ndjson|yaml instead",
		)
	}

	value, err := normalizeToInterface(data)
	if err != nil {
		return nil, err
	}
	if fields != "" {
		specs, err := parseProjections(fields)
		if err != nil {
			return nil, clierrors.WrapUserError(err, "invalid --fields value", fieldsExample)
		}
		value = project(value, specs)
	}
	if path != "" {
		return applyJSONPath(value, path)
	}
	return value, nil
}

// normalizeToInterface reduces data to what encoding/json decodes into:
// maps, slices and scalars.
func normalizeToInterface(data any) (any, error) {
	switch data.(type) {
	case map[string]any, []any:
		return data, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return v, nil
}

func applyJSONPath(data any, raw string) (any, error) {
	expr := normalizeJSONPath(raw)
	if expr == "" {
		return nil, clierrors.NewUserError("invalid --jsonpath value", jsonPathExample)
	}
	value, err := jsonpath.Get(expr, data)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --jsonpath value", jsonPathExample)
	}
	return value, nil
}

// normalizeJSONPath roots a bare path at "$".
func normalizeJSONPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" || p[0] == '$' || p[0] == '@' {
		return p
	}
	if p[0] == '.' || p[0] == '[' {
		return "$" + p
	}
	return "$." + p
}

// isEmptyResult backs --fail-empty: nil, an empty list, an empty object,
// an object whose "data" list is empty, or a table without rows.
func isEmptyResult(data any) bool {
	if t, ok := data.(Table); ok {
		return len(t.Rows) == 0
	}
	v, err := normalizeToInterface(data)
	if err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case map[string]any:
		if rows, ok := v["data"].([]any); ok {
			return len(rows) == 0
		}
		return len(v) == 0
	}
	return false
}
