package output

import (
	"fmt"
	"strconv"
	"strings"
)

// projection is one --fields entry: the output key and the path to read.
// Path segments are string keys or int indexes.
type projection struct {
	as   string
	path []any
}

// ValidateFields reports a syntax error in a --fields value.
func ValidateFields(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	_, err := parseProjections(raw)
	return err
}

// parseProjections reads "path" or "name=path" entries separated by commas.
// Paths are dotted with optional [n] or ["key"] segments; a numeric dotted
// segment is an index, so images.1 equals images[1].
func parseProjections(raw string) ([]projection, error) {
	var out []projection
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		as, path := entry, entry
		if k, p, found := strings.Cut(entry, "="); found {
			as, path = strings.TrimSpace(k), strings.TrimSpace(p)
		}
		if as == "" || path == "" {
			return nil, fmt.Errorf("invalid field spec %q", entry)
		}
		segs, err := splitPath(path)
		if err != nil {
			return nil, fmt.Errorf("invalid field path %q: %w", path, err)
		}
		out = append(out, projection{as: as, path: segs})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no fields provided")
	}
	return out, nil
}

func splitPath(path string) ([]any, error) {
	var segs []any
	rest := path
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
		case '[':
			inner, after, found := strings.Cut(rest[1:], "]")
			if !found {
				return nil, fmt.Errorf("missing closing ]")
			}
			seg, err := bracketSegment(strings.TrimSpace(inner))
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			rest = after
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := strings.TrimSpace(rest[:end])
			if name == "" {
				return nil, fmt.Errorf("empty segment")
			}
			if n, err := strconv.Atoi(name); err == nil {
				segs = append(segs, n)
			} else {
				segs = append(segs, name)
			}
			rest = rest[end:]
		}
	}
	return segs, nil
}

func bracketSegment(inner string) (any, error) {
	if inner == "" {
		return nil, fmt.Errorf("empty bracket")
	}
	if q := inner[0]; q == '"' || q == '\'' {
		if len(inner) < 2 || inner[len(inner)-1] != q {
			return nil, fmt.Errorf("unterminated quoted segment")
		}
		return inner[1 : len(inner)-1], nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return nil, fmt.Errorf("invalid index %q", inner)
	}
	return n, nil
}

// resolve walks path through decoded JSON. Missing keys, out of range
// indexes and type mismatches yield nil.
func resolve(v any, path []any) any {
	for _, seg := range path {
		switch s := seg.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[s]
		case int:
			list, ok := v.([]any)
			if !ok || s < 0 || s >= len(list) {
				return nil
			}
			v = list[s]
		}
	}
	return v
}

func (p projection) apply(item any, into map[string]any) {
	into[p.as] = resolve(item, p.path)
}

// project keeps the selected fields of one object, or of each element when
// data is a list.
func project(data any, specs []projection) any {
	pick := func(item any) map[string]any {
		out := make(map[string]any, len(specs))
		for _, p := range specs {
			p.apply(item, out)
		}
		return out
	}
	list, ok := data.([]any)
	if !ok {
		return pick(data)
	}
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = pick(item)
	}
	return out
}
