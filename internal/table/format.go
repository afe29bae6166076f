package table

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ExcerptLimit is the number of runes kept by long-text cells.
const ExcerptLimit = 100

// formatter carries the per-render locale settings.
type formatter struct {
	layout string
	loc    *time.Location
}

// value formats an arbitrary field value for a plain text cell.
func (f formatter) value(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return f.time(x)
	case *time.Time:
		if x == nil {
			return ""
		}
		return f.time(*x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// date formats a date-like value: time.Time, an ISO 8601 string or a
// number of Unix milliseconds. Anything else renders empty.
func (f formatter) date(v any) string {
	switch x := v.(type) {
	case time.Time:
		return f.time(x)
	case *time.Time:
		if x == nil {
			return ""
		}
		return f.time(*x)
	case string:
		t, ok := parseDate(x)
		if !ok {
			return ""
		}
		return f.time(t)
	case float64:
		return f.time(time.UnixMilli(int64(x)))
	case int64:
		return f.time(time.UnixMilli(x))
	case int:
		return f.time(time.UnixMilli(int64(x)))
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return ""
		}
		return f.time(time.UnixMilli(ms))
	default:
		return ""
	}
}

func (f formatter) time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	loc := f.loc
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(f.layout)
}

var dateParseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// truthy reports whether a flag value counts as set.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

// excerpt clamps s to ExcerptLimit runes and marks the cut with "...".
func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= ExcerptLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:ExcerptLimit]) + "..."
}
