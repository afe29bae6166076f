package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// NormalizeQuery drops the backslash of a shell-escaped "\!" outside
// string literals, which zsh and bash history expansion leave behind.
// The bool reports whether anything changed.
func NormalizeQuery(query string) (string, bool) {
	if !strings.Contains(query, `\!`) {
		return query, false
	}

	var b strings.Builder
	b.Grow(len(query))
	inString, escaped, changed := false, false, false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			b.WriteByte(ch)
			continue
		}
		if ch == '\\' && i+1 < len(query) && query[i+1] == '!' {
			changed = true
			continue
		}
		inString = ch == '"'
		b.WriteByte(ch)
	}
	if !changed {
		return query, false
	}
	return b.String(), true
}

// ValidateQuery compiles a jq expression without running it.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	_, err := compileQuery(query)
	return err
}

func compileQuery(query string) (*gojq.Code, error) {
	query, _ = NormalizeQuery(query)
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, invalidQuery(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, invalidQuery(err)
	}
	return code, nil
}

// runQuery runs query over data and collects every result. A bare halt
// ends the stream without an error.
func runQuery(query string, data any) ([]any, error) {
	code, err := compileQuery(query)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeToInterface(data)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	var results []any
	iter := code.Run(normalized)
	for v, ok := iter.Next(); ok; v, ok = iter.Next() {
		if runErr, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(runErr, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("query error: %s", queryErrorText(runErr))
		}
		results = append(results, v)
	}
	return results, nil
}

func invalidQuery(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "unexpected eof") {
		return fmt.Errorf("invalid --query: %w\nHint: query looks incomplete; quote it fully", err)
	}
	return fmt.Errorf("invalid --query: %w", err)
}

// queryErrorText recovers from gojq runtime errors whose Error method
// panics on some typed values.
func queryErrorText(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%v", r)
			// gojq panic payloads append the offending value in parentheses.
			if i := strings.Index(msg, " ("); i > 0 {
				msg = msg[:i]
			}
		}
	}()
	if msg = strings.TrimSpace(err.Error()); msg == "" {
		msg = fmt.Sprintf("%T", err)
	}
	return msg
}
