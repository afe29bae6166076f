// Package cmdutil resolves record payloads and confirmations for commands.
package cmdutil

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/folio-cli/internal/iocontext"
)

var errNotObject = errors.New("expected an object")

// DecodeObject resolves a --data value into a record body. The value is
// inline text, @path or - for stdin; the text is JSON or YAML.
func DecodeObject(ctx context.Context, raw string) (map[string]any, error) {
	text, err := resolveSource(ctx, raw)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("--data: cannot be empty")
	}

	obj, jsonErr := decodeJSONObject(text)
	if jsonErr == nil {
		return obj, nil
	}
	var doc any
	if yaml.Unmarshal([]byte(text), &doc) == nil {
		if m, ok := doc.(map[string]any); ok {
			return m, nil
		}
	}
	return nil, fmt.Errorf("--data: must be a JSON or YAML object: %w", jsonErr)
}

func resolveSource(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		data, err := io.ReadAll(iocontext.StdinOrDefault(ctx, os.Stdin))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		if path == "" {
			return "", errors.New("--data: @ needs a file path")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %q: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return raw, nil
}

// decodeJSONObject also accepts an object serialized twice, which shells
// and agent tools produce when they quote JSON as a string.
func decodeJSONObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
			return nil, errNotObject
		}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

var yesAnswers = []string{"y", "yes", "s", "si", "sí"}

// Confirm writes prompt to stderr and reads the answer from stdin. Only
// an affirmative answer in English or Spanish confirms; EOF declines.
func Confirm(ctx context.Context, prompt string) bool {
	_, _ = fmt.Fprintf(iocontext.StderrOrDefault(ctx, os.Stderr), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(iocontext.StdinOrDefault(ctx, os.Stdin)).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return slices.Contains(yesAnswers, strings.ToLower(strings.TrimSpace(line)))
}
