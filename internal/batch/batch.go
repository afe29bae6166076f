// Package batch reads record lists for bulk imports and reports the
// outcome of each item.
package batch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MaxInputSize is the largest import accepted (10MB).
	MaxInputSize = 10 * 1024 * 1024
	// MaxItemCount bounds the records of one import.
	MaxItemCount = 1000
)

// Result is the outcome of importing one record.
type Result struct {
	Index   int            `json:"index"`
	Success bool           `json:"success"`
	ID      string         `json:"id,omitempty"`
	Error   string         `json:"error,omitempty"`
	Input   map[string]any `json:"input,omitempty"`
}

// Summary counts the results of an import. Items after a stopping
// failure are Skipped.
type Summary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Results   []Result `json:"results"`
}

// Summarize tallies the results of an import of total items.
func Summarize(total int, results []Result) Summary {
	s := Summary{Total: total, Results: results}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	s.Skipped = max(total-len(results), 0)
	return s
}

// ReadItems parses a JSON array, NDJSON (one object per line) or a YAML
// sequence of objects.
func ReadItems(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("cannot read input: %w", err)
	}
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("input exceeds maximum size of %d bytes", MaxInputSize)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	var items []map[string]any
	switch {
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
	case trimmed[0] == '{':
		if items, err = readNDJSON(trimmed); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("input must be a JSON array, NDJSON or a YAML list of objects: %w", err)
		}
	}

	if len(items) > MaxItemCount {
		return nil, fmt.Errorf("input exceeds maximum item count of %d", MaxItemCount)
	}
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("item %d is not an object", i+1)
		}
	}
	return items, nil
}

func readNDJSON(data []byte) ([]map[string]any, error) {
	var items []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var item map[string]any
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", line, err)
		}
		items = append(items, item)
		if len(items) > MaxItemCount {
			return nil, fmt.Errorf("input exceeds maximum item count of %d", MaxItemCount)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return items, nil
}
