package output

import (
	"context"
	"encoding/json"
	"io"
)

func newJSONEncoder(w io.Writer, pretty bool) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc
}

func encodeAll(enc *json.Encoder, values []any) error {
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// printJSON writes data, or each --query result, as one JSON document.
func (p *Printer) printJSON(ctx context.Context, data any) error {
	enc := newJSONEncoder(p.w, !CompactJSONFromContext(ctx))
	if query := QueryFromContext(ctx); query != "" {
		results, err := runQuery(query, data)
		if err != nil {
			return err
		}
		return encodeAll(enc, results)
	}
	return enc.Encode(data)
}

// printNDJSON writes one compact document per list item or query result.
func (p *Printer) printNDJSON(ctx context.Context, data any) error {
	enc := newJSONEncoder(p.w, false)
	if query := QueryFromContext(ctx); query != "" {
		results, err := runQuery(query, data)
		if err != nil {
			return err
		}
		return encodeAll(enc, results)
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}
	if items, ok := normalized.([]any); ok {
		return encodeAll(enc, items)
	}
	return enc.Encode(normalized)
}
