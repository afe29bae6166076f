package output

import "context"

// settings are the rendering choices a command inherits from global flags.
// They travel as one value; each With* helper copies and overrides a field.
type settings struct {
	format      Format
	hasFormat   bool
	query       string
	fields      string
	jsonPath    string
	yes         bool
	quiet       bool
	failEmpty   bool
	compactJSON bool
}

type settingsKey struct{}

func current(ctx context.Context) settings {
	s, _ := ctx.Value(settingsKey{}).(settings)
	return s
}

func with(ctx context.Context, set func(*settings)) context.Context {
	s := current(ctx)
	set(&s)
	return context.WithValue(ctx, settingsKey{}, s)
}

// WithFormat attaches the output format.
func WithFormat(ctx context.Context, format Format) context.Context {
	return with(ctx, func(s *settings) { s.format, s.hasFormat = format, true })
}

// FormatFromContext returns the output format, FormatText when unset.
func FormatFromContext(ctx context.Context) Format {
	if s := current(ctx); s.hasFormat {
		return s.format
	}
	return FormatText
}

// WithQuery attaches a jq filter.
func WithQuery(ctx context.Context, query string) context.Context {
	return with(ctx, func(s *settings) { s.query = query })
}

func QueryFromContext(ctx context.Context) string { return current(ctx).query }

// WithYes records --yes.
func WithYes(ctx context.Context, yes bool) context.Context {
	return with(ctx, func(s *settings) { s.yes = yes })
}

func YesFromContext(ctx context.Context) bool { return current(ctx).yes }

// WithQuiet records --quiet.
func WithQuiet(ctx context.Context, quiet bool) context.Context {
	return with(ctx, func(s *settings) { s.quiet = quiet })
}

func QuietFromContext(ctx context.Context) bool { return current(ctx).quiet }

// WithFields attaches the raw --fields value.
func WithFields(ctx context.Context, fields string) context.Context {
	return with(ctx, func(s *settings) { s.fields = fields })
}

func FieldsFromContext(ctx context.Context) string { return current(ctx).fields }

// WithJSONPath attaches a JSONPath expression.
func WithJSONPath(ctx context.Context, path string) context.Context {
	return with(ctx, func(s *settings) { s.jsonPath = path })
}

func JSONPathFromContext(ctx context.Context) string { return current(ctx).jsonPath }

// WithFailEmpty records --fail-empty.
func WithFailEmpty(ctx context.Context, fail bool) context.Context {
	return with(ctx, func(s *settings) { s.failEmpty = fail })
}

func FailEmptyFromContext(ctx context.Context) bool { return current(ctx).failEmpty }

// WithCompactJSON selects single-line JSON.
func WithCompactJSON(ctx context.Context, compact bool) context.Context {
	return with(ctx, func(s *settings) { s.compactJSON = compact })
}

func CompactJSONFromContext(ctx context.Context) bool { return current(ctx).compactJSON }
