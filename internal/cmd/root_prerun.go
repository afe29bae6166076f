package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	"github.com/salmonumbrella/folio-cli/internal/config"
	"github.com/salmonumbrella/folio-cli/internal/debug"
	"github.com/salmonumbrella/folio-cli/internal/iocontext"
	"github.com/salmonumbrella/folio-cli/internal/output"
	"github.com/salmonumbrella/folio-cli/internal/resource"
	"github.com/salmonumbrella/folio-cli/internal/table"
	"github.com/salmonumbrella/folio-cli/internal/ui"
)

type globalFlagInput struct {
	debug       bool
	query       string
	jq          string
	fields      string
	jsonPath    string
	errorFormat string
	quiet       bool
	failEmpty   bool
	compactJSON bool
	yes         bool
	color       string
	locale      string
	noCache     bool
}

type globalOptions struct {
	format          output.Format
	query           string
	queryNormalized bool
	fieldsRaw       string
	jsonPathRaw     string
	quiet           bool
	failEmpty       bool
	compactJSON     bool
	yes             bool
	errorFormat     string
	color           ui.ColorMode
	locale          language.Tag
	noCache         bool

	queryFlagSet bool
	jqFlagSet    bool
}

func parseGlobalOptions(cmd *cobra.Command, cfg *config.Config, stdout io.Writer, flags globalFlagInput) (globalOptions, error) {
	opts := globalOptions{
		quiet:       flags.quiet,
		failEmpty:   flags.failEmpty,
		compactJSON: flags.compactJSON,
		yes:         flags.yes,
		errorFormat: flags.errorFormat,
		noCache:     flags.noCache,

		queryFlagSet: strings.TrimSpace(flags.query) != "",
		jqFlagSet:    strings.TrimSpace(flags.jq) != "",
	}

	outputFlagSet := commandFlagChanged(cmd, "output")
	formatStr, _ := cmd.Flags().GetString("output")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	switch {
	case jsonFlag:
		formatStr = string(output.FormatJSON)
	case outputFlagSet:
	case cfg.GetOutput() != "":
		formatStr = cfg.GetOutput()
	case !iocontext.IsTerminal(stdout):
		formatStr = string(output.FormatJSON)
	}

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return globalOptions{}, err
	}
	opts.format = format

	if !cmd.Flags().Changed("quiet") && !iocontext.IsTerminal(stdout) {
		switch opts.format {
		case output.FormatJSON, output.FormatNDJSON, output.FormatYAML:
			opts.quiet = true
		}
	}

	colorStr := flags.color
	if colorStr == "" {
		colorStr = cfg.GetColor()
	}
	opts.color, err = ui.ParseColorMode(colorStr)
	if err != nil {
		return globalOptions{}, err
	}

	localeStr := flags.locale
	if localeStr == "" {
		localeStr = cfg.GetLocale()
	}
	opts.locale = table.ParseLocale(localeStr)

	opts.query = flags.query
	if opts.query == "" {
		opts.query = flags.jq
	}
	opts.query, opts.queryNormalized = output.NormalizeQuery(opts.query)

	opts.fieldsRaw = strings.TrimSpace(flags.fields)
	opts.jsonPathRaw = strings.TrimSpace(flags.jsonPath)
	return opts, nil
}

func validateGlobalOptions(opts *globalOptions) error {
	if opts.jqFlagSet && opts.queryFlagSet {
		return errOnlyOne("--query", "--jq")
	}
	if opts.fieldsRaw != "" {
		if err := output.ValidateFields(opts.fieldsRaw); err != nil {
			return err
		}
	}
	if opts.query != "" && (opts.fieldsRaw != "" || opts.jsonPathRaw != "") {
		return errOnlyOne("--query/--jq", "--fields or --jsonpath")
	}
	if opts.fieldsRaw != "" && opts.jsonPathRaw != "" {
		return errOnlyOne("--fields", "--jsonpath")
	}
	return validateErrorFormat(opts.errorFormat)
}

func buildRootContext(ctx context.Context, app *App, cfg *config.Config, registry *resource.Registry, debugMode bool, opts globalOptions) context.Context {
	ctx = iocontext.WithIO(ctx, app.Stdout, app.Stderr)
	if app.Stdin != nil {
		ctx = iocontext.WithStdin(ctx, app.Stdin)
	}
	ctx = output.WithFormat(ctx, opts.format)
	ctx = output.WithQuery(ctx, opts.query)
	ctx = debug.WithDebug(ctx, debugMode)
	ctx = WithConfig(ctx, cfg)
	ctx = WithRegistry(ctx, registry)
	ctx = WithLocale(ctx, opts.locale)
	ctx = WithNoCache(ctx, opts.noCache)
	ctx = WithVersion(ctx, app.Build.Version)
	ctx = WithOpener(ctx, app.OpenURL)
	ctx = auth.WithStore(ctx, app.Store)

	ctx = output.WithYes(ctx, opts.yes)
	ctx = output.WithQuiet(ctx, opts.quiet)
	ctx = output.WithFields(ctx, opts.fieldsRaw)
	ctx = output.WithJSONPath(ctx, opts.jsonPathRaw)
	ctx = output.WithFailEmpty(ctx, opts.failEmpty)
	ctx = output.WithCompactJSON(ctx, opts.compactJSON)
	ctx = WithErrorFormat(ctx, opts.errorFormat)
	ctx = ui.WithUI(ctx, ui.NewForWriter(app.Stderr, opts.color))
	return ctx
}

func errOnlyOne(left, right string) error {
	return fmt.Errorf("use only one of %s or %s", left, right)
}

func commandFlagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}

	for current := cmd; current != nil; current = current.Parent() {
		if flagChanged(current.Flags(), name) || flagChanged(current.PersistentFlags(), name) {
			return true
		}
	}
	return false
}
