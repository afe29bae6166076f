package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/config"
	"github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/logging"
	"github.com/salmonumbrella/folio-cli/internal/resource"
)

func newRootCmd(app *App) *cobra.Command {
	// Global flags
	var flags globalFlagInput

	// Resource commands are built from the registry up front; config
	// overrides are applied to the same resources in the pre-run.
	registry := resource.NewRegistry()

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Manage a portfolio CMS from the terminal",
		Long: `folio manages the content of a portfolio website through its REST API.

Collections (skills, projects, work experiences, contact forms) are listed
as paginated tables, browsed interactively or edited as JSON.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Errors are printed once, by App.Execute.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			logging.Configure(logging.FromEnv(flags.debug, app.Stderr))

			// Load config file (skip for config commands so a broken file can be repaired)
			cfg := &config.Config{}
			if !isConfigCommand(cmd) {
				loaded, err := config.Load()
				if err != nil {
					return errors.WrapUserError(err, "failed to load config", "Run 'folio config path' and fix or remove the file")
				}
				cfg = loaded
			}
			if err := registry.Apply(cfg); err != nil {
				return errors.WrapUserError(err, "invalid resource settings in config", "Check the resources section of your config file")
			}

			opts, err := parseGlobalOptions(cmd, cfg, app.Stdout, flags)
			if err != nil {
				return err
			}
			if err := validateGlobalOptions(&opts); err != nil {
				return err
			}

			ctx := buildRootContext(cmd.Context(), app, cfg, registry, flags.debug, opts)
			if opts.queryNormalized && !opts.quiet {
				uiWarning(ctx, "Normalized --query by removing \\! (shell escape); use ! without backslash.")
			}
			cmd.SetContext(ctx)
			app.runCtx = ctx
			return nil
		},
	}

	// Flag parse errors happen before the pre-run.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.Version = app.Build.Version
	rootCmd.SetVersionTemplate(app.Build.String() + "\n")

	pf := rootCmd.PersistentFlags()
	pf.StringP("output", "o", "text", "Output format: text|json|ndjson|jsonl|table|yaml")
	// Shorthand: --json is equivalent to -o json
	pf.BoolP("json", "j", false, "Shorthand for --output json")
	_ = pf.MarkHidden("json")
	pf.StringVarP(&flags.query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.jq, "jq", "", "Alias for --query")
	_ = pf.MarkHidden("jq")
	pf.StringVar(&flags.fields, "fields", "", "Project fields (comma-separated paths, use key=path to rename)")
	pf.StringVar(&flags.jsonPath, "jsonpath", "", "Extract a value using JSONPath (e.g. $[0].id)")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug output (shows HTTP requests/responses)")
	pf.StringVar(&flags.errorFormat, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	pf.BoolVar(&flags.quiet, "quiet", false, "Suppress non-essential output")
	pf.BoolVar(&flags.failEmpty, "fail-empty", false, "Exit with error when results are empty")
	pf.BoolVar(&flags.compactJSON, "compact-json", false, "Output compact JSON (single-line) instead of pretty JSON")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "Skip confirmation prompts")
	pf.StringVar(&flags.color, "color", "", "Color mode: auto|always|never (default from config, else auto)")
	pf.StringVar(&flags.locale, "locale", "", "Locale for labels and dates: en|es (default from config or LANG)")
	pf.BoolVar(&flags.noCache, "no-cache", false, "Bypass the list cache")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "qr")
	flagAlias(pf, "fields", "fds")
	flagAlias(pf, "fail-empty", "fe")
	flagAlias(pf, "compact-json", "cj")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupContent, Title: "Content commands:"},
		&cobra.Group{ID: groupAccount, Title: "Account and tooling:"},
	)

	for _, res := range registry.Resources() {
		rc := newResourceCmd(res)
		rc.GroupID = groupContent
		rootCmd.AddCommand(rc)
	}
	for _, c := range []*cobra.Command{newPageCmd(registry), newStatsCmd(), newCommitsCmd(), newPreviewCmd()} {
		c.GroupID = groupContent
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newAuthCmd(),
		newSettingsCmd(),
		newConfigCmd(),
		newCacheCmd(),
		newMCPCmd(),
		newCompletionCmd(),
	} {
		c.GroupID = groupAccount
		rootCmd.AddCommand(c)
	}
	rootCmd.SetHelpCommandGroupID(groupAccount)
	rootCmd.SetCompletionCommandGroupID(groupAccount)

	return rootCmd
}

const (
	groupContent = "content"
	groupAccount = "account"
)

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.Parent() != nil && c.Parent().Parent() == nil {
			return true
		}
	}
	return false
}
