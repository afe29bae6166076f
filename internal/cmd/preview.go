package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/validate"
)

func newPreviewCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:     "preview [path]",
		Aliases: []string{"open"},
		Short:   "Open the public portfolio site in the browser",
		Long: `Opens site_url (or FOLIO_SITE_URL) in the default browser. An optional
path is appended, e.g. "folio preview projects".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			site := strings.TrimSpace(ConfigFromContext(ctx).GetSiteURL())
			if site == "" {
				return clierrors.NewUserError("no site URL configured", "Run 'folio config set site_url https://your-site.example'")
			}
			if err := validate.URL("site_url", site); err != nil {
				return clierrors.WrapUserError(err, "invalid site URL", "Fix site_url with 'folio config set site_url <url>'")
			}

			target := site
			if len(args) == 1 {
				target = strings.TrimRight(site, "/") + "/" + strings.TrimLeft(args[0], "/")
			}

			if !printOnly {
				if err := OpenerFromContext(ctx)(target); err != nil {
					return fmt.Errorf("failed to open browser: %w", err)
				}
				uiSuccess(ctx, "Opened %s", target)
			}
			return printerForContext(ctx).Print(ctx, map[string]any{"url": target})
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the URL without opening it")
	return cmd
}
