package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/resource"
)

// dashboardResources are the counters shown on the admin dashboard.
var dashboardResources = []string{"contact-forms", "skills", "projects"}

type resourceTotal struct {
	Resource string `json:"resource"`
	Title    string `json:"title"`
	Total    int    `json:"total"`
}

func newStatsCmd() *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"dashboard"},
		Short:   "Show record totals",
		Example: `  folio stats
  folio stats --resource skills --resource work-experiences`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			registry := RegistryFromContext(ctx)
			if len(names) == 0 {
				names = dashboardResources
			}

			resources := make([]*resource.Resource, len(names))
			for i, name := range names {
				res, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				resources[i] = res
			}

			svc, _ := serviceFromContext(ctx)
			tag := LocaleFromContext(ctx)
			totals := make([]resourceTotal, len(resources))
			g, gctx := errgroup.WithContext(ctx)
			for i, res := range resources {
				g.Go(func() error {
					p, err := svc.List(gctx, res, api.ListOptions{PerPage: 1})
					if err != nil {
						return fmt.Errorf("failed to count %s: %w", res.Name, err)
					}
					n := len(p.Data)
					if p.Enveloped {
						n = p.Meta.TotalCount
					}
					totals[i] = resourceTotal{Resource: res.Name, Title: res.Title.For(tag), Total: n}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return printerForContext(ctx).Print(ctx, totals)
		},
	}
	cmd.Flags().StringArrayVarP(&names, "resource", "r", nil, "Collection to count (repeatable)")
	return cmd
}
