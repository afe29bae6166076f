package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/api"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/iocontext"
	"github.com/salmonumbrella/folio-cli/internal/query"
	"github.com/salmonumbrella/folio-cli/internal/resource"
	"github.com/salmonumbrella/folio-cli/internal/table"
	"github.com/salmonumbrella/folio-cli/internal/tui"
)

// runTUI is swapped in tests.
var runTUI = tui.Run

func newBrowseCmd(res *resource.Resource) *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ui"},
		Short:   fmt.Sprintf("Browse %s in an interactive table", res.Title.EN),
		Long: `Opens a full-screen table. Use the arrow keys to move between rows and
pages, v to view a row, d to delete it and / to search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, out := stdinFromContext(ctx), stdoutFromContext(ctx)
			if !iocontext.IsTerminal(in) || !iocontext.IsTerminal(out) {
				return clierrors.NewUserError(
					"browse needs an interactive terminal",
					fmt.Sprintf("Use 'folio %s list' in scripts", res.Name),
				)
			}
			svc, _ := serviceFromContext(ctx)
			return runTUI(ctx, browseConfig(ctx, res, svc), in, out)
		},
	}
}

// browseConfig wires one collection to the interactive table.
func browseConfig(ctx context.Context, res *resource.Resource, svc *query.Service) tui.Config {
	tag := LocaleFromContext(ctx)
	cfg := tui.Config{
		Title:        res.Title.For(tag),
		Columns:      res.TableColumns(tag, true),
		Paging:       res.Paging,
		PerPage:      res.PerPage,
		Searchable:   res.Searchable,
		Locale:       tag,
		SquareImages: res.SquareImages,
		Load: func(ctx context.Context, req tui.Request) (tui.Result, error) {
			p, err := svc.List(ctx, res, api.ListOptions{Page: req.Page, PerPage: req.PerPage, Search: req.Search})
			if err != nil {
				return tui.Result{}, err
			}
			total := len(p.Data)
			if p.Enveloped {
				total = p.Meta.TotalCount
			}
			return tui.Result{Rows: p.Data, Total: total}, nil
		},
	}

	if res.ReadOnly {
		return cfg
	}
	cfg.Delete = func(ctx context.Context, row table.Row) error {
		return svc.Delete(ctx, res, row.ID())
	}
	cfg.EditHint = func(row table.Row) string {
		return fmt.Sprintf("Edit with: folio %s update %s --data @record.json", res.Name, row.ID())
	}
	cfg.CreateLabel = resource.Label{EN: "New", ES: "Nuevo"}.For(tag)
	cfg.CreateHint = func() string {
		return fmt.Sprintf("Create with: folio %s create --data @record.json", res.Name)
	}
	return cfg
}
