package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/cmdutil"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/output"
	"github.com/salmonumbrella/folio-cli/internal/resource"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

func newPageCmd(registry *resource.Registry) *cobra.Command {
	names := make([]string, 0, len(registry.Pages()))
	for _, p := range registry.Pages() {
		names = append(names, p.Name)
	}

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Read and edit the singleton content pages",
		Long: fmt.Sprintf(`Each content page is one document: %s.

Pages are edited as a whole JSON or YAML object.`, strings.Join(names, ", ")),
	}
	cmd.AddCommand(newPageListCmd(registry))
	cmd.AddCommand(newPageGetCmd(registry, names))
	cmd.AddCommand(newPageUpdateCmd(registry, names))
	return cmd
}

func newPageListCmd(registry *resource.Registry) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the content pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tag := LocaleFromContext(ctx)
			t := output.Table{Headers: []string{"name", "title", "path", "writable"}}
			for _, p := range registry.Pages() {
				t.Rows = append(t.Rows, []string{p.Name, p.Title.For(tag), p.Path, fmt.Sprint(p.Write != resource.WriteNone)})
			}
			return printerForContext(ctx).Print(ctx, t)
		},
	}
}

func newPageGetCmd(registry *resource.Registry, names []string) *cobra.Command {
	return &cobra.Command{
		Use:       "get <page>",
		Short:     "Show a content page",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, err := registry.LookupPage(args[0])
			if err != nil {
				return err
			}

			client := clientFromContext(ctx)
			if page.List {
				rows, err := client.ListAll(ctx, page.Path, api.ListOptions{})
				if err != nil {
					return fmt.Errorf("failed to get %s page: %w", page.Name, err)
				}
				return printerForContext(ctx).Print(ctx, rows)
			}

			row, err := client.GetFirst(ctx, page.Path)
			if err != nil {
				return clierrors.APINotFoundError(err, page.Name, "first")
			}
			return printerForContext(ctx).Print(ctx, row)
		},
	}
}

func newPageUpdateCmd(registry *resource.Registry, names []string) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:       "update <page>",
		Aliases:   []string{"edit"},
		Short:     "Save a content page",
		Example:   `  folio page update home --data @home.yaml`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, err := registry.LookupPage(args[0])
			if err != nil {
				return err
			}
			if page.Write == resource.WriteNone {
				return clierrors.NewUserError(
					fmt.Sprintf("the %s page is read-only", page.Name),
					"Edit the records it is built from instead",
				)
			}

			body, err := cmdutil.DecodeObject(ctx, data)
			if err != nil {
				return clierrors.WrapUserError(err, "invalid page", "Pass a JSON or YAML object with --data")
			}

			client := clientFromContext(ctx)
			var row table.Row
			switch page.Write {
			case resource.WriteUpsert:
				row, err = client.Upsert(ctx, page.Path, body)
			case resource.WritePatchByID:
				row, err = patchByID(ctx, client, page, body)
			}
			if err != nil {
				return fmt.Errorf("failed to save %s page: %w", page.Name, err)
			}
			uiSuccess(ctx, "Saved %s page", page.Name)
			return printerForContext(ctx).Print(ctx, row)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "Page as JSON or YAML (inline, @file or - for stdin)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// patchByID patches the page record that GET <path>/first returns.
func patchByID(ctx context.Context, client *api.Client, page *resource.Page, body map[string]any) (table.Row, error) {
	current, err := client.GetFirst(ctx, page.Path)
	if err != nil {
		return nil, err
	}
	id := current.ID()
	if id == "" {
		return nil, fmt.Errorf("%s/first returned no id", page.Path)
	}
	return client.Update(ctx, page.Path, id, body)
}
