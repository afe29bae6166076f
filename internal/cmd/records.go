package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/batch"
	"github.com/salmonumbrella/folio-cli/internal/cmdutil"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/output"
	"github.com/salmonumbrella/folio-cli/internal/resource"
	"github.com/salmonumbrella/folio-cli/internal/table"
	"github.com/salmonumbrella/folio-cli/internal/tableview"
	"github.com/salmonumbrella/folio-cli/internal/ui"
	"github.com/salmonumbrella/folio-cli/internal/validate"
)

// newResourceCmd builds the command tree of one collection. Read-only
// collections get no create, update or delete.
func newResourceCmd(res *resource.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:     res.Name,
		Aliases: res.Aliases,
		Short:   fmt.Sprintf("Manage %s", res.Title.EN),
		Long: fmt.Sprintf(`List, read and edit %s records (API path %s).

Records are JSON objects. create and update take --data as inline JSON or
YAML, @file, or - for stdin.`, res.Title.EN, res.Path),
	}

	cmd.AddCommand(newRecordListCmd(res))
	cmd.AddCommand(newRecordGetCmd(res))
	cmd.AddCommand(newBrowseCmd(res))
	if !res.ReadOnly {
		cmd.AddCommand(newRecordCreateCmd(res))
		cmd.AddCommand(newRecordUpdateCmd(res))
		cmd.AddCommand(newRecordDeleteCmd(res))
		cmd.AddCommand(newRecordImportCmd(res))
	}
	return cmd
}

func newRecordListCmd(res *resource.Resource) *cobra.Command {
	var (
		page    int
		perPage int
		search  string
		all     bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %s", res.Title.EN),
		Example: fmt.Sprintf(`  folio %[1]s list
  folio %[1]s list --page 2
  folio %[1]s list --all -o json`, res.Name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := validate.Page(page); err != nil {
				return clierrors.WrapUserError(err, "invalid --page", "Pages start at 1")
			}
			if flagChanged(cmd.Flags(), "per-page") {
				if err := validate.PerPage(perPage); err != nil {
					return clierrors.WrapUserError(err, "invalid --per-page", "Use a value between 1 and 100")
				}
			}
			if search != "" && !res.Searchable {
				return clierrors.NewUserError(
					fmt.Sprintf("%s does not support search", res.Name),
					fmt.Sprintf("Run 'folio %s list' without --search", res.Name),
				)
			}
			if all && cmd.Flags().Changed("page") {
				return errOnlyOne("--all", "--page")
			}

			svc, _ := serviceFromContext(ctx)
			opts := api.ListOptions{Page: page, PerPage: perPage, Search: search}
			tag := LocaleFromContext(ctx)

			if all {
				rows, err := svc.All(ctx, res, opts)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", res.Name, err)
				}
				return printRows(ctx, res.FullTable(rows, tag))
			}

			p, err := svc.List(ctx, res, opts)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", res.Name, err)
			}
			tbl, err := res.NewTable(p, page, tag)
			if err != nil {
				return clierrors.WrapUserError(err, "page out of range", fmt.Sprintf("Run 'folio %s list' to see how many pages there are", res.Name))
			}
			return printRows(ctx, tbl)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Rows per page (default from config or the collection)")
	if res.Searchable {
		cmd.Flags().StringVar(&search, "search", "", "Only rows matching this text")
	}
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	flagAlias(cmd.Flags(), "per-page", "limit")
	return cmd
}

// printRows writes the rendered grid for text and table output, and the raw
// rows of the current page for everything else or when a filter flag is set.
func printRows(ctx context.Context, tbl *table.Table) error {
	rows := tbl.Window()
	if rows == nil {
		rows = []table.Row{}
	}
	format := output.FormatFromContext(ctx)
	filtered := output.QueryFromContext(ctx) != "" || output.FieldsFromContext(ctx) != "" || output.JSONPathFromContext(ctx) != ""

	switch {
	case filtered || (format != output.FormatText && format != output.FormatTable):
		return printerForContext(ctx).Print(ctx, rows)
	case output.FailEmptyFromContext(ctx) && len(rows) == 0:
		return clierrors.NewUserError("no results", "Remove --fail-empty to allow empty output")
	case format == output.FormatTable:
		return printerForContext(ctx).Print(ctx, gridTable(tbl.Render()))
	}

	p := tableview.New(stdoutFromContext(ctx), tableview.Options{
		Color:   ui.FromContext(ctx).Mode(),
		ShowIDs: true,
	})
	return p.Print(tbl.Render())
}

// gridTable flattens a grid into plain cells, with the row id first.
func gridTable(g table.Grid) output.Table {
	t := output.Table{Headers: make([]string, 0, len(g.Headers)+1)}
	t.Headers = append(t.Headers, "ID")
	for _, h := range g.Headers {
		t.Headers = append(t.Headers, h.Label)
	}
	for _, r := range g.Rows {
		cells := make([]string, 0, len(r.Cells)+1)
		cells = append(cells, r.ID)
		for _, c := range r.Cells {
			cells = append(cells, c.Text)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func newRecordGetCmd(res *resource.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s record", res.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _ := serviceFromContext(ctx)
			row, err := svc.Get(ctx, res, args[0])
			if err != nil {
				return clierrors.APINotFoundError(err, res.Name, args[0])
			}
			return printerForContext(ctx).Print(ctx, row)
		},
	}
}

func newRecordCreateCmd(res *resource.Resource) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s record", res.Name),
		Example: fmt.Sprintf(`  folio %[1]s create --data '{"name": "Go"}'
  folio %[1]s create --data @record.yaml`, res.Name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			body, err := cmdutil.DecodeObject(ctx, data)
			if err != nil {
				return clierrors.WrapUserError(err, "invalid record", "Pass a JSON or YAML object with --data")
			}

			svc, _ := serviceFromContext(ctx)
			row, err := svc.Create(ctx, res, body)
			if err != nil {
				return fmt.Errorf("failed to create %s record: %w", res.Name, err)
			}
			uiSuccess(ctx, "Created %s record %s", res.Name, row.ID())
			return printerForContext(ctx).Print(ctx, row)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "Record as JSON or YAML (inline, @file or - for stdin)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newRecordUpdateCmd(res *resource.Resource) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit"},
		Short:   fmt.Sprintf("Update a %s record", res.Name),
		Long:    "Sends the given fields as a partial update; omitted fields are left unchanged.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			body, err := cmdutil.DecodeObject(ctx, data)
			if err != nil {
				return clierrors.WrapUserError(err, "invalid record", "Pass a JSON or YAML object with --data")
			}

			svc, _ := serviceFromContext(ctx)
			row, err := svc.Update(ctx, res, args[0], body)
			if err != nil {
				return clierrors.APINotFoundError(err, res.Name, args[0])
			}
			uiSuccess(ctx, "Updated %s record %s", res.Name, args[0])
			return printerForContext(ctx).Print(ctx, row)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "Fields to change as JSON or YAML (inline, @file or - for stdin)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newRecordDeleteCmd(res *resource.Resource) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s record", res.Name),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if !output.YesFromContext(ctx) && !cmdutil.Confirm(ctx, fmt.Sprintf("Delete %s record %s?", res.Name, id)) {
				return clierrors.NewUserError("delete canceled", "Pass --yes to delete without a prompt")
			}

			svc, _ := serviceFromContext(ctx)
			if err := svc.Delete(ctx, res, id); err != nil {
				return clierrors.APINotFoundError(err, res.Name, id)
			}
			uiSuccess(ctx, "Deleted %s record %s", res.Name, id)
			return printerForContext(ctx).Print(ctx, map[string]any{
				"status":   "deleted",
				"resource": res.Name,
				"id":       id,
			})
		},
	}
}

func newRecordImportCmd(res *resource.Resource) *cobra.Command {
	var (
		file            string
		continueOnError bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: fmt.Sprintf("Create %s records from a file", res.Name),
		Long: `Creates one record per item, in order. The file is a JSON array,
NDJSON (one object per line) or a YAML list.

The import stops at the first failure unless --continue-on-error is set.`,
		Example: fmt.Sprintf(`  folio %[1]s import --file %[1]s.ndjson
  cat %[1]s.yaml | folio %[1]s import --file - --continue-on-error`, res.Name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var in io.Reader
			if file == "-" {
				in = stdinFromContext(ctx)
			} else {
				f, err := os.Open(file)
				if err != nil {
					return clierrors.WrapUserError(err, "cannot open import file", "")
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			items, err := batch.ReadItems(in)
			if err != nil {
				return clierrors.WrapUserError(err, "invalid import file", "Pass a JSON array, NDJSON or a YAML list of objects")
			}

			svc, _ := serviceFromContext(ctx)
			results := make([]batch.Result, 0, len(items))
			for i, item := range items {
				row, err := svc.Create(ctx, res, item)
				if err != nil {
					results = append(results, batch.Result{Index: i, Error: err.Error(), Input: item})
					if !continueOnError {
						break
					}
					continue
				}
				results = append(results, batch.Result{Index: i, Success: true, ID: row.ID()})
			}

			summary := batch.Summarize(len(items), results)
			uiSuccess(ctx, "Imported %d of %d %s records", summary.Succeeded, summary.Total, res.Name)
			if err := printerForContext(ctx).Print(ctx, summary); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return clierrors.NewUserError(
					fmt.Sprintf("%d of %d records failed to import", summary.Failed, summary.Total),
					"See the results for the error of each item",
				)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Records file (- for stdin)")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep going after a failed record")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
