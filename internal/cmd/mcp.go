package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/mcpserver"
	"github.com/salmonumbrella/folio-cli/internal/output"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the collections to MCP clients",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio",
		Long: `Runs an MCP server on stdin/stdout. Register it in an MCP client as:

  {"command": "folio", "args": ["mcp", "serve"]}

The server signs requests with the stored session, like every other command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return mcpServerFromContext(cmd).ServeStdio(ctx, stdinFromContext(ctx), stdoutFromContext(ctx))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tools := mcpServerFromContext(cmd).MCP().ListTools()
			t := output.Table{Headers: []string{"name", "description"}}
			for name, tool := range tools {
				t.Rows = append(t.Rows, []string{name, tool.Tool.Description})
			}
			sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i][0] < t.Rows[j][0] })
			return printerForContext(ctx).Print(ctx, t)
		},
	})
	return cmd
}

func mcpServerFromContext(cmd *cobra.Command) *mcpserver.Server {
	ctx := cmd.Context()
	svc, _ := serviceFromContext(ctx)
	return &mcpserver.Server{
		Registry: RegistryFromContext(ctx),
		Service:  svc,
		Locale:   LocaleFromContext(ctx),
		Version:  VersionFromContext(ctx),
	}
}
