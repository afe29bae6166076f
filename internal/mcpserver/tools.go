package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/resource"
	"github.com/salmonumbrella/folio-cli/internal/table"
	"github.com/salmonumbrella/folio-cli/internal/tableview"
	"github.com/salmonumbrella/folio-cli/internal/ui"
)

// ResourceInfo describes a collection to MCP clients.
type ResourceInfo struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	Paging     string   `json:"paging"`
	PerPage    int      `json:"perPage"`
	Searchable bool     `json:"searchable"`
	ReadOnly   bool     `json:"readOnly"`
	Columns    []string `json:"columns"`
}

// RowsResult is the structured result of list_rows.
type RowsResult struct {
	Resource string      `json:"resource"`
	Page     int         `json:"page"`
	Pages    int         `json:"pages"`
	Total    int         `json:"total"`
	Rows     []table.Row `json:"rows"`
}

func registerTools(srv *server.MCPServer, s *Server) {
	registerListResourcesTool(srv, s)
	registerListRowsTool(srv, s)
	registerGetRowTool(srv, s)
	registerDeleteRowTool(srv, s)
}

func registerListResourcesTool(srv *server.MCPServer, s *Server) {
	tool := mcp.NewTool(
		"list_resources",
		mcp.WithDescription("List the portfolio collections and their columns."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := make([]ResourceInfo, 0, len(s.Registry.Resources()))
		for _, res := range s.Registry.Resources() {
			info := ResourceInfo{
				Name:       res.Name,
				Title:      res.Title.For(s.Locale),
				Path:       res.Path,
				Paging:     res.Paging.String(),
				PerPage:    res.PerPage,
				Searchable: res.Searchable,
				ReadOnly:   res.ReadOnly,
			}
			for _, c := range res.TableColumns(s.Locale, false) {
				info.Columns = append(info.Columns, c.Key)
			}
			out = append(out, info)
		}
		return toJSONResult(map[string]any{"resources": out, "count": len(out)})
	})
}

func registerListRowsTool(srv *server.MCPServer, s *Server) {
	tool := mcp.NewTool(
		"list_rows",
		mcp.WithDescription("List one page of a collection as a text table plus the raw rows."),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Collection name or alias, e.g. skills or projects."),
		),
		mcp.WithNumber("page",
			mcp.Description("1-based page number."),
			mcp.Min(1),
		),
		mcp.WithNumber("per_page",
			mcp.Description("Rows per page for server paged collections."),
			mcp.Min(1),
		),
		mcp.WithString("search",
			mcp.Description("Search text, for searchable collections."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, errResult := s.lookup(request)
		if errResult != nil {
			return errResult, nil
		}
		pageNum := request.GetInt("page", 1)
		opts := api.ListOptions{
			Page:    pageNum,
			PerPage: request.GetInt("per_page", 0),
			Search:  request.GetString("search", ""),
		}
		if opts.Search != "" && !res.Searchable {
			return mcp.NewToolResultError(fmt.Sprintf("%s does not support search", res.Name)), nil
		}

		page, err := s.Service.List(ctx, res, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tbl, err := res.NewTable(page, pageNum, s.Locale)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var buf bytes.Buffer
		if err := tableview.New(&buf, tableview.Options{Color: ui.ColorNever}).Print(tbl.Render()); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := RowsResult{
			Resource: res.Name,
			Page:     tbl.Page(),
			Pages:    tbl.Pages(),
			Total:    tbl.Total(),
			Rows:     tbl.Window(),
		}
		if result.Rows == nil {
			result.Rows = []table.Row{}
		}
		return mcp.NewToolResultStructured(result, buf.String()), nil
	})
}

func registerGetRowTool(srv *server.MCPServer, s *Server) {
	tool := mcp.NewTool(
		"get_row",
		mcp.WithDescription("Fetch a single record by identifier."),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Collection name or alias."),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, errResult := s.lookup(request)
		if errResult != nil {
			return errResult, nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		row, err := s.Service.Get(ctx, res, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(row)
	})
}

func registerDeleteRowTool(srv *server.MCPServer, s *Server) {
	tool := mcp.NewTool(
		"delete_row",
		mcp.WithDescription("Delete a record. Read-only collections refuse."),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Collection name or alias."),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record identifier."),
		),
		mcp.WithDestructiveHintAnnotation(true),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, errResult := s.lookup(request)
		if errResult != nil {
			return errResult, nil
		}
		if res.ReadOnly {
			return mcp.NewToolResultError(fmt.Sprintf("%s is read-only", res.Name)), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := s.Service.Delete(ctx, res, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"resource": res.Name, "id": id, "deleted": true})
	})
}

func (s *Server) lookup(request mcp.CallToolRequest) (*resource.Resource, *mcp.CallToolResult) {
	name, err := request.RequireString("resource")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	res, err := s.Registry.Lookup(name)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return res, nil
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
