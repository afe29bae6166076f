package resource

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// NewTable renders a fetched page without the actions column. Server
// paging is used only when the API actually paged the response; otherwise
// the rows are sliced locally and page selects the slice.
func (r *Resource) NewTable(p *api.Page, page int, tag language.Tag) (*table.Table, error) {
	opts := table.Options{
		Columns:      r.TableColumns(tag, false),
		Rows:         p.Data,
		SquareImages: r.SquareImages,
		Locale:       tag,
	}

	if r.Paging == table.ModeServer && p.Enveloped {
		per := p.Meta.PerPage
		if per <= 0 {
			per = r.PerPage
		}
		opts.Paging = table.Server{Page: p.Meta.Page, Total: p.Meta.TotalCount, PerPage: per}
		return table.New(opts), nil
	}

	opts.Paging = table.Local{PerPage: r.PerPage}
	t := table.New(opts)
	if page > 1 {
		if err := t.Dispatch(table.Event{Kind: table.EventPageChange, Page: page}); err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, r.Name, err)
		}
	}
	return t, nil
}

// FullTable renders every row on a single page.
func (r *Resource) FullTable(rows []table.Row, tag language.Tag) *table.Table {
	return table.New(table.Options{
		Columns:      r.TableColumns(tag, false),
		Rows:         rows,
		Paging:       table.Local{PerPage: max(len(rows), 1)},
		SquareImages: r.SquareImages,
		Locale:       tag,
	})
}
