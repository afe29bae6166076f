// Package table renders paginated collections of loosely typed rows.
//
// A Table is built from Options (columns, rows, paging, callbacks) and
// produces a Grid: a view model holding header labels, formatted cells, a
// top bar (create button and search box) and an optional pager. Front ends
// (tableview for printed output, tui for the interactive screen) draw the
// Grid and feed user input back through Table.Dispatch.
//
// Paging is explicit. Local paging slices the full row collection and keeps
// the current page inside the Table; Server paging renders rows as given
// and reports page changes to the caller, which owns the page number and
// the total count.
//
// Rendering never fails. A dotted path through a missing object, a date
// that does not parse or an image field that is not a string all degrade to
// an empty cell.
package table
