package table

import "fmt"

// EventKind identifies a user interaction.
type EventKind int

const (
	EventView EventKind = iota
	EventEdit
	EventDelete
	EventCreate
	EventPageChange
	EventSearch
)

func (k EventKind) String() string {
	switch k {
	case EventView:
		return "view"
	case EventEdit:
		return "edit"
	case EventDelete:
		return "delete"
	case EventCreate:
		return "create"
	case EventPageChange:
		return "page"
	case EventSearch:
		return "search"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is an interaction reported by a front end. Row indexes the visible
// window, Page is 1-based.
type Event struct {
	Kind  EventKind
	Row   int
	Page  int
	Query string
}

// Dispatch routes an event to the matching callback. Local page changes
// move the internal counter; Server page changes only notify the caller.
func (t *Table) Dispatch(ev Event) error {
	switch ev.Kind {
	case EventView, EventEdit, EventDelete:
		return t.dispatchRow(ev)
	case EventCreate:
		if t.opts.Action == nil || t.opts.Action.OnPress == nil {
			return ErrNoHandler
		}
		if t.opts.Loading {
			return ErrDisabled
		}
		t.opts.Action.OnPress()
		return nil
	case EventPageChange:
		return t.changePage(ev.Page)
	case EventSearch:
		if t.opts.Search == nil || t.opts.Search.OnChange == nil {
			return ErrNoHandler
		}
		if t.opts.Loading {
			return ErrDisabled
		}
		t.opts.Search.OnChange(ev.Query)
		return nil
	default:
		return fmt.Errorf("table: unknown event %v", ev.Kind)
	}
}

func (t *Table) dispatchRow(ev Event) error {
	var fn func(Row)
	switch ev.Kind {
	case EventView:
		fn = t.opts.OnView
	case EventEdit:
		fn = t.opts.OnEdit
	case EventDelete:
		fn = t.opts.OnDelete
	}
	if fn == nil {
		return ErrNoHandler
	}
	if t.opts.Loading {
		return ErrDisabled
	}
	window := t.Window()
	if ev.Row < 0 || ev.Row >= len(window) {
		return ErrRowOutOfRange
	}
	fn(window[ev.Row])
	return nil
}

func (t *Table) changePage(page int) error {
	server, isServer := t.paging().(Server)
	if isServer && server.OnChange == nil {
		return ErrNoHandler
	}
	if t.opts.Loading {
		return ErrDisabled
	}
	if page < 1 || page > t.Pages() {
		return ErrPageOutOfRange
	}
	if isServer {
		server.OnChange(page)
		return nil
	}
	t.page = page
	return nil
}
