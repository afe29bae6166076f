package table

// DefaultPerPage is used when a paging variant leaves PerPage unset.
const DefaultPerPage = 5

// Mode names the paging variant in effect.
type Mode int

const (
	ModeLocal Mode = iota
	ModeServer
)

func (m Mode) String() string {
	if m == ModeServer {
		return "server"
	}
	return "local"
}

// Paging is either Local or Server.
type Paging interface {
	mode() Mode
	perPage() int
}

// Local paging slices the full row collection. The current page lives in
// the Table.
type Local struct {
	PerPage int
}

// Server paging renders rows as given. The caller owns Page and Total and
// receives page requests through OnChange.
type Server struct {
	Page     int
	Total    int
	PerPage  int
	OnChange func(page int)
}

func (Local) mode() Mode  { return ModeLocal }
func (Server) mode() Mode { return ModeServer }

func (l Local) perPage() int  { return normalizePerPage(l.PerPage) }
func (s Server) perPage() int { return normalizePerPage(s.PerPage) }

func normalizePerPage(n int) int {
	if n <= 0 {
		return DefaultPerPage
	}
	return n
}

// PageCount returns ceil(total/perPage), or 0 for an empty collection.
func PageCount(total, perPage int) int {
	perPage = normalizePerPage(perPage)
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
