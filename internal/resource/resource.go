// Package resource declares the collections and pages the admin panel
// manages, and how each one is listed.
package resource

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/config"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// WriteMode is how a singleton page is saved.
type WriteMode int

const (
	// WriteNone marks a read-only page.
	WriteNone WriteMode = iota
	// WriteUpsert posts the whole page to <path>/upsert.
	WriteUpsert
	// WritePatchByID patches <path>/<id> using the id of the current page.
	WritePatchByID
)

// Label is a column heading per base language.
type Label struct {
	EN string
	ES string
}

// For returns the heading for tag, falling back to English.
func (l Label) For(tag language.Tag) string {
	if base, _ := tag.Base(); base.String() == "es" && l.ES != "" {
		return l.ES
	}
	return l.EN
}

// ColumnDef is a column with localized headings.
type ColumnDef struct {
	Key   string
	Label Label
	Kind  table.Kind
	Flag  table.FlagStyle
}

// Resource is a collection listed through the table renderer.
type Resource struct {
	Name    string
	Aliases []string
	Title   Label
	// Path is the API collection path, e.g. "/skill".
	Path string
	// Paging is ModeServer when the API pages the collection.
	Paging  table.Mode
	PerPage int
	// Searchable collections send ?search= to the API.
	Searchable bool
	// ReadOnly collections only offer the view action.
	ReadOnly     bool
	SquareImages bool
	Columns      []ColumnDef
	// Overrides from the config file replace Columns when set.
	override []table.Column
}

// Page is a singleton content page edited as one document.
type Page struct {
	Name  string
	Title Label
	Path  string
	Write WriteMode
	// List reads the page from GET <path> (an array) instead of <path>/first.
	List bool
}

// TableColumns returns the columns for tag. The actions column is dropped
// when withActions is false.
func (r *Resource) TableColumns(tag language.Tag, withActions bool) []table.Column {
	if r.override != nil {
		out := make([]table.Column, 0, len(r.override))
		for _, c := range r.override {
			if c.Key == table.ActionsKey && !withActions {
				continue
			}
			out = append(out, c)
		}
		return out
	}

	out := make([]table.Column, 0, len(r.Columns))
	for _, d := range r.Columns {
		if d.Key == table.ActionsKey && !withActions {
			continue
		}
		out = append(out, table.Column{Key: d.Key, Label: d.Label.For(tag), Kind: d.Kind, Flag: d.Flag})
	}
	return out
}

// Matches reports whether name is the resource name or one of its aliases.
func (r *Resource) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == r.Name {
		return true
	}
	for _, a := range r.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

var actions = ColumnDef{Key: table.ActionsKey, Label: Label{"ACTIONS", "ACCIONES"}, Kind: table.KindActions}

// Defaults returns the built-in collections in menu order.
func Defaults() []*Resource {
	return []*Resource{
		{
			Name:    "skills",
			Aliases: []string{"skill"},
			Title:   Label{"Skills", "Habilidades"},
			Path:    "/skill",
			Paging:  table.ModeServer,
			PerPage: 10,
			Columns: []ColumnDef{
				{Key: "name", Label: Label{"NAME", "NOMBRE"}},
				{Key: "category.name", Label: Label{"CATEGORY", "CATEGORÍA"}},
				{Key: "icon", Label: Label{"ICON", "ÍCONO"}},
				actions,
			},
		},
		{
			Name:    "skill-categories",
			Aliases: []string{"skill-category", "categories"},
			Title:   Label{"Skill categories", "Categorías de habilidades"},
			Path:    "/skill-category",
			Paging:  table.ModeServer,
			PerPage: 10,
			Columns: []ColumnDef{
				{Key: "name", Label: Label{"NAME", "NOMBRE"}},
				{Key: "description", Label: Label{"DESCRIPTION", "DESCRIPCIÓN"}},
				actions,
			},
		},
		{
			Name:    "work-experiences",
			Aliases: []string{"work-experience", "experience"},
			Title:   Label{"Work experience", "Experiencia laboral"},
			Path:    "/work-experiences",
			Paging:  table.ModeLocal,
			PerPage: 5,
			Columns: []ColumnDef{
				{Key: "title", Label: Label{"TITLE", "TITULO"}},
				{Key: "dateRange", Label: Label{"DATE RANGE", "RANGO DE FECHAS"}},
				{Key: "description", Label: Label{"DESCRIPTION", "DESCRIPCIÓN"}},
				actions,
			},
		},
		{
			Name:         "projects",
			Aliases:      []string{"project"},
			Title:        Label{"Projects", "Proyectos"},
			Path:         "/projects",
			Paging:       table.ModeServer,
			PerPage:      10,
			Searchable:   true,
			SquareImages: true,
			Columns: []ColumnDef{
				{Key: "name", Label: Label{"NAME", "NOMBRE"}},
				{Key: "shortDescription", Label: Label{"DESCRIPTION", "DESCRIPCIÓN"}, Kind: table.KindLongText},
				{Key: "mainImage", Label: Label{"MAIN IMAGE", "IMAGEN PRINCIPAL"}},
				{Key: "isFeatured", Label: Label{"FEATURED", "PROYECTO DESTACADO"}},
				{Key: "hasDemo", Label: Label{"DEMO", "DEMO"}},
				{Key: "hasRepo", Label: Label{"CODE", "CÓDIGO"}},
				{Key: "isActive", Label: Label{"STATUS", "ESTADO"}},
				actions,
			},
		},
		{
			Name:     "contact-forms",
			Aliases:  []string{"messages", "inbox"},
			Title:    Label{"Contact forms", "Formularios de contacto"},
			Path:     "/contact-forms",
			Paging:   table.ModeLocal,
			PerPage:  5,
			ReadOnly: true,
			Columns: []ColumnDef{
				{Key: "name", Label: Label{"NAME", "NOMBRE"}},
				{Key: "email", Label: Label{"EMAIL", "EMAIL"}},
				{Key: "message", Label: Label{"MESSAGE", "MENSAJE"}, Kind: table.KindLongText},
				{Key: "createdAt", Label: Label{"RECEIVED", "RECIBIDO EL"}},
				actions,
			},
		},
	}
}

// DefaultPages returns the built-in singleton pages.
func DefaultPages() []*Page {
	return []*Page{
		{Name: "home", Title: Label{"Home", "Inicio"}, Path: "/home", Write: WriteUpsert},
		{Name: "aboutme", Title: Label{"About me", "Sobre mí"}, Path: "/aboutme", Write: WriteUpsert},
		{Name: "contact", Title: Label{"Contact", "Contacto"}, Path: "/contact", Write: WritePatchByID},
		{Name: "portfolio", Title: Label{"Portfolio", "Portafolio"}, Path: "/portfolio", List: true},
	}
}

// Registry looks resources and pages up by name.
type Registry struct {
	resources []*Resource
	pages     []*Page
}

// NewRegistry returns a registry of the built-in resources and pages.
func NewRegistry() *Registry {
	return &Registry{resources: Defaults(), pages: DefaultPages()}
}

// Resources returns the collections in menu order.
func (r *Registry) Resources() []*Resource {
	return r.resources
}

// Pages returns the singleton pages.
func (r *Registry) Pages() []*Page {
	return r.pages
}

// Names returns the collection names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.resources))
	for i, res := range r.resources {
		names[i] = res.Name
	}
	sort.Strings(names)
	return names
}

// Lookup finds a collection by name or alias.
func (r *Registry) Lookup(name string) (*Resource, error) {
	for _, res := range r.resources {
		if res.Matches(name) {
			return res, nil
		}
	}
	return nil, clierrors.UnknownResourceError(name, r.Names())
}

// LookupPage finds a singleton page by name.
func (r *Registry) LookupPage(name string) (*Page, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	names := make([]string, len(r.pages))
	for i, p := range r.pages {
		if p.Name == name {
			return p, nil
		}
		names[i] = p.Name
	}
	return nil, clierrors.UnknownResourceError(name, names)
}

// Apply copies per_page and column overrides from cfg. The global per_page
// applies to every collection without its own value.
func (r *Registry) Apply(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, res := range r.resources {
		if cfg.PerPage > 0 {
			res.PerPage = cfg.PerPage
		}
		rc := cfg.Resource(res.Name)
		if rc.PerPage > 0 {
			res.PerPage = rc.PerPage
		}
		if len(rc.Columns) > 0 {
			cols, err := ColumnsFromConfig(rc.Columns)
			if err != nil {
				return fmt.Errorf("resources.%s: %w", res.Name, err)
			}
			res.override = cols
		}
	}
	return nil
}

// ColumnsFromConfig converts config column declarations. A missing label
// falls back to the upper-cased key.
func ColumnsFromConfig(in []config.ColumnConfig) ([]table.Column, error) {
	out := make([]table.Column, 0, len(in))
	for i, c := range in {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return nil, fmt.Errorf("columns[%d]: key is required", i)
		}
		kind, err := table.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("columns[%d]: %w", i, err)
		}
		if kind == table.KindCustom {
			return nil, fmt.Errorf("columns[%d]: kind custom cannot be declared in config", i)
		}
		flag, err := table.ParseFlagStyle(c.Flag)
		if err != nil {
			return nil, fmt.Errorf("columns[%d]: %w", i, err)
		}
		label := c.Label
		if label == "" {
			label = strings.ToUpper(key)
		}
		out = append(out, table.Column{Key: key, Label: label, Kind: kind, Flag: flag})
	}
	return out, nil
}
