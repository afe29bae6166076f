package table

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. English strings double as keys.
const (
	msgYes       = "Yes"
	msgNo        = "No"
	msgActive    = "Active"
	msgInactive  = "Inactive"
	msgView      = "View"
	msgEdit      = "Edit"
	msgDelete    = "Delete"
	msgEmpty     = "No records to display"
	msgSearch    = "Search"
	msgNewRecord = "New record"
	msgLoading   = "Loading..."
	msgPageOf    = "Page %d of %d"
)

var catalogKeys = []string{
	msgYes, msgNo, msgActive, msgInactive, msgView, msgEdit, msgDelete,
	msgEmpty, msgSearch, msgNewRecord, msgLoading, msgPageOf,
}

var spanish = map[string]string{
	msgYes:       "Sí",
	msgNo:        "No",
	msgActive:    "Activo",
	msgInactive:  "Inactivo",
	msgView:      "Ver",
	msgEdit:      "Editar",
	msgDelete:    "Eliminar",
	msgEmpty:     "No hay registros para mostrar",
	msgSearch:    "Buscar",
	msgNewRecord: "Nuevo registro",
	msgLoading:   "Cargando...",
	msgPageOf:    "Página %d de %d",
}

// dateLayouts maps a base language to its date-time layout.
var dateLayouts = map[string]string{
	"en": "1/2/2006, 3:04:05 PM",
	"es": "2/1/2006, 15:04:05",
}

const defaultDateLayout = "1/2/2006, 3:04:05 PM"

// English is registered first so that it wins when a tag matches nothing.
func init() {
	for _, key := range catalogKeys {
		_ = message.SetString(language.English, key, key)
	}
	for key, msg := range spanish {
		_ = message.SetString(language.Spanish, key, msg)
	}
}

// ParseLocale parses a BCP 47 tag such as "es" or "en-US". Empty or
// invalid input yields English.
func ParseLocale(s string) language.Tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.English
	}
	// POSIX style values such as es_ES.UTF-8
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Translate returns the localized form of an English message key.
func Translate(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}

func dateLayout(tag language.Tag) string {
	base, _ := tag.Base()
	if layout, ok := dateLayouts[base.String()]; ok {
		return layout
	}
	return defaultDateLayout
}
