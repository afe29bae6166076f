package github

import (
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/salmonumbrella/folio-cli/internal/table"
)

const (
	msgJustNow  = "less than a minute ago"
	msgMinutes  = "%d minutes ago"
	msgHours    = "%d hours ago"
	msgDays     = "%d days ago"
	msgMonths   = "%d months ago"
	msgYears    = "%d years ago"
	msgNoMore   = "No more commits to show"
	msgMessage  = "Message"
	msgAuthor   = "Author"
	msgWhen     = "When"
	msgCommitID = "Commit"
)

type unit struct {
	key       string
	one, many string
}

var english = []unit{
	{msgMinutes, "1 minute ago", "%d minutes ago"},
	{msgHours, "about 1 hour ago", "about %d hours ago"},
	{msgDays, "1 day ago", "%d days ago"},
	{msgMonths, "about 1 month ago", "%d months ago"},
	{msgYears, "about 1 year ago", "about %d years ago"},
}

var spanish = []unit{
	{msgMinutes, "hace 1 minuto", "hace %d minutos"},
	{msgHours, "hace alrededor de 1 hora", "hace alrededor de %d horas"},
	{msgDays, "hace 1 día", "hace %d días"},
	{msgMonths, "hace alrededor de 1 mes", "hace %d meses"},
	{msgYears, "hace alrededor de 1 año", "hace alrededor de %d años"},
}

var spanishText = map[string]string{
	msgJustNow:  "hace menos de un minuto",
	msgNoMore:   "No hay más commits para mostrar",
	msgMessage:  "Mensaje",
	msgAuthor:   "Autor",
	msgWhen:     "Fecha",
	msgCommitID: "Commit",
}

func init() {
	register := func(tag language.Tag, units []unit) {
		for _, u := range units {
			_ = message.Set(tag, u.key, plural.Selectf(1, "%d", "=1", u.one, "other", u.many))
		}
	}
	register(language.English, english)
	register(language.Spanish, spanish)
	for _, key := range []string{msgJustNow, msgNoMore, msgMessage, msgAuthor, msgWhen, msgCommitID} {
		_ = message.SetString(language.English, key, key)
	}
	for key, msg := range spanishText {
		_ = message.SetString(language.Spanish, key, msg)
	}
}

// Ago renders the distance from t to now in words, e.g. "3 days ago".
// Future times read as just now.
func Ago(tag language.Tag, t, now time.Time) string {
	d := now.Sub(t)
	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case d < 30*time.Second:
		return table.Translate(tag, msgJustNow)
	case minutes < 45:
		return table.Translate(tag, msgMinutes, max(minutes, 1))
	case minutes < 24*60:
		return table.Translate(tag, msgHours, max(int(d.Round(time.Hour)/time.Hour), 1))
	case minutes < 30*24*60:
		return table.Translate(tag, msgDays, max(int(d.Round(24*time.Hour)/(24*time.Hour)), 1))
	case minutes < 365*24*60:
		return table.Translate(tag, msgMonths, max(minutes/(30*24*60), 1))
	}
	return table.Translate(tag, msgYears, minutes/(365*24*60))
}

// FeedOptions configures NewTable.
type FeedOptions struct {
	Locale language.Tag
	// Now anchors relative dates; zero means time.Now.
	Now time.Time
}

// NewTable renders p with server paging. The total is derived from
// whether the page came back full, so the label grows as pages are read.
func NewTable(p *Page, opts FeedOptions) *table.Table {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	tag := opts.Locale
	when := func(r table.Row) string {
		s, _ := r["date"].(string)
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return s
		}
		return Ago(tag, t, now)
	}
	return table.New(table.Options{
		Columns: []table.Column{
			table.Text("message", table.Translate(tag, msgMessage)),
			table.Text("author", table.Translate(tag, msgAuthor)),
			table.Custom("date", table.Translate(tag, msgWhen), when),
			table.Text("url", "URL"),
		},
		Rows:      p.Rows(),
		Paging:    table.Server{Page: p.Page, Total: p.Total(), PerPage: p.PerPage},
		Locale:    tag,
		EmptyText: table.Translate(tag, msgNoMore),
	})
}
