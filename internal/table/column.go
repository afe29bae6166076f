package table

import (
	"fmt"
	"strings"
)

// ActionsKey is the column key that holds the row action buttons.
const ActionsKey = "actions"

// Kind selects how the cells of a column are rendered.
type Kind int

const (
	// KindAuto picks the kind from the column key (see Column.ResolvedKind).
	KindAuto Kind = iota
	// KindText formats the value generically.
	KindText
	// KindImage renders an avatar from a URL string.
	KindImage
	// KindDate renders a locale formatted date-time.
	KindDate
	// KindFlag renders a colored Yes/No or Active/Inactive chip.
	KindFlag
	// KindLongText renders a clamped excerpt.
	KindLongText
	// KindActions renders the view/edit/delete buttons.
	KindActions
	// KindCustom delegates to Column.Format.
	KindCustom
)

var kindNames = map[Kind]string{
	KindAuto:     "auto",
	KindText:     "text",
	KindImage:    "image",
	KindDate:     "date",
	KindFlag:     "flag",
	KindLongText: "longtext",
	KindActions:  "actions",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a config value into a Kind. Empty means KindAuto.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "text":
		return KindText, nil
	case "image", "avatar":
		return KindImage, nil
	case "date", "datetime":
		return KindDate, nil
	case "flag", "bool", "boolean", "chip":
		return KindFlag, nil
	case "longtext", "long-text", "excerpt":
		return KindLongText, nil
	case "actions":
		return KindActions, nil
	case "custom":
		return KindCustom, nil
	default:
		return KindAuto, fmt.Errorf("unknown column kind %q (expected auto|text|image|date|flag|longtext|actions)", s)
	}
}

// FlagStyle selects the wording of a flag chip.
type FlagStyle int

const (
	// FlagAuto uses FlagActive for "isActive" and FlagYesNo otherwise.
	FlagAuto FlagStyle = iota
	// FlagYesNo labels the chip Yes or No.
	FlagYesNo
	// FlagActive labels the chip Active or Inactive.
	FlagActive
)

// ParseFlagStyle converts a config value into a FlagStyle.
func ParseFlagStyle(s string) (FlagStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FlagAuto, nil
	case "yesno", "yes-no":
		return FlagYesNo, nil
	case "active":
		return FlagActive, nil
	default:
		return FlagAuto, fmt.Errorf("unknown flag style %q (expected yesno|active)", s)
	}
}

// Column describes one table column. Order in Options.Columns is render order.
type Column struct {
	// Key is "actions", a field name or a dotted path such as "category.name".
	Key   string
	Label string
	Kind  Kind
	Flag  FlagStyle
	// Format renders KindCustom cells.
	Format func(Row) string
}

// Reserved keys recognised by KindAuto.
var (
	imageKeys    = map[string]bool{"image": true, "mainImage": true, "avatarUrl": true}
	dateKeys     = map[string]bool{"createdAt": true, "updatedAt": true}
	longTextKeys = map[string]bool{"description": true}
	flagKeys     = map[string]FlagStyle{
		"isActive":   FlagActive,
		"hasDemo":    FlagYesNo,
		"hasRepo":    FlagYesNo,
		"isFeatured": FlagYesNo,
	}
)

// ResolvedKind returns the explicit kind, or for KindAuto the kind implied
// by the key: actions first, then image, date, flag and long-text keys,
// then plain text.
func (c Column) ResolvedKind() Kind {
	if c.Kind != KindAuto {
		if c.Kind == KindCustom && c.Format == nil {
			return KindText
		}
		return c.Kind
	}
	switch {
	case c.Key == ActionsKey:
		return KindActions
	case imageKeys[c.Key]:
		return KindImage
	case dateKeys[c.Key]:
		return KindDate
	case hasFlagKey(c.Key):
		return KindFlag
	case longTextKeys[c.Key]:
		return KindLongText
	default:
		return KindText
	}
}

func hasFlagKey(key string) bool {
	_, ok := flagKeys[key]
	return ok
}

// ResolvedFlag returns the chip wording for a flag column.
func (c Column) ResolvedFlag() FlagStyle {
	if c.Flag != FlagAuto {
		return c.Flag
	}
	if style, ok := flagKeys[c.Key]; ok {
		return style
	}
	return FlagYesNo
}

// Text, Image, Date, Flag, LongText and Actions build columns with an
// explicit kind.

func Text(key, label string) Column     { return Column{Key: key, Label: label, Kind: KindText} }
func Image(key, label string) Column    { return Column{Key: key, Label: label, Kind: KindImage} }
func Date(key, label string) Column     { return Column{Key: key, Label: label, Kind: KindDate} }
func LongText(key, label string) Column { return Column{Key: key, Label: label, Kind: KindLongText} }
func Actions(label string) Column       { return Column{Key: ActionsKey, Label: label, Kind: KindActions} }

func Flag(key, label string, style FlagStyle) Column {
	return Column{Key: key, Label: label, Kind: KindFlag, Flag: style}
}

// Custom builds a column rendered by fn.
func Custom(key, label string, fn func(Row) string) Column {
	return Column{Key: key, Label: label, Kind: KindCustom, Format: fn}
}
