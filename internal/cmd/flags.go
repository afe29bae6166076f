package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

// aliasOf is the annotation naming the flag a hidden alias stands for.
const aliasOf = "folio_alias_of"

// flagAlias adds alias as a hidden flag sharing the value of name, so
// --out and --output write the same variable.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		return
	}
	fs.AddFlag(&pflag.Flag{
		Name:        alias,
		Usage:       fmt.Sprintf("Alias for --%s", name),
		Value:       f.Value,
		DefValue:    f.DefValue,
		NoOptDefVal: f.NoOptDefVal,
		Hidden:      true,
		Annotations: map[string][]string{aliasOf: {name}},
	})
}

// flagChanged reports whether name or one of its aliases was set on fs.
func flagChanged(fs *pflag.FlagSet, name string) bool {
	changed := false
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed && (f.Name == name || slices.Contains(f.Annotations[aliasOf], name)) {
			changed = true
		}
	})
	return changed
}
