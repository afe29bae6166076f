// Package output renders command results as text, json, ndjson, table or yaml.
//
// The format and the post-processing flags (--query, --fields, --jsonpath,
// --fail-empty) travel in the context, set once by the root command:
//
//	ctx = output.WithFormat(ctx, format)
//	printer := output.NewPrinter(stdout, output.FormatFromContext(ctx))
//	return printer.Print(ctx, data)
//
// Data is normalized through encoding/json before rendering, so structs,
// maps and slices of either all print the same way. A Table value keeps its
// column order in text and table output.
package output
