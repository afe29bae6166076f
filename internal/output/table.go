package output

// Table is pre-rendered tabular data. Text and table output keep the header
// order; json and yaml output emit one object per row keyed by header.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Records converts the table to header-keyed objects.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}
