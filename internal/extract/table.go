package extract

// nullMarkers are cell values read as missing, alongside the empty cell.
var nullMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// IsNull reports whether a raw cell value denotes a missing value.
func IsNull(s string) bool {
	_, ok := nullMarkers[s]
	return ok
}

// Table is a flat export held in memory. Column names are kept verbatim
// and every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string

	// Encoding is the name of the text encoding the file was decoded with.
	Encoding string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell at (row, col) and whether it is non-null.
func (t *Table) Value(row, col int) (string, bool) {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return "", false
	}
	v := t.Rows[row][col]
	if IsNull(v) {
		return "", false
	}
	return v, true
}
