// Package export renders tabular reports into downloadable documents.
package export

import "errors"

// Table is an ordered grid of cells with a header row.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a Table into file bytes of a single format.
type Renderer interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}

var errNoHeaders = errors.New("table requires at least one header")

// cell returns row[i], or "" when the row is short.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
