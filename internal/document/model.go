// Package document loads uploaded files into either a flat text string
// or a structured model of ordered paragraphs and tables.
package document

import "strings"

// Document is the structured view of an office document. Paragraphs and
// tables each keep body order; both sequences are read-only once built.
type Document struct {
	Paragraphs []string
	Tables     []Table
}

// Table is an ordered sequence of rows.
type Table struct {
	Rows []Row
}

// Row is an ordered sequence of cell texts.
type Row struct {
	Cells []string
}

// HasTables reports whether at least one table was found in the body.
func (d *Document) HasTables() bool {
	return len(d.Tables) > 0
}

// Text flattens the document to plain text, one paragraph per line.
// Table content is excluded, matching what flat-format consumers expect.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Paragraphs {
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}
