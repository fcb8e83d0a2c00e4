package rules

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/tradedocs/termsheet-extractor/internal/document"
)

// Result maps every canonical field to its extracted value. The mapping
// is total: a field with no match carries the empty string, never a
// missing key.
type Result map[Field]string

// NewResult returns a result with all nine fields present and empty.
func NewResult() Result {
	res := make(Result, len(Fields))
	for _, f := range Fields {
		res[f] = ""
	}
	return res
}

// percentPattern matches barrier levels like "70%" or "85.5%".
var percentPattern = regexp.MustCompile(`\d{1,3}(?:\.\d+)?%`)

// Engine performs rule-based extraction over a parsed document. It is
// stateless; one instance serves concurrent requests.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Extract runs one extraction pass. Documents with at least one table
// use table rows exclusively; otherwise paragraph adjacency is used.
// The decision is document-global: row-level pairing is a stronger
// signal than paragraph proximity, so tables are trusted outright when
// present. A nil document (open failure upstream) yields an empty
// result.
func (e *Engine) Extract(doc *document.Document) Result {
	res := NewResult()
	if doc == nil {
		e.logger.Warn("rules.extract.no_document")
		return res
	}

	if doc.HasTables() {
		e.fromTables(doc.Tables, res)
	} else {
		e.fromParagraphs(doc.Paragraphs, res)
	}

	found := 0
	for _, v := range res {
		if v != "" {
			found++
		}
	}
	e.logger.Info("rules.extract.done",
		"strategy", strategyName(doc),
		"fields_found", found,
	)
	return res
}

// fromTables pairs the first two non-empty cells of every row as
// key/value. Rows with fewer than two usable cells contribute nothing.
// Later matching rows overwrite earlier ones.
func (e *Engine) fromTables(tables []document.Table, res Result) {
	for _, tbl := range tables {
		for _, row := range tbl.Rows {
			cells := nonEmptyCells(row.Cells)
			if len(cells) < 2 {
				continue
			}
			field, ok := Resolve(cells[0])
			if !ok {
				continue
			}
			res[field] = refine(field, cells[1])
		}
	}
}

// fromParagraphs treats each non-empty paragraph as a candidate key and
// its value as the next non-empty paragraph later in the document,
// skipping empties. A key with no following non-empty paragraph gets the
// empty string. Later matches overwrite earlier ones.
func (e *Engine) fromParagraphs(paragraphs []string, res Result) {
	for i, p := range paragraphs {
		key := strings.TrimSpace(p)
		if key == "" {
			continue
		}
		field, ok := Resolve(key)
		if !ok {
			continue
		}
		value := ""
		for _, next := range paragraphs[i+1:] {
			if v := strings.TrimSpace(next); v != "" {
				value = v
				break
			}
		}
		res[field] = refine(field, value)
	}
}

// refine narrows Barrier values to their percentage component when one
// is present; all other fields keep the raw value.
func refine(field Field, value string) string {
	value = strings.TrimSpace(value)
	if field != FieldBarrier {
		return value
	}
	if m := percentPattern.FindString(value); m != "" {
		return m
	}
	return value
}

func nonEmptyCells(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if t := strings.TrimSpace(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func strategyName(doc *document.Document) string {
	if doc.HasTables() {
		return "table"
	}
	return "paragraph"
}
