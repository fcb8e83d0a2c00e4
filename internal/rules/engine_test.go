package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedocs/termsheet-extractor/internal/document"
)

func tableDoc(rows ...[]string) *document.Document {
	table := document.Table{}
	for _, r := range rows {
		table.Rows = append(table.Rows, document.Row{Cells: r})
	}
	return &document.Document{Tables: []document.Table{table}}
}

func TestExtractResultIsTotal(t *testing.T) {
	engine := NewEngine(nil)
	res := engine.Extract(&document.Document{})
	require.Len(t, res, 9)
	for _, f := range Fields {
		v, ok := res[f]
		assert.True(t, ok, "field %s missing", f)
		assert.Empty(t, v)
	}
}

func TestExtractNilDocument(t *testing.T) {
	engine := NewEngine(nil)
	res := engine.Extract(nil)
	require.Len(t, res, 9)
	for _, f := range Fields {
		assert.Empty(t, res[f])
	}
}

func TestExtractEndToEndTable(t *testing.T) {
	engine := NewEngine(nil)
	doc := tableDoc(
		[]string{"Party A", "Deutsche Bank AG"},
		[]string{"Notional Amount", "EUR 10,000,000"},
		[]string{"Barrier (B)", "Initial Level x 70%"},
	)
	res := engine.Extract(doc)
	assert.Equal(t, "Deutsche Bank AG", res[FieldCounterparty])
	assert.Equal(t, "EUR 10,000,000", res[FieldNotional])
	assert.Equal(t, "70%", res[FieldBarrier])
	for _, f := range []Field{FieldInitialValuationDate, FieldValuationDate, FieldMaturity, FieldUnderlying, FieldCoupon, FieldCalendar} {
		assert.Empty(t, res[f], "field %s should be empty", f)
	}
}

func TestExtractShortRowsAreSkipped(t *testing.T) {
	engine := NewEngine(nil)
	doc := tableDoc(
		[]string{"Coupon"},             // single cell
		[]string{"Underlying", "", ""}, // one non-empty cell
		[]string{"", "  ", "Notional"}, // only one usable cell
	)
	res := engine.Extract(doc)
	for _, f := range Fields {
		assert.Empty(t, res[f])
	}
}

// Empty leading cells shift left: the first two NON-EMPTY cells pair up.
func TestExtractTableSkipsEmptyCells(t *testing.T) {
	engine := NewEngine(nil)
	doc := tableDoc(
		[]string{"", "Coupon (C)", "  ", "8.25% p.a."},
	)
	res := engine.Extract(doc)
	assert.Equal(t, "8.25% p.a.", res[FieldCoupon])
}

func TestExtractLastMatchWinsInTables(t *testing.T) {
	engine := NewEngine(nil)
	doc := tableDoc(
		[]string{"Underlying", "ALV GY"},
		[]string{"Underlying Shares", "Allianz SE"},
	)
	res := engine.Extract(doc)
	assert.Equal(t, "Allianz SE", res[FieldUnderlying])
}

func TestExtractTablesWinOverParagraphs(t *testing.T) {
	engine := NewEngine(nil)
	doc := tableDoc([]string{"Notional", "USD 5,000,000"})
	doc.Paragraphs = []string{"Notional", "USD 9,999,999", "Coupon", "5%"}
	res := engine.Extract(doc)
	assert.Equal(t, "USD 5,000,000", res[FieldNotional])
	// Paragraph content is never consulted once a table exists.
	assert.Empty(t, res[FieldCoupon])
}

func TestExtractParagraphLookahead(t *testing.T) {
	engine := NewEngine(nil)
	doc := &document.Document{
		Paragraphs: []string{"Valuation Date", "", "", "15 March 2026", "Maturity"},
	}
	res := engine.Extract(doc)
	assert.Equal(t, "15 March 2026", res[FieldValuationDate])
	// "Maturity" has no following non-empty paragraph.
	assert.Empty(t, res[FieldMaturity])
}

func TestExtractLastMatchWinsInParagraphs(t *testing.T) {
	engine := NewEngine(nil)
	doc := &document.Document{
		Paragraphs: []string{
			"Coupon", "7.00%",
			"Coupon payment", "quarterly, 7.00% p.a.",
		},
	}
	res := engine.Extract(doc)
	assert.Equal(t, "quarterly, 7.00% p.a.", res[FieldCoupon])
}

func TestExtractParagraphValueCanAlsoBeKey(t *testing.T) {
	engine := NewEngine(nil)
	doc := &document.Document{
		Paragraphs: []string{"Party A", "Maturity Date", "07 Aug 2026"},
	}
	res := engine.Extract(doc)
	// "Maturity Date" serves both as Party A's value and as the key for
	// Maturity.
	assert.Equal(t, "Maturity Date", res[FieldCounterparty])
	assert.Equal(t, "07 Aug 2026", res[FieldMaturity])
}

func TestBarrierRefinement(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"percentage in sentence", "the barrier level is 85.5% of spot", "85.5%"},
		{"no percent pattern keeps raw", "Barrier: TBD", "Barrier: TBD"},
		{"integer percent", "Initial Level x 70%", "70%"},
		{"first match wins", "from 60% to 80%", "60%"},
		{"bare value", "TBD", "TBD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, refine(FieldBarrier, tt.raw))
		})
	}
}

func TestRefinementOnlyAppliesToBarrier(t *testing.T) {
	assert.Equal(t, "8.25% p.a.", refine(FieldCoupon, "8.25% p.a."))
	assert.Equal(t, "8.25%", refine(FieldBarrier, "8.25% p.a."))
}

func TestBarrierRefinementInParagraphMode(t *testing.T) {
	engine := NewEngine(nil)
	doc := &document.Document{
		Paragraphs: []string{"Barrier", "85.5% of Initial Level"},
	}
	res := engine.Extract(doc)
	assert.Equal(t, "85.5%", res[FieldBarrier])
}

func TestExtractParagraphValueContainingAliasReKeys(t *testing.T) {
	engine := NewEngine(nil)
	doc := &document.Document{
		Paragraphs: []string{"Barrier", "the barrier level is 85.5% of spot"},
	}
	res := engine.Extract(doc)
	// The value paragraph contains "barrier" itself, so it is also the
	// last Barrier key; with nothing after it the field ends empty.
	assert.Empty(t, res[FieldBarrier])
}

func TestExtractIsIdempotent(t *testing.T) {
	engine := NewEngine(nil)
	doc := tableDoc(
		[]string{"Party A", "Deutsche Bank AG"},
		[]string{"Barrier", "70% of Initial Level"},
	)
	first := engine.Extract(doc)
	second := engine.Extract(doc)
	assert.Equal(t, first, second)
}
