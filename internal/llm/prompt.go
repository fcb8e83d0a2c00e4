package llm

import (
	"strings"

	"github.com/tradedocs/termsheet-extractor/constants"
)

// EntityKeys is the output schema the entity-extraction prompt pins.
// It deliberately differs from the rule-based engine's field set; the
// two consumers want different shapes.
var EntityKeys = []string{
	"Counterparty",
	"Notional",
	"ISIN",
	"Underlying",
	"Maturity",
	"Bid",
	"Offer",
	"PaymentFrequency",
}

// BuildPrompt composes the user message for an operation. QA requires a
// question; without one, and for any unrecognized operation, the
// summarization prompt is used.
func BuildPrompt(op constants.Operation, text, question string) string {
	var b strings.Builder
	switch {
	case op == constants.OperationQA && strings.TrimSpace(question) != "":
		b.WriteString("You are a finance expert. Based on the following text extracted from a financial document, answer the question: '")
		b.WriteString(strings.TrimSpace(question))
		b.WriteString("'.\n\nDocument text:\n")
		b.WriteString(text)
	case op == constants.OperationEntityExtraction:
		b.WriteString("You are an expert in financial entity extraction. Extract the following entities as JSON (keys: ")
		b.WriteString(strings.Join(EntityKeys, ", "))
		b.WriteString(") from the following text:\n\n")
		b.WriteString(text)
	default:
		// summarization, and the fallback for everything else
		b.WriteString("You are an expert reader of financial documents. Provide a concise summary of the following text:\n\n")
		b.WriteString(text)
	}
	return b.String()
}
