package constants

import "strings"

// Operation selects the LLM pipeline behavior for PDF inputs.
type Operation string

const (
	OperationQA               Operation = "qa"
	OperationSummarization    Operation = "summarization"
	OperationEntityExtraction Operation = "entity_extraction"
)

// NormalizeOperation lowercases a raw operation value from the request form.
// Unrecognized values are kept as-is; the LLM pipeline falls back to the
// summarization prompt for them.
func NormalizeOperation(raw string) Operation {
	return Operation(strings.ToLower(strings.TrimSpace(raw)))
}

// Process labels reported in responses and stored on job rows.
const (
	ProcessRuleBased   = "rule_based_extraction"
	ProcessNER         = "ner_extraction"
	ProcessRAGFallback = "rag_fallback"
)

// RAGProcess builds the process label for an LLM run, e.g. "rag_qa".
func RAGProcess(op Operation) string {
	return "rag_" + string(op)
}
