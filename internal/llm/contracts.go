package llm

import (
	"context"

	"github.com/tradedocs/termsheet-extractor/constants"
)

// Request carries one pipeline invocation. The API key travels with the
// request because callers supply their own credential per upload; the
// service holds none of its own.
type Request struct {
	Text      string
	Operation constants.Operation
	Question  string
	APIKey    string
}

// Result is the typed outcome of a successful pipeline run. Failures are
// returned as errors, never as descriptive strings inside Text; callers
// branch on the error, not on payload content.
type Result struct {
	Text  string
	Model string
}

// Pipeline is the interface the request router depends on.
type Pipeline interface {
	Run(ctx context.Context, req Request) (Result, error)
}
