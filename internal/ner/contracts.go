package ner

import "context"

// Entity is a recognized span with its model label. Labels come from the
// underlying model's generic taxonomy (PERSON, GPE, ...), not from the
// financial-contract field set.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Extractor produces entity spans from flat text. Implementations must
// surface model failures as errors; a missing model is not an empty
// document.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}
