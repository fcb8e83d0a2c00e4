package ner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jdkato/prose/v2"
)

// ProseExtractor runs prose's bundled English model in-process.
type ProseExtractor struct {
	logger *slog.Logger
}

func NewProseExtractor(logger *slog.Logger) *ProseExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProseExtractor{logger: logger}
}

// Extract tokenizes and tags the text, returning every entity span the
// model finds. Errors propagate: there is no meaningful fallback for a
// broken model and callers must know the component is missing.
func (p *ProseExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := prose.NewDocument(text)
	if err != nil {
		p.logger.Error("ner.extract.failed", "error", err, "text_len", len(text))
		return nil, fmt.Errorf("%s: %w", "ner model", err)
	}

	ents := doc.Entities()
	out := make([]Entity, 0, len(ents))
	for _, e := range ents {
		out = append(out, Entity{Text: e.Text, Label: e.Label})
	}

	p.logger.Info("ner.extract.ok",
		"entities", len(out),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
