package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// parsePDF extracts plain text from a PDF, page by page. Pages whose
// content streams cannot be decoded are skipped rather than failing the
// whole file; partial text is still useful to the LLM pipeline.
// The pdf library panics on some malformed inputs, so the whole pass is
// wrapped in a recover that converts the panic to an error.
func parsePDF(path string, logger *slog.Logger) (_ string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("document.pdf.panic", "path", path, "panic", r)
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("document.pdf.page_skipped", "path", path, "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
