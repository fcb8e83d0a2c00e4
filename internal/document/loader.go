package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tradedocs/termsheet-extractor/constants"
	"github.com/tradedocs/termsheet-extractor/internal/common"
)

// Loader dispatches files to the right parser by extension.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load builds the structured paragraph/table model. Only DOCX-family
// files carry structure; other extensions are unsupported here.
func (l *Loader) Load(path string) (*Document, error) {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "docx", "doc":
		doc, err := ParseDocx(path)
		if err != nil {
			l.logger.Error("document.load.failed", "path", path, "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrDocumentOpen, err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadText reduces a file to a flat string. PDF text comes from the page
// content streams; DOCX text is the paragraph sequence joined by
// newlines, matching the structured model.
func (l *Loader) LoadText(path string) (string, error) {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "pdf":
		text, err := parsePDF(path, l.logger)
		if err != nil {
			l.logger.Error("document.load_text.failed", "path", path, "error", err)
			return "", fmt.Errorf("%w: %v", common.ErrDocumentOpen, err)
		}
		return text, nil
	case "docx", "doc":
		doc, err := l.Load(path)
		if err != nil {
			return "", err
		}
		return doc.Text(), nil
	case "txt":
		b, err := os.ReadFile(path)
		if err != nil {
			l.logger.Error("document.load_text.failed", "path", path, "error", err)
			return "", fmt.Errorf("%w: %v", common.ErrDocumentOpen, err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
}
