package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/docstack/invoice-extractor/internal/common"
)

// PDFExtractor reads every page of a PDF and returns the combined text.
// It is stateless; each call re-opens the document.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

// Extract returns the concatenated plain text of all pages.
// A page whose text cannot be read degrades to an empty string with a
// warning; the document as a whole only fails when the container itself
// cannot be opened.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return TextExtractionResult{}, common.NotFoundError(path)
		}
		return TextExtractionResult{}, common.CorruptDocumentError(path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return TextExtractionResult{}, common.CorruptDocumentError(path, err)
	}

	doc, err := fitz.NewFromMemory(raw)
	if err != nil {
		e.logger.Error("extract.pdf.open_failed", "path", path, "error", err)
		return TextExtractionResult{}, common.CorruptDocumentError(path, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("extract.pdf.close_error", "path", path, "error", cerr)
		}
	}()

	pages := doc.NumPage()
	texts := make([]string, 0, pages)
	var warnings []string

	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return TextExtractionResult{}, common.WrapError(err, "extraction canceled")
		}
		text, err := doc.Text(i)
		if err != nil {
			// Scanned or damaged page: keep its slot so page order and
			// separators stay stable.
			e.logger.Warn("extract.pdf.page_failed", "path", path, "page", i+1, "error", err)
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i+1, err))
			text = ""
		}
		texts = append(texts, text)
	}

	res := TextExtractionResult{
		Text:     JoinPages(texts),
		Pages:    pages,
		Duration: time.Since(start),
		Warnings: warnings,
	}

	e.logger.Debug("extract.pdf.ok",
		"path", path,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// JoinPages joins page texts in original order with a blank line between
// them and trims surrounding whitespace.
func JoinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n\n"))
}
