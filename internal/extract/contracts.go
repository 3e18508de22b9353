package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	// Text is the per-page text joined with blank lines, trimmed.
	// Empty is valid: a document with no extractable text still flows
	// through the rest of the pipeline.
	Text     string
	Pages    int
	Duration time.Duration
	Warnings []string
}
