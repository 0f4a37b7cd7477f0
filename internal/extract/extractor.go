// Package extract turns stored object bytes into flat text, one
// extractor per content family.
package extract

import (
	"context"
	"fmt"

	"github.com/seonho/docvault/internal/classify"
	"github.com/seonho/docvault/internal/ocr"
)

// Error reports a failed extraction for a given strategy. The wrapped
// error carries the underlying parser or recognizer message.
type Error struct {
	Strategy classify.Strategy
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Strategy, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Reason returns the underlying message without the strategy tag.
func (e *Error) Reason() string { return e.Err.Error() }

// Extractor dispatches to the format-specific extractor selected by the
// classifier. The OCR pool may be nil when no OCR engine is configured;
// image extraction then fails.
type Extractor struct {
	ocr *ocr.Pool
}

func New(ocrPool *ocr.Pool) *Extractor {
	return &Extractor{ocr: ocrPool}
}

// Extract produces a single flattened text string from data. It fails
// with *Error on malformed input and never partially writes shared state.
func (e *Extractor) Extract(ctx context.Context, strategy classify.Strategy, mediaType string, data []byte) (string, error) {
	switch strategy {
	case classify.StrategyPDF:
		return extractPDF(data)
	case classify.StrategyImage:
		return e.extractImage(ctx, mediaType, data)
	case classify.StrategyDelimited:
		return extractCSV(data)
	case classify.StrategySpreadsheet:
		return extractSheet(data)
	default:
		return "", &Error{
			Strategy: classify.StrategyUnsupported,
			Err:      fmt.Errorf("unsupported file type: %s", mediaType),
		}
	}
}
