package extract

import (
	"context"
	"fmt"

	"github.com/seonho/docvault/internal/classify"
	"github.com/seonho/docvault/internal/ocr"
)

// extractImage runs OCR against the declared media type. A successful
// recognition with zero characters is a success with empty text.
func (e *Extractor) extractImage(ctx context.Context, mediaType string, data []byte) (string, error) {
	if e.ocr == nil {
		return "", &Error{Strategy: classify.StrategyImage, Err: fmt.Errorf("ocr engine not configured")}
	}

	text, err := e.ocr.Recognize(ctx, ocr.EncodeDataURI(mediaType, data))
	if err != nil {
		return "", &Error{Strategy: classify.StrategyImage, Err: err}
	}
	return text, nil
}
