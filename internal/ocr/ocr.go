// Package ocr provides optical character recognition over base64 data URIs.
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"
)

// Engine recognizes text in an image supplied as a base64 data URI
// (data:<media type>;base64,<payload>).
type Engine interface {
	Recognize(ctx context.Context, dataURI string) (string, error)
}

// Pool bounds concurrent recognitions against a shared engine. A worker
// slot is acquired per call and released on every exit path.
type Pool struct {
	engine Engine
	sem    *semaphore.Weighted
}

// NewPool creates a pool with the given number of worker slots.
func NewPool(engine Engine, workers int64) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		engine: engine,
		sem:    semaphore.NewWeighted(workers),
	}
}

// Recognize acquires a worker slot, runs recognition, and releases the
// slot whether recognition succeeds or fails.
func (p *Pool) Recognize(ctx context.Context, dataURI string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire ocr worker: %w", err)
	}
	defer p.sem.Release(1)

	return p.engine.Recognize(ctx, dataURI)
}

// EncodeDataURI packs image bytes into a base64 data URI for Recognize.
func EncodeDataURI(mediaType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data))
}

// decodeDataURI splits a data URI back into its media type and raw bytes.
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("data URI is not base64-encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI payload: %w", err)
	}
	return mediaType, data, nil
}
