// Package pipeline runs the extraction and enrichment flow for uploaded
// objects: download, classify, extract, sanitize, persist, summarize.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/seonho/docvault/internal/classify"
	"github.com/seonho/docvault/internal/docvault"
	"github.com/seonho/docvault/internal/extract"
	"github.com/seonho/docvault/internal/repository"
	"github.com/seonho/docvault/internal/sanitize"
	"github.com/seonho/docvault/internal/storage"
)

// ErrAlreadyProcessing is returned by Trigger when an extraction run for
// the same path is still in flight.
var ErrAlreadyProcessing = errors.New("extraction already in progress for this path")

const (
	defaultRunTimeout = 5 * time.Minute
	// status writes use their own deadline so a terminal state still
	// lands after the run context expires
	statusWriteTimeout = 10 * time.Second
)

// Extractor produces flat text from object bytes for a given strategy.
type Extractor interface {
	Extract(ctx context.Context, strategy classify.Strategy, mediaType string, data []byte) (string, error)
}

// Summarizer derives a synopsis from extracted text. An empty result
// with a nil error means no summary was produced (non-fatal).
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunTimeout bounds the wall time of one detached run.
func WithRunTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.runTimeout = d
		}
	}
}

// Pipeline is the extraction orchestrator. One Run per (path, owner)
// advances the file record from pending through processing to a terminal
// completed or failed state. All mutations address the record by path.
type Pipeline struct {
	store      storage.ObjectStorage
	repo       repository.FileRepository
	extractor  Extractor
	summarizer Summarizer
	runTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(store storage.ObjectStorage, repo repository.FileRepository, extractor Extractor, summarizer Summarizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      store,
		repo:       repo,
		extractor:  extractor,
		summarizer: summarizer,
		runTimeout: defaultRunTimeout,
		inflight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Trigger starts a detached extraction run for (path, ownerID) and
// returns immediately. A second trigger for a path still in flight is
// rejected with ErrAlreadyProcessing. The spawned run has its own
// recover boundary and deadline, so a failure cannot reach the caller.
func (p *Pipeline) Trigger(path, ownerID string) error {
	p.mu.Lock()
	if _, busy := p.inflight[path]; busy {
		p.mu.Unlock()
		return ErrAlreadyProcessing
	}
	p.inflight[path] = struct{}{}
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.inflight, path)
			p.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.runTimeout)
		defer cancel()
		p.Run(ctx, path, ownerID)
	}()

	return nil
}

// Run executes one end-to-end extraction for the object at path. It
// never returns an error: every outcome is recorded on the file record,
// and the caller has already been acknowledged.
func (p *Pipeline) Run(ctx context.Context, path, ownerID string) {
	slog.Info("extraction run started", "path", path, "user_id", ownerID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("extraction run panicked", "path", path, "panic", r)
			p.fail(path, fmt.Sprintf("File extraction error: %v", r))
		}
	}()

	p.update(path, docvault.FileUpdate{
		Status:   statusPtr(docvault.StatusProcessing),
		ErrorLog: strPtr(""), // clear any stale error from a previous run
	})

	obj, err := p.store.Download(ctx, path)
	if err != nil {
		p.fail(path, "Failed to download file: "+err.Error())
		return
	}
	if len(obj.Data) == 0 {
		p.fail(path, "Failed to download file: empty object")
		return
	}

	strategy := classify.Classify(obj.ContentType)

	text, err := p.extractor.Extract(ctx, strategy, obj.ContentType, obj.Data)
	if err != nil {
		p.fail(path, failureMessage(strategy, obj.ContentType, err))
		return
	}

	p.update(path, docvault.FileUpdate{
		ExtractedData: strPtr(sanitize.Clean(text)),
		Status:        statusPtr(docvault.StatusCompleted),
	})
	slog.Info("extraction completed", "path", path, "strategy", strategy, "chars", len(text))

	p.summarizeAndRecord(ctx, path, start)
}

// summarizeAndRecord attempts summarization after a successful
// extraction. Nothing in here can flip the record back to failed: a file
// that extracted cleanly stays completed even if summarization is
// unavailable or errors out.
func (p *Pipeline) summarizeAndRecord(ctx context.Context, path string, start time.Time) {
	rec, err := p.repo.FindByPath(ctx, path)
	if err != nil {
		slog.Warn("no file record found for summarization", "path", path, "err", err)
		return
	}
	if rec.ExtractedData == nil || *rec.ExtractedData == "" {
		slog.Warn("no extracted data to summarize", "path", path)
		return
	}

	summary, err := p.summarizer.Summarize(ctx, *rec.ExtractedData)
	if err != nil {
		slog.Error("summary generation failed", "path", path, "err", err)
		return
	}
	if summary == "" {
		slog.Warn("no summary generated", "path", path)
		return
	}

	elapsed := time.Since(start).Milliseconds()
	p.update(path, docvault.FileUpdate{
		Summary:        &summary,
		ProcessingTime: &elapsed,
	})
	slog.Info("summary recorded", "path", path, "processing_ms", elapsed)
}

func failureMessage(strategy classify.Strategy, mediaType string, err error) string {
	reason := err.Error()
	var xerr *extract.Error
	if errors.As(err, &xerr) {
		reason = xerr.Reason()
	}

	switch strategy {
	case classify.StrategyPDF:
		return "PDF parsing error: " + reason
	case classify.StrategyImage:
		return "OCR processing error: " + reason
	case classify.StrategyDelimited, classify.StrategySpreadsheet:
		return "Spreadsheet parsing error: " + reason
	default:
		return "Unsupported file type: " + mediaType
	}
}

func (p *Pipeline) fail(path, message string) {
	slog.Error("extraction failed", "path", path, "reason", message)
	p.update(path, docvault.FileUpdate{
		Status:   statusPtr(docvault.StatusFailed),
		ErrorLog: &message,
	})
}

// update writes a partial record update by path. Persistence errors are
// logged, never retried: the run is best-effort once detached.
func (p *Pipeline) update(path string, upd docvault.FileUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	if err := p.repo.UpdateByPath(ctx, path, upd); err != nil {
		slog.Error("file record update failed", "path", path, "err", err)
	}
}

func statusPtr(s docvault.Status) *docvault.Status { return &s }
func strPtr(s string) *string                      { return &s }
