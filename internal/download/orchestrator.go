// Package download drives single download operations: it translates a
// request into extractor options and exposes each transfer as an observable,
// cancellable, progress-emitting operation.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tubegrab/internal/config"
	"tubegrab/internal/consts"
	"tubegrab/internal/entity"
	"tubegrab/internal/errs"
	"tubegrab/internal/extractor"
	"tubegrab/internal/observability"
	"tubegrab/pkg/calc"
	"tubegrab/pkg/urls"

	"github.com/google/uuid"
)

const minEventBuffer = consts.FullProgress + 2 // every progress value + filename + terminal

// Orchestrator starts and supervises download operations. Concurrent
// operations are fully independent; the only shared state is read-only
// configuration and the extraction collaborator.
type Orchestrator struct {
	log       *slog.Logger
	cfg       *config.Config
	extractor extractor.Extractor
	metrics   *observability.Metrics
}

// New creates a new orchestrator with the given extractor.
func New(log *slog.Logger, cfg *config.Config, ext extractor.Extractor, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		log:       log.With(slog.String("package", "download")),
		cfg:       cfg,
		extractor: ext,
		metrics:   metrics,
	}
}

// Start validates the request, assigns the output name and launches the
// transfer. The returned operation is already running; subscribe to its
// Events or Wait on it. The operation is bound to ctx: when the caller's
// context ends (e.g. the subscriber disconnects), the transfer is cancelled.
func (o *Orchestrator) Start(ctx context.Context, req entity.DownloadRequest) (*Operation, error) {
	if !urls.IsURLValid(req.URL) {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidURL, req.URL)
	}

	req.URL = urls.Normalize(req.URL)
	if req.Kind == "" {
		req.Kind = entity.FormatKindVideoAudio
	}

	filename := OutputName(req, o.cfg.Download.AudioFormat)
	fetch := buildFetchRequest(o.cfg, req, filename)

	buffer := o.cfg.Download.EventBuffer
	if buffer < minEventBuffer {
		buffer = minEventBuffer
	}

	opCtx, cancel := context.WithTimeout(ctx, o.cfg.Download.Timeout)

	op := &Operation{
		id:       uuid.NewString(),
		request:  req,
		filename: filename,
		events:   make(chan Event, buffer),
		done:     make(chan struct{}),
		cancel:   cancel,
		state:    entity.DownloadStateCreated,
	}

	o.log.InfoContext(ctx, "download started",
		slog.String("operation_id", op.id),
		slog.String("filename", filename),
		"request", req)

	go o.run(opCtx, op, fetch)

	return op, nil
}

func (o *Orchestrator) run(ctx context.Context, op *Operation, fetch extractor.FetchRequest) {
	defer op.cancel()

	log := o.log.With(slog.String("func", "run"), slog.String("operation_id", op.id))

	o.metrics.RecordDownloadStarted()
	stopTimer := o.metrics.DownloadTimer()
	defer stopTimer()

	op.start()

	started := time.Now()

	err := o.extractor.Fetch(ctx, fetch, func(update extractor.Progress) {
		percent := calc.Progress(update.DownloadedBytes, update.TotalBytes)
		op.advance(percent)

		log.DebugContext(ctx, "transfer progress",
			slog.Int("percent", percent),
			slog.Duration("eta", calc.ETA(update.DownloadedBytes, update.TotalBytes, started)))
	})
	if err != nil {
		o.fail(ctx, op, err)

		return
	}

	// The extractor may finish without a final 100% tick.
	op.advance(consts.FullProgress)

	if op.finish(entity.DownloadStateCompleted, nil) {
		o.metrics.RecordDownloadCompleted()
		log.InfoContext(ctx, "download completed", slog.String("filename", op.filename))
	}
}

func (o *Orchestrator) fail(ctx context.Context, op *Operation, err error) {
	log := o.log.With(slog.String("func", "fail"), slog.String("operation_id", op.id))

	if errors.Is(err, context.Canceled) {
		if op.finish(entity.DownloadStateCancelled, errs.ErrDownloadCancelled) {
			o.metrics.RecordDownloadCancelled()
			log.InfoContext(ctx, "download cancelled")
		}

		return
	}

	wrapped := fmt.Errorf("%w: %w", errs.ErrDownloadFailed, err)
	if errors.Is(err, context.DeadlineExceeded) {
		wrapped = fmt.Errorf("%w: timeout: %w", errs.ErrDownloadFailed, err)
	}

	if op.finish(entity.DownloadStateFailed, wrapped) {
		o.metrics.RecordDownloadFailed()
		log.ErrorContext(ctx, "download failed", slog.Any("error", err))
	}
}
