package download_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"testing/synctest"
	"time"

	"tubegrab/internal/config"
	"tubegrab/internal/consts"
	"tubegrab/internal/download"
	"tubegrab/internal/entity"
	"tubegrab/internal/errs"
	"tubegrab/internal/extractor"
)

const testURL = "https://example.com/watch?v=abc"

func newTestOrchestrator(t *testing.T, ext extractor.Extractor) *download.Orchestrator {
	t.Helper()

	cfg, err := config.New()
	if err != nil {
		t.Fatalf("config new: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return download.New(log, cfg, ext, nil)
}

func collectEvents(t *testing.T, op *download.Operation) []download.Event {
	t.Helper()

	var events []download.Event
	for event := range op.Events() {
		events = append(events, event)
	}

	return events
}

func checkProgressSequence(t *testing.T, events []download.Event) {
	t.Helper()

	last := -1
	for _, event := range events {
		if event.Type != download.EventProgress {
			continue
		}

		if event.Progress <= last {
			t.Errorf("progress not strictly increasing: %d after %d", event.Progress, last)
		}
		if event.Progress < 0 || event.Progress > consts.FullProgress {
			t.Errorf("progress out of bounds: %d", event.Progress)
		}

		last = event.Progress
	}
}

func TestDownloadSuccess(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		orch := newTestOrchestrator(t, &extractor.Mock{SimulateTime: time.Second})

		op, err := orch.Start(t.Context(), entity.DownloadRequest{
			URL:     testURL,
			Quality: "720p",
			Kind:    entity.FormatKindVideo,
		})
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		events := collectEvents(t, op)
		if len(events) < 3 {
			t.Fatalf("got %d events, want filename, progress and terminal", len(events))
		}

		if events[0].Type != download.EventFilename {
			t.Errorf("got first event %q, want %q", events[0].Type, download.EventFilename)
		}
		if events[0].Filename != op.Filename() {
			t.Errorf("got filename %q, want %q", events[0].Filename, op.Filename())
		}

		checkProgressSequence(t, events)

		terminal := events[len(events)-1]
		if terminal.Type != download.EventCompleted {
			t.Errorf("got terminal event %q, want %q", terminal.Type, download.EventCompleted)
		}

		lastProgress := events[len(events)-2]
		if lastProgress.Type != download.EventProgress || lastProgress.Progress != consts.FullProgress {
			t.Errorf("got last progress event %+v, want progress %d", lastProgress, consts.FullProgress)
		}

		filename, err := op.Wait(t.Context())
		if err != nil {
			t.Errorf("wait: %v", err)
		}
		if filename != op.Filename() {
			t.Errorf("got filename %q, want %q", filename, op.Filename())
		}

		if got := op.State(); got != entity.DownloadStateCompleted {
			t.Errorf("got state %q, want %q", got, entity.DownloadStateCompleted)
		}
	})
}

func TestDownloadFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		orch := newTestOrchestrator(t, &extractor.Mock{FetchErr: errors.New("network down")})

		op, err := orch.Start(t.Context(), entity.DownloadRequest{URL: testURL})
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		events := collectEvents(t, op)

		terminal := events[len(events)-1]
		if terminal.Type != download.EventFailed {
			t.Errorf("got terminal event %q, want %q", terminal.Type, download.EventFailed)
		}

		for _, event := range events {
			if event.Type == download.EventCompleted {
				t.Error("failed download must not emit a completed event")
			}
		}

		_, err = op.Wait(t.Context())
		if !errors.Is(err, errs.ErrDownloadFailed) {
			t.Errorf("got error %v, want %v", err, errs.ErrDownloadFailed)
		}

		if got := op.State(); got != entity.DownloadStateFailed {
			t.Errorf("got state %q, want %q", got, entity.DownloadStateFailed)
		}
	})
}

func TestDownloadCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		orch := newTestOrchestrator(t, &extractor.Mock{SimulateTime: time.Second})

		op, err := orch.Start(t.Context(), entity.DownloadRequest{URL: testURL})
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		var events []download.Event

		for event := range op.Events() {
			events = append(events, event)

			if event.Type == download.EventProgress {
				// Cancel after the first observed tick.
				op.Cancel()
			}
		}

		terminal := events[len(events)-1]
		if terminal.Type != download.EventCancelled {
			t.Errorf("got terminal event %q, want %q", terminal.Type, download.EventCancelled)
		}

		for _, event := range events {
			if event.Type == download.EventCompleted {
				t.Error("cancelled download must not emit a completed event")
			}
		}

		checkProgressSequence(t, events)

		_, err = op.Wait(t.Context())
		if !errors.Is(err, errs.ErrDownloadCancelled) {
			t.Errorf("got error %v, want %v", err, errs.ErrDownloadCancelled)
		}

		if got := op.State(); got != entity.DownloadStateCancelled {
			t.Errorf("got state %q, want %q", got, entity.DownloadStateCancelled)
		}
	})
}

func TestDownloadWithoutSubscriber(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		orch := newTestOrchestrator(t, &extractor.Mock{SimulateTime: time.Second})

		op, err := orch.Start(t.Context(), entity.DownloadRequest{URL: testURL})
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		// Never read op.Events(); the operation must still complete and
		// resolve the filename through the Wait path.
		filename, err := op.Wait(t.Context())
		if err != nil {
			t.Fatalf("wait: %v", err)
		}

		if filename == "" {
			t.Error("got empty filename")
		}
	})
}

func TestStartRejectsInvalidURL(t *testing.T) {
	orch := newTestOrchestrator(t, &extractor.Mock{})

	_, err := orch.Start(t.Context(), entity.DownloadRequest{URL: "not a url"})
	if !errors.Is(err, errs.ErrInvalidURL) {
		t.Errorf("got error %v, want %v", err, errs.ErrInvalidURL)
	}
}

func TestAudioRequestDerivesAudioOptions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mock := &extractor.Mock{SimulateTime: time.Second}
		orch := newTestOrchestrator(t, mock)

		op, err := orch.Start(t.Context(), entity.DownloadRequest{
			URL:  testURL,
			Kind: entity.FormatKindAudio,
		})
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		if _, err := op.Wait(t.Context()); err != nil {
			t.Fatalf("wait: %v", err)
		}

		if len(mock.FetchedRequests) != 1 {
			t.Fatalf("got %d fetch requests, want 1", len(mock.FetchedRequests))
		}

		fetch := mock.FetchedRequests[0]
		if !fetch.ExtractAudio {
			t.Error("audio request must set ExtractAudio")
		}
		if fetch.AudioFormat != consts.ExtMP3 {
			t.Errorf("got audio format %q, want %q", fetch.AudioFormat, consts.ExtMP3)
		}
		if fetch.AudioQuality != consts.AudioQualityBest {
			t.Errorf("got audio quality %q, want %q", fetch.AudioQuality, consts.AudioQualityBest)
		}
		if fetch.FormatExpr != "" {
			t.Errorf("audio request must not set a format expression, got %q", fetch.FormatExpr)
		}
	})
}
