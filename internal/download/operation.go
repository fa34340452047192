package download

import (
	"context"
	"sync"

	"tubegrab/internal/consts"
	"tubegrab/internal/entity"
)

// EventType identifies an event pushed to a download subscriber.
type EventType string

const (
	// EventFilename carries the assigned output filename. It is always the
	// first event on the stream.
	EventFilename EventType = "filename"
	// EventProgress carries a progress percentage.
	EventProgress EventType = "progress"
	// EventCompleted is the terminal event of a successful operation.
	EventCompleted EventType = "completed"
	// EventFailed is the terminal event of a failed operation.
	EventFailed EventType = "failed"
	// EventCancelled is the terminal event of a cancelled operation.
	EventCancelled EventType = "cancelled"
)

// Event is one notification pushed to a download subscriber.
type Event struct {
	Type     EventType
	Progress int
	Filename string
	Err      error
}

// Operation is one in-flight or completed download. It is owned by the
// orchestrator for the duration of the request and never shared across
// requests. At most one subscriber reads Events; the operation runs to
// completion even with no subscriber attached.
type Operation struct {
	id       string
	request  entity.DownloadRequest
	filename string

	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	mu       sync.Mutex
	state    entity.DownloadState
	progress int
	err      error
}

// ID returns the operation identifier.
func (op *Operation) ID() string { return op.id }

// Filename returns the output name assigned before the transfer started.
func (op *Operation) Filename() string { return op.filename }

// Request returns the originating download request.
func (op *Operation) Request() entity.DownloadRequest { return op.request }

// Events returns the event stream. The first event is the filename, followed
// by strictly increasing progress events and exactly one terminal event,
// after which the channel is closed.
func (op *Operation) Events() <-chan Event { return op.events }

// Done is closed once the operation reaches a terminal state.
func (op *Operation) Done() <-chan struct{} { return op.done }

// Cancel requests cancellation. Further progress emission stops and the
// operation terminates with a cancelled event instead of completed.
func (op *Operation) Cancel() { op.cancel() }

// State returns the current lifecycle state.
func (op *Operation) State() entity.DownloadState {
	op.mu.Lock()
	defer op.mu.Unlock()

	return op.state
}

// Progress returns the last observed progress percentage.
func (op *Operation) Progress() int {
	op.mu.Lock()
	defer op.mu.Unlock()

	return op.progress
}

// Err returns the terminal error, if any.
func (op *Operation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()

	return op.err
}

// Wait blocks until the operation terminates or ctx is done, and returns the
// resolved output filename. This is the completion path for callers that do
// not subscribe to the event stream.
func (op *Operation) Wait(ctx context.Context) (string, error) {
	select {
	case <-op.done:
		return op.filename, op.Err()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// start transitions the operation to running and pushes the filename event.
func (op *Operation) start() {
	op.mu.Lock()
	op.state = entity.DownloadStateRunning
	op.mu.Unlock()

	op.emit(Event{Type: EventFilename, Filename: op.filename})
}

// advance relays a progress percentage, clamped to [0,100]. Non-increasing
// values and values observed after a terminal state are dropped, so the
// subscriber sees a strictly increasing sequence.
func (op *Operation) advance(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > consts.FullProgress {
		percent = consts.FullProgress
	}

	op.mu.Lock()
	if op.state != entity.DownloadStateRunning || percent <= op.progress {
		op.mu.Unlock()

		return
	}
	op.progress = percent
	op.mu.Unlock()

	op.emit(Event{Type: EventProgress, Progress: percent})
}

// finish moves the operation into a terminal state exactly once, pushes the
// terminal event and closes the stream.
func (op *Operation) finish(state entity.DownloadState, err error) bool {
	op.mu.Lock()
	if op.state.Terminal() {
		op.mu.Unlock()

		return false
	}
	op.state = state
	op.err = err
	op.mu.Unlock()

	event := Event{Err: err}

	switch state {
	case entity.DownloadStateCompleted:
		event.Type = EventCompleted
		event.Filename = op.filename
	case entity.DownloadStateCancelled:
		event.Type = EventCancelled
	default:
		event.Type = EventFailed
	}

	op.emit(event)
	close(op.events)
	close(op.done)

	return true
}

// emit pushes an event without ever blocking the transfer goroutine. The
// channel capacity exceeds the maximum number of distinct events (100
// progress values plus filename and terminal), so drops only occur with a
// pathologically small configured buffer.
func (op *Operation) emit(event Event) {
	select {
	case op.events <- event:
	default:
	}
}
