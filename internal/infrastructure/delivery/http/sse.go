package httprouter

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// eventStream writes Server-Sent Events to a single subscriber.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newEventStream upgrades the response to a persistent event stream. Returns
// false if the underlying writer does not support flushing.
func newEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher}, true
}

// Send writes one named event with a plain-text payload.
func (s *eventStream) Send(event, data string) {
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}

// SendJSON writes one named event with a JSON payload.
func (s *eventStream) SendJSON(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	s.Send(event, string(data))
}
