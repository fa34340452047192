// Package extractor wraps the external media extraction engine. It exposes a
// metadata probe and a transfer operation with progress callbacks, so the
// rest of the application never talks to yt-dlp directly.
package extractor

import (
	"context"
)

// Progress is one transfer progress tick reported by the extraction engine.
type Progress struct {
	DownloadedBytes int
	TotalBytes      int
}

// ProgressFunc receives transfer progress ticks during Fetch.
type ProgressFunc func(update Progress)

// FetchRequest describes one transfer to perform.
type FetchRequest struct {
	URL        string
	OutputPath string

	// ExtractAudio requests an audio-only transfer transcoded into AudioFormat.
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string

	// FormatExpr is a yt-dlp format selection expression, e.g. "best[height<=720]".
	// Ignored when ExtractAudio is set.
	FormatExpr string
}

// Extractor defines the interface to the media extraction engine.
type Extractor interface {
	// Probe fetches the format manifest for a URL without transferring media.
	Probe(ctx context.Context, url string) (*Manifest, error)

	// Fetch performs the transfer described by req, relaying progress ticks
	// to progressFn until it returns or ctx is cancelled.
	Fetch(ctx context.Context, req FetchRequest, progressFn ProgressFunc) error
}
