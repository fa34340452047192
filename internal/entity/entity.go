// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
)

// FormatKind classifies a format by the streams it carries.
type FormatKind string

const (
	// FormatKindVideoAudio is a muxed format with both video and audio streams.
	FormatKindVideoAudio FormatKind = "video+audio"
	// FormatKindVideo is a video-only format.
	FormatKindVideo FormatKind = "video"
	// FormatKindAudio is an audio-only format.
	FormatKindAudio FormatKind = "audio"
)

// Format represents one selectable download option resolved for a URL.
type Format struct {
	ID         string     `json:"id"`
	Quality    string     `json:"quality"`
	Ext        string     `json:"ext"`
	FileSize   int64      `json:"filesize,omitempty"`
	VideoCodec string     `json:"vcodec,omitempty"`
	AudioCodec string     `json:"acodec,omitempty"`
	Kind       FormatKind `json:"type"`
	Note       string     `json:"note,omitempty"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (f Format) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", f.ID),
		slog.String("quality", f.Quality),
		slog.String("ext", f.Ext),
		slog.Int64("filesize", f.FileSize),
		slog.String("kind", string(f.Kind)),
	)
}

// DownloadState represents the lifecycle state of a download operation.
type DownloadState string

const (
	// DownloadStateCreated indicates that the operation is accepted but not started.
	DownloadStateCreated DownloadState = "created"
	// DownloadStateRunning indicates that the operation is in progress.
	DownloadStateRunning DownloadState = "running"
	// DownloadStateCompleted indicates that the operation finished successfully.
	DownloadStateCompleted DownloadState = "completed"
	// DownloadStateFailed indicates that the operation ended with an error.
	DownloadStateFailed DownloadState = "failed"
	// DownloadStateCancelled indicates that the operation was cancelled.
	DownloadStateCancelled DownloadState = "cancelled"
)

// Terminal reports whether the state allows no further transitions.
func (s DownloadState) Terminal() bool {
	switch s {
	case DownloadStateCompleted, DownloadStateFailed, DownloadStateCancelled:
		return true
	default:
		return false
	}
}

// DownloadRequest describes one requested download.
type DownloadRequest struct {
	URL     string     `json:"url"`
	Quality string     `json:"quality,omitempty"` // e.g. "720p", "best" or empty
	Kind    FormatKind `json:"format,omitempty"`  // audio, video or video+audio
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (r DownloadRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", r.URL),
		slog.String("quality", r.Quality),
		slog.String("kind", string(r.Kind)),
	)
}
