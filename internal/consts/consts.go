// Package consts defines application-wide constants.
package consts

import "time"

const (
	// DefaultSimulateTime is the default duration of a simulated transfer in the mock extractor.
	DefaultSimulateTime = 1 * time.Second
	// MaxFormats caps the number of formats returned for a single URL.
	MaxFormats = 10
	// FullProgress is the progress percentage of a finished transfer.
	FullProgress = 100
)

// Format resolution.
const (
	// CodecNone is the sentinel yt-dlp uses for an absent stream codec.
	CodecNone = "none"
	// QualityAudio is the quality label for audio-only formats.
	QualityAudio = "audio"
	// QualityUnknown is the quality label when neither height nor note is known.
	QualityUnknown = "Unknown"
	// QualityBest is the sentinel quality requesting the highest available stream.
	QualityBest = "best"
	// QualityWorst is the sentinel quality requesting the lowest available stream.
	QualityWorst = "worst"
	// NoteFallback marks formats returned when extraction failed.
	NoteFallback = "Fallback format"
	// ExtMP4 is the default video container.
	ExtMP4 = "mp4"
	// ExtMP3 is the default audio container.
	ExtMP3 = "mp3"
	// AudioQualityBest is the yt-dlp audio quality value for the best VBR setting.
	AudioQualityBest = "0"
)

// HTTP response messages.
const (
	// RespInvalidRequestBody is returned when the request body is invalid.
	RespInvalidRequestBody = "invalid request body"
	// RespQueryParamMissing is returned when a required query parameter is missing or invalid.
	RespQueryParamMissing = "query param missing or invalid"
	// RespURLRequired is returned when the url field is missing or invalid.
	RespURLRequired = "url is required"
	// RespDownloadFailed is returned when a download operation fails.
	RespDownloadFailed = "download failed"
	// RespDownloadCompleted is returned when a download operation completes.
	RespDownloadCompleted = "download completed"
	// RespHealthy is returned by the health endpoint.
	RespHealthy = "tubegrab is running"
)

// SSE event names pushed over the download event stream.
const (
	EventStreamConnected = "connected"
	EventStreamProgress  = "progress"
	EventStreamFilename  = "filename"
	EventStreamComplete  = "complete"
	EventStreamError     = "error"
)
