package extractor

import (
	"encoding/json"
	"fmt"

	"tubegrab/internal/consts"
)

// Manifest represents the JSON metadata dump from yt-dlp for a single URL.
type Manifest struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Extractor  string      `json:"extractor"`
	WebpageURL string      `json:"webpage_url"`
	Duration   float64     `json:"duration"`
	Formats    []RawFormat `json:"formats"`
}

// RawFormat represents one format entry in the manifest.
type RawFormat struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	FormatNote string  `json:"format_note"`
	Filesize   int64   `json:"filesize"`
	Vcodec     string  `json:"vcodec"`
	Acodec     string  `json:"acodec"`
	Height     int     `json:"height"`
	Width      int     `json:"width"`
	Tbr        float64 `json:"tbr"`
	Protocol   string  `json:"protocol"`
}

// HasVideo reports whether the entry carries a usable video stream.
func (f RawFormat) HasVideo() bool {
	return f.Vcodec != "" && f.Vcodec != consts.CodecNone
}

// HasAudio reports whether the entry carries a usable audio stream.
func (f RawFormat) HasAudio() bool {
	return f.Acodec != "" && f.Acodec != consts.CodecNone
}

// ParseManifest parses the single-JSON metadata dump from yt-dlp stdout.
func ParseManifest(stdout string) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal([]byte(stdout), &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}
