package request

import (
	"net/http"

	"tubegrab/internal/entity"
	"tubegrab/internal/errs"
	"tubegrab/pkg/urls"
)

// Formats is the body of a format resolution request.
type Formats struct {
	URL string `json:"url"`
}

// Validate checks the format resolution request.
func (f *Formats) Validate() error {
	if !urls.IsURLValid(f.URL) {
		return errs.ErrInvalidURL
	}

	return nil
}

// ParseDownload builds a download request from query parameters.
func ParseDownload(r *http.Request) (entity.DownloadRequest, error) {
	query := r.URL.Query()

	req := entity.DownloadRequest{
		URL:     query.Get("url"),
		Quality: query.Get("quality"),
	}

	if !urls.IsURLValid(req.URL) {
		return req, errs.ErrInvalidURL
	}

	switch kind := query.Get("format"); kind {
	case "":
		req.Kind = entity.FormatKindVideoAudio
	case string(entity.FormatKindAudio):
		req.Kind = entity.FormatKindAudio
	case string(entity.FormatKindVideo):
		req.Kind = entity.FormatKindVideo
	case string(entity.FormatKindVideoAudio):
		req.Kind = entity.FormatKindVideoAudio
	default:
		return req, errs.ErrInvalidFormat
	}

	return req, nil
}
