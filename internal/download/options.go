package download

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tubegrab/internal/config"
	"tubegrab/internal/consts"
	"tubegrab/internal/entity"
	"tubegrab/internal/extractor"
)

// FormatExpr derives the yt-dlp format selection expression from a quality
// label. A label like "720p" constrains selection to streams whose height
// does not exceed 720; "best", empty or unparsable labels apply no ceiling.
func FormatExpr(quality string) string {
	if quality == "" || quality == consts.QualityBest {
		return consts.QualityBest
	}

	height, err := strconv.Atoi(strings.TrimSuffix(quality, "p"))
	if err != nil || height <= 0 {
		return consts.QualityBest
	}

	return fmt.Sprintf("best[height<=%d]", height)
}

// OutputName builds the deterministic output filename for a request. It is
// assignable before any byte has been transferred: current timestamp plus an
// extension derived from the requested kind.
func OutputName(req entity.DownloadRequest, audioFormat string) string {
	ext := consts.ExtMP4
	if req.Kind == entity.FormatKindAudio {
		ext = audioFormat
		if ext == "" {
			ext = consts.ExtMP3
		}
	}

	return fmt.Sprintf("download_%d.%s", time.Now().UnixMilli(), ext)
}

// buildFetchRequest translates a download request into extractor options.
func buildFetchRequest(cfg *config.Config, req entity.DownloadRequest, filename string) extractor.FetchRequest {
	fetch := extractor.FetchRequest{
		URL:        req.URL,
		OutputPath: filepath.Join(cfg.Dir.Downloads, filename),
	}

	if req.Kind == entity.FormatKindAudio {
		fetch.ExtractAudio = true
		fetch.AudioFormat = cfg.Download.AudioFormat
		fetch.AudioQuality = consts.AudioQualityBest

		return fetch
	}

	fetch.FormatExpr = FormatExpr(req.Quality)

	return fetch
}
