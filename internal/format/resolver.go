// Package format resolves the selectable download formats for a URL.
package format

import (
	"context"
	"fmt"
	"log/slog"

	"tubegrab/internal/consts"
	"tubegrab/internal/entity"
	"tubegrab/internal/extractor"
	"tubegrab/internal/observability"
)

// Resolver normalizes raw extractor manifests into a bounded list of formats.
type Resolver struct {
	log       *slog.Logger
	extractor extractor.Extractor
	metrics   *observability.Metrics
}

// NewResolver creates a new format resolver with the given extractor.
func NewResolver(log *slog.Logger, ext extractor.Extractor, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		log:       log.With(slog.String("package", "format")),
		extractor: ext,
		metrics:   metrics,
	}
}

// Resolve returns the selectable formats for a URL. It never fails and never
// returns an empty list: extraction errors yield a fixed fallback list and an
// empty manifest yields the generic default list.
func (r *Resolver) Resolve(ctx context.Context, url string) []entity.Format {
	log := r.log.With(slog.String("func", "Resolve"), slog.String("url", url))

	r.metrics.RecordFormatRequest()

	manifest, err := r.extractor.Probe(ctx, url)
	if err != nil {
		log.WarnContext(ctx, "probe failed, returning fallback formats", slog.Any("error", err))
		r.metrics.RecordFormatFallback()

		return FallbackFormats()
	}

	formats := Normalize(manifest)
	if len(formats) == 0 {
		log.InfoContext(ctx, "no qualifying formats in manifest, returning defaults")

		return DefaultFormats()
	}

	log.DebugContext(ctx, "formats resolved", slog.Int("count", len(formats)))

	return formats
}

// Normalize converts a manifest into the normalized format list: entries with
// a usable video stream first, audio-only entries after, capped at
// consts.MaxFormats. A nil manifest yields nil.
func Normalize(manifest *extractor.Manifest) []entity.Format {
	if manifest == nil {
		return nil
	}

	formats := make([]entity.Format, 0, len(manifest.Formats))

	for _, raw := range manifest.Formats {
		if !raw.HasVideo() {
			continue
		}

		kind := entity.FormatKindVideo
		if raw.HasAudio() {
			kind = entity.FormatKindVideoAudio
		}

		formats = append(formats, entity.Format{
			ID:         raw.FormatID,
			Quality:    videoQuality(raw),
			Ext:        raw.Ext,
			FileSize:   raw.Filesize,
			VideoCodec: raw.Vcodec,
			AudioCodec: raw.Acodec,
			Kind:       kind,
		})
	}

	for _, raw := range manifest.Formats {
		if raw.HasVideo() || !raw.HasAudio() {
			continue
		}

		formats = append(formats, entity.Format{
			ID:         raw.FormatID,
			Quality:    consts.QualityAudio,
			Ext:        raw.Ext,
			FileSize:   raw.Filesize,
			AudioCodec: raw.Acodec,
			Kind:       entity.FormatKindAudio,
		})
	}

	if len(formats) > consts.MaxFormats {
		formats = formats[:consts.MaxFormats]
	}

	return formats
}

// videoQuality derives the human-readable quality label for a video entry.
func videoQuality(raw extractor.RawFormat) string {
	if raw.Height > 0 {
		return fmt.Sprintf("%dp", raw.Height)
	}

	if raw.FormatNote != "" {
		return raw.FormatNote
	}

	return consts.QualityUnknown
}

// DefaultFormats is the list returned when the manifest contains no
// qualifying entries. This is a legitimate "no detailed formats" case, so the
// entries are not flagged.
func DefaultFormats() []entity.Format {
	return []entity.Format{
		{ID: consts.QualityBest, Quality: "Best Quality", Ext: consts.ExtMP4, Kind: entity.FormatKindVideoAudio},
		{ID: consts.QualityWorst, Quality: "Lowest Quality", Ext: consts.ExtMP4, Kind: entity.FormatKindVideoAudio},
		{ID: consts.QualityAudio, Quality: "Audio Only", Ext: consts.ExtMP3, Kind: entity.FormatKindAudio},
	}
}

// FallbackFormats is the list returned when extraction fails outright. Each
// entry is flagged so clients can indicate reduced fidelity.
func FallbackFormats() []entity.Format {
	return []entity.Format{
		{ID: consts.QualityBest, Quality: "720p", Ext: consts.ExtMP4, Kind: entity.FormatKindVideoAudio, Note: consts.NoteFallback},
		{ID: "medium", Quality: "480p", Ext: consts.ExtMP4, Kind: entity.FormatKindVideoAudio, Note: consts.NoteFallback},
		{ID: consts.QualityAudio, Quality: "Audio Only", Ext: consts.ExtMP3, Kind: entity.FormatKindAudio, Note: consts.NoteFallback},
	}
}
