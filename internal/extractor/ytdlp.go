package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"tubegrab/internal/config"
	"tubegrab/internal/depmanager"
	"tubegrab/internal/errs"

	"github.com/lrstanley/go-ytdlp"
)

// YTdlp is the yt-dlp backed extractor.
type YTdlp struct {
	log  *slog.Logger
	cfg  *config.Config
	deps *depmanager.Manager
}

// NewYTdlp creates a new yt-dlp extractor instance. deps may be nil, in which
// case the binary is resolved from the system PATH.
func NewYTdlp(log *slog.Logger, cfg *config.Config, deps *depmanager.Manager) Extractor {
	return &YTdlp{
		log:  log.With(slog.String("package", "extractor")),
		cfg:  cfg,
		deps: deps,
	}
}

// Probe fetches the format manifest for a URL in metadata-only mode.
func (e *YTdlp) Probe(ctx context.Context, url string) (*Manifest, error) {
	log := e.log.With(slog.String("func", "Probe"), slog.String("url", url))

	cmd := e.base().
		DumpSingleJSON().
		SkipDownload().
		// DASH variants are not needed for listing.
		ExtractorArgs("youtube:skip=dash")

	res, err := cmd.Run(ctx, url)
	if err != nil {
		log.DebugContext(ctx, "ytdlp probe", slog.Any("error", err), slog.Any("result", Result{res}))

		return nil, fmt.Errorf("%w: %w", errs.ErrExtractionFailed, err)
	}

	manifest, err := ParseManifest(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	log.DebugContext(ctx, "manifest probed",
		slog.String("id", manifest.ID),
		slog.Int("formats", len(manifest.Formats)))

	return manifest, nil
}

// Fetch performs the transfer and relays real byte-level progress ticks.
func (e *YTdlp) Fetch(ctx context.Context, req FetchRequest, progressFn ProgressFunc) error {
	log := e.log.With(slog.String("func", "Fetch"), slog.String("url", req.URL))

	cmd := e.base().
		Output(req.OutputPath).
		ProgressFunc(e.cfg.Download.ProgressInterval, func(update ytdlp.ProgressUpdate) {
			log.DebugContext(ctx, "ytdlp progress", "progress_update", ProgressUpdate{&update})

			if progressFn != nil {
				progressFn(Progress{
					DownloadedBytes: update.DownloadedBytes,
					TotalBytes:      update.TotalBytes,
				})
			}
		})

	if req.ExtractAudio {
		cmd = cmd.ExtractAudio().
			AudioFormat(req.AudioFormat).
			AudioQuality(req.AudioQuality)
	} else if req.FormatExpr != "" {
		cmd = cmd.Format(req.FormatExpr)
	}

	res, err := cmd.Run(ctx, req.URL)
	if err != nil {
		log.ErrorContext(ctx, "ytdlp fetch", slog.Any("error", err), slog.Any("result", Result{res}))

		return fmt.Errorf("ytdlp fetch: %w", err)
	}

	log.DebugContext(ctx, "fetch done", "result", Result{res})

	return nil
}

// base builds a command with the options shared by probe and fetch.
func (e *YTdlp) base() *ytdlp.Command {
	cmd := ytdlp.New().
		NoWarnings().
		NoCheckCertificates().
		PreferFreeFormats().
		NoPlaylist().
		CacheDir(e.cfg.Dir.Cache)

	if e.cfg.Dir.CookieFile != "" {
		cmd = cmd.Cookies(e.cfg.Dir.CookieFile)
	}

	if e.deps != nil {
		if path := e.deps.Path(depmanager.BinaryYTdlp); path != "" {
			cmd = cmd.SetExecutable(path)
		}
	}

	return cmd
}

// Result wraps ytdlp.Result for custom logging.
type Result struct {
	*ytdlp.Result
}

// LogValue implements the slog.LogValuer interface for custom logging of Result.
func (r Result) LogValue() slog.Value {
	if r.Result == nil {
		return slog.GroupValue(slog.String("error", "nil result"))
	}

	return slog.GroupValue(
		slog.String("executable", r.Executable),
		slog.String("args", fmt.Sprintf("%v", r.Args)),
		slog.String("stdout", r.Stdout),
		slog.String("stderr", r.Stderr),
	)
}

// ProgressUpdate wraps ytdlp.ProgressUpdate for custom logging.
type ProgressUpdate struct {
	*ytdlp.ProgressUpdate
}

// LogValue implements the slog.LogValuer interface for custom logging of ProgressUpdate.
func (p ProgressUpdate) LogValue() slog.Value {
	if p.ProgressUpdate == nil {
		return slog.GroupValue(slog.String("error", "nil progress update"))
	}

	return slog.GroupValue(
		slog.String("filename", p.Filename),
		slog.String("status", fmt.Sprintf("%v", p.Status)),
		slog.Int("downloaded_bytes", p.DownloadedBytes),
		slog.Int("total_bytes", p.TotalBytes),
	)
}
