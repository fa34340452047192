package httprouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"tubegrab/internal/config"
	"tubegrab/internal/consts"
	"tubegrab/internal/download"
	"tubegrab/internal/entity"
	"tubegrab/internal/format"
	"tubegrab/internal/infrastructure/delivery/http/middleware"
	"tubegrab/internal/infrastructure/delivery/http/request"
	"tubegrab/internal/infrastructure/delivery/http/response"
	"tubegrab/internal/observability"
)

const (
	appName    = "tubegrab"
	appVersion = "1.0.0"

	contentTypeEventStream = "text/event-stream"
)

type Router struct {
	*http.ServeMux
	log          *slog.Logger
	cfg          *config.Config
	globalChain  []func(http.Handler) http.Handler
	resolver     *format.Resolver
	orchestrator *download.Orchestrator
}

func New(log *slog.Logger, cfg *config.Config, resolver *format.Resolver, orchestrator *download.Orchestrator, metrics *observability.Metrics) *Router {
	r := &Router{
		ServeMux:     http.NewServeMux(),
		log:          log.With(slog.String("package", "httprouter")),
		cfg:          cfg,
		resolver:     resolver,
		orchestrator: orchestrator,
	}

	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.CORS,
		middleware.Logger,
		middleware.Metrics(metrics),
	)
	r.SetRoutes()

	return r
}

func (r *Router) Use(mw ...func(http.Handler) http.Handler) {
	r.globalChain = append(r.globalChain, mw...)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.ServeMux

	for _, mw := range slices.Backward(r.globalChain) {
		h = mw(h)
	}

	h.ServeHTTP(w, req)
}

func (r *Router) SetRoutes() {
	r.HandleFunc("GET /health", r.Health)
	r.HandleFunc("GET /info", r.Info)
	r.HandleFunc("GET /{$}", r.Root)
	r.Handle("GET /metrics", observability.Handler())

	r.HandleFunc("POST /api/formats", r.Formats)
	r.HandleFunc("GET /api/download", r.Download)
}

func (ro *Router) Health(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{
		"status":    "OK",
		"message":   consts.RespHealthy,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (ro *Router) Info(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"name":    appName,
		"version": appVersion,
		"endpoints": []string{
			"GET /health",
			"POST /api/formats",
			"GET /api/download?url=VIDEO_URL&quality=QUALITY&format=FORMAT",
		},
		"status": "operational",
	})
}

func (ro *Router) Root(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{
		"message":       "Welcome to " + appName,
		"documentation": "/info",
		"health":        "/health",
	})
}

// Formats resolves the selectable formats for a URL. Extraction failures are
// absorbed by the resolver, so this endpoint only fails on invalid input.
func (ro *Router) Formats(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With(slog.String("handler", "Formats"))

	ctx, cancel := context.WithTimeout(r.Context(), ro.cfg.HTTP.HandlerTimeout)
	defer cancel()

	var in request.Formats
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.DebugContext(ctx, consts.RespInvalidRequestBody, slog.Any("error", err))
		response.BadRequest(w, consts.RespURLRequired)

		return
	}

	if err := in.Validate(); err != nil {
		log.DebugContext(ctx, consts.RespURLRequired, slog.Any("error", err))
		response.BadRequest(w, consts.RespURLRequired)

		return
	}

	formats := ro.resolver.Resolve(ctx, in.URL)

	response.OK(w, map[string][]entity.Format{"formats": formats})
}

// Download runs one download operation. Clients accepting an event stream get
// progress pushed over SSE; everyone else waits for a JSON summary.
func (ro *Router) Download(w http.ResponseWriter, r *http.Request) {
	log := ro.log.With(slog.String("handler", "Download"))
	ctx := r.Context()

	req, err := request.ParseDownload(r)
	if err != nil {
		log.DebugContext(ctx, consts.RespQueryParamMissing, slog.Any("error", err))
		response.BadRequest(w, consts.RespURLRequired)

		return
	}

	if strings.Contains(r.Header.Get("Accept"), contentTypeEventStream) {
		ro.downloadStream(w, r, req)

		return
	}

	ro.downloadSync(w, r, req)
}

// downloadStream pushes the operation's events to the subscriber over SSE.
// The operation context derives from the request context, so a disconnected
// subscriber cancels the underlying transfer.
func (ro *Router) downloadStream(w http.ResponseWriter, r *http.Request, req entity.DownloadRequest) {
	log := ro.log.With(slog.String("handler", "downloadStream"))
	ctx := r.Context()

	stream, ok := newEventStream(w)
	if !ok {
		response.InternalServerError(w, "streaming unsupported")

		return
	}

	stream.Send(consts.EventStreamConnected, "Connected to download server")

	op, err := ro.orchestrator.Start(ctx, req)
	if err != nil {
		log.ErrorContext(ctx, consts.RespDownloadFailed, slog.Any("error", err))
		stream.SendJSON(consts.EventStreamError, response.ErrorResponse{Error: consts.RespDownloadFailed})

		return
	}

	// The filename is assigned before the transfer starts; the event-stream
	// contract wants it on the wire after the progress sequence, right before
	// the terminal event.
	var filename string

	for event := range op.Events() {
		switch event.Type {
		case download.EventFilename:
			filename = event.Filename
		case download.EventProgress:
			stream.SendJSON(consts.EventStreamProgress, map[string]int{"progress": event.Progress})
		case download.EventCompleted:
			stream.SendJSON(consts.EventStreamFilename, map[string]string{"filename": filename})
			stream.Send(consts.EventStreamComplete, "Download completed")
		case download.EventFailed, download.EventCancelled:
			log.ErrorContext(ctx, consts.RespDownloadFailed, slog.Any("error", event.Err))
			stream.SendJSON(consts.EventStreamError, response.ErrorResponse{Error: consts.RespDownloadFailed})
		}
	}
}

// downloadSync performs the operation synchronously and returns a JSON summary.
func (ro *Router) downloadSync(w http.ResponseWriter, r *http.Request, req entity.DownloadRequest) {
	log := ro.log.With(slog.String("handler", "downloadSync"))

	ctx, cancel := context.WithTimeout(r.Context(), ro.cfg.HTTP.DownloadTimeout)
	defer cancel()

	op, err := ro.orchestrator.Start(ctx, req)
	if err != nil {
		log.ErrorContext(ctx, consts.RespDownloadFailed, slog.Any("error", err))
		response.InternalServerError(w, consts.RespDownloadFailed)

		return
	}

	filename, err := op.Wait(ctx)
	if err != nil {
		log.ErrorContext(ctx, consts.RespDownloadFailed, slog.Any("error", err))
		response.InternalServerError(w, consts.RespDownloadFailed)

		return
	}

	response.OK(w, map[string]string{
		"message":  consts.RespDownloadCompleted,
		"filename": filename,
		"quality":  req.Quality,
		"format":   string(req.Kind),
	})
}
