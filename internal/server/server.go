package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/catalog"
	"github.com/wantzavod/musicsync/internal/config"
	"github.com/wantzavod/musicsync/internal/httpx"
	"github.com/wantzavod/musicsync/internal/syncer"
)

// FileResolver resolves an opaque audio file handle to a direct
// download URL. Implemented by the telegram client.
type FileResolver interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Server holds the HTTP handler dependencies.
type Server struct {
	cfg      *config.Config
	store    catalog.Store
	syncer   *syncer.Syncer
	resolver FileResolver
	httpc    *httpx.Client
	log      zerolog.Logger
}

// New creates the server. The syncer may have a nil orchestrator; the
// cover endpoints then answer with configuration errors.
func New(cfg *config.Config, store catalog.Store, sy *syncer.Syncer, resolver FileResolver, httpc *httpx.Client, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		syncer:   sy,
		resolver: resolver,
		httpc:    httpc,
		log:      log.With().Str("component", "server").Logger(),
	}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))
	r.Use(SecurityHeaders())

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/music", func(r chi.Router) {
		r.Get("/albums", s.handleAlbums)
		r.Get("/sync-status", s.handleSyncStatus)
		r.Get("/playlist/{albumID}", s.handlePlaylist)
		r.Get("/cover-status/{taskID}", s.handleCoverStatus)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.cfg.Server.SyncRateLimit, s.cfg.Server.RateWindow))
			r.Post("/sync", s.handleSync)
		})

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.cfg.Server.CoverRateLimit, s.cfg.Server.RateWindow))
			r.Post("/cover/{albumID}", s.handleRegenerateCover)
		})

		r.Post("/apply-cover/{albumID}", s.handleApplyCover)

		r.Group(func(r chi.Router) {
			r.Use(MediaHeaders())
			r.Get("/file/{fileID}", s.handleFile)
			r.Get("/cover-file/{filename}", s.handleCoverFile)
		})
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("response encode failed")
	}
}

// writeError emits the uniform {error} body. Upstream details stay in
// the logs, never in the response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
