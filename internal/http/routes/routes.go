package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/almanac/cache"
	appmw "github.com/briangreenhill/almanac/internal/http/middleware"
	"github.com/briangreenhill/almanac/internal/upstream"
	"github.com/briangreenhill/almanac/pipeline"
	"github.com/briangreenhill/almanac/plugins"
	"github.com/briangreenhill/almanac/render"
)

// StatsSource reports cache contents per source.
type StatsSource interface {
	CacheStats() map[string]cache.Summary
}

type Server struct {
	Router  *chi.Mux
	Plugins *plugins.Registry
	Stats   StatsSource
}

type ServerOptions struct {
	Logger  zerolog.Logger
	Plugins *plugins.Registry
	Stats   StatsSource
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(chimw.RealIP)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Plugins: opts.Plugins, Stats: opts.Stats}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("writing health check response")
		}
	})

	r.Route("/v1", func(vr chi.Router) {
		vr.Use(appmw.Encoding)
		vr.Get("/today-in-history", s.handleHistory)
		vr.Get("/douban/weekly", s.handleDouban)
		vr.Get("/douban/weekly/{category}", s.handleDouban)
		vr.Get("/cache", s.handleCache)
	})

	return s
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "history", r.URL.Query().Get("date"))
}

func (s *Server) handleDouban(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		category = r.URL.Query().Get("category")
	}
	s.serve(w, r, "douban", category)
}

// serve runs the named plugin and writes its output in the requested encoding.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, name, param string) {
	enc := render.FromContext(r.Context())

	p, ok := s.Plugins.GetPlugin(name)
	if !ok {
		s.write(w, r, http.StatusNotFound, render.Error(enc, http.StatusNotFound, nil))
		return
	}

	out, err := p.Get(r.Context(), param, enc)
	if err != nil {
		status := StatusFor(err)
		ev := hlog.FromRequest(r).Warn()
		if status >= http.StatusInternalServerError {
			ev = hlog.FromRequest(r).Error()
		}
		ev.Err(err).Str("plugin", name).Str("param", param).Int("status", status).Msg("request failed")
		s.write(w, r, status, render.Error(enc, status, err))
		return
	}
	s.write(w, r, http.StatusOK, out)
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	stats := map[string]cache.Summary{}
	if s.Stats != nil {
		stats = s.Stats.CacheStats()
	}
	b, err := json.Marshal(render.Envelope{Code: http.StatusOK, Message: render.Message, Data: stats})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encoding cache stats")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.write(w, r, http.StatusOK, render.Output{ContentType: render.ContentTypeJSON, Body: b})
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, out render.Output) {
	w.Header().Set("Content-Type", out.ContentType)
	w.WriteHeader(status)
	if _, err := w.Write(out.Body); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("writing response")
	}
}

// StatusFor maps a pipeline failure to an HTTP status: bad input is 400,
// anything the upstream got wrong is 502.
func StatusFor(err error) int {
	var te *upstream.TransportError
	switch {
	case errors.Is(err, pipeline.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.As(err, &te), errors.Is(err, upstream.ErrSchema):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
