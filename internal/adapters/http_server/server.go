package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configure the router. Zero values fall back to the global logger,
// a 15s handler timeout and no /metrics route.
type Options struct {
	Logger  *zerolog.Logger
	Timeout time.Duration
	Metrics http.Handler
}

type Server struct{ mux *chi.Mux }

func New(opts Options) *Server {
	l := log.Logger
	if opts.Logger != nil {
		l = *opts.Logger
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	m := chi.NewRouter()
	m.Use(chimw.RealIP, chimw.RequestID, chimw.Recoverer)
	m.Use(Timeout(opts.Timeout), Observe(l))

	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		m.Handle("/metrics", opts.Metrics)
	}
	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }
