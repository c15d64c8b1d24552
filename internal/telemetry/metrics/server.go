package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
)

// Server exposes /metrics (Prometheus text exposition) and /health on a
// chi router, the same router/middleware stack stash's REST API builds
// on, generalized here to the one surface this module's operator needs.
type Server struct {
	httpSrv *http.Server
}

// NewServer wires cors (wide open; this is a local operational
// endpoint, not a public API) and httplog request logging around the
// two routes, matching the logging-middleware-then-routes shape every
// chi router in the corpus follows.
func NewServer(addr string, reg *Registry) *Server {
	logger := httplog.NewLogger("mediaharden-metrics", httplog.Options{JSON: true})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &Server{httpSrv: &http.Server{Addr: addr, Handler: r}}
}

// ListenAndServe blocks until the server stops or errors; callers run
// it in its own goroutine and shut it down via Shutdown.
func (s *Server) ListenAndServe() error {
	telemetrylog.Infof("metrics: listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gives in-flight requests up to 5 seconds to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}
