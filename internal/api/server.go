// Package api serves the augmentation engine over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness and build info
//	POST /v1/boxes/{op}        one box-only operation
//	POST /v1/boxes/chain       a recipe over an extent and box
//	POST /v1/images            multipart image + recipe, returns the encoded result
//	GET  /v1/records           stored records, newest first
//	GET  /v1/records/{id}      one stored record
//
// Errors are returned as {"code": ..., "message": ...} with INVALID_* codes
// mapped to 400 and *NOT_FOUND codes to 404.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/augment/pkg/pipeline"
)

// maxUploadSize caps multipart image uploads.
const maxUploadSize = 50 << 20

// Server routes API requests to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner. The runner's Store, when set,
// backs the /v1/records routes.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/boxes/chain", s.handleChain)
		r.Post("/boxes/{op}", s.handleBoxOp)
		r.Post("/images", s.handleImage)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/{id}", s.handleGetRecord)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, errNotFound(r.URL.Path))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
