package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/favicond/docs/swagger" // registers the OpenAPI document
	"github.com/raysh454/favicond/internal/app"
	"github.com/raysh454/favicond/internal/logging"
)

// maxRequestBody bounds the JSON list of sites a client may post.
const maxRequestBody = 1 << 20

// Server is the HTTP + WebSocket API surface for favicond.
type Server struct {
	cfg      app.ServerConfig
	app      *app.Application
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer creates a Server around an already wired Application. The
// Application stays owned by the caller.
func NewServer(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: application is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	s := &Server{
		cfg:    cfg.App.Config.Server,
		app:    cfg.App,
		router: chi.NewRouter(),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	if s.cfg.AllowedOrigin == "" {
		s.cfg.AllowedOrigin = "*"
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(s.metricsMiddleware)

	// CORS preflight
	r.Options("/favicons", s.optionsHandler("GET, POST"))
	r.Options("/favicons/json", s.optionsHandler("POST"))
	r.Options("/favicons/datauri", s.optionsHandler("POST"))
	r.Options("/favicons/{site}", s.optionsHandler("GET"))
	r.Options("/stored", s.optionsHandler("GET"))
	r.Options("/stored/{site}", s.optionsHandler("GET"))

	// Batches
	r.Get("/favicons", s.handleFaviconsZip)
	r.Post("/favicons", s.handleFaviconsZip)
	r.Post("/favicons/json", s.handleFaviconsJSON)
	r.Post("/favicons/datauri", s.handleFaviconsDataURI)
	r.Get("/favicons/{site}", s.handleFavicon)

	// Streaming
	r.Get("/ws/favicons", s.handleFaviconsWS)

	// Persistence
	r.Get("/stored", s.handleListStored)
	r.Get("/stored/{site}", s.handleGetStored)

	// Operations
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.app.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Batch-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware counts requests by route pattern, not raw path, so
// /favicons/{site} is one series.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.app.Metrics.ObserveHTTP(route, status)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1)); err == nil {
			fields = append(fields, logging.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}

// Run serves until ctx is done, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server", logging.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server", logging.Field{Key: "timeout", Value: s.cfg.ShutdownTimeout.String()})
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// readSites takes identifiers from repeated ?site= parameters or, when none
// are given, from a JSON array body. It writes the error response itself.
func (s *Server) readSites(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	sites := r.URL.Query()["site"]
	if len(sites) == 0 {
		var body SitesRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&body); err != nil {
			s.logger.Warn("decoding site list", logging.Field{Key: "error", Value: err.Error()})
			writeError(w, http.StatusBadRequest, "invalid JSON: expected an array of site identifiers")
			return nil, false
		}
		sites = body
	}

	if len(sites) == 0 {
		writeError(w, http.StatusBadRequest, "no sites given")
		return nil, false
	}
	if limit := s.cfg.MaxBatchSize; limit > 0 && len(sites) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("batch of %d sites exceeds the limit of %d", len(sites), limit))
		return nil, false
	}
	return sites, true
}
