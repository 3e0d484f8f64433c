// Package server hosts a running animation over HTTP: the live page, frame
// snapshots in every render format, lifecycle controls and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/TFMV/giantgraph/animation"
	"github.com/TFMV/giantgraph/metrics"
	"github.com/TFMV/giantgraph/models"
	"github.com/TFMV/giantgraph/render"
)

// Config for the server
type Config struct {
	Port           int
	Background     string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *metrics.Registry
}

// session is the animation currently served
type session struct {
	ctrl *animation.Controller
	buf  *render.Buffer
}

// Server serves one animation at a time
type Server struct {
	config  Config
	logger  *zap.Logger
	current atomic.Pointer[session]
	router  chi.Router
}

// New creates a server for ctrl, whose frames are painted on buf
func New(ctrl *animation.Controller, buf *render.Buffer, config Config) *Server {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Background == "" {
		config.Background = "#000000"
	}

	s := &Server{
		config: config,
		logger: config.Logger,
	}
	s.current.Store(&session{ctrl: ctrl, buf: buf})
	s.router = s.routes()
	return s
}

// Swap replaces the served animation and ends the previous one
func (s *Server) Swap(ctrl *animation.Controller, buf *render.Buffer) {
	old := s.current.Swap(&session{ctrl: ctrl, buf: buf})
	if old != nil && old.ctrl != ctrl {
		old.ctrl.End()
	}
	s.logger.Info("animation swapped", zap.String("animation", ctrl.ID()))
}

// Replace swaps in ctrl and starts it once the previous animation has
// ended, so the shared observer sees the new animation's events last
func (s *Server) Replace(ctrl *animation.Controller, buf *render.Buffer) {
	s.Swap(ctrl, buf)
	ctrl.Start()
}

// Controller returns the served animation
func (s *Server) Controller() *animation.Controller {
	return s.current.Load().ctrl
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.requestLogger)
	if len(s.config.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/", s.handleIndex)
	router.Get("/health", s.handleHealth)
	router.Get("/frame.{format}", s.handleFrameFormat)

	router.Route("/api", func(r chi.Router) {
		r.Get("/frame", s.handleFrame)
		r.Get("/state", s.handleState)
		r.Post("/start", s.handleLifecycle((*animation.Controller).Start))
		r.Post("/pause", s.handleLifecycle((*animation.Controller).Pause))
		r.Post("/unpause", s.handleLifecycle((*animation.Controller).Unpause))
		r.Post("/end", s.handleLifecycle((*animation.Controller).End))
		r.Post("/hover", s.handleHover)
	})

	if s.config.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.config.Metrics.Handler())
	}

	return router
}

// requestLogger logs and measures every request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.config.Metrics != nil {
			s.config.Metrics.RecordHTTPRequest(r.Method, route, fmt.Sprint(ww.Status()), duration)
		}

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", duration),
			zap.String("requestID", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// frame returns the latest painted frame, or the controller's snapshot
// before the first paint
func (sess *session) frame() *models.Frame {
	if f := sess.buf.Latest(); f != nil {
		return f
	}
	return sess.ctrl.Frame()
}

func (s *Server) options(format string) *render.OutputOptions {
	options := render.NewDefaultOptions(format)
	options.Background = s.config.Background
	return options
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.write(w, s.current.Load().frame(), s.options("html"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.write(w, s.current.Load().frame(), s.options("json"))
}

func (s *Server) handleFrameFormat(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	switch format {
	case "svg", "txt", "png", "dot", "json":
	default:
		http.Error(w, "unsupported format: "+format, http.StatusNotFound)
		return
	}

	options := s.options(format)
	options.ShowStats = r.URL.Query().Get("stats") == "1"
	s.write(w, s.current.Load().frame(), options)
}

func (s *Server) write(w http.ResponseWriter, frame *models.Frame, options *render.OutputOptions) {
	output, err := render.GenerateWithOptions(frame, options)
	if err != nil {
		s.logger.Error("render failed", zap.String("format", options.Format), zap.Error(err))
		http.Error(w, "error generating frame: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(options.Format))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(output)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller().Stats())
}

func (s *Server) handleLifecycle(action func(*animation.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := s.Controller()
		action(ctrl)
		writeJSON(w, http.StatusOK, ctrl.Stats())
	}
}

// hoverRequest is a pointer position in viewport coordinates
type hoverRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type hoverResponse struct {
	Boosted int `json:"boosted"`
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid hover body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil || !finite(*req.X) || !finite(*req.Y) {
		http.Error(w, "hover needs finite x and y", http.StatusBadRequest)
		return
	}

	boosted := s.Controller().Hover(models.Point{X: *req.X, Y: *req.Y})
	writeJSON(w, http.StatusOK, hoverResponse{Boosted: boosted})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Run listens on the configured port until ctx is done, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.Int("port", s.config.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
