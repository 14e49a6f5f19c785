// Package server exposes the detector over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/btraven00/phishq/internal/batch"
	"github.com/btraven00/phishq/internal/checker"
	"github.com/btraven00/phishq/internal/detector"
	"github.com/btraven00/phishq/internal/extractor"
)

// Config bounds the work a single request may ask for.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBatch        int
	MaxBodyBytes    int64
	Workers         int
}

// Server serves the scoring API.
type Server struct {
	detector *detector.Detector
	logger   *logrus.Logger
	config   Config
}

// New creates a Server. A nil logger discards output.
func New(d *detector.Detector, config Config, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	if config.MaxBatch <= 0 {
		config.MaxBatch = 500
	}

	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	return &Server{detector: d, config: config, logger: logger}
}

// Routes returns the API router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/checks", s.handleChecks)
		r.Post("/score", s.handleScore)
		r.Post("/batch", s.handleBatch)
		r.Post("/extract", s.handleExtract)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.WithField("addr", s.config.Addr).Info("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		w.Header().Set("X-Request-ID", requestID)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

type scoreRequest struct {
	URL    *string `json:"url"`
	Screen bool    `json:"screen"`
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

type batchResponse struct {
	Items   []batch.Item         `json:"items"`
	Summary checker.BatchSummary `json:"summary"`
}

type extractRequest struct {
	Text  string `json:"text"`
	HTML  bool   `json:"html"`
	Score bool   `json:"score"`
}

type extractResponse struct {
	URLs   []string     `json:"urls"`
	Scores []batch.Item `json:"scores,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChecks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Checks []detector.CheckInfo `json:"checks"`
		Config detector.Config      `json:"config"`
	}{Checks: s.detector.Catalog(), Config: s.detector.Config()})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !s.decode(w, r, &req) {
		return
	}

	if req.URL == nil {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := checker.Result{Analysis: s.detector.Analyze(*req.URL)}

	if req.Screen {
		screening := s.detector.Screen(*req.URL)
		result.Screening = &screening
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}

	if len(req.URLs) > s.config.MaxBatch {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d urls exceeds the limit of %d", len(req.URLs), s.config.MaxBatch))

		return
	}

	items := s.scoreBatch(r.Context(), req.URLs)

	writeJSON(w, http.StatusOK, batchResponse{Items: items, Summary: checker.Summarize(items)})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !s.decode(w, r, &req) {
		return
	}

	text := req.Text
	if req.HTML {
		text = extractor.TextFromHTML(text)
	}

	resp := extractResponse{URLs: extractor.ExtractURLs(text)}

	if req.Score {
		if len(resp.URLs) > s.config.MaxBatch {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("%d extracted urls exceed the batch limit of %d", len(resp.URLs), s.config.MaxBatch))

			return
		}

		resp.Scores = s.scoreBatch(r.Context(), resp.URLs)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) scoreBatch(ctx context.Context, urls []string) []batch.Item {
	return batch.NewRunner(s.detector,
		batch.WithWorkers(s.config.Workers),
		batch.WithLogger(s.logger),
	).ScoreBatch(ctx, urls)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())

		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
