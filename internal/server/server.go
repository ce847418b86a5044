// Package server exposes the extraction pipeline over a small HTTP surface:
// file extraction, raw-text extraction, transcript summarization, and a
// health endpoint. It is a thin adapter; all policy lives in the pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/ocr"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/pipeline"
)

// Extractor is the pipeline surface the server consumes
type Extractor interface {
	Extract(ctx context.Context, in pipeline.Input) *model.ExtractionResult
	RuntimeAvailable(ctx context.Context) bool
	Models(ctx context.Context) ([]string, error)
	ProviderName() string
}

// Transcriber turns an uploaded file into a transcript
type Transcriber interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Summarizer condenses a transcript; nil or disabled yields 503 on /summarize
type Summarizer interface {
	IsEnabled() bool
	Summarize(ctx context.Context, text string) (*model.Summary, error)
}

// Server is the HTTP extraction service
type Server struct {
	httpServer *http.Server
	pipeline   Extractor
	transcribe Transcriber
	summarizer Summarizer
	maxUpload  int64
	logger     *slog.Logger
}

// Config holds server wiring
type Config struct {
	Server     model.ServerConfig
	Pipeline   Extractor
	Transcribe Transcriber
	Summarizer Summarizer
	Logger     *slog.Logger
}

// New creates a server. Pipeline and Transcribe are required; Summarizer
// may be nil, which turns /summarize into a permanent 503.
func New(cfg Config) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("server requires a pipeline")
	}
	if cfg.Transcribe == nil {
		return nil, errors.New("server requires a transcriber")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 25 << 20
	}

	s := &Server{
		pipeline:   cfg.Pipeline,
		transcribe: cfg.Transcribe,
		summarizer: cfg.Summarizer,
		maxUpload:  cfg.Server.MaxUploadBytes,
		logger:     cfg.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, fmt.Sprintf("%d", cfg.Server.Port)),
		Handler:      s.withRequestID(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the context is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /extract/pdf", s.handleExtractFile)
	mux.HandleFunc("POST /extract/fill", s.handleExtractFill)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("GET /health", s.handleHealth)
}

type requestIDKey struct{}

// withRequestID tags every request with a uuid for log correlation
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		s.logger.Info("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
