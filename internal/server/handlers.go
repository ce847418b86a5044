package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/llm"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/pipeline"
)

// fillConfidenceDefault and fillConfidenceCeiling shape the raw-text
// endpoint: dictated or pasted text carries no OCR signal, so its confidence
// is pinned low enough that the categorizer path runs.
const (
	fillConfidenceDefault = 40
	fillConfidenceCeiling = 60
)

// imageExtensions are upload types the vision strategy can consume directly
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

// handleExtractFile accepts a multipart upload, transcribes it, and runs
// the extraction cascade. Image uploads keep their temp path alive through
// the pipeline call so the vision strategy can read the original page.
func (s *Server) handleExtractFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmpPath, err := s.saveUpload(file, ext)
	if err != nil {
		s.logger.Error("save upload failed", "id", requestID(ctx), "error", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer func() { _ = os.Remove(tmpPath) }()

	transcript, err := s.transcribe.Extract(ctx, tmpPath)
	if err != nil {
		s.logger.Error("transcription failed", "id", requestID(ctx), "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read the uploaded file")
		return
	}

	in := pipeline.Input{
		Text:          transcript.Text,
		OCRConfidence: transcript.Confidence,
	}
	if imageExtensions[ext] {
		in.ImagePath = tmpPath
	}

	result := s.pipeline.Extract(ctx, in)
	s.logger.Info("extraction complete",
		"id", requestID(ctx),
		"file", header.Filename,
		"ocr_method", string(transcript.Method),
		"ocr_confidence", transcript.Confidence,
		"method", string(result.ExtractionMethod),
	)
	writeJSON(w, http.StatusOK, result)
}

type fillRequest struct {
	RawText    string `json:"rawText"`
	Confidence *int   `json:"confidence,omitempty"`
}

// handleExtractFill runs the cascade over caller-supplied raw text. The
// confidence is clamped low so the self-validating categorizer handles what
// is usually hand-typed or dictated content.
func (s *Server) handleExtractFill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		writeError(w, http.StatusBadRequest, "missing rawText")
		return
	}

	confidence := fillConfidenceDefault
	if req.Confidence != nil {
		confidence = *req.Confidence
		if confidence > fillConfidenceCeiling {
			confidence = fillConfidenceCeiling
		}
		if confidence < 0 {
			confidence = 0
		}
	}

	result := s.pipeline.Extract(ctx, pipeline.Input{
		Text:          req.RawText,
		OCRConfidence: confidence,
	})
	s.logger.Info("fill extraction complete",
		"id", requestID(ctx),
		"confidence", confidence,
		"method", string(result.ExtractionMethod),
	)
	writeJSON(w, http.StatusOK, result)
}

type summarizeRequest struct {
	Text string `json:"text"`
}

// handleSummarize produces a short narrative summary. Unlike extraction,
// it has no fallback: no model means 503.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "missing text")
		return
	}

	if s.summarizer == nil || !s.summarizer.IsEnabled() {
		writeError(w, http.StatusServiceUnavailable, "language model is not configured")
		return
	}

	summary, err := s.summarizer.Summarize(ctx, req.Text)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "language model is not available")
			return
		}
		s.logger.Error("summarize failed", "id", requestID(ctx), "error", err)
		writeError(w, http.StatusInternalServerError, "summary generation failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type healthResponse struct {
	Status          string   `json:"status"`
	OllamaAvailable bool     `json:"ollamaAvailable"`
	Provider        string   `json:"provider,omitempty"`
	Models          []string `json:"models,omitempty"`
}

// handleHealth reports liveness plus what the model runtime is serving.
// The server itself is healthy even when the runtime is down; extraction
// degrades to rule-based rather than failing.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := healthResponse{
		Status:   "ok",
		Provider: s.pipeline.ProviderName(),
	}
	if s.pipeline.RuntimeAvailable(ctx) {
		resp.OllamaAvailable = true
		if models, err := s.pipeline.Models(ctx); err == nil {
			resp.Models = models
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// saveUpload spools a multipart part to a temp file, preserving the
// extension so the transcriber can pick its strategy
func (s *Server) saveUpload(file io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "ara-upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
