package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/cache"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

// Method identifies how a transcript was produced
type Method string

const (
	MethodPDFText  Method = "pdf-text"  // Digital PDF text layer, no OCR ran
	MethodPDFOCR   Method = "pdf-ocr"   // Scanned PDF rasterized and OCR'd per page
	MethodImageOCR Method = "image-ocr" // Single image OCR'd
	MethodText     Method = "text"      // Plain-text file passed through as-is
)

// Result is one transcript plus the signals the extraction pipeline reads:
// a 0-100 confidence estimate and the method that produced the text.
type Result struct {
	Text       string   `json:"text"`
	Confidence int      `json:"confidence"` // 0-100
	Pages      int      `json:"pages"`
	Method     Method   `json:"method"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Config configures the OCR tool invocations
type Config struct {
	Pdftotext string // binary name or absolute path; empty means "pdftotext"
	Pdftoppm  string // binary name or absolute path; empty means "pdftoppm"
	Tesseract string // binary name or absolute path; empty means "tesseract"

	Language      string        // tesseract language code, default "eng"
	DPI           int           // rasterization density for scanned PDFs, default 300
	MaxPages      int           // 0 = no limit
	Timeout       time.Duration // per-tool-invocation budget
	TSVConfidence bool          // blend tesseract word confidences into the estimate
}

// ConfigFromModel converts application config into OCR config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Language:      cfg.OCR.Language,
		DPI:           cfg.OCR.DPI,
		Timeout:       cfg.OCR.Timeout,
		TSVConfidence: cfg.OCR.TSVConfidence,
	}
}

// Extractor turns uploaded files into transcripts. It shells out to the
// poppler and tesseract tools; the pipeline itself never touches files
// beyond the optional vision image handle.
type Extractor struct {
	cfg    Config
	runner Runner
	store  cache.Cache
	logger *slog.Logger
}

// NewExtractor creates an extractor. store may be nil to disable caching.
func NewExtractor(cfg Config, store cache.Cache, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Extractor{
		cfg:    cfg,
		runner: execRunner{logger: logger},
		store:  store,
		logger: logger,
	}
}

// Extract picks a strategy by file extension and returns the transcript.
// Results are cached by content hash, so resubmitting the same scan never
// pays for a second tesseract run.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read input %s: %w", path, err)
	}

	key := cache.Key(content)
	if e.store != nil {
		if raw, ok := e.store.Get(key); ok {
			var cached Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				e.logger.Debug("ocr cache hit", "path", path)
				return cached, nil
			}
		}
	}

	start := time.Now()
	result, err := e.extract(ctx, path)
	if err != nil {
		return Result{}, err
	}
	e.logger.Info("ocr extract",
		"path", path,
		"method", string(result.Method),
		"pages", result.Pages,
		"confidence", result.Confidence,
		"ms", time.Since(start).Milliseconds(),
	)

	if e.store != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = e.store.Set(key, raw, 0)
		}
	}
	return result, nil
}

func (e *Extractor) extract(ctx context.Context, path string) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return e.extractPDF(ctx, path)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		imgCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
		return e.extractImage(imgCtx, path)
	case ".txt":
		return e.passthroughText(path)
	default:
		return Result{}, fmt.Errorf("unsupported input type: %q", ext)
	}
}

// passthroughText treats a plain-text file as an already-perfect transcript
// of unknown provenance: the characters are exact, but whether they resemble
// a contact form at all is down to the content heuristic.
func (e *Extractor) passthroughText(path string) (Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read text file: %w", err)
	}
	text := Normalize(string(content))
	return Result{
		Text:       text,
		Confidence: heuristicConfidence(text),
		Pages:      1,
		Method:     MethodText,
	}, nil
}
