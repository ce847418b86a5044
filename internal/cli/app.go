package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/cache"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/llm"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/ocr"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/pipeline"
)

// app bundles the wired components a command needs: transcription, the
// extraction pipeline, and the summarizer, all built from one config.
type app struct {
	cfg        *model.Config
	ocr        *ocr.Extractor
	pipeline   *pipeline.Pipeline
	summarizer *llm.Summarizer
	logger     *slog.Logger
}

// newApp wires the components from config
func newApp(cfg *model.Config) (*app, error) {
	level := slog.LevelWarn
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	llmCfg := llm.ConfigFromModel(cfg)
	if cfg.LLM.Disabled {
		llmCfg.Provider = ""
	}
	summarizer, err := llm.NewSummarizer(llmCfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		ocr:        ocr.NewExtractor(ocr.ConfigFromModel(cfg), newCacheStore(cfg), logger),
		pipeline:   pipe,
		summarizer: summarizer,
		logger:     logger,
	}, nil
}

// newCacheStore builds the OCR result cache per config; nil disables caching
func newCacheStore(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Dir != "" {
		return cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	return cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
}

// visionExtensions are the inputs whose original file doubles as the vision
// handle. PDFs do not: by the time the cascade runs they are text, and the
// rasterized pages are gone.
var visionExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

// ExtractFile transcribes one input file and runs the extraction cascade
// over it. confidenceOverride, when 0-100, replaces the transcriber's own
// estimate; pass -1 to keep it.
func (a *app) ExtractFileWithConfidence(ctx context.Context, path string, confidenceOverride int) (*model.ExtractionResult, error) {
	transcript, err := a.ocr.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", path, err)
	}

	confidence := transcript.Confidence
	if confidenceOverride >= 0 && confidenceOverride <= 100 {
		confidence = confidenceOverride
	}

	in := pipeline.Input{
		Text:          transcript.Text,
		OCRConfidence: confidence,
	}
	if visionExtensions[strings.ToLower(filepath.Ext(path))] {
		in.ImagePath = path
	}

	return a.pipeline.Extract(ctx, in), nil
}

// ExtractFile implements worker.FileExtractor
func (a *app) ExtractFile(ctx context.Context, path string) (*model.ExtractionResult, error) {
	return a.ExtractFileWithConfidence(ctx, path, -1)
}
