package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/extract"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/llm"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

const (
	// visionConfidenceCeiling gates the vision strategy: the image is only
	// worth a 2-minute model call when the OCR transcript is known bad
	visionConfidenceCeiling = 50

	// categorizeConfidenceCeiling gates the categorizer: mediocre OCR gets
	// the self-validating two-phase treatment, clean OCR goes straight to
	// the cheaper single-pass strategy
	categorizeConfidenceCeiling = 80
)

// Input is one extraction request
type Input struct {
	// Text is the OCR transcript
	Text string

	// OCRConfidence is the upstream transcript confidence, 0-100
	OCRConfidence int

	// ImagePath points at the scanned page, when one exists. Empty disables
	// the vision strategy for this request.
	ImagePath string
}

// Pipeline runs the extraction strategy cascade. Strategies are tried in
// order of decreasing expected accuracy and cost, and the cascade always
// terminates in the rule-based extractor, so Extract cannot fail: the worst
// possible input still yields a valid, low-confidence form.
//
// Strategies within one request run sequentially, never speculatively in
// parallel. The local runtime is typically GPU-bound and single-threaded;
// racing three prompts against it would slow all of them down.
type Pipeline struct {
	provider    llm.Provider
	latch       *Latch
	vision      *llm.VisionExtractor
	categorizer *llm.Categorizer
	structured  *llm.StructuredExtractor
	rules       *extract.RuleBased
	config      llm.Config
	logger      *slog.Logger
}

// New builds a pipeline from application config. A disabled or unconfigured
// LLM yields a pipeline that only ever runs the rule-based extractor; a
// provider construction error is returned rather than masked, since it means
// the config names a provider that cannot exist.
func New(cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	llmCfg := llm.ConfigFromModel(cfg)

	var provider llm.Provider
	if !cfg.LLM.Disabled {
		p, err := llm.NewProvider(llmCfg)
		if err != nil {
			return nil, fmt.Errorf("create LLM provider: %w", err)
		}
		provider = p
	}

	return NewWithProvider(provider, llmCfg, NewLatch(), logger), nil
}

// NewWithProvider builds a pipeline around an explicit provider and latch.
// A nil provider means LLM use is disabled. The latch is injected rather
// than created internally so tests get a fresh one and long-lived callers
// can share one across pipelines.
func NewWithProvider(provider llm.Provider, cfg llm.Config, latch *Latch, logger *slog.Logger) *Pipeline {
	if latch == nil {
		latch = NewLatch()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		provider:    provider,
		latch:       latch,
		vision:      llm.NewVisionExtractor(provider, cfg),
		categorizer: llm.NewCategorizer(provider, cfg),
		structured:  llm.NewStructuredExtractor(provider, cfg),
		rules:       extract.NewRuleBased(),
		config:      cfg,
		logger:      logger,
	}
}

// Extract runs the strategy cascade for one request. The returned result is
// always a fully valid form; degradation shows up as extractionMethod and
// per-field confidence, never as an error.
func (p *Pipeline) Extract(ctx context.Context, in Input) *model.ExtractionResult {
	reachable := p.RuntimeAvailable(ctx)

	if p.tryable(reachable) && in.ImagePath != "" && in.OCRConfidence < visionConfidenceCeiling && p.visionCapable() {
		result, err := p.vision.Extract(ctx, in.ImagePath, in.Text, in.OCRConfidence)
		if err == nil {
			return result
		}
		p.noteFailure("vision", err)
	}

	if p.tryable(reachable) && in.OCRConfidence < categorizeConfidenceCeiling {
		result, err := p.categorizer.Extract(ctx, in.Text, in.OCRConfidence)
		if err == nil {
			return result
		}
		p.noteFailure("categorize", err)
	}

	if p.tryable(reachable) {
		result, err := p.structured.Extract(ctx, in.Text, in.OCRConfidence)
		if err == nil {
			return result
		}
		p.noteFailure("structured", err)
	}

	return p.rules.Extract(in.Text, in.OCRConfidence, reachable)
}

// RuntimeAvailable is the liveness predicate for the model runtime. It
// costs at most the probe timeout, and nothing at all once the latch has
// tripped or when LLM use is disabled.
func (p *Pipeline) RuntimeAvailable(ctx context.Context) bool {
	if p.provider == nil || p.latch.Tripped() {
		return false
	}
	return p.provider.IsAvailable(ctx)
}

// Models lists what the runtime is serving, for the health surface
func (p *Pipeline) Models(ctx context.Context) ([]string, error) {
	if p.provider == nil {
		return nil, llm.ErrUnavailable
	}
	return p.provider.ListModels(ctx)
}

// ProviderName returns the configured provider name, or empty when disabled
func (p *Pipeline) ProviderName() string {
	if p.provider == nil {
		return ""
	}
	return p.provider.Name()
}

// Latch exposes the session latch, mainly so a server can report it
func (p *Pipeline) Latch() *Latch {
	return p.latch
}

// tryable gates each LLM step: the runtime must have answered the probe and
// no strategy may have tripped the latch since, including earlier steps of
// this same request.
func (p *Pipeline) tryable(reachable bool) bool {
	return reachable && !p.latch.Tripped()
}

// visionCapable reports whether the configured vision model looks
// multimodal. There is no capability endpoint to ask, so the name decides.
func (p *Pipeline) visionCapable() bool {
	return llm.IsMultimodal(p.config.VisionModelName())
}

// noteFailure logs a failed strategy and trips the latch on timeouts.
// Non-timeout failures (malformed JSON, schema rejection) say nothing about
// the runtime's health, so they fall through without latching.
func (p *Pipeline) noteFailure(strategy string, err error) {
	if isTimeout(err) {
		p.latch.Trip()
		p.logger.Warn("model runtime timed out, disabling LLM strategies for this session",
			"strategy", strategy, "error", err)
		return
	}
	p.logger.Debug("extraction strategy failed, falling through",
		"strategy", strategy, "error", err)
}

// isTimeout classifies an error as timeout-class: a deadline hit or a
// network-level timeout. These are the only failures worth latching.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
