package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

// ErrUnavailable is returned when no runtime is configured or the configured
// runtime does not answer the liveness probe.
var ErrUnavailable = errors.New("language model runtime is not available")

// Summarizer condenses a visit transcript into a few sentences a supervisor
// can read instead of the full page.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from config. An empty provider name
// yields a disabled summarizer rather than an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled returns true if a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider name, or empty when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Summarize produces a short narrative summary of the transcript. It returns
// ErrUnavailable when no runtime is configured or the probe fails, so callers
// can tell "try again later" apart from a generation failure.
func (s *Summarizer) Summarize(ctx context.Context, text string) (*model.Summary, error) {
	if s.provider == nil {
		return nil, ErrUnavailable
	}
	if !s.provider.IsAvailable(ctx) {
		return nil, fmt.Errorf("%w: %s did not answer the probe", ErrUnavailable, s.provider.Name())
	}

	response, err := s.provider.Generate(ctx, GenerateRequest{
		Prompt:      summarizePrompt(text),
		Temperature: 0.3,
		MaxTokens:   s.config.MaxTokens,
		Timeout:     s.config.TextTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	summary := strings.TrimSpace(response)
	if summary == "" {
		return nil, fmt.Errorf("model returned an empty summary")
	}

	return &model.Summary{
		Text:     summary,
		Model:    s.config.Model,
		Provider: s.provider.Name(),
	}, nil
}
