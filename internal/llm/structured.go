package llm

import (
	"context"
	"fmt"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/schema"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/score"
)

// StructuredExtractor asks a text model to transcribe OCR output into the
// form's JSON shape in a single pass.
type StructuredExtractor struct {
	provider Provider
	config   Config
	scorer   *score.Scorer
}

// NewStructuredExtractor creates a single-pass extractor backed by the given provider
func NewStructuredExtractor(provider Provider, config Config) *StructuredExtractor {
	return &StructuredExtractor{
		provider: provider,
		config:   config,
		scorer:   score.NewScorer(),
	}
}

// Extract prompts the model with the transcript and validates the reply
// against the form schema. Any failure returns an error so the caller can
// fall through to the next strategy.
func (e *StructuredExtractor) Extract(ctx context.Context, text string, ocrConfidence int) (*model.ExtractionResult, error) {
	response, err := e.provider.Generate(ctx, GenerateRequest{
		Prompt:      structuredPrompt(text),
		Temperature: 0.1,
		MaxTokens:   e.config.MaxTokens,
		Timeout:     e.config.TextTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("structured generation failed: %w", err)
	}

	parsed, err := ParseObject(response)
	if err != nil {
		return nil, fmt.Errorf("structured response not parseable: %w", err)
	}

	record, err := schema.Validate(parsed)
	if err != nil {
		return nil, fmt.Errorf("structured response rejected: %w", err)
	}

	return &model.ExtractionResult{
		Form:             record,
		Confidence:       e.scorer.Calculate(record, ocrConfidence, model.MethodLLMStructured),
		RawText:          text,
		ExtractionMethod: model.MethodLLMStructured,
		OllamaAvailable:  true,
	}, nil
}
