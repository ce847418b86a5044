package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/schema"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/score"
)

// VisionExtractor sends the scanned page itself to a multimodal model,
// bypassing the OCR transcript except as a low-weight hint. It is the
// recovery path for pages OCR mangled.
type VisionExtractor struct {
	provider Provider
	config   Config
	scorer   *score.Scorer
}

// NewVisionExtractor creates an image-based extractor backed by the given provider
func NewVisionExtractor(provider Provider, config Config) *VisionExtractor {
	return &VisionExtractor{
		provider: provider,
		config:   config,
		scorer:   score.NewScorer(),
	}
}

// Extract reads the page image and asks the vision model to fill the form
// from it directly. ocrHint is the transcript OCR produced, passed along as
// context the model may consult but must not trust over the image.
func (e *VisionExtractor) Extract(ctx context.Context, imagePath, ocrHint string, ocrConfidence int) (*model.ExtractionResult, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	response, err := e.provider.Generate(ctx, GenerateRequest{
		Model:       e.config.VisionModelName(),
		Prompt:      visionPrompt(ocrHint),
		Images:      [][]byte{data},
		Temperature: 0.2,
		MaxTokens:   e.config.MaxTokens,
		Timeout:     e.config.VisionTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("vision generation failed: %w", err)
	}

	parsed, err := ParseObject(response)
	if err != nil {
		return nil, fmt.Errorf("vision response not parseable: %w", err)
	}

	record, err := schema.Validate(parsed)
	if err != nil {
		return nil, fmt.Errorf("vision response rejected: %w", err)
	}

	return &model.ExtractionResult{
		Form:             record,
		Confidence:       e.scorer.Calculate(record, ocrConfidence, model.MethodVisionLLM),
		RawText:          ocrHint,
		ExtractionMethod: model.MethodVisionLLM,
		OllamaAvailable:  true,
	}, nil
}
