package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/schema"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/score"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/validate"
)

// Categorizer runs the two-phase extraction: a few-shot categorize prompt
// followed by record checks that clean and annotate the parsed object before
// it is merged into a form record. It handles messy transcripts better than
// the single-pass strategy because the worked examples anchor the model.
type Categorizer struct {
	provider Provider
	config   Config
	scorer   *score.Scorer
}

// NewCategorizer creates a two-phase extractor backed by the given provider
func NewCategorizer(provider Provider, config Config) *Categorizer {
	return &Categorizer{
		provider: provider,
		config:   config,
		scorer:   score.NewScorer(),
	}
}

// Extract prompts the model with worked examples, checks the parsed reply
// for placeholder junk and inconsistencies, then merges the cleaned values
// over an empty record. Check findings ride along in ValidationIssues and
// are prepended to additionalNotes so they survive export to the PDF.
func (c *Categorizer) Extract(ctx context.Context, text string, ocrConfidence int) (*model.ExtractionResult, error) {
	response, err := c.provider.Generate(ctx, GenerateRequest{
		Prompt:      categorizePrompt(text),
		Temperature: 0.1,
		MaxTokens:   c.config.MaxTokens,
		Stop:        categorizeStop,
		Timeout:     c.config.TextTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("categorize generation failed: %w", err)
	}

	parsed, err := ParseObject(response)
	if err != nil {
		return nil, fmt.Errorf("categorize response not parseable: %w", err)
	}

	// Checks run before the merge: they clear placeholder values in place,
	// so the merge below only sees cleaned strings.
	issues := validate.CheckRecord(parsed)

	record := mergeRecord(parsed)

	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, issue.Line())
	}
	if len(lines) > 0 {
		record.Narrative.AdditionalNotes = prependIssues(lines, record.Narrative.AdditionalNotes)
	}

	return &model.ExtractionResult{
		Form:             record,
		Confidence:       c.scorer.Calculate(record, ocrConfidence, model.MethodLLMCategorized),
		RawText:          text,
		ExtractionMethod: model.MethodLLMCategorized,
		OllamaAvailable:  true,
		ValidationIssues: lines,
	}, nil
}

// mergeRecord folds the categorized object over an empty record. String
// fields keep the model's value only when it is a non-empty string;
// checkboxes keep any boolean the model produced. Values of the wrong type
// fall back to the empty record's default.
func mergeRecord(m map[string]any) model.FormRecord {
	record := schema.Empty()

	record.Header.RecipientName = stringField(m, "header", "recipientName")
	record.Header.Date = stringField(m, "header", "date")
	record.Header.Time = stringField(m, "header", "time")
	record.Header.RecipientID = stringField(m, "header", "recipientId")
	record.Header.DOB = stringField(m, "header", "dob")
	record.Header.Location = stringField(m, "header", "location")

	record.CareCoordinationType.SIH = boolField(m, "careCoordinationType", "sih")
	record.CareCoordinationType.HCBW = boolField(m, "careCoordinationType", "hcbw")

	record.Narrative.Observations = stringField(m, "narrative", "observations")
	record.Narrative.HealthStatus = stringField(m, "narrative", "healthStatus")
	record.Narrative.ReviewOfServices = stringField(m, "narrative", "reviewOfServices")
	record.Narrative.GoalsProgress = stringField(m, "narrative", "goalsProgress")
	record.Narrative.AdditionalNotes = stringField(m, "narrative", "additionalNotes")
	record.Narrative.FollowUpTasks = stringField(m, "narrative", "followUpTasks")

	record.Signature.CoordinatorName = stringField(m, "signature", "coordinatorName")
	record.Signature.Signature = stringField(m, "signature", "signature")
	record.Signature.DateSigned = stringField(m, "signature", "dateSigned")

	return record
}

// prependIssues places the check findings ahead of whatever the model put
// in additionalNotes, separated by a divider when both are present.
func prependIssues(lines []string, notes string) string {
	joined := strings.Join(lines, "\n")
	if notes == "" {
		return joined
	}
	return joined + "\n---\n" + notes
}

func stringField(m map[string]any, section, key string) string {
	sec, ok := m[section].(map[string]any)
	if !ok {
		return ""
	}
	s, ok := sec[key].(string)
	if !ok {
		return ""
	}
	return s
}

func boolField(m map[string]any, section, key string) bool {
	sec, ok := m[section].(map[string]any)
	if !ok {
		return false
	}
	b, ok := sec[key].(bool)
	if !ok {
		return false
	}
	return b
}
