package score

import (
	"encoding/json"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/schema"
)

// Scorer grades every form field for reviewer attention
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate produces one FieldConfidence per leaf field, in template order.
// It is a total function of (record, ocrConfidence, method): no I/O, no
// randomness, no state. Tiers start from the OCR confidence and are adjusted
// by how the record was produced:
//   - rule-based matching is less trustworthy than the raw OCR number, so
//     ocr-only demotes one tier
//   - the categorizer runs its own validation pass, so llm-categorized
//     promotes populated fields one tier
//   - an empty value is never high confidence, whatever produced it
//   - checkboxes are booleans and booleans are never "empty", so they skip
//     the empty-value floor
func (s *Scorer) Calculate(record model.FormRecord, ocrConfidence int, method model.ExtractionMethod) []model.FieldConfidence {
	base := baseTier(ocrConfidence)
	values := leafValues(record)

	out := make([]model.FieldConfidence, 0, len(schema.Paths()))
	for _, f := range schema.Fields() {
		tier := base

		populated := f.Kind == schema.KindCheckbox || isPopulated(values[f.Path])

		switch method {
		case model.MethodOCROnly:
			tier = demote(tier)
		case model.MethodLLMCategorized:
			if populated {
				tier = promote(tier)
			}
		}

		if !populated {
			tier = model.ConfidenceLow
		}

		out = append(out, model.FieldConfidence{
			Field:         f.Path,
			Confidence:    tier,
			OCRConfidence: ocrConfidence,
			Source:        method,
		})
	}
	return out
}

// baseTier maps a 0-100 OCR confidence to a coarse tier
func baseTier(confidence int) model.ConfidenceTier {
	switch {
	case confidence > 80:
		return model.ConfidenceHigh
	case confidence > 50:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func demote(tier model.ConfidenceTier) model.ConfidenceTier {
	switch tier {
	case model.ConfidenceHigh:
		return model.ConfidenceMedium
	case model.ConfidenceMedium:
		return model.ConfidenceLow
	default:
		return model.ConfidenceLow
	}
}

func promote(tier model.ConfidenceTier) model.ConfidenceTier {
	switch tier {
	case model.ConfidenceLow:
		return model.ConfidenceMedium
	case model.ConfidenceMedium:
		return model.ConfidenceHigh
	default:
		return model.ConfidenceHigh
	}
}

// isPopulated reports whether a leaf value carries signal. Strings count
// when non-blank; booleans are handled by the checkbox exemption before this
// is consulted.
func isPopulated(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

// leafValues flattens the record into dotted-path lookups. The record always
// marshals cleanly (plain strings and bools), so errors cannot occur here.
func leafValues(record model.FormRecord) map[string]any {
	raw, err := json.Marshal(record)
	if err != nil {
		return map[string]any{}
	}
	var sections map[string]map[string]any
	if err := json.Unmarshal(raw, &sections); err != nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(schema.Paths()))
	for section, leaves := range sections {
		for leaf, value := range leaves {
			out[section+"."+leaf] = value
		}
	}
	return out
}
