package model

// ExtractionMethod identifies which strategy produced a result
type ExtractionMethod string

const (
	MethodOCROnly        ExtractionMethod = "ocr-only"        // Rule-based text extraction, no model involved
	MethodLLMStructured  ExtractionMethod = "llm-structured"  // Single-pass structuring prompt
	MethodLLMCategorized ExtractionMethod = "llm-categorized" // Two-phase categorize + record checks
	MethodVisionLLM      ExtractionMethod = "vision-llm"      // Multimodal read of the scanned page
	MethodManual         ExtractionMethod = "manual"          // Hand-entered, no extraction ran
)

// ConfidenceTier is the reviewer-facing bucket for a field
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// FieldConfidence grades a single form field for review. One entry exists
// for every leaf path of FormRecord regardless of whether the field was
// populated, so review UIs can iterate the list instead of the record.
type FieldConfidence struct {
	Field         string           `json:"field"`         // Dotted leaf path, e.g. "header.recipientName"
	Confidence    ConfidenceTier   `json:"confidence"`    // high, medium, low
	OCRConfidence int              `json:"ocrConfidence"` // Transcript confidence 0-100 the tier was derived from
	Source        ExtractionMethod `json:"source"`        // Strategy that produced the field
}

// ExtractionResult is the complete output envelope of one pipeline run
type ExtractionResult struct {
	Form             FormRecord        `json:"form"`
	Confidence       []FieldConfidence `json:"confidence"`
	RawText          string            `json:"rawText"`                    // Transcript the strategies worked from
	ExtractionMethod ExtractionMethod  `json:"extractionMethod"`           // Strategy that won
	OllamaAvailable  bool              `json:"ollamaAvailable"`            // Whether the local runtime answered during this run
	ValidationIssues []string          `json:"validationIssues,omitempty"` // Serialized record-check findings, categorized runs only
}

// Summary is the output of the transcript summarizer
type Summary struct {
	Text     string `json:"summary"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}
