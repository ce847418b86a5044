package llm

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

const fullResponseJSON = `{
  "header": {
    "recipientName": "Maria Lopez",
    "date": "03/15/2024",
    "time": "10:30 AM",
    "recipientId": "AK123456",
    "dob": "07/22/1961",
    "location": "Recipient's home"
  },
  "careCoordinationType": {"sih": true, "hcbw": false},
  "narrative": {
    "observations": "Recipient was alert and in good spirits throughout the visit.",
    "healthStatus": "Blood pressure stable, medications unchanged since last month.",
    "reviewOfServices": "Meal delivery arriving on schedule, no missed days reported.",
    "goalsProgress": "Walking to the mailbox daily as planned.",
    "additionalNotes": "Family requests weekend call.",
    "followUpTasks": "Call PCP to confirm April appointment."
  },
  "signature": {
    "coordinatorName": "S. Begay",
    "signature": "S. Begay",
    "dateSigned": "03/15/2024"
  }
}`

func testConfig() Config {
	return Config{
		Provider:      "ollama",
		Model:         "llama3.2",
		VisionModel:   "llava",
		TextTimeout:   60 * time.Second,
		VisionTimeout: 120 * time.Second,
		MaxTokens:     1024,
	}
}

// mutatedResponse parses the clean fixture, applies a mutation, and returns
// the re-serialized JSON
func mutatedResponse(t *testing.T, mutate func(m map[string]any)) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(fullResponseJSON), &m); err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	mutate(m)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}
	return string(out)
}

func TestStructuredExtractor_Success(t *testing.T) {
	mock := &MockProvider{available: true, response: fullResponseJSON}
	extractor := NewStructuredExtractor(mock, testConfig())

	transcript := "Recipient Name: Maria Lopez\nDate: 03/15/2024"
	result, err := extractor.Extract(context.Background(), transcript, 85)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Form.Header.RecipientName != "Maria Lopez" {
		t.Errorf("Expected recipient name, got %q", result.Form.Header.RecipientName)
	}
	if !result.Form.CareCoordinationType.SIH {
		t.Error("Expected SIH checkbox to carry through")
	}
	if result.ExtractionMethod != model.MethodLLMStructured {
		t.Errorf("Expected method llm-structured, got %s", result.ExtractionMethod)
	}
	if !result.OllamaAvailable {
		t.Error("Expected runtime to be marked available")
	}
	if result.RawText != transcript {
		t.Error("Expected transcript to be carried in the result")
	}
	if len(result.Confidence) != 17 {
		t.Errorf("Expected 17 confidence entries, got %d", len(result.Confidence))
	}

	if !strings.Contains(mock.lastReq.Prompt, "Maria Lopez") {
		t.Error("Expected transcript embedded in the prompt")
	}
	if mock.lastReq.Timeout != 60*time.Second {
		t.Errorf("Expected text timeout, got %v", mock.lastReq.Timeout)
	}
	if mock.lastReq.Temperature != 0.1 {
		t.Errorf("Expected near-zero temperature, got %v", mock.lastReq.Temperature)
	}
}

func TestStructuredExtractor_FencedResponse(t *testing.T) {
	mock := &MockProvider{available: true, response: "```json\n" + fullResponseJSON + "\n```"}
	extractor := NewStructuredExtractor(mock, testConfig())

	result, err := extractor.Extract(context.Background(), "transcript", 85)
	if err != nil {
		t.Fatalf("Expected fenced JSON to parse, got %v", err)
	}
	if result.Form.Header.RecipientName != "Maria Lopez" {
		t.Errorf("Expected fields from fenced JSON, got %q", result.Form.Header.RecipientName)
	}
}

func TestStructuredExtractor_ProseResponse(t *testing.T) {
	mock := &MockProvider{available: true, response: "I am unable to read this form."}
	extractor := NewStructuredExtractor(mock, testConfig())

	_, err := extractor.Extract(context.Background(), "transcript", 85)
	if err == nil {
		t.Fatal("Expected error for prose response, got nil")
	}
}

func TestStructuredExtractor_SchemaRejects(t *testing.T) {
	response := mutatedResponse(t, func(m map[string]any) {
		m["header"].(map[string]any)["date"] = 12345
	})
	mock := &MockProvider{available: true, response: response}
	extractor := NewStructuredExtractor(mock, testConfig())

	_, err := extractor.Extract(context.Background(), "transcript", 85)
	if err == nil {
		t.Fatal("Expected schema rejection, got nil")
	}
	if !strings.Contains(err.Error(), "header.date") {
		t.Errorf("Expected offending path in error, got %v", err)
	}
}

func TestStructuredExtractor_ProviderError(t *testing.T) {
	mock := &MockProvider{available: true, err: context.DeadlineExceeded}
	extractor := NewStructuredExtractor(mock, testConfig())

	_, err := extractor.Extract(context.Background(), "transcript", 85)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestVisionExtractor_Success(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "page.png")
	raw := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	if err := os.WriteFile(imagePath, raw, 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}

	mock := &MockProvider{available: true, response: fullResponseJSON}
	extractor := NewVisionExtractor(mock, testConfig())

	result, err := extractor.Extract(context.Background(), imagePath, "garbled ocr hint", 30)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.ExtractionMethod != model.MethodVisionLLM {
		t.Errorf("Expected method vision-llm, got %s", result.ExtractionMethod)
	}
	if result.RawText != "garbled ocr hint" {
		t.Error("Expected OCR hint carried as raw text")
	}

	if mock.lastReq.Model != "llava" {
		t.Errorf("Expected vision model llava, got %s", mock.lastReq.Model)
	}
	if len(mock.lastReq.Images) != 1 || string(mock.lastReq.Images[0]) != string(raw) {
		t.Error("Expected raw image bytes on the request")
	}
	if mock.lastReq.Timeout != 120*time.Second {
		t.Errorf("Expected vision timeout, got %v", mock.lastReq.Timeout)
	}
	if !strings.Contains(mock.lastReq.Prompt, "garbled ocr hint") {
		t.Error("Expected OCR hint embedded in the prompt")
	}
}

func TestVisionExtractor_MissingImage(t *testing.T) {
	mock := &MockProvider{available: true, response: fullResponseJSON}
	extractor := NewVisionExtractor(mock, testConfig())

	_, err := extractor.Extract(context.Background(), "/nonexistent/page.png", "", 30)
	if err == nil {
		t.Fatal("Expected error for missing image, got nil")
	}
	if mock.calls != 0 {
		t.Error("Expected no generate call when the image cannot be read")
	}
}

func TestVisionExtractor_ProseResponse(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(imagePath, []byte("png"), 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}

	mock := &MockProvider{available: true, response: "The image shows a form."}
	extractor := NewVisionExtractor(mock, testConfig())

	_, err := extractor.Extract(context.Background(), imagePath, "", 30)
	if err == nil {
		t.Fatal("Expected error for prose response, got nil")
	}
}

func TestCategorizer_Success(t *testing.T) {
	mock := &MockProvider{available: true, response: fullResponseJSON}
	categorizer := NewCategorizer(mock, testConfig())

	result, err := categorizer.Extract(context.Background(), "transcript text", 75)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.ExtractionMethod != model.MethodLLMCategorized {
		t.Errorf("Expected method llm-categorized, got %s", result.ExtractionMethod)
	}
	if result.Form.Header.RecipientName != "Maria Lopez" {
		t.Errorf("Expected merged name, got %q", result.Form.Header.RecipientName)
	}
	if result.Form.Narrative.AdditionalNotes != "Family requests weekend call." {
		t.Errorf("Expected notes untouched on a clean record, got %q", result.Form.Narrative.AdditionalNotes)
	}
	if len(result.ValidationIssues) != 0 {
		t.Errorf("Expected no issues on a clean record, got %v", result.ValidationIssues)
	}

	if len(mock.lastReq.Stop) == 0 || mock.lastReq.Stop[0] != "\nTranscript:" {
		t.Errorf("Expected stop sequences on the call, got %v", mock.lastReq.Stop)
	}
}

func TestCategorizer_PlaceholderCleared(t *testing.T) {
	response := mutatedResponse(t, func(m map[string]any) {
		m["header"].(map[string]any)["location"] = "string"
	})
	mock := &MockProvider{available: true, response: response}
	categorizer := NewCategorizer(mock, testConfig())

	result, err := categorizer.Extract(context.Background(), "transcript", 75)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Form.Header.Location != "" {
		t.Errorf("Expected placeholder cleared, got %q", result.Form.Header.Location)
	}
	if len(result.ValidationIssues) != 1 {
		t.Fatalf("Expected 1 issue, got %v", result.ValidationIssues)
	}
	if !strings.Contains(result.ValidationIssues[0], "header.location") {
		t.Errorf("Expected issue to name the field, got %q", result.ValidationIssues[0])
	}

	want := result.ValidationIssues[0] + "\n---\n" + "Family requests weekend call."
	if result.Form.Narrative.AdditionalNotes != want {
		t.Errorf("Expected issues prepended with divider, got %q", result.Form.Narrative.AdditionalNotes)
	}
}

func TestCategorizer_IssuesWithoutNotes(t *testing.T) {
	response := mutatedResponse(t, func(m map[string]any) {
		m["header"].(map[string]any)["location"] = "string"
		m["narrative"].(map[string]any)["additionalNotes"] = ""
	})
	mock := &MockProvider{available: true, response: response}
	categorizer := NewCategorizer(mock, testConfig())

	result, err := categorizer.Extract(context.Background(), "transcript", 75)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(result.Form.Narrative.AdditionalNotes, "---") {
		t.Errorf("Expected no divider without model notes, got %q", result.Form.Narrative.AdditionalNotes)
	}
	if !strings.Contains(result.Form.Narrative.AdditionalNotes, "header.location") {
		t.Errorf("Expected issue line in notes, got %q", result.Form.Narrative.AdditionalNotes)
	}
}

func TestCategorizer_InvalidDateFlaggedNotCorrected(t *testing.T) {
	response := mutatedResponse(t, func(m map[string]any) {
		m["header"].(map[string]any)["date"] = "2024-03-15"
	})
	mock := &MockProvider{available: true, response: response}
	categorizer := NewCategorizer(mock, testConfig())

	result, err := categorizer.Extract(context.Background(), "transcript", 75)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Form.Header.Date != "2024-03-15" {
		t.Errorf("Expected odd date preserved, got %q", result.Form.Header.Date)
	}
	found := false
	for _, issue := range result.ValidationIssues {
		if strings.Contains(issue, "MM/DD/YYYY") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected date format issue, got %v", result.ValidationIssues)
	}
}

func TestCategorizer_BothProgramsAdvisory(t *testing.T) {
	response := mutatedResponse(t, func(m map[string]any) {
		m["careCoordinationType"].(map[string]any)["hcbw"] = true
	})
	mock := &MockProvider{available: true, response: response}
	categorizer := NewCategorizer(mock, testConfig())

	result, err := categorizer.Extract(context.Background(), "transcript", 75)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.Form.CareCoordinationType.SIH || !result.Form.CareCoordinationType.HCBW {
		t.Error("Expected both checkboxes preserved despite the advisory")
	}
	found := false
	for _, issue := range result.ValidationIssues {
		if strings.Contains(issue, "both SIH and HCBW") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected both-programs advisory, got %v", result.ValidationIssues)
	}
}

func TestCategorizer_ParseFailure(t *testing.T) {
	mock := &MockProvider{available: true, response: "no json here"}
	categorizer := NewCategorizer(mock, testConfig())

	_, err := categorizer.Extract(context.Background(), "transcript", 75)
	if err == nil {
		t.Fatal("Expected error for unparseable response, got nil")
	}
}

func TestMergeRecord_WrongTypesFallBack(t *testing.T) {
	m := map[string]any{
		"header": map[string]any{
			"recipientName": "Maria Lopez",
			"date":          12345,
			"dob":           true,
		},
		"careCoordinationType": map[string]any{
			"sih":  "yes",
			"hcbw": true,
		},
		"narrative": "not an object",
	}

	record := mergeRecord(m)

	if record.Header.RecipientName != "Maria Lopez" {
		t.Errorf("Expected string value kept, got %q", record.Header.RecipientName)
	}
	if record.Header.Date != "" || record.Header.DOB != "" {
		t.Error("Expected non-string values to fall back to empty")
	}
	if record.CareCoordinationType.SIH {
		t.Error("Expected non-bool checkbox to fall back to false")
	}
	if !record.CareCoordinationType.HCBW {
		t.Error("Expected bool checkbox to carry through")
	}
	if record.Narrative.Observations != "" {
		t.Error("Expected malformed section to yield empty fields")
	}
}

func TestMergeRecord_EmptyMap(t *testing.T) {
	record := mergeRecord(map[string]any{})

	if record.Header.RecipientName != "" || record.CareCoordinationType.SIH {
		t.Error("Expected empty record from empty map")
	}
}
