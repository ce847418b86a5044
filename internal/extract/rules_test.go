package extract

import (
	"strings"
	"testing"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

const sampleTranscript = `MONTHLY CONTACT FORM

Recipient Name: Jane Smith
Date: 12/25/2024
Time: 10:30 AM
Recipient ID: R-445871
Date of Birth: 03/14/1962
Location: Recipient's home

Care Coordination Type: SIH [X]  HCBW [ ]

Observations:
Client was alert and oriented. Apartment was clean and well maintained.
Client reports no falls since the last visit.

Health Status:
Blood pressure within normal range. Medications unchanged this month.

Follow-up Tasks:
Call pharmacy about the refill schedule before next visit.
`

func TestRuleBased_HeaderFields(t *testing.T) {
	extractor := NewRuleBased()

	result := extractor.Extract(sampleTranscript, 85, true)
	header := result.Form.Header

	if header.RecipientName != "Jane Smith" {
		t.Errorf("Expected recipientName 'Jane Smith', got '%s'", header.RecipientName)
	}
	if header.Date != "12/25/2024" {
		t.Errorf("Expected date '12/25/2024', got '%s'", header.Date)
	}
	if header.Time != "10:30 AM" {
		t.Errorf("Expected time '10:30 AM', got '%s'", header.Time)
	}
	if header.RecipientID != "R-445871" {
		t.Errorf("Expected recipientId 'R-445871', got '%s'", header.RecipientID)
	}
	if header.DOB != "03/14/1962" {
		t.Errorf("Expected dob '03/14/1962', got '%s'", header.DOB)
	}
	if header.Location != "Recipient's home" {
		t.Errorf("Expected location, got '%s'", header.Location)
	}
}

func TestRuleBased_DateRuleSkipsBirthLines(t *testing.T) {
	extractor := NewRuleBased()

	// Date of birth appears before the contact date; the date rule must not
	// grab it
	text := "Date of Birth: 03/14/1962\nDate: 12/25/2024\n"
	result := extractor.Extract(text, 85, true)

	if result.Form.Header.Date != "12/25/2024" {
		t.Errorf("Expected contact date '12/25/2024', got '%s'", result.Form.Header.Date)
	}
	if result.Form.Header.DOB != "03/14/1962" {
		t.Errorf("Expected dob '03/14/1962', got '%s'", result.Form.Header.DOB)
	}
}

func TestRuleBased_FirstMatchWinsPerField(t *testing.T) {
	extractor := NewRuleBased()

	text := "Recipient Name: Jane Smith\nName: Someone Else\n"
	result := extractor.Extract(text, 85, true)

	if result.Form.Header.RecipientName != "Jane Smith" {
		t.Errorf("Expected first capture to win, got '%s'", result.Form.Header.RecipientName)
	}
}

func TestRuleBased_CheckboxVariants(t *testing.T) {
	extractor := NewRuleBased()

	cases := []struct {
		name string
		text string
		sih  bool
		hcbw bool
	}{
		{"bracketed", "SIH [x]\nHCBW [ ]", true, false},
		{"bare x", "SIH x\nHCBW", true, false},
		{"checked word", "SIH checked\nHCBW: checked", true, true},
		{"yes word", "SIH: yes\nHCBW: no", true, false},
		{"uppercase", "SIH [X]", true, false},
		{"neither marked", "SIH [ ]  HCBW [ ]", false, false},
		{"shared line", "Care Coordination Type: SIH [ ]  HCBW [X]", false, true},
		{"shared line reversed", "SIH [X]  HCBW [ ]", true, false},
	}

	for _, tc := range cases {
		result := extractor.Extract(tc.text, 85, true)
		box := result.Form.CareCoordinationType
		if box.SIH != tc.sih {
			t.Errorf("%s: expected sih=%v, got %v", tc.name, tc.sih, box.SIH)
		}
		if box.HCBW != tc.hcbw {
			t.Errorf("%s: expected hcbw=%v, got %v", tc.name, tc.hcbw, box.HCBW)
		}
	}
}

func TestRuleBased_AdvisoryNoteAlwaysPresent(t *testing.T) {
	extractor := NewRuleBased()

	result := extractor.Extract(sampleTranscript, 85, true)
	notes := result.Form.Narrative.AdditionalNotes

	if !strings.Contains(notes, "review all fields carefully") {
		t.Errorf("Expected review advisory in additionalNotes, got '%s'", notes)
	}
	if strings.Contains(notes, "OCR-only mode") {
		t.Errorf("Did not expect OCR-only note when LLM available, got '%s'", notes)
	}
}

func TestRuleBased_OCROnlyNoteWhenLLMUnavailable(t *testing.T) {
	extractor := NewRuleBased()

	result := extractor.Extract(sampleTranscript, 85, false)
	notes := result.Form.Narrative.AdditionalNotes

	if !strings.Contains(notes, "OCR-only mode") {
		t.Errorf("Expected OCR-only note when LLM unavailable, got '%s'", notes)
	}
	if result.OllamaAvailable {
		t.Error("Expected ollamaAvailable false")
	}
}

func TestRuleBased_NotesPrependedBeforeExtractedContent(t *testing.T) {
	extractor := NewRuleBased()

	text := "Additional Notes:\nFamily requested an earlier visit time next month.\n"
	result := extractor.Extract(text, 85, true)
	notes := result.Form.Narrative.AdditionalNotes

	advisoryIdx := strings.Index(notes, "review all fields carefully")
	extractedIdx := strings.Index(notes, "Family requested")
	if advisoryIdx == -1 || extractedIdx == -1 {
		t.Fatalf("Expected both advisory and extracted content, got '%s'", notes)
	}
	if advisoryIdx > extractedIdx {
		t.Errorf("Expected advisory before extracted content, got '%s'", notes)
	}
}

func TestRuleBased_NeverFails(t *testing.T) {
	extractor := NewRuleBased()

	inputs := []string{
		"",
		"   \n\n   ",
		"complete garbage with no structure at all",
		strings.Repeat("x", 100000),
	}

	for _, text := range inputs {
		result := extractor.Extract(text, 0, false)
		if result == nil {
			t.Fatal("Expected a result for every input")
		}
		if result.ExtractionMethod != model.MethodOCROnly {
			t.Errorf("Expected method ocr-only, got %s", result.ExtractionMethod)
		}
		if len(result.Confidence) != 17 {
			t.Errorf("Expected 17 confidence entries, got %d", len(result.Confidence))
		}
	}
}

func TestRuleBased_ConfidenceDemoted(t *testing.T) {
	extractor := NewRuleBased()

	// 85 maps to high, ocr-only demotes populated fields to medium
	result := extractor.Extract(sampleTranscript, 85, true)
	for _, fc := range result.Confidence {
		if fc.Field == "header.recipientName" && fc.Confidence != model.ConfidenceMedium {
			t.Errorf("Expected demoted medium for recipientName, got %s", fc.Confidence)
		}
		if fc.Source != model.MethodOCROnly {
			t.Errorf("Expected source ocr-only, got %s", fc.Source)
		}
	}
}

func TestRuleBased_RawTextCarriedThrough(t *testing.T) {
	extractor := NewRuleBased()

	result := extractor.Extract(sampleTranscript, 85, true)
	if result.RawText != sampleTranscript {
		t.Error("Expected rawText to carry the input through unmodified")
	}
}
