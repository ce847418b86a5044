package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate      = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	reLabelLine = regexp.MustCompile(`(?im)^[a-z][a-z /'-]{1,30}:\s*\S`)
	reProgram   = regexp.MustCompile(`(?i)\b(sih|hcbw)\b`)
)

// formKeywords are phrases the contact-form template prints. Seeing them in
// a transcript means the OCR at least read the printed parts correctly.
var formKeywords = []string{
	"recipient", "care coordination", "monthly contact",
	"observations", "health status", "review of services",
	"follow-up", "follow up", "signature", "coordinator",
}

// heuristicConfidence estimates transcript reliability from content alone,
// 0-100. It is the only signal for inputs that skip tesseract (digital PDFs,
// plain-text files) and a cross-check on the engine confidence elsewhere.
func heuristicConfidence(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	lower := strings.ToLower(text)

	score := 30
	if reDate.MatchString(text) {
		score += 15
	}
	if reLabelLine.MatchString(text) {
		score += 15
	}
	if reProgram.MatchString(text) {
		score += 10
	}
	score += 5 * countKeywords(lower)
	if len(text) > 200 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// countKeywords counts distinct template phrases present, capped at 4
func countKeywords(lower string) int {
	n := 0
	for _, kw := range formKeywords {
		if strings.Contains(lower, kw) {
			n++
			if n == 4 {
				break
			}
		}
	}
	return n
}
