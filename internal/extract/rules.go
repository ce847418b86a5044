package extract

import (
	"regexp"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/score"
)

// RuleBased fills a form from OCR text with pattern matching alone. It is
// the terminal extraction strategy: no network, no model, no failure modes.
type RuleBased struct {
	headerRules []headerRule
	checked     *regexp.Regexp
	sihWord     *regexp.Regexp
	hcbwWord    *regexp.Regexp
	sections    []sectionRule
	scorer      *score.Scorer
}

// headerRule is one line-level test for a header field. Rules run in order
// against every trimmed line; the first capture per field wins.
type headerRule struct {
	field   string
	re      *regexp.Regexp
	exclude *regexp.Regexp
	assign  func(*model.Header, string)
}

const (
	ocrOnlyNote = "OCR-only mode: language model unavailable, fields were filled by pattern matching."
	reviewNote  = "Automated extraction - please review all fields carefully before submitting."
)

// NewRuleBased creates the rule-based extractor
func NewRuleBased() *RuleBased {
	return &RuleBased{
		headerRules: []headerRule{
			{
				field:  "recipientName",
				re:     regexp.MustCompile(`(?i)^(?:recipient|client|member)(?:'s)?\s*name\s*[:\-]\s*(.+)$`),
				assign: func(h *model.Header, v string) { h.RecipientName = v },
			},
			{
				field:  "recipientName",
				re:     regexp.MustCompile(`(?i)^name\s*[:\-]\s*(.+)$`),
				assign: func(h *model.Header, v string) { h.RecipientName = v },
			},
			{
				field:   "date",
				re:      regexp.MustCompile(`(?i)^(?:contact\s+)?date(?:\s+of\s+(?:contact|visit))?\s*[:\-]\s*(.+)$`),
				exclude: regexp.MustCompile(`(?i)birth`),
				assign:  func(h *model.Header, v string) { h.Date = v },
			},
			{
				field:  "time",
				re:     regexp.MustCompile(`(?i)^time(?:\s+of\s+(?:contact|visit))?\s*[:\-]\s*(.+)$`),
				assign: func(h *model.Header, v string) { h.Time = v },
			},
			{
				field:  "dob",
				re:     regexp.MustCompile(`(?i)^(?:dob|date\s+of\s+birth|birth\s*date)\s*[:\-]\s*(.+)$`),
				assign: func(h *model.Header, v string) { h.DOB = v },
			},
			{
				field:  "location",
				re:     regexp.MustCompile(`(?i)^(?:location|place\s+of\s+(?:contact|visit)|address)\s*[:\-]\s*(.+)$`),
				assign: func(h *model.Header, v string) { h.Location = v },
			},
			{
				field:  "recipientId",
				re:     regexp.MustCompile(`(?i)^(?:recipient|client|member)?\s*id(?:\s*(?:#|number|no\.?))?\s*[:\-]\s*(.+)$`),
				assign: func(h *model.Header, v string) { h.RecipientID = v },
			},
		},
		// A box counts as checked when marked [x], a bare x, "checked", or "yes"
		checked:  regexp.MustCompile(`(?i)\[x\]|\bx\b|\bchecked\b|\byes\b`),
		sihWord:  regexp.MustCompile(`(?i)\bsih\b`),
		hcbwWord: regexp.MustCompile(`(?i)\bhcbw\b`),
		sections: sectionRules(),
		scorer:   score.NewScorer(),
	}
}

// Extract builds a complete result from OCR text. llmAvailable only changes
// the advisory note; the extraction itself never touches the model runtime.
func (e *RuleBased) Extract(text string, ocrConfidence int, llmAvailable bool) *model.ExtractionResult {
	record := model.FormRecord{}

	e.extractHeader(text, &record)
	e.extractCheckboxes(text, &record)
	e.extractSections(text, &record.Narrative)

	record.Narrative.AdditionalNotes = e.advisoryNotes(llmAvailable, record.Narrative.AdditionalNotes)

	return &model.ExtractionResult{
		Form:             record,
		Confidence:       e.scorer.Calculate(record, ocrConfidence, model.MethodOCROnly),
		RawText:          text,
		ExtractionMethod: model.MethodOCROnly,
		OllamaAvailable:  llmAvailable,
	}
}

// extractHeader runs the ordered line rules over every trimmed non-empty
// line. Each field keeps its first non-empty capture.
func (e *RuleBased) extractHeader(text string, record *model.FormRecord) {
	filled := make(map[string]bool, len(e.headerRules))

	for _, line := range splitLines(text) {
		for _, rule := range e.headerRules {
			if filled[rule.field] {
				continue
			}
			if rule.exclude != nil && rule.exclude.MatchString(line) {
				continue
			}
			m := rule.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[1])
			if value == "" {
				continue
			}
			rule.assign(&record.Header, value)
			filled[rule.field] = true
		}
	}
}

// extractCheckboxes looks for the program keywords and a check mark near
// them. When both keywords share a line ("SIH [X]  HCBW [ ]") each keyword
// only sees the segment up to the other, so one mark cannot check both.
func (e *RuleBased) extractCheckboxes(text string, record *model.FormRecord) {
	for _, line := range splitLines(text) {
		sih := e.sihWord.FindStringIndex(line)
		hcbw := e.hcbwWord.FindStringIndex(line)

		if sih != nil && !record.CareCoordinationType.SIH {
			record.CareCoordinationType.SIH = e.checked.MatchString(segmentFor(line, sih, hcbw))
		}
		if hcbw != nil && !record.CareCoordinationType.HCBW {
			record.CareCoordinationType.HCBW = e.checked.MatchString(segmentFor(line, hcbw, sih))
		}
	}
}

// segmentFor returns the part of the line a keyword's check mark may live
// in: the whole line when the keyword stands alone, otherwise from this
// keyword up to the other one (or to the end when this keyword comes last).
func segmentFor(line string, kw, other []int) string {
	if other == nil {
		return line
	}
	if other[0] > kw[0] {
		return line[kw[0]:other[0]]
	}
	return line[kw[0]:]
}

// advisoryNotes prepends the fixed advisory lines to whatever the section
// scan found for additional notes
func (e *RuleBased) advisoryNotes(llmAvailable bool, extracted string) string {
	var lines []string
	if !llmAvailable {
		lines = append(lines, ocrOnlyNote)
	}
	lines = append(lines, reviewNote)

	notes := strings.Join(lines, "\n")
	if extracted == "" {
		return notes
	}
	return notes + "\n\n" + extracted
}

// inlineLabel marks a later "Label:" pair on a line that already carries
// one, which layout-preserving PDF text produces constantly
// ("Date: 03/15/2024   Time: 10:30 AM")
var inlineLabel = regexp.MustCompile(`(?i)\s+(?:date\s+of\s+birth|birth\s*date|dob|date|time|location|address|(?:recipient|client|member)(?:'s)?\s*name|name|(?:recipient|client|member)?\s*id\s*(?:#|number|no\.?)?)\s*[:\-]`)

// splitLines yields trimmed non-empty lines, breaking lines that carry
// several label pairs into one segment per pair so the anchored rules see
// each of them
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, splitInlineLabels(line)...)
		}
	}
	return out
}

// splitInlineLabels turns "Date: 03/15/2024   Time: 10:30 AM" into
// ["Date: 03/15/2024", "Time: 10:30 AM"]
func splitInlineLabels(line string) []string {
	locs := inlineLabel.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return []string{line}
	}

	var segments []string
	prev := 0
	for _, loc := range locs {
		if seg := strings.TrimSpace(line[prev:loc[0]]); seg != "" {
			segments = append(segments, seg)
		}
		prev = loc[0]
	}
	if seg := strings.TrimSpace(line[prev:]); seg != "" {
		segments = append(segments, seg)
	}
	return segments
}
