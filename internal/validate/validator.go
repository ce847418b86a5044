package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue is one reviewer-facing finding about a categorized record
type Issue struct {
	Field      string `json:"field"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Line serializes an issue the way it is shown to reviewers
func (i Issue) Line() string {
	if i.Suggestion == "" {
		return fmt.Sprintf("%s: %s", i.Field, i.Issue)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Issue, i.Suggestion)
}

// strictDate is MM/DD/YYYY with real month and day ranges
var strictDate = regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|[12][0-9]|3[01])/\d{4}$`)

// stringLeaves lists every string field of the form as (section, key)
var stringLeaves = [][2]string{
	{"header", "recipientName"},
	{"header", "date"},
	{"header", "time"},
	{"header", "recipientId"},
	{"header", "dob"},
	{"header", "location"},
	{"narrative", "observations"},
	{"narrative", "healthStatus"},
	{"narrative", "reviewOfServices"},
	{"narrative", "goalsProgress"},
	{"narrative", "additionalNotes"},
	{"narrative", "followUpTasks"},
	{"signature", "coordinatorName"},
	{"signature", "signature"},
	{"signature", "dateSigned"},
}

// narrativeKeys are the free-text sections; followUpTasks does not count
// toward the thin-narrative check because a real visit note can legitimately
// consist of follow-up work alone
var narrativeKeys = []string{"observations", "healthStatus", "reviewOfServices", "goalsProgress", "additionalNotes"}

// CheckRecord inspects a parsed-but-not-yet-validated categorizer output.
// It clears literal placeholder values in place (a field reading "string" is
// the model echoing the shape back, not an extraction) and returns advisory
// findings; nothing else is corrected, only flagged.
func CheckRecord(m map[string]any) []Issue {
	var issues []Issue
	if m == nil {
		m = map[string]any{}
	}

	// Placeholder clearing runs first so every later check sees cleaned
	// values
	for _, leaf := range stringLeaves {
		value, ok := stringAt(m, leaf[0], leaf[1])
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), "string") {
			setString(m, leaf[0], leaf[1], "")
			issues = append(issues, Issue{
				Field:      leaf[0] + "." + leaf[1],
				Issue:      "model returned placeholder text instead of a value",
				Suggestion: "fill in from the original form",
			})
		}
	}

	for _, leaf := range [][2]string{{"header", "date"}, {"header", "dob"}} {
		value, ok := stringAt(m, leaf[0], leaf[1])
		if !ok || value == "" {
			continue
		}
		if !strictDate.MatchString(value) {
			issues = append(issues, Issue{
				Field:      leaf[0] + "." + leaf[1],
				Issue:      fmt.Sprintf("value %q is not in MM/DD/YYYY format", value),
				Suggestion: "Should be MM/DD/YYYY",
			})
		}
	}

	sih, _ := boolAt(m, "careCoordinationType", "sih")
	hcbw, _ := boolAt(m, "careCoordinationType", "hcbw")
	if sih && hcbw {
		// Both programs can legitimately apply; this is a reviewer hint,
		// not a correction
		issues = append(issues, Issue{
			Field:      "careCoordinationType",
			Issue:      "both SIH and HCBW are marked",
			Suggestion: "confirm the recipient is enrolled in both programs",
		})
	}

	if name, _ := stringAt(m, "header", "recipientName"); strings.TrimSpace(name) == "" {
		issues = append(issues, Issue{
			Field:      "header.recipientName",
			Issue:      "recipient name is missing",
			Suggestion: "fill in from the original form",
		})
	}

	if !hasNarrativeContent(m) {
		issues = append(issues, Issue{
			Field:      "narrative",
			Issue:      "no narrative content extracted",
			Suggestion: "transcribe the narrative sections manually",
		})
	}

	return issues
}

// hasNarrativeContent reports whether any narrative section except
// followUpTasks carries more than 20 characters after cleaning
func hasNarrativeContent(m map[string]any) bool {
	for _, key := range narrativeKeys {
		value, ok := stringAt(m, "narrative", key)
		if ok && len(strings.TrimSpace(value)) > 20 {
			return true
		}
	}
	return false
}

func stringAt(m map[string]any, section, key string) (string, bool) {
	sec, ok := m[section].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := sec[key].(string)
	return s, ok
}

func setString(m map[string]any, section, key, value string) {
	if sec, ok := m[section].(map[string]any); ok {
		sec[key] = value
	}
}

func boolAt(m map[string]any, section, key string) (bool, bool) {
	sec, ok := m[section].(map[string]any)
	if !ok {
		return false, false
	}
	b, ok := sec[key].(bool)
	return b, ok
}
