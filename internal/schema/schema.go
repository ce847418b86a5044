package schema

import "github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"

// Empty returns a form with every field at its default. All defaults are ""
// or false, so an empty form is safe to render, export, and merge against.
func Empty() model.FormRecord {
	return model.FormRecord{}
}

// Build returns the form JSON-Schema (draft 2020-12 subset) as a generic map.
// It is compiled locally to validate model output before any value reaches a
// FormRecord. Nothing is required and unknown keys are tolerated here; the
// decode step applies defaults for absences and drops unknowns. The schema's
// job is purely to reject type lies (a number where a date string belongs, a
// string where a checkbox boolean belongs).
func Build() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string"} }
	boolean := func() map[string]any { return map[string]any{"type": "boolean"} }

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"header": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"recipientName": str(),
					"date":          str(),
					"time":          str(),
					"recipientId":   str(),
					"dob":           str(),
					"location":      str(),
				},
			},
			"careCoordinationType": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sih":  boolean(),
					"hcbw": boolean(),
				},
			},
			"narrative": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"observations":     str(),
					"healthStatus":     str(),
					"reviewOfServices": str(),
					"goalsProgress":    str(),
					"additionalNotes":  str(),
					"followUpTasks":    str(),
				},
			},
			"signature": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"coordinatorName": str(),
					"signature":       str(),
					"dateSigned":      str(),
				},
			},
		},
	}
}
