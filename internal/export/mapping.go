// Package export holds the contract between validated form records and the
// external PDF-filling collaborator: a static lookup from schema leaf paths
// to template field names, and a flattener that guarantees every mapped
// field gets an empty-safe value.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/schema"
)

// TemplateVersion identifies the PDF template revision the mapping targets.
// A template change gets a new version and a new mapping; old exports stay
// reproducible.
const TemplateVersion = "2024.1"

// Target names one PDF form field and how the collaborator fills it
type Target struct {
	PDFField string           `json:"pdfField"` // AcroForm field name in the template
	Kind     schema.FieldKind `json:"kind"`     // text and textarea take strings, checkbox takes "On"/""
}

// mapping pairs every schema leaf path with its template field. Built once
// from the field table so the two can never drift apart on the set of paths;
// only the template-side names live here.
var mapping = buildMapping()

// pdfFieldNames are the AcroForm names in the 2024.1 template, by leaf path
var pdfFieldNames = map[string]string{
	"header.recipientName":       "RecipientName",
	"header.date":                "ContactDate",
	"header.time":                "ContactTime",
	"header.recipientId":         "RecipientID",
	"header.dob":                 "DateOfBirth",
	"header.location":            "ContactLocation",
	"careCoordinationType.sih":   "ProgramSIH",
	"careCoordinationType.hcbw":  "ProgramHCBW",
	"narrative.observations":     "Observations",
	"narrative.healthStatus":     "HealthStatus",
	"narrative.reviewOfServices": "ReviewOfServices",
	"narrative.goalsProgress":    "GoalsProgress",
	"narrative.additionalNotes":  "AdditionalNotes",
	"narrative.followUpTasks":    "FollowUpTasks",
	"signature.coordinatorName":  "CoordinatorName",
	"signature.signature":        "CoordinatorSignature",
	"signature.dateSigned":       "DateSigned",
}

func buildMapping() map[string]Target {
	out := make(map[string]Target, len(pdfFieldNames))
	for _, f := range schema.Fields() {
		name, ok := pdfFieldNames[f.Path]
		if !ok {
			// A schema leaf without a template field is a programming
			// error, not a runtime condition
			panic(fmt.Sprintf("export: no PDF field mapped for %s", f.Path))
		}
		out[f.Path] = Target{PDFField: name, Kind: f.Kind}
	}
	return out
}

// Mapping returns the path-to-template-field table for the current version
func Mapping() map[string]Target {
	out := make(map[string]Target, len(mapping))
	for k, v := range mapping {
		out[k] = v
	}
	return out
}

// FillData flattens a record into template field values. Every mapped PDF
// field is present in the result; unset strings map to "" and unchecked
// boxes to "", checked boxes to "On", so the collaborator never sees a
// missing key.
func FillData(record model.FormRecord) map[string]string {
	values := flatten(record)

	out := make(map[string]string, len(mapping))
	for path, target := range mapping {
		switch target.Kind {
		case schema.KindCheckbox:
			if b, _ := values[path].(bool); b {
				out[target.PDFField] = "On"
			} else {
				out[target.PDFField] = ""
			}
		default:
			s, _ := values[path].(string)
			out[target.PDFField] = s
		}
	}
	return out
}

// Lookup resolves one dotted leaf path against a record. Booleans come back
// as "true"/"false"; an unknown path is an error rather than "".
func Lookup(record model.FormRecord, path string) (string, error) {
	target, ok := mapping[path]
	if !ok {
		return "", fmt.Errorf("unknown field path: %s", path)
	}

	value := flatten(record)[path]
	if target.Kind == schema.KindCheckbox {
		if b, _ := value.(bool); b {
			return "true", nil
		}
		return "false", nil
	}
	s, _ := value.(string)
	return s, nil
}

// flatten turns a record into dotted-path lookups via its JSON form, which
// is what the paths address in the first place
func flatten(record model.FormRecord) map[string]any {
	raw, err := json.Marshal(record)
	if err != nil {
		return map[string]any{}
	}
	var sections map[string]map[string]any
	if err := json.Unmarshal(raw, &sections); err != nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(mapping))
	for section, leaves := range sections {
		for leaf, value := range leaves {
			out[section+"."+leaf] = value
		}
	}
	return out
}
