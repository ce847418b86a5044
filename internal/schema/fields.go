package schema

// FieldKind describes how a field appears on the paper template
type FieldKind string

const (
	KindText     FieldKind = "text"     // Single-line entry
	KindCheckbox FieldKind = "checkbox" // Boolean mark
	KindTextarea FieldKind = "textarea" // Multi-line narrative block
)

// FieldMeta describes one leaf field of the form. Required is advisory:
// the schema layer accepts an empty value everywhere, and consuming UIs
// decide how hard to push back. Placeholder is the entry hint printed on
// the template, empty where the template has none.
type FieldMeta struct {
	Path        string    // Dotted path into FormRecord JSON, e.g. "header.recipientName"
	Label       string    // Label printed on the template
	Section     string    // Template section the field belongs to
	Kind        FieldKind // Entry style on the template
	Required    bool      // Downstream consumers treat an empty value as incomplete
	Placeholder string    // Entry hint shown for the field
}

// fields is the authoritative leaf list. Order matches the template top to
// bottom; the confidence report and export mapping both iterate it, so the
// order is part of the output contract.
var fields = []FieldMeta{
	{Path: "header.recipientName", Label: "Recipient Name", Section: "header", Kind: KindText, Required: true},
	{Path: "header.date", Label: "Date", Section: "header", Kind: KindText, Required: true, Placeholder: "MM/DD/YYYY"},
	{Path: "header.time", Label: "Time", Section: "header", Kind: KindText, Placeholder: "HH:MM AM/PM"},
	{Path: "header.recipientId", Label: "Recipient ID", Section: "header", Kind: KindText},
	{Path: "header.dob", Label: "Date of Birth", Section: "header", Kind: KindText, Placeholder: "MM/DD/YYYY"},
	{Path: "header.location", Label: "Location", Section: "header", Kind: KindText},
	{Path: "careCoordinationType.sih", Label: "SIH", Section: "careCoordinationType", Kind: KindCheckbox},
	{Path: "careCoordinationType.hcbw", Label: "HCBW", Section: "careCoordinationType", Kind: KindCheckbox},
	{Path: "narrative.observations", Label: "Observations", Section: "narrative", Kind: KindTextarea},
	{Path: "narrative.healthStatus", Label: "Health Status", Section: "narrative", Kind: KindTextarea},
	{Path: "narrative.reviewOfServices", Label: "Review of Services", Section: "narrative", Kind: KindTextarea},
	{Path: "narrative.goalsProgress", Label: "Goals Progress", Section: "narrative", Kind: KindTextarea},
	{Path: "narrative.additionalNotes", Label: "Additional Notes", Section: "narrative", Kind: KindTextarea},
	{Path: "narrative.followUpTasks", Label: "Follow-Up Tasks", Section: "narrative", Kind: KindTextarea},
	{Path: "signature.coordinatorName", Label: "Care Coordinator Name", Section: "signature", Kind: KindText},
	{Path: "signature.signature", Label: "Signature", Section: "signature", Kind: KindText},
	{Path: "signature.dateSigned", Label: "Date Signed", Section: "signature", Kind: KindText, Placeholder: "MM/DD/YYYY"},
}

// Fields returns the leaf field metadata in template order
func Fields() []FieldMeta {
	out := make([]FieldMeta, len(fields))
	copy(out, fields)
	return out
}

// Paths returns the dotted leaf paths in template order
func Paths() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Path
	}
	return out
}
