package model

// FormRecord is the canonical monthly-contact form. Every field the paper
// template carries is present here; extraction strategies fill what they can
// and leave the rest at the zero value. Absence is always "" or false, never
// a missing key, so downstream consumers can index any path without guards.
type FormRecord struct {
	Header               Header               `json:"header"`
	CareCoordinationType CareCoordinationType `json:"careCoordinationType"`
	Narrative            Narrative            `json:"narrative"`
	Signature            Signature            `json:"signature"`
}

// Header holds the identity block from the top of the form
type Header struct {
	RecipientName string `json:"recipientName"` // Person receiving care
	Date          string `json:"date"`          // Contact date, MM/DD/YYYY
	Time          string `json:"time"`          // Contact time as written
	RecipientID   string `json:"recipientId"`   // Medicaid/agency recipient number
	DOB           string `json:"dob"`           // Date of birth, MM/DD/YYYY
	Location      string `json:"location"`      // Where the contact took place
}

// CareCoordinationType mirrors the two checkboxes on the template.
// Both may be checked when a recipient is enrolled in both programs.
type CareCoordinationType struct {
	SIH  bool `json:"sih"`  // Supported In-Home program
	HCBW bool `json:"hcbw"` // Home and Community Based Waiver program
}

// Narrative holds the free-text sections of the form
type Narrative struct {
	Observations     string `json:"observations"`
	HealthStatus     string `json:"healthStatus"`
	ReviewOfServices string `json:"reviewOfServices"`
	GoalsProgress    string `json:"goalsProgress"`
	AdditionalNotes  string `json:"additionalNotes"`
	FollowUpTasks    string `json:"followUpTasks"`
}

// Signature holds the sign-off block at the bottom of the form
type Signature struct {
	CoordinatorName string `json:"coordinatorName"`
	Signature       string `json:"signature"`  // Usually a name; wet signatures OCR poorly
	DateSigned      string `json:"dateSigned"` // MM/DD/YYYY
}
