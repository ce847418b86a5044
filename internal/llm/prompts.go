package llm

import "fmt"

const (
	// maxPromptTextChars caps transcript text injected into prompts; past
	// this point local models lose the instructions anyway
	maxPromptTextChars = 4000

	// maxVisionHintChars caps the OCR hint in vision prompts; the model is
	// supposed to read the page, not the hint
	maxVisionHintChars = 500
)

// capText truncates text to a rune limit
func capText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// emptyFormJSON is the exact shape every extraction prompt asks for
const emptyFormJSON = `{
  "header": {"recipientName": "", "date": "", "time": "", "recipientId": "", "dob": "", "location": ""},
  "careCoordinationType": {"sih": false, "hcbw": false},
  "narrative": {"observations": "", "healthStatus": "", "reviewOfServices": "", "goalsProgress": "", "additionalNotes": "", "followUpTasks": ""},
  "signature": {"coordinatorName": "", "signature": "", "dateSigned": ""}
}`

const structuredExampleTranscript = `Recipient Name: Maria Lopez
Date: 11/02/2024   Time: 2:15 PM
Recipient ID: R-102938   DOB: 07/21/1958
Location: Recipient's apartment
SIH [X]  HCBW [ ]
Observations: Maria was resting comfortably. Apartment tidy.
Health Status: Reports mild knee pain, managed with prescribed medication.
Follow-up: schedule physical therapy evaluation.
Signed: D. Reyes  12/02/2024`

const structuredExampleJSON = `{
  "header": {"recipientName": "Maria Lopez", "date": "11/02/2024", "time": "2:15 PM", "recipientId": "R-102938", "dob": "07/21/1958", "location": "Recipient's apartment"},
  "careCoordinationType": {"sih": true, "hcbw": false},
  "narrative": {"observations": "Maria was resting comfortably. Apartment tidy.", "healthStatus": "Reports mild knee pain, managed with prescribed medication.", "reviewOfServices": "", "goalsProgress": "", "additionalNotes": "", "followUpTasks": "schedule physical therapy evaluation."},
  "signature": {"coordinatorName": "D. Reyes", "signature": "D. Reyes", "dateSigned": "12/02/2024"}
}`

// structuredPrompt asks the model to restructure an OCR transcript into the
// form shape in a single pass
func structuredPrompt(text string) string {
	return fmt.Sprintf(`You convert OCR transcripts of monthly care coordination contact forms into JSON.

Rules:
- Respond with ONLY one JSON object. No commentary, no code fences.
- Use exactly this shape and these keys:
%s
- Copy values as written on the form. Never invent information.
- Leave a string "" when the form does not show it. Leave a checkbox false when it is not marked.
- Dates use MM/DD/YYYY when legible.

Example transcript:
%s

Example output:
%s

Transcript:
%s

JSON output:`, emptyFormJSON, structuredExampleTranscript, structuredExampleJSON, capText(text, maxPromptTextChars))
}

// visionPrompt asks a multimodal model to read the scanned page itself.
// The OCR hint is included at low weight because when this strategy runs the
// OCR text is already known to be bad.
func visionPrompt(ocrHint string) string {
	prompt := fmt.Sprintf(`Read the attached scan of a monthly care coordination contact form and fill this JSON:

%s

Rules:
- Respond with ONLY one JSON object. No commentary, no code fences.
- Read the image directly, including handwriting. Transcribe what is written; never invent information.
- Leave a string "" when the form does not show it. Leave a checkbox false when it is not marked.
- Dates use MM/DD/YYYY when legible.`, emptyFormJSON)

	if ocrHint != "" {
		prompt += fmt.Sprintf(`

A low-quality OCR attempt produced the text below. Use it only as a weak hint when handwriting is ambiguous; trust the image over the hint:
%s`, capText(ocrHint, maxVisionHintChars))
	}

	return prompt + "\n\nJSON output:"
}

const categorizeExampleSimple = `Transcript:
Name: Robert King  Date: 09/05/2024
HCBW yes
Client doing well. No service changes.

Output:
{
  "header": {"recipientName": "Robert King", "date": "09/05/2024", "time": "", "recipientId": "", "dob": "", "location": ""},
  "careCoordinationType": {"sih": false, "hcbw": true},
  "narrative": {"observations": "Client doing well.", "healthStatus": "", "reviewOfServices": "No service changes.", "goalsProgress": "", "additionalNotes": "", "followUpTasks": ""},
  "signature": {"coordinatorName": "", "signature": "", "dateSigned": ""}
}`

const categorizeExampleComplex = `Transcript:
Recipient: Alma Diaz   ID R-55012   DOB 01/30/1947
Visited 10/18/2024 at 9:00 AM, recipient's home.
SIH [ ]  HCBW [X]
Alma seemed tired but was in good spirits. The home was clean. She mentioned
her aide has been arriving late twice a week. Blood sugar readings have been
stable per her log. She is walking to the mailbox daily now, which was one of
her quarterly goals. Need to call the agency about the aide schedule and
request a copy of the updated medication list.
- C. Okafor, 10/18/2024

Output:
{
  "header": {"recipientName": "Alma Diaz", "date": "10/18/2024", "time": "9:00 AM", "recipientId": "R-55012", "dob": "01/30/1947", "location": "recipient's home"},
  "careCoordinationType": {"sih": false, "hcbw": true},
  "narrative": {"observations": "Alma seemed tired but was in good spirits. The home was clean.", "healthStatus": "Blood sugar readings have been stable per her log.", "reviewOfServices": "She mentioned her aide has been arriving late twice a week.", "goalsProgress": "She is walking to the mailbox daily now, which was one of her quarterly goals.", "additionalNotes": "", "followUpTasks": "Call the agency about the aide schedule and request a copy of the updated medication list."},
  "signature": {"coordinatorName": "C. Okafor", "signature": "C. Okafor", "dateSigned": "10/18/2024"}
}`

// categorizeStop cuts the completion off if the model starts inventing
// another worked example instead of stopping after its JSON
var categorizeStop = []string{"\nTranscript:", "\nExample"}

// categorizePrompt asks the model to sort transcript content into form
// sections. Two worked examples, the second much messier than the first,
// anchor how free text maps onto narrative fields.
func categorizePrompt(text string) string {
	return fmt.Sprintf(`You sort the content of care coordination visit notes into the sections of a monthly contact form.

Rules:
- Respond with ONLY one JSON object in the shape shown by the examples. No commentary, no code fences.
- Assign each piece of the note to the best-fitting narrative section; do not repeat the same sentence in two sections.
- Copy wording from the note. Never invent information.
- Leave a string "" when the note has nothing for it. Leave a checkbox false when it is not marked.

Example 1
%s

Example 2
%s

Transcript:
%s

Output:`, categorizeExampleSimple, categorizeExampleComplex, capText(text, maxPromptTextChars))
}

// summarizePrompt asks for a short narrative summary of a visit note
func summarizePrompt(text string) string {
	return fmt.Sprintf(`Summarize this care coordination visit note in 3-4 plain sentences for a supervisor's quick review. Mention the recipient's condition, any service issues, and any follow-up work. Do not invent information that is not in the note.

Note:
%s

Summary:`, capText(text, maxPromptTextChars))
}
