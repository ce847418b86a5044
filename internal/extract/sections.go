package extract

import (
	"regexp"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

const (
	maxSectionChars = 1000
	minSectionChars = 10
)

// sectionRule maps one narrative section to the header spellings found on
// scanned forms. Aliases are ordered most-specific first so "Goals/Progress"
// is claimed by the compound alias before the bare "Goals" one sees it.
type sectionRule struct {
	field   string
	aliases []*regexp.Regexp
	assign  func(*model.Narrative, string)
}

// alias compiles a header pattern: the spelling at the start of a line,
// optionally followed by a colon or dash. Content begins after the match.
func alias(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:` + pattern + `)\b[ \t]*[:\-]?[ \t]*`)
}

func sectionRules() []sectionRule {
	return []sectionRule{
		{
			field: "observations",
			aliases: []*regexp.Regexp{
				alias(`general\s+observations?`),
				alias(`observations?`),
			},
			assign: func(n *model.Narrative, v string) { n.Observations = v },
		},
		{
			field: "healthStatus",
			aliases: []*regexp.Regexp{
				alias(`health\s+status`),
				alias(`current\s+health`),
				alias(`medical\s+status`),
			},
			assign: func(n *model.Narrative, v string) { n.HealthStatus = v },
		},
		{
			field: "reviewOfServices",
			aliases: []*regexp.Regexp{
				alias(`review\s+of\s+services`),
				alias(`services?\s+review`),
				alias(`services?\s+provided`),
			},
			assign: func(n *model.Narrative, v string) { n.ReviewOfServices = v },
		},
		{
			field: "goalsProgress",
			aliases: []*regexp.Regexp{
				alias(`progress\s+(?:on|toward|towards)\s+goals`),
				alias(`goals?\s*/\s*progress`),
				alias(`goals?\s+progress`),
				alias(`goals?`),
			},
			assign: func(n *model.Narrative, v string) { n.GoalsProgress = v },
		},
		{
			field: "additionalNotes",
			aliases: []*regexp.Regexp{
				alias(`additional\s+notes?`),
				alias(`other\s+notes?`),
				alias(`comments?`),
				alias(`notes?`),
			},
			assign: func(n *model.Narrative, v string) { n.AdditionalNotes = v },
		},
		{
			field: "followUpTasks",
			aliases: []*regexp.Regexp{
				alias(`follow[\s\-]?up\s+tasks?`),
				alias(`follow[\s\-]?up`),
				alias(`action\s+items?`),
			},
			assign: func(n *model.Narrative, v string) { n.FollowUpTasks = v },
		},
	}
}

// extractSections scans the full text for each narrative header and takes
// the content between it and the next header from any section (or end of
// text). Content spans lines, which is why this pass cannot work line by
// line like the header rules do.
func (e *RuleBased) extractSections(text string, narrative *model.Narrative) {
	for _, rule := range e.sections {
		start, ok := sectionStart(text, rule.aliases)
		if !ok {
			continue
		}

		end := nextHeaderAfter(text, start, e.sections)
		content := strings.TrimSpace(text[start:end])
		if runes := []rune(content); len(runes) > maxSectionChars {
			content = string(runes[:maxSectionChars])
		}
		if len([]rune(strings.TrimSpace(content))) <= minSectionChars {
			continue
		}
		rule.assign(narrative, content)
	}
}

// sectionStart finds where a section's content begins: the earliest alias
// match wins (first-listed alias on ties, so compound spellings beat their
// bare suffixes), and content starts after the header and its separator.
func sectionStart(text string, aliases []*regexp.Regexp) (int, bool) {
	bestStart, bestEnd := -1, -1
	for _, re := range aliases {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestStart == -1 || loc[0] < bestStart {
			bestStart, bestEnd = loc[0], loc[1]
		}
	}
	if bestStart == -1 {
		return 0, false
	}
	return bestEnd, true
}

// nextHeaderAfter finds the closest header match from the global alias list
// that starts at or past the given offset. Matching always runs over the
// full text so the line-start anchors stay honest; slicing first would turn
// the middle of the current header's line into a fake line start. No later
// header means the section runs to the end of the text.
func nextHeaderAfter(text string, offset int, sections []sectionRule) int {
	end := len(text)
	for _, rule := range sections {
		for _, re := range rule.aliases {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				if loc[0] >= offset && loc[0] < end {
					end = loc[0]
				}
			}
		}
	}
	return end
}
