// SPDX-License-Identifier: Apache-2.0

package m3

import (
	"regexp"
	"strings"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// headingRule is one entry in the ordered question-heading cascade. Rules are
// evaluated in order; the first match wins for a line.
type headingRule struct {
	re         *regexp.Regexp
	confidence int
	label      string
}

var headingRules = []headingRule{
	{regexp.MustCompile(`^###\s+Q(\d+)\b`), 95, "h3-qnum"},
	{regexp.MustCompile(`^##\s+Q(\d+)\b`), 90, "h2-qnum"},
	{regexp.MustCompile(`^#\s+Q(\d+)\b`), 85, "h1-qnum"},
	{regexp.MustCompile(`^##\s+(?:Question|Fråga)\s+(\d+)\b`), 85, "h2-word"},
	{regexp.MustCompile(`^###\s+(?:Question|Fråga)\s+(\d+)\b`), 85, "h3-word"},
	{regexp.MustCompile(`^#\s+(?:Question|Fråga)\s+(\d+)\b`), 80, "h1-word"},
}

// Fallback detection when no structured heading matched anywhere in the text.
var (
	digitHeadingRe = regexp.MustCompile(`^#{1,6}\s+.*\d`)
	titleMarkerRe  = regexp.MustCompile(`^\*\*(?:Title|Titel):?\*\*:?`)
	separatorRe    = regexp.MustCompile(`^---\s*$`)
)

const (
	fallbackDigitHeadingConfidence = 50
	fallbackTitleMarkerConfidence  = 60
	fallbackSeparatorConfidence    = 40
)

// questionHeaderRe is the header grammar an extracted span must open with:
// hashes, then Q<n> or a bilingual Question/Fråga <n>, then an optional
// dash-separated title.
var questionHeaderRe = regexp.MustCompile(`^#{1,3}\s*(?:Q(\d+)|(?:Question|Fråga)\s+(\d+))\s*-?\s*(.*)$`)

// sectionRule maps a bilingual bold section marker to a named section.
// Inline text after the marker seeds the new section buffer.
type sectionRule struct {
	re      *regexp.Regexp
	section string
}

var sectionRules = []sectionRule{
	{regexp.MustCompile(`^\*\*(?:Metadata|Meta):?\*\*:?\s*(.*)$`), "metadata"},
	{regexp.MustCompile(`^\*\*(?:Labels|Etiketter|Tags):?\*\*:?\s*(.*)$`), "labels"},
	{regexp.MustCompile(`^\*\*(?:Question Stem|Frågetext|Question|Fråga|Stem):?\*\*:?\s*(.*)$`), "stem"},
	{regexp.MustCompile(`^\*\*(?:Answer Options|Svarsalternativ|Options|Alternativ):?\*\*:?\s*(.*)$`), "options"},
	{regexp.MustCompile(`^\*\*(?:Correct Answers?|Rätt svar|Answer|Svar):?\*\*:?\s*(.*)$`), "answer"},
	{regexp.MustCompile(`^\*\*(?:Feedback|Återkoppling):?\*\*:?\s*(.*)$`), "feedback"},
}

// typeRule is one entry in the free-text type resolution cascade. A rule
// matches when the lower-cased raw string contains every needsAll keyword and
// (if any are given) at least one needsAny keyword, or equals one of exact.
type typeRule struct {
	needsAll   []string
	needsAny   []string
	exact      []string
	resolved   question.Type
	confidence int
}

var typeRules = []typeRule{
	{needsAll: []string{"multiple choice", "single"}, resolved: question.MultipleChoiceSingle, confidence: 95},
	{needsAny: []string{"mc-single"}, exact: []string{"mc"}, resolved: question.MultipleChoiceSingle, confidence: 90},
	{needsAny: []string{"multiple response", "mc-multiple"}, exact: []string{"mr"}, resolved: question.MultipleResponse, confidence: 90},
	{needsAll: []string{"true", "false"}, resolved: question.TrueFalse, confidence: 95},
	{needsAll: []string{"sant", "falskt"}, resolved: question.TrueFalse, confidence: 95},
	{needsAny: []string{"inline choice", "dropdown"}, resolved: question.InlineChoice, confidence: 90},
	{needsAny: []string{"text entry", "fyll i"}, resolved: question.TextEntry, confidence: 85},
	{needsAny: []string{"match"}, resolved: question.Match, confidence: 90},
	{needsAny: []string{"essay", "essä"}, resolved: question.Essay, confidence: 90},
	// Generic "multiple" with no qualifier is a guess.
	{needsAny: []string{"multiple"}, resolved: question.MultipleChoiceSingle, confidence: 60},
}

func (r typeRule) matches(lower string) bool {
	for _, ex := range r.exact {
		if lower == ex {
			return true
		}
	}
	if len(r.needsAll) > 0 {
		for _, kw := range r.needsAll {
			if !strings.Contains(lower, kw) {
				return false
			}
		}
		return true
	}
	for _, kw := range r.needsAny {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// resolveTypeText runs the type cascade over a raw type string. The first
// matching rule wins. A miss yields found=false.
func resolveTypeText(raw string) (question.Type, int, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", 0, false
	}
	for _, rule := range typeRules {
		if rule.matches(lower) {
			return rule.resolved, rule.confidence, true
		}
	}
	return "", 0, false
}

// answerRule is one entry in the correct-answer cascade, run against the
// whole question span. First match wins; normalize reshapes the capture.
type answerRule struct {
	re         *regexp.Regexp
	confidence int
	source     string
	normalize  func(string) string
}

var answerRules = []answerRule{
	{regexp.MustCompile(`(?m)^\*\*Correct Answer:\*\*\s*(.+)$`), 95, "correct_answer_field", normalizeAnswerLetters},
	{regexp.MustCompile(`(?m)^\*\*Correct Answers:\*\*\s*(.+)$`), 95, "correct_answers_field", normalizeAnswerLetters},
	{regexp.MustCompile(`(?m)^\*\*Rätt svar:\*\*\s*(.+)$`), 95, "ratt_svar_field", normalizeAnswerLetters},
	{regexp.MustCompile(`(?mi)^(?:-\s*)?(True|False|Sant|Falskt)\s*$`), 95, "true_false_line", normalizeTrueFalse},
	{regexp.MustCompile(`\*\*Correct \(([A-Fa-f])`), 80, "feedback_inference", normalizeAnswerLetters},
}

var answerLetterRe = regexp.MustCompile(`[A-Fa-f]\b`)

// normalizeAnswerLetters upper-cases, de-duplicates and joins answer letters.
// True/False word answers map to the letters A/B by downstream convention.
func normalizeAnswerLetters(raw string) string {
	if tf := normalizeTrueFalse(raw); tf != "" && isTrueFalseWord(raw) {
		return tf
	}
	seen := make(map[string]bool)
	var letters []string
	for _, m := range answerLetterRe.FindAllString(raw, -1) {
		letter := strings.ToUpper(m)
		if !seen[letter] {
			seen[letter] = true
			letters = append(letters, letter)
		}
	}
	if len(letters) == 0 {
		return strings.TrimSpace(raw)
	}
	return strings.Join(letters, ", ")
}

func isTrueFalseWord(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "false", "sant", "falskt":
		return true
	}
	return false
}

func normalizeTrueFalse(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "sant":
		return "A"
	case "false", "falskt":
		return "B"
	}
	return ""
}

// localeTable maps a canonical value to its bilingual trigger keywords.
// Containment is checked against the lower-cased input; adding a language is
// a data change.
type localeTable []struct {
	canonical string
	keywords  []string
}

var bloomTable = localeTable{
	{"Remember", []string{"remember", "minnas", "komma ihåg"}},
	{"Understand", []string{"understand", "förstå"}},
	{"Apply", []string{"apply", "tillämpa"}},
	{"Analyze", []string{"analyze", "analyse", "analysera"}},
	{"Evaluate", []string{"evaluate", "värdera", "utvärdera"}},
	{"Create", []string{"create", "skapa"}},
}

var difficultyTable = localeTable{
	{"Easy", []string{"easy", "lätt"}},
	{"Medium", []string{"medium", "medel"}},
	{"Hard", []string{"hard", "svår"}},
}

func (t localeTable) lookup(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, entry := range t {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.canonical, true
			}
		}
	}
	return "", false
}

// Metadata, label and option line grammars.
var (
	metadataLineRe = regexp.MustCompile(`^-?\s*([A-Za-zÅÄÖåäö ]+?)\s*:\s*(.+)$`)
	labelLineRe    = regexp.MustCompile(`^-\s+(.+)$`)
	optionLineRe   = regexp.MustCompile(`^([A-Fa-f]|[1-6])[.)]\s*(.+)$`)
)

// Feedback capture grammars. Correct feedback runs to the next incorrect
// marker, a bold separator, a blank line followed by bold, or end of text.
var (
	correctFeedbackRe   = regexp.MustCompile(`(?s)\*\*Correct \(([^)]*)\):\*\*\s*(.*?)\s*(?:\*\*Incorrect|\*\*---|\n\s*\n\s*\*\*|$)`)
	incorrectFeedbackRe = regexp.MustCompile(`\*\*Incorrect \(([A-Fa-f])[^)]*\):\*\*\s*([^\n]*)`)
	generalFeedbackRe   = regexp.MustCompile(`(?s)\*\*(?:Feedback|Återkoppling):\*\*\s*(.*?)\s*(?:\n\s*\n|\*\*Correct|\*\*Incorrect|$)`)
)
