// SPDX-License-Identifier: Apache-2.0

// Package qfmd renders approved interpretations into the downstream QFMD
// markup and appends them to the output document.
package qfmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// EndFieldSentinel closes every top-level content block.
const EndFieldSentinel = "@end_field"

// Placeholder feedback used when neither specific nor general feedback is
// available; no feedback sub-field is ever emitted empty.
const (
	placeholderGeneral    = "See the course material for details. / Se kursmaterialet för mer information."
	placeholderCorrect    = "Correct! / Rätt svar!"
	placeholderIncorrect  = "Not quite right, review the material. / Inte helt rätt, repetera materialet."
	placeholderUnanswered = "No answer was given. / Inget svar angavs."
)

// Render produces one self-contained QFMD block for a finalized
// interpretation. Field order is stable; question numbers renormalize to the
// zero-padded three-digit form regardless of source numbering.
func Render(itp *question.Interpretation, courseCode, courseTitle string) string {
	f := &itp.Fields
	qid := padQuestionNumber(itp.QuestionNumber)
	qtype := question.Type(f.Type.Value)
	code := courseCode
	if code == "" {
		code = "COURSE"
	}

	var b strings.Builder
	title := f.Title.Value
	if title == "" {
		title = qid
	}
	fmt.Fprintf(&b, "<!-- %s: %s -->\n", qid, title)

	fmt.Fprintf(&b, "^question %s\n", qid)
	fmt.Fprintf(&b, "^type %s\n", f.Type.Value)
	fmt.Fprintf(&b, "^identifier %s_%s_%s\n", code, qtype.ShortCode(), qid)
	if f.Title.Found {
		fmt.Fprintf(&b, "^title %s\n", f.Title.Value)
	}
	points := f.Points.Value
	if !f.Points.Found {
		points = 1
	}
	fmt.Fprintf(&b, "^points %d\n", points)
	if f.Labels.Found && len(f.Labels.Value) > 0 {
		fmt.Fprintf(&b, "^labels %s\n", hashtags(f.Labels.Value))
	}
	if qtype.IsChoice() {
		b.WriteString("^shuffle true\n")
	}

	writeField(&b, "question_text", f.Stem.Value)

	if f.Options.Found && len(f.Options.Value) > 0 {
		writeField(&b, "options", strings.Join(f.Options.Value, "\n"))
	}
	if f.Answer.Found {
		writeField(&b, "answer", f.Answer.Value)
	}

	writeFeedback(&b, f.Feedback)
	writeOptionFeedback(&b, f.Feedback)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeField(b *strings.Builder, name, body string) {
	fmt.Fprintf(b, "@field: %s\n", name)
	if body != "" {
		b.WriteString(strings.TrimRight(body, "\n"))
		b.WriteByte('\n')
	}
	b.WriteString(EndFieldSentinel + "\n")
}

func writeSubField(b *strings.Builder, name, body string) {
	fmt.Fprintf(b, "@@field: %s\n", name)
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n@@end_field\n")
}

// writeFeedback emits the four fixed sub-fields in order, each falling back
// from specific feedback to general feedback to a placeholder.
func writeFeedback(b *strings.Builder, fb question.Feedback) {
	general := fallback(fb.General.Value, "", placeholderGeneral)
	correct := fallback(fb.Correct.Value, fb.General.Value, placeholderCorrect)
	incorrect := fallback(joinIncorrect(fb), fb.General.Value, placeholderIncorrect)
	unanswered := fallback(fb.General.Value, "", placeholderUnanswered)

	b.WriteString("@field: feedback\n")
	writeSubField(b, "general", general)
	writeSubField(b, "correct", correct)
	writeSubField(b, "incorrect", incorrect)
	writeSubField(b, "unanswered", unanswered)
	b.WriteString(EndFieldSentinel + "\n")
}

// writeOptionFeedback emits per-option incorrect feedback when present,
// keyed by option letter in sorted order.
func writeOptionFeedback(b *strings.Builder, fb question.Feedback) {
	if len(fb.Incorrect) == 0 {
		return
	}
	b.WriteString("@field: option_feedback\n")
	for _, letter := range sortedLetters(fb.Incorrect) {
		writeSubField(b, letter, fb.Incorrect[letter].Value)
	}
	b.WriteString(EndFieldSentinel + "\n")
}

func fallback(specific, general, placeholder string) string {
	if strings.TrimSpace(specific) != "" {
		return specific
	}
	if strings.TrimSpace(general) != "" {
		return general
	}
	return placeholder
}

func joinIncorrect(fb question.Feedback) string {
	if len(fb.Incorrect) == 0 {
		return ""
	}
	var parts []string
	for _, letter := range sortedLetters(fb.Incorrect) {
		parts = append(parts, fb.Incorrect[letter].Value)
	}
	return strings.Join(parts, " ")
}

func sortedLetters(m map[string]question.FieldValue[string]) []string {
	letters := make([]string, 0, len(m))
	for letter := range m {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	return letters
}

// padQuestionNumber renormalizes Q1 to Q001. Numbers that do not parse are
// returned unchanged.
func padQuestionNumber(num string) string {
	digits := strings.TrimPrefix(num, "Q")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return num
	}
	return fmt.Sprintf("Q%03d", n)
}

func hashtags(labels []string) string {
	tags := make([]string, 0, len(labels))
	for _, label := range labels {
		tag := strings.ReplaceAll(strings.TrimSpace(label), " ", "-")
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+tag)
	}
	return strings.Join(tags, " ")
}
