// SPDX-License-Identifier: Apache-2.0

package m3

import (
	"strconv"
	"strings"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// Extractor turns one question span into a confidence-annotated
// Interpretation. Extraction is best effort: a field the span does not carry
// is reported missing, never an error.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses a span into an Interpretation, or returns nil when the
// span's first line does not match the question-header grammar.
func (e *Extractor) Extract(span Span) *question.Interpretation {
	lines := strings.Split(span.Text, "\n")
	if len(lines) == 0 {
		return nil
	}

	m := questionHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return nil
	}
	num := m[1]
	if num == "" {
		num = m[2]
	}

	itp := &question.Interpretation{
		QuestionNumber: "Q" + num,
		RawContent:     span.Text,
		LineNumber:     span.StartLine,
	}

	if title := strings.TrimSpace(m[3]); title != "" {
		itp.Fields.Title = question.Extracted(title, 95, "header")
	}

	sections := splitSections(lines[1:])

	var labels []string
	e.parseMetadata(sections["metadata"], &itp.Fields, &labels)
	e.parseLabels(sections["labels"], &labels)
	if len(labels) > 0 {
		itp.Fields.Labels = question.Extracted(labels, 90, "labels_section")
	}

	if stem, ok := sections["stem"]; ok {
		if body := strings.TrimSpace(stem); body != "" {
			itp.Fields.Stem = question.Extracted(body, 95, "stem_section")
		}
	}

	e.parseOptions(sections["options"], &itp.Fields)
	e.parseAnswer(span.Text, &itp.Fields)
	e.parseFeedback(span.Text, &itp.Fields)

	itp.Reclassify(resolvedType(itp.Fields.Type))
	return itp
}

func resolvedType(tf question.FieldValue[string]) question.Type {
	if !tf.Found {
		return ""
	}
	return question.Type(tf.Value)
}

// splitSections walks the span body maintaining a current-section pointer.
// A section marker closes the previous buffer and opens a new one, seeded
// with any inline text after the marker. Lines before the first marker
// belong to no section and are dropped.
func splitSections(lines []string) map[string]string {
	sections := make(map[string]string)
	current := ""
	var buf []string

	flush := func() {
		if current == "" {
			return
		}
		body := strings.Join(buf, "\n")
		if existing, ok := sections[current]; ok && existing != "" {
			body = existing + "\n" + body
		}
		sections[current] = body
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		matched := false
		for _, rule := range sectionRules {
			sm := rule.re.FindStringSubmatch(trimmed)
			if sm == nil {
				continue
			}
			flush()
			current = rule.section
			buf = nil
			if inline := strings.TrimSpace(sm[1]); inline != "" {
				buf = append(buf, inline)
			}
			matched = true
			break
		}
		if !matched && current != "" {
			buf = append(buf, line)
		}
	}
	flush()
	return sections
}

const metadataSource = "metadata"

func (e *Extractor) parseMetadata(body string, fields *question.Fields, labels *[]string) {
	for _, line := range strings.Split(body, "\n") {
		m := metadataLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m[1])), " ", "")
		value := strings.TrimSpace(m[2])

		switch key {
		case "type", "typ", "frågetyp":
			if resolved, conf, ok := resolveTypeText(value); ok {
				fields.Type = question.Extracted(string(resolved), conf, metadataSource)
				fields.Type.Raw = value
			} else {
				fields.Type.Raw = value
			}
		case "bloom":
			if canonical, ok := bloomTable.lookup(value); ok {
				fields.Bloom = question.Extracted(canonical, 90, metadataSource)
			}
		case "difficulty", "svårighetsgrad":
			if canonical, ok := difficultyTable.lookup(value); ok {
				fields.Difficulty = question.Extracted(canonical, 90, metadataSource)
			}
		case "points", "poäng":
			if n, err := strconv.Atoi(value); err == nil {
				fields.Points = question.Extracted(n, 95, metadataSource)
			} else {
				fields.Points = question.Extracted(1, 50, metadataSource)
				fields.Points.Raw = value
			}
		case "lo", "learningobjective":
			*labels = append(*labels, value)
		}
	}
}

func (e *Extractor) parseLabels(body string, labels *[]string) {
	for _, line := range strings.Split(body, "\n") {
		if m := labelLineRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			*labels = append(*labels, strings.TrimSpace(m[1]))
		}
	}
}

// parseOptions normalizes option markers: numeric 1-6 become letters A-F and
// every option renders as "<LETTER>. <text>". Re-normalizing is a no-op.
func (e *Extractor) parseOptions(body string, fields *question.Fields) {
	var options []string
	for _, line := range strings.Split(body, "\n") {
		m := optionLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		options = append(options, normalizeOptionLetter(m[1])+". "+strings.TrimSpace(m[2]))
	}
	if len(options) > 0 {
		fields.Options = question.Extracted(options, 90, "options_section")
	}
}

func normalizeOptionLetter(marker string) string {
	if marker >= "1" && marker <= "6" {
		return string(rune('A' + marker[0] - '1'))
	}
	return strings.ToUpper(marker)
}

// parseAnswer runs the answer cascade over the entire span, not just the
// answer section; explicit answer fields outrank feedback inference.
func (e *Extractor) parseAnswer(text string, fields *question.Fields) {
	for _, rule := range answerRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := rule.normalize(m[1])
		if value == "" {
			continue
		}
		fields.Answer = question.Extracted(value, rule.confidence, rule.source)
		fields.Answer.Raw = strings.TrimSpace(m[1])
		return
	}
}

func (e *Extractor) parseFeedback(text string, fields *question.Fields) {
	if m := correctFeedbackRe.FindStringSubmatch(text); m != nil {
		if body := strings.TrimSpace(m[2]); body != "" {
			fields.Feedback.Correct = question.Extracted(body, 90, "correct_marker")
		}
	}

	for _, m := range incorrectFeedbackRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[2])
		if body == "" {
			continue
		}
		if fields.Feedback.Incorrect == nil {
			fields.Feedback.Incorrect = make(map[string]question.FieldValue[string])
		}
		fields.Feedback.Incorrect[strings.ToUpper(m[1])] = question.Extracted(body, 90, "incorrect_marker")
	}

	// A bare feedback block is un-attributed, hence the lower confidence.
	if !fields.Feedback.Correct.Found {
		if m := generalFeedbackRe.FindStringSubmatch(text); m != nil {
			if body := strings.TrimSpace(m[1]); body != "" {
				fields.Feedback.General = question.Extracted(body, 70, "feedback_block")
			}
		}
	}
}
