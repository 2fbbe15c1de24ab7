// SPDX-License-Identifier: Apache-2.0

package completeness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// Severity tags one completeness issue. Errors dominate warnings, which
// dominate info.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding about one question. Not persisted.
type Issue struct {
	QuestionID  string   `json:"question_id"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion,omitempty"`
	AutoFixable bool     `json:"auto_fixable"`
}

// Status is the rolled-up state of a question or a batch.
type Status string

const (
	StatusPass     Status = "pass"
	StatusWarnings Status = "warnings"
	StatusErrors   Status = "errors"
)

// QuestionReport is the per-question roll-up.
type QuestionReport struct {
	QuestionID string  `json:"question_id"`
	Status     Status  `json:"status"`
	Issues     []Issue `json:"issues"`
}

// Result is the batch roll-up. A question with zero errors counts as passed
// regardless of warnings.
type Result struct {
	Overall   Status           `json:"overall"`
	Questions []QuestionReport `json:"questions"`
	Passed    int              `json:"passed"`
	Total     int              `json:"total"`
}

// CheckQuestion validates one interpretation against its type's
// requirements. An unresolvable type yields a single error and no further
// checks for that question.
func CheckQuestion(itp *question.Interpretation) []Issue {
	resolved, ok := resolveInterpretation(itp)
	if !ok {
		return []Issue{{
			QuestionID: itp.QuestionNumber,
			Severity:   SeverityError,
			Field:      "type",
			Message:    fmt.Sprintf("question type %q could not be resolved", itp.Fields.Type.Raw),
			Suggestion: suggestions["type"],
		}}
	}

	reqs, ok := requirementTable[resolved]
	if !ok {
		reqs = Requirements{Fields: []string{"title", "type", "stem"}}
	}

	var issues []Issue
	for _, field := range reqs.Fields {
		if fieldPresent(&itp.Fields, field) {
			continue
		}
		issues = append(issues, Issue{
			QuestionID:  itp.QuestionNumber,
			Severity:    SeverityError,
			Field:       field,
			Message:     fmt.Sprintf("required field %q is missing", field),
			Suggestion:  suggestions[field],
			AutoFixable: autoFixable[field],
		})
	}

	if reqs.Feedback {
		issues = append(issues, feedbackIssues(itp)...)
	}

	for _, name := range reqs.Constraints {
		if issue := checkConstraint(name, resolved, itp); issue != nil {
			issues = append(issues, *issue)
		}
	}

	issues = append(issues, labelHygieneIssues(itp)...)
	return issues
}

// CheckCompleteness runs CheckQuestion per question and aggregates status
// with error > warning > pass dominance.
func CheckCompleteness(itps []*question.Interpretation) Result {
	result := Result{Overall: StatusPass, Total: len(itps)}
	for _, itp := range itps {
		issues := CheckQuestion(itp)
		status := rollUp(issues)
		if status != StatusErrors {
			result.Passed++
		}
		if dominates(status, result.Overall) {
			result.Overall = status
		}
		result.Questions = append(result.Questions, QuestionReport{
			QuestionID: itp.QuestionNumber,
			Status:     status,
			Issues:     issues,
		})
	}
	return result
}

func rollUp(issues []Issue) Status {
	status := StatusPass
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			return StatusErrors
		case SeverityWarning:
			status = StatusWarnings
		}
	}
	return status
}

func dominates(a, b Status) bool {
	rank := map[Status]int{StatusPass: 0, StatusWarnings: 1, StatusErrors: 2}
	return rank[a] > rank[b]
}

func fieldPresent(f *question.Fields, name string) bool {
	switch name {
	case "title":
		return f.Title.Found
	case "type":
		return f.Type.Found
	case "stem":
		return f.Stem.Found
	case "options":
		return f.Options.Found && len(f.Options.Value) > 0
	case "answer":
		return f.Answer.Found
	case "points":
		return f.Points.Found
	case "feedback":
		return f.Feedback.Present()
	case "labels":
		return f.Labels.Found
	case "bloom":
		return f.Bloom.Found
	case "difficulty":
		return f.Difficulty.Found
	}
	return false
}

// feedbackIssues reports absent feedback as warnings, never errors.
func feedbackIssues(itp *question.Interpretation) []Issue {
	var issues []Issue
	if !itp.Fields.Feedback.Correct.Found && !itp.Fields.Feedback.General.Found {
		issues = append(issues, Issue{
			QuestionID: itp.QuestionNumber,
			Severity:   SeverityWarning,
			Field:      "feedback",
			Message:    "no correct-answer or general feedback",
			Suggestion: "Add a **Correct (X):** feedback block / Lägg till återkoppling för rätt svar",
		})
	}
	if len(itp.Fields.Feedback.Incorrect) == 0 {
		issues = append(issues, Issue{
			QuestionID: itp.QuestionNumber,
			Severity:   SeverityWarning,
			Field:      "feedback",
			Message:    "no per-option incorrect feedback",
			Suggestion: "Add **Incorrect (X):** blocks per distractor / Lägg till återkoppling per felaktigt alternativ",
		})
	}
	return issues
}

// checkConstraint runs one named constraint predicate. Severity is warning
// when the constraint name contains "max", error otherwise.
func checkConstraint(name string, resolved question.Type, itp *question.Interpretation) *Issue {
	severity := SeverityError
	if strings.Contains(strings.ToLower(name), "max") {
		severity = SeverityWarning
	}

	fail := func(field, message string) *Issue {
		return &Issue{
			QuestionID: itp.QuestionNumber,
			Severity:   severity,
			Field:      field,
			Message:    message,
		}
	}

	f := &itp.Fields
	switch name {
	case "minOptions":
		if f.Options.Found && len(f.Options.Value) < 2 {
			return fail("options", "fewer than 2 answer options")
		}
	case "maxOptions":
		if f.Options.Found && len(f.Options.Value) > 6 {
			return fail("options", "more than 6 answer options")
		}
	case "singleAnswer":
		if f.Answer.Found && strings.Contains(f.Answer.Value, ",") {
			return fail("answer", fmt.Sprintf("type %s expects a single answer, got %q", resolved, f.Answer.Value))
		}
	case "multipleAnswers":
		if f.Answer.Found && !strings.Contains(f.Answer.Value, ",") {
			return fail("answer", fmt.Sprintf("type %s expects multiple answers, got %q", resolved, f.Answer.Value))
		}
	case "numericAnswer":
		if f.Answer.Found {
			if _, err := strconv.ParseFloat(strings.ReplaceAll(f.Answer.Value, ",", "."), 64); err != nil {
				return fail("answer", fmt.Sprintf("answer %q is not numeric", f.Answer.Value))
			}
		}
	case "imagePresent":
		if f.Stem.Found && !strings.Contains(f.Stem.Value, "![") {
			return fail("stem", fmt.Sprintf("type %s requires an image in the stem", resolved))
		}
	}
	return nil
}

// labelHygieneIssues suggests mirroring Bloom and Difficulty values into the
// labels collection. Info level only.
func labelHygieneIssues(itp *question.Interpretation) []Issue {
	var issues []Issue
	mirror := func(field, value string) {
		if value == "" {
			return
		}
		for _, label := range itp.Fields.Labels.Value {
			if strings.EqualFold(label, value) {
				return
			}
		}
		issues = append(issues, Issue{
			QuestionID: itp.QuestionNumber,
			Severity:   SeverityInfo,
			Field:      "labels",
			Message:    fmt.Sprintf("%s value %q is not mirrored in labels", field, value),
			Suggestion: fmt.Sprintf("Add %q to the labels / Lägg till %q bland etiketterna", value, value),
		})
	}
	if itp.Fields.Bloom.Found {
		mirror("bloom", itp.Fields.Bloom.Value)
	}
	if itp.Fields.Difficulty.Found {
		mirror("difficulty", itp.Fields.Difficulty.Value)
	}
	return issues
}
