// SPDX-License-Identifier: Apache-2.0

package completeness

import (
	"strings"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// typeAliases is the canonical lookup table consulted before any heuristic:
// canonical codes plus bilingual aliases, matched exactly.
var typeAliases = map[string]question.Type{
	"mc-single":        question.MultipleChoiceSingle,
	"mc":               question.MultipleChoiceSingle,
	"flerval":          question.MultipleChoiceSingle,
	"mc-multiple":      question.MultipleResponse,
	"mr":               question.MultipleResponse,
	"sant/falskt":      question.TrueFalse,
	"true/false":       question.TrueFalse,
	"inline choice":    question.InlineChoice,
	"dropdown":         question.InlineChoice,
	"text entry":       question.TextEntry,
	"fyll i":           question.TextEntry,
	"numeric entry":    question.NumericEntry,
	"math entry":       question.MathEntry,
	"matchning":        question.Match,
	"hotspot":          question.Hotspot,
	"essä":             question.Essay,
	"essay":            question.Essay,
	"uppsats":          question.Essay,
}

// ResolveType maps a free-text type string to its canonical code: canonical
// codes first, then exact aliases case-insensitively, then substring
// heuristics as a last resort. Returns ok=false when nothing matches.
func ResolveType(raw string) (question.Type, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	for _, t := range question.AllTypes {
		if trimmed == string(t) {
			return t, true
		}
	}

	lower := strings.ToLower(trimmed)
	for _, t := range question.AllTypes {
		if lower == string(t) {
			return t, true
		}
	}
	if t, ok := typeAliases[lower]; ok {
		return t, true
	}

	// Last-resort substring heuristics.
	switch {
	case strings.Contains(lower, "multiple choice"), strings.Contains(lower, "mc"):
		if strings.Contains(lower, "response") {
			return question.MultipleResponse, true
		}
		return question.MultipleChoiceSingle, true
	case strings.Contains(lower, "true") && strings.Contains(lower, "false"):
		return question.TrueFalse, true
	case strings.Contains(lower, "sant") && strings.Contains(lower, "falskt"):
		return question.TrueFalse, true
	case strings.Contains(lower, "essay"), strings.Contains(lower, "essä"):
		return question.Essay, true
	}
	return "", false
}

// resolveInterpretation resolves the type of an interpretation from its
// canonical value when present, falling back to the raw metadata string.
func resolveInterpretation(itp *question.Interpretation) (question.Type, bool) {
	if itp.Fields.Type.Found {
		if t, ok := ResolveType(itp.Fields.Type.Value); ok {
			return t, true
		}
	}
	if itp.Fields.Type.Raw != "" {
		return ResolveType(itp.Fields.Type.Raw)
	}
	return "", false
}
