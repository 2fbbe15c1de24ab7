// SPDX-License-Identifier: Apache-2.0

package completeness

import "github.com/questionforge/qforge-mcp/internal/question"

// Requirements lists what a question of a given type must carry.
// Constraints name predicate checks run after the presence checks; a
// constraint whose name contains "max" downgrades to a warning.
type Requirements struct {
	Fields      []string
	Optional    []string
	Constraints []string
	Feedback    bool
}

var choiceRequirements = Requirements{
	Fields:      []string{"title", "type", "stem", "options", "answer", "points"},
	Optional:    []string{"labels", "bloom", "difficulty"},
	Constraints: []string{"minOptions", "maxOptions", "singleAnswer"},
	Feedback:    true,
}

var requirementTable = map[question.Type]Requirements{
	question.MultipleChoiceSingle: choiceRequirements,
	question.MultipleResponse: {
		Fields:      choiceRequirements.Fields,
		Optional:    choiceRequirements.Optional,
		Constraints: []string{"minOptions", "maxOptions", "multipleAnswers"},
		Feedback:    true,
	},
	question.TrueFalse: {
		Fields:      []string{"title", "type", "stem", "answer", "points"},
		Optional:    []string{"labels", "bloom", "difficulty"},
		Constraints: []string{"singleAnswer"},
		Feedback:    true,
	},
	question.InlineChoice: {
		Fields:   []string{"title", "type", "stem", "answer", "points"},
		Optional: []string{"labels", "bloom", "difficulty"},
	},
	question.TextEntry: {
		Fields:   []string{"title", "type", "stem", "answer", "points"},
		Optional: []string{"labels", "bloom", "difficulty"},
	},
	question.NumericEntry: {
		Fields:      []string{"title", "type", "stem", "answer", "points"},
		Optional:    []string{"labels", "bloom", "difficulty"},
		Constraints: []string{"numericAnswer"},
	},
	question.MathEntry: {
		Fields:   []string{"title", "type", "stem", "answer", "points"},
		Optional: []string{"labels", "bloom", "difficulty"},
	},
	question.Match: {
		Fields:      []string{"title", "type", "stem", "points"},
		Optional:    []string{"labels", "bloom", "difficulty", "options"},
		Constraints: []string{"minOptions"},
	},
	question.Hotspot: {
		Fields:      []string{"title", "type", "stem", "points"},
		Constraints: []string{"imagePresent"},
	},
	question.GraphicAssociate: {
		Fields:      []string{"title", "type", "stem", "points"},
		Constraints: []string{"imagePresent"},
	},
	question.GraphicGapMatch: {
		Fields:      []string{"title", "type", "stem", "points"},
		Constraints: []string{"imagePresent"},
	},
	question.GraphicOrder: {
		Fields:      []string{"title", "type", "stem", "points"},
		Constraints: []string{"imagePresent"},
	},
	question.AudioRecord: {
		Fields: []string{"title", "type", "stem", "points"},
	},
	question.Composite: {
		Fields: []string{"title", "type", "stem", "points"},
	},
	question.NativeHTML: {
		Fields: []string{"title", "type", "stem", "points"},
	},
	question.Essay: {
		Fields:   []string{"title", "type", "stem", "points"},
		Optional: []string{"labels", "bloom", "difficulty"},
	},
}

// suggestions holds the canned bilingual fix hints per field.
var suggestions = map[string]string{
	"title":   "Add a title after the question heading / Lägg till en titel efter frågerubriken",
	"type":    "Add a Type line to the metadata / Lägg till en typ-rad i metadatan",
	"stem":    "Add a Question Stem section / Lägg till en frågetext-sektion",
	"options": "Add an Answer Options section with at least two options / Lägg till svarsalternativ, minst två",
	"answer":  "Add a Correct Answer line / Lägg till en rad med rätt svar",
	"points":  "Add a Points line to the metadata / Lägg till poäng i metadatan",
}

// autoFixable marks fields the checker may repair itself. Only points has a
// safe default (1).
var autoFixable = map[string]bool{
	"points": true,
}
