// SPDX-License-Identifier: Apache-2.0

package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortCode(t *testing.T) {
	assert.Equal(t, "MC", MultipleChoiceSingle.ShortCode())
	assert.Equal(t, "MR", MultipleResponse.ShortCode())
	assert.Equal(t, "TF", TrueFalse.ShortCode())
	assert.Equal(t, "ES", Essay.ShortCode())
	assert.Equal(t, "Q", Type("crossword").ShortCode())

	for _, qtype := range AllTypes {
		assert.NotEqual(t, "Q", qtype.ShortCode(), "canonical type %s must have its own code", qtype)
	}
}

func TestFieldValue_Uncertain(t *testing.T) {
	assert.False(t, Missing[string]().Uncertain(), "absent fields are missing, not uncertain")
	assert.True(t, Extracted("x", 69, "test").Uncertain())
	assert.False(t, Extracted("x", 70, "test").Uncertain(), "threshold itself is certain")
	assert.False(t, Extracted("x", 95, "test").Uncertain())
}

func TestFeedback_Present(t *testing.T) {
	var fb Feedback
	assert.False(t, fb.Present())

	fb.Incorrect = map[string]FieldValue[string]{"A": Extracted("no", 90, "test")}
	assert.False(t, fb.Present(), "per-option feedback alone is not presence")

	fb.General = Extracted("see notes", 70, "test")
	assert.True(t, fb.Present())
	assert.Equal(t, 70, fb.BestConfidence())

	fb.Correct = Extracted("yes", 90, "test")
	assert.Equal(t, 90, fb.BestConfidence())
}

func TestSetField(t *testing.T) {
	var f Fields

	require.NoError(t, f.SetField("title", "Cell division"))
	assert.Equal(t, "Cell division", f.Title.Value)
	assert.Equal(t, 100, f.Title.Confidence)
	assert.Equal(t, UserSource, f.Title.Source)
	assert.True(t, f.Title.Found)

	require.NoError(t, f.SetField("options", []string{"A. Mitosis", "B. Meiosis"}))
	assert.Equal(t, []string{"A. Mitosis", "B. Meiosis"}, f.Options.Value)

	// JSON-decoded corrections arrive as []any and float64.
	require.NoError(t, f.SetField("labels", []any{"Module 2"}))
	assert.Equal(t, []string{"Module 2"}, f.Labels.Value)
	require.NoError(t, f.SetField("points", float64(3)))
	assert.Equal(t, 3, f.Points.Value)

	require.NoError(t, f.SetField("labels", "single"))
	assert.Equal(t, []string{"single"}, f.Labels.Value)

	require.NoError(t, f.SetField("feedback", "general note"))
	assert.Equal(t, "general note", f.Feedback.General.Value)

	assert.Error(t, f.SetField("title", 42))
	assert.Error(t, f.SetField("points", "three"))
	assert.Error(t, f.SetField("options", []any{1, 2}))
	assert.Error(t, f.SetField("nonsense", "x"))
}

func TestSetFeedbackField(t *testing.T) {
	var f Fields

	require.NoError(t, f.SetFeedbackField("correct", "", "Right answer."))
	require.NoError(t, f.SetFeedbackField("general", "", "Read chapter 4."))
	require.NoError(t, f.SetFeedbackField("incorrect", "B", "Not B."))

	assert.Equal(t, "Right answer.", f.Feedback.Correct.Value)
	assert.Equal(t, "Read chapter 4.", f.Feedback.General.Value)
	assert.Equal(t, "Not B.", f.Feedback.Incorrect["B"].Value)
	assert.Equal(t, UserSource, f.Feedback.Incorrect["B"].Source)

	assert.Error(t, f.SetFeedbackField("incorrect", "", "needs a letter"))
	assert.Error(t, f.SetFeedbackField("partial", "", "no such sub-field"))
}

func TestRequiredField(t *testing.T) {
	tests := []struct {
		qtype Type
		field string
		want  bool
	}{
		{MultipleChoiceSingle, "title", true},
		{Essay, "stem", true},
		{Type(""), "type", true},
		{MultipleChoiceSingle, "options", true},
		{MultipleResponse, "options", true},
		{TrueFalse, "options", false},
		{Essay, "options", false},
		{MultipleChoiceSingle, "answer", true},
		{TrueFalse, "answer", true},
		{TextEntry, "answer", true},
		{NumericEntry, "answer", true},
		{MathEntry, "answer", true},
		{InlineChoice, "answer", true},
		{Essay, "answer", false},
		{Match, "answer", false},
		{MultipleChoiceSingle, "feedback", false},
		{MultipleChoiceSingle, "labels", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RequiredField(tc.qtype, tc.field), "%s/%s", tc.qtype, tc.field)
	}
}

func TestReclassify(t *testing.T) {
	itp := &Interpretation{QuestionNumber: "Q1"}
	itp.Fields.Title = Extracted("T", 95, "header")
	itp.Fields.Type = Extracted(string(MultipleChoiceSingle), 95, "metadata")
	itp.Fields.Stem = Extracted("S", 95, "stem_section")
	itp.Fields.Answer = Extracted("B", 60, "feedback_inference")

	itp.Reclassify(MultipleChoiceSingle)

	assert.Equal(t, []string{"options"}, itp.MissingFields)
	assert.Equal(t, []string{"answer"}, itp.UncertainFields)

	// The same fields reclassified as essay drop both requirements.
	itp.Reclassify(Essay)
	assert.Empty(t, itp.MissingFields)
	assert.Equal(t, []string{"answer"}, itp.UncertainFields, "uncertainty is independent of requiredness")

	// Optional absent fields never land in either list.
	itp.Reclassify(MultipleChoiceSingle)
	assert.NotContains(t, itp.MissingFields, "feedback")
	assert.NotContains(t, itp.MissingFields, "bloom")
}
