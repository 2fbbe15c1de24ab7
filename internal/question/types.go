// SPDX-License-Identifier: Apache-2.0

package question

import "fmt"

// Type is the canonical question-type code used as a lookup key throughout.
type Type string

const (
	MultipleChoiceSingle Type = "multiple_choice_single"
	MultipleResponse     Type = "multiple_response"
	TrueFalse            Type = "true_false"
	InlineChoice         Type = "inline_choice"
	TextEntry            Type = "text_entry"
	NumericEntry         Type = "text_entry_numeric"
	MathEntry            Type = "text_entry_math"
	Match                Type = "match"
	Hotspot              Type = "hotspot"
	GraphicAssociate     Type = "graphic_associate"
	GraphicGapMatch      Type = "graphic_gap_match"
	GraphicOrder         Type = "graphic_order"
	AudioRecord          Type = "audio_record"
	Composite            Type = "composite"
	NativeHTML           Type = "native_html"
	Essay                Type = "essay"
)

// AllTypes lists every canonical type code.
var AllTypes = []Type{
	MultipleChoiceSingle, MultipleResponse, TrueFalse, InlineChoice,
	TextEntry, NumericEntry, MathEntry, Match, Hotspot,
	GraphicAssociate, GraphicGapMatch, GraphicOrder, AudioRecord,
	Composite, NativeHTML, Essay,
}

var shortCodes = map[Type]string{
	MultipleChoiceSingle: "MC",
	MultipleResponse:     "MR",
	TrueFalse:            "TF",
	InlineChoice:         "IC",
	TextEntry:            "TE",
	NumericEntry:         "NE",
	MathEntry:            "ME",
	Match:                "MA",
	Hotspot:              "HS",
	GraphicAssociate:     "GA",
	GraphicGapMatch:      "GG",
	GraphicOrder:         "GO",
	AudioRecord:          "AU",
	Composite:            "CO",
	NativeHTML:           "NH",
	Essay:                "ES",
}

// ShortCode returns the two-letter code used in synthesized identifiers,
// or "Q" for any unmapped type.
func (t Type) ShortCode() string {
	if code, ok := shortCodes[t]; ok {
		return code
	}
	return "Q"
}

// IsChoice reports whether the type carries answer options.
func (t Type) IsChoice() bool {
	return t == MultipleChoiceSingle || t == MultipleResponse
}

// ReviewThreshold is the confidence score below which an extracted field is
// flagged for human review.
const ReviewThreshold = 70

// FieldValue wraps one extracted datum with its provenance. Found=false means
// the field was not present in the source; Confidence is then always 0.
type FieldValue[T any] struct {
	Value      T      `json:"value"`
	Found      bool   `json:"found"`
	Confidence int    `json:"confidence"`
	Source     string `json:"source"`
	Raw        string `json:"raw,omitempty"`
}

// Extracted builds a found FieldValue.
func Extracted[T any](value T, confidence int, source string) FieldValue[T] {
	return FieldValue[T]{Value: value, Found: true, Confidence: confidence, Source: source}
}

// Missing builds an absent FieldValue.
func Missing[T any]() FieldValue[T] {
	return FieldValue[T]{}
}

// Uncertain reports whether the field was found but below the review threshold.
func (f FieldValue[T]) Uncertain() bool {
	return f.Found && f.Confidence < ReviewThreshold
}

// Feedback is the nested feedback record: correct-answer feedback,
// per-option-letter incorrect feedback, and un-attributed general feedback.
type Feedback struct {
	Correct   FieldValue[string]            `json:"correct"`
	Incorrect map[string]FieldValue[string] `json:"incorrect,omitempty"`
	General   FieldValue[string]            `json:"general"`
}

// Present reports whether feedback counts as extracted. Per-option incorrect
// feedback alone does not satisfy presence.
func (fb Feedback) Present() bool {
	return fb.Correct.Found || fb.General.Found
}

// BestConfidence returns the highest confidence among the present correct and
// general sub-fields, or 0 when neither is present.
func (fb Feedback) BestConfidence() int {
	best := 0
	if fb.Correct.Found && fb.Correct.Confidence > best {
		best = fb.Correct.Confidence
	}
	if fb.General.Found && fb.General.Confidence > best {
		best = fb.General.Confidence
	}
	return best
}

// Fields is the fixed record of extractable question fields. Every access
// goes through the named member or SetField; there is no dynamic key lookup.
type Fields struct {
	Title      FieldValue[string]   `json:"title"`
	Type       FieldValue[string]   `json:"type"`
	Stem       FieldValue[string]   `json:"stem"`
	Options    FieldValue[[]string] `json:"options"`
	Answer     FieldValue[string]   `json:"answer"`
	Feedback   Feedback             `json:"feedback"`
	Labels     FieldValue[[]string] `json:"labels"`
	Points     FieldValue[int]      `json:"points"`
	Bloom      FieldValue[string]   `json:"bloom"`
	Difficulty FieldValue[string]   `json:"difficulty"`
}

// FieldNames lists the top-level field names in their fixed order.
var FieldNames = []string{
	"title", "type", "stem", "options", "answer",
	"feedback", "labels", "points", "bloom", "difficulty",
}

// UserSource marks a value supplied by the reviewer rather than extraction.
const UserSource = "user"

// SetField overwrites one top-level field with a reviewer-supplied value at
// full confidence. Feedback sub-fields go through SetFeedbackField instead.
func (f *Fields) SetField(name string, value any) error {
	switch name {
	case "title":
		return setString(&f.Title, name, value)
	case "type":
		return setString(&f.Type, name, value)
	case "stem":
		return setString(&f.Stem, name, value)
	case "answer":
		return setString(&f.Answer, name, value)
	case "bloom":
		return setString(&f.Bloom, name, value)
	case "difficulty":
		return setString(&f.Difficulty, name, value)
	case "options":
		return setStrings(&f.Options, name, value)
	case "labels":
		return setStrings(&f.Labels, name, value)
	case "points":
		n, ok := value.(int)
		if !ok {
			if fv, isFloat := value.(float64); isFloat {
				n, ok = int(fv), true
			}
		}
		if !ok {
			return fmt.Errorf("field %q requires an integer, got %T", name, value)
		}
		f.Points = Extracted(n, 100, UserSource)
		return nil
	case "feedback":
		return setString(&f.Feedback.General, name, value)
	default:
		return fmt.Errorf("unknown field %q", name)
	}
}

// SetFeedbackField overwrites one feedback sub-field. sub is one of
// "correct", "general", or "incorrect" (the latter requires a non-empty
// option letter).
func (f *Fields) SetFeedbackField(sub, letter string, value string) error {
	switch sub {
	case "correct":
		f.Feedback.Correct = Extracted(value, 100, UserSource)
	case "general":
		f.Feedback.General = Extracted(value, 100, UserSource)
	case "incorrect":
		if letter == "" {
			return fmt.Errorf("incorrect feedback requires an option letter")
		}
		if f.Feedback.Incorrect == nil {
			f.Feedback.Incorrect = make(map[string]FieldValue[string])
		}
		f.Feedback.Incorrect[letter] = Extracted(value, 100, UserSource)
	default:
		return fmt.Errorf("unknown feedback sub-field %q", sub)
	}
	return nil
}

func setString(dst *FieldValue[string], name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q requires a string, got %T", name, value)
	}
	*dst = Extracted(s, 100, UserSource)
	return nil
}

func setStrings(dst *FieldValue[[]string], name string, value any) error {
	switch v := value.(type) {
	case []string:
		*dst = Extracted(v, 100, UserSource)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("field %q requires strings, got %T", name, item)
			}
			out = append(out, s)
		}
		*dst = Extracted(out, 100, UserSource)
	case string:
		*dst = Extracted([]string{v}, 100, UserSource)
	default:
		return fmt.Errorf("field %q requires a string list, got %T", name, value)
	}
	return nil
}

// Interpretation is one question's extracted fields plus the derived review
// annotations. MissingFields and UncertainFields are recomputed whenever the
// fields change; they are never edited independently.
type Interpretation struct {
	QuestionNumber  string   `json:"question_number"`
	Fields          Fields   `json:"fields"`
	MissingFields   []string `json:"missing_fields"`
	UncertainFields []string `json:"uncertain_fields"`
	RawContent      string   `json:"raw_content"`
	LineNumber      int      `json:"line_number"`
}

// RequiredField reports whether a field is required for the given type.
// Title, type and stem are always required. Choice/response types require
// options and answer; true/false, text-entry and inline-choice require the
// answer alone. Anything else has no hard requirements.
func RequiredField(t Type, field string) bool {
	switch field {
	case "title", "type", "stem":
		return true
	case "options":
		return t.IsChoice()
	case "answer":
		if t.IsChoice() {
			return true
		}
		switch t {
		case TrueFalse, TextEntry, NumericEntry, MathEntry, InlineChoice:
			return true
		}
	}
	return false
}

// Reclassify recomputes MissingFields and UncertainFields from the current
// field values, gating requirements on the given resolved type (which may be
// empty when the type itself is still unknown).
func (itp *Interpretation) Reclassify(resolved Type) {
	itp.MissingFields = nil
	itp.UncertainFields = nil

	check := func(name string, found bool, uncertain bool) {
		if !found {
			if RequiredField(resolved, name) {
				itp.MissingFields = append(itp.MissingFields, name)
			}
			return
		}
		if uncertain {
			itp.UncertainFields = append(itp.UncertainFields, name)
		}
	}

	f := &itp.Fields
	check("title", f.Title.Found, f.Title.Uncertain())
	check("type", f.Type.Found, f.Type.Uncertain())
	check("stem", f.Stem.Found, f.Stem.Uncertain())
	check("options", f.Options.Found, f.Options.Uncertain())
	check("answer", f.Answer.Found, f.Answer.Uncertain())
	check("feedback", f.Feedback.Present(),
		f.Feedback.Present() && f.Feedback.BestConfidence() < ReviewThreshold)
	check("labels", f.Labels.Found, f.Labels.Uncertain())
	check("points", f.Points.Found, f.Points.Uncertain())
	check("bloom", f.Bloom.Found, f.Bloom.Uncertain())
	check("difficulty", f.Difficulty.Found, f.Difficulty.Uncertain())
}
