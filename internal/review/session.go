// SPDX-License-Identifier: Apache-2.0

package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/questionforge/qforge-mcp/internal/completeness"
	"github.com/questionforge/qforge-mcp/internal/question"
)

// QuestionStatus is the per-question review state. Approved and skipped are
// terminal.
type QuestionStatus string

const (
	StatusPending   QuestionStatus = "pending"
	StatusReviewing QuestionStatus = "reviewing"
	StatusApproved  QuestionStatus = "approved"
	StatusSkipped   QuestionStatus = "skipped"
)

// OutputAppender receives each approved question for durable output.
type OutputAppender interface {
	Append(itp *question.Interpretation) error
}

// Session is one question-by-question review pass. Exactly one question is
// reviewing at a time: the one at the cursor. The cursor only moves forward.
type Session struct {
	ID           string
	ProjectPath  string
	SourcePath   string
	OutputPath   string
	CourseCode   string
	CourseTitle  string
	CreatedAt    time.Time
	LastActivity time.Time

	interpretations []*question.Interpretation
	currentIndex    int
	status          map[string]QuestionStatus
	approved        map[string]*question.Interpretation
	output          OutputAppender
}

// NewSession builds a session over the ordered interpretations, marks them
// all pending, and promotes the first to reviewing.
func NewSession(id string, itps []*question.Interpretation, output OutputAppender) *Session {
	now := time.Now()
	s := &Session{
		ID:              id,
		CreatedAt:       now,
		LastActivity:    now,
		interpretations: itps,
		status:          make(map[string]QuestionStatus, len(itps)),
		approved:        make(map[string]*question.Interpretation),
		output:          output,
	}
	for _, itp := range itps {
		s.status[itp.QuestionNumber] = StatusPending
	}
	if len(itps) > 0 {
		s.status[itps[0].QuestionNumber] = StatusReviewing
	}
	return s
}

// Current returns the interpretation under review, or nil past the end.
func (s *Session) Current() *question.Interpretation {
	if s.currentIndex >= len(s.interpretations) {
		return nil
	}
	return s.interpretations[s.currentIndex]
}

// Status returns the review state of a question.
func (s *Session) Status(questionNumber string) QuestionStatus {
	return s.status[questionNumber]
}

// Approved returns the finalized interpretation for an approved question.
func (s *Session) Approved(questionNumber string) (*question.Interpretation, bool) {
	itp, ok := s.approved[questionNumber]
	return itp, ok
}

func (s *Session) moveToNext() *question.Interpretation {
	s.currentIndex++
	s.LastActivity = time.Now()
	next := s.Current()
	if next != nil {
		s.status[next.QuestionNumber] = StatusReviewing
	}
	return next
}

// ApproveResult reports the outcome of an approval attempt. On failure the
// question stays under review and nothing is written.
type ApproveResult struct {
	Success  bool                     `json:"success"`
	Error    string                   `json:"error,omitempty"`
	Issues   []completeness.Issue     `json:"issues,omitempty"`
	Approved string                   `json:"approved,omitempty"`
	Next     *question.Interpretation `json:"next,omitempty"`
	Done     bool                     `json:"done"`
}

// Approve finalizes the current question: corrections are merged into a
// copy, points defaults to 1 when absent, the full completeness check gates
// on error-severity issues, and the rendered block is appended to the output
// before the in-memory status flips to approved.
func (s *Session) Approve(corrections map[string]any) ApproveResult {
	cur := s.Current()
	if cur == nil {
		return ApproveResult{Error: "no question under review", Done: true}
	}

	merged := cloneInterpretation(cur)
	for name, value := range corrections {
		if err := applyField(&merged.Fields, name, value); err != nil {
			return ApproveResult{Error: err.Error()}
		}
	}
	if !merged.Fields.Points.Found {
		merged.Fields.Points = question.Extracted(1, 100, "auto")
	}

	resolved, _ := completeness.ResolveType(merged.Fields.Type.Value)
	merged.Reclassify(resolved)

	issues := completeness.CheckQuestion(merged)
	var blocking []completeness.Issue
	for _, issue := range issues {
		if issue.Severity == completeness.SeverityError {
			blocking = append(blocking, issue)
		}
	}
	if len(blocking) > 0 {
		return ApproveResult{
			Error:  fmt.Sprintf("question %s has %d blocking issue(s)", cur.QuestionNumber, len(blocking)),
			Issues: blocking,
		}
	}

	if err := s.output.Append(merged); err != nil {
		return ApproveResult{Error: fmt.Sprintf("writing output: %v", err)}
	}

	s.status[cur.QuestionNumber] = StatusApproved
	s.approved[cur.QuestionNumber] = merged
	next := s.moveToNext()
	return ApproveResult{
		Success:  true,
		Approved: cur.QuestionNumber,
		Next:     next,
		Done:     next == nil,
	}
}

// SkipResult reports the outcome of skipping the current question.
type SkipResult struct {
	Success bool                     `json:"success"`
	Error   string                   `json:"error,omitempty"`
	Skipped string                   `json:"skipped,omitempty"`
	Reason  string                   `json:"reason,omitempty"`
	Next    *question.Interpretation `json:"next,omitempty"`
	Done    bool                     `json:"done"`
}

// Skip marks the current question skipped without writing output.
func (s *Session) Skip(reason string) SkipResult {
	cur := s.Current()
	if cur == nil {
		return SkipResult{Error: "no question under review", Done: true}
	}
	s.status[cur.QuestionNumber] = StatusSkipped
	next := s.moveToNext()
	return SkipResult{
		Success: true,
		Skipped: cur.QuestionNumber,
		Reason:  reason,
		Next:    next,
		Done:    next == nil,
	}
}

// UpdateField corrects one field of the current question in place. Dotted
// paths address feedback sub-fields ("feedback.correct",
// "feedback.incorrect.B"); the split happens once, here at the boundary.
func (s *Session) UpdateField(path string, value any) error {
	cur := s.Current()
	if cur == nil {
		return fmt.Errorf("no question under review")
	}
	if err := applyField(&cur.Fields, path, value); err != nil {
		return err
	}
	resolved, _ := completeness.ResolveType(cur.Fields.Type.Value)
	cur.Reclassify(resolved)
	s.LastActivity = time.Now()
	return nil
}

func applyField(fields *question.Fields, path string, value any) error {
	if sub, letter, ok := splitFeedbackPath(path); ok {
		s, isString := value.(string)
		if !isString {
			return fmt.Errorf("feedback fields require strings, got %T", value)
		}
		return fields.SetFeedbackField(sub, letter, s)
	}
	return fields.SetField(path, value)
}

func splitFeedbackPath(path string) (sub, letter string, ok bool) {
	if !strings.HasPrefix(path, "feedback.") {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(path, "feedback."), ".", 2)
	sub = parts[0]
	if len(parts) == 2 {
		letter = strings.ToUpper(parts[1])
	}
	return sub, letter, true
}

// Progress is the derived session summary, computed fresh on every call.
type Progress struct {
	Total     int    `json:"total"`
	Approved  int    `json:"approved"`
	Skipped   int    `json:"skipped"`
	Remaining int    `json:"remaining"`
	Current   string `json:"current,omitempty"`
}

// GetProgress counts per-question statuses. Never cached.
func (s *Session) GetProgress() Progress {
	p := Progress{Total: len(s.interpretations)}
	for _, status := range s.status {
		switch status {
		case StatusApproved:
			p.Approved++
		case StatusSkipped:
			p.Skipped++
		default:
			p.Remaining++
		}
	}
	if cur := s.Current(); cur != nil {
		p.Current = cur.QuestionNumber
	}
	return p
}

// cloneInterpretation copies an interpretation deeply enough that correction
// merges never alias the original's slices or maps.
func cloneInterpretation(src *question.Interpretation) *question.Interpretation {
	dst := *src
	dst.MissingFields = append([]string(nil), src.MissingFields...)
	dst.UncertainFields = append([]string(nil), src.UncertainFields...)
	dst.Fields.Options.Value = append([]string(nil), src.Fields.Options.Value...)
	dst.Fields.Labels.Value = append([]string(nil), src.Fields.Labels.Value...)
	if src.Fields.Feedback.Incorrect != nil {
		dst.Fields.Feedback.Incorrect = make(map[string]question.FieldValue[string], len(src.Fields.Feedback.Incorrect))
		for k, v := range src.Fields.Feedback.Incorrect {
			dst.Fields.Feedback.Incorrect[k] = v
		}
	}
	return &dst
}
