// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/questionforge/qforge-mcp/internal/m3"
	"github.com/questionforge/qforge-mcp/internal/project"
	"github.com/questionforge/qforge-mcp/internal/qfmd"
	"github.com/questionforge/qforge-mcp/internal/question"
	"github.com/questionforge/qforge-mcp/internal/review"
)

// MetadataCreateReviewSession describes the create_review_session tool.
var MetadataCreateReviewSession = &mcp.Tool{
	Name: "create_review_session",
	Description: "Parse a question document and start a question-by-question review session. " +
		"The first question is immediately under review; approve, skip or correct it, then the " +
		"session advances. Approved questions are appended to the output document as they pass.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"project_path", "source_path", "output_path"},
		"properties": map[string]interface{}{
			"project_path": map[string]interface{}{"type": "string", "description": "Project root directory."},
			"source_path":  map[string]interface{}{"type": "string", "description": "Project-relative question document."},
			"output_path":  map[string]interface{}{"type": "string", "description": "Project-relative output document to append approved questions to."},
			"course_code":  map[string]interface{}{"type": "string", "description": "Course code used in synthesized identifiers."},
			"course_title": map[string]interface{}{"type": "string", "description": "Course title for the output header."},
		},
	},
}

// InputCreateReviewSession is the input for the CreateReviewSession tool.
type InputCreateReviewSession struct {
	ProjectPath string `json:"project_path"`
	SourcePath  string `json:"source_path"`
	OutputPath  string `json:"output_path"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
}

// OutputCreateReviewSession is the output for the CreateReviewSession tool.
type OutputCreateReviewSession struct {
	SessionID     string                   `json:"session_id"`
	QuestionCount int                      `json:"question_count"`
	DroppedSpans  int                      `json:"dropped_spans"`
	Current       *question.Interpretation `json:"current,omitempty"`
}

// CreateReviewSession parses the source document and opens a review session
// over the result.
func (s *Service) CreateReviewSession(ctx context.Context, _ *mcp.CallToolRequest, input InputCreateReviewSession) (*mcp.CallToolResult, OutputCreateReviewSession, error) {
	done := s.trackTool("create_review_session", map[string]any{"source": input.SourcePath})
	defer done()

	store, err := project.NewStore(input.ProjectPath)
	if err != nil {
		s.Log.Error("create_review_session", err)
		return nil, OutputCreateReviewSession{}, err
	}
	material, err := store.ReadMaterial(input.SourcePath)
	if err != nil {
		s.Log.Error("create_review_session", err)
		return nil, OutputCreateReviewSession{}, err
	}

	result := m3.NewPipeline().Run(material.Body)
	if len(result.Interpretations) == 0 {
		err := fmt.Errorf("no questions recognized in %s", input.SourcePath)
		s.Log.Error("create_review_session", err)
		return nil, OutputCreateReviewSession{}, err
	}

	outputAbs, err := store.Abs(input.OutputPath)
	if err != nil {
		return nil, OutputCreateReviewSession{}, err
	}
	writer := qfmd.NewWriter(outputAbs, input.CourseCode, input.CourseTitle)

	session := s.Sessions.Create(result.Interpretations, writer, review.CreateOptions{
		ProjectPath: input.ProjectPath,
		SourcePath:  input.SourcePath,
		OutputPath:  input.OutputPath,
		CourseCode:  input.CourseCode,
		CourseTitle: input.CourseTitle,
	})

	return nil, OutputCreateReviewSession{
		SessionID:     session.ID,
		QuestionCount: len(result.Interpretations),
		DroppedSpans:  result.DroppedSpans,
		Current:       session.Current(),
	}, nil
}

// MetadataGetCurrentQuestion describes the get_current_question tool.
var MetadataGetCurrentQuestion = &mcp.Tool{
	Name:        "get_current_question",
	Description: "Return the question currently under review in a session, with its extracted fields, confidence scores and flagged issues.",
	InputSchema: sessionOnlySchema,
}

var sessionOnlySchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"session_id"},
	"properties": map[string]interface{}{
		"session_id": map[string]interface{}{"type": "string", "description": "Review session identifier."},
	},
}

// InputSession addresses one review session.
type InputSession struct {
	SessionID string `json:"session_id"`
}

// OutputCurrentQuestion is the output for the GetCurrentQuestion tool.
type OutputCurrentQuestion struct {
	Question *question.Interpretation `json:"question,omitempty"`
	Done     bool                     `json:"done"`
	Progress review.Progress          `json:"progress"`
}

// GetCurrentQuestion returns the interpretation under review, or done=true
// past the end of the session.
func (s *Service) GetCurrentQuestion(ctx context.Context, _ *mcp.CallToolRequest, input InputSession) (*mcp.CallToolResult, OutputCurrentQuestion, error) {
	session, err := s.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, OutputCurrentQuestion{}, err
	}
	cur := session.Current()
	return nil, OutputCurrentQuestion{
		Question: cur,
		Done:     cur == nil,
		Progress: session.GetProgress(),
	}, nil
}

// MetadataApproveQuestion describes the approve_question tool.
var MetadataApproveQuestion = &mcp.Tool{
	Name: "approve_question",
	Description: "Approve the question currently under review, optionally merging field corrections " +
		"first. Approval runs the full completeness check; blocking issues reject the approval and " +
		"leave the question under review. On success the question is appended to the output document " +
		"and the session advances.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"session_id"},
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{"type": "string", "description": "Review session identifier."},
			"corrections": map[string]interface{}{
				"type":        "object",
				"description": "Field corrections merged before approval, keyed by field name. Feedback sub-fields use dotted paths such as feedback.correct.",
			},
		},
	},
}

// InputApproveQuestion is the input for the ApproveQuestion tool.
type InputApproveQuestion struct {
	SessionID   string         `json:"session_id"`
	Corrections map[string]any `json:"corrections"`
}

// ApproveQuestion approves the current question with optional corrections.
func (s *Service) ApproveQuestion(ctx context.Context, _ *mcp.CallToolRequest, input InputApproveQuestion) (*mcp.CallToolResult, review.ApproveResult, error) {
	done := s.trackTool("approve_question", map[string]any{"session": input.SessionID})
	defer done()

	session, err := s.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, review.ApproveResult{}, err
	}
	result := session.Approve(input.Corrections)
	if !result.Success && result.Error != "" {
		s.Log.Error("approve_question", fmt.Errorf("%s", result.Error))
	}
	return nil, result, nil
}

// MetadataSkipQuestion describes the skip_question tool.
var MetadataSkipQuestion = &mcp.Tool{
	Name:        "skip_question",
	Description: "Skip the question currently under review without writing output, recording an optional reason, and advance the session.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"session_id"},
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{"type": "string", "description": "Review session identifier."},
			"reason":     map[string]interface{}{"type": "string", "description": "Why the question is skipped."},
		},
	},
}

// InputSkipQuestion is the input for the SkipQuestion tool.
type InputSkipQuestion struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// SkipQuestion skips the current question.
func (s *Service) SkipQuestion(ctx context.Context, _ *mcp.CallToolRequest, input InputSkipQuestion) (*mcp.CallToolResult, review.SkipResult, error) {
	session, err := s.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, review.SkipResult{}, err
	}
	result := session.Skip(input.Reason)
	if result.Success {
		s.Log.Log("skip_question", "question_skipped", "info",
			map[string]any{"question": result.Skipped, "reason": input.Reason}, 0)
	}
	return nil, result, nil
}

// MetadataUpdateQuestionField describes the update_question_field tool.
var MetadataUpdateQuestionField = &mcp.Tool{
	Name: "update_question_field",
	Description: "Correct one field of the question currently under review. The value is recorded at " +
		"full confidence with source \"user\" and the missing/uncertain annotations are recomputed. " +
		"Feedback sub-fields use dotted paths (feedback.correct, feedback.general, feedback.incorrect.B).",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"session_id", "field", "value"},
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{"type": "string", "description": "Review session identifier."},
			"field":      map[string]interface{}{"type": "string", "description": "Field name or dotted feedback path."},
			"value":      map[string]interface{}{"description": "New value for the field."},
		},
	},
}

// InputUpdateQuestionField is the input for the UpdateQuestionField tool.
type InputUpdateQuestionField struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Value     any    `json:"value"`
}

// OutputUpdateQuestionField is the output for the UpdateQuestionField tool.
type OutputUpdateQuestionField struct {
	Success  bool                     `json:"success"`
	Error    string                   `json:"error,omitempty"`
	Question *question.Interpretation `json:"question,omitempty"`
}

// UpdateQuestionField applies one in-place correction to the current question.
func (s *Service) UpdateQuestionField(ctx context.Context, _ *mcp.CallToolRequest, input InputUpdateQuestionField) (*mcp.CallToolResult, OutputUpdateQuestionField, error) {
	session, err := s.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, OutputUpdateQuestionField{}, err
	}
	if err := session.UpdateField(input.Field, input.Value); err != nil {
		return nil, OutputUpdateQuestionField{Error: err.Error()}, nil
	}
	return nil, OutputUpdateQuestionField{Success: true, Question: session.Current()}, nil
}

// MetadataGetReviewProgress describes the get_review_progress tool.
var MetadataGetReviewProgress = &mcp.Tool{
	Name:        "get_review_progress",
	Description: "Report approved/skipped/remaining counts for a review session and which question is under review.",
	InputSchema: sessionOnlySchema,
}

// GetReviewProgress returns the derived progress counters.
func (s *Service) GetReviewProgress(ctx context.Context, _ *mcp.CallToolRequest, input InputSession) (*mcp.CallToolResult, review.Progress, error) {
	session, err := s.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, review.Progress{}, err
	}
	return nil, session.GetProgress(), nil
}

// MetadataClearReviewSession describes the clear_review_session tool.
var MetadataClearReviewSession = &mcp.Tool{
	Name:        "clear_review_session",
	Description: "Discard a review session. The output document written so far is kept.",
	InputSchema: sessionOnlySchema,
}

// OutputClearReviewSession is the output for the ClearReviewSession tool.
type OutputClearReviewSession struct {
	Cleared bool `json:"cleared"`
}

// ClearReviewSession removes the session from the manager.
func (s *Service) ClearReviewSession(ctx context.Context, _ *mcp.CallToolRequest, input InputSession) (*mcp.CallToolResult, OutputClearReviewSession, error) {
	s.Sessions.Clear(input.SessionID)
	return nil, OutputClearReviewSession{Cleared: true}, nil
}
