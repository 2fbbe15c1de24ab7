// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questionforge/qforge-mcp/internal/completeness"
	"github.com/questionforge/qforge-mcp/internal/worklog"
)

const sampleDocument = `### Q1 - Cells
**Metadata:**
- Type: Multiple Choice (MC-Single)
- Points: 2
**Question Stem:**
What is the powerhouse of the cell?
**Answer Options:**
A) Nucleus
B) Mitochondria
**Correct Answer:** B
**Feedback:**
**Correct (B):** Correct!

### Q2 - Membranes
**Metadata:**
- Type: True/False
- Points: 1
**Question Stem:**
The cell membrane is fully permeable.
**Correct Answer:** False
`

func newTestService() *Service {
	return NewService(worklog.NewWithWriter(io.Discard))
}

func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "materials"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "materials", "quiz.md"),
		[]byte("---\ntitle: Week 1 Quiz\n---\n"+sampleDocument), 0o644))
	return root
}

func TestParseM3Document(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s := newTestService()

	tests := []struct {
		name           string
		input          InputParseM3Document
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputParseM3Document)
	}{
		{
			name:        "neither content nor paths returns error",
			input:       InputParseM3Document{},
			wantErr:     true,
			errContains: "content or project_path",
		},
		{
			name:  "inline content produces interpretations",
			input: InputParseM3Document{Content: sampleDocument},
			validateOutput: func(t *testing.T, output OutputParseM3Document) {
				require.Len(t, output.Questions, 2)
				assert.Equal(t, 2, output.SpanCount)
				assert.Zero(t, output.DroppedSpans)

				q1 := output.Questions[0]
				assert.Equal(t, "Q1", q1.QuestionNumber)
				assert.Equal(t, "Cells", q1.Title)
				assert.Equal(t, "multiple_choice_single", q1.Type)
				assert.Equal(t, 95, q1.TypeConfidence)
				assert.Empty(t, q1.MissingFields)

				q2 := output.Questions[1]
				assert.Equal(t, "Q2", q2.QuestionNumber)
				assert.Equal(t, "true_false", q2.Type)

				assert.Equal(t, 2, output.Completeness.Passed)
			},
		},
		{
			name: "document read from the project",
			input: InputParseM3Document{
				ProjectPath: newTestProject(t),
				SourcePath:  "materials/quiz.md",
			},
			validateOutput: func(t *testing.T, output OutputParseM3Document) {
				assert.Len(t, output.Questions, 2)
			},
		},
		{
			name: "missing source file returns error",
			input: InputParseM3Document{
				ProjectPath: t.TempDir(),
				SourcePath:  "materials/nope.md",
			},
			wantErr: true,
		},
		{
			name:  "incomplete questions surface in the report",
			input: InputParseM3Document{Content: "### Q1 - Bare\nOnly prose, no marked sections.\n"},
			validateOutput: func(t *testing.T, output OutputParseM3Document) {
				require.Len(t, output.Questions, 1)
				assert.Contains(t, output.Questions[0].MissingFields, "stem")
				assert.Equal(t, completeness.StatusErrors, output.Completeness.Overall)
				assert.Zero(t, output.Completeness.Passed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := s.ParseM3Document(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestReviewFlow(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s := newTestService()
	root := newTestProject(t)

	_, created, err := s.CreateReviewSession(ctx, req, InputCreateReviewSession{
		ProjectPath: root,
		SourcePath:  "materials/quiz.md",
		OutputPath:  "outputs/questions.md",
		CourseCode:  "BIO101",
		CourseTitle: "Biology Basics",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, 2, created.QuestionCount)
	require.NotNil(t, created.Current)
	assert.Equal(t, "Q1", created.Current.QuestionNumber)

	sessionID := created.SessionID

	_, current, err := s.GetCurrentQuestion(ctx, req, InputSession{SessionID: sessionID})
	require.NoError(t, err)
	require.NotNil(t, current.Question)
	assert.Equal(t, "Q1", current.Question.QuestionNumber)
	assert.Equal(t, 2, current.Progress.Remaining)

	_, updated, err := s.UpdateQuestionField(ctx, req, InputUpdateQuestionField{
		SessionID: sessionID,
		Field:     "feedback.general",
		Value:     "See lecture 2.",
	})
	require.NoError(t, err)
	require.True(t, updated.Success, updated.Error)
	assert.Equal(t, "See lecture 2.", updated.Question.Fields.Feedback.General.Value)

	_, approved, err := s.ApproveQuestion(ctx, req, InputApproveQuestion{SessionID: sessionID})
	require.NoError(t, err)
	require.True(t, approved.Success, approved.Error)
	assert.Equal(t, "Q1", approved.Approved)
	require.NotNil(t, approved.Next)
	assert.Equal(t, "Q2", approved.Next.QuestionNumber)

	_, skipped, err := s.SkipQuestion(ctx, req, InputSkipQuestion{SessionID: sessionID, Reason: "needs rework"})
	require.NoError(t, err)
	require.True(t, skipped.Success)
	assert.True(t, skipped.Done)

	_, progress, err := s.GetReviewProgress(ctx, req, InputSession{SessionID: sessionID})
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Total)
	assert.Equal(t, 1, progress.Approved)
	assert.Equal(t, 1, progress.Skipped)
	assert.Zero(t, progress.Remaining)

	// Only the approved question reached the output document.
	data, err := os.ReadFile(filepath.Join(root, "outputs", "questions.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "<!-- QFMD Format v1 -->")
	assert.Contains(t, content, "<!-- Course: BIO101 -->")
	assert.Contains(t, content, "^identifier BIO101_MC_Q001")
	assert.Contains(t, content, "See lecture 2.")
	assert.NotContains(t, content, "Q002")

	_, cleared, err := s.ClearReviewSession(ctx, req, InputSession{SessionID: sessionID})
	require.NoError(t, err)
	assert.True(t, cleared.Cleared)
	_, _, err = s.GetCurrentQuestion(ctx, req, InputSession{SessionID: sessionID})
	assert.Error(t, err)
}

func TestCreateReviewSession_NoQuestions(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s := newTestService()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("plain prose, nothing marked\n"), 0o644))

	_, _, err := s.CreateReviewSession(ctx, req, InputCreateReviewSession{
		ProjectPath: root,
		SourcePath:  "notes.md",
		OutputPath:  "outputs/questions.md",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no questions recognized")
}

func TestApproveQuestion_BlockingIssues(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s := newTestService()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "quiz.md"), []byte(
		"### Q1 - Incomplete\n**Metadata:**\n- Type: Multiple Choice (MC-Single)\n**Question Stem:**\nPick one.\n"), 0o644))

	_, created, err := s.CreateReviewSession(ctx, req, InputCreateReviewSession{
		ProjectPath: root,
		SourcePath:  "quiz.md",
		OutputPath:  "out.md",
	})
	require.NoError(t, err)

	_, result, err := s.ApproveQuestion(ctx, req, InputApproveQuestion{SessionID: created.SessionID})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Issues)
	_, statErr := os.Stat(filepath.Join(root, "out.md"))
	assert.True(t, os.IsNotExist(statErr), "rejected approvals write nothing")

	// Corrections supplying the missing options and answer unblock it.
	_, result, err = s.ApproveQuestion(ctx, req, InputApproveQuestion{
		SessionID: created.SessionID,
		Corrections: map[string]any{
			"options": []any{"A. Red", "B. Blue"},
			"answer":  "A",
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success, result.Error)
	assert.True(t, result.Done)
}

func TestStageAndOutputTools(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s := newTestService()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "stages"), 0o755))
	for _, module := range []string{"m1", "m2", "m3", "m4", "m5"} {
		content := "---\ntitle: Stage " + module + "\n---\nDo " + module + " things.\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, "stages", module+".md"), []byte(content), 0o644))
	}

	_, stage, err := s.LoadStage(ctx, req, InputLoadStage{ProjectPath: root})
	require.NoError(t, err)
	assert.Equal(t, "m1", stage.Module)
	assert.Equal(t, "Stage m1", stage.Title)
	assert.Equal(t, "m2", stage.NextModule)

	_, completed, err := s.CompleteStage(ctx, req, InputCompleteStage{
		ProjectPath: root, Module: "m1", Stage: "complete",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"complete"}, completed.CompletedStages)
	assert.Equal(t, "m2", completed.NextModule)

	_, stage, err = s.LoadStage(ctx, req, InputLoadStage{ProjectPath: root})
	require.NoError(t, err)
	assert.Equal(t, "m2", stage.Module, "progress advances the default module")

	_, saved, err := s.SaveOutput(ctx, req, InputSaveOutput{
		ProjectPath: root,
		Module:      "m1",
		OutputType:  "material_analysis",
		Title:       "Week 1 Analysis",
		Data: map[string]any{
			"source":       "materials/week1.md",
			"key_concepts": []any{"cells"},
			"summary":      "Covers cell structure.",
		},
		Body: "Notes.\n",
	})
	require.NoError(t, err)
	assert.True(t, saved.Registered)
	assert.Equal(t, "outputs/m1_material_analysis.md", saved.Path)

	data, err := os.ReadFile(filepath.Join(root, "outputs", "m1_material_analysis.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))
	assert.Contains(t, string(data), "type: material_analysis")

	_, rejected, err := s.SaveOutput(ctx, req, InputSaveOutput{
		ProjectPath: root,
		Module:      "m1",
		OutputType:  "material_analysis",
		Title:       "Bad",
		Data:        map[string]any{"source": "", "key_concepts": []any{}, "summary": ""},
	})
	require.Error(t, err)
	assert.False(t, rejected.Registered)
}
