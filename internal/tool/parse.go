// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/questionforge/qforge-mcp/internal/completeness"
	"github.com/questionforge/qforge-mcp/internal/m3"
	"github.com/questionforge/qforge-mcp/internal/project"
	"github.com/questionforge/qforge-mcp/internal/question"
)

// MetadataParseM3Document describes the parse_m3_document tool.
var MetadataParseM3Document = &mcp.Tool{
	Name: "parse_m3_document",
	Description: "Parse a human-readable question document (Swedish/English markdown) into " +
		"structured question interpretations. Every extracted field carries a confidence score " +
		"(0-100); fields below 70 are flagged for human review, and missing required fields are " +
		"listed per question. The result includes a completeness report per question.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw question document content. Either content or project_path+source_path is required.",
			},
			"project_path": map[string]interface{}{
				"type":        "string",
				"description": "Project root directory; used with source_path to read the document from disk.",
			},
			"source_path": map[string]interface{}{
				"type":        "string",
				"description": "Project-relative path of the question document.",
			},
		},
	},
}

// InputParseM3Document is the input for the ParseM3Document tool.
type InputParseM3Document struct {
	Content     string `json:"content"`
	ProjectPath string `json:"project_path"`
	SourcePath  string `json:"source_path"`
}

// QuestionSummary is the per-question view returned to the caller.
type QuestionSummary struct {
	QuestionNumber  string   `json:"question_number"`
	Title           string   `json:"title,omitempty"`
	Type            string   `json:"type,omitempty"`
	TypeConfidence  int      `json:"type_confidence"`
	MissingFields   []string `json:"missing_fields"`
	UncertainFields []string `json:"uncertain_fields"`
	LineNumber      int      `json:"line_number"`
}

// OutputParseM3Document is the output for the ParseM3Document tool.
type OutputParseM3Document struct {
	Questions    []QuestionSummary   `json:"questions"`
	SpanCount    int                 `json:"span_count"`
	DroppedSpans int                 `json:"dropped_spans"`
	Completeness completeness.Result `json:"completeness"`
}

// ParseM3Document segments and extracts the document and reports a
// completeness overview without starting a review session.
func (s *Service) ParseM3Document(ctx context.Context, _ *mcp.CallToolRequest, input InputParseM3Document) (*mcp.CallToolResult, OutputParseM3Document, error) {
	done := s.trackTool("parse_m3_document", map[string]any{"source": input.SourcePath})
	defer done()

	content, err := s.documentContent(input)
	if err != nil {
		s.Log.Error("parse_m3_document", err)
		return nil, OutputParseM3Document{}, err
	}

	result := m3.NewPipeline().Run(content)

	output := OutputParseM3Document{
		SpanCount:    result.SpanCount,
		DroppedSpans: result.DroppedSpans,
		Completeness: completeness.CheckCompleteness(result.Interpretations),
	}
	for _, itp := range result.Interpretations {
		output.Questions = append(output.Questions, summarize(itp))
	}
	return nil, output, nil
}

func (s *Service) documentContent(input InputParseM3Document) (string, error) {
	if input.Content != "" {
		return input.Content, nil
	}
	if input.ProjectPath == "" || input.SourcePath == "" {
		return "", fmt.Errorf("either content or project_path and source_path are required")
	}
	store, err := project.NewStore(input.ProjectPath)
	if err != nil {
		return "", err
	}
	material, err := store.ReadMaterial(input.SourcePath)
	if err != nil {
		return "", err
	}
	return material.Body, nil
}

func summarize(itp *question.Interpretation) QuestionSummary {
	return QuestionSummary{
		QuestionNumber:  itp.QuestionNumber,
		Title:           itp.Fields.Title.Value,
		Type:            itp.Fields.Type.Value,
		TypeConfidence:  itp.Fields.Type.Confidence,
		MissingFields:   itp.MissingFields,
		UncertainFields: itp.UncertainFields,
		LineNumber:      itp.LineNumber,
	}
}
