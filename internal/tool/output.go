// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/questionforge/qforge-mcp/internal/outputs"
	"github.com/questionforge/qforge-mcp/internal/project"
)

// MetadataSaveOutput describes the save_output tool.
var MetadataSaveOutput = &mcp.Tool{
	Name: "save_output",
	Description: "Render a methodology output document (material_analysis, emphasis_patterns, " +
		"examples, misconceptions, learning_objectives) as markdown with validated YAML front " +
		"matter, write it into the project, and register it in the progress document.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"project_path", "module", "output_type", "title", "data"},
		"properties": map[string]interface{}{
			"project_path": map[string]interface{}{"type": "string", "description": "Project root directory."},
			"module":       map[string]interface{}{"type": "string", "description": "Module the output belongs to.", "enum": project.ModuleOrder},
			"output_type":  map[string]interface{}{"type": "string", "description": "Output type.", "enum": outputs.Types},
			"title":        map[string]interface{}{"type": "string", "description": "Document title."},
			"data":         map[string]interface{}{"type": "object", "description": "Type-specific front matter payload."},
			"body":         map[string]interface{}{"type": "string", "description": "Markdown body."},
			"path":         map[string]interface{}{"type": "string", "description": "Project-relative destination. Defaults to outputs/<module>_<type>.md."},
		},
	},
}

// InputSaveOutput is the input for the SaveOutput tool.
type InputSaveOutput struct {
	ProjectPath string         `json:"project_path"`
	Module      string         `json:"module"`
	OutputType  string         `json:"output_type"`
	Title       string         `json:"title"`
	Data        map[string]any `json:"data"`
	Body        string         `json:"body"`
	Path        string         `json:"path"`
}

// OutputSaveOutput is the output for the SaveOutput tool.
type OutputSaveOutput struct {
	Path       string `json:"path"`
	Registered bool   `json:"registered"`
}

// SaveOutput validates, writes and registers one output document.
func (s *Service) SaveOutput(ctx context.Context, _ *mcp.CallToolRequest, input InputSaveOutput) (*mcp.CallToolResult, OutputSaveOutput, error) {
	done := s.trackTool("save_output", map[string]any{"type": input.OutputType})
	defer done()

	store, err := project.NewStore(input.ProjectPath)
	if err != nil {
		return nil, OutputSaveOutput{}, err
	}

	rendered, err := outputs.Render(outputs.Document{
		Type:    input.OutputType,
		Title:   input.Title,
		Module:  input.Module,
		Created: time.Now(),
		Data:    input.Data,
		Body:    input.Body,
	})
	if err != nil {
		s.Log.Error("save_output", err)
		return nil, OutputSaveOutput{}, err
	}

	dest := input.Path
	if dest == "" {
		dest = outputs.DefaultPath(input.Module, input.OutputType)
	}
	if err := store.WriteFile(dest, rendered); err != nil {
		s.Log.Error("save_output", err)
		return nil, OutputSaveOutput{}, err
	}

	doc, err := store.LoadMethodology()
	if err != nil {
		return nil, OutputSaveOutput{Path: dest}, err
	}
	doc.RegisterOutput(input.Module, input.OutputType, dest)
	if err := store.SaveMethodology(doc); err != nil {
		return nil, OutputSaveOutput{Path: dest}, err
	}

	return nil, OutputSaveOutput{Path: dest, Registered: true}, nil
}
