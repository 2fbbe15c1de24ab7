// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/questionforge/qforge-mcp/internal/project"
)

// MetadataLoadStage describes the load_stage tool.
var MetadataLoadStage = &mcp.Tool{
	Name: "load_stage",
	Description: "Load the instructions for a methodology module (m1-m5). Without a module " +
		"argument, the next incomplete module is loaded based on the project's recorded progress.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"project_path"},
		"properties": map[string]interface{}{
			"project_path": map[string]interface{}{"type": "string", "description": "Project root directory."},
			"module":       map[string]interface{}{"type": "string", "description": "Module to load (m1-m5). Omit for the next incomplete module.", "enum": project.ModuleOrder},
		},
	},
}

// InputLoadStage is the input for the LoadStage tool.
type InputLoadStage struct {
	ProjectPath string `json:"project_path"`
	Module      string `json:"module"`
}

// LoadStage returns the stage document and workflow position.
func (s *Service) LoadStage(ctx context.Context, _ *mcp.CallToolRequest, input InputLoadStage) (*mcp.CallToolResult, project.StageDoc, error) {
	done := s.trackTool("load_stage", map[string]any{"module": input.Module})
	defer done()

	store, err := project.NewStore(input.ProjectPath)
	if err != nil {
		s.Log.Error("load_stage", err)
		return nil, project.StageDoc{}, err
	}
	doc, err := store.LoadStage(input.Module)
	if err != nil {
		s.Log.Error("load_stage", err)
		return nil, project.StageDoc{}, err
	}
	return nil, *doc, nil
}

// MetadataCompleteStage describes the complete_stage tool.
var MetadataCompleteStage = &mcp.Tool{
	Name:        "complete_stage",
	Description: "Record a methodology stage as complete in the project progress document.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"project_path", "module", "stage"},
		"properties": map[string]interface{}{
			"project_path": map[string]interface{}{"type": "string", "description": "Project root directory."},
			"module":       map[string]interface{}{"type": "string", "description": "Module the stage belongs to.", "enum": project.ModuleOrder},
			"stage":        map[string]interface{}{"type": "string", "description": "Stage name, e.g. \"complete\"."},
		},
	},
}

// InputCompleteStage is the input for the CompleteStage tool.
type InputCompleteStage struct {
	ProjectPath string `json:"project_path"`
	Module      string `json:"module"`
	Stage       string `json:"stage"`
}

// OutputCompleteStage is the output for the CompleteStage tool.
type OutputCompleteStage struct {
	Module          string   `json:"module"`
	CompletedStages []string `json:"completed_stages"`
	NextModule      string   `json:"next_module,omitempty"`
}

// CompleteStage records stage completion and persists the progress document.
func (s *Service) CompleteStage(ctx context.Context, _ *mcp.CallToolRequest, input InputCompleteStage) (*mcp.CallToolResult, OutputCompleteStage, error) {
	store, err := project.NewStore(input.ProjectPath)
	if err != nil {
		return nil, OutputCompleteStage{}, err
	}
	doc, err := store.LoadMethodology()
	if err != nil {
		return nil, OutputCompleteStage{}, err
	}
	doc.CompleteStage(input.Module, input.Stage)
	if err := store.SaveMethodology(doc); err != nil {
		s.Log.Error("complete_stage", err)
		return nil, OutputCompleteStage{}, err
	}
	s.Log.StageComplete(input.Module, input.Stage)

	stage, err := store.LoadStage(input.Module)
	next := ""
	if err == nil {
		next = stage.NextModule
	}
	return nil, OutputCompleteStage{
		Module:          input.Module,
		CompletedStages: doc.Modules[input.Module].CompletedStages,
		NextModule:      next,
	}, nil
}
