// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the QuestionForge workflow as MCP tools. Handlers are
// thin: they adapt tool inputs to the domain packages and report structured
// results rather than crashing the host workflow.
package tool

import (
	"time"

	"github.com/questionforge/qforge-mcp/internal/review"
	"github.com/questionforge/qforge-mcp/internal/worklog"
)

// Service carries the shared state behind the tool handlers.
type Service struct {
	Sessions *review.Manager
	Log      *worklog.Logger
}

// NewService wires a tool service.
func NewService(log *worklog.Logger) *Service {
	return &Service{
		Sessions: review.NewManager(),
		Log:      log,
	}
}

// trackTool logs tool start and returns a closure logging tool end with the
// elapsed duration.
func (s *Service) trackTool(name string, data map[string]any) func() {
	start := time.Now()
	s.Log.ToolStart(name, data)
	return func() {
		s.Log.ToolEnd(name, nil, time.Since(start))
	}
}
