// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register adds every QuestionForge tool to the server.
func Register(server *mcp.Server, s *Service) {
	mcp.AddTool(server, MetadataParseM3Document, s.ParseM3Document)
	mcp.AddTool(server, MetadataCreateReviewSession, s.CreateReviewSession)
	mcp.AddTool(server, MetadataGetCurrentQuestion, s.GetCurrentQuestion)
	mcp.AddTool(server, MetadataApproveQuestion, s.ApproveQuestion)
	mcp.AddTool(server, MetadataSkipQuestion, s.SkipQuestion)
	mcp.AddTool(server, MetadataUpdateQuestionField, s.UpdateQuestionField)
	mcp.AddTool(server, MetadataGetReviewProgress, s.GetReviewProgress)
	mcp.AddTool(server, MetadataClearReviewSession, s.ClearReviewSession)
	mcp.AddTool(server, MetadataLoadStage, s.LoadStage)
	mcp.AddTool(server, MetadataCompleteStage, s.CompleteStage)
	mcp.AddTool(server, MetadataSaveOutput, s.SaveOutput)
}
