// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/questionforge/qforge-mcp/internal/tool"
	"github.com/questionforge/qforge-mcp/internal/worklog"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "qforge-mcp",
		Short: "QuestionForge MCP server",
		Long: "qforge-mcp serves the QuestionForge exam-authoring tools over MCP stdio: " +
			"stage loading, question document parsing, the question-by-question review " +
			"workflow and output generation.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), logPath)
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "qforge-work.jsonl", "path of the JSON-lines work log")
	return cmd
}

func serve(ctx context.Context, logPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := worklog.New(logPath)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "qforge-mcp",
		Version: version,
	}, nil)
	tool.Register(server, tool.NewService(log))

	return server.Run(ctx, &mcp.StdioTransport{})
}
