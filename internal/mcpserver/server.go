// Package mcpserver exposes slurpy jobs as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/job"
	"github.com/marcelocantos/slurpy/internal/logging"
)

const jobDescription = `One or more jobs as YAML or JSON, in the same format as a slurpy job file. Example:
{"operation": "cat", "inputs": ["a.pdf", {"filepath": "b.pdf", "start_page": 2}], "output": "out.pdf"}`

// Server serves build_command, generate and list_operations.
type Server struct {
	exec *job.Executor
	mcp  *server.MCPServer
}

// New creates a server that builds and runs jobs with exec.
func New(exec *job.Executor, version string) *Server {
	s := &Server{exec: exec}
	s.mcp = server.NewMCPServer("slurpy", version, server.WithToolCapabilities(true))

	s.mcp.AddTool(mcp.NewTool("build_command",
		mcp.WithDescription("Render the pdftk command line for jobs without running anything. Passwords are masked unless show_secrets is true."),
		mcp.WithString("job", mcp.Required(), mcp.Description(jobDescription)),
		mcp.WithBoolean("show_secrets",
			mcp.Description("Include input and output passwords in the rendered command (default: false)"),
			mcp.DefaultBool(false),
		),
	), s.handleBuildCommand)

	s.mcp.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Run pdftk for each job in order, stopping at the first failure."),
		mcp.WithString("job", mcp.Required(), mcp.Description(jobDescription)),
	), s.handleGenerate)

	s.mcp.AddTool(mcp.NewTool("list_operations",
		mcp.WithDescription("List the operations a job may use."),
	), s.handleListOperations)

	return s
}

// ServeStdio serves requests on stdin and stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func parseJobs(req mcp.CallToolRequest) ([]job.Job, error) {
	src, err := req.RequireString("job")
	if err != nil {
		return nil, err
	}
	jobs, err := job.LoadYAML([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs given")
	}
	return jobs, nil
}

func (s *Server) handleBuildCommand(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := parseJobs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	showSecrets := req.GetBool("show_secrets", false)

	lines := make([]string, 0, len(jobs))
	for i := range jobs {
		cmd, err := s.exec.Command(&jobs[i], showSecrets)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", jobs[i].Label(), err)), nil
		}
		lines = append(lines, cmd)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// GenerateResult reports one job run by the generate tool.
type GenerateResult struct {
	Job      string  `json:"job"`
	Command  string  `json:"command"`
	Status   int     `json:"status"`
	Stdout   string  `json:"stdout,omitempty"`
	Stderr   string  `json:"stderr,omitempty"`
	Duration float64 `json:"duration_ms"`
}

func (s *Server) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := parseJobs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := make([]GenerateResult, 0, len(jobs))
	for i := range jobs {
		j := &jobs[i]
		res, err := s.exec.Run(ctx, j)
		if err != nil {
			logging.Logger().Warn("generate failed", slog.String("job", j.Label()), slog.Any("err", err))
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", j.Label(), err)), nil
		}
		results = append(results, GenerateResult{
			Job:      j.Label(),
			Command:  res.Redacted,
			Status:   res.Status,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Duration: float64(res.Duration.Microseconds()) / 1000.0,
		})
	}
	return toolResultJSON(results)
}

func (s *Server) handleListOperations(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type op struct {
		Name        string `json:"name"`
		MultiInput  bool   `json:"multi_input"`
		Description string `json:"description"`
	}
	var ops []op
	for _, info := range factory.Operations() {
		ops = append(ops, op{info.Name, info.MultiInput, info.Description})
	}
	return toolResultJSON(ops)
}

func toolResultJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
