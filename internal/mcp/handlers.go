// ABOUTME: MCP tool handler implementations
// ABOUTME: Tool failures are returned as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/medrag/internal/core"
	"github.com/harper/medrag/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine       *core.QueryEngine
	reporter     *core.Reporter
	jobs         *core.JobQueue
	chunkSize    int
	chunkOverlap int
}

// NewHandlers creates handlers over the shared services. Chunk defaults
// apply when a tool call omits them.
func NewHandlers(engine *core.QueryEngine, reporter *core.Reporter, jobs *core.JobQueue, chunkSize, chunkOverlap int) *Handlers {
	if chunkSize <= 0 {
		chunkSize = core.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = core.DefaultChunkOverlap
	}
	return &Handlers{
		engine:       engine,
		reporter:     reporter,
		jobs:         jobs,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// AskQuestion handles the ask_question tool
func (h *Handlers) AskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	answer := h.engine.Ask(ctx, question)

	sources := make([]map[string]interface{}, 0, len(answer.Contexts))
	for _, c := range answer.Contexts {
		sources = append(sources, map[string]interface{}{
			"source":   c.SourceName(),
			"position": c.Position,
			"text":     c.Text,
		})
	}

	return jsonResult(map[string]interface{}{
		"answer":  answer.Text,
		"sources": sources,
	})
}

// DashboardStats handles the dashboard_stats tool
func (h *Handlers) DashboardStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.reporter.Stats())
}

// ListSources handles the list_sources tool
func (h *Handlers) ListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources := h.reporter.Sources()
	return jsonResult(map[string]interface{}{
		"count":   len(sources),
		"sources": sources,
	})
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}

	req := models.IngestRequest{
		Path:      path,
		ChunkSize: request.GetInt("chunk_size", h.chunkSize),
		Overlap:   request.GetInt("overlap", h.chunkOverlap),
		Rebuild:   request.GetBool("rebuild", false),
	}

	job, err := h.jobs.Submit(req)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrFileNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", path)), nil
	case core.IsClientError(err):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to queue ingestion: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": job.Message(),
	})
}

// IngestStatus handles the ingest_status tool
func (h *Handlers) IngestStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("job_id")
	if err != nil {
		return mcp.NewToolResultError("job_id argument is required and must be a string"), nil
	}

	job, err := h.jobs.Get(id)
	if errors.Is(err, core.ErrJobNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("job not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read job: %v", err)), nil
	}

	return jsonResult(job)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
