// ABOUTME: MCP tool definitions and registration for the document assistant
// ABOUTME: Exposes question answering, dashboard projections, and ingestion jobs as tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/medrag/internal/core"
)

// ServerName is reported to MCP clients
const ServerName = "MedRAG Healthcare Assistant"

// NewServer creates an MCP server with every tool registered
func NewServer(version string, h *Handlers) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, version)
	RegisterTools(server, h)
	return server
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, h *Handlers) {
	// 1. ask_question - answer from the indexed documents
	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a healthcare question using the ingested documents as context. Returns the answer and the source chunks it was based on.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
			},
			Required: []string{"question"},
		},
	}, h.AskQuestion)

	// 2. dashboard_stats - document, chunk and query counts
	server.AddTool(mcp.Tool{
		Name:        "dashboard_stats",
		Description: "Report how many documents and chunks are indexed, questions asked today, and the most recent sources.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, h.DashboardStats)

	// 3. list_sources - one summary per document
	server.AddTool(mcp.Tool{
		Name:        "list_sources",
		Description: "List every ingested document with a short summary and its chunk count.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, h.ListSources)

	// 4. ingest_document - queue a file for ingestion
	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Queue a PDF (or .txt/.md) file on the server for ingestion. Returns a job ID to poll with ingest_status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the file to ingest, as seen by the server",
				},
				"chunk_size": map[string]interface{}{
					"type":        "number",
					"description": "Characters per chunk (default: 1000)",
					"default":     core.DefaultChunkSize,
				},
				"overlap": map[string]interface{}{
					"type":        "number",
					"description": "Characters shared by consecutive chunks (default: 200)",
					"default":     core.DefaultChunkOverlap,
				},
				"rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "Replace the whole index with this document instead of appending",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}, h.IngestDocument)

	// 5. ingest_status - poll a job
	server.AddTool(mcp.Tool{
		Name:        "ingest_status",
		Description: "Get the status of an ingestion job: pending, running, succeeded or failed, with the failing stage and message.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "Job ID returned by ingest_document",
				},
			},
			Required: []string{"job_id"},
		},
	}, h.IngestStatus)
}
