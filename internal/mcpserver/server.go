// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/calls"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/viewservice"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *viewservice.Service
	db  index.WorkspaceIndex
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *viewservice.Service, db index.WorkspaceIndex) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_code",
		mcp.WithDescription("Full-text search through indexed workspace files. "+
			"Binds the tree view to the result set and returns the file groups."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Literal text to search for")),
	), s.searchCode)

	s.mcp.AddTool(mcp.NewTool("call_hierarchy",
		mcp.WithDescription("Build a call hierarchy rooted at a symbol name. "+
			"Binds the tree view to the hierarchy and returns the root definitions "+
			"with their first level of calls."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Function or method name (use Receiver.Name for methods)")),
		mcp.WithString("direction", mcp.Description("outgoing (default) or incoming")),
	), s.callHierarchy)

	s.mcp.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List recorded navigations, most recent first."),
	), s.listHistory)

	s.mcp.AddTool(mcp.NewTool("record_visit",
		mcp.WithDescription("Record a navigation in the history log."),
		mcp.WithString("label", mcp.Required(), mcp.Description("Display label, usually the symbol or file name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative file path")),
		mcp.WithString("description", mcp.Description("Secondary text, e.g. the containing directory")),
	), s.recordVisit)

	s.mcp.AddTool(mcp.NewTool("read_source",
		mcp.WithDescription("Read the indexed body of a workspace file. Raido is "+
			"read-only; there is no tool to write files."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative file path")),
	), s.readSource)

	// Resource: tree contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://tree-contract", "Tree Contract",
			mcp.WithResourceDescription("How the switchable tree view and its node refs behave."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTreeContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.BindSearch(query); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.Children(ctx, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) callHierarchy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := req.RequireString("symbol")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir := calls.Outgoing
	if d, derr := req.RequireString("direction"); derr == nil && d != "" {
		dir = calls.Direction(d)
	}
	if err := s.svc.BindCalls(symbol, dir); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	roots, err := s.svc.Children(ctx, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type rootWithCalls struct {
		Root  viewservice.TreeItem   `json:"root"`
		Calls []viewservice.TreeItem `json:"calls"`
	}
	out := make([]rootWithCalls, 0, len(roots))
	for _, root := range roots {
		children, err := s.svc.Children(ctx, root.Ref)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out = append(out, rootWithCalls{Root: root, Calls: children})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	visits, err := s.svc.History()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(visits) == 0 {
		return mcp.NewToolResultText("no visits recorded"), nil
	}
	var lines []string
	for _, v := range visits {
		lines = append(lines, fmt.Sprintf("%s\t%s:%d", v.Label, v.Target.Path, v.Target.Range.Start.Line))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) recordVisit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, err := req.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc := ""
	if d, derr := req.RequireString("description"); derr == nil {
		desc = d
	}
	err = s.svc.RecordVisit(models.Visit{
		Label:       label,
		Description: desc,
		Target:      models.Location{Path: path},
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recorded: %s", label)), nil
}

func (s *Server) readSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := s.db.FileBody(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) readTreeContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://tree-contract",
			MIMEType: "text/markdown",
			Text:     TreeContract,
		},
	}, nil
}
