// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Luach tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gabbaihq/luach/internal/boardservice"
)

// Server wraps the MCP server with Luach tools.
type Server struct {
	mcp *server.MCPServer
	svc *boardservice.Service
}

// New creates a new MCP server with all Luach tools registered.
func New(svc *boardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Luach",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Returns the fully resolved board snapshot: every column "+
			"with its events and their computed display times."),
	), s.getBoard)

	s.mcp.AddTool(mcp.NewTool("get_zmanim",
		mcp.WithDescription("Returns the current astronomical time bundle (sunrise, "+
			"sunset, candle lighting, havdalah) for the configured location."),
	), s.getZmanim)

	s.mcp.AddTool(mcp.NewTool("list_columns",
		mcp.WithDescription("List the board's columns with their ids, titles and types."),
	), s.listColumns)

	s.mcp.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Add one event to a column from a schedule line. "+
			"The line MUST follow the canonical schedule format (Name @ time, with "+
			"optional offsets and rounding). Read the contract first via the "+
			"get_schedule_format tool or the luach://schedule-format resource."),
		mcp.WithString("columnId", mcp.Required(), mcp.Description("Id of the column to add the event to")),
		mcp.WithString("line", mcp.Required(), mcp.Description("Schedule line following the Luach format contract")),
	), s.addEvent)

	s.mcp.AddTool(mcp.NewTool("remove_event",
		mcp.WithDescription("Remove an event from the board by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the event to remove")),
	), s.removeEvent)

	s.mcp.AddTool(mcp.NewTool("get_schedule_format",
		mcp.WithDescription("Returns the canonical Luach schedule line format contract. "+
			"Call this before adding events to ensure correct structure."),
	), s.getScheduleFormat)

	// Resource: schedule format contract.
	s.mcp.AddResource(
		mcp.NewResource("luach://schedule-format", "Schedule Format Contract",
			mcp.WithResourceDescription("Canonical schedule line format that add_event input must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readScheduleFormatResource,
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

func (s *Server) getBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.svc.Board(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getZmanim(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bundle := s.svc.Zmanim(ctx)
	out, _ := json.MarshalIndent(bundle, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listColumns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cols, err := s.svc.Columns(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cols, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	columnID, err := req.RequireString("columnId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := req.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, parseErrs, err := s.svc.ImportEvents(ctx, columnID, line)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(parseErrs) > 0 {
		var msgs []string
		for _, pe := range parseErrs {
			msgs = append(msgs, pe.Error())
		}
		return mcp.NewToolResultError(strings.Join(msgs, "; ")), nil
	}
	if len(created) == 0 {
		return mcp.NewToolResultError("line produced no event (comment or empty line)"), nil
	}

	out, _ := json.MarshalIndent(created[0], "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) removeEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteEvent(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) getScheduleFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ScheduleFormatContract), nil
}

func (s *Server) readScheduleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "luach://schedule-format",
			MIMEType: "text/markdown",
			Text:     ScheduleFormatContract,
		},
	}, nil
}
