package mcptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"leaveadvisor/internal/domain/advisory"
	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/domain/reports"
	"leaveadvisor/internal/requestctx"
)

const (
	ServerName    = "leave-analysis-server"
	ServerVersion = "1.0.0"

	PolicyResourceURI   = "leave://policy/all"
	CalendarResourceURI = "leave://calendar/team"
)

// ToolObserver is notified once per tool call.
type ToolObserver interface {
	ToolCalled(tool string, err error)
}

type Services struct {
	Leave    *leave.Service
	Reports  *reports.Service
	Advisory *advisory.Service
	Observer ToolObserver
}

// Server exposes the leave operations as MCP tools and resources.
type Server struct {
	mcp      *mcp.Server
	services Services
}

func New(services Services) *Server {
	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil),
		services: services,
	}
	s.registerTools()
	s.registerResources()
	return s
}

func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// RunStdio serves a single session over stdin/stdout until ctx ends or the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "analyze_leave_request",
		Description: "Analyze a prospective leave request: working days, balance, team conflicts, policy violations, risk score and an approve/reject/review recommendation.",
	}, s.services.Leave.Analyze)

	addTool(s, &mcp.Tool{
		Name:        "analyze_leave_reason",
		Description: "Assess the sentiment, risk and empathy needed for a leave request reason. Advisory only.",
	}, s.services.Advisory.AnalyzeReason)

	addTool(s, &mcp.Tool{
		Name:        "check_leave_balance",
		Description: "Get an employee's leave balance for a leave type and year.",
	}, s.services.Leave.CheckBalance)

	addTool(s, &mcp.Tool{
		Name:        "check_team_conflicts",
		Description: "List other department members' pending or approved leave overlapping a date range.",
	}, s.services.Leave.TeamConflicts)

	addTool(s, &mcp.Tool{
		Name:        "validate_leave_policy",
		Description: "Evaluate the company leave rules against the supplied employee and request facts.",
	}, func(_ context.Context, in leave.ValidatePolicyInput) (policyValidation, error) {
		violations, err := s.services.Leave.ValidatePolicy(in)
		if err != nil {
			return policyValidation{}, err
		}
		return policyValidation{Violations: violations, Valid: len(violations) == 0}, nil
	})

	addTool(s, &mcp.Tool{
		Name:        "generate_leave_report",
		Description: "Generate a leave report for a department or a single employee, as JSON or PDF.",
	}, s.services.Reports.Generate)

	addTool(s, &mcp.Tool{
		Name:        "manage_holidays",
		Description: "Add, delete or list public holidays for a country.",
	}, s.services.Leave.ManageHolidays)
}

type policyValidation struct {
	Violations []leave.Violation `json:"violations"`
	Valid      bool              `json:"valid"`
}

func addTool[In, Out any](s *Server, tool *mcp.Tool, fn func(context.Context, In) (Out, error)) {
	mcp.AddTool(s.mcp, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		ctx = requestctx.WithTool(ctx, tool.Name)
		start := time.Now()
		out, err := fn(ctx, in)
		if s.services.Observer != nil {
			s.services.Observer.ToolCalled(tool.Name, err)
		}
		if err != nil {
			slog.LogAttrs(ctx, slog.LevelWarn, "tool call failed",
				append(requestctx.LogAttrs(ctx), slog.String("error", err.Error()))...)
			return errorResult(err), nil, nil
		}
		slog.LogAttrs(ctx, slog.LevelInfo, "tool call",
			append(requestctx.LogAttrs(ctx), slog.Int64("durationMs", time.Since(start).Milliseconds()))...)
		return jsonResult(out)
	})
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
	}, nil, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
	}
}

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         PolicyResourceURI,
		Name:        "Leave Policies",
		Description: "All current leave policies as stored",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		policies, err := s.services.Leave.Policies(ctx)
		if err != nil {
			return nil, err
		}
		return resourceResult(req.Params.URI, policies)
	})

	s.mcp.AddResource(&mcp.Resource{
		URI:         CalendarResourceURI,
		Name:        "Team Calendar",
		Description: "Pending and approved leave ending today or later",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		entries, err := s.services.Leave.TeamCalendar(ctx)
		if err != nil {
			return nil, err
		}
		return resourceResult(req.Params.URI, entries)
	})
}

func resourceResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "application/json", Text: string(payload)}},
	}, nil
}
