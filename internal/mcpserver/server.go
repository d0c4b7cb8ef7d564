package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

// Service is the set of league queries exposed as tools.
type Service interface {
	GetCurrentWeek(ctx context.Context) (int, error)
	ListWeeks(ctx context.Context) ([]int, error)
	GetWeek(ctx context.Context, matchupPeriod int, refresh bool) (*analytics.WeekSnapshot, error)
	GetLeagueSummary(ctx context.Context) (*models.LeagueSummary, error)
	GetSeasonReport(ctx context.Context, refresh bool) (*analytics.SeasonReport, error)
	GetUpcomingPreview(ctx context.Context) (*models.UpcomingPreview, error)
	GetPredictions(ctx context.Context, team, opponent string) (*models.PredictionsReport, error)
	GetRosterTotals(ctx context.Context) ([]models.RosterTotals, error)
}

type NoArgs struct{}

type WeekArgs struct {
	Week    int  `json:"week" jsonschema:"Matchup period (0 = current)"`
	Refresh bool `json:"refresh,omitempty" jsonschema:"Recompute from ESPN instead of the stored snapshot"`
}

type RefreshArgs struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Include the in-progress week computed live"`
}

type PredictionArgs struct {
	Team     string `json:"team,omitempty" jsonschema:"Team name to filter to (approximate match)"`
	Opponent string `json:"opponent,omitempty" jsonschema:"Opponent name to filter to (approximate match)"`
}

func NewServer(svc Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "hoopsbot", Version: version}, nil)
	t := &tools{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_weeks",
		Description: "Matchup periods with all-play results available",
	}, t.listWeeks)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_week",
		Description: "All-play category results of every team for one matchup period",
	}, t.getWeek)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "league_summary",
		Description: "League standings with records and win percentages",
	}, t.leagueSummary)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "season_report",
		Description: "Season aggregates: teams beaten, streaks, consistency, category leaders, head-to-head records",
	}, t.seasonReport)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "upcoming_preview",
		Description: "Next matchup period's pairings predicted from recent weeks",
	}, t.upcomingPreview)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "predictions",
		Description: "Projected category results of the current matchups",
	}, t.predictions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "roster_totals",
		Description: "Each fantasy team's summed player season totals",
	}, t.rosterTotals)

	return server
}

// Handler serves the tools over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

type tools struct {
	svc Service
}

func (t *tools) listWeeks(ctx context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.ListWeeks(ctx))
}

func (t *tools) getWeek(ctx context.Context, _ *mcp.CallToolRequest, args WeekArgs) (*mcp.CallToolResult, any, error) {
	week := args.Week
	if week < 0 {
		return toolError(fmt.Errorf("week must not be negative")), nil, nil
	}
	if week == 0 {
		current, err := t.svc.GetCurrentWeek(ctx)
		if err != nil {
			return toolError(err), nil, nil
		}
		week = current
	}
	return toolJSON(t.svc.GetWeek(ctx, week, args.Refresh))
}

func (t *tools) leagueSummary(ctx context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.GetLeagueSummary(ctx))
}

func (t *tools) seasonReport(ctx context.Context, _ *mcp.CallToolRequest, args RefreshArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.GetSeasonReport(ctx, args.Refresh))
}

func (t *tools) upcomingPreview(ctx context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.GetUpcomingPreview(ctx))
}

func (t *tools) predictions(ctx context.Context, _ *mcp.CallToolRequest, args PredictionArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.GetPredictions(ctx, args.Team, args.Opponent))
}

func (t *tools) rosterTotals(ctx context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.GetRosterTotals(ctx))
}

func toolJSON[T any](v T, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err)), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
