// Package mcp exposes the plan analytics over the Model Context
// Protocol so agents can query the flattened tables directly.
package mcp

import (
	"context"
	"fmt"

	"tuxboard/internal/aggregate"
	"tuxboard/internal/listing"
	"tuxboard/internal/plan"
	"tuxboard/internal/table"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultQueryLimit caps query result rows unless the caller asks for
// more.
var DefaultQueryLimit = 200

// Server wraps the MCP SDK server over a listing client.
type Server struct {
	MCPServer *sdkmcp.Server

	client *listing.Client
}

// NewServer creates an MCP server with the plan analytics tools
// registered.
func NewServer(client *listing.Client) *Server {
	s := &Server{client: client}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "tuxboard", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_plans",
		Description: "List the plan files published at the configured URL.",
	}, s.handleListPlans)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "load_plan",
		Description: "Load one plan file and summarize its flattened rows: jobs, builds, tests, devices.",
	}, s.handleLoadPlan)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "query",
		Description: "Query flattened rows with optional per-column filters. Omit plan to query every file.",
	}, s.handleQuery)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "aggregate",
		Description: "Count rows grouped by one column after applying optional filters.",
	}, s.handleAggregate)
}

// --- Tool input/output types ---

type listPlansInput struct{}

type listPlansOutput struct {
	Files []string `json:"files"`
	Total int      `json:"total"`
}

type loadPlanInput struct {
	Plan string `json:"plan" jsonschema:"plan file name from list_plans"`
}

type loadPlanOutput struct {
	File    string `json:"file"`
	Rows    int    `json:"rows"`
	Jobs    int    `json:"jobs"`
	Builds  int    `json:"builds"`
	Tests   int    `json:"tests"`
	Devices int    `json:"devices"`
}

type queryFilters struct {
	Builds  []string `json:"builds,omitempty" jsonschema:"build names to keep"`
	Tests   []string `json:"tests,omitempty" jsonschema:"test names to keep"`
	Jobs    []string `json:"jobs,omitempty" jsonschema:"job names to keep"`
	Archs   []string `json:"archs,omitempty" jsonschema:"target architectures to keep"`
	Devices []string `json:"devices,omitempty" jsonschema:"device names to keep"`
}

type queryInput struct {
	Plan  string `json:"plan,omitempty" jsonschema:"plan file name; empty means all files"`
	Limit int    `json:"limit,omitempty" jsonschema:"max rows to return (default 200)"`
	queryFilters
}

type queryOutput struct {
	Rows     []plan.Row `json:"rows"`
	Total    int        `json:"total"`
	Returned int        `json:"returned"`
}

type aggregateInput struct {
	Plan   string `json:"plan,omitempty" jsonschema:"plan file name; empty means all files"`
	Column string `json:"column" jsonschema:"column to group by (job_name, build_name, test_name, device, target_arch, toolchain, source_file, level)"`
	queryFilters
}

type aggregateOutput struct {
	Counts []aggregate.Count `json:"counts"`
	Groups int               `json:"groups"`
}

// --- Tool handlers ---

func (s *Server) handleListPlans(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listPlansInput) (*sdkmcp.CallToolResult, listPlansOutput, error) {
	urls, err := s.client.Index(ctx)
	if err != nil {
		return nil, listPlansOutput{}, fmt.Errorf("list plans: %w", err)
	}
	out := listPlansOutput{Total: len(urls)}
	for _, u := range urls {
		out.Files = append(out.Files, listing.FileName(u))
	}
	return nil, out, nil
}

func (s *Server) handleLoadPlan(ctx context.Context, _ *sdkmcp.CallToolRequest, input loadPlanInput) (*sdkmcp.CallToolResult, loadPlanOutput, error) {
	t, err := s.load(ctx, input.Plan)
	if err != nil {
		return nil, loadPlanOutput{}, err
	}
	return nil, loadPlanOutput{
		File:    input.Plan,
		Rows:    t.Len(),
		Jobs:    t.DistinctCount(table.ColJob),
		Builds:  t.DistinctCount(table.ColBuild),
		Tests:   t.DistinctCount(table.ColTest),
		Devices: t.DistinctCount(table.ColDevice),
	}, nil
}

func (s *Server) handleQuery(ctx context.Context, _ *sdkmcp.CallToolRequest, input queryInput) (*sdkmcp.CallToolResult, queryOutput, error) {
	t, err := s.load(ctx, input.Plan)
	if err != nil {
		return nil, queryOutput{}, err
	}
	filtered := applyFilters(t, input.queryFilters)

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	rows := filtered.Rows()
	out := queryOutput{Total: len(rows)}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out.Rows = rows
	out.Returned = len(rows)
	return nil, out, nil
}

func (s *Server) handleAggregate(ctx context.Context, _ *sdkmcp.CallToolRequest, input aggregateInput) (*sdkmcp.CallToolResult, aggregateOutput, error) {
	col, ok := columnByKey(input.Column)
	if !ok {
		return nil, aggregateOutput{}, fmt.Errorf("unknown column %q", input.Column)
	}
	t, err := s.load(ctx, input.Plan)
	if err != nil {
		return nil, aggregateOutput{}, err
	}
	counts := aggregate.CountBy(applyFilters(t, input.queryFilters), col)
	return nil, aggregateOutput{Counts: counts, Groups: len(counts)}, nil
}

// load resolves a plan file name to its flattened table; an empty name
// merges every published file.
func (s *Server) load(ctx context.Context, planFile string) (table.Table, error) {
	if planFile == "" {
		loaded, err := s.client.All(ctx)
		if err != nil {
			return table.Table{}, fmt.Errorf("load all plans: %w", err)
		}
		merged := table.New(nil)
		for _, l := range loaded {
			merged = merged.Concat(table.New(l.Rows))
		}
		return merged, nil
	}

	urls, err := s.client.Index(ctx)
	if err != nil {
		return table.Table{}, fmt.Errorf("list plans: %w", err)
	}
	for _, u := range urls {
		if listing.FileName(u) == planFile {
			loaded, err := s.client.Load(ctx, u)
			if err != nil {
				return table.Table{}, fmt.Errorf("load plan %s: %w", planFile, err)
			}
			return table.New(loaded.Rows), nil
		}
	}
	return table.Table{}, fmt.Errorf("plan %q not found", planFile)
}

func applyFilters(t table.Table, f queryFilters) table.Table {
	return t.
		Filter(table.ColBuild, f.Builds).
		Filter(table.ColTest, f.Tests).
		Filter(table.ColJob, f.Jobs).
		Filter(table.ColArch, f.Archs).
		Filter(table.ColDevice, f.Devices)
}

func columnByKey(key string) (table.Column, bool) {
	for _, col := range table.Columns {
		if string(col) == key {
			return col, true
		}
	}
	return "", false
}
