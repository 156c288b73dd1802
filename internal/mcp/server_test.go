package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tuxboard/internal/listing"
	mcpserver "tuxboard/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const indexPage = `<html><body>
<a href="plan-a.yml">plan-a.yml</a>
<a href="plan-b.yaml">plan-b.yaml</a>
</body></html>`

const planA = `
jobs:
  - name: stable
    builds:
      - build_name: gcc-arm64
        target_arch: arm64
        toolchain: gcc
        tests:
          - device: rk3399
            tests: [boot, selftest]
`

const planB = `
jobs:
  - name: next
    builds:
      - build_name: clang-x86
        target_arch: x86_64
        toolchain: clang
        tests:
          - device: qemu-x86
            tests: [boot]
`

func newTestServer(t *testing.T) *mcpserver.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/plan-a.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(planA))
	})
	mux.HandleFunc("/plan-b.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(planB))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	client, err := listing.New(upstream.URL, listing.WithHTTPClient(upstream.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return mcpserver.NewServer(client)
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"list_plans": false,
		"load_plan":  false,
		"query":      false,
		"aggregate":  false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_ListPlans(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "list_plans", nil)
	if result["total"] != float64(2) {
		t.Errorf("total = %v, want 2", result["total"])
	}
}

func TestServer_LoadPlan(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "load_plan", map[string]any{"plan": "plan-a.yml"})
	if result["rows"] != float64(2) {
		t.Errorf("rows = %v, want 2", result["rows"])
	}
	if result["devices"] != float64(1) {
		t.Errorf("devices = %v, want 1", result["devices"])
	}
}

func TestServer_LoadPlanNotFound(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "load_plan",
		Arguments: map[string]any{"plan": "nope.yml"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unknown plan")
	}
}

func TestServer_QueryAllFilesWithFilter(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "query", map[string]any{
		"archs": []string{"x86_64"},
	})
	if result["total"] != float64(1) {
		t.Errorf("total = %v, want 1 (one x86_64 row across both files)", result["total"])
	}
	rows, ok := result["rows"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("rows = %v, want one row", result["rows"])
	}
	row := rows[0].(map[string]any)
	if row["build_name"] != "clang-x86" {
		t.Errorf("build_name = %v, want clang-x86", row["build_name"])
	}
}

func TestServer_QueryLimit(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "query", map[string]any{"limit": 1})
	if result["total"] != float64(3) {
		t.Errorf("total = %v, want 3", result["total"])
	}
	if result["returned"] != float64(1) {
		t.Errorf("returned = %v, want 1", result["returned"])
	}
}

func TestServer_Aggregate(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "aggregate", map[string]any{"column": "toolchain"})
	counts, ok := result["counts"].([]any)
	if !ok || len(counts) != 2 {
		t.Fatalf("counts = %v, want clang and gcc", result["counts"])
	}
	first := counts[0].(map[string]any)
	if first["value"] != "clang" || first["count"] != float64(1) {
		t.Errorf("first count = %v, want clang=1", first)
	}
}

func TestServer_AggregateUnknownColumn(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "aggregate",
		Arguments: map[string]any{"column": "bogus"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unknown column")
	}
}
