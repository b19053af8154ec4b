// Command agent connects to the Tron MCP server, discovers its tools and calls
// the ETF price tool for a few symbols.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

func main() {
	var url string
	var transport string
	var symbolsCSV string
	var timeout int

	flag.StringVar(&url, "url", getenv("MCP_URL", "http://localhost:8000/mcp"), "MCP endpoint (streamable HTTP) or SSE stream URL")
	flag.StringVar(&transport, "transport", "http", "transport: http or sse")
	flag.StringVar(&symbolsCSV, "symbols", "SPY,QQQ,VTI", "comma-separated symbols to query")
	flag.IntVar(&timeout, "timeout", 30, "overall timeout seconds")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	c, err := dial(transport, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agent: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := runAgent(ctx, c, splitCSV(symbolsCSV), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "\nError talking to MCP server at %s: %v\n", url, err)
		fmt.Fprintln(os.Stderr, "Make sure the Tron server is running: go run ./cmd/server")
		os.Exit(1)
	}
}

func dial(transport, url string) (*client.Client, error) {
	switch strings.ToLower(transport) {
	case "http", "streamable":
		return client.NewStreamableHttpClient(url)
	case "sse":
		return client.NewSSEMCPClient(url)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// runAgent initializes the session, lists tools and calls the first ETF
// tool once per symbol. Tool errors are printed, not returned.
func runAgent(ctx context.Context, c *client.Client, symbols []string, out io.Writer) error {
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "etf-agent", Version: "0.1.0"}
	info, err := c.Initialize(ctx, initReq)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	fmt.Fprintf(out, "Connected to %s %s\n", info.ServerInfo.Name, info.ServerInfo.Version)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	fmt.Fprintf(out, "Found %d tools:\n", len(tools.Tools))
	for _, t := range tools.Tools {
		fmt.Fprintf(out, "  - %s: %s\n", t.Name, t.Description)
	}

	tool, ok := findETFTool(tools.Tools)
	if !ok {
		fmt.Fprintln(out, "No ETF-related tool found.")
		return nil
	}
	fmt.Fprintf(out, "Using tool %s\n", tool.Name)

	for _, s := range symbols {
		req := mcp.CallToolRequest{}
		req.Params.Name = tool.Name
		req.Params.Arguments = map[string]any{"symbol": s}
		res, err := c.CallTool(ctx, req)
		if err != nil {
			fmt.Fprintf(out, "%s: error: %v\n", s, err)
			continue
		}
		status := "ok"
		if res.IsError {
			status = "error"
		}
		fmt.Fprintf(out, "%s: %s %s\n", s, status, resultText(res))
	}
	return nil
}

func findETFTool(tools []mcp.Tool) (mcp.Tool, bool) {
	for _, t := range tools {
		name := strings.ToLower(t.Name)
		if strings.Contains(name, "etf") || strings.Contains(name, "price") {
			return t, true
		}
	}
	return mcp.Tool{}, false
}

func resultText(res *mcp.CallToolResult) string {
	parts := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, " ")
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" { out = append(out, p) }
	}
	return out
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
