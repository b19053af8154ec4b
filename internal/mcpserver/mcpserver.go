// Package mcpserver publishes the HTTP routes as Model Context Protocol tools.
// Tools call the same lookup service as the HTTP handlers.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tron/internal/about"
	"tron/internal/etf"
)

const (
	ToolGetETFPrice = "get_etf_price"
	ToolHealthCheck = "health_check"
	ToolHelloWorld  = "hello_world"
)

// Looker resolves a raw symbol. *etf.Service implements it.
type Looker interface {
	Lookup(ctx context.Context, raw string) (etf.PriceRecord, error)
}

type Config struct {
	Name        string
	Version     string
	Description string
	HTTPPath    string
	SSEPath     string
	MessagePath string
	BaseURL     string
}

// New builds the MCP server with one tool per HTTP route.
func New(cfg Config, svc Looker) *server.MCPServer {
	s := server.NewMCPServer(cfg.Name, cfg.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(cfg.Description),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool(ToolGetETFPrice,
		mcp.WithDescription("Get ETF Price. Returns the symbol, name, current price, currency and timestamp for an ETF ticker."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("The ETF ticker symbol (e.g., SPY, QQQ, VTI)"),
		),
	), lookupHandler(svc))

	s.AddTool(mcp.NewTool(ToolHealthCheck,
		mcp.WithDescription("Health check. Returns the service status."),
	), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(about.Healthy())
	})

	s.AddTool(mcp.NewTool(ToolHelloWorld,
		mcp.WithDescription("Hello World. Returns a simple greeting message."),
	), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(about.Hello())
	})

	return s
}

func lookupHandler(svc Looker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := req.RequireString("symbol")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rec, err := svc.Lookup(ctx, symbol)
		var lookupErr *etf.Error
		if errors.As(err, &lookupErr) {
			b, err := marshal(lookupErr.Record())
			if err != nil {
				return nil, fmt.Errorf("encoding error record: %w", err)
			}
			return mcp.NewToolResultError(string(b)), nil
		}
		if err != nil {
			return nil, err
		}
		return jsonResult(rec)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// marshal encodes v the way the HTTP handlers do, without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Transports holds the HTTP transports serving one MCP server.
type Transports struct {
	Streamable *server.StreamableHTTPServer
	SSE        *server.SSEServer
}

// Mount registers the streamable HTTP endpoint at cfg.HTTPPath and the SSE
// stream and message endpoints at cfg.SSEPath and cfg.MessagePath.
func Mount(mux *http.ServeMux, cfg Config, s *server.MCPServer) *Transports {
	t := &Transports{
		Streamable: server.NewStreamableHTTPServer(s, server.WithEndpointPath(cfg.HTTPPath)),
	}

	sseOpts := []server.SSEOption{
		server.WithSSEEndpoint(cfg.SSEPath),
		server.WithMessageEndpoint(cfg.MessagePath),
	}
	if cfg.BaseURL != "" {
		sseOpts = append(sseOpts, server.WithBaseURL(cfg.BaseURL))
	}
	t.SSE = server.NewSSEServer(s, sseOpts...)

	mux.Handle(cfg.HTTPPath, t.Streamable)
	mux.Handle(cfg.SSEPath, t.SSE)
	mux.Handle(cfg.MessagePath, t.SSE)
	return t
}

// Shutdown closes open MCP sessions on both transports.
func (t *Transports) Shutdown(ctx context.Context) error {
	return errors.Join(t.Streamable.Shutdown(ctx), t.SSE.Shutdown(ctx))
}
