package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"linear-mcp/internal/linear"
	"linear-mcp/internal/resolve"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const serverName = "linear-mcp"

// Server holds the tool catalogue and the collaborators every tool uses.
type Server struct {
	api      linear.API
	resolver *resolve.Resolver
	tools    []*tool
	byName   map[string]*tool
	newID    func() string
}

// NewServer creates a new MCP server. A nil resolver gets one without a
// collection cache.
func NewServer(api linear.API, resolver *resolve.Resolver) *Server {
	if resolver == nil {
		resolver = resolve.New(api, nil)
	}
	s := &Server{
		api:      api,
		resolver: resolver,
		newID:    uuid.NewString,
	}
	s.tools = s.catalogue()
	s.byName = make(map[string]*tool, len(s.tools))
	for _, t := range s.tools {
		s.byName[t.Name] = t
	}
	return s
}

// Tools returns the protocol definitions of the catalogue in order.
func (s *Server) Tools() []*sdk.Tool {
	out := make([]*sdk.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, &sdk.Tool{Name: t.Name, Description: t.Description, InputSchema: t.Schema})
	}
	return out
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer(version string) *sdk.Server {
	srv := sdk.NewServer(&sdk.Implementation{Name: serverName, Version: version}, nil)
	for i, def := range s.Tools() {
		srv.AddTool(def, s.handler(s.tools[i].Name))
	}
	srv.AddReceivingMiddleware(s.traceToolCalls)
	return srv
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context, version string) error {
	log.Info().Int("tools", len(s.tools)).Msg("Serving MCP over stdio")
	return s.MCPServer(version).Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) handler(name string) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		var arguments map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &arguments); err != nil {
				return toResult(errorResult(fmt.Errorf("invalid arguments: %w", err))), nil
			}
		}
		return toResult(s.Call(ctx, name, arguments)), nil
	}
}

func toResult(r Result) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: r.Text}},
		IsError: r.IsError,
	}
}

// traceToolCalls tags each tools/call with a trace id and answers names
// outside the catalogue with a plain text result instead of a protocol error.
func (s *Server) traceToolCalls(next sdk.MethodHandler) sdk.MethodHandler {
	return func(ctx context.Context, method string, req sdk.Request) (sdk.Result, error) {
		callReq, ok := req.(*sdk.CallToolRequest)
		if method != "tools/call" || !ok || callReq.Params == nil {
			return next(ctx, method, req)
		}
		name := callReq.Params.Name
		if _, known := s.byName[name]; !known {
			log.Warn().Str("tool", name).Msg("Unknown tool requested")
			return toResult(unknownTool(name)), nil
		}

		logger := log.With().Str("trace", uuid.NewString()).Str("tool", name).Logger()
		ctx = logger.WithContext(ctx)
		start := time.Now()
		res, err := next(ctx, method, req)
		event := logger.Info().Dur("elapsed", time.Since(start))
		if r, ok := res.(*sdk.CallToolResult); ok {
			event = event.Bool("isError", r.IsError)
		}
		event.Err(err).Msg("Tool call")
		return res, err
	}
}
