package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/haasonsaas/agentrtcore/internal/agenterr"
	"github.com/haasonsaas/agentrtcore/internal/observability"
)

// clientName and clientVersion identify this runtime to every MCP
// server it connects to, in the initialize handshake's clientInfo.
const (
	clientName    = "agentrtcore"
	clientVersion = "1.0.0"
)

// Client speaks the MCP protocol to a single server over its Transport,
// caching the server's advertised tools, resources, and prompts between
// RefreshCapabilities calls.
type Client struct {
	config    *ServerConfig
	transport Transport
	logger    *observability.Logger
	tracer    *observability.Tracer

	capMu     sync.RWMutex
	tools     []*MCPTool
	resources []*MCPResource
	prompts   []*MCPPrompt

	serverInfo ServerInfo
}

// NewClient builds a Client for cfg. A nil logger defaults to a bare
// observability.Logger (info level, JSON to stdout).
func NewClient(cfg *ServerConfig, logger *observability.Logger) *Client {
	return NewClientWithTracer(cfg, logger, nil)
}

// NewClientWithTracer is NewClient plus an explicit tracer: every
// transport.Call this client issues is wrapped in a span when tracer is
// non-nil.
func NewClientWithTracer(cfg *ServerConfig, logger *observability.Logger, tracer *observability.Tracer) *Client {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{})
	}
	return &Client{
		config:    cfg,
		transport: NewTransport(cfg),
		logger:    logger.WithFields("mcp_server", cfg.ID),
		tracer:    tracer,
	}
}

// Connect dials the transport, performs the MCP initialize handshake,
// and does a best-effort capability refresh. A transport or handshake
// failure leaves the client unconnected; a failed post-handshake
// refresh only logs, since the client is still usable.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.transport.Connect(ctx); err != nil {
		return agenterr.New(agenterr.KindConnectionFailed, err).WithOp("connect")
	}

	raw, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
			"prompts":   map[string]any{},
		},
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
	})
	if err != nil {
		c.transport.Close()
		return agenterr.New(agenterr.KindConnectionFailed, err).WithOp("initialize")
	}

	var initResult InitializeResult
	if err := json.Unmarshal(raw, &initResult); err != nil {
		c.transport.Close()
		return agenterr.New(agenterr.KindProcessingFailed, fmt.Errorf("parse initialize result: %w", err)).WithOp("initialize")
	}
	c.serverInfo = initResult.ServerInfo

	c.logger.Info(ctx, "connected to MCP server",
		"name", c.serverInfo.Name,
		"version", c.serverInfo.Version,
		"protocol", initResult.ProtocolVersion)

	if err := c.transport.Notify(ctx, "notifications/initialized", nil); err != nil {
		c.logger.Warn(ctx, "failed to send initialized notification", "error", err)
	}
	if err := c.RefreshCapabilities(ctx); err != nil {
		c.logger.Warn(ctx, "failed to refresh capabilities", "error", err)
	}

	return nil
}

// call issues one JSON-RPC request through the transport, wrapping it in
// an MCP request span when a tracer is configured.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.tracer == nil {
		return c.transport.Call(ctx, method, params)
	}
	spanCtx, span := c.tracer.TraceMCPRequest(ctx, c.config.ID, method)
	defer span.End()

	result, err := c.transport.Call(spanCtx, method, params)
	if err != nil {
		c.tracer.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// Close tears down the underlying transport connection.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Config returns the server configuration this client was built from.
func (c *Client) Config() *ServerConfig {
	return c.config
}

// ServerInfo returns the remote server's self-reported identity, valid
// once Connect has succeeded.
func (c *Client) ServerInfo() ServerInfo {
	return c.serverInfo
}

// Connected reports whether the underlying transport is live.
func (c *Client) Connected() bool {
	return c.transport.Connected()
}

// RefreshCapabilities re-lists tools, resources, and prompts from the
// server and replaces the cached sets. Each list call is independent:
// one failing (or returning a malformed body) leaves the previous cache
// for that capability untouched rather than failing the whole refresh.
func (c *Client) RefreshCapabilities(ctx context.Context) error {
	c.capMu.Lock()
	defer c.capMu.Unlock()

	if result, err := c.call(ctx, "tools/list", nil); err == nil {
		var resp ListToolsResult
		if json.Unmarshal(result, &resp) == nil {
			c.tools = resp.Tools
			c.logger.Debug(ctx, "refreshed tools", "count", len(c.tools))
		}
	}

	if result, err := c.call(ctx, "resources/list", nil); err == nil {
		var resp ListResourcesResult
		if json.Unmarshal(result, &resp) == nil {
			c.resources = resp.Resources
			c.logger.Debug(ctx, "refreshed resources", "count", len(c.resources))
		}
	}

	if result, err := c.call(ctx, "prompts/list", nil); err == nil {
		var resp ListPromptsResult
		if json.Unmarshal(result, &resp) == nil {
			c.prompts = resp.Prompts
			c.logger.Debug(ctx, "refreshed prompts", "count", len(c.prompts))
		}
	}

	return nil
}

// Tools returns the most recently cached tool list.
func (c *Client) Tools() []*MCPTool {
	c.capMu.RLock()
	defer c.capMu.RUnlock()
	return c.tools
}

// Resources returns the most recently cached resource list.
func (c *Client) Resources() []*MCPResource {
	c.capMu.RLock()
	defer c.capMu.RUnlock()
	return c.resources
}

// Prompts returns the most recently cached prompt list.
func (c *Client) Prompts() []*MCPPrompt {
	c.capMu.RLock()
	defer c.capMu.RUnlock()
	return c.prompts
}

// CallTool invokes a tool on the server and decodes its result.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolCallResult, error) {
	params := CallToolParams{Name: name}

	if arguments != nil {
		argsJSON, err := json.Marshal(arguments)
		if err != nil {
			return nil, agenterr.New(agenterr.KindInvalidRequest, fmt.Errorf("marshal arguments: %w", err)).WithOp("call_tool")
		}
		params.Arguments = argsJSON
	}

	result, err := c.call(ctx, "tools/call", params)
	if err != nil {
		return nil, err
	}

	var callResult ToolCallResult
	if err := json.Unmarshal(result, &callResult); err != nil {
		return nil, agenterr.New(agenterr.KindProcessingFailed, fmt.Errorf("parse tool call result: %w", err)).WithOp("call_tool")
	}
	return &callResult, nil
}

// ReadResource fetches a resource's contents by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) ([]*ResourceContent, error) {
	result, err := c.call(ctx, "resources/read", map[string]any{"uri": uri})
	if err != nil {
		return nil, err
	}

	var readResult ReadResourceResult
	if err := json.Unmarshal(result, &readResult); err != nil {
		return nil, agenterr.New(agenterr.KindProcessingFailed, fmt.Errorf("parse read resource result: %w", err)).WithOp("read_resource")
	}
	return readResult.Contents, nil
}

// GetPrompt fetches a named prompt, interpolated with arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*GetPromptResult, error) {
	result, err := c.call(ctx, "prompts/get", map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if err != nil {
		return nil, err
	}

	var promptResult GetPromptResult
	if err := json.Unmarshal(result, &promptResult); err != nil {
		return nil, agenterr.New(agenterr.KindProcessingFailed, fmt.Errorf("parse get prompt result: %w", err)).WithOp("get_prompt")
	}
	return &promptResult, nil
}

// Events exposes the transport's server-to-client notification stream.
func (c *Client) Events() <-chan *JSONRPCNotification {
	return c.transport.Events()
}

// SamplingHandler answers a server-initiated sampling/createMessage
// request with a completion, or an error if it cannot be satisfied.
type SamplingHandler func(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error)

// HandleSampling starts a background goroutine dispatching every
// sampling/createMessage request the server sends to handler,
// concurrently, until the transport's request channel closes.
func (c *Client) HandleSampling(handler SamplingHandler) {
	if handler == nil {
		return
	}
	go func() {
		for req := range c.transport.Requests() {
			if req == nil || req.Method != "sampling/createMessage" {
				continue
			}
			go c.handleSamplingRequest(req, handler)
		}
	}()
}

func (c *Client) handleSamplingRequest(req *JSONRPCRequest, handler SamplingHandler) {
	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var params SamplingRequest
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			_ = c.transport.Respond(ctx, req.ID, nil, &JSONRPCError{
				Code:    ErrCodeInvalidParams,
				Message: "invalid sampling params",
			})
			return
		}
	}

	response, err := handler(ctx, &params)
	if err != nil {
		_ = c.transport.Respond(ctx, req.ID, nil, &JSONRPCError{
			Code:    ErrCodeInternalError,
			Message: err.Error(),
		})
		return
	}
	if response == nil {
		_ = c.transport.Respond(ctx, req.ID, nil, &JSONRPCError{
			Code:    ErrCodeInternalError,
			Message: "sampling handler returned nil response",
		})
		return
	}

	if err := c.transport.Respond(ctx, req.ID, response, nil); err != nil {
		c.logger.Warn(ctx, "failed to respond to sampling request", "error", err)
	}
}
