// Package mcp implements the JSON-RPC client used to talk to MCP servers
// over stdio child processes or streamable HTTP endpoints.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Transport carries JSON-RPC requests to an MCP server.
type Transport interface {
	// Send delivers a request and returns the matching response. For
	// notifications the returned response may be nil.
	Send(ctx context.Context, req *Request) (*Response, error)
	// Close releases any resources held by the transport.
	Close() error
}

// Client is a single-session MCP protocol client.
type Client struct {
	transport Transport
	nextID    int
}

// NewClient wraps a transport in a protocol client.
func NewClient(transport Transport) *Client {
	return &Client{transport: transport, nextID: 1}
}

// call sends one request and unmarshals its result into out (when out is
// non-nil). Server-side errors surface as Go errors tagged with the method.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	req := &Request{
		JSONRPC: "2.0",
		ID:      c.nextID,
		Method:  method,
		Params:  params,
	}
	c.nextID++

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp == nil {
		return fmt.Errorf("%s: no response", method)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: server error %d: %s", method, resp.Error.Code, resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: unmarshal result: %w", method, err)
	}
	return nil
}

// Initialize performs the MCP handshake and sends the initialized
// notification.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	params := initializeParams{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo: Implementation{
			Name:    clientName,
			Version: clientVersion,
		},
	}

	var result InitializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return nil, err
	}

	// Fire-and-forget; some transports return no response for
	// notifications.
	notif := &Request{JSONRPC: "2.0", Method: "notifications/initialized"}
	_, _ = c.transport.Send(ctx, notif)

	return &result, nil
}

// ListTools returns the tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var result toolsListResult
	if err := c.call(ctx, "tools/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool executes a named tool with a JSON-compatible argument object.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*CallToolResult, error) {
	if arguments == nil {
		arguments = map[string]any{}
	}
	var result CallToolResult
	if err := c.call(ctx, "tools/call", callToolParams{Name: name, Arguments: arguments}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close shuts down the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
