package mcp

import (
	"fmt"
	"time"

	"github.com/mcptool/mcptool/internal/config"
)

// Dial builds the transport a server config calls for and wraps it in a
// Client. Stdio servers are spawned immediately; headerFn applies only to
// HTTP servers and may be nil.
func Dial(cfg config.ServerConfig, headerFn HeaderFunc) (*Client, error) {
	switch cfg.Type {
	case "http":
		timeout := time.Duration(cfg.TimeoutSeconds * float64(time.Second))
		return NewClient(NewHTTPTransport(cfg.URL, cfg.Headers, headerFn, timeout)), nil
	case "stdio", "":
		transport := NewStdioTransport(cfg.Command, cfg.Args, cfg.Env)
		if err := transport.Start(); err != nil {
			return nil, fmt.Errorf("server %q: %w", cfg.Name, err)
		}
		return NewClient(transport), nil
	default:
		return nil, fmt.Errorf("server %q has unsupported transport %q", cfg.Name, cfg.Type)
	}
}
