// Package auth produces the HTTP headers needed to reach protected MCP
// servers. Providers are static per invocation; there is no interactive
// flow and no retry-on-401.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mcptool/mcptool/internal/config"
)

// Provider yields the HTTP headers for one server's requests.
type Provider interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// None provides no authentication headers.
type None struct{}

func (None) Headers(_ context.Context) (map[string]string, error) {
	return nil, nil
}

// Bearer sends a fixed token as an Authorization bearer header.
type Bearer struct {
	Token string
}

func (p Bearer) Headers(_ context.Context) (map[string]string, error) {
	if p.Token == "" {
		return nil, nil
	}
	return map[string]string{"Authorization": "Bearer " + p.Token}, nil
}

// APIKey sends a token in a custom header, X-API-Key by default.
type APIKey struct {
	Token      string
	HeaderName string
}

func (p APIKey) Headers(_ context.Context) (map[string]string, error) {
	if p.Token == "" {
		return nil, nil
	}
	name := p.HeaderName
	if name == "" {
		name = "X-API-Key"
	}
	return map[string]string{name: p.Token}, nil
}

// Basic sends HTTP basic credentials.
type Basic struct {
	Username string
	Password string
}

func (p Basic) Headers(_ context.Context) (map[string]string, error) {
	if p.Username == "" && p.Password == "" {
		return nil, nil
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(p.Username + ":" + p.Password))
	return map[string]string{"Authorization": "Basic " + encoded}, nil
}

// ForServer resolves the provider for a server. An explicit auth block in
// the configuration wins; otherwise the credentials store is consulted by
// server name, and with no stored credential no headers are sent.
func ForServer(cfg config.ServerConfig, credPath string) (Provider, error) {
	if cfg.Auth == nil {
		creds, err := LoadCredentials(credPath)
		if err != nil {
			return nil, fmt.Errorf("credentials store: %w", err)
		}
		if stored, ok := creds.Servers[cfg.Name]; ok && stored.Token != "" {
			return Bearer{Token: stored.Token}, nil
		}
		return None{}, nil
	}

	switch cfg.Auth.Type {
	case "bearer", "bearer_token":
		token := cfg.Auth.Token
		if token == "" {
			creds, err := LoadCredentials(credPath)
			if err != nil {
				return nil, fmt.Errorf("credentials store: %w", err)
			}
			token = creds.Servers[cfg.Name].Token
		}
		if token == "" {
			return nil, fmt.Errorf("server %q: bearer auth configured but no token found; run 'mcptool auth set-token %s'", cfg.Name, cfg.Name)
		}
		return Bearer{Token: token}, nil
	case "api_key":
		return APIKey{Token: cfg.Auth.Token, HeaderName: cfg.Auth.HeaderName}, nil
	case "basic", "basic_auth":
		return Basic{Username: cfg.Auth.Username, Password: cfg.Auth.Password}, nil
	case "oauth2_client_credentials":
		return newClientCredentials(cfg.Name, cfg.Auth)
	case "none", "no_auth":
		return None{}, nil
	default:
		return nil, fmt.Errorf("server %q: unknown auth type %q", cfg.Name, cfg.Auth.Type)
	}
}
