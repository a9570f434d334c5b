// Package config locates MCP configuration files, parses their contents,
// and merges the configured servers into a single view.
package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// serversKey is the top-level member holding server definitions.
const serversKey = "mcpServers"

// ServerConfig is the merged connection description for one MCP server.
type ServerConfig struct {
	Name    string            // Logical name as used in configuration.
	Type    string            // "stdio" (default) or "http".
	Command string            // Executable for stdio servers.
	Args    []string          // Arguments for stdio servers.
	Env     map[string]string // Extra environment for stdio servers.
	URL     string            // Endpoint for http servers.
	Headers map[string]string // Extra headers for http servers.

	// TimeoutSeconds bounds the whole request for http servers; zero means
	// the dialer's default.
	TimeoutSeconds float64

	// Auth selects an authentication method for http servers. Nil means
	// headers-only (or credentials-store lookup by the auth layer).
	Auth *AuthConfig
}

// AuthConfig selects and parameterizes an auth provider for an http server.
type AuthConfig struct {
	Type         string   `json:"type"` // bearer, api_key, basic, oauth2_client_credentials
	Token        string   `json:"token,omitempty"`
	HeaderName   string   `json:"headerName,omitempty"`
	Username     string   `json:"username,omitempty"`
	Password     string   `json:"password,omitempty"`
	ClientID     string   `json:"clientId,omitempty"`
	ClientSecret string   `json:"clientSecret,omitempty"`
	TokenURL     string   `json:"tokenUrl,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

// Merged is the view over all configuration files, keyed by server name.
type Merged struct {
	Servers map[string]ServerConfig
}

// Server looks up a configured server by name.
func (m *Merged) Server(name string) (ServerConfig, error) {
	cfg, ok := m.Servers[name]
	if !ok {
		return ServerConfig{}, fmt.Errorf("server %q is not defined in configuration", name)
	}
	return cfg, nil
}

// Set adds or replaces a server definition. Used for ad-hoc servers
// injected from the command line, which override configured ones.
func (m *Merged) Set(cfg ServerConfig) {
	if m.Servers == nil {
		m.Servers = make(map[string]ServerConfig)
	}
	m.Servers[cfg.Name] = cfg
}

// Names returns the configured server names in sorted order.
func (m *Merged) Names() []string {
	names := make([]string, 0, len(m.Servers))
	for name := range m.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// mergeServerMaps combines the mcpServers members of several files, lowest
// priority first. A later file wins per server, except env which is
// shallow-merged so later values override earlier ones key by key.
func mergeServerMaps(files []rawFile) map[string]map[string]any {
	merged := make(map[string]map[string]any)

	for _, f := range files {
		for name, value := range f.Servers {
			existing, ok := merged[name]
			if !ok {
				merged[name] = cloneMap(value)
				continue
			}

			combined := cloneMap(existing)

			existingEnv, _ := existing["env"].(map[string]any)
			newEnv, _ := value["env"].(map[string]any)
			if existingEnv != nil || newEnv != nil {
				env := make(map[string]any, len(existingEnv)+len(newEnv))
				for k, v := range existingEnv {
					env[k] = v
				}
				for k, v := range newEnv {
					env[k] = v
				}
				combined["env"] = env
			}

			for k, v := range value {
				if k == "env" {
					continue
				}
				combined[k] = v
			}

			merged[name] = combined
		}
	}

	return merged
}

// serverFromMapping validates a raw server object and builds a ServerConfig.
func serverFromMapping(name string, data map[string]any) (ServerConfig, error) {
	rawType, ok := data["type"].(string)
	if _, present := data["type"]; present && !ok {
		return ServerConfig{}, fmt.Errorf("server %q has an invalid 'type' field; expected a string", name)
	}
	serverType := strings.ToLower(rawType)
	if serverType == "" {
		serverType = "stdio"
	}

	switch serverType {
	case "http":
		return httpServerFromMapping(name, data)
	case "stdio":
		return stdioServerFromMapping(name, data)
	default:
		return ServerConfig{}, fmt.Errorf("server %q has unsupported 'type' value %q", name, rawType)
	}
}

func httpServerFromMapping(name string, data map[string]any) (ServerConfig, error) {
	url, _ := data["url"].(string)
	if url == "" {
		return ServerConfig{}, fmt.Errorf("server %q is missing a non-empty 'url' field for HTTP transport", name)
	}

	headers, err := stringMap(data["headers"])
	if err != nil {
		return ServerConfig{}, fmt.Errorf("server %q: invalid 'headers': %w", name, err)
	}

	var timeout float64
	if raw, present := data["timeout"]; present && raw != nil {
		number, ok := raw.(float64)
		if !ok {
			return ServerConfig{}, fmt.Errorf("server %q has an invalid 'timeout' field; expected a number", name)
		}
		timeout = number
	}

	var auth *AuthConfig
	if raw, present := data["auth"]; present && raw != nil {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("server %q: invalid 'auth': %w", name, err)
		}
		auth = &AuthConfig{}
		if err := json.Unmarshal(encoded, auth); err != nil {
			return ServerConfig{}, fmt.Errorf("server %q: invalid 'auth': %w", name, err)
		}
		if auth.Type == "" {
			return ServerConfig{}, fmt.Errorf("server %q: 'auth' requires a 'type' field", name)
		}
	}

	return ServerConfig{
		Name:           name,
		Type:           "http",
		URL:            url,
		Headers:        headers,
		TimeoutSeconds: timeout,
		Auth:           auth,
	}, nil
}

func stdioServerFromMapping(name string, data map[string]any) (ServerConfig, error) {
	command, _ := data["command"].(string)
	if command == "" {
		return ServerConfig{}, fmt.Errorf("server %q is missing a non-empty 'command' field", name)
	}

	var cmdArgs []string
	if raw, present := data["args"]; present && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return ServerConfig{}, fmt.Errorf("server %q has an invalid 'args' field; expected a list of strings", name)
		}
		for _, entry := range list {
			s, ok := entry.(string)
			if !ok {
				return ServerConfig{}, fmt.Errorf("server %q has an invalid 'args' field; expected a list of strings", name)
			}
			cmdArgs = append(cmdArgs, s)
		}
	}

	env, err := stringMap(data["env"])
	if err != nil {
		return ServerConfig{}, fmt.Errorf("server %q: invalid 'env': %w", name, err)
	}

	return ServerConfig{
		Name:    name,
		Type:    "stdio",
		Command: command,
		Args:    cmdArgs,
		Env:     env,
	}, nil
}

// stringMap converts a raw JSON object to map[string]string. Nil input
// yields nil; non-string values are an error.
func stringMap(raw any) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object of string values")
	}
	result := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value for %q is not a string", k)
		}
		result[k] = s
	}
	return result, nil
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
