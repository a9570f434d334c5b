package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeConfig writes content to path, creating parent directories.
func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolateHome points HOME at an empty temp dir so the test never picks up
// the developer's real ~/.mcp.json.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_SingleLocalConfig(t *testing.T) {
	isolateHome(t)
	cwd := t.TempDir()
	writeConfig(t, filepath.Join(cwd, "mcp.json"), `{
		"mcpServers": {
			"fetch": {"command": "uvx", "args": ["mcp-server-fetch"]},
			"exa": {"type": "http", "url": "https://mcp.exa.ai/mcp"}
		}
	}`)

	merged, err := Load(cwd)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := merged.Names(); !reflect.DeepEqual(got, []string{"exa", "fetch"}) {
		t.Errorf("Names() = %v", got)
	}

	fetch, err := merged.Server("fetch")
	if err != nil {
		t.Fatal(err)
	}
	if fetch.Type != "stdio" || fetch.Command != "uvx" || !reflect.DeepEqual(fetch.Args, []string{"mcp-server-fetch"}) {
		t.Errorf("fetch = %+v", fetch)
	}

	exa, err := merged.Server("exa")
	if err != nil {
		t.Fatal(err)
	}
	if exa.Type != "http" || exa.URL != "https://mcp.exa.ai/mcp" {
		t.Errorf("exa = %+v", exa)
	}
}

func TestLoad_LayeredMerge(t *testing.T) {
	home := isolateHome(t)
	cwd := t.TempDir()

	// Lowest priority: home config.
	writeConfig(t, filepath.Join(home, ".mcp.json"), `{
		"mcpServers": {
			"fs": {
				"command": "old-command",
				"args": ["--root", "/"],
				"env": {"TOKEN": "home-token", "REGION": "eu"}
			},
			"home-only": {"command": "home-server"}
		}
	}`)

	// Middle: .claude/mcp.json overrides fs env key.
	writeConfig(t, filepath.Join(cwd, ".claude", "mcp.json"), `{
		"mcpServers": {
			"fs": {"command": "mid-command", "env": {"TOKEN": "mid-token"}}
		}
	}`)

	// Highest: local mcp.json.
	writeConfig(t, filepath.Join(cwd, "mcp.json"), `{
		"mcpServers": {
			"fs": {"command": "new-command", "env": {"EXTRA": "1"}}
		}
	}`)

	merged, err := Load(cwd)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	fs, err := merged.Server("fs")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Command != "new-command" {
		t.Errorf("Command = %q, want closest file to win", fs.Command)
	}
	// Keys the closer files never set survive from the home file.
	if !reflect.DeepEqual(fs.Args, []string{"--root", "/"}) {
		t.Errorf("Args = %v, want args from home config to survive", fs.Args)
	}
	wantEnv := map[string]string{"TOKEN": "mid-token", "REGION": "eu", "EXTRA": "1"}
	if !reflect.DeepEqual(fs.Env, wantEnv) {
		t.Errorf("Env = %v, want %v", fs.Env, wantEnv)
	}

	if _, err := merged.Server("home-only"); err != nil {
		t.Errorf("home-only server lost in merge: %v", err)
	}
}

func TestLoad_NoConfigFiles(t *testing.T) {
	isolateHome(t)
	cwd := t.TempDir()

	_, err := Load(cwd)
	if err == nil {
		t.Fatal("expected error when no config exists")
	}
	// The error lists the candidate locations so users know where to look.
	if !strings.Contains(err.Error(), "mcp.json") {
		t.Errorf("error does not name candidate paths: %v", err)
	}
}

func TestLoad_NoServersDefined(t *testing.T) {
	isolateHome(t)
	cwd := t.TempDir()
	writeConfig(t, filepath.Join(cwd, "mcp.json"), `{"other": true}`)

	_, err := Load(cwd)
	if err == nil || !strings.Contains(err.Error(), "mcpServers") {
		t.Errorf("err = %v, want mcpServers mention", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	isolateHome(t)
	cwd := t.TempDir()
	path := filepath.Join(cwd, "mcp.json")
	writeConfig(t, path, `{"mcpServers": {`)

	_, err := Load(cwd)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("err = %v, want the offending path named", err)
	}
}

func TestLoad_CommentsAndTrailingCommas(t *testing.T) {
	isolateHome(t)
	cwd := t.TempDir()
	writeConfig(t, filepath.Join(cwd, "mcp.json"), `{
		// local development server
		"mcpServers": {
			"dev": {
				"command": "npx",
				"args": ["-y", "some-server",], /* trailing comma */
			},
		},
	}`)

	merged, err := Load(cwd)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := merged.Server("dev"); err != nil {
		t.Error(err)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		servers string
		wantSub string
	}{
		{"stdio missing command", `{"bad": {"args": []}}`, "'command'"},
		{"http missing url", `{"bad": {"type": "http"}}`, "'url'"},
		{"unsupported type", `{"bad": {"type": "websocket", "url": "ws://x"}}`, "unsupported 'type'"},
		{"non-string args", `{"bad": {"command": "x", "args": [1]}}`, "'args'"},
		{"non-string env value", `{"bad": {"command": "x", "env": {"A": 1}}}`, "'env'"},
		{"non-number timeout", `{"bad": {"type": "http", "url": "https://x", "timeout": "5"}}`, "'timeout'"},
		{"auth without type", `{"bad": {"type": "http", "url": "https://x", "auth": {"token": "t"}}}`, "'auth'"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateHome(t)
			cwd := t.TempDir()
			writeConfig(t, filepath.Join(cwd, "mcp.json"), `{"mcpServers": `+tc.servers+`}`)

			_, err := Load(cwd)
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("err = %v, want mention of %s", err, tc.wantSub)
			}
		})
	}
}

func TestLoad_HTTPServerWithAuthAndHeaders(t *testing.T) {
	isolateHome(t)
	cwd := t.TempDir()
	writeConfig(t, filepath.Join(cwd, "mcp.json"), `{
		"mcpServers": {
			"api": {
				"type": "HTTP",
				"url": "https://mcp.example.com/mcp",
				"headers": {"X-Team": "infra"},
				"timeout": 12,
				"auth": {
					"type": "oauth2_client_credentials",
					"clientId": "cid",
					"clientSecret": "secret",
					"tokenUrl": "https://auth.example.com/token",
					"scopes": ["mcp.read"]
				}
			}
		}
	}`)

	merged, err := Load(cwd)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	api, err := merged.Server("api")
	if err != nil {
		t.Fatal(err)
	}
	if api.Type != "http" {
		t.Errorf("Type = %q; type matching is case-insensitive", api.Type)
	}
	if api.TimeoutSeconds != 12 {
		t.Errorf("TimeoutSeconds = %v", api.TimeoutSeconds)
	}
	if api.Headers["X-Team"] != "infra" {
		t.Errorf("Headers = %v", api.Headers)
	}
	if api.Auth == nil || api.Auth.Type != "oauth2_client_credentials" || api.Auth.TokenURL != "https://auth.example.com/token" {
		t.Errorf("Auth = %+v", api.Auth)
	}
}

func TestSet_OverridesConfiguredServer(t *testing.T) {
	merged := &Merged{Servers: map[string]ServerConfig{
		"fs": {Name: "fs", Type: "stdio", Command: "configured"},
	}}
	merged.Set(ServerConfig{Name: "fs", Type: "stdio", Command: "adhoc"})

	fs, err := merged.Server("fs")
	if err != nil {
		t.Fatal(err)
	}
	if fs.Command != "adhoc" {
		t.Errorf("Command = %q, want ad-hoc override", fs.Command)
	}
}
