package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// rawFile is one parsed configuration file.
type rawFile struct {
	Path    string
	Servers map[string]map[string]any
}

// CandidatePaths returns the canonical configuration locations in ascending
// priority order: ~/.mcp.json, then ./.claude/mcp.json, then ./mcp.json.
// All three are returned whether or not they exist, for user feedback.
func CandidatePaths(cwd string) []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mcp.json"))
	}
	paths = append(paths,
		filepath.Join(cwd, ".claude", "mcp.json"),
		filepath.Join(cwd, "mcp.json"),
	)
	return paths
}

// Load reads every existing configuration file and merges the servers they
// define, closer files winning. It fails when no file exists, when a file
// is malformed, or when no file defines any server.
func Load(cwd string) (*Merged, error) {
	candidates := CandidatePaths(cwd)

	var existing []string
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("no MCP configuration files found; looked for: %s",
			strings.Join(candidates, ", "))
	}

	var files []rawFile
	for _, path := range existing {
		f, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	serverMaps := mergeServerMaps(files)
	if len(serverMaps) == 0 {
		return nil, fmt.Errorf("no 'mcpServers' entries were found in any configuration file; define at least one server in mcp.json")
	}

	servers := make(map[string]ServerConfig, len(serverMaps))
	for name, data := range serverMaps {
		cfg, err := serverFromMapping(name, data)
		if err != nil {
			return nil, err
		}
		servers[name] = cfg
	}

	return &Merged{Servers: servers}, nil
}

// loadFile parses one configuration file. Comments and trailing commas are
// tolerated; the file must hold a JSON object, and mcpServers, when
// present, must be an object of objects.
func loadFile(path string) (rawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rawFile{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return rawFile{}, fmt.Errorf("invalid JSON in config file %s: %w", path, err)
	}

	f := rawFile{Path: path}
	raw, present := top[serversKey]
	if !present {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.Servers); err != nil {
		return rawFile{}, fmt.Errorf("%s: 'mcpServers' must be an object of server objects", path)
	}
	return f, nil
}
