// Package defaults injects pre-configured parameter values into tool
// invocations. Injected values sit below the JSON base and below explicit
// flags in the final precedence order, so anything the user supplies wins.
package defaults

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// Mode controls how injected params interact with schema-derived flags.
type Mode string

const (
	// ModeHidden suppresses the flags for injected params; the values are
	// applied silently.
	ModeHidden Mode = "hidden"
	// ModeDefault keeps the flags visible with the injected value as the
	// flag's default.
	ModeDefault Mode = "default"
)

// Config holds global and per-tool parameter injections.
type Config struct {
	Mode   Mode                      `json:"mode"`
	Global map[string]any            `json:"global"`
	Tools  map[string]map[string]any `json:"tools"`
}

// Load reads an injection config from a JSON file. Comments and trailing
// commas are tolerated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("defaults: reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("defaults: parsing %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Mode == "" {
		c.Mode = ModeHidden
	}
	switch c.Mode {
	case ModeHidden, ModeDefault:
	default:
		return fmt.Errorf("defaults: unknown mode %q (must be %q or %q)", c.Mode, ModeHidden, ModeDefault)
	}

	for name := range c.Global {
		if name == "" {
			return fmt.Errorf("defaults: global params contain an empty param name")
		}
	}
	for tool, params := range c.Tools {
		for name := range params {
			if name == "" {
				return fmt.Errorf("defaults: tool %q params contain an empty param name", tool)
			}
		}
	}
	return nil
}

// For returns the injected params for one tool: global params first,
// tool-specific params overriding on conflict.
func (c *Config) For(toolName string) map[string]any {
	merged := make(map[string]any, len(c.Global))
	for k, v := range c.Global {
		merged[k] = v
	}
	for k, v := range c.Tools[toolName] {
		merged[k] = v
	}
	return merged
}

// Apply layers the base argument object over the injected params for a
// tool. Base keys win. Neither input is mutated.
func (c *Config) Apply(base map[string]any, toolName string) map[string]any {
	result := c.For(toolName)
	for k, v := range base {
		result[k] = v
	}
	return result
}

// ParamNames returns the injected param names for a tool, sorted. Hidden
// mode uses this to know which schema flags to suppress.
func (c *Config) ParamNames(toolName string) []string {
	seen := make(map[string]struct{})
	for k := range c.Global {
		seen[k] = struct{}{}
	}
	for k := range c.Tools[toolName] {
		seen[k] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// parseValue parses a string as JSON when possible, falling back to the
// raw string. --set n=3 yields a number while --set org=acme stays a
// string; --set labels='["a","b"]' yields a list.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// ParseSetEntries parses --set key=value entries into a param map.
func ParseSetEntries(entries []string) (map[string]any, error) {
	params := make(map[string]any, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("defaults: invalid --set %q: expected key=value", entry)
		}
		if key == "" {
			return nil, fmt.Errorf("defaults: invalid --set %q: empty key", entry)
		}
		params[key] = parseValue(value)
	}
	return params, nil
}

// ParseSetToolEntries parses --set-tool tool.key=value entries into a
// per-tool param map.
func ParseSetToolEntries(entries []string) (map[string]map[string]any, error) {
	tools := make(map[string]map[string]any)
	for _, entry := range entries {
		toolName, rest, found := strings.Cut(entry, ".")
		if !found || toolName == "" {
			return nil, fmt.Errorf("defaults: invalid --set-tool %q: expected tool.key=value", entry)
		}
		key, value, found := strings.Cut(rest, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("defaults: invalid --set-tool %q: expected tool.key=value", entry)
		}
		if tools[toolName] == nil {
			tools[toolName] = make(map[string]any)
		}
		tools[toolName][key] = parseValue(value)
	}
	return tools, nil
}

// Merge combines a file config (may be nil) with CLI --set/--set-tool/
// --defaults-mode overrides. CLI values win. The result is always non-nil.
func Merge(cfg *Config, globalSets, toolSets []string, modeOverride string) (*Config, error) {
	merged := Config{Mode: ModeHidden}
	if cfg != nil {
		merged.Mode = cfg.Mode
		merged.Global = copyParams(cfg.Global)
		merged.Tools = make(map[string]map[string]any, len(cfg.Tools))
		for name, params := range cfg.Tools {
			merged.Tools[name] = copyParams(params)
		}
	}
	if merged.Mode == "" {
		merged.Mode = ModeHidden
	}

	globalParams, err := ParseSetEntries(globalSets)
	if err != nil {
		return nil, err
	}
	if merged.Global == nil {
		merged.Global = make(map[string]any)
	}
	for k, v := range globalParams {
		merged.Global[k] = v
	}

	toolParams, err := ParseSetToolEntries(toolSets)
	if err != nil {
		return nil, err
	}
	if merged.Tools == nil {
		merged.Tools = make(map[string]map[string]any)
	}
	for toolName, params := range toolParams {
		if merged.Tools[toolName] == nil {
			merged.Tools[toolName] = make(map[string]any)
		}
		for k, v := range params {
			merged.Tools[toolName][k] = v
		}
	}

	if modeOverride != "" {
		mode := Mode(modeOverride)
		switch mode {
		case ModeHidden, ModeDefault:
			merged.Mode = mode
		default:
			return nil, fmt.Errorf("defaults: unknown --defaults-mode %q (must be %q or %q)", modeOverride, ModeHidden, ModeDefault)
		}
	}

	return &merged, nil
}

func copyParams(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
