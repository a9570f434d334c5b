// Package toolfilter selects tools from a server's listing and suggests
// near-miss names when a requested tool does not exist.
package toolfilter

import (
	"fmt"
	"strings"

	"github.com/mcptool/mcptool/internal/mcp"
)

// ParseList splits a comma-separated string into a deduplicated, trimmed
// list of tool names. Empty entries are dropped and order is preserved
// (first occurrence wins on duplicates).
func ParseList(csv string) []string {
	if csv == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var result []string
	for _, p := range strings.Split(csv, ",") {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// Select keeps only the tools named in only, in the order requested. An
// empty only passes every tool through. A name that matches no tool is an
// error listing what the server offers, with a suggestion when one is
// close.
func Select(tools []mcp.Tool, only []string) ([]mcp.Tool, error) {
	if len(only) == 0 {
		return tools, nil
	}

	byName := make(map[string]mcp.Tool, len(tools))
	available := make([]string, 0, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
		available = append(available, t.Name)
	}

	var result []mcp.Tool
	for _, name := range only {
		t, ok := byName[name]
		if !ok {
			msg := fmt.Sprintf("tool %q not found on server. Available tools: %s",
				name, strings.Join(available, ", "))
			if suggestion := Suggest(name, available); suggestion != "" {
				msg += fmt.Sprintf(" Did you mean %q?", suggestion)
			}
			return nil, fmt.Errorf("%s", msg)
		}
		result = append(result, t)
	}
	return result, nil
}

// Exclude removes the named tools from the listing. Names that match
// nothing are ignored; excluding every tool is an error.
func Exclude(tools []mcp.Tool, exclude []string) ([]mcp.Tool, error) {
	if len(exclude) == 0 {
		return tools, nil
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var result []mcp.Tool
	for _, t := range tools {
		if _, drop := skip[t.Name]; !drop {
			result = append(result, t)
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("all tools excluded, nothing to list")
	}
	return result, nil
}
