package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mcptool/mcptool/internal/mcp"
	"github.com/mcptool/mcptool/internal/schema"
	"github.com/mcptool/mcptool/internal/toolfilter"
)

var (
	toolsServer  string
	toolsInclude string
	toolsExclude string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools of configured MCP servers",
	Long: `List every tool the configured servers report, with the command name to
invoke it. --server narrows the listing to one server; --include-tools and
--exclude-tools filter by tool name.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runTools,
}

func init() {
	f := toolsCmd.Flags()
	f.StringVar(&toolsServer, "server", "", "only list tools of this server")
	f.StringVar(&toolsInclude, "include-tools", "", "only list these tools (comma-separated)")
	f.StringVar(&toolsExclude, "exclude-tools", "", "hide these tools (comma-separated)")
}

func runTools(cmd *cobra.Command, _ []string) error {
	if toolsInclude != "" && toolsExclude != "" {
		return fmt.Errorf("--include-tools and --exclude-tools cannot be used together")
	}
	include := toolfilter.ParseList(toolsInclude)
	exclude := toolfilter.ParseList(toolsExclude)

	opts := globalOpts
	cfg, err := loadMergedConfig(opts)
	if err != nil {
		return err
	}

	var listings []discovery
	if toolsServer != "" {
		server, err := cfg.Server(toolsServer)
		if err != nil {
			return err
		}
		tools, err := discoverServer(cmd.Context(), opts, server)
		if err != nil {
			return err
		}
		// Strict selection against the one server, in requested order.
		tools, err = toolfilter.Select(tools, include)
		if err != nil {
			return fmt.Errorf("server %q: %w", server.Name, err)
		}
		include = nil
		listings = []discovery{{server: server, tools: tools}}
	} else {
		listings = discoverAll(opts, cfg)
	}

	// Include names must match somewhere across the listed servers; a
	// near miss gets a suggestion.
	if len(include) > 0 {
		var known []string
		for _, d := range listings {
			for _, t := range d.tools {
				known = append(known, t.Name)
			}
		}
		for _, name := range include {
			if !containsName(known, name) {
				msg := fmt.Sprintf("tool %q not found on any listed server", name)
				if s := toolfilter.Suggest(name, known); s != "" {
					msg += fmt.Sprintf(". Did you mean %q?", s)
				}
				return fmt.Errorf("%s", msg)
			}
		}
	}

	out := cmd.OutOrStdout()
	printed := 0
	for _, d := range listings {
		if d.err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server %q: %s\n", d.server.Name, d.err)
			continue
		}
		tools := keepNamed(d.tools, include)
		tools, err := toolfilter.Exclude(tools, exclude)
		if err != nil {
			return fmt.Errorf("server %q: %w", d.server.Name, err)
		}
		if len(tools) == 0 {
			continue
		}

		fmt.Fprintf(out, "%s (%d tools)\n", d.server.Name, len(tools))
		for _, t := range tools {
			printToolLine(out, d.server.Name, t)
			printed++
		}
		fmt.Fprintln(out)
	}

	if printed == 0 {
		return fmt.Errorf("no tools discovered")
	}
	return nil
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

// keepNamed filters to the named tools, preserving server order. An empty
// selection keeps everything.
func keepNamed(tools []mcp.Tool, names []string) []mcp.Tool {
	if len(names) == 0 {
		return tools
	}
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	var result []mcp.Tool
	for _, t := range tools {
		if _, ok := keep[t.Name]; ok {
			result = append(result, t)
		}
	}
	return result
}

func printToolLine(out io.Writer, serverName string, t mcp.Tool) {
	name := serverName + "__" + t.Name
	desc := shortDescription(t)
	if schema.Classify(t.InputSchema) == schema.Complex {
		if desc != "" {
			desc += " "
		}
		desc += "(JSON input)"
	}
	if desc != "" {
		fmt.Fprintf(out, "  %-40s %s\n", name, desc)
	} else {
		fmt.Fprintf(out, "  %s\n", name)
	}
}
