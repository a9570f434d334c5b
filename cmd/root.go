// Package cmd builds the mcptool command tree. Tool subcommands are not
// static: they are generated at startup from the schemas of the tools the
// configured MCP servers report, named <server>__<tool>.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mcptool/mcptool/internal/auth"
	"github.com/mcptool/mcptool/internal/config"
	"github.com/mcptool/mcptool/internal/defaults"
	"github.com/mcptool/mcptool/internal/mcp"
	"github.com/mcptool/mcptool/internal/shellwords"
	"github.com/mcptool/mcptool/internal/toolfilter"
)

var appVersion = "dev"

// globalOpts is filled by the pre-scan in Execute; static subcommands read
// it instead of re-parsing the persistent flags.
var globalOpts = &globalOptions{timeout: 30}

func SetVersion(v string) {
	appVersion = v
}

// globalOptions are the persistent flags that shape discovery and
// invocation. They are parsed once before the command tree is built
// because tool subcommands depend on them.
type globalOptions struct {
	verbose        bool
	timeout        int
	withStdio      []string
	defaultsPath   string
	setEntries     []string
	setToolEntries []string
	defaultsMode   string
}

func registerGlobalFlags(fs *pflag.FlagSet, o *globalOptions) {
	fs.BoolVar(&o.verbose, "verbose", false, "show progress while connecting to servers")
	fs.IntVar(&o.timeout, "timeout", 30, "per-server timeout in seconds")
	fs.StringArrayVar(&o.withStdio, "with-stdio", nil, "ad-hoc stdio server as name=command (repeatable)")
	fs.StringVar(&o.defaultsPath, "defaults", "", "path to an injected-defaults file")
	fs.StringArrayVar(&o.setEntries, "set", nil, "inject a global default param as key=value (repeatable)")
	fs.StringArrayVar(&o.setToolEntries, "set-tool", nil, "inject a per-tool default param as tool.key=value (repeatable)")
	fs.StringVar(&o.defaultsMode, "defaults-mode", "", "how injected params interact with flags: hidden or default")
}

var rootCmd = &cobra.Command{
	Use:   "mcptool",
	Short: "Call tools of configured MCP servers from the command line",
	Long: `mcptool exposes every tool of the MCP servers configured in mcp.json as a
local subcommand named <server>__<tool>. Simple tool schemas become real
flags; complex ones take raw JSON via --json, --json-file or --json-stdin.

Configuration is merged from ~/.mcp.json, ./.claude/mcp.json and ./mcp.json,
later files winning per server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(authCmd)
}

// Execute parses the global flags up front, builds the dynamic part of the
// command tree, and runs cobra. When the first argument names a single
// <server>__<tool> command, only that server is contacted.
func Execute() error {
	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("mcptool v%s\n", appVersion))

	opts, positional, err := parseGlobalOptions(rootCmd.PersistentFlags(), os.Args[1:])
	if err != nil {
		return err
	}
	globalOpts = opts

	injected, err := loadDefaults(opts)
	if err != nil {
		return err
	}

	target := firstPositional(positional)
	if err := registerToolCommands(opts, injected, target); err != nil {
		return err
	}

	return rootCmd.Execute()
}

// parseGlobalOptions registers the persistent flags and pre-scans args for
// them, returning the parsed options and the positional arguments. Every
// registration happens before the parse: pflag's *Var constructors write
// the flag's default into the target variable at registration time, so a
// flag set registered after the parse would wipe the parsed values.
func parseGlobalOptions(persistent *pflag.FlagSet, args []string) (*globalOptions, []string, error) {
	var opts globalOptions
	registerGlobalFlags(persistent, &opts)

	pre := pflag.NewFlagSet("mcptool", pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	registerGlobalFlags(pre, &opts)

	if err := pre.Parse(args); err != nil && err != pflag.ErrHelp {
		return nil, nil, err
	}
	return &opts, pre.Args(), nil
}

// firstPositional returns the leading non-flag argument, which is the
// subcommand the user asked for. Empty when the invocation is bare.
func firstPositional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// registerToolCommands discovers tools and attaches one subcommand per
// tool. A <server>__<tool> target narrows discovery to that one server;
// anything else (bare help, the tools listing handled by its own command)
// discovers everything so the full tree shows up.
func registerToolCommands(opts *globalOptions, injected *defaults.Config, target string) error {
	switch target {
	case "tools", "auth", "completion", "__complete":
		return nil
	}

	cfg, err := loadMergedConfig(opts)
	if err != nil {
		// A bare invocation should still print help when no mcp.json
		// exists anywhere.
		if target == "" || target == "help" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
			return nil
		}
		return err
	}

	if serverName, toolName, ok := strings.Cut(target, "__"); ok && toolName != "" {
		server, err := cfg.Server(serverName)
		if err != nil {
			if s := toolfilter.Suggest(serverName, cfg.Names()); s != "" {
				return fmt.Errorf("%w. Did you mean %q?", err, s+"__"+toolName)
			}
			return err
		}
		tools, err := discoverServer(context.Background(), opts, server)
		if err != nil {
			return err
		}
		found := false
		for _, t := range tools {
			rootCmd.AddCommand(newToolCommand(server, t, opts, injected))
			if t.Name == toolName {
				found = true
			}
		}
		if !found {
			names := make([]string, len(tools))
			for i, t := range tools {
				names[i] = t.Name
			}
			msg := fmt.Sprintf("server %q has no tool %q", serverName, toolName)
			if s := toolfilter.Suggest(toolName, names); s != "" {
				msg += fmt.Sprintf(". Did you mean %q?", serverName+"__"+s)
			}
			return fmt.Errorf("%s", msg)
		}
		return nil
	}

	// Full discovery for listings and help.
	discovered := discoverAll(opts, cfg)
	for _, d := range discovered {
		if d.err != nil {
			fmt.Fprintf(os.Stderr, "Warning: server %q: %s\n", d.server.Name, d.err)
			continue
		}
		for _, t := range d.tools {
			rootCmd.AddCommand(newToolCommand(d.server, t, opts, injected))
		}
	}
	return nil
}

// loadMergedConfig reads the layered mcp.json files and applies --with-stdio
// overrides on top.
func loadMergedConfig(opts *globalOptions) (*config.Merged, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		if len(opts.withStdio) == 0 {
			return nil, err
		}
		cfg = &config.Merged{Servers: make(map[string]config.ServerConfig)}
	}

	for _, entry := range opts.withStdio {
		server, err := parseWithStdio(entry)
		if err != nil {
			return nil, err
		}
		cfg.Set(server)
	}
	return cfg, nil
}

// parseWithStdio turns a name=command entry into a stdio server config,
// splitting the command shell-style.
func parseWithStdio(entry string) (config.ServerConfig, error) {
	name, command, found := strings.Cut(entry, "=")
	if !found || name == "" || strings.TrimSpace(command) == "" {
		return config.ServerConfig{}, fmt.Errorf("invalid --with-stdio %q: expected name=command", entry)
	}
	parts, err := shellwords.Split(command)
	if err != nil {
		return config.ServerConfig{}, fmt.Errorf("invalid --with-stdio %q: %w", entry, err)
	}
	if len(parts) == 0 {
		return config.ServerConfig{}, fmt.Errorf("invalid --with-stdio %q: empty command", entry)
	}
	return config.ServerConfig{
		Name:    name,
		Type:    "stdio",
		Command: parts[0],
		Args:    parts[1:],
	}, nil
}

func loadDefaults(opts *globalOptions) (*defaults.Config, error) {
	var fileCfg *defaults.Config
	if opts.defaultsPath != "" {
		var err error
		fileCfg, err = defaults.Load(opts.defaultsPath)
		if err != nil {
			return nil, err
		}
	}
	return defaults.Merge(fileCfg, opts.setEntries, opts.setToolEntries, opts.defaultsMode)
}

// dialServer connects and completes the MCP handshake. The caller owns the
// returned client and must Close it.
func dialServer(ctx context.Context, opts *globalOptions, server config.ServerConfig) (*mcp.Client, error) {
	credPath, err := auth.DefaultCredentialsPath()
	if err != nil {
		credPath = ""
	}
	provider, err := auth.ForServer(server, credPath)
	if err != nil {
		return nil, err
	}

	verbose(opts, "Connecting to server %q...", server.Name)
	client, err := mcp.Dial(server, provider.Headers)
	if err != nil {
		return nil, fmt.Errorf("server %q: %w", server.Name, err)
	}

	if _, err := client.Initialize(ctx, "mcptool", appVersion); err != nil {
		client.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("server %q did not respond within %ds", server.Name, opts.timeout)
		}
		return nil, fmt.Errorf("server %q: handshake failed: %w", server.Name, err)
	}
	verbose(opts, "Handshake with %q complete", server.Name)
	return client, nil
}

// discoverServer lists a single server's tools over a short-lived session.
func discoverServer(ctx context.Context, opts *globalOptions, server config.ServerConfig) ([]mcp.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.timeout)*time.Second)
	defer cancel()

	client, err := dialServer(ctx, opts, server)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	tools, err := client.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("server %q: listing tools: %w", server.Name, err)
	}
	return tools, nil
}

type discovery struct {
	server config.ServerConfig
	tools  []mcp.Tool
	err    error
}

// discoverAll fans discovery out across all configured servers and returns
// the results in name order. Per-server failures are recorded, not fatal.
func discoverAll(opts *globalOptions, cfg *config.Merged) []discovery {
	names := cfg.Names()
	results := make([]discovery, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		server := cfg.Servers[name]
		wg.Add(1)
		go func(i int, server config.ServerConfig) {
			defer wg.Done()
			tools, err := discoverServer(context.Background(), opts, server)
			results[i] = discovery{server: server, tools: tools, err: err}
		}(i, server)
	}
	wg.Wait()
	return results
}

// verbose prints a progress line if --verbose is set.
func verbose(opts *globalOptions, format string, args ...any) {
	if opts.verbose {
		fmt.Printf(format+"\n", args...)
	}
}
