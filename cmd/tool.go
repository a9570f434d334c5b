package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mcptool/mcptool/internal/args"
	"github.com/mcptool/mcptool/internal/config"
	"github.com/mcptool/mcptool/internal/defaults"
	"github.com/mcptool/mcptool/internal/mcp"
	"github.com/mcptool/mcptool/internal/schema"
)

// flagHolders keeps the pflag value storage for one tool command, keyed by
// flag name within each type bucket.
type flagHolders struct {
	strings map[string]*string
	ints    map[string]*int
	floats  map[string]*float64
	bools   map[string]*bool
}

func newFlagHolders() *flagHolders {
	return &flagHolders{
		strings: make(map[string]*string),
		ints:    make(map[string]*int),
		floats:  make(map[string]*float64),
		bools:   make(map[string]*bool),
	}
}

// newToolCommand builds the cobra command for one discovered tool. Simple
// schemas contribute one flag per scalar property; complex schemas get no
// parameter flags and the help points at the raw JSON inputs instead.
func newToolCommand(server config.ServerConfig, tool mcp.Tool, opts *globalOptions, injected *defaults.Config) *cobra.Command {
	fullName := server.Name + "__" + tool.Name
	kind := schema.Classify(tool.InputSchema)
	specs := schema.BuildPropertySpecs(tool.InputSchema)

	var (
		jsonLiteral string
		jsonFile    string
		jsonStdin   bool
		outputMode  string
	)

	holders := newFlagHolders()
	suppressed := suppressedParams(injected, fullName)

	cmd := &cobra.Command{
		Use:   fullName,
		Short: shortDescription(tool),
		Long:  toolHelp(tool, kind),
		// The trailing form "mcptool <server>__<tool> help" is accepted
		// alongside cobra's leading help subcommand.
		Args: func(cmd *cobra.Command, cmdArgs []string) error {
			if len(cmdArgs) == 1 && cmdArgs[0] == "help" {
				return nil
			}
			return cobra.NoArgs(cmd, cmdArgs)
		},
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if len(cmdArgs) == 1 && cmdArgs[0] == "help" {
				return cmd.Help()
			}
			if outputMode != "text" && outputMode != "json" {
				return fmt.Errorf("invalid --output %q: must be text or json", outputMode)
			}

			src := args.Source{
				Literal:  jsonLiteral,
				FilePath: jsonFile,
				UseStdin: jsonStdin,
				Stdin:    cmd.InOrStdin(),
			}
			base, err := src.Resolve()
			if err != nil {
				return err
			}

			merged := injected.Apply(base, fullName)

			flagVals, err := collectFlagValues(cmd.Flags(), specs, holders)
			if err != nil {
				return err
			}
			merged = args.Merge(merged, flagVals)

			if err := args.Validate(merged, specs); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.timeout)*time.Second)
			defer cancel()

			client, err := dialServer(ctx, opts, server)
			if err != nil {
				return err
			}
			defer client.Close()

			verbose(opts, "Calling %s...", tool.Name)
			result, err := client.CallTool(ctx, tool.Name, merged)
			if err != nil {
				if ctx.Err() != nil {
					return fmt.Errorf("server %q did not respond within %ds", server.Name, opts.timeout)
				}
				return fmt.Errorf("calling %s: %w", tool.Name, err)
			}

			if err := renderResult(cmd.OutOrStdout(), result, outputMode); err != nil {
				return err
			}
			if result.IsError {
				return fmt.Errorf("tool %s reported an error", tool.Name)
			}
			return nil
		},
	}

	f := cmd.Flags()
	for _, spec := range specs {
		if _, hide := suppressed[spec.SourceName]; hide {
			continue
		}
		registerSpecFlag(f, spec, holders, injected, fullName)
	}

	f.StringVar(&jsonLiteral, "json", "", "base argument object as an inline JSON string")
	f.StringVar(&jsonFile, "json-file", "", "base argument object read from a JSON file")
	f.BoolVar(&jsonStdin, "json-stdin", false, "base argument object read from stdin")
	f.StringVar(&outputMode, "output", "text", "result rendering: text or json")

	return cmd
}

// suppressedParams returns the injected param names to hide from the flag
// surface. Only hidden mode suppresses anything.
func suppressedParams(injected *defaults.Config, fullName string) map[string]struct{} {
	hide := make(map[string]struct{})
	if injected == nil || injected.Mode != defaults.ModeHidden {
		return hide
	}
	for _, name := range injected.ParamNames(fullName) {
		hide[name] = struct{}{}
	}
	return hide
}

// registerSpecFlag adds one schema-derived flag. In default mode an
// injected value of a matching type becomes the flag's default.
func registerSpecFlag(f *pflag.FlagSet, spec schema.PropertySpec, holders *flagHolders, injected *defaults.Config, fullName string) {
	usage := flagUsage(spec)

	var injectedVal any
	if injected != nil && injected.Mode == defaults.ModeDefault {
		injectedVal = injected.For(fullName)[spec.SourceName]
	}

	switch spec.Type {
	case schema.TypeString:
		def := ""
		if s, ok := injectedVal.(string); ok {
			def = s
		}
		holders.strings[spec.FlagName] = f.String(spec.FlagName, def, usage)
	case schema.TypeInteger:
		def := 0
		if n, ok := injectedVal.(float64); ok {
			def = int(n)
		}
		holders.ints[spec.FlagName] = f.Int(spec.FlagName, def, usage)
	case schema.TypeNumber:
		def := 0.0
		if n, ok := injectedVal.(float64); ok {
			def = n
		}
		holders.floats[spec.FlagName] = f.Float64(spec.FlagName, def, usage)
	case schema.TypeBoolean:
		def := false
		if b, ok := injectedVal.(bool); ok {
			def = b
		}
		holders.bools[spec.FlagName] = f.Bool(spec.FlagName, def, usage)
	}
}

// flagUsage renders the help line for a schema-derived flag: description,
// choices and the required marker.
func flagUsage(spec schema.PropertySpec) string {
	var parts []string
	if spec.Description != "" {
		parts = append(parts, spec.Description)
	}
	if len(spec.Choices) > 0 {
		parts = append(parts, fmt.Sprintf("one of: %s", strings.Join(spec.Choices, ", ")))
	}
	if spec.Required {
		parts = append(parts, "(required)")
	}
	if len(parts) == 0 {
		return string(spec.Type)
	}
	return strings.Join(parts, " ")
}

// collectFlagValues gathers every explicitly set schema flag as a typed
// value. Unset flags never reach the merge, so JSON-supplied values
// survive. Enum values are canonicalized to the declared spelling here so
// the merge result carries the schema's casing.
func collectFlagValues(f *pflag.FlagSet, specs []schema.PropertySpec, holders *flagHolders) ([]args.FlagValue, error) {
	var values []args.FlagValue
	for i := range specs {
		spec := specs[i]
		if !f.Changed(spec.FlagName) {
			continue
		}

		var value any
		switch spec.Type {
		case schema.TypeString:
			s := *holders.strings[spec.FlagName]
			if len(spec.Choices) > 0 {
				canonical, err := args.CanonicalChoice(&spec, s)
				if err != nil {
					return nil, err
				}
				s = canonical
			}
			value = s
		case schema.TypeInteger:
			value = *holders.ints[spec.FlagName]
		case schema.TypeNumber:
			value = *holders.floats[spec.FlagName]
		case schema.TypeBoolean:
			value = *holders.bools[spec.FlagName]
		}
		values = append(values, args.FlagValue{Spec: spec, Value: value})
	}
	return values, nil
}

func shortDescription(tool mcp.Tool) string {
	desc := tool.Description
	if idx := strings.IndexByte(desc, '\n'); idx >= 0 {
		desc = desc[:idx]
	}
	if len(desc) > 72 {
		desc = desc[:69] + "..."
	}
	return desc
}

// toolHelp builds the long help: tool description, input guidance, and the
// pretty-printed schema.
func toolHelp(tool mcp.Tool, kind schema.Kind) string {
	var b strings.Builder
	if tool.Description != "" {
		b.WriteString(tool.Description)
		b.WriteString("\n")
	}
	if kind == schema.Complex {
		b.WriteString("\n")
		b.WriteString(schema.ComplexAdvice())
		b.WriteString("\n")
	}
	if len(tool.InputSchema) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, tool.InputSchema, "", "  "); err == nil {
			b.WriteString("\nInput schema:\n")
			b.WriteString(pretty.String())
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderResult writes the tool result. Text mode prints text content
// blocks with runs of blank lines collapsed; json mode prints the whole
// result object.
func renderResult(w io.Writer, result *mcp.CallToolResult, mode string) error {
	if mode == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	var parts []string
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			parts = append(parts, block.Text)
		default:
			label := block.Type
			if block.MimeType != "" {
				label += " " + block.MimeType
			}
			parts = append(parts, fmt.Sprintf("[%s content omitted; use --output json]", label))
		}
	}
	text := strings.Join(parts, "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	if text != "" {
		fmt.Fprintln(w, text)
	}
	return nil
}
