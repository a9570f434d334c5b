package args

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source names the JSON-supplying inputs of a tool command. The three ways
// of providing a base argument object are mutually exclusive.
type Source struct {
	Literal  string    // Inline JSON from --json.
	FilePath string    // Path from --json-file.
	UseStdin bool      // True when --json-stdin was given.
	Stdin    io.Reader // Stream read for --json-stdin; defaults to os.Stdin.
}

// Resolve reads and parses the selected JSON source into the base argument
// object. With no source selected it returns an empty object. Supplying
// more than one source is ErrAmbiguousSource; malformed or non-object JSON
// is a ParseError naming the source.
func (s Source) Resolve() (map[string]any, error) {
	provided := 0
	if s.Literal != "" {
		provided++
	}
	if s.FilePath != "" {
		provided++
	}
	if s.UseStdin {
		provided++
	}
	if provided > 1 {
		return nil, ErrAmbiguousSource
	}

	var raw string
	switch {
	case s.UseStdin:
		stdin := s.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, &ParseError{Source: s.name(), Err: err}
		}
		raw = string(data)
	case s.FilePath != "":
		data, err := os.ReadFile(s.FilePath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.FilePath, err)
		}
		raw = string(data)
	case s.Literal != "":
		raw = s.Literal
	}

	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, &ParseError{Source: s.name(), Err: err}
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, &ParseError{Source: s.name(), Err: fmt.Errorf("tool arguments must be a JSON object")}
	}

	return object, nil
}

func (s Source) name() string {
	switch {
	case s.UseStdin:
		return "stdin"
	case s.FilePath != "":
		return s.FilePath
	default:
		return "--json"
	}
}
