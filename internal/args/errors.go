package args

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcptool/mcptool/internal/schema"
)

// ErrAmbiguousSource is returned when more than one JSON input source is
// supplied on the same command line.
var ErrAmbiguousSource = errors.New("only one of --json, --json-file or --json-stdin may be used at a time")

// ParseError reports malformed JSON from one of the input sources.
type ParseError struct {
	Source string // "--json", the file path, or "stdin"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON arguments from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingRequiredError reports a schema-required property absent from the
// merged argument object. Spec is nil when no flag spec exists for the
// property (e.g. a required property with a non-scalar type).
type MissingRequiredError struct {
	Property string
	Spec     *schema.PropertySpec
}

func (e *MissingRequiredError) Error() string {
	msg := fmt.Sprintf("missing required property %q", e.Property)
	if e.Spec != nil {
		msg += " (" + fragment(e.Spec) + ")"
	}
	return msg
}

// EnumError reports a value outside an enum property's declared choices.
type EnumError struct {
	Property string
	Value    string
	Choices  []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid value %q for property %q: must be one of %s",
		e.Value, e.Property, strings.Join(e.Choices, ", "))
}

// fragment renders the schema details of a property for error messages.
func fragment(spec *schema.PropertySpec) string {
	parts := []string{"type " + string(spec.Type)}
	if len(spec.Choices) > 0 {
		parts = append(parts, "one of "+strings.Join(spec.Choices, ", "))
	}
	if spec.Description != "" {
		parts = append(parts, spec.Description)
	}
	return strings.Join(parts, "; ")
}
