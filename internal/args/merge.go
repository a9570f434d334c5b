package args

import (
	"strings"

	"github.com/mcptool/mcptool/internal/schema"
)

// FlagValue is one schema-derived flag that was explicitly supplied on the
// command line, with its value already converted by the flag layer.
type FlagValue struct {
	Spec  schema.PropertySpec
	Value any // string, int, float64 or bool per Spec.Type
}

// Merge combines the base argument object with explicitly supplied flag
// values. Flags overwrite same-named base keys; the overwrite is one level
// deep since flags only represent scalar leaves. The base map is not
// mutated.
func Merge(base map[string]any, flags []FlagValue) map[string]any {
	result := make(map[string]any, len(base)+len(flags))
	for k, v := range base {
		result[k] = v
	}
	for _, fv := range flags {
		result[fv.Spec.SourceName] = fv.Value
	}
	return result
}

// Validate checks the merged argument object against the schema specs:
// every required property must be present, and string values of enum
// properties must be among the declared choices. Enum matching is
// case-insensitive; matched values are canonicalized in place to the
// declared spelling so the server sees the schema's casing regardless of
// whether the value arrived via flag or JSON.
func Validate(result map[string]any, specs []schema.PropertySpec) error {
	for i := range specs {
		spec := &specs[i]

		value, present := result[spec.SourceName]
		if !present {
			if spec.Required {
				return &MissingRequiredError{Property: spec.SourceName, Spec: spec}
			}
			continue
		}

		if len(spec.Choices) == 0 {
			continue
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		canonical, err := CanonicalChoice(spec, text)
		if err != nil {
			return err
		}
		result[spec.SourceName] = canonical
	}
	return nil
}

// CanonicalChoice matches value against the spec's choices ignoring case
// and returns the declared spelling. A non-member yields an EnumError.
func CanonicalChoice(spec *schema.PropertySpec, value string) (string, error) {
	for _, choice := range spec.Choices {
		if strings.EqualFold(choice, value) {
			return choice, nil
		}
	}
	return "", &EnumError{Property: spec.SourceName, Value: value, Choices: spec.Choices}
}
