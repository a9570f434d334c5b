package schema

import "encoding/json"

// Kind is the classifier's verdict on a tool input schema.
type Kind string

const (
	// Simple schemas are object schemas whose scalar properties can be
	// promoted to CLI flags.
	Simple Kind = "simple"
	// Complex schemas are supported through raw JSON input only.
	Complex Kind = "complex"
)

// compositionKeywords disqualify a schema from flag mapping when present at
// the top level.
var compositionKeywords = []string{"oneOf", "anyOf", "allOf"}

// Classify decides whether a tool input schema is simple enough for
// per-property flag mapping.
//
// A schema is Complex when its declared type is not "object", when its
// "properties" member is absent or not an object, or when it uses a
// composition keyword (oneOf/anyOf/allOf) at the top level. Malformed JSON
// is Complex. Classification is schema-level: a Simple schema may still
// contain individual properties that cannot become flags.
func Classify(raw json.RawMessage) Kind {
	root, ok := parseRoot(raw)
	if !ok {
		return Complex
	}

	var schemaType string
	if err := json.Unmarshal(root["type"], &schemaType); err != nil || schemaType != "object" {
		return Complex
	}

	props, ok := root["properties"]
	if !ok || !isObject(props) {
		return Complex
	}

	for _, keyword := range compositionKeywords {
		if _, present := root[keyword]; present {
			return Complex
		}
	}

	return Simple
}

// ComplexAdvice is the help-text recommendation shown for tools whose input
// schema cannot be mapped to flags.
func ComplexAdvice() string {
	return "Arguments should be provided as JSON via --json, --json-file or --json-stdin."
}

// parseRoot unmarshals a schema into its top-level members. The second
// return value is false when the schema is not a JSON object.
func parseRoot(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		return nil, false
	}
	return root, true
}

// isObject reports whether raw is a JSON object.
func isObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && m != nil
}
