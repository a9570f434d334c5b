package schema

// Type is the logical type of a schema property that can be exposed as a
// CLI flag.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// PropertySpec describes one schema property exposed as a CLI flag.
type PropertySpec struct {
	SourceName  string   // Original JSON property name in the schema.
	FlagName    string   // Long flag name; identical to SourceName.
	Type        Type     // Logical scalar type.
	Required    bool     // True if listed in the schema's required array.
	Choices     []string // Allowed values from a string enum, nil otherwise.
	Description string   // From the property's description field.
}

// reservedNames are flag names claimed by the tool-invocation control flags.
// Schema properties with these names are never promoted to flags; they stay
// reachable through JSON input only.
var reservedNames = map[string]struct{}{
	"json":       {},
	"json_file":  {},
	"json_stdin": {},
	"output":     {},
}

// IsReserved reports whether name collides with a control flag.
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}
