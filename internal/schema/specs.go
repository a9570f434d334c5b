package schema

import (
	"bytes"
	"encoding/json"
)

// BuildPropertySpecs derives the ordered flag set for a tool input schema.
//
// Only Simple schemas produce specs. Within a Simple schema, properties are
// skipped when their name is reserved or when their declared type is not a
// supported scalar; such properties stay reachable through JSON input.
// Output preserves the declaration order of the schema's "properties"
// object so that help rendering is stable across runs.
//
// The function is pure and never fails: malformed or unsuitable input
// degrades to an empty result.
func BuildPropertySpecs(raw json.RawMessage) []PropertySpec {
	if Classify(raw) != Simple {
		return nil
	}

	root, _ := parseRoot(raw)

	var properties map[string]map[string]any
	if err := json.Unmarshal(root["properties"], &properties); err != nil {
		return nil
	}

	requiredSet := make(map[string]bool)
	if reqRaw, ok := root["required"]; ok {
		var required []string
		if err := json.Unmarshal(reqRaw, &required); err == nil {
			for _, name := range required {
				requiredSet[name] = true
			}
		}
	}

	var specs []PropertySpec
	seen := make(map[string]bool)
	for _, name := range objectKeys(root["properties"]) {
		// Duplicate keys in the raw schema collapse to the last value; emit
		// one spec for the first occurrence only.
		if seen[name] {
			continue
		}
		seen[name] = true

		prop := properties[name]
		if prop == nil || IsReserved(name) {
			continue
		}

		propType, ok := scalarType(prop["type"])
		if !ok {
			continue
		}

		spec := PropertySpec{
			SourceName: name,
			FlagName:   name,
			Type:       propType,
			Required:   requiredSet[name],
		}

		if desc, ok := prop["description"].(string); ok {
			spec.Description = desc
		}

		if propType == TypeString {
			spec.Choices = stringEnum(prop["enum"])
		}

		specs = append(specs, spec)
	}

	return specs
}

// scalarType resolves a property's declared type to a supported scalar.
// A type list (the nullable form, e.g. ["string","null"]) resolves only
// when exactly one supported scalar type is present.
func scalarType(declared any) (Type, bool) {
	switch t := declared.(type) {
	case string:
		return asScalar(t)
	case []any:
		var found Type
		count := 0
		for _, entry := range t {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			if scalar, ok := asScalar(s); ok {
				found = scalar
				count++
			}
		}
		if count == 1 {
			return found, true
		}
		return "", false
	default:
		return "", false
	}
}

func asScalar(t string) (Type, bool) {
	switch Type(t) {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		return Type(t), true
	default:
		return "", false
	}
}

// stringEnum returns the enum values when every entry is a string,
// preserving order. Mixed-type and empty enums are not mapped.
func stringEnum(declared any) []string {
	entries, ok := declared.([]any)
	if !ok || len(entries) == 0 {
		return nil
	}
	values := make([]string, 0, len(entries))
	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok {
			return nil
		}
		values = append(values, s)
	}
	return values
}

// objectKeys returns the keys of a JSON object in declaration order.
// encoding/json maps lose ordering, so the keys are read from the raw
// token stream instead.
func objectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
	}
	return keys
}
