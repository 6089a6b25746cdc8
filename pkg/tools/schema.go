package tools

import (
	"encoding/json"
)

// Argument types understood by the tool schemas
const (
	TypeString  = "string"
	TypeInteger = "integer"
)

// Field declares one tool argument
type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Minimum     *int
	Maximum     *int
}

// Schema is the input declaration of a tool. It is written out by hand
// rather than derived from Go types, so the published JSON Schema is exactly
// what is listed here.
type Schema struct {
	Fields []Field
}

// Required lists the names of the required fields in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field looks a field up by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// JSONSchema renders the schema as a JSON Schema object.
func (s Schema) JSONSchema() json.RawMessage {
	properties := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		prop := map[string]any{"type": f.Type}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		if f.Minimum != nil {
			prop["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			prop["maximum"] = *f.Maximum
		}
		properties[f.Name] = prop
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if required := s.Required(); len(required) > 0 {
		doc["required"] = required
	}

	// Only strings, ints and maps of them: marshalling cannot fail.
	data, _ := json.Marshal(doc)
	return data
}

func bound(v int) *int { return &v }
