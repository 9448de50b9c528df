package jsonschema

// Draft2020 is the dialect URI stamped on generated documents.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export and
// compilation. Keep this struct small and extend incrementally.
type Schema struct {
	Dialect string `json:"$schema,omitempty"`
	ID      string `json:"$id,omitempty"`
	Title   string `json:"title,omitempty"`

	// Core
	Type string `json:"type,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`

	// Array
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	Items       *Schema   `json:"items,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`
}

// Int returns a pointer to n for the optional numeric keywords.
func Int(n int) *int { return &n }

// Bool returns a pointer to b for the optional boolean keywords.
func Bool(b bool) *bool { return &b }
