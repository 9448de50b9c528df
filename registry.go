package chainref

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/chainref/i18n"
	js "github.com/reoring/chainref/jsonschema"
)

const digitsPattern = `^\d+$`

// Registry holds one compiled schema per record type.
type Registry struct {
	schemas map[RecordType]*Schema
}

// Schema validates whole batches of one record type.
type Schema struct {
	layout   Layout
	doc      *js.Schema
	compiled *jsonschema.Schema
}

// NewRegistry generates and compiles the schema of every record type.
func NewRegistry() (*Registry, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	r := &Registry{schemas: make(map[RecordType]*Schema, len(layouts))}
	for _, t := range AllRecordTypes() {
		l := layouts[t]
		doc := documentFor(l)
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode %s schema: %w", t, err)
		}
		url := t.FileName()
		if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("load %s schema: %w", t, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", t, err)
		}
		r.schemas[t] = &Schema{layout: l, doc: doc, compiled: compiled}
	}
	return r, nil
}

// Schema returns the compiled schema for t.
func (r *Registry) Schema(t RecordType) (*Schema, error) {
	s, ok := r.schemas[t]
	if !ok {
		return nil, &UnknownRecordTypeError{Tag: string(t)}
	}
	return s, nil
}

// Type reports the record type the schema was built for.
func (s *Schema) Type() RecordType { return s.layout.Type }

// Document returns the generated JSON Schema.
func (s *Schema) Document() *js.Schema {
	doc := *s.doc
	doc.Title = string(s.layout.Type) + " records"
	return &doc
}

// Check validates a batch and returns every violation found. A nil result
// means the batch conforms.
func (s *Schema) Check(batch any) Issues {
	batch = normalizeBatch(batch)
	err := s.compiled.Validate(batch)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return Issues{{Path: "/", Code: CodeInvalidType, Message: err.Error()}}
	}
	var iss Issues
	for _, leaf := range leaves(ve, nil) {
		iss = append(iss, s.issuesFor(batch, leaf)...)
	}
	iss.Sort()
	return iss
}

// SchemaErrorCheck reports whether batch violates the schema.
func SchemaErrorCheck(s *Schema, batch any) bool { return len(s.Check(batch)) > 0 }

func documentFor(l Layout) *js.Schema {
	item := &js.Schema{
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, len(l.Fields)),
		Required:             l.Required(),
		AdditionalProperties: js.Bool(false),
	}
	for _, f := range l.Fields {
		switch f.Kind {
		case KindDigits:
			item.Properties[f.Name] = &js.Schema{Type: "string", Pattern: digitsPattern}
		case KindPair:
			item.Properties[f.Name] = &js.Schema{
				Type:        "array",
				PrefixItems: []*js.Schema{nonEmptyString(), nonEmptyString()},
				MinItems:    js.Int(2),
				MaxItems:    js.Int(2),
			}
		default:
			if f.Required || f.NonEmpty {
				item.Properties[f.Name] = nonEmptyString()
			} else {
				item.Properties[f.Name] = &js.Schema{Type: "string"}
			}
		}
	}
	return &js.Schema{Dialect: js.Draft2020, Type: "array", Items: item}
}

func nonEmptyString() *js.Schema { return &js.Schema{Type: "string", MinLength: js.Int(1)} }

func leaves(ve *jsonschema.ValidationError, dst []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return append(dst, ve)
	}
	for _, c := range ve.Causes {
		dst = leaves(c, dst)
	}
	return dst
}

func (s *Schema) issuesFor(batch any, ve *jsonschema.ValidationError) Issues {
	loc := ve.InstanceLocation
	value, _ := lookupPointer(batch, loc)
	keyword := ve.KeywordLocation[strings.LastIndexByte(ve.KeywordLocation, '/')+1:]
	switch keyword {
	case "required":
		obj, _ := value.(map[string]any)
		var iss Issues
		for _, name := range s.layout.Required() {
			if _, ok := obj[name]; !ok {
				iss = append(iss, newIssue(loc+"/"+escapePointer(name), CodeRequired, nil, map[string]string{"field": name}))
			}
		}
		return iss
	case "additionalProperties":
		obj, _ := value.(map[string]any)
		var iss Issues
		for name, v := range obj {
			if _, ok := s.layout.Field(name); !ok {
				iss = append(iss, newIssue(loc+"/"+escapePointer(name), CodeUnknownKey, v, map[string]string{"field": name}))
			}
		}
		return iss
	}
	code := CodeInvalidFormat
	switch keyword {
	case "type":
		code = CodeInvalidType
	case "minLength":
		code = CodeTooShort
	case "pattern":
		code = CodePattern
	case "minItems":
		code = CodeTooSmall
	case "maxItems", "items":
		code = CodeTooBig
	}
	it := newIssue(loc, code, value, nil)
	it.Params["detail"] = ve.Message
	if code == CodeInvalidType || code == CodeInvalidFormat {
		it.Message += ": " + ve.Message
	}
	return Issues{it}
}

func newIssue(path, code string, value any, data map[string]string) Issue {
	if path == "" {
		path = "/"
	}
	params := make(map[string]any, len(data)+1)
	for k, v := range data {
		params[k] = v
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, data), Value: value, Params: params}
}

// normalizeBatch converts typed batch shapes into the plain []any form the
// compiled schema accepts.
func normalizeBatch(batch any) any {
	switch b := batch.(type) {
	case []Record:
		return Records(b)
	case []map[string]any:
		out := make([]any, len(b))
		for i, m := range b {
			out[i] = m
		}
		return out
	}
	return batch
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// lookupPointer resolves an RFC 6901 pointer inside a decoded JSON value.
func lookupPointer(doc any, ptr string) (any, bool) {
	if ptr == "" || ptr == "/" {
		return doc, true
	}
	cur := doc
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[unescapePointer(part)]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
