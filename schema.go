package formic

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Schema node types. Nested nodes that declare no type but carry
// structural members default to object (properties) or array (items).
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// OneOfOption is a label-carrying enum entry: the value plus the text a
// renderer should display for it.
type OneOfOption struct {
	Const any    `json:"const"`
	Title string `json:"title,omitempty"`
}

// SchemaField describes one value's contract in the schema tree. The same
// shape serves object members, array items, and conditional branches.
//
// Const is a first-class literal-equality constraint. Source documents
// occasionally attach it to `if` fragments; it is part of the formal shape
// here rather than an ad hoc extension.
type SchemaField struct {
	Type        string                  `json:"type,omitempty"`
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Enum        []any                   `json:"enum,omitempty"`
	OneOf       []OneOfOption           `json:"oneOf,omitempty"`
	Const       any                     `json:"const,omitempty"`
	Order       *float64                `json:"$order,omitempty"`
	If          *SchemaField            `json:"if,omitempty"`
	Then        *SchemaField            `json:"then,omitempty"`
	Else        *SchemaField            `json:"else,omitempty"`
	Properties  map[string]*SchemaField `json:"properties,omitempty"`
	Items       *SchemaField            `json:"items,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

// JSONSchema is the root of a schema document: the same recursive shape as
// SchemaField with type fixed to object by convention.
type JSONSchema = SchemaField

// ParseSchema decodes a JSON schema document and normalizes it.
func ParseSchema(data []byte) (*JSONSchema, error) {
	var root JSONSchema
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	root.Normalize()
	return &root, nil
}

// Normalize rewrites oneOf entries into an equivalent enum list wherever a
// node declares oneOf but no enum, recursively. The oneOf list itself is
// kept so renderers can still reach the option titles.
func (f *SchemaField) Normalize() {
	if f == nil {
		return
	}
	if len(f.Enum) == 0 && len(f.OneOf) > 0 {
		enum := make([]any, 0, len(f.OneOf))
		for _, opt := range f.OneOf {
			enum = append(enum, opt.Const)
		}
		f.Enum = enum
	}
	for _, child := range f.Properties {
		child.Normalize()
	}
	f.Items.Normalize()
	f.If.Normalize()
	f.Then.Normalize()
	f.Else.Normalize()
}

// Kind returns the effective node type: the declared type when present,
// otherwise object or array when the node carries properties or items.
// Nodes with neither a type nor structural members report "".
func (f *SchemaField) Kind() string {
	if f == nil {
		return ""
	}
	if f.Type != "" {
		return f.Type
	}
	if len(f.Properties) > 0 {
		return TypeObject
	}
	if f.Items != nil {
		return TypeArray
	}
	return ""
}

// Clone returns a deep copy of the node.
func (f *SchemaField) Clone() *SchemaField {
	if f == nil {
		return nil
	}
	out := *f
	if f.Enum != nil {
		out.Enum = append([]any(nil), f.Enum...)
	}
	if f.OneOf != nil {
		out.OneOf = append([]OneOfOption(nil), f.OneOf...)
	}
	if f.Required != nil {
		out.Required = append([]string(nil), f.Required...)
	}
	if f.Properties != nil {
		out.Properties = make(map[string]*SchemaField, len(f.Properties))
		for name, child := range f.Properties {
			out.Properties[name] = child.Clone()
		}
	}
	out.Items = f.Items.Clone()
	out.If = f.If.Clone()
	out.Then = f.Then.Clone()
	out.Else = f.Else.Clone()
	return &out
}

// OrderedPropertyNames returns the node's property names in display order:
// siblings carrying an $order hint first (ascending), then the rest.
// Ties and unhinted siblings sort by name, which keeps the order stable
// across runs.
func OrderedPropertyNames(f *SchemaField) []string {
	if f == nil || len(f.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.Properties))
	for name := range f.Properties {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := f.Properties[names[i]], f.Properties[names[j]]
		switch {
		case a.Order != nil && b.Order != nil:
			if *a.Order != *b.Order {
				return *a.Order < *b.Order
			}
			return names[i] < names[j]
		case a.Order != nil:
			return true
		case b.Order != nil:
			return false
		default:
			return names[i] < names[j]
		}
	})
	return names
}
