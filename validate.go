package formic

import "strconv"

// Validation messages. One message per offending path; when several rules
// hit the same path the last write wins.
const (
	MsgRequired     = "value is required"
	MsgInvalidValue = "invalid value"
)

// Validate walks the effective schema and the data snapshot and returns a
// map from dot-joined path (object keys and array indices) to a violation
// message. An empty map means the document is valid under this schema.
// basePath, when non-empty, prefixes every reported path.
//
// Two rules apply: required object members must be present and non-empty
// (a required array must additionally be non-empty), and a defined,
// non-empty primitive with an enum must equal one of its members. Partial
// data is the normal case while a document is mid-edit, so nothing here is
// fatal and absent branches are simply skipped.
func Validate(schema *SchemaField, data any, basePath string) map[string]string {
	errs := make(map[string]string)
	validateNode(schema, data, basePath, errs)
	return errs
}

func validateNode(schema *SchemaField, data any, path string, errs map[string]string) {
	if schema == nil {
		return
	}

	switch schema.Kind() {
	case TypeObject:
		obj, _ := data.(map[string]any)
		for _, name := range schema.Required {
			var value any
			if obj != nil {
				value = obj[name]
			}
			if requiredViolated(schema.Properties[name], value) {
				errs[joinPath(path, name)] = MsgRequired
			}
		}
		for _, name := range OrderedPropertyNames(schema) {
			var value any
			if obj != nil {
				value = obj[name]
			}
			validateNode(schema.Properties[name], value, joinPath(path, name), errs)
		}

	case TypeArray:
		if schema.Items == nil {
			return
		}
		arr, _ := data.([]any)
		for i, elem := range arr {
			validateNode(schema.Items, elem, joinPath(path, strconv.Itoa(i)), errs)
		}

	default:
		if len(schema.Enum) == 0 {
			return
		}
		if data == nil {
			return
		}
		if s, ok := data.(string); ok && s == "" {
			// Empty string is the "not filled in yet" state; requiredness
			// reports it, the enum check does not.
			return
		}
		if !containsLiteral(schema.Enum, data) {
			errs[path] = MsgInvalidValue
		}
	}
}

// requiredViolated reports whether a required member's value is missing:
// absent, null, empty string, or an empty value for an array-typed member.
func requiredViolated(child *SchemaField, value any) bool {
	if isMissing(value) {
		return true
	}
	if child != nil && child.Kind() == TypeArray {
		if arr, ok := value.([]any); ok && len(arr) == 0 {
			return true
		}
	}
	return false
}

func joinPath(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "." + segment
}
