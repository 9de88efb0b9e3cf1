package formic

import (
	"math"
	"reflect"
)

// IsValidAgainst reports whether data structurally satisfies schema. This
// is the shallow check used to pick if/then/else branches, not full
// document validation: object nodes check required presence, member enum
// and const constraints, and recurse into object-valued members; array
// nodes check every element against items; primitive nodes check the
// value kind. Nodes with no type and no structural members match anything.
func IsValidAgainst(schema *SchemaField, data any) bool {
	if schema == nil {
		return true
	}

	switch schema.Kind() {
	case TypeObject:
		obj, ok := data.(map[string]any)
		if !ok {
			return false
		}
		for _, name := range schema.Required {
			if isMissing(obj[name]) {
				return false
			}
		}
		for name, child := range schema.Properties {
			value, present := obj[name]
			if !present {
				// Absent members fail only via the required list above.
				continue
			}
			if len(child.Enum) > 0 && !containsLiteral(child.Enum, value) {
				return false
			}
			if child.Const != nil && !literalEquals(child.Const, value) {
				return false
			}
			if child.Kind() == TypeObject {
				if _, isObj := value.(map[string]any); isObj {
					if !IsValidAgainst(child, value) {
						return false
					}
				}
			}
		}
		return true

	case TypeArray:
		arr, ok := data.([]any)
		if !ok {
			return false
		}
		if schema.Items == nil {
			return true
		}
		// An empty array passes vacuously.
		for _, elem := range arr {
			if !IsValidAgainst(schema.Items, elem) {
				return false
			}
		}
		return true

	case TypeString:
		_, ok := data.(string)
		return ok

	case TypeNumber:
		n, ok := toNumber(data)
		return ok && !math.IsInf(n, 0) && !math.IsNaN(n)

	case TypeInteger:
		n, ok := toNumber(data)
		return ok && n == math.Trunc(n) && !math.IsInf(n, 0)

	case TypeBoolean:
		_, ok := data.(bool)
		return ok

	default:
		return true
	}
}

// isMissing applies the required-field emptiness rule: absent, null, and
// the empty string count as missing; 0 and false count as present.
func isMissing(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// literalEquals compares two JSON literals by value, treating all numeric
// representations as equal when they denote the same number. JSON decoding
// yields float64, but hand-built schemas routinely carry int literals.
func literalEquals(a, b any) bool {
	na, aok := toNumber(a)
	nb, bok := toNumber(b)
	if aok || bok {
		return aok && bok && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func containsLiteral(list []any, value any) bool {
	for _, item := range list {
		if literalEquals(item, value) {
			return true
		}
	}
	return false
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	default:
		return 0, false
	}
}
