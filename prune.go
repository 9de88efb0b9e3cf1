package formic

// PruneDataAgainstSchema rebuilds data so it contains only the shape the
// effective schema still declares, dropping values left over from a
// conditional branch that is no longer selected. Object nodes keep exactly
// the declared property set; array nodes map every element through the
// items contract; any other node returns data unchanged — pruning is
// shape-level only, primitives are never coerced here.
//
// Pruning is idempotent: pruning already-pruned data against the same
// schema yields an equal value.
func PruneDataAgainstSchema(schema *SchemaField, data any) any {
	if schema == nil {
		return data
	}

	switch schema.Kind() {
	case TypeObject:
		obj, _ := data.(map[string]any)
		out := make(map[string]any, len(schema.Properties))
		for _, name := range OrderedPropertyNames(schema) {
			var value any
			if obj != nil {
				value = obj[name]
			}
			out[name] = PruneDataAgainstSchema(schema.Properties[name], value)
		}
		return out

	case TypeArray:
		if schema.Items == nil {
			return data
		}
		arr, _ := data.([]any)
		out := make([]any, 0, len(arr))
		for _, elem := range arr {
			out = append(out, PruneDataAgainstSchema(schema.Items, elem))
		}
		return out

	default:
		return data
	}
}
