package formic

// ResolveEffectiveSchema applies every currently-applicable if/then/else
// branch of root against the data snapshot and returns the schema that
// should govern validation, pruning, and rendering right now. Conditionals
// are consumed at each visited node: the matcher runs against that node's
// own data value, the winning branch (then on match, else otherwise) is
// merged in, and the result carries no if/then/else at resolved levels.
// Branches of the losing side are never visited.
//
// Array nodes resolve their items contract once, against the first
// element's value; arrays are homogeneous by contract, so every element
// shares the one resolved schema.
//
// The function is pure: neither root nor data is mutated.
func ResolveEffectiveSchema(root *JSONSchema, data any) *JSONSchema {
	return resolveNode(root, data)
}

func resolveNode(node *SchemaField, data any) *SchemaField {
	if node == nil {
		return nil
	}
	out := node.Clone()

	// A winning branch may itself carry node-level conditionals; keep
	// resolving until none remain. Schema trees are finite, so this
	// terminates.
	for out.If != nil {
		cond, then, els := out.If, out.Then, out.Else
		out.If, out.Then, out.Else = nil, nil, nil
		if then == nil && els == nil {
			break
		}
		branch := els
		if IsValidAgainst(cond, data) {
			branch = then
		}
		if branch != nil {
			out = MergeSchemas(out, branch)
		}
	}

	obj, _ := data.(map[string]any)
	for name, child := range out.Properties {
		var childData any
		if obj != nil {
			childData = obj[name]
		}
		out.Properties[name] = resolveNode(child, childData)
	}

	if out.Items != nil {
		var first any
		if arr, ok := data.([]any); ok && len(arr) > 0 {
			first = arr[0]
		}
		out.Items = resolveNode(out.Items, first)
	}

	return out
}
