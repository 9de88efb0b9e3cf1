package formic

// MergeSchemas layers an overlay (a then/else branch) onto a base node and
// returns the combined schema. The merge is not commutative: overlay's
// scalar members win wherever overlay sets them, while required is the set
// union and properties/items are combined structurally. Neither operand is
// mutated.
func MergeSchemas(base, overlay *SchemaField) *SchemaField {
	if base == nil && overlay == nil {
		return nil
	}
	if base == nil {
		return overlay.Clone()
	}
	if overlay == nil {
		return base.Clone()
	}

	out := base.Clone()

	if overlay.Type != "" {
		out.Type = overlay.Type
	}
	if overlay.Title != "" {
		out.Title = overlay.Title
	}
	if overlay.Description != "" {
		out.Description = overlay.Description
	}
	if len(overlay.Enum) > 0 {
		out.Enum = append([]any(nil), overlay.Enum...)
	}
	if len(overlay.OneOf) > 0 {
		out.OneOf = append([]OneOfOption(nil), overlay.OneOf...)
	}
	if overlay.Const != nil {
		out.Const = overlay.Const
	}
	if overlay.Order != nil {
		order := *overlay.Order
		out.Order = &order
	}
	if overlay.If != nil {
		out.If = overlay.If.Clone()
	}
	if overlay.Then != nil {
		out.Then = overlay.Then.Clone()
	}
	if overlay.Else != nil {
		out.Else = overlay.Else.Clone()
	}

	out.Required = unionRequired(base.Required, overlay.Required)

	// Either side being an object forces the result to be one; properties
	// union with recursive merges for names both sides declare.
	if base.Type == TypeObject || overlay.Type == TypeObject ||
		len(base.Properties) > 0 || len(overlay.Properties) > 0 {
		out.Type = TypeObject
		merged := make(map[string]*SchemaField, len(base.Properties)+len(overlay.Properties))
		for name, child := range base.Properties {
			merged[name] = child.Clone()
		}
		for name, child := range overlay.Properties {
			if existing, ok := merged[name]; ok {
				merged[name] = MergeSchemas(existing, child)
			} else {
				merged[name] = child.Clone()
			}
		}
		out.Properties = merged
	}

	// Arrays merge their item contracts; a side without items falls back
	// to the declaring side, which makes merge-with-self the identity.
	if (base.Type == TypeArray || overlay.Type == TypeArray ||
		base.Items != nil || overlay.Items != nil) &&
		(base.Items != nil || overlay.Items != nil) {
		out.Type = TypeArray
		left, right := base.Items, overlay.Items
		if left == nil {
			left = right
		}
		if right == nil {
			right = left
		}
		out.Items = MergeSchemas(left, right)
	}

	return out
}

// unionRequired appends overlay names not already present, keeping base
// order first. Duplicates collapse.
func unionRequired(base, overlay []string) []string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(base)+len(overlay))
	out := make([]string, 0, len(base)+len(overlay))
	for _, lists := range [][]string{base, overlay} {
		for _, name := range lists {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
