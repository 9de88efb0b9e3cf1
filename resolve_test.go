package formic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliverySchema is the order form used across resolver and pruner tests:
// choosing delivery requires an address, choosing pickup a pickup code.
func deliverySchema() *JSONSchema {
	return &JSONSchema{
		Type:     TypeObject,
		Required: []string{"method"},
		Properties: map[string]*SchemaField{
			"method": {Type: TypeString, Enum: []any{"delivery", "pickup"}},
		},
		If: &SchemaField{
			Properties: map[string]*SchemaField{
				"method": {Const: "delivery"},
			},
		},
		Then: &SchemaField{
			Required: []string{"address"},
			Properties: map[string]*SchemaField{
				"address": {Type: TypeString},
			},
		},
		Else: &SchemaField{
			Required: []string{"pickupCode"},
			Properties: map[string]*SchemaField{
				"pickupCode": {Type: TypeString},
			},
		},
	}
}

func TestResolveEffectiveSchema_BranchSelection(t *testing.T) {
	schema := deliverySchema()

	resolved := ResolveEffectiveSchema(schema, map[string]any{"method": "delivery"})
	assert.Contains(t, resolved.Required, "address")
	assert.NotContains(t, resolved.Required, "pickupCode")
	require.Contains(t, resolved.Properties, "address")
	assert.Nil(t, resolved.If)
	assert.Nil(t, resolved.Then)
	assert.Nil(t, resolved.Else)

	resolved = ResolveEffectiveSchema(schema, map[string]any{"method": "pickup"})
	assert.Contains(t, resolved.Required, "pickupCode")
	assert.NotContains(t, resolved.Required, "address")
	assert.NotContains(t, resolved.Properties, "address")
}

func TestResolveEffectiveSchema_MissingBranchSide(t *testing.T) {
	schema := deliverySchema()
	schema.Else = nil

	// No else branch: a non-matching document keeps the declared shape,
	// with the conditional consumed.
	resolved := ResolveEffectiveSchema(schema, map[string]any{"method": "pickup"})
	assert.Equal(t, []string{"method"}, resolved.Required)
	assert.Nil(t, resolved.If)
}

func TestResolveEffectiveSchema_NestedConditional(t *testing.T) {
	schema := &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*SchemaField{
			"payment": {
				Type: TypeObject,
				Properties: map[string]*SchemaField{
					"kind": {Type: TypeString},
				},
				If: &SchemaField{
					Properties: map[string]*SchemaField{"kind": {Const: "card"}},
				},
				Then: &SchemaField{
					Required:   []string{"number"},
					Properties: map[string]*SchemaField{"number": {Type: TypeString}},
				},
			},
		},
	}

	// The nested matcher runs against the node's own value, not the root.
	resolved := ResolveEffectiveSchema(schema, map[string]any{
		"payment": map[string]any{"kind": "card"},
	})
	payment := resolved.Properties["payment"]
	require.NotNil(t, payment)
	assert.Contains(t, payment.Required, "number")

	resolved = ResolveEffectiveSchema(schema, map[string]any{
		"payment": map[string]any{"kind": "cash"},
	})
	assert.NotContains(t, resolved.Properties["payment"].Required, "number")
}

func TestResolveEffectiveSchema_ArrayFirstElement(t *testing.T) {
	schema := &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*SchemaField{
			"lines": {
				Type: TypeArray,
				Items: &SchemaField{
					Type: TypeObject,
					Properties: map[string]*SchemaField{
						"kind": {Type: TypeString},
					},
					If: &SchemaField{
						Properties: map[string]*SchemaField{"kind": {Const: "bundle"}},
					},
					Then: &SchemaField{
						Required: []string{"count"},
					},
				},
			},
		},
	}

	// Items resolve once, against the first element only.
	resolved := ResolveEffectiveSchema(schema, map[string]any{
		"lines": []any{
			map[string]any{"kind": "bundle"},
			map[string]any{"kind": "single"},
		},
	})
	items := resolved.Properties["lines"].Items
	require.NotNil(t, items)
	assert.Contains(t, items.Required, "count")

	// Empty array: items resolved against no value.
	resolved = ResolveEffectiveSchema(schema, map[string]any{"lines": []any{}})
	assert.NotContains(t, resolved.Properties["lines"].Items.Required, "count")
}

func TestResolveEffectiveSchema_ChainedConditional(t *testing.T) {
	// A winning branch that carries its own conditional is resolved in
	// the same pass.
	schema := &JSONSchema{
		Type: TypeObject,
		If: &SchemaField{
			Properties: map[string]*SchemaField{"tier": {Const: "pro"}},
		},
		Then: &SchemaField{
			Required: []string{"seats"},
			If: &SchemaField{
				Properties: map[string]*SchemaField{"billing": {Const: "invoice"}},
			},
			Then: &SchemaField{
				Required: []string{"poNumber"},
			},
		},
	}

	resolved := ResolveEffectiveSchema(schema, map[string]any{
		"tier":    "pro",
		"billing": "invoice",
	})
	assert.Contains(t, resolved.Required, "seats")
	assert.Contains(t, resolved.Required, "poNumber")
	assert.Nil(t, resolved.If)

	resolved = ResolveEffectiveSchema(schema, map[string]any{"tier": "pro"})
	assert.Contains(t, resolved.Required, "seats")
	assert.NotContains(t, resolved.Required, "poNumber")
}

func TestResolveEffectiveSchema_PureInputs(t *testing.T) {
	schema := deliverySchema()
	data := map[string]any{"method": "delivery"}

	_ = ResolveEffectiveSchema(schema, data)

	// Inputs are untouched: the conditional is still declared and the
	// data still has exactly one key.
	require.NotNil(t, schema.If)
	require.NotNil(t, schema.Then)
	assert.Len(t, schema.Properties, 1)
	assert.Len(t, data, 1)
}
