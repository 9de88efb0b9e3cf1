package formic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectGraph_SingleEntity(t *testing.T) {
	schema := &JSONSchema{
		Type:     TypeObject,
		Title:    "Person",
		Required: []string{"name"},
		Properties: map[string]*SchemaField{
			"name": {Type: TypeString},
			"age":  {Type: TypeInteger},
		},
	}

	g := ProjectGraph(schema, map[string]any{"name": "Ada"})

	require.Len(t, g.Entities, 1)
	assert.Empty(t, g.Relations)

	e := g.Entities[0]
	assert.Equal(t, "root", e.ID)
	assert.Equal(t, "Person", e.Title)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, EntityField{Name: "age", Type: TypeInteger}, e.Fields[0])
	assert.Equal(t, EntityField{Name: "name", Type: TypeString, Required: true, Value: "Ada"}, e.Fields[1])
}

func TestProjectGraph_NestedObjectRelation(t *testing.T) {
	schema := &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*SchemaField{
			"details": {
				Type:  TypeObject,
				Title: "Details",
				Properties: map[string]*SchemaField{
					"doors": {Type: TypeInteger},
				},
			},
		},
	}

	g := ProjectGraph(schema, map[string]any{
		"details": map[string]any{"doors": float64(4)},
	})

	require.Len(t, g.Entities, 2)
	// Parent before child.
	assert.Equal(t, "root", g.Entities[0].ID)
	assert.Equal(t, "root.details", g.Entities[1].ID)
	assert.Equal(t, "Details", g.Entities[1].Title)
	assert.Equal(t, float64(4), g.Entities[1].Fields[0].Value)

	require.Len(t, g.Relations, 1)
	assert.Equal(t, Relation{From: "root", To: "root.details", Name: "details", Kind: RelationSingle}, g.Relations[0])
}

func TestProjectGraph_ArrayOfObjects(t *testing.T) {
	schema := &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*SchemaField{
			"lines": {
				Type: TypeArray,
				Items: &SchemaField{
					Type: TypeObject,
					Properties: map[string]*SchemaField{
						"sku": {Type: TypeString},
					},
				},
			},
			"tags": {
				Type:  TypeArray,
				Items: &SchemaField{Type: TypeString},
			},
		},
	}

	g := ProjectGraph(schema, map[string]any{
		"lines": []any{map[string]any{"sku": "A-1"}, map[string]any{"sku": "B-2"}},
		"tags":  []any{"x"},
	})

	require.Len(t, g.Entities, 2)
	require.Len(t, g.Relations, 1)
	assert.Equal(t, RelationArray, g.Relations[0].Kind)
	assert.Equal(t, "root.lines", g.Relations[0].To)

	// The items entity reflects the first element's data.
	assert.Equal(t, "A-1", g.Entities[1].Fields[0].Value)

	// A primitive array stays a field on the parent.
	root := g.Entities[0]
	require.Len(t, root.Fields, 1)
	assert.Equal(t, "tags", root.Fields[0].Name)
	assert.Equal(t, TypeArray, root.Fields[0].Type)
}

func TestProjectGraph_UntitledEntityFallsBackToPath(t *testing.T) {
	schema := &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*SchemaField{
			"inner": {Type: TypeObject, Properties: map[string]*SchemaField{"x": {Type: TypeString}}},
		},
	}

	g := ProjectGraph(schema, nil)
	assert.Equal(t, "root.inner", g.Entities[1].Title)
}

func TestProjectGraph_NilSchema(t *testing.T) {
	g := ProjectGraph(nil, nil)
	assert.Empty(t, g.Entities)
	assert.Empty(t, g.Relations)
}
