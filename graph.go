package formic

// RelationKind classifies how one entity refers to another.
type RelationKind string

const (
	RelationSingle RelationKind = "single"
	RelationArray  RelationKind = "array"
)

// EntityField is one leaf attribute of a projected entity, carrying the
// current data value so a diagram can annotate live state.
type EntityField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    any    `json:"value,omitempty"`
}

// Entity is one object node of the schema, identified by its path.
type Entity struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Fields []EntityField `json:"fields"`
}

// Relation is an edge between a parent entity and a nested one.
type Relation struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Name string       `json:"name"`
	Kind RelationKind `json:"kind"`
}

// Graph is the entity-relation projection of a schema+data pair. Layout
// and rendering belong to the consumer.
type Graph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// ProjectGraph projects an effective schema and its data snapshot into
// entities and relations: every object node becomes an entity; an
// object-valued property becomes a single relation; an array of objects
// becomes an array relation, with the items entity projected against the
// first element (the same convention the resolver uses). Pure.
func ProjectGraph(schema *JSONSchema, data any) *Graph {
	g := &Graph{}
	if schema != nil {
		projectEntity(schema, data, "root", g)
	}
	return g
}

func projectEntity(node *SchemaField, data any, id string, g *Graph) {
	// Parents come before their children in the entity list.
	idx := len(g.Entities)
	g.Entities = append(g.Entities, Entity{ID: id, Title: entityTitle(node, id)})

	var fields []EntityField
	obj, _ := data.(map[string]any)

	required := make(map[string]struct{}, len(node.Required))
	for _, name := range node.Required {
		required[name] = struct{}{}
	}

	for _, name := range OrderedPropertyNames(node) {
		child := node.Properties[name]
		var value any
		if obj != nil {
			value = obj[name]
		}
		_, isRequired := required[name]

		switch child.Kind() {
		case TypeObject:
			childID := joinPath(id, name)
			g.Relations = append(g.Relations, Relation{
				From: id, To: childID, Name: name, Kind: RelationSingle,
			})
			projectEntity(child, value, childID, g)

		case TypeArray:
			if child.Items != nil && child.Items.Kind() == TypeObject {
				childID := joinPath(id, name)
				g.Relations = append(g.Relations, Relation{
					From: id, To: childID, Name: name, Kind: RelationArray,
				})
				var first any
				if arr, ok := value.([]any); ok && len(arr) > 0 {
					first = arr[0]
				}
				projectEntity(child.Items, first, childID, g)
				continue
			}
			fields = append(fields, EntityField{
				Name: name, Type: TypeArray, Required: isRequired, Value: value,
			})

		default:
			fieldType := child.Kind()
			if fieldType == "" {
				fieldType = TypeString
			}
			fields = append(fields, EntityField{
				Name: name, Type: fieldType, Required: isRequired, Value: value,
			})
		}
	}

	g.Entities[idx].Fields = fields
}

func entityTitle(node *SchemaField, id string) string {
	if node.Title != "" {
		return node.Title
	}
	return id
}
