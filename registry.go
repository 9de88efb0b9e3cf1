package formic

// SchemaRegistry provides schema lookup operations.
// Implementations can load schemas from directories, object storage, or
// hand-built fixtures; parse failures belong to the implementation and
// are reported when the registry is constructed, not at lookup time.
type SchemaRegistry interface {
	// GetSchema returns the declared (unresolved) schema document by name.
	GetSchema(name string) (*JSONSchema, error)
	// ListSchemas returns all registered schema names, sorted.
	ListSchemas() []string
}
