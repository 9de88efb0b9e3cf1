package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/formic-dev/formic"
	"github.com/google/jsonschema-go/jsonschema"
)

// fileSchemaRegistry is a SchemaRegistry implementation that loads schema
// documents from JSON files on disk. The whole directory is read once at
// construction time; lookups never touch the filesystem again.
type fileSchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*formic.JSONSchema
}

// NewFileSchemaRegistry creates a schema registry that scans a directory
// for *.json documents. The file name minus the extension becomes the
// schema name (e.g. "order.json" registers "order").
func NewFileSchemaRegistry(schemaDir string) (formic.SchemaRegistry, error) {
	entries, err := os.ReadDir(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	documents := make(map[string][]byte)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(schemaDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", name, err)
		}
		documents[strings.TrimSuffix(name, ".json")] = data
	}

	return NewSchemaRegistryFromDocuments(documents)
}

// NewSchemaRegistryFromDocuments builds a registry from raw schema
// documents keyed by name. Every document must pass the structural sanity
// check and parse; a single bad document fails construction.
func NewSchemaRegistryFromDocuments(documents map[string][]byte) (formic.SchemaRegistry, error) {
	if len(documents) == 0 {
		return nil, formic.NewFormicError(formic.ErrorTypeConfig, formic.ErrCodeSourceUnavailable, "no schema documents found")
	}

	registry := &fileSchemaRegistry{
		schemas: make(map[string]*formic.JSONSchema, len(documents)),
	}
	for name, data := range documents {
		schema, err := loadSchemaDocument(name, data)
		if err != nil {
			return nil, err
		}
		registry.schemas[name] = schema
	}
	return registry, nil
}

// loadSchemaDocument sanity-checks a raw document and parses it into the
// internal schema shape.
func loadSchemaDocument(name string, data []byte) (*formic.JSONSchema, error) {
	if err := checkSchemaDocument(data); err != nil {
		return nil, formic.NewSchemaInvalidError(name, err)
	}
	schema, err := formic.ParseSchema(data)
	if err != nil {
		return nil, formic.NewSchemaInvalidError(name, err)
	}
	return schema, nil
}

// checkSchemaDocument round-trips the document through jsonschema.Schema
// and resolves it, catching structurally broken documents (bad types,
// malformed conditionals) before they reach the resolver. The $order
// rendering hint is not a schema keyword and is stripped first.
func checkSchemaDocument(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal schema document: %w", err)
	}
	stripOrderHints(raw)

	schemaBytes, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal schema for validation: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return fmt.Errorf("failed to unmarshal into jsonschema.Schema: %w", err)
	}
	if _, err := schema.Resolve(&jsonschema.ResolveOptions{}); err != nil {
		return fmt.Errorf("failed to resolve JSON schema: %w", err)
	}
	return nil
}

func stripOrderHints(node any) {
	switch n := node.(type) {
	case map[string]any:
		delete(n, "$order")
		for _, child := range n {
			stripOrderHints(child)
		}
	case []any:
		for _, child := range n {
			stripOrderHints(child)
		}
	}
}

// GetSchema returns the declared schema document by name. The returned
// schema is a copy to prevent external mutations.
func (r *fileSchemaRegistry) GetSchema(name string) (*formic.JSONSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[name]
	if !exists {
		return nil, formic.NewSchemaNotFoundError(name)
	}
	return schema.Clone(), nil
}

// ListSchemas returns a list of all registered schema names.
func (r *fileSchemaRegistry) ListSchemas() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
