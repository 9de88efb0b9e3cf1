package main

import (
	"context"
	"fmt"

	"github.com/formic-dev/formic"
	"github.com/formic-dev/formic/internal"
)

// createSchemaRegistry builds the schema source the config asks for: an
// S3 bucket when configured, otherwise a local directory.
func createSchemaRegistry(ctx context.Context, cfg formic.SchemaConfig) (formic.SchemaRegistry, error) {
	if cfg.S3Bucket != "" {
		return internal.NewS3SchemaRegistry(ctx, cfg)
	}
	return internal.NewFileSchemaRegistry(cfg.Directory)
}

// createSnippetStore builds the snippet backend the config asks for.
func createSnippetStore(ctx context.Context, cfg formic.SnippetStoreConfig) (formic.SnippetStore, error) {
	switch cfg.Backend {
	case formic.SnippetBackendMemory:
		return internal.NewMemorySnippetStore(), nil
	case formic.SnippetBackendDuckDB:
		return internal.NewDuckDBSnippetStore(cfg.DuckDB)
	case formic.SnippetBackendPostgres:
		return internal.NewPostgresSnippetStore(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown snippet backend: %s", cfg.Backend)
	}
}
