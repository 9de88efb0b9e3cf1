package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/formic-dev/formic"
)

// Server represents the HTTP server over the schema engine and the
// snippet store.
type Server struct {
	registry formic.SchemaRegistry
	store    formic.SnippetStore
	mux      *http.ServeMux
	logger   *zap.SugaredLogger
}

// NewServer creates a new Server instance
func NewServer(registry formic.SchemaRegistry, store formic.SnippetStore) *Server {
	return &Server{
		registry: registry,
		store:    store,
		mux:      http.NewServeMux(),
		logger:   zap.S().With("component", "server"),
	}
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("/api/v1/schemas", s.handleSchemas)
	s.mux.HandleFunc("/api/v1/schemas/", s.handleSchemas)
	s.mux.HandleFunc("/api/v1/snippets", s.handleSnippets)
	s.mux.HandleFunc("/api/v1/snippets/", s.handleSnippets)
}

// Start starts the HTTP server on the given config
func (s *Server) Start(cfg formic.ServerConfig) error {
	zap.S().Infow("starting server", "port", cfg.Port)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return srv.ListenAndServe()
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	config := loadConfigFromEnv()
	if err := config.Validate(); err != nil {
		sugar.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	registry, err := createSchemaRegistry(ctx, config.Schema)
	if err != nil {
		sugar.Fatalf("failed to create schema registry: %v", err)
	}
	sugar.Infow("schema registry ready", "schemas", registry.ListSchemas())

	store, err := createSnippetStore(ctx, config.Snippets)
	if err != nil {
		sugar.Fatalf("failed to create snippet store: %v", err)
	}
	defer store.Close()
	sugar.Infow("snippet store ready", "backend", config.Snippets.Backend)

	server := NewServer(registry, store)
	server.RegisterRoutes()

	if err := server.Start(config.Server); err != nil {
		sugar.Fatalf("server error: %v", err)
	}
}

// loadConfigFromEnv layers environment overrides over the defaults.
func loadConfigFromEnv() *formic.Config {
	config := formic.DefaultConfig()

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Schema.Directory = getEnv("SCHEMA_DIR", config.Schema.Directory)
	config.Schema.S3Bucket = getEnv("SCHEMA_S3_BUCKET", config.Schema.S3Bucket)
	config.Schema.S3Prefix = getEnv("SCHEMA_S3_PREFIX", config.Schema.S3Prefix)
	config.Schema.S3Region = getEnv("SCHEMA_S3_REGION", config.Schema.S3Region)

	config.Snippets.Backend = formic.SnippetBackend(getEnv("SNIPPET_BACKEND", string(config.Snippets.Backend)))
	config.Snippets.DuckDB.Path = getEnv("DUCKDB_PATH", config.Snippets.DuckDB.Path)

	pg := &config.Snippets.Postgres
	pg.Host = getEnv("DB_HOST", pg.Host)
	pg.Port = getEnvInt("DB_PORT", pg.Port)
	pg.Database = getEnv("DB_NAME", pg.Database)
	pg.Username = getEnv("DB_USER", pg.Username)
	pg.Password = getEnv("DB_PASSWORD", pg.Password)
	pg.SSLMode = getEnv("DB_SSL_MODE", pg.SSLMode)
	pg.UseIAM = getEnv("DB_USE_IAM", "") != ""
	pg.Table = getEnv("SNIPPET_TABLE", pg.Table)
	pg.MaxConnections = getEnvInt("DB_MAX_CONNECTIONS", pg.MaxConnections)
	pg.MinConnections = getEnvInt("DB_MIN_CONNECTIONS", pg.MinConnections)

	config.Session.Debounce = time.Duration(getEnvInt("SESSION_DEBOUNCE_MS", int(config.Session.Debounce/time.Millisecond))) * time.Millisecond

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
