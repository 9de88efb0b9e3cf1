package formic

import "time"

// Config consolidates settings for the server, schema sources, the
// snippet store, and the session pipeline.
type Config struct {
	Server   ServerConfig       `json:"server"`
	Schema   SchemaConfig       `json:"schema"`
	Snippets SnippetStoreConfig `json:"snippets"`
	Session  SessionConfig      `json:"session"`
	Logging  LoggingConfig      `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout"`
}

// SchemaConfig describes where schema documents come from. Directory is
// the default source; when S3Bucket is set, documents are fetched from
// object storage instead.
type SchemaConfig struct {
	Directory string `json:"directory"`
	S3Bucket  string `json:"s3Bucket"`
	S3Prefix  string `json:"s3Prefix"`
	S3Region  string `json:"s3Region"`
}

// SnippetBackend selects the snippet store implementation.
type SnippetBackend string

const (
	SnippetBackendMemory   SnippetBackend = "memory"
	SnippetBackendDuckDB   SnippetBackend = "duckdb"
	SnippetBackendPostgres SnippetBackend = "postgres"
)

// SnippetStoreConfig contains snippet persistence settings
type SnippetStoreConfig struct {
	Backend  SnippetBackend `json:"backend"`
	DuckDB   DuckDBConfig   `json:"duckdb"`
	Postgres PostgresConfig `json:"postgres"`
}

// DuckDBConfig contains settings for the embedded DuckDB store. An empty
// Path opens an in-memory database.
type DuckDBConfig struct {
	Path         string        `json:"path"`
	QueryTimeout time.Duration `json:"queryTimeout"`
}

// PostgresConfig contains settings for the shared Postgres store. UseIAM
// switches password auth to a generated DSQL connect token.
type PostgresConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	UseIAM          bool          `json:"useIAM"`
	Table           string        `json:"table"`
	MaxConnections  int           `json:"maxConnections"`
	MinConnections  int           `json:"minConnections"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
}

// SessionConfig contains the recompute pipeline settings. Debounce is the
// quiet period after an edit before resolve/prune/validate reruns.
type SessionConfig struct {
	Debounce time.Duration `json:"debounce"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Schema: SchemaConfig{
			Directory: "schemas",
		},
		Snippets: SnippetStoreConfig{
			Backend: SnippetBackendMemory,
			DuckDB: DuckDBConfig{
				QueryTimeout: 30 * time.Second,
			},
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				SSLMode:         "disable",
				Table:           "snippets",
				MaxConnections:  10,
				MinConnections:  2,
				ConnMaxLifetime: 5 * time.Minute,
				ConnMaxIdleTime: 5 * time.Minute,
				Timeout:         30 * time.Second,
			},
		},
		Session: SessionConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return &ConfigError{Field: "server.port", Message: "must not be empty"}
	}
	switch c.Snippets.Backend {
	case SnippetBackendMemory, SnippetBackendDuckDB, SnippetBackendPostgres:
	default:
		return &ConfigError{Field: "snippets.backend", Message: "must be one of memory, duckdb, postgres"}
	}
	if c.Snippets.Backend == SnippetBackendPostgres {
		if c.Snippets.Postgres.MaxConnections <= 0 {
			return &ConfigError{Field: "snippets.postgres.maxConnections", Message: "must be greater than 0"}
		}
		if c.Snippets.Postgres.Table == "" {
			return &ConfigError{Field: "snippets.postgres.table", Message: "must not be empty"}
		}
	}
	if c.Snippets.Backend == SnippetBackendDuckDB && c.Snippets.DuckDB.QueryTimeout <= 0 {
		return &ConfigError{Field: "snippets.duckdb.queryTimeout", Message: "must be greater than 0"}
	}
	if c.Schema.Directory == "" && c.Schema.S3Bucket == "" {
		return &ConfigError{Field: "schema.directory", Message: "a directory or an S3 bucket is required"}
	}
	if c.Session.Debounce < 0 {
		return &ConfigError{Field: "session.debounce", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
