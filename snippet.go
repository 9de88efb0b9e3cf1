package formic

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snippet is a saved editor buffer: raw JSON text plus bookkeeping. The
// content is deliberately kept unparsed — a snippet may hold a schema, a
// data document, or work-in-progress text that does not parse yet.
type Snippet struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnippet creates a snippet with a fresh time-ordered ID.
func NewSnippet(name, content string, tags ...string) *Snippet {
	now := time.Now().UTC()
	return &Snippet{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Tags:      tags,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SnippetStore persists snippets. Implementations live in internal/:
// an in-memory map, an embedded DuckDB file, and a shared Postgres table.
// Get and Delete return a not-found FormicError for unknown IDs.
type SnippetStore interface {
	Save(ctx context.Context, snippet *Snippet) error
	Get(ctx context.Context, id uuid.UUID) (*Snippet, error)
	List(ctx context.Context) ([]*Snippet, error)
	ListByTag(ctx context.Context, tag string) ([]*Snippet, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
