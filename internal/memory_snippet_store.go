package internal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formic-dev/formic"
)

// memorySnippetStore keeps snippets in a map. It is the default backend
// and the one the tests lean on; nothing survives a restart.
type memorySnippetStore struct {
	mu       sync.RWMutex
	snippets map[uuid.UUID]*formic.Snippet
}

// NewMemorySnippetStore creates an empty in-memory snippet store.
func NewMemorySnippetStore() formic.SnippetStore {
	return &memorySnippetStore{
		snippets: make(map[uuid.UUID]*formic.Snippet),
	}
}

// Save inserts or replaces a snippet. UpdatedAt is bumped on replace.
func (s *memorySnippetStore) Save(ctx context.Context, snippet *formic.Snippet) error {
	if err := ctx.Err(); err != nil {
		return formic.NewStorageError("save snippet", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copySnippet(snippet)
	if _, exists := s.snippets[snippet.ID]; exists {
		stored.UpdatedAt = time.Now().UTC()
	}
	s.snippets[snippet.ID] = stored
	return nil
}

func (s *memorySnippetStore) Get(ctx context.Context, id uuid.UUID) (*formic.Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, formic.NewStorageError("get snippet", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snippet, exists := s.snippets[id]
	if !exists {
		return nil, formic.NewSnippetNotFoundError(id.String())
	}
	return copySnippet(snippet), nil
}

// List returns all snippets, newest first.
func (s *memorySnippetStore) List(ctx context.Context) ([]*formic.Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, formic.NewStorageError("list snippets", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*formic.Snippet, 0, len(s.snippets))
	for _, snippet := range s.snippets {
		result = append(result, copySnippet(snippet))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memorySnippetStore) ListByTag(ctx context.Context, tag string) ([]*formic.Snippet, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*formic.Snippet, 0, len(all))
	for _, snippet := range all {
		for _, t := range snippet.Tags {
			if t == tag {
				result = append(result, snippet)
				break
			}
		}
	}
	return result, nil
}

func (s *memorySnippetStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return formic.NewStorageError("delete snippet", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snippets[id]; !exists {
		return formic.NewSnippetNotFoundError(id.String())
	}
	delete(s.snippets, id)
	return nil
}

func (s *memorySnippetStore) Close() error {
	return nil
}

// copySnippet returns a copy to prevent external mutations.
func copySnippet(snippet *formic.Snippet) *formic.Snippet {
	out := *snippet
	if snippet.Tags != nil {
		out.Tags = append([]string(nil), snippet.Tags...)
	}
	return &out
}
