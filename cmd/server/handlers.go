package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/formic-dev/formic"
)

// documentRequest is the body for the schema operation endpoints: the
// data document the operation runs against.
type documentRequest struct {
	Data any `json:"data"`
}

// handleSchemas handles GET /api/v1/schemas and GET /api/v1/schemas/{name}
// plus the POST operation endpoints under /api/v1/schemas/{name}/{op}.
func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	_, name, op, err := parsePath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid path: %v", err))
		return
	}

	if name == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{"schemas": s.registry.ListSchemas()})
		return
	}

	schema, err := s.registry.GetSchema(name)
	if err != nil {
		if formic.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if op == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeSuccess(w, http.StatusOK, schema)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req documentRequest
	if err := readJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json body: %v", err))
		return
	}

	start := time.Now()
	effective := formic.ResolveEffectiveSchema(schema, req.Data)

	switch op {
	case "resolve":
		writeSuccess(w, http.StatusOK, map[string]any{"effectiveSchema": effective})
	case "prune":
		writeSuccess(w, http.StatusOK, map[string]any{
			"data": formic.PruneDataAgainstSchema(effective, req.Data),
		})
	case "validate":
		// Validation runs on pruned data so stale branch values cannot
		// produce findings against fields the form no longer shows.
		pruned := formic.PruneDataAgainstSchema(effective, req.Data)
		errs := formic.Validate(effective, pruned, "")
		writeSuccess(w, http.StatusOK, map[string]any{
			"valid":  len(errs) == 0,
			"errors": errs,
		})
	case "graph":
		writeSuccess(w, http.StatusOK, formic.ProjectGraph(effective, req.Data))
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown operation: %s", op))
		return
	}

	s.logger.Debugw("schema operation served",
		"schema", name,
		"op", op,
		"duration", time.Since(start))
}

// snippetRequest is the body for creating or updating a snippet.
type snippetRequest struct {
	Name    string   `json:"name"`
	Tags    []string `json:"tags,omitempty"`
	Content string   `json:"content"`
}

// handleSnippets handles /api/v1/snippets and /api/v1/snippets/{id}
func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	_, idStr, op, err := parsePath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid path: %v", err))
		return
	}
	if op != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if idStr == "" {
		switch r.Method {
		case http.MethodGet:
			s.handleListSnippets(w, r)
		case http.MethodPost:
			s.handleCreateSnippet(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id, err := parseUUID(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid snippet id: %v", err))
		return
	}

	switch r.Method {
	case http.MethodGet:
		snippet, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, snippet)
	case http.MethodPut:
		var req snippetRequest
		if err := readJSONBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json body: %v", err))
			return
		}
		snippet, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if req.Name != "" {
			snippet.Name = req.Name
		}
		if req.Tags != nil {
			snippet.Tags = req.Tags
		}
		snippet.Content = req.Content
		if err := s.store.Save(r.Context(), snippet); err != nil {
			writeStoreError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, snippet)
	case http.MethodDelete:
		if err := s.store.Delete(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{"deleted": id.String()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	var (
		snippets []*formic.Snippet
		err      error
	)
	if tag := r.URL.Query().Get("tag"); tag != "" {
		snippets, err = s.store.ListByTag(r.Context(), tag)
	} else {
		snippets, err = s.store.List(r.Context())
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"snippets": snippets})
}

func (s *Server) handleCreateSnippet(w http.ResponseWriter, r *http.Request) {
	var req snippetRequest
	if err := readJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json body: %v", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	snippet := formic.NewSnippet(req.Name, req.Content, req.Tags...)
	if err := s.store.Save(r.Context(), snippet); err != nil {
		writeStoreError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, snippet)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if formic.IsNotFoundError(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
