package internal

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/formic-dev/formic"
)

// Session holds one live form: the declared schema, the current data, and
// the derived state (effective schema plus validation findings). Edits go
// through SetField; the derived state is recomputed after a quiet period
// so a burst of keystrokes costs one recompute, not one per key.
type Session struct {
	mu        sync.Mutex
	schema    *formic.JSONSchema
	data      map[string]any
	effective *formic.JSONSchema
	errors    map[string]string

	debounce time.Duration
	timer    *time.Timer
	logger   *zap.SugaredLogger
}

// SessionSnapshot is a point-in-time copy of the session's derived state.
type SessionSnapshot struct {
	Data      map[string]any     `json:"data"`
	Effective *formic.JSONSchema `json:"effectiveSchema"`
	Errors    map[string]string  `json:"errors"`
}

// NewSession creates a session for the given schema and recomputes once
// so the snapshot is meaningful before the first edit.
func NewSession(schema *formic.JSONSchema, debounce time.Duration) *Session {
	s := &Session{
		schema:   schema.Clone(),
		data:     make(map[string]any),
		debounce: debounce,
		logger:   zap.S().With("component", "session"),
	}
	s.mu.Lock()
	s.recomputeLocked()
	s.mu.Unlock()
	return s
}

// SetField writes a value at a dot path ("details.doors", "items.1.sku")
// and schedules a recompute. Numeric segments index into arrays, which
// are grown with nil padding as needed.
func (s *Session) SetField(path string, value any) error {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || segments[0] == "" {
		return fmt.Errorf("empty field path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := setValueAtPath(s.data, segments, value); err != nil {
		return err
	}
	s.scheduleLocked()
	return nil
}

// Flush recomputes the derived state immediately, cancelling any pending
// debounce. Tests and request handlers use it to get deterministic state.
func (s *Session) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.recomputeLocked()
}

// Snapshot returns copies of the current data, effective schema, and
// validation errors.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(map[string]string, len(s.errors))
	for path, msg := range s.errors {
		errs[path] = msg
	}
	data, _ := copyJSONValue(s.data).(map[string]any)
	return SessionSnapshot{
		Data:      data,
		Effective: s.effective.Clone(),
		Errors:    errs,
	}
}

// Close stops the debounce timer. A pending recompute is dropped, not run.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) scheduleLocked() {
	if s.debounce <= 0 {
		s.recomputeLocked()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.Flush)
}

// recomputeLocked runs the pipeline: resolve the effective schema against
// the current data, prune stale branches out of the data, then validate.
// The data snapshot is only replaced when pruning actually changed it.
func (s *Session) recomputeLocked() {
	start := time.Now()

	effective := formic.ResolveEffectiveSchema(s.schema, s.data)
	pruned, _ := formic.PruneDataAgainstSchema(effective, s.data).(map[string]any)
	if !reflect.DeepEqual(pruned, s.data) {
		s.data = pruned
	}
	s.effective = effective
	s.errors = formic.Validate(effective, s.data, "")

	s.logger.Debugw("session recomputed",
		"duration", time.Since(start),
		"error_count", len(s.errors))
}

func setValueAtPath(target map[string]any, segments []string, value any) error {
	segment := segments[0]
	if segment == "" {
		return fmt.Errorf("empty path segment")
	}
	if _, err := strconv.Atoi(segment); err == nil {
		return fmt.Errorf("path cannot start with an index: %s", segment)
	}

	rest := segments[1:]
	if len(rest) == 0 {
		target[segment] = value
		return nil
	}

	// An index after a name means the field is an array.
	if idx, err := strconv.Atoi(rest[0]); err == nil {
		arr, _ := target[segment].([]any)
		arr, err := setArrayValue(arr, idx, rest[1:], value)
		if err != nil {
			return err
		}
		target[segment] = arr
		return nil
	}

	next, ok := target[segment].(map[string]any)
	if !ok || next == nil {
		next = make(map[string]any)
		target[segment] = next
	}
	return setValueAtPath(next, rest, value)
}

func setArrayValue(arr []any, idx int, rest []string, value any) ([]any, error) {
	if idx < 0 {
		return nil, fmt.Errorf("negative array index: %d", idx)
	}
	for len(arr) <= idx {
		arr = append(arr, nil)
	}
	if len(rest) == 0 {
		arr[idx] = value
		return arr, nil
	}

	element, ok := arr[idx].(map[string]any)
	if !ok || element == nil {
		element = make(map[string]any)
		arr[idx] = element
	}
	if err := setValueAtPath(element, rest, value); err != nil {
		return nil, err
	}
	return arr, nil
}

// copyJSONValue deep-copies the JSON value shapes the session handles.
func copyJSONValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, member := range v {
			out[key] = copyJSONValue(member)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, member := range v {
			out[i] = copyJSONValue(member)
		}
		return out
	default:
		return value
	}
}
