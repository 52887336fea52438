package articles

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMalformedInput means the request body is not a JSON object.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalid means the body parsed but a field is missing, unknown,
	// not writable, or fails its rule.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound means no article matched the key. The public slug lookup
	// also returns it for unpublished articles.
	ErrNotFound = errors.New("article not found")
	// ErrConflict means the slug is already taken.
	ErrConflict = errors.New("slug already exists")
	// ErrStoreFailure wraps every other storage error.
	ErrStoreFailure = errors.New("store failure")
)

// ValidationError lists failing fields by JSON name, with the failing rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+e.Fields[k])
	}
	return fmt.Sprintf("invalid input: %s", strings.Join(parts, ", "))
}

// Is makes errors.Is(err, ErrInvalid) hold for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e *ValidationError) add(field, rule string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = rule
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
