package content

import (
	"errors"

	"github.com/taylortom/adapt-authoring-content/pkg/schema"
)

var (
	// ErrNotFound mirrors schema.ErrNotFound so callers can check either
	// package's sentinel.
	ErrNotFound = schema.ErrNotFound

	// ErrInvalidParent is returned when a parent reference is missing,
	// points at a nonexistent document, or violates the type hierarchy.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrNoMatchingDocument is returned when an update or delete query
	// matches nothing.
	ErrNoMatchingDocument = errors.New("no matching document")
)
