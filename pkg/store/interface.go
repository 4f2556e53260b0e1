// Package store defines the persistence layer abstraction for the content
// collection.
//
// The [Store] interface models the handful of document-database primitives
// the content manager needs: filtered finds, single-document inserts and
// replacements, single-document deletes, a bulk delete keyed by course, and
// one aggregate (distinct component names per course). Two implementations
// are provided: an in-memory store (tests, standalone mode) and a SurrealDB
// store speaking parameterized SurrealQL.
//
// Conventions, shared by all implementations:
//   - FindOne returns nil without error when nothing matches; callers use
//     the nil result, not an error, to detect missing documents.
//   - Find returns documents ordered by SortOrder ascending (ties broken by
//     creation time, then ID, so ordering is deterministic) and never
//     returns a nil slice for an empty result.
//   - Insert assigns the ID and timestamps when unset.
//   - Update is a full-document replacement keyed by ID.
//
// Multi-document invariants (sibling contiguity, enabled-plugin bookkeeping)
// are not the store's concern: each write is independently atomic and the
// content manager restores the cross-document invariants afterwards.
package store

import (
	"context"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
)

// Query is the filter object accepted by Find and FindOne. Nil / zero fields
// are not part of the filter; set fields are ANDed together.
type Query struct {
	ID        *models.ContentID
	NotID     *models.ContentID
	CourseID  *models.ContentID
	ParentID  *models.ContentID
	Type      models.ContentType
	Component string
}

// ByID returns a query matching a single document by id.
func ByID(id models.ContentID) Query {
	return Query{ID: &id}
}

// Store is the document-store surface consumed by the content manager.
type Store interface {
	// Find returns every document matching q, ordered by SortOrder
	// ascending. The result is never nil.
	Find(ctx context.Context, q Query) ([]*models.ContentNode, error)

	// FindOne returns the first document matching q, or nil when nothing
	// matches.
	FindOne(ctx context.Context, q Query) (*models.ContentNode, error)

	// Insert persists a new document. A zero ID is assigned; zero
	// timestamps are stamped.
	Insert(ctx context.Context, node *models.ContentNode) error

	// Update replaces the stored document with the same ID. It is an error
	// if no such document exists.
	Update(ctx context.Context, node *models.ContentNode) error

	// Delete removes the document with the given id. Deleting a missing
	// document is not an error: concurrent subtree deletions may race on
	// shared descendants.
	Delete(ctx context.Context, id models.ContentID) error

	// DeleteByCourse bulk-removes every document whose CourseID matches,
	// including the course document itself (a stamped course references its
	// own id).
	DeleteByCourse(ctx context.Context, courseID models.ContentID) error

	// ComponentNames returns the distinct component names among the
	// course's component-typed documents.
	ComponentNames(ctx context.Context, courseID models.ContentID) ([]string, error)

	// Migrate prepares store-level structures (indexes). Safe to run
	// repeatedly.
	Migrate(ctx context.Context) error

	Close() error
}
