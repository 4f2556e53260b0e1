package content

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// Delete removes the first document matching q together with all of its
// descendants. It returns the flattened list of removed documents, which is
// also handed to the delete hook exactly once per call.
//
// Deleting a course short-circuits the recursion: every document stamped
// with the course's id is removed in one bulk operation.
func (m *Manager) Delete(ctx context.Context, q store.Query) ([]*models.ContentNode, error) {
	node, err := m.store.FindOne(ctx, q)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, ErrNoMatchingDocument
	}
	// a config belongs to its course and only leaves with it
	if node.Type == models.ContentTypeConfig {
		return nil, fmt.Errorf("%w: config is removed with its course", ErrInvalidParent)
	}

	var deleted []*models.ContentNode
	if node.Type == models.ContentTypeCourse {
		deleted, err = m.deleteCourse(ctx, node)
	} else {
		deleted, err = m.deleteSubtree(ctx, node)
	}
	if err != nil {
		return nil, err
	}

	if node.ParentID != nil {
		if err := m.reorderSiblings(ctx, *node.ParentID, nil, node.ID.Ref()); err != nil {
			return nil, err
		}
	}
	// removing a subtree may have removed the last usage of a component
	// plugin anywhere inside it
	if node.Type != models.ContentTypeCourse && containsComponent(deleted) {
		if err := m.reconcileForNode(ctx, node, false); err != nil {
			return nil, err
		}
	}

	if m.onDelete != nil {
		m.onDelete(ctx, deleted)
	}
	m.metrics.MutationObserved("delete", node.Type)
	m.log.Info().
		Stringer("id", node.ID).
		Str("type", string(node.Type)).
		Int("documents", len(deleted)).
		Msg("content deleted")
	return deleted, nil
}

func (m *Manager) deleteCourse(ctx context.Context, course *models.ContentNode) ([]*models.ContentNode, error) {
	docs, err := m.store.Find(ctx, store.Query{CourseID: course.ID.Ref()})
	if err != nil {
		return nil, err
	}
	if err := m.store.DeleteByCourse(ctx, course.ID); err != nil {
		return nil, err
	}
	// an unstamped course cannot appear in its own scope query
	if !containsID(docs, course.ID) {
		if err := m.store.Delete(ctx, course.ID); err != nil {
			return nil, err
		}
		docs = append(docs, course)
	}
	return docs, nil
}

// deleteSubtree removes node and its descendants depth-first, fanning out
// across siblings. All branches run to completion before the first error is
// reported.
func (m *Manager) deleteSubtree(ctx context.Context, node *models.ContentNode) ([]*models.ContentNode, error) {
	children, err := m.store.Find(ctx, store.Query{ParentID: node.ID.Ref()})
	if err != nil {
		return nil, err
	}

	deleted := []*models.ContentNode{node}
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, child := range children {
		child := child
		g.Go(func() error {
			docs, err := m.deleteSubtree(ctx, child)
			if err != nil {
				return err
			}
			mu.Lock()
			deleted = append(deleted, docs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := m.store.Delete(ctx, node.ID); err != nil {
		return nil, err
	}
	return deleted, nil
}

func containsComponent(docs []*models.ContentNode) bool {
	for _, d := range docs {
		if d.Type == models.ContentTypeComponent {
			return true
		}
	}
	return false
}

func containsID(docs []*models.ContentNode, id models.ContentID) bool {
	for _, d := range docs {
		if d.ID == id {
			return true
		}
	}
	return false
}
