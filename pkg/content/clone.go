package content

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// Clone deep-copies the document sourceID and its whole subtree.
//
// The root copy is attached to parentID (defaulting to the source's own
// parent) and appended after the existing siblings; overrides are merged
// into the root copy's properties only. Descendant copies keep their
// relative order. Cloning a course produces a new course with its config
// re-pointed at it.
func (m *Manager) Clone(ctx context.Context, createdBy models.UserID, sourceID models.ContentID, parentID *models.ContentID, overrides models.JSONMap) (*models.ContentNode, error) {
	original, err := m.store.FindOne(ctx, store.ByID(sourceID))
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sourceID)
	}

	var root *models.ContentNode
	if original.Type == models.ContentTypeCourse {
		root, err = m.cloneCourse(ctx, createdBy, original, overrides)
	} else {
		root, err = m.cloneSubtree(ctx, createdBy, original, parentID, overrides)
	}
	if err != nil {
		return nil, err
	}

	if scope := root.CourseScope(); scope != nil {
		if err := m.ReconcileEnabledPlugins(ctx, *scope, false); err != nil {
			return nil, err
		}
	}

	m.metrics.CloneObserved()
	m.log.Info().
		Stringer("source", sourceID).
		Stringer("copy", root.ID).
		Msg("content cloned")
	return root, nil
}

func (m *Manager) cloneSubtree(ctx context.Context, createdBy models.UserID, original *models.ContentNode, parentID *models.ContentID, overrides models.JSONMap) (*models.ContentNode, error) {
	if parentID == nil {
		parentID = original.ParentID
	}
	if parentID == nil {
		return nil, fmt.Errorf("%w: clone target parent required", ErrInvalidParent)
	}

	dup := makeCopy(original, createdBy)
	dup.ParentID = parentID
	dup.SortOrder = 0 // append after existing siblings
	if overrides != nil {
		dup.Properties = schema.MergePatch(dup.Properties, overrides)
	}
	if err := m.Insert(ctx, dup, InsertOptions{SkipReconcile: true}); err != nil {
		return nil, err
	}

	if err := m.cloneChildren(ctx, createdBy, original.ID, dup.ID); err != nil {
		return nil, err
	}
	return dup, nil
}

func (m *Manager) cloneCourse(ctx context.Context, createdBy models.UserID, original *models.ContentNode, overrides models.JSONMap) (*models.ContentNode, error) {
	dup := makeCopy(original, createdBy)
	if overrides != nil {
		dup.Properties = schema.MergePatch(dup.Properties, overrides)
	}
	if err := m.Insert(ctx, dup, InsertOptions{SkipReconcile: true}); err != nil {
		return nil, err
	}

	config, err := m.store.FindOne(ctx, store.Query{
		CourseID: original.ID.Ref(),
		Type:     models.ContentTypeConfig,
	})
	if err != nil {
		return nil, err
	}
	if config != nil {
		cfgCopy := makeCopy(config, createdBy)
		cfgCopy.CourseID = dup.ID.Ref()
		if err := m.Insert(ctx, cfgCopy, InsertOptions{SkipSortOrder: true, SkipReconcile: true}); err != nil {
			return nil, err
		}
	}

	if err := m.cloneChildren(ctx, createdBy, original.ID, dup.ID); err != nil {
		return nil, err
	}
	return dup, nil
}

// cloneChildren copies every child of originalID under newParentID, fanning
// out across siblings. Each copy keeps its sortOrder: the cloned set is
// already contiguous and the new parent has no other children, so no
// reordering is needed and concurrent branches cannot contend.
func (m *Manager) cloneChildren(ctx context.Context, createdBy models.UserID, originalID, newParentID models.ContentID) error {
	children, err := m.store.Find(ctx, store.Query{ParentID: &originalID})
	if err != nil {
		return err
	}

	var g errgroup.Group
	for _, child := range children {
		child := child
		g.Go(func() error {
			dup := makeCopy(child, createdBy)
			dup.ParentID = &newParentID
			opts := InsertOptions{SkipSortOrder: true, SkipReconcile: true}
			if err := m.Insert(ctx, dup, opts); err != nil {
				return err
			}
			return m.cloneChildren(ctx, createdBy, child.ID, dup.ID)
		})
	}
	return g.Wait()
}

// makeCopy duplicates a document as a new unsaved record attributed to
// createdBy.
func makeCopy(original *models.ContentNode, createdBy models.UserID) *models.ContentNode {
	dup := original.Clone()
	dup.ID = models.ContentID{}
	dup.CreatedBy = createdBy
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	if dup.Type == models.ContentTypeCourse {
		dup.CourseID = nil
	}
	return dup
}
