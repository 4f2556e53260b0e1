package content

import (
	"context"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// reorderSiblings rewrites the sortOrder of parentID's children so they are
// contiguous from 1, in the existing order.
//
// When moved is non-nil it is spliced at the position its SortOrder
// requests: 1-based, values at or below zero append last, values past the
// end clamp to last. The final position is written back to moved. When
// removedID is non-nil that document is excluded so the gap it left closes.
// Only siblings whose sortOrder actually changes are written.
func (m *Manager) reorderSiblings(ctx context.Context, parentID models.ContentID, moved *models.ContentNode, removedID *models.ContentID) error {
	siblings, err := m.store.Find(ctx, store.Query{ParentID: &parentID})
	if err != nil {
		return err
	}

	list := make([]*models.ContentNode, 0, len(siblings))
	for _, sib := range siblings {
		if moved != nil && sib.ID == moved.ID {
			continue
		}
		if removedID != nil && sib.ID == *removedID {
			continue
		}
		list = append(list, sib)
	}

	if moved != nil {
		pos := moved.SortOrder - 1
		if moved.SortOrder <= 0 || pos > len(list) {
			pos = len(list)
		}
		list = append(list, nil)
		copy(list[pos+1:], list[pos:])
		list[pos] = moved
	}

	for i, sib := range list {
		want := i + 1
		if sib.SortOrder == want {
			continue
		}
		sib.SortOrder = want
		if err := m.store.Update(ctx, sib); err != nil {
			return err
		}
	}
	return nil
}
