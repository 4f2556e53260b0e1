// Package memory provides an in-memory Store used by tests and by the
// standalone (no database) server mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// Store keeps every document in a map guarded by a RWMutex. Documents are
// deep-copied on the way in and out so callers can never alias internal
// state.
type Store struct {
	mu    sync.RWMutex
	nodes map[models.ContentID]*models.ContentNode
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{nodes: make(map[models.ContentID]*models.ContentNode)}
}

func matches(n *models.ContentNode, q store.Query) bool {
	if q.ID != nil && n.ID != *q.ID {
		return false
	}
	if q.NotID != nil && n.ID == *q.NotID {
		return false
	}
	if q.CourseID != nil && (n.CourseID == nil || *n.CourseID != *q.CourseID) {
		return false
	}
	if q.ParentID != nil && (n.ParentID == nil || *n.ParentID != *q.ParentID) {
		return false
	}
	if q.Type != "" && n.Type != q.Type {
		return false
	}
	if q.Component != "" && n.Component != q.Component {
		return false
	}
	return true
}

func (s *Store) Find(ctx context.Context, q store.Query) ([]*models.ContentNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.ContentNode{}
	for _, n := range s.nodes {
		if matches(n, q) {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, q store.Query) (*models.ContentNode, error) {
	all, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (s *Store) Insert(ctx context.Context, node *models.ContentNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID.IsZero() {
		node.ID = models.NewContentID()
	}
	if _, ok := s.nodes[node.ID]; ok {
		return fmt.Errorf("content %s already exists", node.ID)
	}
	now := time.Now().UTC()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	node.UpdatedAt = now
	s.nodes[node.ID] = node.Clone()
	return nil
}

func (s *Store) Update(ctx context.Context, node *models.ContentNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.nodes[node.ID]
	if !ok {
		return fmt.Errorf("content %s does not exist", node.ID)
	}
	node.CreatedAt = prev.CreatedAt
	node.UpdatedAt = time.Now().UTC()
	s.nodes[node.ID] = node.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, id models.ContentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id)
	return nil
}

func (s *Store) DeleteByCourse(ctx context.Context, courseID models.ContentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.nodes {
		if n.CourseID != nil && *n.CourseID == courseID {
			delete(s.nodes, id)
		}
	}
	return nil
}

func (s *Store) ComponentNames(ctx context.Context, courseID models.ContentID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	names := []string{}
	for _, n := range s.nodes {
		if n.Type != models.ContentTypeComponent || n.Component == "" {
			continue
		}
		if n.CourseID == nil || *n.CourseID != courseID {
			continue
		}
		if _, ok := seen[n.Component]; ok {
			continue
		}
		seen[n.Component] = struct{}{}
		names = append(names, n.Component)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
