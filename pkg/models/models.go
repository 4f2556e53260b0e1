// Package models defines the content entities shared by the store, the
// schema layer and the content manager.
//
// The whole content tree is a single collection of [ContentNode] documents.
// A node's structural fields (type, course, parent, sort order) are typed;
// everything type-specific lives in the open [JSONMap] payload and is
// validated against the schema composed for the owning course.
package models

import (
	"time"
)

// ContentType identifies the kind of a content node. The set is closed:
// unknown types are rejected before any document is written.
type ContentType string

const (
	ContentTypeCourse    ContentType = "course"
	ContentTypeConfig    ContentType = "config"
	ContentTypeMenu      ContentType = "menu"
	ContentTypePage      ContentType = "page"
	ContentTypeArticle   ContentType = "article"
	ContentTypeBlock     ContentType = "block"
	ContentTypeComponent ContentType = "component"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeCourse, ContentTypeConfig, ContentTypeMenu, ContentTypePage,
		ContentTypeArticle, ContentTypeBlock, ContentTypeComponent:
		return true
	}
	return false
}

// IsRoot reports whether nodes of this type live at the top of a course
// (no parent). Courses and configs are conceptually roots; everything else
// must carry a parent reference.
func (t ContentType) IsRoot() bool {
	return t == ContentTypeCourse || t == ContentTypeConfig
}

// JSONMap is a flexible key-value map carrying the type-specific fields of a
// node. The structure varies by node type and by which plugins are enabled
// for the owning course, so it is validated against a composed JSON schema
// rather than a fixed Go struct.
type JSONMap map[string]any

// Clone returns a deep copy. Nested maps and slices are copied; scalar
// values are shared (they are immutable once decoded from JSON).
func (j JSONMap) Clone() JSONMap {
	if j == nil {
		return nil
	}
	out := make(JSONMap, len(j))
	for k, v := range j {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case JSONMap:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}

// ContentNode is the universal content entity: courses, configs, menus,
// pages, articles, blocks and components are all nodes in one collection,
// distinguished by Type.
//
// Structural invariants maintained by the content manager:
//   - every non-root node has exactly one parent in the same course
//   - siblings (same ParentID) hold contiguous 1-based SortOrder values
//   - a course references itself through CourseID once fully created
//   - a config's EnabledPlugins tracks actual component usage plus the
//     course's menu and theme selections
type ContentNode struct {
	ID       ContentID   `json:"id"`
	Type     ContentType `json:"type"`
	CourseID *ContentID  `json:"courseId,omitempty"`
	ParentID *ContentID  `json:"parentId,omitempty"`

	// SortOrder is the node's 1-based position among its siblings. Zero
	// means "unplaced"; the sort-order pass assigns the real value.
	SortOrder int `json:"sortOrder,omitempty"`

	// Component names the registered plugin backing a component node.
	Component string `json:"component,omitempty"`

	// Config-only fields.
	EnabledPlugins []string `json:"enabledPlugins,omitempty"`
	Menu           string   `json:"menu,omitempty"`
	Theme          string   `json:"theme,omitempty"`

	CreatedBy UserID    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`

	Properties JSONMap `json:"properties,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *ContentNode) Clone() *ContentNode {
	if n == nil {
		return nil
	}
	out := *n
	if n.CourseID != nil {
		id := *n.CourseID
		out.CourseID = &id
	}
	if n.ParentID != nil {
		id := *n.ParentID
		out.ParentID = &id
	}
	if n.EnabledPlugins != nil {
		out.EnabledPlugins = append([]string(nil), n.EnabledPlugins...)
	}
	out.Properties = n.Properties.Clone()
	return &out
}

// CourseScope returns the id of the course this node belongs to: a course
// node scopes to itself, everything else to its CourseID. Returns nil for a
// course that has not been stamped yet.
func (n *ContentNode) CourseScope() *ContentID {
	if n.Type == ContentTypeCourse {
		if n.ID.IsZero() {
			return nil
		}
		id := n.ID
		return &id
	}
	return n.CourseID
}
