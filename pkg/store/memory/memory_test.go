package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

func TestInsertAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s := New()

	n := &models.ContentNode{Type: models.ContentTypeCourse}
	require.NoError(t, s.Insert(ctx, n))
	assert.False(t, n.ID.IsZero())
	assert.False(t, n.CreatedAt.IsZero())

	got, err := s.FindOne(ctx, store.ByID(n.ID))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, n.ID, got.ID)
}

func TestFindOneMissingReturnsNil(t *testing.T) {
	s := New()
	got, err := s.FindOne(context.Background(), store.ByID(models.NewContentID()))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindOrdersBySortOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	course := &models.ContentNode{Type: models.ContentTypeCourse}
	require.NoError(t, s.Insert(ctx, course))
	course.CourseID = course.ID.Ref()
	require.NoError(t, s.Update(ctx, course))

	for _, so := range []int{3, 1, 2} {
		require.NoError(t, s.Insert(ctx, &models.ContentNode{
			Type:      models.ContentTypePage,
			CourseID:  course.ID.Ref(),
			ParentID:  course.ID.Ref(),
			SortOrder: so,
		}))
	}

	pages, err := s.Find(ctx, store.Query{ParentID: course.ID.Ref()})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{pages[0].SortOrder, pages[1].SortOrder, pages[2].SortOrder})
}

func TestFindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	n := &models.ContentNode{
		Type:       models.ContentTypePage,
		Properties: models.JSONMap{"title": "Original"},
	}
	require.NoError(t, s.Insert(ctx, n))

	got, err := s.FindOne(ctx, store.ByID(n.ID))
	require.NoError(t, err)
	got.Properties["title"] = "Mutated"

	again, err := s.FindOne(ctx, store.ByID(n.ID))
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Properties["title"])
}

func TestDeleteByCourseRemovesWholeCourse(t *testing.T) {
	ctx := context.Background()
	s := New()

	course := &models.ContentNode{Type: models.ContentTypeCourse}
	require.NoError(t, s.Insert(ctx, course))
	course.CourseID = course.ID.Ref()
	require.NoError(t, s.Update(ctx, course))

	page := &models.ContentNode{Type: models.ContentTypePage, CourseID: course.ID.Ref(), ParentID: course.ID.Ref(), SortOrder: 1}
	require.NoError(t, s.Insert(ctx, page))

	other := &models.ContentNode{Type: models.ContentTypeCourse}
	require.NoError(t, s.Insert(ctx, other))
	other.CourseID = other.ID.Ref()
	require.NoError(t, s.Update(ctx, other))

	require.NoError(t, s.DeleteByCourse(ctx, course.ID))

	got, err := s.FindOne(ctx, store.ByID(page.ID))
	require.NoError(t, err)
	assert.Nil(t, got)

	kept, err := s.FindOne(ctx, store.ByID(other.ID))
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestComponentNames(t *testing.T) {
	ctx := context.Background()
	s := New()

	course := &models.ContentNode{Type: models.ContentTypeCourse}
	require.NoError(t, s.Insert(ctx, course))
	course.CourseID = course.ID.Ref()
	require.NoError(t, s.Update(ctx, course))

	for i, comp := range []string{"text", "text", "narrative"} {
		require.NoError(t, s.Insert(ctx, &models.ContentNode{
			Type:      models.ContentTypeComponent,
			CourseID:  course.ID.Ref(),
			Component: comp,
			SortOrder: i + 1,
		}))
	}

	names, err := s.ComponentNames(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"narrative", "text"}, names)
}
