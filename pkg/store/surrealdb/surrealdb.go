// Package surrealdb implements the content [store.Store] on SurrealDB using
// native SurrealQL.
//
// The content collection maps to a single `content` table; typed IDs marshal
// to SurrealDB RecordIDs via their CBOR marshalers, so structs are passed to
// the driver directly and every query is parameterized ($param syntax). The
// surrealcbor codec is installed on the connection so time.Time and RecordID
// values round-trip in the format SurrealDB stores internally.
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

const contentTable = "content"

// Store is the SurrealDB-backed content store.
type Store struct {
	db *surrealdb.DB
}

var _ store.Store = (*Store)(nil)

// New connects to SurrealDB over WebSocket and selects the given namespace
// and database. Credentials are optional.
func New(ctx context.Context, wsURL, namespace, database, username, password string) (*Store, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)

	// The surrealcbor codec is required for correct time.Time and RecordID
	// round-tripping.
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db}, nil
}

// handleNotFound maps the driver's "no result" errors to nil so callers can
// treat a missing record as an absent value.
func handleNotFound(err error) error {
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
			strings.Contains(errStr, "cannot unmarshal array into Go value") {
			return nil
		}
	}
	return err
}

// buildWhere turns a Query into a SurrealQL WHERE clause plus parameter map.
// Typed IDs are passed as RecordIDs; everything else as plain values.
func buildWhere(q store.Query) (string, map[string]any) {
	var conds []string
	params := map[string]any{}

	if q.ID != nil {
		conds = append(conds, "id = $id")
		params["id"] = q.ID.RecordID()
	}
	if q.NotID != nil {
		conds = append(conds, "id != $not_id")
		params["not_id"] = q.NotID.RecordID()
	}
	if q.CourseID != nil {
		conds = append(conds, "courseId = $course_id")
		params["course_id"] = q.CourseID.RecordID()
	}
	if q.ParentID != nil {
		conds = append(conds, "parentId = $parent_id")
		params["parent_id"] = q.ParentID.RecordID()
	}
	if q.Type != "" {
		conds = append(conds, "type = $type")
		params["type"] = string(q.Type)
	}
	if q.Component != "" {
		conds = append(conds, "component = $component")
		params["component"] = q.Component
	}

	if len(conds) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

func (s *Store) Find(ctx context.Context, q store.Query) ([]*models.ContentNode, error) {
	where, params := buildWhere(q)
	query := "SELECT * FROM " + contentTable + where + " ORDER BY sortOrder, createdAt"

	result, err := surrealdb.Query[[]models.ContentNode](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}

	nodes := []*models.ContentNode{}
	if result != nil && len(*result) > 0 {
		for i := range (*result)[0].Result {
			nodes = append(nodes, &(*result)[0].Result[i])
		}
	}
	return nodes, nil
}

func (s *Store) FindOne(ctx context.Context, q store.Query) (*models.ContentNode, error) {
	// Single-record fetch by id avoids a table scan.
	if q.ID != nil && q.NotID == nil && q.CourseID == nil && q.ParentID == nil &&
		q.Type == "" && q.Component == "" {
		node, err := surrealdb.Select[models.ContentNode](ctx, s.db, q.ID.RecordID())
		if err != nil {
			if handleNotFound(err) == nil {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get content: %w", err)
		}
		return node, nil
	}

	nodes, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

func (s *Store) Insert(ctx context.Context, node *models.ContentNode) error {
	if node.ID.IsZero() {
		node.ID = models.NewContentID()
	}
	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now()
	}
	node.UpdatedAt = time.Now()

	_, err := surrealdb.Create[models.ContentNode](ctx, s.db, contentTable, node)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, node *models.ContentNode) error {
	node.UpdatedAt = time.Now()

	_, err := surrealdb.Update[models.ContentNode](ctx, s.db, node.ID.RecordID(), node)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id models.ContentID) error {
	_, err := surrealdb.Delete[models.ContentNode](ctx, s.db, id.RecordID())
	if handleNotFound(err) == nil {
		return nil
	}
	return fmt.Errorf("failed to delete content: %w", err)
}

func (s *Store) DeleteByCourse(ctx context.Context, courseID models.ContentID) error {
	query := "DELETE FROM " + contentTable + " WHERE courseId = $course_id"
	params := map[string]any{
		"course_id": courseID.RecordID(),
	}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to delete course content: %w", err)
	}
	return nil
}

func (s *Store) ComponentNames(ctx context.Context, courseID models.ContentID) ([]string, error) {
	query := "SELECT VALUE component FROM " + contentTable +
		" WHERE courseId = $course_id AND type = 'component' AND component != '' GROUP BY component"
	params := map[string]any{
		"course_id": courseID.RecordID(),
	}
	result, err := surrealdb.Query[[]string](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list component names: %w", err)
	}

	names := []string{}
	if result != nil && len(*result) > 0 {
		names = append(names, (*result)[0].Result...)
	}
	return names, nil
}

// Migrate defines the indexes used by the hot query paths. SurrealDB creates
// the table itself lazily; running this repeatedly is safe because DEFINE
// INDEX is idempotent with OVERWRITE.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		"DEFINE INDEX OVERWRITE content_course ON TABLE content COLUMNS courseId",
		"DEFINE INDEX OVERWRITE content_parent ON TABLE content COLUMNS parentId",
		"DEFINE INDEX OVERWRITE content_course_type ON TABLE content COLUMNS courseId, type",
	}
	for _, stmt := range stmts {
		if _, err := surrealdb.Query[any](ctx, s.db, stmt, nil); err != nil {
			return fmt.Errorf("failed to define index: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}
