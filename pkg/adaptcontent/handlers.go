package adaptcontent

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taylortom/adapt-authoring-content/pkg/content"
	"github.com/taylortom/adapt-authoring-content/pkg/models"
	"github.com/taylortom/adapt-authoring-content/pkg/schema"
	"github.com/taylortom/adapt-authoring-content/pkg/store"
)

// userHeader carries the acting user's id. Authentication itself is handled
// upstream; the service only attributes records.
const userHeader = "X-User-Id"

func (a *App) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (a *App) respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		a.log.Error().Err(err).Msg("request failed")
	}

	body := map[string]any{"error": err.Error()}
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		body["errors"] = ve.Errors
	}
	a.respondJSON(w, status, body)
}

func statusForError(err error) int {
	var ve *schema.ValidationError
	switch {
	case errors.Is(err, content.ErrNotFound),
		errors.Is(err, content.ErrNoMatchingDocument):
		return http.StatusNotFound
	case errors.Is(err, content.ErrInvalidParent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, schema.ErrUnknownSchemaName), errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(w http.ResponseWriter, a *App, msg string) {
	a.respondJSON(w, http.StatusBadRequest, map[string]any{"error": msg})
}

func actingUser(r *http.Request) models.UserID {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return models.UserID{}
	}
	user, err := models.ParseUserID(raw)
	if err != nil {
		return models.UserID{}
	}
	return user
}

func pathID(r *http.Request) (models.ContentID, error) {
	return models.ParseContentID(mux.Vars(r)["id"])
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleInsert(w http.ResponseWriter, r *http.Request) {
	var node models.ContentNode
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		badRequest(w, a, "invalid request body")
		return
	}
	node.ID = models.ContentID{}
	node.CreatedBy = actingUser(r)

	if err := a.manager.Insert(r.Context(), &node, content.InsertOptions{}); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, node)
}

func (a *App) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, a, "invalid content id")
		return
	}
	node, err := a.manager.Get(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, node)
}

func (a *App) handleQuery(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromParams(r)
	if err != nil {
		badRequest(w, a, err.Error())
		return
	}
	nodes, err := a.manager.Find(r.Context(), q)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, nodes)
}

func queryFromParams(r *http.Request) (store.Query, error) {
	var q store.Query
	params := r.URL.Query()
	if v := params.Get("type"); v != "" {
		q.Type = models.ContentType(v)
	}
	if v := params.Get("component"); v != "" {
		q.Component = v
	}
	if v := params.Get("courseId"); v != "" {
		id, err := models.ParseContentID(v)
		if err != nil {
			return q, errors.New("invalid courseId")
		}
		q.CourseID = &id
	}
	if v := params.Get("parentId"); v != "" {
		id, err := models.ParseContentID(v)
		if err != nil {
			return q, errors.New("invalid parentId")
		}
		q.ParentID = &id
	}
	return q, nil
}

type updateRequest struct {
	ParentID       *models.ContentID `json:"parentId"`
	SortOrder      *int              `json:"sortOrder"`
	Component      *string           `json:"component"`
	EnabledPlugins *[]string         `json:"enabledPlugins"`
	Menu           *string           `json:"menu"`
	Theme          *string           `json:"theme"`
	Properties     models.JSONMap    `json:"properties"`
}

func (a *App) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, a, "invalid content id")
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, a, "invalid request body")
		return
	}

	node, err := a.manager.Update(r.Context(), store.ByID(id), content.UpdateData{
		ParentID:       req.ParentID,
		SortOrder:      req.SortOrder,
		Component:      req.Component,
		EnabledPlugins: req.EnabledPlugins,
		Menu:           req.Menu,
		Theme:          req.Theme,
		Properties:     req.Properties,
	})
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, node)
}

func (a *App) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, a, "invalid content id")
		return
	}
	deleted, err := a.manager.Delete(r.Context(), store.ByID(id))
	if err != nil {
		a.respondError(w, err)
		return
	}

	ids := make([]models.ContentID, len(deleted))
	for i, d := range deleted {
		ids[i] = d.ID
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"deleted": ids})
}

// handleClone expects {"id": ..., "parentId": ...}; every other key in the
// body is treated as a property override for the cloned root.
func (a *App) handleClone(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, a, "invalid request body")
		return
	}

	rawID, ok := body["id"].(string)
	if !ok {
		badRequest(w, a, "id is required")
		return
	}
	sourceID, err := models.ParseContentID(rawID)
	if err != nil {
		badRequest(w, a, "invalid content id")
		return
	}

	var parentID *models.ContentID
	if rawParent, ok := body["parentId"].(string); ok {
		id, err := models.ParseContentID(rawParent)
		if err != nil {
			badRequest(w, a, "invalid parentId")
			return
		}
		parentID = &id
	}

	delete(body, "id")
	delete(body, "parentId")
	var overrides models.JSONMap
	if len(body) > 0 {
		overrides = models.JSONMap(body)
	}

	clone, err := a.manager.Clone(r.Context(), actingUser(r), sourceID, parentID, overrides)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, clone)
}

type insertRecursiveRequest struct {
	RootID *models.ContentID `json:"rootId"`
	Locale string            `json:"locale"`
}

func (a *App) handleInsertRecursive(w http.ResponseWriter, r *http.Request) {
	var req insertRecursiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, a, "invalid request body")
		return
	}
	if req.RootID == nil {
		if raw := r.URL.Query().Get("rootId"); raw != "" {
			id, err := models.ParseContentID(raw)
			if err != nil {
				badRequest(w, a, "invalid rootId")
				return
			}
			req.RootID = &id
		}
	}

	created, err := a.manager.InsertRecursive(r.Context(), actingUser(r), req.RootID, req.Locale)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, created)
}

// handleServeSchema returns the composed schema for a document (?id=...) or
// a schema name (?name=..., optionally scoped with ?courseId=...).
func (a *App) handleServeSchema(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var (
		schemaName string
		courseID   *models.ContentID
		err        error
	)
	switch {
	case params.Get("id") != "":
		id, perr := models.ParseContentID(params.Get("id"))
		if perr != nil {
			badRequest(w, a, "invalid content id")
			return
		}
		node, gerr := a.manager.Get(r.Context(), id)
		if gerr != nil {
			a.respondError(w, gerr)
			return
		}
		schemaName, err = a.resolver.Resolve(r.Context(), schema.Partial{
			Type:      node.Type,
			Component: node.Component,
		})
		courseID = node.CourseScope()
	case params.Get("name") != "":
		schemaName = params.Get("name")
	case params.Get("type") != "":
		schemaName, err = a.resolver.Resolve(r.Context(), schema.Partial{
			Type:      models.ContentType(params.Get("type")),
			Component: params.Get("component"),
		})
	default:
		badRequest(w, a, "one of id, name or type is required")
		return
	}
	if err != nil {
		a.respondError(w, err)
		return
	}

	if raw := params.Get("courseId"); raw != "" {
		id, perr := models.ParseContentID(raw)
		if perr != nil {
			badRequest(w, a, "invalid courseId")
			return
		}
		// an explicit course scope must actually exist
		config, ferr := a.store.FindOne(r.Context(), store.Query{
			CourseID: &id,
			Type:     models.ContentTypeConfig,
		})
		if ferr != nil {
			a.respondError(w, ferr)
			return
		}
		if config == nil {
			a.respondError(w, content.ErrNotFound)
			return
		}
		courseID = &id
	}

	composed, err := a.composer.Compose(r.Context(), schemaName, courseID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(composed); err != nil {
		a.log.Error().Err(err).Msg("failed to encode schema")
	}
}
