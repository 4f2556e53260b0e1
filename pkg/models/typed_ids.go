package models

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ContentID is a typed ID for content nodes.
type ContentID struct {
	uuid uuid.UUID
}

func NewContentID() ContentID {
	return ContentID{uuid: uuid.New()}
}

func NewContentIDFromUUID(id uuid.UUID) ContentID {
	return ContentID{uuid: id}
}

func ParseContentID(s string) (ContentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid content ID: %w", err)
	}
	return ContentID{uuid: id}, nil
}

func (c ContentID) UUID() uuid.UUID { return c.uuid }
func (c ContentID) String() string  { return c.uuid.String() }
func (c ContentID) IsZero() bool    { return c.uuid == uuid.Nil }

// Ref returns a pointer copy, for the optional reference fields on
// [ContentNode].
func (c ContentID) Ref() *ContentID {
	return &c
}

func (c ContentID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "content",
		ID:    c.uuid.String(),
	}
}

func (c ContentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *ContentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	c.uuid = id
	return nil
}

func (c ContentID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"content", c.uuid.String()},
	})
}

func (c *ContentID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "content", &c.uuid)
}

// UserID is a typed ID for the acting principal recorded on created nodes.
// User accounts themselves live outside this module; the ID is carried
// through so ownership survives cloning with the correct new author.
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: uuid.New()}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "users",
		ID:    u.uuid.String(),
	}
}

func (u UserID) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(u.uuid.String())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		u.uuid = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	u.uuid = id
	return nil
}

func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"users", u.uuid.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "users", &u.uuid)
}

// unmarshalCBORID decodes a SurrealDB RecordID from CBOR. SurrealDB encodes
// RecordIDs as CBOR tag 8 wrapping a [table, id] pair.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}

	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}
