package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// JSONMap represents a generic JSON object stored in a JSONB column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	return json.Unmarshal(b, m)
}

// Snapshot is an immutable copy of a record's fields embedded in another
// record at a point in time. It is stored and returned verbatim; it is
// never refreshed from the live relation it was copied from.
type Snapshot []byte

func (s Snapshot) Value() (driver.Value, error) {
	if len(s) == 0 {
		return []byte("{}"), nil
	}
	return []byte(s), nil
}

func (s *Snapshot) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = append((*s)[:0], v...)
	case string:
		*s = Snapshot(v)
	default:
		return fmt.Errorf("cannot scan %T into Snapshot", src)
	}
	return nil
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	*s = append((*s)[:0], data...)
	return nil
}

// NewSnapshot captures v as a snapshot.
func NewSnapshot(v interface{}) (Snapshot, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to capture snapshot: %w", err)
	}
	return Snapshot(b), nil
}
