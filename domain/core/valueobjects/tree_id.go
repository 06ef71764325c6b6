package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// TreeID identifies a family tree, the namespace every graph operation is scoped to
type TreeID struct {
	value string
}

// NewTreeID creates a new random TreeID
func NewTreeID() TreeID {
	return TreeID{value: uuid.New().String()}
}

// NewTreeIDFromString creates a TreeID from an existing string
func NewTreeIDFromString(id string) (TreeID, error) {
	if id == "" {
		return TreeID{}, errors.New("tree ID cannot be empty")
	}
	if !isValidUUID(id) {
		return TreeID{}, errors.New("tree ID must be a valid UUID")
	}
	return TreeID{value: id}, nil
}

// String returns the string representation of the TreeID
func (id TreeID) String() string {
	return id.value
}

// Equals checks if two TreeIDs are equal
func (id TreeID) Equals(other TreeID) bool {
	return id.value == other.value
}

// IsZero checks if the TreeID is the zero value
func (id TreeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id TreeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *TreeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("TreeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
