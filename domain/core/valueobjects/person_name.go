package valueobjects

import (
	"errors"
	"strings"
)

const maxNameLength = 100

// PersonName holds the name fields of a person. Only the first name is required;
// last and maiden names are optional genealogical record fields.
type PersonName struct {
	first  string
	last   string
	maiden string
}

// NewPersonName creates a validated PersonName
func NewPersonName(first, last, maiden string) (PersonName, error) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	maiden = strings.TrimSpace(maiden)

	if first == "" {
		return PersonName{}, errors.New("first name cannot be empty")
	}
	if len(first) > maxNameLength || len(last) > maxNameLength || len(maiden) > maxNameLength {
		return PersonName{}, errors.New("name fields must be at most 100 characters")
	}

	return PersonName{first: first, last: last, maiden: maiden}, nil
}

// First returns the first name
func (n PersonName) First() string {
	return n.first
}

// Last returns the last name, may be empty
func (n PersonName) Last() string {
	return n.last
}

// Maiden returns the maiden name, may be empty
func (n PersonName) Maiden() string {
	return n.maiden
}

// Full returns the display name: "First Last" or just "First"
func (n PersonName) Full() string {
	if n.last == "" {
		return n.first
	}
	return n.first + " " + n.last
}

// Equals checks if two PersonNames are equal
func (n PersonName) Equals(other PersonName) bool {
	return n.first == other.first && n.last == other.last && n.maiden == other.maiden
}

// IsZero checks if the PersonName is the zero value
func (n PersonName) IsZero() bool {
	return n.first == ""
}

// Matches reports whether any name field contains the search term, case-insensitively
func (n PersonName) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(n.first), term) ||
		strings.Contains(strings.ToLower(n.last), term) ||
		strings.Contains(strings.ToLower(n.maiden), term)
}
