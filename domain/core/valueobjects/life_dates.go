package valueobjects

import (
	"errors"
	"time"
)

// LifeDates holds the optional birth and death dates of a person.
// Both are calendar dates; either may be unknown.
type LifeDates struct {
	birth *time.Time
	death *time.Time
}

// NewLifeDates creates validated LifeDates. A nil pointer means the date is
// unknown. A death on the birth date is allowed.
func NewLifeDates(birth, death *time.Time) (LifeDates, error) {
	if birth != nil && death != nil && death.Before(*birth) {
		return LifeDates{}, errors.New("death date must not precede birth date")
	}
	return LifeDates{birth: copyDate(birth), death: copyDate(death)}, nil
}

// Birth returns the birth date, nil when unknown
func (d LifeDates) Birth() *time.Time {
	return copyDate(d.birth)
}

// Death returns the death date, nil when unknown
func (d LifeDates) Death() *time.Time {
	return copyDate(d.death)
}

// AgeAt computes the age in whole years as of the given date.
// Returns false when the birth date is unknown or the date precedes the birth.
// A recorded death date earlier than asOf caps the age at death.
func (d LifeDates) AgeAt(asOf time.Time) (int, bool) {
	if d.birth == nil {
		return 0, false
	}
	end := asOf
	if d.death != nil && d.death.Before(asOf) {
		end = *d.death
	}
	if end.Before(*d.birth) {
		return 0, false
	}

	age := end.Year() - d.birth.Year()
	if end.Month() < d.birth.Month() ||
		(end.Month() == d.birth.Month() && end.Day() < d.birth.Day()) {
		age--
	}
	return age, true
}

// Equals checks if two LifeDates are equal
func (d LifeDates) Equals(other LifeDates) bool {
	return equalDate(d.birth, other.birth) && equalDate(d.death, other.death)
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
