package entities

import (
	"time"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// Person is the node entity of the relationship graph.
// This is a rich domain model with encapsulated business logic.
type Person struct {
	// Private fields ensure encapsulation
	id         valueobjects.PersonID
	treeID     valueobjects.TreeID
	name       valueobjects.PersonName
	dates      valueobjects.LifeDates
	birthPlace string
	deathPlace string
	bio        string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewPerson creates a new person with business rule validation
func NewPerson(
	treeID valueobjects.TreeID,
	name valueobjects.PersonName,
	dates valueobjects.LifeDates,
	birthPlace, deathPlace, bio string,
) (*Person, error) {
	if treeID.IsZero() {
		return nil, pkgerrors.NewValidationError("family tree id cannot be empty")
	}
	if name.IsZero() {
		return nil, pkgerrors.NewValidationError("person name cannot be empty")
	}

	now := time.Now()
	return &Person{
		id:         valueobjects.NewPersonID(),
		treeID:     treeID,
		name:       name,
		dates:      dates,
		birthPlace: birthPlace,
		deathPlace: deathPlace,
		bio:        bio,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructPerson reconstructs a person from repository data with preserved timestamps
func ReconstructPerson(
	id valueobjects.PersonID,
	treeID valueobjects.TreeID,
	name valueobjects.PersonName,
	dates valueobjects.LifeDates,
	birthPlace, deathPlace, bio string,
	createdAt, updatedAt time.Time,
) (*Person, error) {
	if id.IsZero() || treeID.IsZero() {
		return nil, pkgerrors.NewValidationError("person id and family tree id are required for reconstruction")
	}
	if name.IsZero() {
		return nil, pkgerrors.NewValidationError("person name cannot be empty")
	}

	return &Person{
		id:         id,
		treeID:     treeID,
		name:       name,
		dates:      dates,
		birthPlace: birthPlace,
		deathPlace: deathPlace,
		bio:        bio,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

// ID returns the person's unique identifier
func (p *Person) ID() valueobjects.PersonID {
	return p.id
}

// TreeID returns the owning family tree's identifier
func (p *Person) TreeID() valueobjects.TreeID {
	return p.treeID
}

// Name returns the person's name
func (p *Person) Name() valueobjects.PersonName {
	return p.name
}

// Dates returns the person's life dates
func (p *Person) Dates() valueobjects.LifeDates {
	return p.dates
}

// BirthPlace returns the birth place, may be empty
func (p *Person) BirthPlace() string {
	return p.birthPlace
}

// DeathPlace returns the death place, may be empty
func (p *Person) DeathPlace() string {
	return p.deathPlace
}

// Bio returns the biography text
func (p *Person) Bio() string {
	return p.bio
}

// CreatedAt returns when the person was created
func (p *Person) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the person was last updated
func (p *Person) UpdatedAt() time.Time {
	return p.updatedAt
}

// Rename updates the person's name
func (p *Person) Rename(name valueobjects.PersonName) error {
	if name.IsZero() {
		return pkgerrors.NewValidationError("person name cannot be empty")
	}
	if name.Equals(p.name) {
		return nil
	}
	p.name = name
	p.updatedAt = time.Now()
	return nil
}

// UpdateDates updates the person's life dates
func (p *Person) UpdateDates(dates valueobjects.LifeDates) {
	if dates.Equals(p.dates) {
		return
	}
	p.dates = dates
	p.updatedAt = time.Now()
}

// UpdatePlaces updates the birth and death places
func (p *Person) UpdatePlaces(birthPlace, deathPlace string) {
	p.birthPlace = birthPlace
	p.deathPlace = deathPlace
	p.updatedAt = time.Now()
}

// UpdateBio updates the biography text
func (p *Person) UpdateBio(bio string) {
	p.bio = bio
	p.updatedAt = time.Now()
}

// AgeAt computes the person's age in whole years as of the given date.
// Returns false when the birth date is unknown.
func (p *Person) AgeAt(asOf time.Time) (int, bool) {
	return p.dates.AgeAt(asOf)
}
