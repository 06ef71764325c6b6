package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"lineage-backend/application/ports"
	"lineage-backend/domain/config"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// PersonService orchestrates person lifecycle operations. Writes take the
// tree's write lock so they serialize with relationship validation.
type PersonService struct {
	treeRepo   ports.TreeRepository
	personRepo ports.PersonRepository
	relRepo    ports.RelationshipRepository
	locks      *TreeLockManager
	cfg        config.DomainConfig
	logger     *zap.Logger
}

// NewPersonService creates a new person service
func NewPersonService(
	treeRepo ports.TreeRepository,
	personRepo ports.PersonRepository,
	relRepo ports.RelationshipRepository,
	locks *TreeLockManager,
	cfg config.DomainConfig,
	logger *zap.Logger,
) *PersonService {
	return &PersonService{
		treeRepo:   treeRepo,
		personRepo: personRepo,
		relRepo:    relRepo,
		locks:      locks,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreatePersonInput carries the fields for creating a person
type CreatePersonInput struct {
	FirstName  string
	LastName   string
	MaidenName string
	BirthDate  *time.Time
	DeathDate  *time.Time
	BirthPlace string
	DeathPlace string
	Bio        string
}

// UpdatePersonInput carries a partial person update; nil fields are untouched
type UpdatePersonInput struct {
	FirstName  *string
	LastName   *string
	MaidenName *string
	BirthDate  *time.Time
	DeathDate  *time.Time
	BirthPlace *string
	DeathPlace *string
	Bio        *string
}

// CreatePerson adds a person to a tree
func (s *PersonService) CreatePerson(
	ctx context.Context,
	treeID valueobjects.TreeID,
	input CreatePersonInput,
) (*entities.Person, error) {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	if _, err := s.treeRepo.GetByID(ctx, treeID); err != nil {
		return nil, err
	}

	count, err := s.personRepo.CountByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to count people")
	}
	if count >= s.cfg.MaxPeoplePerTree {
		return nil, pkgerrors.NewValidationError("family tree has reached its maximum number of people")
	}

	name, err := valueobjects.NewPersonName(input.FirstName, input.LastName, input.MaidenName)
	if err != nil {
		return nil, err
	}
	dates, err := valueobjects.NewLifeDates(input.BirthDate, input.DeathDate)
	if err != nil {
		return nil, err
	}

	person, err := entities.NewPerson(treeID, name, dates, input.BirthPlace, input.DeathPlace, input.Bio)
	if err != nil {
		return nil, err
	}

	if err := s.personRepo.Save(ctx, person); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save person")
	}

	s.logger.Info("person created",
		zap.String("personID", person.ID().String()),
		zap.String("treeID", treeID.String()),
	)
	return person, nil
}

// GetPerson retrieves a person, verifying tree membership
func (s *PersonService) GetPerson(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) (*entities.Person, error) {
	person, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		return nil, err
	}
	if !person.TreeID().Equals(treeID) {
		return nil, pkgerrors.NewNotFoundError("person")
	}
	return person, nil
}

// PersonPage is one page of people
type PersonPage struct {
	People []*entities.Person
	Total  int
	Offset int
	Limit  int
}

// ListPeople returns a deterministic page of the tree's people, ordered by
// last name, first name, then id.
func (s *PersonService) ListPeople(
	ctx context.Context,
	treeID valueobjects.TreeID,
	offset, limit int,
) (*PersonPage, error) {
	if _, err := s.treeRepo.GetByID(ctx, treeID); err != nil {
		return nil, err
	}

	people, err := s.personRepo.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list people")
	}
	sortPeopleByName(people)

	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	total := len(people)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &PersonPage{
		People: people[offset:end],
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}, nil
}

// SearchPeople returns the tree's people whose name matches the term,
// case-insensitive, against first, last, maiden and full name.
func (s *PersonService) SearchPeople(
	ctx context.Context,
	treeID valueobjects.TreeID,
	term string,
) ([]*entities.Person, error) {
	if _, err := s.treeRepo.GetByID(ctx, treeID); err != nil {
		return nil, err
	}

	people, err := s.personRepo.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to search people")
	}

	var matched []*entities.Person
	for _, p := range people {
		if p.Name().Matches(term) {
			matched = append(matched, p)
		}
	}
	sortPeopleByName(matched)
	return matched, nil
}

// UpdatePerson applies a partial update
func (s *PersonService) UpdatePerson(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
	input UpdatePersonInput,
) (*entities.Person, error) {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	person, err := s.GetPerson(ctx, treeID, personID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil || input.LastName != nil || input.MaidenName != nil {
		name := person.Name()
		first, last, maiden := name.First(), name.Last(), name.Maiden()
		if input.FirstName != nil {
			first = *input.FirstName
		}
		if input.LastName != nil {
			last = *input.LastName
		}
		if input.MaidenName != nil {
			maiden = *input.MaidenName
		}
		newName, err := valueobjects.NewPersonName(first, last, maiden)
		if err != nil {
			return nil, err
		}
		if err := person.Rename(newName); err != nil {
			return nil, err
		}
	}

	if input.BirthDate != nil || input.DeathDate != nil {
		birth, death := person.Dates().Birth(), person.Dates().Death()
		if input.BirthDate != nil {
			birth = input.BirthDate
		}
		if input.DeathDate != nil {
			death = input.DeathDate
		}
		dates, err := valueobjects.NewLifeDates(birth, death)
		if err != nil {
			return nil, err
		}
		person.UpdateDates(dates)
	}

	if input.BirthPlace != nil || input.DeathPlace != nil {
		birthPlace, deathPlace := person.BirthPlace(), person.DeathPlace()
		if input.BirthPlace != nil {
			birthPlace = *input.BirthPlace
		}
		if input.DeathPlace != nil {
			deathPlace = *input.DeathPlace
		}
		person.UpdatePlaces(birthPlace, deathPlace)
	}

	if input.Bio != nil {
		person.UpdateBio(*input.Bio)
	}

	if err := s.personRepo.Save(ctx, person); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save person")
	}
	return person, nil
}

// DeletePerson removes a person and cascades to every incident relationship.
// After the delete, no traversal, path or export result can reference the
// person.
func (s *PersonService) DeletePerson(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) error {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	if _, err := s.GetPerson(ctx, treeID, personID); err != nil {
		return err
	}

	if err := s.relRepo.DeleteByPersonID(ctx, personID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete person's relationships")
	}
	if err := s.personRepo.Delete(ctx, personID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete person")
	}

	s.logger.Info("person deleted with cascade",
		zap.String("personID", personID.String()),
		zap.String("treeID", treeID.String()),
	)
	return nil
}

// AgeAt returns the person's age in whole years as of the given date.
// The second return is false when the birth date is unknown.
func (s *PersonService) AgeAt(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
	asOf time.Time,
) (int, bool, error) {
	person, err := s.GetPerson(ctx, treeID, personID)
	if err != nil {
		return 0, false, err
	}
	age, known := person.AgeAt(asOf)
	return age, known, nil
}

func sortPeopleByName(people []*entities.Person) {
	sort.Slice(people, func(i, j int) bool {
		a, b := people[i].Name(), people[j].Name()
		if a.Last() != b.Last() {
			return a.Last() < b.Last()
		}
		if a.First() != b.First() {
			return a.First() < b.First()
		}
		return people[i].ID().Less(people[j].ID())
	})
}
