package services

import (
	"context"

	"lineage-backend/application/ports"
	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// GraphLoader builds a TreeGraph snapshot from the repositories.
// Every read-side operation starts here; callers hold the appropriate
// tree lock for the duration of the snapshot's use.
type GraphLoader struct {
	treeRepo   ports.TreeRepository
	personRepo ports.PersonRepository
	relRepo    ports.RelationshipRepository
}

// NewGraphLoader creates a new graph loader
func NewGraphLoader(
	treeRepo ports.TreeRepository,
	personRepo ports.PersonRepository,
	relRepo ports.RelationshipRepository,
) *GraphLoader {
	return &GraphLoader{
		treeRepo:   treeRepo,
		personRepo: personRepo,
		relRepo:    relRepo,
	}
}

// Load builds the graph index for one tree. Returns NotFound when the tree
// does not exist.
func (l *GraphLoader) Load(ctx context.Context, treeID valueobjects.TreeID) (*aggregates.TreeGraph, error) {
	if _, err := l.treeRepo.GetByID(ctx, treeID); err != nil {
		return nil, err
	}

	people, err := l.personRepo.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load people")
	}

	rels, err := l.relRepo.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load relationships")
	}

	return aggregates.BuildTreeGraph(treeID, people, rels), nil
}
