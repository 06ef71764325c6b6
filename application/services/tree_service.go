package services

import (
	"context"

	"go.uber.org/zap"

	"lineage-backend/application/ports"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// TreeService orchestrates family tree lifecycle operations
type TreeService struct {
	treeRepo  ports.TreeRepository
	loader    *GraphLoader
	exporter  *ExportService
	inference *InferenceEngine
	locks     *TreeLockManager
	logger    *zap.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	treeRepo ports.TreeRepository,
	loader *GraphLoader,
	exporter *ExportService,
	inference *InferenceEngine,
	locks *TreeLockManager,
	logger *zap.Logger,
) *TreeService {
	return &TreeService{
		treeRepo:  treeRepo,
		loader:    loader,
		exporter:  exporter,
		inference: inference,
		locks:     locks,
		logger:    logger,
	}
}

// CreateTree creates a family tree owned by the given user
func (s *TreeService) CreateTree(ctx context.Context, ownerID, name, description string) (*entities.FamilyTree, error) {
	tree, err := entities.NewFamilyTree(ownerID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.treeRepo.Save(ctx, tree); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save family tree")
	}

	s.logger.Info("family tree created",
		zap.String("treeID", tree.ID().String()),
		zap.String("ownerID", ownerID),
	)
	return tree, nil
}

// GetTree retrieves a tree the user owns. Ownership failures surface as
// not-found so tree ids don't leak across accounts.
func (s *TreeService) GetTree(ctx context.Context, ownerID string, treeID valueobjects.TreeID) (*entities.FamilyTree, error) {
	tree, err := s.treeRepo.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !tree.IsOwnedBy(ownerID) {
		return nil, pkgerrors.NewNotFoundError("family tree")
	}
	return tree, nil
}

// ListTrees returns all trees owned by the user
func (s *TreeService) ListTrees(ctx context.Context, ownerID string) ([]*entities.FamilyTree, error) {
	trees, err := s.treeRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list family trees")
	}
	return trees, nil
}

// UpdateTree renames a tree
func (s *TreeService) UpdateTree(
	ctx context.Context,
	ownerID string,
	treeID valueobjects.TreeID,
	name, description string,
) (*entities.FamilyTree, error) {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	tree, err := s.GetTree(ctx, ownerID, treeID)
	if err != nil {
		return nil, err
	}
	if err := tree.Rename(name, description); err != nil {
		return nil, err
	}
	if err := s.treeRepo.Save(ctx, tree); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save family tree")
	}
	return tree, nil
}

// DeleteTree removes a tree together with all its people and relationships
func (s *TreeService) DeleteTree(ctx context.Context, ownerID string, treeID valueobjects.TreeID) error {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	if _, err := s.GetTree(ctx, ownerID, treeID); err != nil {
		return err
	}
	if err := s.treeRepo.Delete(ctx, treeID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete family tree")
	}

	s.logger.Info("family tree deleted",
		zap.String("treeID", treeID.String()),
		zap.String("ownerID", ownerID),
	)
	return nil
}

// Export renders the tree's full graph for visualization
func (s *TreeService) Export(ctx context.Context, treeID valueobjects.TreeID) (*GraphExport, error) {
	s.locks.RLock(treeID)
	defer s.locks.RUnlock(treeID)

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(g), nil
}

// Suggestions runs the inference engine over the tree's current graph
func (s *TreeService) Suggestions(ctx context.Context, treeID valueobjects.TreeID) ([]Suggestion, error) {
	s.locks.RLock(treeID)
	defer s.locks.RUnlock(treeID)

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	return s.inference.Infer(g), nil
}
