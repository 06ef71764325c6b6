package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lineage-backend/domain/config"
	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	"lineage-backend/infrastructure/persistence/memory"
)

// testEnv wires the service layer against the in-memory driver, the same
// composition the dev profile runs with.
type testEnv struct {
	tree          *entities.FamilyTree
	treeRepo      *memory.TreeRepository
	personRepo    *memory.PersonRepository
	relRepo       *memory.RelationshipRepository
	loader        *GraphLoader
	locks         *TreeLockManager
	cfg           config.DomainConfig
	people        *PersonService
	relationships *RelationshipService
	traversal     *TraversalService
	trees         *TreeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, *config.DefaultDomainConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg config.DomainConfig) *testEnv {
	t.Helper()

	store := memory.NewStore()
	treeRepo := memory.NewTreeRepository(store)
	personRepo := memory.NewPersonRepository(store)
	relRepo := memory.NewRelationshipRepository(store)

	logger := zap.NewNop()
	loader := NewGraphLoader(treeRepo, personRepo, relRepo)
	locks := NewTreeLockManager()
	validator := NewRelationshipValidator(cfg, logger)

	tree, err := entities.NewFamilyTree("user-1", "Test Tree", "")
	require.NoError(t, err)
	require.NoError(t, treeRepo.Save(context.Background(), tree))

	return &testEnv{
		tree:       tree,
		treeRepo:   treeRepo,
		personRepo: personRepo,
		relRepo:    relRepo,
		loader:     loader,
		locks:      locks,
		cfg:        cfg,
		people:     NewPersonService(treeRepo, personRepo, relRepo, locks, cfg, logger),
		relationships: NewRelationshipService(
			treeRepo, personRepo, relRepo, loader, validator, locks, cfg, logger,
		),
		traversal: NewTraversalService(loader, locks, cfg, logger),
		trees: NewTreeService(
			treeRepo, loader, NewExportService(), NewInferenceEngine(), locks, logger,
		),
	}
}

func (e *testEnv) addPerson(t *testing.T, first string) *entities.Person {
	t.Helper()
	name, err := valueobjects.NewPersonName(first, "Test", "")
	require.NoError(t, err)
	p, err := entities.NewPerson(e.tree.ID(), name, valueobjects.LifeDates{}, "", "", "")
	require.NoError(t, err)
	require.NoError(t, e.personRepo.Save(context.Background(), p))
	return p
}

func (e *testEnv) addParentOf(t *testing.T, parent, child *entities.Person) *entities.Relationship {
	t.Helper()
	diff := entities.GenerationParent
	r, err := entities.NewRelationship(
		e.tree.ID(), parent.ID(), child.ID(),
		entities.CategoryFamilyLine, "biological", &diff, nil, nil, "",
	)
	require.NoError(t, err)
	require.NoError(t, e.relRepo.Save(context.Background(), r))
	return r
}

func (e *testEnv) addLink(t *testing.T, a, b *entities.Person, category entities.Category, subtype string) *entities.Relationship {
	t.Helper()
	r, err := entities.NewRelationship(e.tree.ID(), a.ID(), b.ID(), category, subtype, nil, nil, nil, "")
	require.NoError(t, err)
	require.NoError(t, e.relRepo.Save(context.Background(), r))
	return r
}

func (e *testEnv) snapshot(t *testing.T) *aggregates.TreeGraph {
	t.Helper()
	g, err := e.loader.Load(context.Background(), e.tree.ID())
	require.NoError(t, err)
	return g
}

func personIDs(people []*entities.Person) map[string]bool {
	out := make(map[string]bool, len(people))
	for _, p := range people {
		out[p.ID().String()] = true
	}
	return out
}
