package services

import (
	"sync"

	"lineage-backend/domain/core/valueobjects"
)

// TreeLockManager serializes mutations per family tree. Validation plus write
// must be atomic with respect to other writers on the same tree; trees are
// disjoint, so writers on different trees never contend.
type TreeLockManager struct {
	mu    sync.Mutex
	locks map[valueobjects.TreeID]*sync.RWMutex
}

// NewTreeLockManager creates a new lock manager
func NewTreeLockManager() *TreeLockManager {
	return &TreeLockManager{
		locks: make(map[valueobjects.TreeID]*sync.RWMutex),
	}
}

func (m *TreeLockManager) lockFor(treeID valueobjects.TreeID) *sync.RWMutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[treeID]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[treeID] = l
	}
	return l
}

// Lock acquires the write lock for a tree
func (m *TreeLockManager) Lock(treeID valueobjects.TreeID) {
	m.lockFor(treeID).Lock()
}

// Unlock releases the write lock for a tree
func (m *TreeLockManager) Unlock(treeID valueobjects.TreeID) {
	m.lockFor(treeID).Unlock()
}

// RLock acquires the read lock for a tree
func (m *TreeLockManager) RLock(treeID valueobjects.TreeID) {
	m.lockFor(treeID).RLock()
}

// RUnlock releases the read lock for a tree
func (m *TreeLockManager) RUnlock(treeID valueobjects.TreeID) {
	m.lockFor(treeID).RUnlock()
}
