// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate

import (
	"sync"

	"github.com/bitmark-inc/chaindb/metadb"
)

// Snapshot is a consistent, immutable view of every aggregate record at
// one instant. Readers hold a Snapshot for the duration of a read
// rather than re-reading StateCache field by field, so a concurrent
// commit can never hand back a torn mix of pre- and post-commit values.
type Snapshot struct {
	Chain       ChainState
	Tree        TreeState
	Flags       ChainFlags
	Deployments Deployments
}

// StateCache holds the chain's current Snapshot behind an RWMutex,
// swapping in a whole new Snapshot on commit (clone-then-swap, the same
// shape as block/setup.go's globalDataType) so readers
// never block behind writers for longer than a pointer copy.
type StateCache struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewStateCache builds a cache seeded with initial.
func NewStateCache(initial Snapshot) *StateCache {
	return &StateCache{current: &initial}
}

// Load returns the current snapshot.
func (c *StateCache) Load() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.current
}

// Stage returns a private copy of the current snapshot for a batch to
// mutate independently while other readers keep seeing the old one.
func (c *StateCache) Stage() Snapshot {
	return c.Load()
}

// SwapChain atomically replaces the ChainState half of the current
// snapshot, but only if pending.Committed — an uncommitted pending
// state must never become visible.
func (c *StateCache) SwapChain(pending ChainState) {
	if !pending.Committed {
		return
	}
	c.mu.Lock()
	next := *c.current
	next.Chain = pending
	c.current = &next
	c.mu.Unlock()
}

// SwapTree atomically replaces the TreeState half, gated the same way
// the same way.
func (c *StateCache) SwapTree(pending TreeState) {
	if !pending.Committed {
		return
	}
	c.mu.Lock()
	next := *c.current
	next.Tree = pending
	c.current = &next
	c.mu.Unlock()
}

// SwapFlags replaces the ChainFlags half. Flags are written directly
// (by SaveFlags and Prune), not through a batch, so this is not gated
// on a committed bit.
func (c *StateCache) SwapFlags(f ChainFlags) {
	c.mu.Lock()
	next := *c.current
	next.Flags = f
	c.current = &next
	c.mu.Unlock()
}

// SwapDeployments replaces the deployment table half.
func (c *StateCache) SwapDeployments(d Deployments) {
	c.mu.Lock()
	next := *c.current
	next.Deployments = d
	c.current = &next
	c.mu.Unlock()
}

// Load reads every aggregate record from store and returns the initial
// Snapshot for a freshly opened database.
func Load(store *metadb.Store) (Snapshot, error) {
	chain, err := LoadChainState(store)
	if err != nil {
		return Snapshot{}, err
	}
	tree, err := LoadTreeState(store)
	if err != nil {
		return Snapshot{}, err
	}
	flags, _, err := LoadFlags(store)
	if err != nil {
		return Snapshot{}, err
	}
	deployments, err := LoadDeployments(store)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Chain: chain, Tree: tree, Flags: flags, Deployments: deployments}, nil
}
