// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package batch is the batch coordinator (component G): the single
// entry point through which chainmutate and applyblock stage writes
// across metadb, blobdb, urkel and cachelayer, and commit them in the
// fixed order that keeps the five stores consistent even if the
// process dies mid-commit.
package batch

import (
	"sync"

	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
)

// Coordinator owns one in-flight batch at a time, mirroring
// storage/access.go's AccessData single-active-batch discipline but
// spanning all five stores instead of one leveldb database.
//
// The tree transaction is the one piece of batch state that outlives a
// single Commit: the authenticated tree only flushes to disk once per
// treeInterval, so treeTxn keeps accumulating Insert/Remove calls
// across every batch in between, and Commit only calls treeTxn.Commit
// when the batch's entry lands on an interval boundary.
type Coordinator struct {
	meta   *metadb.Store
	blobs  *blobdb.Store
	tree   *urkel.Tree
	caches *cachelayer.Caches
	state  *chainstate.StateCache

	mu     sync.Mutex
	active bool

	metaBatch *metadb.Batch
	blobBatch *blobdb.Batch
	treeTxn   *urkel.Txn

	// treeCheckpoint is the tree txn's root as of Start, restored by
	// Drop so an aborted batch can't leak into the next one's starting
	// state.
	treeCheckpoint urkel.Hash

	pendingChain chainstate.ChainState
	pendingTree  chainstate.TreeState
}

// New builds a Coordinator over the given stores.
func New(meta *metadb.Store, blobs *blobdb.Store, tree *urkel.Tree, caches *cachelayer.Caches, state *chainstate.StateCache) *Coordinator {
	return &Coordinator{meta: meta, blobs: blobs, tree: tree, caches: caches, state: state}
}

// Start opens a new batch. It fails if one is already in flight —
// chaindb is single-writer, so this is a programming-error guard, not
// a contention path.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return chainerr.ErrBatchInUse
	}
	c.metaBatch = metadb.NewBatch(c.meta)
	if err := c.metaBatch.Begin(); err != nil {
		return err
	}
	c.blobBatch = c.blobs.NewBatch()
	if c.treeTxn == nil {
		c.treeTxn = c.tree.Txn()
	}
	c.treeCheckpoint = c.treeTxn.RootHash()
	snap := c.state.Load()
	c.pendingChain = snap.Chain
	c.pendingTree = snap.Tree
	c.active = true
	return nil
}

// Meta exposes the in-flight metadb batch for staging KV writes.
func (c *Coordinator) Meta() *metadb.Batch { return c.metaBatch }

// Blobs exposes the in-flight blob batch for staging block/undo writes
// and prunes.
func (c *Coordinator) Blobs() *blobdb.Batch { return c.blobBatch }

// Tree exposes the in-flight tree transaction for name-state
// insert/remove.
func (c *Coordinator) Tree() *urkel.Txn { return c.treeTxn }

// Caches exposes the read caches for staging entry/coin writes.
func (c *Coordinator) Caches() *cachelayer.Caches { return c.caches }

// PendingChain returns the batch's working ChainState, seeded from the
// state cache at Start and mutated in place by the caller.
func (c *Coordinator) PendingChain() *chainstate.ChainState { return &c.pendingChain }

// PendingTree returns the batch's working TreeState.
func (c *Coordinator) PendingTree() *chainstate.TreeState { return &c.pendingTree }

// InUse reports whether a batch is currently open.
func (c *Coordinator) InUse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// RevertTree discards everything the tree transaction has accumulated
// since the last interval commit and rewinds it to root. Disconnect
// uses this at an interval boundary: a whole interval's writes were
// only ever flushed as one blob, so undoing the boundary block means
// discarding the interval's accumulated deltas wholesale rather than
// replaying them one at a time; the txn's own deltas can't recover a
// root that was never independently committed.
func (c *Coordinator) RevertTree(root urkel.Hash) {
	c.treeTxn.Rollback(root)
}

// RebuildTree replaces the coordinator's long-lived tree transaction
// with a fresh one rooted at the tree's current root. Required after
// any Tree.Inject/Tree.Compact call made directly against the tree
// outside the coordinator (CompactTree), since those move the root or
// swap the store handle out from under a Txn captured earlier.
func (c *Coordinator) RebuildTree() {
	c.treeTxn = c.tree.Txn()
}

// Drop discards every staged write across all five stores without
// committing anything.
func (c *Coordinator) Drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.metaBatch.Drop()
	c.blobBatch.Clear()
	c.caches.Drop()
	c.treeTxn.Rollback(c.treeCheckpoint)
	c.active = false
}

// Commit applies the batch in a fixed order chosen so a crash mid-way
// never leaves the five stores inconsistent:
//
//  0. when entry.height % treeInterval == 0, flush the tree
//     transaction (its own database; doing this first means a crash
//     before step 2 just leaves unreferenced tree nodes, never a
//     dangling TreeState root); otherwise leave it accumulating
//     in-memory for the rest of the interval
//  1. commit blob writes
//  2. commit the metadb batch (ChainState/TreeState included)
//  3. swap ChainState into the live StateCache, if pending.Committed
//  4. swap TreeState into the live StateCache, if pending.Committed
//  5. advance the tree's live root pointer to match, if it changed
//  6. promote staged cache writes
//  7. commit blob prunes
//
// A failure at any step before 2 leaves the database exactly as it was
// before Commit was called (metadb never wrote the new state record).
// A failure at or after step 2 leaves the metadb record ahead of the
// in-memory StateCache/caches, which the next Open's Load reconciles.
func (c *Coordinator) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return chainerr.ErrNoBatch
	}

	treeAdvanced := false
	if c.pendingTree.Committed {
		newRoot, err := c.treeTxn.Commit()
		if err != nil {
			return err
		}
		c.pendingTree.TreeRoot = newRoot
		treeAdvanced = true
	}

	if err := c.blobBatch.CommitWrites(); err != nil {
		return err
	}

	chainstate.StageChainState(c.metaBatch, c.pendingChain)
	chainstate.StageTreeState(c.metaBatch, c.pendingTree)
	if err := c.metaBatch.Commit(); err != nil {
		return err
	}

	c.state.SwapChain(c.pendingChain)
	c.state.SwapTree(c.pendingTree)

	if treeAdvanced {
		if err := c.tree.Inject(c.pendingTree.TreeRoot); err != nil {
			return err
		}
	}

	c.caches.Commit()

	if err := c.blobBatch.CommitPrunes(); err != nil {
		return err
	}

	c.metaBatch.Reset()
	c.blobBatch.Clear()
	c.active = false
	return nil
}
