// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
)

// Reset walks the main chain backward from the current tip to target,
// disconnecting and permanently discarding one block at a time.
// Unlike Disconnect, each rolled-back block is fully removed rather
// than kept as a reconnectable alternate: its h/e-records and block
// blob are deleted along with the usual n/H bookkeeping.
//
// Precondition: pruning is off, the tree is not compacted, and target
// must already be an ancestor of the current tip. This is checked with
// a read-only walk before anything is mutated, so a bad target fails
// without touching the chain.
func (e *Engine) Reset(target chainmodel.Hash) error {
	snap := e.state.Load()
	if snap.Flags.Prune {
		return chainerr.ErrPrunedResetForbidden
	}
	if snap.Tree.CompactionHeight != 0 {
		return chainerr.ErrTreeCompacted
	}

	tip := snap.Chain.Tip
	if err := e.verifyAncestor(tip, target); err != nil {
		return err
	}

	if err := e.removeChains(tip); err != nil {
		return err
	}

	for {
		tip = e.state.Load().Chain.Tip
		if tip == target {
			return nil
		}
		if err := e.disconnect(tip, true); err != nil {
			return err
		}
	}
}

// verifyAncestor confirms target lies on the chain of prevBlock links
// starting at tip, without mutating anything. It stops at genesis
// rather than walking past it.
func (e *Engine) verifyAncestor(tip, target chainmodel.Hash) error {
	hash := tip
	for {
		if hash == target {
			return nil
		}
		entry, err := e.loadEntry(hash)
		if err != nil {
			return err
		}
		if entry.IsGenesis() {
			return chainerr.ErrNotAncestor
		}
		hash = entry.PrevBlock
	}
}

// removeChains deletes every recorded tip other than mainTip, walking
// each one back through its h/e-records until it reaches a block that
// is still on the main chain (i.e. rejoins it), so a reset doesn't
// leave sibling branches' stale tip pointers and orphaned blocks
// behind.
func (e *Engine) removeChains(mainTip chainmodel.Hash) error {
	tips, err := e.readTips()
	if err != nil {
		return err
	}
	for _, tip := range tips {
		if tip == mainTip {
			continue
		}
		if err := e.removeChain(tip); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) readTips() ([]chainmodel.Hash, error) {
	prefix := layout.TipPrefix()
	var out []chainmodel.Hash
	err := e.meta.ScanPrefix(prefix, layout.RangeUpperBound(prefix), func(key, _ []byte) bool {
		var h chainmodel.Hash
		copy(h[:], key)
		out = append(out, h)
		return true
	})
	return out, err
}

// removeChain walks back from tip, deleting its blocks' tip/h/e
// records and block blobs, stopping as soon as it reaches a hash that
// is still indexed on the main chain.
func (e *Engine) removeChain(tip chainmodel.Hash) error {
	hash := tip
	for {
		entry, err := e.loadEntry(hash)
		if err != nil {
			if chainerr.IsNotFound(err) {
				return nil
			}
			return err
		}
		onMain, err := e.onMainChain(entry)
		if err != nil {
			return err
		}
		if onMain {
			return nil
		}

		mb := metadb.NewBatch(e.meta)
		if err := mb.Begin(); err != nil {
			return err
		}
		mb.Delete(layout.TipKey(hash))
		mb.Delete(layout.HashKey(hash))
		mb.Delete(layout.EntryKey(hash))
		if err := mb.Commit(); err != nil {
			return err
		}
		e.caches.Entries.Evict(hash)

		blobBatch := e.blobs.NewBatch()
		blobBatch.PruneBlock(hash)
		blobBatch.PruneUndo(hash)
		if err := blobBatch.CommitPrunes(); err != nil {
			return err
		}

		if entry.IsGenesis() {
			return nil
		}
		hash = entry.PrevBlock
	}
}

// onMainChain reports whether entry.Hash is the block currently
// indexed at entry.Height.
func (e *Engine) onMainChain(entry *chainmodel.ChainEntry) (bool, error) {
	b, err := e.meta.Get(layout.HeightKey(uint32(entry.Height)))
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}
	var h chainmodel.Hash
	copy(h[:], b)
	return h == entry.Hash, nil
}
