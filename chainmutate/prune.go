// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
)

// Prune deletes block and undo blobs for every main-chain height in
// [pruneAfterHeight+1, tip.height-keepBlocks], then marks the database
// pruned. Returns false without mutating anything unless the range's
// end lies strictly above its start, so an empty range and a
// single-height range are both left alone.
//
// This runs its own two-phase commit instead of going through the
// shared batch coordinator: the blob deletions must be durable before
// the O record's prune bit flips, which is the opposite order from
// Coordinator.Commit's fixed metadb-then-blobs sequencing. If the
// process dies between the two, a rerun just resumes — deleting an
// already-missing blob is a goleveldb no-op, so the blob-prune loop is
// idempotent.
func (e *Engine) Prune(keepBlocks, pruneAfterHeight chainmodel.Height) (bool, error) {
	if e.coord.InUse() {
		return false, chainerr.ErrBatchInUse
	}

	snap := e.state.Load()
	if snap.Flags.SPV {
		return false, chainerr.ErrSPVMode
	}
	if snap.Flags.Prune {
		return false, chainerr.ErrAlreadyPruned
	}

	tip, err := e.loadEntry(snap.Chain.Tip)
	if err != nil {
		return false, err
	}
	if tip.Height < keepBlocks {
		return false, nil
	}
	end := tip.Height - keepBlocks
	start := pruneAfterHeight + 1
	if end <= start {
		return false, nil
	}

	blobBatch := e.blobs.NewBatch()
	for h := start; h <= end; h++ {
		hashBytes, err := e.meta.Get(layout.HeightKey(uint32(h)))
		if err != nil {
			return false, err
		}
		if hashBytes == nil {
			continue
		}
		var hash chainmodel.Hash
		copy(hash[:], hashBytes)
		blobBatch.PruneBlock(hash)
		blobBatch.PruneUndo(hash)
	}
	if err := blobBatch.CommitPrunes(); err != nil {
		return false, err
	}

	pf := snap.Flags
	pf.Prune = true
	if err := e.meta.Put(layout.FlagsKey(), pf.Encode()); err != nil {
		return false, err
	}
	e.state.SwapFlags(pf)
	return true, nil
}
