// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"os"

	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/metadb"
)

// CompactTree rewrites the authenticated tree's backing store to keep
// only nodes reachable from entry's TreeRoot, then records the new
// compaction floor. It runs outside the normal batch coordinator
// because Compact replaces the tree's store handle outright, and an
// in-flight Txn captured against the old handle would write into a
// closed database.
//
// The "s" record is persisted twice: once before Inject/Compact touch
// anything, as a crash marker recording the target root and its commit
// height, and once after, marking the compaction complete. A process
// death between the two leaves the marker in place for recovery to
// resync against; a clean run simply overwrites it with the final
// state.
func (e *Engine) CompactTree(entry *chainmodel.ChainEntry, tmpDir string) error {
	if e.coord.InUse() {
		return chainerr.ErrBatchInUse
	}

	snap := e.state.Load()
	if snap.Tree.CompactionHeight == entry.Height && snap.Tree.TreeRoot == entry.TreeRoot {
		return chainerr.ErrAlreadyCompacted
	}

	marker := chainstate.TreeState{
		TreeRoot:         entry.TreeRoot,
		CommitHeight:     entry.Height - 1,
		CompactionHeight: snap.Tree.CompactionHeight,
		Committed:        true,
	}
	if err := e.putTreeState(marker); err != nil {
		return err
	}

	if err := os.RemoveAll(tmpDir); err != nil {
		return err
	}

	if err := e.tree.Inject(entry.TreeRoot); err != nil {
		return err
	}
	if err := e.tree.Compact(tmpDir); err != nil {
		return err
	}
	e.coord.RebuildTree()

	final := chainstate.TreeState{
		TreeRoot:         entry.TreeRoot,
		CommitHeight:     entry.Height - 1,
		CompactionHeight: entry.Height,
		Committed:        true,
	}
	return e.putTreeState(final)
}

// putTreeState commits ts as the "s" record in its own single-record
// batch and swaps it into the state cache.
func (e *Engine) putTreeState(ts chainstate.TreeState) error {
	mb := metadb.NewBatch(e.meta)
	if err := mb.Begin(); err != nil {
		return err
	}
	chainstate.StageTreeState(mb, ts)
	if err := mb.Commit(); err != nil {
		return err
	}
	e.state.SwapTree(ts)
	return nil
}
