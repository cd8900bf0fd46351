// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"github.com/bitmark-inc/chaindb/applyblock"
	"github.com/bitmark-inc/chaindb/chain"
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/wire"
)

// Disconnect reverts the block at hash off the main chain, restoring
// its spent inputs from the block's undo log and reverting any
// name-state changes it made, then moves the tip back to the block's
// parent. The block itself is kept as a reconnectable alternate-chain
// entry (h/e-record and block blob survive).
func (e *Engine) Disconnect(hash chainmodel.Hash) error {
	return e.disconnect(hash, false)
}

// disconnect is Disconnect's shared implementation. When permanent is
// set, the mode Reset's per-block step uses, hash's h/e-records and
// block blob are deleted outright instead of being kept as a
// reconnectable alternate, since a reset abandons the block rather
// than forking off it.
func (e *Engine) disconnect(hash chainmodel.Hash, permanent bool) error {
	entry, err := e.loadEntry(hash)
	if err != nil {
		return err
	}
	block, err := e.loadBlock(hash)
	if err != nil {
		return err
	}

	undoRaw, err := e.blobs.ReadUndo(hash)
	if err != nil {
		return err
	}
	if undoRaw == nil {
		return chainerr.ErrCoinNotFound
	}
	entries, err := wire.DecodeUndo(undoRaw)
	if err != nil {
		return err
	}

	var nameUndo chainmodel.NameUndo
	nameUndoRaw, err := e.meta.Get(layout.NameUndoKey(uint32(entry.Height)))
	if err != nil {
		return err
	}
	if nameUndoRaw != nil {
		parsed, err := wire.DecodeNameUndo(nameUndoRaw)
		if err != nil {
			return err
		}
		nameUndo = *parsed
	}

	view := chainmodel.NewCoinView()
	view.Undo = chainmodel.UndoCoinsFromEntries(entries)

	if err := e.coord.Start(); err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			e.coord.Drop()
		}
	}()

	flags := e.state.Load().Flags
	cs := e.coord.PendingChain()
	if err := applyblock.DisconnectBlock(view, cs, entry.Height, block); err != nil {
		return err
	}
	if !view.Undo.Empty() {
		chainerr.Corrupt("undo stream not empty after disconnecting %x", hash[:])
	}
	applyblock.DisconnectNames(view, nameUndo)
	if err := applyblock.SaveNames(view, e.coord.Tree()); err != nil {
		return err
	}
	applyblock.SaveView(view, e.coord.Meta(), e.coord.Caches(), nil, flags.IndexTX, flags.IndexAddress)
	if flags.IndexTX {
		for i := range block.Transactions {
			e.coord.Meta().Delete(layout.TXMetaKey(block.Transactions[i].Hash))
		}
	}

	cs.Tip = entry.PrevBlock
	cs.Committed = true

	// The tree only ever flushes at an interval boundary, so undoing it
	// only makes sense there too: everything since the previous boundary
	// was never individually committed, and the txn deltas SaveNames
	// just replayed can't reconstruct that prior root on their own, so
	// the whole interval is discarded at once by RevertTree, which rolls
	// the open txn back to the interval's anchor root. Between
	// boundaries the block's own delta was applied directly into the
	// still-open, still-uncommitted txn above and nothing further is
	// required.
	treeInterval := chainmodel.Height(chain.TreeInterval(flags.Network))
	pt := e.coord.PendingTree()
	if entry.Height%treeInterval == 0 {
		e.coord.RevertTree(entry.TreeRoot)
		pt.TreeRoot = entry.TreeRoot
		pt.Committed = true
		if entry.Height >= treeInterval {
			pt.CommitHeight = entry.Height - treeInterval
		} else {
			pt.CommitHeight = 0
		}
	} else {
		pt.Committed = false
	}

	e.coord.Meta().Put(layout.TipKey(entry.PrevBlock), nil)
	e.coord.Meta().Delete(layout.TipKey(hash))
	e.coord.Meta().Delete(layout.HeightKey(entry.Height))
	e.coord.Meta().Delete(layout.NextKey(entry.PrevBlock))
	e.coord.Meta().Delete(layout.NameUndoKey(uint32(entry.Height)))
	e.coord.Blobs().DeleteUndo(hash)
	e.coord.Caches().Heights.StageDelete(entry.Height)

	if permanent {
		e.coord.Meta().Delete(layout.HashKey(hash))
		e.coord.Meta().Delete(layout.EntryKey(hash))
		e.coord.Blobs().PruneBlock(hash)
		e.coord.Caches().Entries.StageDelete(hash)
	}

	if err := e.coord.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
