// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainmutate is the chain-mutation engine (component H):
// save, reconnect, disconnect, reset, prune and compactTree, each
// driven through the batch coordinator so a crash mid-operation never
// leaves the five stores inconsistent.
package chainmutate

import (
	"encoding/binary"

	"github.com/bitmark-inc/chaindb/applyblock"
	"github.com/bitmark-inc/chaindb/batch"
	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chain"
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
	"github.com/bitmark-inc/chaindb/wire"
)

// Engine wires the five stores together behind the batch coordinator.
type Engine struct {
	meta   *metadb.Store
	blobs  *blobdb.Store
	tree   *urkel.Tree
	caches *cachelayer.Caches
	state  *chainstate.StateCache
	coord  *batch.Coordinator
}

// New builds an Engine over already-open stores.
func New(meta *metadb.Store, blobs *blobdb.Store, tree *urkel.Tree, caches *cachelayer.Caches, state *chainstate.StateCache) *Engine {
	return &Engine{
		meta:   meta,
		blobs:  blobs,
		tree:   tree,
		caches: caches,
		state:  state,
		coord:  batch.New(meta, blobs, tree, caches, state),
	}
}

// buildTXMeta returns the block-position record for every transaction
// in block, keyed by tx hash, or nil when indexTX is off (SaveView
// never touches the "t" table in that case, so building the map would
// just be wasted work).
func buildTXMeta(entry *chainmodel.ChainEntry, block *chainmodel.Block, indexTX bool) map[chainmodel.Hash]chainmodel.TXMeta {
	if !indexTX {
		return nil
	}
	txMeta := make(map[chainmodel.Hash]chainmodel.TXMeta, len(block.Transactions))
	for i := range block.Transactions {
		txMeta[block.Transactions[i].Hash] = chainmodel.TXMeta{
			BlockHash: entry.Hash,
			Height:    entry.Height,
			Index:     uint32(i),
		}
	}
	return txMeta
}

func heightBytes(h chainmodel.Height) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(h))
	return b
}

// Save persists entry and block, and — when view is non-nil — connects
// the block onto the main chain (store-and-connect mode). Passing a nil
// view is store-only mode: the block is durable but not yet part of
// the main chain, used while a competing branch's validity is still
// being decided.
func (e *Engine) Save(entry *chainmodel.ChainEntry, block *chainmodel.Block, view *chainmodel.CoinView) error {
	if err := e.coord.Start(); err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			e.coord.Drop()
		}
	}()

	e.coord.Meta().Put(layout.EntryKey(entry.Hash), wire.EncodeEntry(entry))
	e.coord.Meta().Put(layout.HashKey(entry.Hash), heightBytes(entry.Height))
	e.coord.Blobs().WriteBlock(entry.Hash, wire.EncodeBlock(block))
	e.coord.Caches().Entries.Stage(entry)

	if view != nil {
		if err := e.connect(entry, block, view); err != nil {
			return err
		}
	}

	if err := e.coord.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Reconnect re-applies a previously store-only block onto the main
// chain. The block and entry are already durable, so only the
// connect-side bookkeeping runs.
func (e *Engine) Reconnect(entry *chainmodel.ChainEntry, block *chainmodel.Block, view *chainmodel.CoinView) error {
	if err := e.coord.Start(); err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			e.coord.Drop()
		}
	}()

	if err := e.connect(entry, block, view); err != nil {
		return err
	}

	if err := e.coord.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// connect performs the shared UTXO/name-tree/tip bookkeeping for
// Save(view != nil) and Reconnect.
func (e *Engine) connect(entry *chainmodel.ChainEntry, block *chainmodel.Block, view *chainmodel.CoinView) error {
	snap := e.state.Load()
	cs := e.coord.PendingChain()

	if err := applyblock.ConnectBlock(view, cs, entry.Height, block); err != nil {
		return err
	}

	reader := applyblock.NewTreeNameReader(e.tree.Snapshot(snap.Tree.TreeRoot))
	var undo chainmodel.NameUndo
	for i := range block.Transactions {
		u, err := applyblock.ConnectNames(view, reader, entry.Height, &block.Transactions[i])
		if err != nil {
			return err
		}
		undo.Deltas = append(undo.Deltas, u.Deltas...)
	}
	if err := applyblock.SaveNames(view, e.coord.Tree()); err != nil {
		return err
	}
	if !undo.Empty() {
		e.coord.Meta().Put(layout.NameUndoKey(uint32(entry.Height)), wire.EncodeNameUndo(&undo))
	}

	applyblock.SaveView(view, e.coord.Meta(), e.coord.Caches(), buildTXMeta(entry, block, snap.Flags.IndexTX), snap.Flags.IndexTX, snap.Flags.IndexAddress)
	e.coord.Blobs().WriteUndo(entry.Hash, wire.EncodeUndo(view.Undo.Entries()))

	if !view.Bits.Empty() {
		if err := e.applyBitFieldDelta(view.Bits); err != nil {
			return err
		}
	}

	cs.Tip = entry.Hash
	cs.Committed = true

	pt := e.coord.PendingTree()
	if entry.Height%chainmodel.Height(chain.TreeInterval(snap.Flags.Network)) == 0 {
		pt.Committed = true
		pt.CommitHeight = entry.Height
	} else {
		pt.Committed = false
	}

	e.coord.Meta().Put(layout.NextKey(entry.PrevBlock), entry.Hash[:])
	e.coord.Meta().Delete(layout.TipKey(entry.PrevBlock))
	e.coord.Meta().Put(layout.TipKey(entry.Hash), nil)
	e.coord.Meta().Put(layout.HeightKey(entry.Height), entry.Hash[:])
	e.coord.Caches().Heights.Stage(entry.Height, entry.Hash)

	return nil
}

// applyBitFieldDelta merges a block's claim-allocation bit changes into
// the persisted "f" record. Bits are one-way (a claimed allocation
// index is never unclaimed), so unlike coins and names this is not
// reverted on disconnect.
func (e *Engine) applyBitFieldDelta(delta chainmodel.BitFieldDelta) error {
	raw, err := e.meta.Get(layout.BitFieldKey())
	if err != nil {
		return err
	}
	var field *chainmodel.BitField
	if raw == nil {
		field = chainmodel.NewBitField(0)
	} else {
		field, err = wire.DecodeBitField(raw)
		if err != nil {
			return err
		}
	}
	delta.Apply(field)
	e.coord.Meta().Put(layout.BitFieldKey(), wire.EncodeBitField(field))
	return nil
}

// loadEntry reads a ChainEntry directly from metadb, bypassing the
// cache (chainquery is the cache-aware read path; chainmutate always
// wants the ground truth while mutating).
func (e *Engine) loadEntry(hash chainmodel.Hash) (*chainmodel.ChainEntry, error) {
	b, err := e.meta.Get(layout.EntryKey(hash))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrEntryNotFound
	}
	return wire.DecodeEntry(b)
}

func (e *Engine) loadBlock(hash chainmodel.Hash) (*chainmodel.Block, error) {
	b, err := e.blobs.ReadBlock(hash)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrBlockNotFound
	}
	return wire.DecodeBlock(b)
}
