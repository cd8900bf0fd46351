// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainquery

import (
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/wire"
)

// Filter reports whether tx matches a caller's search criteria (e.g. a
// bloom filter over addresses/outpoints). scan calls it once per
// transaction in each visited block.
type Filter func(tx *chainmodel.Transaction) bool

// Iter is invoked once per visited block, in ascending height order,
// with the subset of the block's transactions the filter matched. A
// pruned block invokes iter with an empty (never nil-vs-empty
// distinguishing) match list rather than erroring. Returning an error
// stops the scan.
type Iter func(entry *chainmodel.ChainEntry, matched []*chainmodel.Transaction) error

// Scan walks the main chain from start (inclusive) to the current tip,
// applying filter to every transaction of every visited block and
// invoking iter once per block.
func (r *Reader) Scan(start chainmodel.Hash, filter Filter, iter Iter) error {
	entry, err := r.GetEntry(start)
	if err != nil {
		return err
	}
	for {
		matched, err := r.scanBlockTxs(entry, filter)
		if err != nil {
			return err
		}
		if err := iter(entry, matched); err != nil {
			return err
		}
		next, err := r.GetNext(entry.Hash)
		if err != nil {
			if chainerr.IsNotFound(err) {
				return nil
			}
			return err
		}
		entry, err = r.GetEntry(next)
		if err != nil {
			return err
		}
	}
}

func (r *Reader) scanBlockTxs(entry *chainmodel.ChainEntry, filter Filter) ([]*chainmodel.Transaction, error) {
	block, err := r.GetBlock(entry.Hash)
	if err != nil {
		if chainerr.IsNotFound(err) {
			// pruned: invoke iter with no matches rather than error.
			return nil, nil
		}
		return nil, err
	}
	var matched []*chainmodel.Transaction
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if filter == nil || filter(tx) {
			matched = append(matched, tx)
		}
	}
	return matched, nil
}

// ScanBlock applies filter to a single already-known block's
// transactions without walking the chain, for callers that already
// have the entry in hand (e.g. a wallet rescanning one confirmed
// block).
func (r *Reader) ScanBlock(entry *chainmodel.ChainEntry, filter Filter) ([]*chainmodel.Transaction, error) {
	return r.scanBlockTxs(entry, filter)
}

// GetNext returns the hash of the main-chain block built on top of
// hash, or chainerr.ErrEntryNotFound if hash is currently the tip (or
// off-main).
func (r *Reader) GetNext(hash chainmodel.Hash) (chainmodel.Hash, error) {
	b, err := r.meta.Get(layout.NextKey(hash))
	if err != nil {
		return chainmodel.Hash{}, err
	}
	if b == nil {
		return chainmodel.Hash{}, chainerr.ErrEntryNotFound
	}
	var next chainmodel.Hash
	copy(next[:], b)
	return next, nil
}

// GetNextEntry resolves GetNext straight through to the full entry.
func (r *Reader) GetNextEntry(hash chainmodel.Hash) (*chainmodel.ChainEntry, error) {
	next, err := r.GetNext(hash)
	if err != nil {
		return nil, err
	}
	return r.GetEntry(next)
}

// GetPrevious returns entry's parent.
func (r *Reader) GetPrevious(entry *chainmodel.ChainEntry) (*chainmodel.ChainEntry, error) {
	if entry.IsGenesis() {
		return nil, chainerr.ErrEntryNotFound
	}
	return r.GetEntry(entry.PrevBlock)
}

// GetTips returns every recorded chain tip (main and alternate),
// scanning the "p" table.
func (r *Reader) GetTips() ([]chainmodel.Hash, error) {
	prefix := layout.TipPrefix()
	var out []chainmodel.Hash
	err := r.meta.ScanPrefix(prefix, layout.RangeUpperBound(prefix), func(key, value []byte) bool {
		var h chainmodel.Hash
		copy(h[:], key)
		out = append(out, h)
		return true
	})
	return out, err
}

// HasEntry reports whether hash has a stored entry.
func (r *Reader) HasEntry(hash chainmodel.Hash) (bool, error) {
	if _, ok := r.caches.Entries.Get(hash); ok {
		return true, nil
	}
	return r.meta.Has(layout.EntryKey(hash))
}

// HasCoins reports whether op is currently unspent.
func (r *Reader) HasCoins(op chainmodel.Outpoint) (bool, error) {
	if _, ok := r.caches.Coins.Get(op); ok {
		return true, nil
	}
	return r.meta.Has(layout.CoinKey(op.Hash, op.Index))
}

// HasTX reports whether txid is indexed (requires indexTX).
func (r *Reader) HasTX(txid chainmodel.Hash) (bool, error) {
	return r.meta.Has(layout.TXMetaKey(txid))
}

// GetUndoCoins returns the raw undo entries for a connected block.
func (r *Reader) GetUndoCoins(hash chainmodel.Hash) ([]chainmodel.UndoEntry, error) {
	b, err := r.blobs.ReadUndo(hash)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrBlockNotFound
	}
	return wire.DecodeUndo(b)
}

// TreeRoot returns the currently committed authenticated-tree root.
func (r *Reader) TreeRoot() chainmodel.Hash {
	return r.state.Load().Tree.TreeRoot
}
