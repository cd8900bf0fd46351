// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainquery

import (
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/urkel"
	"github.com/bitmark-inc/chaindb/wire"
)

// GetCoin returns the unspent coin at op, checking the coin cache
// before falling through to metadb.
func (r *Reader) GetCoin(op chainmodel.Outpoint) (*chainmodel.CoinEntry, error) {
	if c, ok := r.caches.Coins.Get(op); ok {
		return c, nil
	}
	b, err := r.meta.Get(layout.CoinKey(op.Hash, op.Index))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrCoinNotFound
	}
	coin, err := wire.DecodeCoin(b)
	if err != nil {
		return nil, err
	}
	r.caches.Coins.Stage(op, coin)
	r.caches.Coins.Commit()
	return coin, nil
}

// ReadCoin bypasses the coin cache and reads op straight from metadb,
// for callers checking the cache's own consistency or otherwise
// wanting the store's ground truth.
func (r *Reader) ReadCoin(op chainmodel.Outpoint) (*chainmodel.CoinEntry, error) {
	b, err := r.meta.Get(layout.CoinKey(op.Hash, op.Index))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrCoinNotFound
	}
	return wire.DecodeCoin(b)
}

// GetTX resolves txid to its full transaction body via the indexTX
// table and the transaction's containing block. Requires indexTX.
func (r *Reader) GetTX(txid chainmodel.Hash) (*chainmodel.Transaction, error) {
	meta, err := r.GetTXMeta(txid)
	if err != nil {
		return nil, err
	}
	block, err := r.GetBlock(meta.BlockHash)
	if err != nil {
		return nil, err
	}
	if int(meta.Index) >= len(block.Transactions) {
		return nil, chainerr.ErrTXNotFound
	}
	return &block.Transactions[meta.Index], nil
}

// GetName returns the current name state for nameHash, reading the
// authenticated tree at the committed root.
func (r *Reader) GetName(nameHash chainmodel.Hash) (*chainmodel.NameState, error) {
	snap := r.state.Load()
	tsnap := r.tree.Snapshot(snap.Tree.TreeRoot)
	raw, found, err := tsnap.Get(nameHash[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, chainerr.ErrNameNotFound
	}
	return wire.DecodeName(raw)
}

// ProveName returns an authenticated proof of nameHash's presence or
// absence in the tree at the current committed root, verifiable by a
// light client that only trusts the root hash.
func (r *Reader) ProveName(nameHash chainmodel.Hash) (*urkel.Proof, chainmodel.Hash, error) {
	snap := r.state.Load()
	if snap.Flags.SPV {
		return nil, chainmodel.Hash{}, chainerr.ErrSPVMode
	}
	tsnap := r.tree.Snapshot(snap.Tree.TreeRoot)
	proof, err := tsnap.Prove(nameHash[:])
	if err != nil {
		return nil, chainmodel.Hash{}, err
	}
	return proof, snap.Tree.TreeRoot, nil
}

// GetTXMeta resolves a transaction hash to its containing block via the
// indexTX table. Returns chainerr.ErrTXNotFound if the tx index is not
// enabled or the transaction was never indexed.
func (r *Reader) GetTXMeta(txid chainmodel.Hash) (*chainmodel.TXMeta, error) {
	b, err := r.meta.Get(layout.TXMetaKey(txid))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrTXNotFound
	}
	return wire.DecodeTXMeta(b)
}
