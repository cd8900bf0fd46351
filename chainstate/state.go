// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainstate holds the versioned aggregate records (component
// E): ChainState, TreeState, ChainFlags and the deployment table,
// together with a StateCache that gives readers a mutex-guarded,
// clone-on-write view across commits.
package chainstate

import (
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/wire"
)

// ChainState is the "R" record: chain-wide tip and accounting totals.
type ChainState struct {
	Tip       chainmodel.Hash
	TxCount   uint64
	CoinCount uint64
	Value     chainmodel.Amount
	Burned    chainmodel.Amount
	Committed bool
}

// Encode serializes s for storage under layout.ChainStateKey.
func (s ChainState) Encode() []byte {
	return wire.EncodeChainState(s.Tip, s.TxCount, s.CoinCount, uint64(s.Value), uint64(s.Burned), s.Committed)
}

// DecodeChainState parses a persisted "R" record.
func DecodeChainState(b []byte) (ChainState, error) {
	f, err := wire.DecodeChainState(b)
	if err != nil {
		return ChainState{}, err
	}
	return ChainState{
		Tip:       f.Tip,
		TxCount:   f.TxCount,
		CoinCount: f.CoinCount,
		Value:     chainmodel.Amount(f.Value),
		Burned:    chainmodel.Amount(f.Burned),
		Committed: f.Committed,
	}, nil
}

// TreeState is the "s" record: the tree's committed root and the
// heights it was last committed/compacted at.
type TreeState struct {
	TreeRoot         chainmodel.Hash
	CommitHeight     chainmodel.Height
	CompactionHeight chainmodel.Height
	Committed        bool
}

// Encode serializes s for storage under layout.TreeStateKey.
func (s TreeState) Encode() []byte {
	return wire.EncodeTreeState(s.TreeRoot, s.CommitHeight, s.CompactionHeight, s.Committed)
}

// DecodeTreeState parses a persisted "s" record.
func DecodeTreeState(b []byte) (TreeState, error) {
	f, err := wire.DecodeTreeState(b)
	if err != nil {
		return TreeState{}, err
	}
	return TreeState{
		TreeRoot:         f.TreeRoot,
		CommitHeight:     f.CommitHeight,
		CompactionHeight: f.CompactionHeight,
		Committed:        f.Committed,
	}, nil
}

// LoadChainState reads the "R" record, returning the zero value if
// absent (a fresh database).
func LoadChainState(store *metadb.Store) (ChainState, error) {
	b, err := store.Get(layout.ChainStateKey())
	if err != nil || b == nil {
		return ChainState{}, err
	}
	return DecodeChainState(b)
}

// LoadTreeState reads the "s" record, returning the zero value if
// absent.
func LoadTreeState(store *metadb.Store) (TreeState, error) {
	b, err := store.Get(layout.TreeStateKey())
	if err != nil || b == nil {
		return TreeState{}, err
	}
	return DecodeTreeState(b)
}

// StageChainState stages a write of s into a batch.
func StageChainState(b *metadb.Batch, s ChainState) {
	b.Put(layout.ChainStateKey(), s.Encode())
}

// StageTreeState stages a write of s into a batch.
func StageTreeState(b *metadb.Batch, s TreeState) {
	b.Put(layout.TreeStateKey(), s.Encode())
}
