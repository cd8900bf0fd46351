// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainquery is the cache-aware read API (component J): entry
// and coin/name/address lookups layered over cachelayer, falling
// through to metadb/blobdb/urkel on a miss. Modeled on block/get.go
// and blockheader/get.go, which follow the same cache-then-store
// pattern over storage.Pool.
package chainquery

import (
	"encoding/binary"

	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
	"github.com/bitmark-inc/chaindb/wire"
)

// Reader is the read-only query surface over an open chaindb, wired
// against the same stores and caches a chainmutate.Engine mutates.
type Reader struct {
	meta   *metadb.Store
	blobs  *blobdb.Store
	tree   *urkel.Tree
	caches *cachelayer.Caches
	state  *chainstate.StateCache
}

// New builds a Reader over already-open stores.
func New(meta *metadb.Store, blobs *blobdb.Store, tree *urkel.Tree, caches *cachelayer.Caches, state *chainstate.StateCache) *Reader {
	return &Reader{meta: meta, blobs: blobs, tree: tree, caches: caches, state: state}
}

// GetEntry returns the chain entry for hash, checking the entry cache
// before falling through to metadb.
func (r *Reader) GetEntry(hash chainmodel.Hash) (*chainmodel.ChainEntry, error) {
	if e, ok := r.caches.Entries.Get(hash); ok {
		return e, nil
	}
	b, err := r.meta.Get(layout.EntryKey(hash))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrEntryNotFound
	}
	entry, err := wire.DecodeEntry(b)
	if err != nil {
		return nil, err
	}
	r.caches.Entries.Stage(entry)
	r.caches.Entries.Commit()
	return entry, nil
}

// GetHashByHeight resolves a main-chain height to its block hash,
// checking the height cache before falling through to metadb. Returns
// chainerr.ErrEntryNotFound if height is not (currently) on the main
// chain — a caller racing a reorg may see this immediately after a
// height it previously read successfully.
func (r *Reader) GetHashByHeight(height chainmodel.Height) (chainmodel.Hash, error) {
	if h, ok := r.caches.Heights.Get(height); ok {
		return h, nil
	}
	b, err := r.meta.Get(layout.HeightKey(uint32(height)))
	if err != nil {
		return chainmodel.Hash{}, err
	}
	if b == nil {
		return chainmodel.Hash{}, chainerr.ErrEntryNotFound
	}
	var hash chainmodel.Hash
	copy(hash[:], b)
	r.caches.Heights.Stage(height, hash)
	r.caches.Heights.Commit()
	return hash, nil
}

// GetEntryByHeight resolves a main-chain height to its full entry.
func (r *Reader) GetEntryByHeight(height chainmodel.Height) (*chainmodel.ChainEntry, error) {
	hash, err := r.GetHashByHeight(height)
	if err != nil {
		return nil, err
	}
	return r.GetEntry(hash)
}

// GetHeight resolves hash to its height via the h(hash) record. Unlike
// GetEntry it costs a lookup even when the entry is off the main
// chain, since the height cache is keyed the other way round.
func (r *Reader) GetHeight(hash chainmodel.Hash) (chainmodel.Height, error) {
	b, err := r.meta.Get(layout.HashKey(hash))
	if err != nil {
		return 0, err
	}
	if b == nil {
		return 0, chainerr.ErrEntryNotFound
	}
	return chainmodel.Height(binary.BigEndian.Uint32(b)), nil
}

// GetHashes returns the main-chain block hash for every height in
// [start, end], stopping (without error) at the first height that
// isn't currently indexed rather than requiring the whole range to be
// present.
func (r *Reader) GetHashes(start, end chainmodel.Height) ([]chainmodel.Hash, error) {
	var out []chainmodel.Hash
	for h := start; h <= end; h++ {
		hash, err := r.GetHashByHeight(h)
		if err != nil {
			if chainerr.IsNotFound(err) {
				break
			}
			return nil, err
		}
		out = append(out, hash)
	}
	return out, nil
}

// GetEntries resolves GetHashes straight through to the full entries.
func (r *Reader) GetEntries(start, end chainmodel.Height) ([]*chainmodel.ChainEntry, error) {
	hashes, err := r.GetHashes(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]*chainmodel.ChainEntry, 0, len(hashes))
	for _, hash := range hashes {
		entry, err := r.GetEntry(hash)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// GetBlock returns the full block body for hash from blobdb.
func (r *Reader) GetBlock(hash chainmodel.Hash) (*chainmodel.Block, error) {
	b, err := r.blobs.ReadBlock(hash)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrBlockNotFound
	}
	return wire.DecodeBlock(b)
}

// GetRawBlock returns hash's block exactly as stored, without paying
// for a decode, for callers that only relay the bytes onward (e.g. the
// P2P layer serving a getdata request).
func (r *Reader) GetRawBlock(hash chainmodel.Hash) ([]byte, error) {
	b, err := r.blobs.ReadBlock(hash)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, chainerr.ErrBlockNotFound
	}
	return b, nil
}

// IsMainChain reports whether hash is currently on the main chain: its
// entry exists and the height index resolves back to the same hash.
func (r *Reader) IsMainChain(hash chainmodel.Hash) (bool, error) {
	entry, err := r.GetEntry(hash)
	if err != nil {
		if chainerr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	atHeight, err := r.GetHashByHeight(entry.Height)
	if err != nil {
		if chainerr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return atHeight == hash, nil
}

// GetAncestor walks parent links from hash up to height, returning the
// entry at that height. It always walks PrevBlock links rather than
// trusting the height index, so it gives a correct answer even for a
// hash that is not (or no longer) on the main chain.
func (r *Reader) GetAncestor(hash chainmodel.Hash, height chainmodel.Height) (*chainmodel.ChainEntry, error) {
	entry, err := r.GetEntry(hash)
	if err != nil {
		return nil, err
	}
	if height > entry.Height {
		return nil, chainerr.ErrEntryNotFound
	}
	for entry.Height > height {
		entry, err = r.GetEntry(entry.PrevBlock)
		if err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// Tip returns the current main-chain tip entry.
func (r *Reader) Tip() (*chainmodel.ChainEntry, error) {
	snap := r.state.Load()
	if snap.Chain.Tip == chainmodel.ZeroHash {
		return nil, chainerr.ErrEntryNotFound
	}
	return r.GetEntry(snap.Chain.Tip)
}

// ChainState returns the current committed chain-wide counters.
func (r *Reader) ChainState() chainstate.ChainState {
	return r.state.Load().Chain
}

// Flags returns the current chain flags.
func (r *Reader) Flags() chainstate.ChainFlags {
	return r.state.Load().Flags
}
