// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cachelayer holds the LRU entry and coin caches (component F):
// size-bounded, batch-staged read caches sitting in front of metadb, in
// the "own put/get/delete plus a staging overlay" shape of the
// teacher's cache/setup.go poolData, but backed by a real LRU
// (hashicorp/golang-lru) rather than a TTL map, since chaindb's caches
// must stay size-bounded under sustained sync load.
package cachelayer

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/bitmark-inc/chaindb/chainmodel"
)

type stagedEntry struct {
	entry   *chainmodel.ChainEntry
	deleted bool
}

// EntryCache caches ChainEntry records by block hash.
type EntryCache struct {
	lru    *lru.Cache
	staged map[chainmodel.Hash]*stagedEntry
}

// NewEntryCache allocates an entry cache holding at most size entries.
func NewEntryCache(size int) (*EntryCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &EntryCache{lru: c, staged: make(map[chainmodel.Hash]*stagedEntry)}, nil
}

// Get returns the cached entry for hash, checking the current batch's
// staged writes before falling through to the committed LRU.
func (c *EntryCache) Get(hash chainmodel.Hash) (*chainmodel.ChainEntry, bool) {
	if s, ok := c.staged[hash]; ok {
		if s.deleted {
			return nil, false
		}
		return s.entry, true
	}
	v, ok := c.lru.Get(hash)
	if !ok {
		return nil, false
	}
	return v.(*chainmodel.ChainEntry), true
}

// Stage records entry as a pending write, visible to Get immediately
// but not promoted into the LRU until Commit.
func (c *EntryCache) Stage(entry *chainmodel.ChainEntry) {
	c.staged[entry.Hash] = &stagedEntry{entry: entry}
}

// StageDelete records hash as a pending removal.
func (c *EntryCache) StageDelete(hash chainmodel.Hash) {
	c.staged[hash] = &stagedEntry{deleted: true}
}

// Drop discards all staged writes without touching the committed LRU.
func (c *EntryCache) Drop() {
	c.staged = make(map[chainmodel.Hash]*stagedEntry)
}

// Evict removes hash directly from the committed LRU, bypassing the
// staging overlay, for callers that mutate metadb outside the batch
// coordinator (e.g. Reset's alternate-branch cleanup).
func (c *EntryCache) Evict(hash chainmodel.Hash) {
	c.lru.Remove(hash)
}

// Commit promotes every staged write into the committed LRU.
func (c *EntryCache) Commit() {
	for hash, s := range c.staged {
		if s.deleted {
			c.lru.Remove(hash)
		} else {
			c.lru.Add(hash, s.entry)
		}
	}
	c.staged = make(map[chainmodel.Hash]*stagedEntry)
}
