// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cachelayer

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/bitmark-inc/chaindb/chainmodel"
)

type stagedHeight struct {
	hash    chainmodel.Hash
	deleted bool
}

// HeightIndex caches the main-chain hash at a given height, letting
// getEntryByHeight avoid a metadb round trip on the hot path.
type HeightIndex struct {
	lru    *lru.Cache
	staged map[chainmodel.Height]*stagedHeight
}

// NewHeightIndex allocates a height index holding at most size entries.
func NewHeightIndex(size int) (*HeightIndex, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &HeightIndex{lru: c, staged: make(map[chainmodel.Height]*stagedHeight)}, nil
}

// Get returns the cached main-chain hash at height.
func (c *HeightIndex) Get(height chainmodel.Height) (chainmodel.Hash, bool) {
	if s, ok := c.staged[height]; ok {
		if s.deleted {
			return chainmodel.Hash{}, false
		}
		return s.hash, true
	}
	v, ok := c.lru.Get(height)
	if !ok {
		return chainmodel.Hash{}, false
	}
	return v.(chainmodel.Hash), true
}

// Stage records height -> hash as a pending write.
func (c *HeightIndex) Stage(height chainmodel.Height, hash chainmodel.Hash) {
	c.staged[height] = &stagedHeight{hash: hash}
}

// StageDelete records height as a pending removal, used when a
// disconnect or reset shortens the main chain.
func (c *HeightIndex) StageDelete(height chainmodel.Height) {
	c.staged[height] = &stagedHeight{deleted: true}
}

// Drop discards all staged writes.
func (c *HeightIndex) Drop() {
	c.staged = make(map[chainmodel.Height]*stagedHeight)
}

// Commit promotes staged writes into the committed LRU.
func (c *HeightIndex) Commit() {
	for height, s := range c.staged {
		if s.deleted {
			c.lru.Remove(height)
		} else {
			c.lru.Add(height, s.hash)
		}
	}
	c.staged = make(map[chainmodel.Height]*stagedHeight)
}
