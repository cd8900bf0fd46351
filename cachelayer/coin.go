// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cachelayer

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/bitmark-inc/chaindb/chainmodel"
)

type stagedCoin struct {
	coin    *chainmodel.CoinEntry
	deleted bool
}

// CoinCache caches unspent CoinEntry records by outpoint. A spent coin
// is a cache removal, not a tombstone — the coin's undo record is what
// disconnect needs, not a cached "spent" marker.
type CoinCache struct {
	lru    *lru.Cache
	staged map[chainmodel.Outpoint]*stagedCoin
}

// NewCoinCache allocates a coin cache holding at most size entries.
func NewCoinCache(size int) (*CoinCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CoinCache{lru: c, staged: make(map[chainmodel.Outpoint]*stagedCoin)}, nil
}

// Get returns the cached coin at outpoint.
func (c *CoinCache) Get(op chainmodel.Outpoint) (*chainmodel.CoinEntry, bool) {
	if s, ok := c.staged[op]; ok {
		if s.deleted {
			return nil, false
		}
		return s.coin, true
	}
	v, ok := c.lru.Get(op)
	if !ok {
		return nil, false
	}
	return v.(*chainmodel.CoinEntry), true
}

// Stage records a pending coin write (new output created this batch).
func (c *CoinCache) Stage(op chainmodel.Outpoint, coin *chainmodel.CoinEntry) {
	c.staged[op] = &stagedCoin{coin: coin}
}

// StageSpend records a pending coin removal (output spent this batch).
func (c *CoinCache) StageSpend(op chainmodel.Outpoint) {
	c.staged[op] = &stagedCoin{deleted: true}
}

// Drop discards all staged writes.
func (c *CoinCache) Drop() {
	c.staged = make(map[chainmodel.Outpoint]*stagedCoin)
}

// Commit promotes staged writes into the committed LRU.
func (c *CoinCache) Commit() {
	for op, s := range c.staged {
		if s.deleted {
			c.lru.Remove(op)
		} else {
			c.lru.Add(op, s.coin)
		}
	}
	c.staged = make(map[chainmodel.Outpoint]*stagedCoin)
}
