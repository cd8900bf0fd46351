// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cachelayer

// Default cache sizes. These are the LRU capacity, not an entry-count
// guarantee — chaindb never needs the whole set resident, only the
// working set at the current tip.
const (
	DefaultEntrySize  = 10000
	DefaultHeightSize = 10000
	DefaultCoinSize   = 100000
)

// Caches bundles every read cache the batch coordinator promotes
// together on commit.
type Caches struct {
	Entries *EntryCache
	Heights *HeightIndex
	Coins   *CoinCache
}

// New allocates a Caches with the default sizes.
func New() (*Caches, error) {
	entries, err := NewEntryCache(DefaultEntrySize)
	if err != nil {
		return nil, err
	}
	heights, err := NewHeightIndex(DefaultHeightSize)
	if err != nil {
		return nil, err
	}
	coins, err := NewCoinCache(DefaultCoinSize)
	if err != nil {
		return nil, err
	}
	return &Caches{Entries: entries, Heights: heights, Coins: coins}, nil
}

// Drop discards all staged writes across every cache, used when a
// batch is abandoned.
func (c *Caches) Drop() {
	c.Entries.Drop()
	c.Heights.Drop()
	c.Coins.Drop()
}

// Commit promotes every cache's staged writes, used at step 6 of the
// batch coordinator's commit sequence.
func (c *Caches) Commit() {
	c.Entries.Commit()
	c.Heights.Commit()
	c.Coins.Commit()
}
