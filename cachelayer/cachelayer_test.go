// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cachelayer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/chainmodel"
)

func TestEntryCacheStagingNotVisibleUntilCommit(t *testing.T) {
	c, err := NewEntryCache(10)
	require.NoError(t, err)

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{1}}
	c.Stage(entry)

	got, ok := c.Get(entry.Hash)
	require.True(t, ok)
	require.Same(t, entry, got)

	c.Drop()
	_, ok = c.Get(entry.Hash)
	require.False(t, ok)

	c.Stage(entry)
	c.Commit()
	got, ok = c.Get(entry.Hash)
	require.True(t, ok)
	require.Same(t, entry, got)
}

func TestCoinCacheSpendRemoves(t *testing.T) {
	c, err := NewCoinCache(10)
	require.NoError(t, err)

	op := chainmodel.Outpoint{Hash: chainmodel.Hash{2}, Index: 0}
	coin := &chainmodel.CoinEntry{}
	c.Stage(op, coin)
	c.Commit()

	_, ok := c.Get(op)
	require.True(t, ok)

	c.StageSpend(op)
	_, ok = c.Get(op)
	require.False(t, ok)

	c.Commit()
	_, ok = c.Get(op)
	require.False(t, ok)
}

func TestHeightIndexRoundTrip(t *testing.T) {
	c, err := NewHeightIndex(10)
	require.NoError(t, err)

	c.Stage(5, chainmodel.Hash{9})
	c.Commit()

	h, ok := c.Get(5)
	require.True(t, ok)
	require.Equal(t, chainmodel.Hash{9}, h)
}
