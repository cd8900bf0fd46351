// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
)

func saveChain(t *testing.T, e *Engine, heights int) {
	t.Helper()
	prev := chainmodel.Hash{}
	for h := 0; h < heights; h++ {
		entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{byte(h + 1)}, Height: chainmodel.Height(h), PrevBlock: prev}
		block := makeBlock(chainmodel.Hash{byte(h + 100)}, 10)
		require.NoError(t, e.Save(entry, block, chainmodel.NewCoinView()))
		prev = entry.Hash
	}
}

func TestPruneForbiddenInSPV(t *testing.T) {
	e := newTestEngineWithFlags(t, chainstate.ChainFlags{SPV: true})
	saveChain(t, e, 1)
	_, err := e.Prune(0, 0)
	require.Equal(t, chainerr.ErrSPVMode, err)
}

func TestPruneForbiddenWhenAlreadyPruned(t *testing.T) {
	e := newTestEngineWithFlags(t, chainstate.ChainFlags{Prune: true})
	saveChain(t, e, 1)
	_, err := e.Prune(0, 0)
	require.Equal(t, chainerr.ErrAlreadyPruned, err)
}

func TestPruneBoundaryReturnsFalseWithoutMutating(t *testing.T) {
	e := newTestEngine(t)
	saveChain(t, e, 2) // tip height 1

	ok, err := e.Prune(2, 0) // end = 1-2 underflow guard -> false
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, e.state.Load().Flags.Prune)
}

func TestPruneDeletesRangeAndSetsFlag(t *testing.T) {
	e := newTestEngine(t)
	saveChain(t, e, 6) // heights 0..5, tip height 5

	ok, err := e.Prune(2, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, e.state.Load().Flags.Prune)

	for h := 1; h <= 3; h++ {
		hash := chainmodel.Hash{byte(h + 1)}
		b, err := e.blobs.ReadBlock(hash)
		require.NoError(t, err)
		require.Nil(t, b, "height %d block should be pruned", h)
	}
	for _, h := range []int{0, 4, 5} {
		hash := chainmodel.Hash{byte(h + 1)}
		b, err := e.blobs.ReadBlock(hash)
		require.NoError(t, err)
		require.NotNil(t, b, "height %d block should survive prune", h)
	}

	_, err = e.Prune(2, 0)
	require.Equal(t, chainerr.ErrAlreadyPruned, err)
}
