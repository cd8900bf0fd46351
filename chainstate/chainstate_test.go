// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/wire"
)

func openTestStore(t *testing.T) *metadb.Store {
	t.Helper()
	store, err := metadb.Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestChainStateRoundTrip(t *testing.T) {
	store := openTestStore(t)
	batch := metadb.NewBatch(store)
	require.NoError(t, batch.Begin())

	s := ChainState{Tip: chainmodel.Hash{1}, TxCount: 3, CoinCount: 5, Value: 100, Burned: 7, Committed: true}
	StageChainState(batch, s)
	require.NoError(t, batch.Commit())

	got, err := LoadChainState(store)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestStateCacheSwapGatedOnCommitted(t *testing.T) {
	cache := NewStateCache(Snapshot{})

	cache.SwapChain(ChainState{TxCount: 1, Committed: false})
	require.Equal(t, uint64(0), cache.Load().Chain.TxCount)

	cache.SwapChain(ChainState{TxCount: 1, Committed: true})
	require.Equal(t, uint64(1), cache.Load().Chain.TxCount)
}

func TestVerifyDeploymentsInvalidTableIsAllUnknown(t *testing.T) {
	broken := DecodeDeployments([]byte{5}) // claims 5 rows, has none
	require.False(t, broken.Valid())
	require.Empty(t, VerifyDeployments(broken, 100))
}

func TestVerifyDeploymentsStates(t *testing.T) {
	d := NewDeployments([]wire.Deployment{
		{Bit: 0, StartTime: 100, Timeout: 200},
		{Bit: 1, StartTime: 0, Timeout: 0},
	})
	states := VerifyDeployments(d, 50)
	require.Equal(t, DeployDefined, states[0])
	require.Equal(t, DeployStarted, states[1])

	states = VerifyDeployments(d, 250)
	require.Equal(t, DeployFailed, states[0])
}
