// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chain"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngineWithFlags(t, chainstate.ChainFlags{})
}

func newTestEngineWithFlags(t *testing.T, flags chainstate.ChainFlags) *Engine {
	t.Helper()
	meta, err := metadb.Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { meta.Close() })

	blobs, err := blobdb.Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { blobs.Close() })

	tree, err := urkel.Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })

	caches, err := cachelayer.New()
	require.NoError(t, err)

	state := chainstate.NewStateCache(chainstate.Snapshot{Chain: chainstate.ChainState{}, Flags: flags})
	return New(meta, blobs, tree, caches, state)
}

func makeBlock(coinbaseHash chainmodel.Hash, value chainmodel.Amount) *chainmodel.Block {
	return &chainmodel.Block{
		Transactions: []chainmodel.Transaction{
			{Hash: coinbaseHash, Coinbase: true, Outputs: []chainmodel.Output{{Value: value}}},
		},
	}
}

func TestSaveConnectsGenesis(t *testing.T) {
	e := newTestEngine(t)

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{1}, Height: 0}
	block := makeBlock(chainmodel.Hash{100}, 5000)
	view := chainmodel.NewCoinView()

	require.NoError(t, e.Save(entry, block, view))

	snap := e.state.Load()
	require.Equal(t, entry.Hash, snap.Chain.Tip)
	require.EqualValues(t, 5000, snap.Chain.Value)
	require.EqualValues(t, 1, snap.Chain.TxCount)
}

func TestSaveStoreOnlyDoesNotConnect(t *testing.T) {
	e := newTestEngine(t)

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{2}, Height: 0}
	block := makeBlock(chainmodel.Hash{101}, 1000)

	require.NoError(t, e.Save(entry, block, nil))

	snap := e.state.Load()
	require.Equal(t, chainmodel.Hash{}, snap.Chain.Tip)

	stored, err := e.loadEntry(entry.Hash)
	require.NoError(t, err)
	require.Equal(t, entry.Hash, stored.Hash)
}

func TestDisconnectReversesSave(t *testing.T) {
	e := newTestEngine(t)

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{3}, Height: 0}
	block := makeBlock(chainmodel.Hash{102}, 2500)
	view := chainmodel.NewCoinView()
	require.NoError(t, e.Save(entry, block, view))

	require.NoError(t, e.Disconnect(entry.Hash))

	snap := e.state.Load()
	require.Equal(t, chainmodel.Hash{}, snap.Chain.Tip)
	require.EqualValues(t, 0, snap.Chain.Value)
	require.EqualValues(t, 0, snap.Chain.TxCount)
}

func TestResetForbiddenWhenPruned(t *testing.T) {
	e := newTestEngine(t)
	e.state.SwapFlags(chainstate.ChainFlags{Prune: true})
	require.Error(t, e.Reset(chainmodel.Hash{}))
}

// TestTreeOnlyCommitsAtInterval walks four blocks on a Simnet-sized
// (treeInterval == 4) chain, registering a name mid-interval, and
// checks the persisted tree root only moves on the interval boundary
// even though the name is queryable immediately.
func TestTreeOnlyCommitsAtInterval(t *testing.T) {
	e := newTestEngineWithFlags(t, chainstate.ChainFlags{Network: chain.Simnet})
	require.EqualValues(t, 4, chain.TreeInterval(chain.Simnet))

	nameHash := chainmodel.Hash{7}
	prev := chainmodel.Hash{}
	// Height 0 is its own (trivial) boundary; the next one lands at
	// height 4, so heights 1-3 stay unflushed regardless of what they
	// write into the tree.
	for h := chainmodel.Height(0); h <= 4; h++ {
		entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{byte(h + 1)}, Height: h, PrevBlock: prev, TreeRoot: chainmodel.Hash{}}
		block := makeBlock(chainmodel.Hash{byte(h + 50)}, 100)
		if h == 3 {
			block.Transactions = append(block.Transactions, chainmodel.Transaction{
				Hash: chainmodel.Hash{99},
				Outputs: []chainmodel.Output{
					{Covenant: chainmodel.Covenant{Type: chainmodel.CovenantRegister, Items: [][]byte{nameHash[:]}}},
				},
			})
		}
		require.NoError(t, e.Save(entry, block, chainmodel.NewCoinView()))

		snap := e.state.Load()
		if h < 4 {
			require.Equal(t, chainmodel.Hash{}, snap.Tree.TreeRoot, "height %d: tree must not flush before the interval boundary", h)
			require.EqualValues(t, 0, snap.Tree.CommitHeight)
		} else {
			require.NotEqual(t, chainmodel.Hash{}, snap.Tree.TreeRoot, "height %d: tree must flush on the interval boundary", h)
			require.EqualValues(t, h, snap.Tree.CommitHeight)
		}
		prev = entry.Hash
	}

	boundaryRoot := e.state.Load().Tree.TreeRoot
	require.Equal(t, boundaryRoot, e.tree.RootHash(), "tree.rootHash must track treeState.treeRoot after a commit")

	// Disconnecting the boundary block discards the whole interval's
	// accumulated tree writes at once, landing back on the anchor root
	// each of those blocks carried in its header.
	boundaryEntry, err := e.loadEntry(chainmodel.Hash{5})
	require.NoError(t, err)
	require.EqualValues(t, 4, boundaryEntry.Height)
	require.NoError(t, e.Disconnect(boundaryEntry.Hash))
	require.Equal(t, chainmodel.Hash{}, e.state.Load().Tree.TreeRoot)
	require.EqualValues(t, 0, e.state.Load().Tree.CommitHeight)

	// Disconnecting the mid-interval blocks below it is then just
	// ordinary (already-applied) undo replay against a tree that's
	// already back at the pre-interval root: no error, no further
	// tree flush. Its pending TreeState is uncommitted, so the live
	// TreeState is not swapped and stays the committed one the boundary
	// disconnect left behind.
	require.NoError(t, e.Disconnect(chainmodel.Hash{4}))
	require.True(t, e.state.Load().Tree.Committed)
}
