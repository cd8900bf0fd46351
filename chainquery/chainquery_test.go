// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainquery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainmutate"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
)

func newTestFixture(t *testing.T) (*chainmutate.Engine, *Reader, *chainstate.StateCache) {
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

	state := chainstate.NewStateCache(chainstate.Snapshot{})
	engine := chainmutate.New(meta, blobs, tree, caches, state)
	reader := New(meta, blobs, tree, caches, state)
	return engine, reader, state
}

func TestGetEntryAndTip(t *testing.T) {
	engine, reader, _ := newTestFixture(t)

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{9}, Height: 0}
	block := &chainmodel.Block{Transactions: []chainmodel.Transaction{
		{Hash: chainmodel.Hash{10}, Coinbase: true, Outputs: []chainmodel.Output{{Value: 100}}},
	}}
	view := chainmodel.NewCoinView()
	require.NoError(t, engine.Save(entry, block, view))

	got, err := reader.GetEntry(entry.Hash)
	require.NoError(t, err)
	require.Equal(t, entry.Hash, got.Hash)

	tip, err := reader.Tip()
	require.NoError(t, err)
	require.Equal(t, entry.Hash, tip.Hash)

	main, err := reader.IsMainChain(entry.Hash)
	require.NoError(t, err)
	require.True(t, main)
}

func TestGetEntryNotFound(t *testing.T) {
	_, reader, _ := newTestFixture(t)
	_, err := reader.GetEntry(chainmodel.Hash{})
	require.True(t, chainerr.IsNotFound(err))
}

func TestGetCoinAfterConnect(t *testing.T) {
	engine, reader, _ := newTestFixture(t)

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{11}, Height: 0}
	txHash := chainmodel.Hash{12}
	block := &chainmodel.Block{Transactions: []chainmodel.Transaction{
		{Hash: txHash, Coinbase: true, Outputs: []chainmodel.Output{{Value: 500}}},
	}}
	view := chainmodel.NewCoinView()
	require.NoError(t, engine.Save(entry, block, view))

	coin, err := reader.GetCoin(chainmodel.Outpoint{Hash: txHash, Index: 0})
	require.NoError(t, err)
	require.EqualValues(t, 500, coin.Output.Value)
}

func TestLookupAndProveNameForbiddenInSPV(t *testing.T) {
	_, reader, state := newTestFixture(t)
	state.SwapFlags(chainstate.ChainFlags{SPV: true})

	_, err := reader.Lookup("example")
	require.Equal(t, chainerr.ErrSPVMode, err)

	_, _, err = reader.ProveName(chainmodel.Hash{1})
	require.Equal(t, chainerr.ErrSPVMode, err)
}

func TestGetHeightAndRangeReads(t *testing.T) {
	engine, reader, _ := newTestFixture(t)

	prev := chainmodel.Hash{}
	for h := 0; h < 3; h++ {
		entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{byte(h + 30)}, Height: chainmodel.Height(h), PrevBlock: prev}
		block := &chainmodel.Block{Transactions: []chainmodel.Transaction{
			{Hash: chainmodel.Hash{byte(h + 40)}, Coinbase: true, Outputs: []chainmodel.Output{{Value: 100}}},
		}}
		require.NoError(t, engine.Save(entry, block, chainmodel.NewCoinView()))
		prev = entry.Hash
	}

	height, err := reader.GetHeight(chainmodel.Hash{31})
	require.NoError(t, err)
	require.EqualValues(t, 1, height)

	hashes, err := reader.GetHashes(0, 5)
	require.NoError(t, err)
	require.Equal(t, []chainmodel.Hash{{30}, {31}, {32}}, hashes, "range must stop at the first unindexed height rather than erroring")

	entries, err := reader.GetEntries(0, 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.EqualValues(t, 2, entries[2].Height)

	raw, err := reader.GetRawBlock(chainmodel.Hash{30})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	_, err = reader.GetHeight(chainmodel.Hash{99})
	require.True(t, chainerr.IsNotFound(err))
}

func TestReadCoinBypassesCacheAndGetTXResolvesFromIndex(t *testing.T) {
	engine, reader, state := newTestFixture(t)
	state.SwapFlags(chainstate.ChainFlags{IndexTX: true})

	txHash := chainmodel.Hash{50}
	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{51}, Height: 0}
	block := &chainmodel.Block{Transactions: []chainmodel.Transaction{
		{Hash: txHash, Coinbase: true, Outputs: []chainmodel.Output{{Value: 700}}},
	}}
	require.NoError(t, engine.Save(entry, block, chainmodel.NewCoinView()))

	coin, err := reader.ReadCoin(chainmodel.Outpoint{Hash: txHash, Index: 0})
	require.NoError(t, err)
	require.EqualValues(t, 700, coin.Output.Value)

	tx, err := reader.GetTX(txHash)
	require.NoError(t, err)
	require.Equal(t, txHash, tx.Hash)

	_, err = reader.GetTX(chainmodel.Hash{200})
	require.True(t, chainerr.IsNotFound(err))
}

func TestGetBlockViewResolvesSpentCoinsAcrossBlock(t *testing.T) {
	engine, reader, state := newTestFixture(t)
	state.SwapFlags(chainstate.ChainFlags{IndexTX: true})

	coinbaseHash := chainmodel.Hash{60}
	genesis := &chainmodel.ChainEntry{Hash: chainmodel.Hash{61}, Height: 0}
	genesisBlock := &chainmodel.Block{Transactions: []chainmodel.Transaction{
		{Hash: coinbaseHash, Coinbase: true, Outputs: []chainmodel.Output{{Value: 1000}}},
	}}
	require.NoError(t, engine.Save(genesis, genesisBlock, chainmodel.NewCoinView()))

	spendTx := chainmodel.Transaction{
		Hash:    chainmodel.Hash{62},
		Inputs:  []chainmodel.Input{{Prevout: chainmodel.Outpoint{Hash: coinbaseHash, Index: 0}}},
		Outputs: []chainmodel.Output{{Value: 900}},
	}
	spendView, err := reader.GetCoinView(&spendTx)
	require.NoError(t, err)

	next := &chainmodel.ChainEntry{Hash: chainmodel.Hash{63}, Height: 1, PrevBlock: genesis.Hash}
	nextBlock := &chainmodel.Block{Transactions: []chainmodel.Transaction{spendTx}}
	require.NoError(t, engine.Save(next, nextBlock, spendView))

	view, err := reader.GetBlockView(nextBlock)
	require.NoError(t, err)
	coin, spent, ok := view.GetCoin(chainmodel.Outpoint{Hash: coinbaseHash, Index: 0})
	require.True(t, ok)
	require.False(t, spent)
	require.EqualValues(t, 1000, coin.Output.Value)
}

func TestScanWalksMainChain(t *testing.T) {
	engine, reader, _ := newTestFixture(t)

	genesis := &chainmodel.ChainEntry{Hash: chainmodel.Hash{20}, Height: 0}
	genesisBlock := &chainmodel.Block{Transactions: []chainmodel.Transaction{
		{Hash: chainmodel.Hash{21}, Coinbase: true, Outputs: []chainmodel.Output{{Value: 10}}},
	}}
	require.NoError(t, engine.Save(genesis, genesisBlock, chainmodel.NewCoinView()))

	second := &chainmodel.ChainEntry{Hash: chainmodel.Hash{22}, Height: 1, PrevBlock: genesis.Hash}
	secondBlock := &chainmodel.Block{Header: chainmodel.Header{PrevBlock: genesis.Hash}, Transactions: []chainmodel.Transaction{
		{Hash: chainmodel.Hash{23}, Coinbase: true, Outputs: []chainmodel.Output{{Value: 20}}},
	}}
	require.NoError(t, engine.Save(second, secondBlock, chainmodel.NewCoinView()))

	var visited []chainmodel.Height
	err := reader.Scan(genesis.Hash, nil, func(entry *chainmodel.ChainEntry, matched []*chainmodel.Transaction) error {
		visited = append(visited, entry.Height)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []chainmodel.Height{0, 1}, visited)
}
