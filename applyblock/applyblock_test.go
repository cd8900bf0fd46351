// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package applyblock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
)

func coinbaseTx(hash chainmodel.Hash, value chainmodel.Amount) chainmodel.Transaction {
	return chainmodel.Transaction{
		Hash:     hash,
		Coinbase: true,
		Outputs:  []chainmodel.Output{{Value: value}},
	}
}

func TestConnectDisconnectBlockRoundTrip(t *testing.T) {
	view := chainmodel.NewCoinView()
	cs := &chainstate.ChainState{}

	block := &chainmodel.Block{
		Transactions: []chainmodel.Transaction{
			coinbaseTx(chainmodel.Hash{1}, 5000),
		},
	}

	require.NoError(t, ConnectBlock(view, cs, 1, block))
	require.EqualValues(t, 1, cs.TxCount)
	require.EqualValues(t, 1, cs.CoinCount)
	require.EqualValues(t, 5000, cs.Value)

	require.NoError(t, DisconnectBlock(view, cs, 1, block))
	require.EqualValues(t, 0, cs.TxCount)
	require.EqualValues(t, 0, cs.CoinCount)
	require.EqualValues(t, 0, cs.Value)
}

func TestRegisterCovenantBurnsInsteadOfCredits(t *testing.T) {
	view := chainmodel.NewCoinView()
	cs := &chainstate.ChainState{}

	block := &chainmodel.Block{
		Transactions: []chainmodel.Transaction{
			{
				Hash:     chainmodel.Hash{2},
				Coinbase: true,
				Outputs: []chainmodel.Output{
					{Value: 1000, Covenant: chainmodel.Covenant{Type: chainmodel.CovenantRegister}},
				},
			},
		},
	}

	require.NoError(t, ConnectBlock(view, cs, 1, block))
	require.EqualValues(t, 0, cs.Value)
	require.EqualValues(t, 1000, cs.Burned)
}

func TestClaimCreditsOnlyFirstSequence(t *testing.T) {
	view := chainmodel.NewCoinView()
	cs := &chainstate.ChainState{}

	seq1 := make([]byte, 4)
	seq1[0] = 1
	seq2 := make([]byte, 4)
	seq2[0] = 2

	block := &chainmodel.Block{
		Transactions: []chainmodel.Transaction{
			{
				Hash:     chainmodel.Hash{3},
				Coinbase: true,
				Outputs: []chainmodel.Output{
					{Value: 100, Covenant: chainmodel.Covenant{Type: chainmodel.CovenantClaim, Items: [][]byte{nil, nil, nil, nil, nil, seq1}}},
					{Value: 100, Covenant: chainmodel.Covenant{Type: chainmodel.CovenantClaim, Items: [][]byte{nil, nil, nil, nil, nil, seq2}}},
				},
			},
		},
	}

	require.NoError(t, ConnectBlock(view, cs, 1, block))
	require.EqualValues(t, 100, cs.Value)
}

func TestConnectNamesRegisterThenDisconnect(t *testing.T) {
	view := chainmodel.NewCoinView()
	reader := emptyReader{}

	nameHash := chainmodel.Hash{9}
	tx := &chainmodel.Transaction{
		Hash: chainmodel.Hash{4},
		Outputs: []chainmodel.Output{
			{Covenant: chainmodel.Covenant{Type: chainmodel.CovenantRegister, Items: [][]byte{nameHash[:]}}},
		},
	}

	undo, err := ConnectNames(view, reader, 10, tx)
	require.NoError(t, err)
	require.Len(t, undo.Deltas, 1)
	require.Nil(t, undo.Deltas[0].Previous)

	ns, ok := view.GetName(nameHash)
	require.True(t, ok)
	require.EqualValues(t, 10, ns.RegisteredAt)

	DisconnectNames(view, undo)
	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Nil(t, ns)
}

func TestConnectNamesRevealTracksHighestBid(t *testing.T) {
	view := chainmodel.NewCoinView()
	reader := emptyReader{}
	nameHash := chainmodel.Hash{9}

	open := &chainmodel.Transaction{
		Hash: chainmodel.Hash{5},
		Outputs: []chainmodel.Output{
			{Covenant: chainmodel.Covenant{Type: chainmodel.CovenantOpen, Items: [][]byte{nameHash[:]}}},
		},
	}
	_, err := ConnectNames(view, reader, 1, open)
	require.NoError(t, err)

	losingReveal := &chainmodel.Transaction{
		Hash: chainmodel.Hash{6},
		Outputs: []chainmodel.Output{
			{Value: 500, Covenant: chainmodel.Covenant{Type: chainmodel.CovenantReveal, Items: [][]byte{nameHash[:]}}},
		},
	}
	_, err = ConnectNames(view, reader, 5, losingReveal)
	require.NoError(t, err)
	ns, ok := view.GetName(nameHash)
	require.True(t, ok)
	require.EqualValues(t, 500, ns.Highest)
	require.EqualValues(t, 5, ns.WeakHeight)

	winningReveal := &chainmodel.Transaction{
		Hash: chainmodel.Hash{7},
		Outputs: []chainmodel.Output{
			{Value: 900, Covenant: chainmodel.Covenant{Type: chainmodel.CovenantReveal, Items: [][]byte{nameHash[:]}}},
		},
	}
	_, err = ConnectNames(view, reader, 6, winningReveal)
	require.NoError(t, err)
	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.EqualValues(t, 900, ns.Highest)
	require.EqualValues(t, 6, ns.WeakHeight)

	redeem := &chainmodel.Transaction{
		Hash: chainmodel.Hash{8},
		Outputs: []chainmodel.Output{
			{Value: 500, Covenant: chainmodel.Covenant{Type: chainmodel.CovenantRedeem, Items: [][]byte{nameHash[:]}}},
		},
	}
	_, err = ConnectNames(view, reader, 7, redeem)
	require.NoError(t, err)
	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.EqualValues(t, 900, ns.Highest, "a losing REDEEM must not disturb the recorded winning bid")

	register := &chainmodel.Transaction{
		Hash: chainmodel.Hash{9},
		Outputs: []chainmodel.Output{
			{Covenant: chainmodel.Covenant{Type: chainmodel.CovenantRegister, Items: [][]byte{nameHash[:]}}},
		},
	}
	_, err = ConnectNames(view, reader, 8, register)
	require.NoError(t, err)
	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.EqualValues(t, 0, ns.Highest, "registering the name closes the auction and clears the bid tracking")
}

type emptyReader struct{}

func (emptyReader) Get(chainmodel.Hash) (*chainmodel.NameState, bool, error) {
	return nil, false, nil
}
