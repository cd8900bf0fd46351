// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaindb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
)

func TestOpenFreshDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, Options{Flags: chainstate.ChainFlags{Network: "main"}})
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, chainmodel.Hash{}, db.ChainState().Tip)
	require.True(t, db.VerifyFlags(chainstate.ChainFlags{Network: "main"}))
}

func TestReopenRejectsFlagMismatch(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, Options{Flags: chainstate.ChainFlags{Network: "main"}})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(dir, Options{Flags: chainstate.ChainFlags{Network: "test"}})
	require.Error(t, err)
}

func TestSaveAndQueryGenesis(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, Options{Flags: chainstate.ChainFlags{Network: "main"}})
	require.NoError(t, err)
	defer db.Close()

	genesis := &chainmodel.ChainEntry{Hash: chainmodel.Hash{7}, Height: 0}
	block := &chainmodel.Block{Transactions: []chainmodel.Transaction{
		{Hash: chainmodel.Hash{8}, Coinbase: true, Outputs: []chainmodel.Output{{Value: 1000}}},
	}}
	require.NoError(t, db.Save(genesis, block, chainmodel.NewCoinView()))

	tip, err := db.Tip()
	require.NoError(t, err)
	require.Equal(t, genesis.Hash, tip.Hash)
	require.EqualValues(t, 1000, db.ChainState().Value)
}

func TestSaveDeploymentsAndVerify(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, Options{Flags: chainstate.ChainFlags{Network: "regtest"}})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveDeployments(nil))
	states := db.VerifyDeployments(100)
	require.Empty(t, states)
}
