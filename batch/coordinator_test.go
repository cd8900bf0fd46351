// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
)

func newTestCoordinator(t *testing.T) *Coordinator {
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
	return New(meta, blobs, tree, caches, state)
}

func TestCoordinatorCommitOrder(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Start())

	c.Meta().Put([]byte("k"), []byte("v"))
	c.Blobs().WriteBlock(chainmodel.Hash{1}, []byte("block"))
	require.NoError(t, c.Tree().Insert([]byte("example.com"), []byte("owner")))

	pc := c.PendingChain()
	pc.TxCount = 1
	pc.Committed = true
	pt := c.PendingTree()
	pt.Committed = true

	require.NoError(t, c.Commit())
	require.False(t, c.InUse())

	snap := c.state.Load()
	require.EqualValues(t, 1, snap.Chain.TxCount)
	require.NotEqual(t, urkel.ZeroHash, snap.Tree.TreeRoot)

	block, err := c.blobs.ReadBlock(chainmodel.Hash{1})
	require.NoError(t, err)
	require.Equal(t, []byte("block"), block)
}

func TestCoordinatorRejectsDoubleStart(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Start())
	require.Error(t, c.Start())
	c.Drop()
	require.NoError(t, c.Start())
}

func TestCoordinatorDropDiscardsWrites(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.Start())
	c.Meta().Put([]byte("k"), []byte("v"))
	c.Drop()

	require.NoError(t, c.Start())
	v, err := c.Meta().Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)
}
