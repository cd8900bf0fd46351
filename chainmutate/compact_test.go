// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmutate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
)

func TestCompactTreeRewritesStoreAndAdvancesFloor(t *testing.T) {
	e := newTestEngine(t)

	txn := e.tree.Txn()
	key := []byte("example-name")
	require.NoError(t, txn.Insert(key, []byte("name-state")))
	root, err := txn.Commit()
	require.NoError(t, err)
	require.NoError(t, e.tree.Inject(root))

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{1}, Height: 10, TreeRoot: root}
	tmpDir := filepath.Join(t.TempDir(), "compact-tmp")

	require.NoError(t, e.CompactTree(entry, tmpDir))

	snap := e.state.Load()
	require.Equal(t, root, snap.Tree.TreeRoot)
	require.EqualValues(t, 9, snap.Tree.CommitHeight)
	require.EqualValues(t, 10, snap.Tree.CompactionHeight)

	got, found, err := e.tree.Snapshot(root).Get(key)
	require.NoError(t, err)
	require.True(t, found, "compaction must preserve nodes reachable from the target root")
	require.Equal(t, []byte("name-state"), got)
}

func TestCompactTreeNoOpWhenAlreadyCompactedAtRoot(t *testing.T) {
	e := newTestEngine(t)

	txn := e.tree.Txn()
	require.NoError(t, txn.Insert([]byte("k"), []byte("v")))
	root, err := txn.Commit()
	require.NoError(t, err)
	require.NoError(t, e.tree.Inject(root))

	entry := &chainmodel.ChainEntry{Hash: chainmodel.Hash{2}, Height: 4, TreeRoot: root}
	require.NoError(t, e.CompactTree(entry, filepath.Join(t.TempDir(), "compact-tmp-1")))

	err = e.CompactTree(entry, filepath.Join(t.TempDir(), "compact-tmp-2"))
	require.Equal(t, chainerr.ErrAlreadyCompacted, err)
}
