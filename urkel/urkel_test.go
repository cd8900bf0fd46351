// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree
}

func TestInsertGetCommit(t *testing.T) {
	tree := openTestTree(t)

	tx := tree.Txn()
	require.NoError(t, tx.Insert([]byte("example.com"), []byte("owner-1")))
	require.NoError(t, tx.Insert([]byte("other.com"), []byte("owner-2")))
	root, err := tx.Commit()
	require.NoError(t, err)
	require.NotEqual(t, ZeroHash, root)

	require.NoError(t, tree.Inject(root))
	snap := tree.Snapshot(tree.RootHash())

	v, ok, err := snap.Get([]byte("example.com"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("owner-1"), v)

	_, ok, err = snap.Get([]byte("missing.com"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveCollapses(t *testing.T) {
	tree := openTestTree(t)

	tx := tree.Txn()
	require.NoError(t, tx.Insert([]byte("a"), []byte("1")))
	require.NoError(t, tx.Insert([]byte("b"), []byte("2")))
	rootWithBoth, err := tx.Commit()
	require.NoError(t, err)

	require.NoError(t, tree.Inject(rootWithBoth))
	tx2 := tree.Txn()
	require.NoError(t, tx2.Remove([]byte("a")))
	rootWithOne, err := tx2.Commit()
	require.NoError(t, err)

	require.NoError(t, tree.Inject(rootWithOne))
	snap := tree.Snapshot(tree.RootHash())
	_, ok, err := snap.Get([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err := snap.Get([]byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
}

func TestProofRoundTrip(t *testing.T) {
	tree := openTestTree(t)

	tx := tree.Txn()
	require.NoError(t, tx.Insert([]byte("example.com"), []byte("owner-1")))
	require.NoError(t, tx.Insert([]byte("other.com"), []byte("owner-2")))
	root, err := tx.Commit()
	require.NoError(t, err)

	snap := tree.Snapshot(root)
	proof, err := snap.Prove([]byte("example.com"))
	require.NoError(t, err)
	require.True(t, proof.Found)

	valid, found := VerifyProof(root, proof)
	require.True(t, valid)
	require.True(t, found)

	absentProof, err := snap.Prove([]byte("nowhere.com"))
	require.NoError(t, err)
	require.False(t, absentProof.Found)
	valid, found = VerifyProof(root, absentProof)
	require.True(t, valid)
	require.False(t, found)
}

func TestCompactPreservesData(t *testing.T) {
	tree := openTestTree(t)

	tx := tree.Txn()
	require.NoError(t, tx.Insert([]byte("example.com"), []byte("owner-1")))
	root, err := tx.Commit()
	require.NoError(t, err)
	require.NoError(t, tree.Inject(root))

	require.NoError(t, tree.Compact(t.TempDir()+"-compact"))

	snap := tree.Snapshot(tree.RootHash())
	v, ok, err := snap.Get([]byte("example.com"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("owner-1"), v)
}
