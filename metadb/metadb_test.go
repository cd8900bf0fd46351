// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorePutGetHasDelete(t *testing.T) {
	s := openTestStore(t)

	v, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, s.Put([]byte("k"), []byte("v")))
	v, err = s.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	has, err := s.Has([]byte("k"))
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, s.Delete([]byte("k")))
	has, err = s.Has([]byte("k"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestBatchStagingVisibleBeforeCommit(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put([]byte("a"), []byte("old")))

	b := NewBatch(s)
	require.NoError(t, b.Begin())
	b.Put([]byte("a"), []byte("new"))
	b.Delete([]byte("gone"))

	v, err := b.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)

	direct, err := s.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("old"), direct)

	require.NoError(t, b.Commit())
	b.Reset()

	direct, err = s.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("new"), direct)
	require.False(t, b.InUse())
}

func TestBatchDropDiscardsStagedWrites(t *testing.T) {
	s := openTestStore(t)
	b := NewBatch(s)
	require.NoError(t, b.Begin())
	b.Put([]byte("k"), []byte("v"))
	b.Drop()

	has, err := s.Has([]byte("k"))
	require.NoError(t, err)
	require.False(t, has)
	require.False(t, b.InUse())
}

func TestBatchBeginTwiceFails(t *testing.T) {
	s := openTestStore(t)
	b := NewBatch(s)
	require.NoError(t, b.Begin())
	require.Error(t, b.Begin())
}

func TestScanPrefixStripsPrefixAndRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put([]byte("C\x01a"), []byte("1")))
	require.NoError(t, s.Put([]byte("C\x01b"), []byte("2")))
	require.NoError(t, s.Put([]byte("C\x02a"), []byte("3")))

	prefix := []byte("C\x01")
	var keys [][]byte
	err := s.ScanPrefix(prefix, []byte("C\x02"), func(key, value []byte) bool {
		keys = append(keys, append([]byte(nil), key...))
		return true
	})
	require.NoError(t, err)
	require.ElementsMatch(t, [][]byte{[]byte("a"), []byte("b")}, keys)
}

func TestScanPrefixEarlyStop(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put([]byte("x1"), []byte("1")))
	require.NoError(t, s.Put([]byte("x2"), []byte("2")))

	count := 0
	err := s.ScanPrefix([]byte("x"), nil, func(key, value []byte) bool {
		count++
		return false
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
