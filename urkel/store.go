// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	prefixNode  = 'n'
	prefixValue = 'v'
)

// Store is the tree's own leveldb-backed, content-addressed blob store.
// Nodes and values are keyed by their hash, so the store is naturally
// deduplicating and immutable: once written, a node under a given hash
// never changes.
type Store struct {
	db   *leveldb.DB
	path string
}

// openStore opens (creating if necessary) the tree database at path.
func openStore(path string, readOnly bool) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func nodeKey(h Hash) []byte  { return append([]byte{prefixNode}, h[:]...) }
func valueKey(h Hash) []byte { return append([]byte{prefixValue}, h[:]...) }

func (s *Store) getNode(h Hash) (*node, bool, error) {
	if h == ZeroHash {
		return nil, false, nil
	}
	raw, err := s.db.Get(nodeKey(h), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	n, ok := decodeNode(raw)
	return n, ok, nil
}

func (s *Store) getValue(h Hash) ([]byte, error) {
	raw, err := s.db.Get(valueKey(h), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return raw, err
}

func (s *Store) has(h Hash) (bool, error) {
	if h == ZeroHash {
		return true, nil
	}
	return s.db.Has(nodeKey(h), nil)
}
