// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metadb is the ordered key-value meta store (component A):
// batched put/del/get/range over goleveldb, with a staging cache so a
// batch's own writes are visible to reads before commit. Grounded on
// modeled on storage/access.go and storage/data_access.go.
package metadb

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Store wraps a single leveldb database.
type Store struct {
	mu sync.RWMutex
	db *leveldb.DB
}

// Open opens (creating if necessary) a leveldb database at path.
func Open(path string, readOnly bool) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get reads a single key, returning (nil, nil) if absent.
func (s *Store) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return v, err
}

// Has reports whether key is present.
func (s *Store) Has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

// Put writes a single key/value pair directly (outside any batch).
func (s *Store) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

// Delete removes a single key directly (outside any batch).
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

// Iterator returns a range iterator directly over the database,
// bypassing any in-flight batch's staged writes. Batch.Iterator does
// not see staged writes either.
func (s *Store) Iterator(r *ldb_util.Range) iterator.Iterator {
	return s.db.NewIterator(r, nil)
}

// cacheOp tags whether a staged cache entry is a put or a delete, the
// same distinction storage/cache.go makes between dbPut and dbDelete so
// a staged delete correctly shadows an on-disk value.
type cacheOp int

const (
	opPut cacheOp = iota
	opDelete
)

type staged struct {
	op    cacheOp
	value []byte
}
