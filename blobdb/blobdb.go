// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blobdb is the append-only block/undo blob store (component
// B): a second, independent leveldb database from the meta store, the
// way storage.Initialise opens separate "-blocks.leveldb" and
// "-index.leveldb" files.
package blobdb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	prefixBlock = 'b'
	prefixUndo  = 'u'
)

// Store is the blob database. Keys are prefix||hash.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the blob database at path.
func Open(path string, readOnly bool) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func blockKey(hash [32]byte) []byte { return append([]byte{prefixBlock}, hash[:]...) }
func undoKey(hash [32]byte) []byte  { return append([]byte{prefixUndo}, hash[:]...) }

// ReadBlock returns the raw bytes for a block, or (nil, nil) if absent.
func (s *Store) ReadBlock(hash [32]byte) ([]byte, error) {
	return get(s.db, blockKey(hash))
}

// ReadUndo returns the raw bytes for an undo record, or (nil, nil) if
// absent.
func (s *Store) ReadUndo(hash [32]byte) ([]byte, error) {
	return get(s.db, undoKey(hash))
}

func get(db *leveldb.DB, key []byte) ([]byte, error) {
	v, err := db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return v, err
}

// WriteBlock writes a block directly (outside a Batch), used by tests
// and one-off maintenance.
func (s *Store) WriteBlock(hash [32]byte, data []byte) error {
	return s.db.Put(blockKey(hash), data, nil)
}

// WriteUndo writes an undo record directly.
func (s *Store) WriteUndo(hash [32]byte, data []byte) error {
	return s.db.Put(undoKey(hash), data, nil)
}
