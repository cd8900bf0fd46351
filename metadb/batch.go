// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadb

import (
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

const (
	stageTimeout    = 10 * time.Minute
	stageExpiration = 20 * time.Minute
)

// Batch is a single in-flight write batch against a Store. It follows
// storage/access.go's AccessData: a leveldb.Batch of pending writes plus
// a staging cache so a read issued mid-batch sees the batch's own
// uncommitted puts/deletes.
type Batch struct {
	store   *Store
	raw     *leveldb.Batch
	staging *cache.Cache
	inUse   bool
}

// NewBatch allocates a batch bound to store. The batch coordinator
// (package batch) owns the inUse lifecycle across start/drop/commit.
func NewBatch(store *Store) *Batch {
	return &Batch{
		store:   store,
		raw:     new(leveldb.Batch),
		staging: cache.New(stageTimeout, stageExpiration),
	}
}

// Begin marks the batch active, refusing re-entry the way
// AccessData.Begin does.
func (b *Batch) Begin() error {
	if b.inUse {
		return fmt.Errorf("metadb: batch already in use")
	}
	b.inUse = true
	return nil
}

// Put stages a write, visible to Get/Has on this batch immediately.
func (b *Batch) Put(key, value []byte) {
	b.staging.Set(string(key), staged{op: opPut, value: value}, stageExpiration)
	b.raw.Put(key, value)
}

// Delete stages a deletion, visible to Get/Has on this batch
// immediately.
func (b *Batch) Delete(key []byte) {
	b.staging.Set(string(key), staged{op: opDelete}, stageExpiration)
	b.raw.Delete(key)
}

// Get reads the staged value for key if present, else falls through to
// the underlying store.
func (b *Batch) Get(key []byte) ([]byte, error) {
	if v, ok := b.staging.Get(string(key)); ok {
		s := v.(staged)
		if s.op == opDelete {
			return nil, nil
		}
		return s.value, nil
	}
	return b.store.Get(key)
}

// Has reports presence, honoring staged writes/deletes first.
func (b *Batch) Has(key []byte) (bool, error) {
	if v, ok := b.staging.Get(string(key)); ok {
		s := v.(staged)
		return s.op == opPut, nil
	}
	return b.store.Has(key)
}

// Iterator returns a range iterator over the underlying store. Staged
// writes are not reflected in range scans mid-batch, same limitation as
// AccessData.Iterator, which reads straight from leveldb.
func (b *Batch) Iterator(r *ldb_util.Range) iterator.Iterator {
	return b.store.Iterator(r)
}

// Commit atomically writes the batch to the store. It does not clear
// staged entries or the inUse flag — the batch coordinator (package
// batch) does that as part of its own multi-store commit sequencing.
func (b *Batch) Commit() error {
	return b.store.db.Write(b.raw, nil)
}

// Drop discards all staged writes and resets the batch for reuse.
func (b *Batch) Drop() {
	b.raw.Reset()
	b.staging.Flush()
	b.inUse = false
}

// InUse reports whether Begin has been called without a matching Drop
// or a completed Commit cycle.
func (b *Batch) InUse() bool {
	return b.inUse
}

// Reset clears the inUse flag after a successful external commit,
// leaving raw/staging cleared for reuse on the next Begin.
func (b *Batch) Reset() {
	b.raw.Reset()
	b.staging.Flush()
	b.inUse = false
}
