// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blobdb

import "github.com/syndtr/goleveldb/leveldb"

// Batch accumulates block/undo writes and prunes separately so the
// batch coordinator can commit writes before prunes: a later failure
// only leaves orphan blobs behind, never a missing one a reader could
// hit.
type Batch struct {
	store   *Store
	writes  *leveldb.Batch
	prunes  *leveldb.Batch
}

// NewBatch allocates a blob batch bound to store.
func (s *Store) NewBatch() *Batch {
	return &Batch{store: s, writes: new(leveldb.Batch), prunes: new(leveldb.Batch)}
}

// WriteBlock stages a block write.
func (b *Batch) WriteBlock(hash [32]byte, data []byte) {
	b.writes.Put(blockKey(hash), data)
}

// WriteUndo stages an undo-record write.
func (b *Batch) WriteUndo(hash [32]byte, data []byte) {
	b.writes.Put(undoKey(hash), data)
}

// DeleteUndo stages an undo-record deletion (used by disconnect, which
// is a write-path operation, not a prune).
func (b *Batch) DeleteUndo(hash [32]byte) {
	b.writes.Delete(undoKey(hash))
}

// PruneBlock stages a block deletion for the prune phase. Deleting an
// already-missing key is a goleveldb no-op, which is what makes prune
// idempotent across a crash-and-rerun.
func (b *Batch) PruneBlock(hash [32]byte) {
	b.prunes.Delete(blockKey(hash))
}

// PruneUndo stages an undo-record deletion for the prune phase.
func (b *Batch) PruneUndo(hash [32]byte) {
	b.prunes.Delete(undoKey(hash))
}

// CommitWrites atomically applies staged block/undo writes.
func (b *Batch) CommitWrites() error {
	if b.writes.Len() == 0 {
		return nil
	}
	return b.store.db.Write(b.writes, nil)
}

// CommitPrunes atomically applies staged prune deletions. Safe to
// retry: goleveldb treats deleting a missing key as a success.
func (b *Batch) CommitPrunes() error {
	if b.prunes.Len() == 0 {
		return nil
	}
	return b.store.db.Write(b.prunes, nil)
}

// Clear discards all staged writes and prunes without touching the
// store.
func (b *Batch) Clear() {
	b.writes.Reset()
	b.prunes.Reset()
}
