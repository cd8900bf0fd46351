// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import "github.com/bitmark-inc/chaindb/chainerr"

// Tree is the authenticated map from name-hash to name-state record.
// It tracks a single "current" root in memory; callers move that
// pointer explicitly with Inject when replaying history (disconnect,
// reset) or advance it by committing a Txn.
type Tree struct {
	store *Store
	root  Hash
}

// Open opens the tree's backing store at path and starts with an empty
// root. Callers that are resuming an existing chain call Inject with
// the persisted TreeState root immediately after Open.
func Open(path string, readOnly bool) (*Tree, error) {
	store, err := openStore(path, readOnly)
	if err != nil {
		return nil, err
	}
	return &Tree{store: store, root: ZeroHash}, nil
}

// Close releases the backing store.
func (t *Tree) Close() error {
	return t.store.Close()
}

// RootHash returns the tree's current root.
func (t *Tree) RootHash() Hash {
	return t.root
}

// Inject moves the tree's current root pointer to root without
// touching the store. root must already exist in the store (or be
// ZeroHash) — used to rewind to a historical state after disconnect or
// reset.
func (t *Tree) Inject(root Hash) error {
	if root != ZeroHash {
		ok, err := t.store.has(root)
		if err != nil {
			return err
		}
		if !ok {
			return chainerr.ErrEntryNotFound
		}
	}
	t.root = root
	return nil
}

// Snapshot returns a read-only view rooted at root, independent of the
// tree's current root pointer.
func (t *Tree) Snapshot(root Hash) *Snapshot {
	return &Snapshot{store: t.store, root: root}
}

// Txn opens a write transaction rooted at the tree's current root.
func (t *Tree) Txn() *Txn {
	return &Txn{store: t.store, root: t.root, batch: newWriteSet()}
}

// Snapshot is a read-only view of the tree at a fixed historical root.
type Snapshot struct {
	store *Store
	root  Hash
}

// Get looks up key, returning (nil, false) if absent.
func (s *Snapshot) Get(key []byte) ([]byte, bool, error) {
	keyHash := hashValue(key)
	return get(s.store, s.root, keyHash, 0)
}

func get(store *Store, nodeHash Hash, keyHash Hash, depth int) ([]byte, bool, error) {
	if nodeHash == ZeroHash {
		return nil, false, nil
	}
	n, ok, err := store.getNode(nodeHash)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, chainerr.ErrEntryNotFound
	}
	switch n.kind {
	case kindLeaf:
		if n.keyHash != keyHash {
			return nil, false, nil
		}
		v, err := store.getValue(n.valueHash)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case kindInternal:
		if bit(keyHash, depth) == 0 {
			return get(store, n.left, keyHash, depth+1)
		}
		return get(store, n.right, keyHash, depth+1)
	}
	return nil, false, nil
}
