// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import "github.com/syndtr/goleveldb/leveldb"

// writeSet accumulates node/value blobs produced by a Txn until Commit
// flushes them to the store in one leveldb batch.
type writeSet struct {
	nodes  map[Hash][]byte
	values map[Hash][]byte
}

func newWriteSet() *writeSet {
	return &writeSet{nodes: make(map[Hash][]byte), values: make(map[Hash][]byte)}
}

func (w *writeSet) putNode(h Hash, b []byte)  { w.nodes[h] = b }
func (w *writeSet) putValue(h Hash, b []byte) { w.values[h] = b }

// Txn is a single write transaction against the tree, rooted at
// whatever root the tree held when the transaction was opened. Inserts
// and removes only touch the in-memory write set; nothing is visible
// to other snapshots until Commit.
type Txn struct {
	store *Store
	root  Hash
	batch *writeSet
}

// RootHash returns the transaction's current (uncommitted) root.
func (tx *Txn) RootHash() Hash {
	return tx.root
}

// Get looks up key against the transaction's pending root, seeing its
// own uncommitted writes.
func (tx *Txn) Get(key []byte) ([]byte, bool, error) {
	keyHash := hashValue(key)
	return tx.get(tx.root, keyHash, 0)
}

func (tx *Txn) loadNode(h Hash) (*node, bool, error) {
	if h == ZeroHash {
		return nil, false, nil
	}
	if raw, ok := tx.batch.nodes[h]; ok {
		n, ok := decodeNode(raw)
		return n, ok, nil
	}
	return tx.store.getNode(h)
}

func (tx *Txn) loadValue(h Hash) ([]byte, error) {
	if raw, ok := tx.batch.values[h]; ok {
		return raw, nil
	}
	return tx.store.getValue(h)
}

func (tx *Txn) get(nodeHash, keyHash Hash, depth int) ([]byte, bool, error) {
	if nodeHash == ZeroHash {
		return nil, false, nil
	}
	n, ok, err := tx.loadNode(nodeHash)
	if err != nil || !ok {
		return nil, false, err
	}
	switch n.kind {
	case kindLeaf:
		if n.keyHash != keyHash {
			return nil, false, nil
		}
		v, err := tx.loadValue(n.valueHash)
		return v, err == nil, err
	default:
		if bit(keyHash, depth) == 0 {
			return tx.get(n.left, keyHash, depth+1)
		}
		return tx.get(n.right, keyHash, depth+1)
	}
}

// Insert sets key to value, creating or overwriting the leaf.
func (tx *Txn) Insert(key, value []byte) error {
	keyHash := hashValue(key)
	valueHash := hashValue(value)
	tx.batch.putValue(valueHash, value)
	newRoot, err := tx.insert(tx.root, keyHash, valueHash, 0)
	if err != nil {
		return err
	}
	tx.root = newRoot
	return nil
}

func (tx *Txn) persistLeaf(keyHash, valueHash Hash) Hash {
	h := leafHash(keyHash, valueHash)
	tx.batch.putNode(h, encodeLeaf(keyHash, valueHash))
	return h
}

func (tx *Txn) persistInternal(left, right Hash) Hash {
	h := internalHash(left, right)
	if h == ZeroHash {
		return h
	}
	tx.batch.putNode(h, encodeInternal(left, right))
	return h
}

func (tx *Txn) insert(nodeHash, keyHash, valueHash Hash, depth int) (Hash, error) {
	if nodeHash == ZeroHash {
		return tx.persistLeaf(keyHash, valueHash), nil
	}
	n, ok, err := tx.loadNode(nodeHash)
	if err != nil {
		return ZeroHash, err
	}
	if !ok {
		return tx.persistLeaf(keyHash, valueHash), nil
	}
	switch n.kind {
	case kindLeaf:
		if n.keyHash == keyHash {
			return tx.persistLeaf(keyHash, valueHash), nil
		}
		return tx.split(n.keyHash, n.valueHash, keyHash, valueHash, depth), nil
	default:
		if bit(keyHash, depth) == 0 {
			newLeft, err := tx.insert(n.left, keyHash, valueHash, depth+1)
			if err != nil {
				return ZeroHash, err
			}
			return tx.persistInternal(newLeft, n.right), nil
		}
		newRight, err := tx.insert(n.right, keyHash, valueHash, depth+1)
		if err != nil {
			return ZeroHash, err
		}
		return tx.persistInternal(n.left, newRight), nil
	}
}

// split pushes two leaves with a shared bit prefix down until their key
// hashes diverge, materializing an Internal node chain along the way.
// depth==256 with keys still equal would mean a Blake2b-256 collision;
// callers never hit it in practice.
func (tx *Txn) split(k1, v1, k2, v2 Hash, depth int) Hash {
	b1 := bit(k1, depth)
	b2 := bit(k2, depth)
	if b1 == b2 {
		child := tx.split(k1, v1, k2, v2, depth+1)
		if b1 == 0 {
			return tx.persistInternal(child, ZeroHash)
		}
		return tx.persistInternal(ZeroHash, child)
	}
	leaf1 := tx.persistLeaf(k1, v1)
	leaf2 := tx.persistLeaf(k2, v2)
	if b1 == 0 {
		return tx.persistInternal(leaf1, leaf2)
	}
	return tx.persistInternal(leaf2, leaf1)
}

// Remove deletes key if present. Removing an absent key is a no-op.
func (tx *Txn) Remove(key []byte) error {
	keyHash := hashValue(key)
	newRoot, _, err := tx.remove(tx.root, keyHash, 0)
	if err != nil {
		return err
	}
	tx.root = newRoot
	return nil
}

// remove returns the new subtree root and, when it collapsed to a
// single leaf, that leaf's node so the caller can propagate the
// collapse upward instead of leaving a chain of one-child internals.
func (tx *Txn) remove(nodeHash, keyHash Hash, depth int) (Hash, *node, error) {
	if nodeHash == ZeroHash {
		return ZeroHash, nil, nil
	}
	n, ok, err := tx.loadNode(nodeHash)
	if err != nil || !ok {
		return nodeHash, nil, err
	}
	switch n.kind {
	case kindLeaf:
		if n.keyHash != keyHash {
			return nodeHash, nil, nil
		}
		return ZeroHash, nil, nil
	default:
		var newLeft, newRight Hash
		var collapsed *node
		if bit(keyHash, depth) == 0 {
			newLeft, collapsed, err = tx.remove(n.left, keyHash, depth+1)
			newRight = n.right
		} else {
			newRight, collapsed, err = tx.remove(n.right, keyHash, depth+1)
			newLeft = n.left
		}
		if err != nil {
			return ZeroHash, nil, err
		}
		if collapsed != nil {
			if bit(keyHash, depth) == 0 {
				newLeft = leafHash(collapsed.keyHash, collapsed.valueHash)
			} else {
				newRight = leafHash(collapsed.keyHash, collapsed.valueHash)
			}
		}
		if newLeft == ZeroHash && newRight == ZeroHash {
			return ZeroHash, nil, nil
		}
		if newLeft == ZeroHash || newRight == ZeroHash {
			only := newLeft
			if only == ZeroHash {
				only = newRight
			}
			if leafNode, ok, err := tx.loadNode(only); err == nil && ok && leafNode.kind == kindLeaf {
				return only, leafNode, nil
			}
		}
		return tx.persistInternal(newLeft, newRight), nil, nil
	}
}

// Commit flushes the transaction's write set to the store in a single
// leveldb batch and returns the new root hash.
func (tx *Txn) Commit() (Hash, error) {
	if len(tx.batch.nodes) == 0 && len(tx.batch.values) == 0 {
		return tx.root, nil
	}
	wb := new(leveldb.Batch)
	for h, v := range tx.batch.values {
		wb.Put(valueKey(h), v)
	}
	for h, n := range tx.batch.nodes {
		wb.Put(nodeKey(h), n)
	}
	if err := tx.store.db.Write(wb, nil); err != nil {
		return ZeroHash, err
	}
	tx.batch = newWriteSet()
	return tx.root, nil
}

// Rollback discards every uncommitted Insert/Remove made against the
// transaction and rewinds it to root. The whole write set is replaced
// with an empty one, so none of its staged nodes or values ever reach
// the store.
func (tx *Txn) Rollback(root Hash) {
	tx.root = root
	tx.batch = newWriteSet()
}
