// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import (
	"os"

	"github.com/syndtr/goleveldb/leveldb"
)

// Compact rewrites the tree's store, keeping only nodes and values
// reachable from the current root, then swaps the live store over to
// the rewritten one. It mirrors chainmutate's compactTree five-step
// sequence: build the new store in tmpDir, close the old store, replace
// the on-disk directory, reopen.
func (t *Tree) Compact(tmpDir string) error {
	fresh, err := openStore(tmpDir, false)
	if err != nil {
		return err
	}
	if err := copyReachable(t.store, fresh, t.root); err != nil {
		fresh.Close()
		os.RemoveAll(tmpDir)
		return err
	}
	oldPath := t.store.path
	if err := t.store.Close(); err != nil {
		fresh.Close()
		return err
	}
	if err := fresh.Close(); err != nil {
		return err
	}
	if err := os.RemoveAll(oldPath); err != nil {
		return err
	}
	if err := os.Rename(tmpDir, oldPath); err != nil {
		return err
	}
	reopened, err := openStore(oldPath, false)
	if err != nil {
		return err
	}
	t.store = reopened
	return nil
}

func copyReachable(src, dst *Store, root Hash) error {
	if root == ZeroHash {
		return nil
	}
	wb := new(leveldb.Batch)
	seen := make(map[Hash]bool)
	if err := walkCopy(src, root, wb, seen); err != nil {
		return err
	}
	return dst.db.Write(wb, nil)
}

func walkCopy(src *Store, h Hash, wb *leveldb.Batch, seen map[Hash]bool) error {
	if h == ZeroHash || seen[h] {
		return nil
	}
	seen[h] = true
	n, ok, err := src.getNode(h)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	switch n.kind {
	case kindLeaf:
		wb.Put(nodeKey(h), encodeLeaf(n.keyHash, n.valueHash))
		v, err := src.getValue(n.valueHash)
		if err != nil {
			return err
		}
		if v != nil {
			wb.Put(valueKey(n.valueHash), v)
		}
	case kindInternal:
		wb.Put(nodeKey(h), encodeInternal(n.left, n.right))
		if err := walkCopy(src, n.left, wb, seen); err != nil {
			return err
		}
		if err := walkCopy(src, n.right, wb, seen); err != nil {
			return err
		}
	}
	return nil
}
