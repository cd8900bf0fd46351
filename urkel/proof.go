// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import "github.com/bitmark-inc/chaindb/chainerr"

// Proof is a Merkle inclusion (or non-inclusion) proof for a single key
// against a fixed root: the sibling hash at every internal node walked
// from the root down to the key's leaf position, plus the leaf actually
// found there (if any).
type Proof struct {
	Siblings  []Hash
	KeyHash   Hash
	Found     bool
	ValueHash Hash
	// LeafKeyHash is the key hash of the leaf the walk ended on; it
	// differs from KeyHash when that leaf belongs to another key.
	LeafKeyHash Hash
}

// Prove builds a proof for key against root.
func (s *Snapshot) Prove(key []byte) (*Proof, error) {
	keyHash := hashValue(key)
	p := &Proof{KeyHash: keyHash}
	nodeHash := s.root
	for depth := 0; ; depth++ {
		if nodeHash == ZeroHash {
			return p, nil
		}
		n, ok, err := s.store.getNode(nodeHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, chainerr.ErrEntryNotFound
		}
		if n.kind == kindLeaf {
			p.Found = n.keyHash == keyHash
			p.LeafKeyHash = n.keyHash
			p.ValueHash = n.valueHash
			return p, nil
		}
		if bit(keyHash, depth) == 0 {
			p.Siblings = append(p.Siblings, n.right)
			nodeHash = n.left
		} else {
			p.Siblings = append(p.Siblings, n.left)
			nodeHash = n.right
		}
	}
}

// VerifyProof recomputes the root implied by p against keyHash and
// reports whether it matches root, along with whether p claims the key
// is present.
func VerifyProof(root Hash, p *Proof) (valid bool, found bool) {
	var cur Hash
	if p.Found {
		cur = leafHash(p.KeyHash, p.ValueHash)
	} else if p.LeafKeyHash != ZeroHash {
		if p.LeafKeyHash == p.KeyHash {
			return false, false
		}
		cur = leafHash(p.LeafKeyHash, p.ValueHash)
	} else {
		cur = ZeroHash
	}
	for i := len(p.Siblings) - 1; i >= 0; i-- {
		sibling := p.Siblings[i]
		if bit(p.KeyHash, i) == 0 {
			cur = internalHash(cur, sibling)
		} else {
			cur = internalHash(sibling, cur)
		}
	}
	return cur == root, p.Found
}
