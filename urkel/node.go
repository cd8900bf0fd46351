// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package urkel implements the authenticated tree (component C): a
// 256-bit radix Merkle trie over Blake2b-256 hashed keys, content
// addressed and backed by its own leveldb store, with snapshot,
// injection, transaction and compaction operations.
//
// Unlike a fully path-compressed production Urkel tree, nodes are not
// merged along single-child chains; every level down to the bit where
// two keys diverge is a real Internal node, and a leaf sits just below
// that point. This trades some storage density for a much
// smaller, easier-to-verify implementation while keeping the same
// content-addressed, immutable-history semantics (rootHash, inject,
// snapshot, proofs, compact all behave identically from the caller's
// point of view).
package urkel

import (
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/chaindb/chainmodel"
)

// Hash is the tree's node/leaf/root hash type.
type Hash = chainmodel.Hash

// ZeroHash denotes an empty subtree.
var ZeroHash Hash

const (
	kindLeaf     = 0x00
	kindInternal = 0x01
)

// node is the in-memory decoded form of a persisted tree node.
type node struct {
	kind byte

	// leaf fields
	keyHash   Hash
	valueHash Hash

	// internal fields
	left  Hash
	right Hash
}

func leafHash(keyHash, valueHash Hash) Hash {
	buf := make([]byte, 1+32+32)
	buf[0] = kindLeaf
	copy(buf[1:33], keyHash[:])
	copy(buf[33:], valueHash[:])
	return blake2b.Sum256(buf)
}

func internalHash(left, right Hash) Hash {
	if left == ZeroHash && right == ZeroHash {
		return ZeroHash
	}
	buf := make([]byte, 1+32+32)
	buf[0] = kindInternal
	copy(buf[1:33], left[:])
	copy(buf[33:], right[:])
	return blake2b.Sum256(buf)
}

func hashValue(value []byte) Hash {
	return blake2b.Sum256(value)
}

func encodeLeaf(keyHash, valueHash Hash) []byte {
	buf := make([]byte, 1+32+32)
	buf[0] = kindLeaf
	copy(buf[1:33], keyHash[:])
	copy(buf[33:], valueHash[:])
	return buf
}

func encodeInternal(left, right Hash) []byte {
	buf := make([]byte, 1+32+32)
	buf[0] = kindInternal
	copy(buf[1:33], left[:])
	copy(buf[33:], right[:])
	return buf
}

func decodeNode(b []byte) (*node, bool) {
	if len(b) != 65 {
		return nil, false
	}
	n := &node{kind: b[0]}
	switch n.kind {
	case kindLeaf:
		copy(n.keyHash[:], b[1:33])
		copy(n.valueHash[:], b[33:65])
	case kindInternal:
		copy(n.left[:], b[1:33])
		copy(n.right[:], b[33:65])
	default:
		return nil, false
	}
	return n, true
}

// bit returns bit i (0 = most significant) of h.
func bit(h Hash, i int) int {
	byteIdx := i / 8
	bitIdx := 7 - uint(i%8)
	return int((h[byteIdx] >> bitIdx) & 1)
}
