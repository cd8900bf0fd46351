// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package layout builds the one-byte-prefixed keys of the chaindb meta
// store, following PoolHandle.prefixKey's convention (storage/handle.go)
// generalized from a struct-tag-registered pool set to named key
// constructors, since chaindb's key space is fixed rather than
// configured per deployment.
package layout

import "encoding/binary"

// single-byte table prefixes
const (
	prefixVersion     = 'V'
	prefixFlags       = 'O'
	prefixChainState  = 'R'
	prefixTreeState   = 's'
	prefixDeployments = 'D'
	prefixBitField    = 'f'
	prefixHashToHeight = 'h'
	prefixHeightToHash = 'H'
	prefixEntry       = 'e'
	prefixNext        = 'n'
	prefixTip         = 'p'
	prefixCoin        = 'c'
	prefixTXMeta      = 't'
	prefixAddrTX      = 'T'
	prefixAddrCoin    = 'C'
	prefixDeployState = 'v'
	prefixNameUndo    = 'w'
)

// VersionKey is the fixed schema-version record key.
func VersionKey() []byte { return []byte{prefixVersion} }

// FlagsKey is the ChainFlags record key.
func FlagsKey() []byte { return []byte{prefixFlags} }

// ChainStateKey is the ChainState record key.
func ChainStateKey() []byte { return []byte{prefixChainState} }

// TreeStateKey is the TreeState record key.
func TreeStateKey() []byte { return []byte{prefixTreeState} }

// DeploymentsKey is the deployment-table record key.
func DeploymentsKey() []byte { return []byte{prefixDeployments} }

// BitFieldKey is the BitField record key.
func BitFieldKey() []byte { return []byte{prefixBitField} }

// HashKey builds h(hash) -> height.
func HashKey(hash [32]byte) []byte {
	return append([]byte{prefixHashToHeight}, hash[:]...)
}

// HeightKey builds H(height) -> hash.
func HeightKey(height uint32) []byte {
	k := make([]byte, 5)
	k[0] = prefixHeightToHash
	binary.BigEndian.PutUint32(k[1:], height)
	return k
}

// EntryKey builds e(hash) -> ChainEntry.
func EntryKey(hash [32]byte) []byte {
	return append([]byte{prefixEntry}, hash[:]...)
}

// NextKey builds n(hash) -> next-block hash.
func NextKey(hash [32]byte) []byte {
	return append([]byte{prefixNext}, hash[:]...)
}

// TipKey builds p(hash) -> empty (tip-set membership).
func TipKey(hash [32]byte) []byte {
	return append([]byte{prefixTip}, hash[:]...)
}

// TipPrefix is the range prefix for scanning the whole tip set.
func TipPrefix() []byte { return []byte{prefixTip} }

// CoinKey builds c(txid, index) -> CoinEntry.
func CoinKey(txid [32]byte, index uint32) []byte {
	k := make([]byte, 1+32+4)
	k[0] = prefixCoin
	copy(k[1:33], txid[:])
	binary.BigEndian.PutUint32(k[33:], index)
	return k
}

// TXMetaKey builds t(hash) -> TXMeta.
func TXMetaKey(hash [32]byte) []byte {
	return append([]byte{prefixTXMeta}, hash[:]...)
}

// AddrTXKey builds T(addrHash, txid) -> empty.
func AddrTXKey(addrHash, txid [32]byte) []byte {
	k := make([]byte, 1+32+32)
	k[0] = prefixAddrTX
	copy(k[1:33], addrHash[:])
	copy(k[33:], txid[:])
	return k
}

// AddrTXPrefix is the range prefix for one address's tx index.
func AddrTXPrefix(addrHash [32]byte) []byte {
	return append([]byte{prefixAddrTX}, addrHash[:]...)
}

// AddrCoinKey builds C(addrHash, txid, index) -> empty.
func AddrCoinKey(addrHash, txid [32]byte, index uint32) []byte {
	k := make([]byte, 1+32+32+4)
	k[0] = prefixAddrCoin
	copy(k[1:33], addrHash[:])
	copy(k[33:65], txid[:])
	binary.BigEndian.PutUint32(k[65:], index)
	return k
}

// AddrCoinPrefix is the range prefix for one address's coin index.
func AddrCoinPrefix(addrHash [32]byte) []byte {
	return append([]byte{prefixAddrCoin}, addrHash[:]...)
}

// DeployStateKey builds v(bit, hash) -> 1-byte state.
func DeployStateKey(bit byte, hash [32]byte) []byte {
	k := make([]byte, 1+1+32)
	k[0] = prefixDeployState
	k[1] = bit
	copy(k[2:], hash[:])
	return k
}

// NameUndoKey builds w(height) -> NameUndo.
func NameUndoKey(height uint32) []byte {
	k := make([]byte, 5)
	k[0] = prefixNameUndo
	binary.BigEndian.PutUint32(k[1:], height)
	return k
}

// PrefixUpperBound returns the exclusive end of a range starting with
// the single byte prefix: the smallest key strictly greater than every
// key beginning with prefix. Used the way storage.PoolHandle.limit is
// computed (prefix+1), generalized to handle prefix == 0xff.
func PrefixUpperBound(prefix byte) []byte {
	if prefix == 0xff {
		return nil
	}
	return []byte{prefix + 1}
}

// RangeUpperBound is PrefixUpperBound generalized to a multi-byte
// prefix, for scans scoped to something narrower than a whole table
// (e.g. one address's slice of the "C"/"T" tables): it increments the
// last byte that isn't already 0xff, dropping the trailing run of
// 0xff bytes, and returns nil (scan to the end of the table) if every
// byte is 0xff.
func RangeUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
