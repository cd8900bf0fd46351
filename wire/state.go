// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/bitmark-inc/chaindb/chainmodel"

// ChainState mirrors chainstate.ChainState's persisted fields. wire does
// not import chainstate (which itself depends on wire), so the encoded
// shape is expressed with plain parameters to keep the dependency
// direction one-way: chainstate -> wire.

// EncodeChainState serializes the "R" record.
func EncodeChainState(tip chainmodel.Hash, txCount, coinCount, value, burned uint64, committed bool) []byte {
	buf := make([]byte, 0, 32+8*4+1)
	buf = putHash(buf, tip)
	buf = putU64(buf, txCount)
	buf = putU64(buf, coinCount)
	buf = putU64(buf, value)
	buf = putU64(buf, burned)
	buf = putBool(buf, committed)
	return buf
}

// ChainStateFields is the decoded form of the "R" record.
type ChainStateFields struct {
	Tip       chainmodel.Hash
	TxCount   uint64
	CoinCount uint64
	Value     uint64
	Burned    uint64
	Committed bool
}

// DecodeChainState parses the "R" record.
func DecodeChainState(b []byte) (*ChainStateFields, error) {
	f := &ChainStateFields{}
	var err error
	if f.Tip, b, err = getHash(b); err != nil {
		return nil, err
	}
	if f.TxCount, b, err = getU64(b); err != nil {
		return nil, err
	}
	if f.CoinCount, b, err = getU64(b); err != nil {
		return nil, err
	}
	if f.Value, b, err = getU64(b); err != nil {
		return nil, err
	}
	if f.Burned, b, err = getU64(b); err != nil {
		return nil, err
	}
	if f.Committed, _, err = getBool(b); err != nil {
		return nil, err
	}
	return f, nil
}

// EncodeTreeState serializes the "s" record.
func EncodeTreeState(root chainmodel.Hash, commitHeight, compactionHeight uint32, committed bool) []byte {
	buf := make([]byte, 0, 32+4+4+1)
	buf = putHash(buf, root)
	buf = putU32(buf, commitHeight)
	buf = putU32(buf, compactionHeight)
	buf = putBool(buf, committed)
	return buf
}

// TreeStateFields is the decoded form of the "s" record.
type TreeStateFields struct {
	TreeRoot         chainmodel.Hash
	CommitHeight     uint32
	CompactionHeight uint32
	Committed        bool
}

// DecodeTreeState parses the "s" record.
func DecodeTreeState(b []byte) (*TreeStateFields, error) {
	f := &TreeStateFields{}
	var err error
	if f.TreeRoot, b, err = getHash(b); err != nil {
		return nil, err
	}
	if f.CommitHeight, b, err = getU32(b); err != nil {
		return nil, err
	}
	if f.CompactionHeight, b, err = getU32(b); err != nil {
		return nil, err
	}
	if f.Committed, _, err = getBool(b); err != nil {
		return nil, err
	}
	return f, nil
}

// EncodeFlags serializes the "O" record.
func EncodeFlags(network string, spv, prune, indexTX, indexAddress bool) []byte {
	buf := make([]byte, 0, 4+len(network)+4)
	buf = putVarBytes(buf, []byte(network))
	flags := byte(0)
	if spv {
		flags |= 1 << 0
	}
	if prune {
		flags |= 1 << 1
	}
	if indexTX {
		flags |= 1 << 2
	}
	if indexAddress {
		flags |= 1 << 3
	}
	buf = append(buf, flags)
	return buf
}

// FlagsFields is the decoded form of the "O" record.
type FlagsFields struct {
	Network      string
	SPV          bool
	Prune        bool
	IndexTX      bool
	IndexAddress bool
}

// DecodeFlags parses the "O" record.
func DecodeFlags(b []byte) (*FlagsFields, error) {
	networkBytes, b, err := getVarBytes(b)
	if err != nil {
		return nil, err
	}
	if len(b) < 1 {
		return nil, errTruncated("flags")
	}
	flags := b[0]
	return &FlagsFields{
		Network:      string(networkBytes),
		SPV:          flags&(1<<0) != 0,
		Prune:        flags&(1<<1) != 0,
		IndexTX:      flags&(1<<2) != 0,
		IndexAddress: flags&(1<<3) != 0,
	}, nil
}

func errTruncated(what string) error {
	return &truncatedError{what}
}

type truncatedError struct{ what string }

func (e *truncatedError) Error() string { return "wire: truncated " + e.what }
