// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/bitmark-inc/chaindb/chainmodel"

// EncodeEntry serializes a ChainEntry (the "e" record).
func EncodeEntry(e *chainmodel.ChainEntry) []byte {
	buf := make([]byte, 0, 32+4+32+32+4+4+len(e.Extra))
	buf = putHash(buf, e.Hash)
	buf = putU32(buf, e.Height)
	buf = putHash(buf, e.PrevBlock)
	buf = putHash(buf, e.TreeRoot)
	buf = putU32(buf, e.Time)
	buf = putVarBytes(buf, e.Extra)
	return buf
}

// DecodeEntry parses an "e" record.
func DecodeEntry(b []byte) (*chainmodel.ChainEntry, error) {
	e := &chainmodel.ChainEntry{}
	var err error
	if e.Hash, b, err = getHash(b); err != nil {
		return nil, err
	}
	if e.Height, b, err = getU32(b); err != nil {
		return nil, err
	}
	if e.PrevBlock, b, err = getHash(b); err != nil {
		return nil, err
	}
	if e.TreeRoot, b, err = getHash(b); err != nil {
		return nil, err
	}
	if e.Time, b, err = getU32(b); err != nil {
		return nil, err
	}
	if e.Extra, _, err = getVarBytes(b); err != nil {
		return nil, err
	}
	return e, nil
}
