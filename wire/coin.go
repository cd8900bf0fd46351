// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/bitmark-inc/chaindb/chainmodel"

// EncodeCoin serializes a CoinEntry (the "c" record).
func EncodeCoin(c *chainmodel.CoinEntry) []byte {
	buf := make([]byte, 0, 4+1+8+len(c.Output.Address)+16)
	buf = putU32(buf, c.Height)
	buf = putBool(buf, c.Coinbase)
	buf = putU64(buf, c.Output.Value)
	buf = putVarBytes(buf, c.Output.Address)
	buf = append(buf, byte(c.Output.Covenant.Type))
	buf = putU32(buf, uint32(len(c.Output.Covenant.Items)))
	for _, item := range c.Output.Covenant.Items {
		buf = putVarBytes(buf, item)
	}
	return buf
}

// DecodeCoin parses a "c" record.
func DecodeCoin(b []byte) (*chainmodel.CoinEntry, error) {
	c := &chainmodel.CoinEntry{}
	var err error
	if c.Height, b, err = getU32(b); err != nil {
		return nil, err
	}
	if c.Coinbase, b, err = getBool(b); err != nil {
		return nil, err
	}
	if c.Output.Value, b, err = getU64(b); err != nil {
		return nil, err
	}
	if c.Output.Address, b, err = getVarBytes(b); err != nil {
		return nil, err
	}
	if len(b) < 1 {
		return nil, errTruncated("covenant type")
	}
	c.Output.Covenant.Type = chainmodel.CovenantType(b[0])
	b = b[1:]
	var count uint32
	if count, b, err = getU32(b); err != nil {
		return nil, err
	}
	items := make([][]byte, count)
	for i := range items {
		var item []byte
		if item, b, err = getVarBytes(b); err != nil {
			return nil, err
		}
		items[i] = item
	}
	c.Output.Covenant.Items = items
	return c, nil
}
