// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/bitmark-inc/chaindb/chainmodel"

// EncodeName serializes a NameState tree-leaf value.
func EncodeName(ns *chainmodel.NameState) []byte {
	buf := make([]byte, 0, 96)
	buf = putHash(buf, ns.Owner.Hash)
	buf = putU32(buf, ns.Owner.Index)
	buf = putU64(buf, ns.Value)
	buf = putU64(buf, ns.Highest)
	buf = putU32(buf, ns.RegisteredAt)
	buf = putU32(buf, ns.RenewedAt)
	buf = putU32(buf, ns.RenewalCount)
	buf = putU32(buf, ns.TransferAt)
	if ns.TransferTo != nil {
		buf = putBool(buf, true)
		buf = putHash(buf, ns.TransferTo.Hash)
		buf = putU32(buf, ns.TransferTo.Index)
	} else {
		buf = putBool(buf, false)
	}
	buf = putBool(buf, ns.Revoked)
	buf = putBool(buf, ns.Claimed)
	buf = putU32(buf, ns.WeakHeight)
	return buf
}

// DecodeName parses a NameState tree-leaf value.
func DecodeName(b []byte) (*chainmodel.NameState, error) {
	ns := &chainmodel.NameState{}
	var err error
	if ns.Owner.Hash, b, err = getHash(b); err != nil {
		return nil, err
	}
	if ns.Owner.Index, b, err = getU32(b); err != nil {
		return nil, err
	}
	if ns.Value, b, err = getU64(b); err != nil {
		return nil, err
	}
	if ns.Highest, b, err = getU64(b); err != nil {
		return nil, err
	}
	if ns.RegisteredAt, b, err = getU32(b); err != nil {
		return nil, err
	}
	if ns.RenewedAt, b, err = getU32(b); err != nil {
		return nil, err
	}
	if ns.RenewalCount, b, err = getU32(b); err != nil {
		return nil, err
	}
	if ns.TransferAt, b, err = getU32(b); err != nil {
		return nil, err
	}
	var hasTransfer bool
	if hasTransfer, b, err = getBool(b); err != nil {
		return nil, err
	}
	if hasTransfer {
		var to chainmodel.Outpoint
		if to.Hash, b, err = getHash(b); err != nil {
			return nil, err
		}
		if to.Index, b, err = getU32(b); err != nil {
			return nil, err
		}
		ns.TransferTo = &to
	}
	if ns.Revoked, b, err = getBool(b); err != nil {
		return nil, err
	}
	if ns.Claimed, b, err = getBool(b); err != nil {
		return nil, err
	}
	if ns.WeakHeight, _, err = getU32(b); err != nil {
		return nil, err
	}
	return ns, nil
}

// EncodeNameUndo serializes the "w" record: a list of (nameHash, prior
// NameState-or-absent) pairs.
func EncodeNameUndo(u *chainmodel.NameUndo) []byte {
	buf := make([]byte, 0, 64*len(u.Deltas))
	buf = putU32(buf, uint32(len(u.Deltas)))
	for _, d := range u.Deltas {
		buf = putHash(buf, d.NameHash)
		if d.Previous == nil {
			buf = putBool(buf, false)
			continue
		}
		buf = putBool(buf, true)
		buf = putVarBytes(buf, EncodeName(d.Previous))
	}
	return buf
}

// DecodeNameUndo parses a "w" record.
func DecodeNameUndo(b []byte) (*chainmodel.NameUndo, error) {
	var count uint32
	var err error
	if count, b, err = getU32(b); err != nil {
		return nil, err
	}
	deltas := make([]chainmodel.NameDelta, count)
	for i := range deltas {
		var d chainmodel.NameDelta
		if d.NameHash, b, err = getHash(b); err != nil {
			return nil, err
		}
		var hasPrev bool
		if hasPrev, b, err = getBool(b); err != nil {
			return nil, err
		}
		if hasPrev {
			var raw []byte
			if raw, b, err = getVarBytes(b); err != nil {
				return nil, err
			}
			d.Previous, err = DecodeName(raw)
			if err != nil {
				return nil, err
			}
		}
		deltas[i] = d
	}
	return &chainmodel.NameUndo{Deltas: deltas}, nil
}
