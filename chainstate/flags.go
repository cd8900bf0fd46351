// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate

import (
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/wire"
)

// ChainFlags is the "O" record: the database configuration, compared
// with Matches on every writable open and rewritten only by SaveFlags
// and Prune.
type ChainFlags struct {
	Network      string
	SPV          bool
	Prune        bool
	IndexTX      bool
	IndexAddress bool
}

// Encode serializes f for storage under layout.FlagsKey.
func (f ChainFlags) Encode() []byte {
	return wire.EncodeFlags(f.Network, f.SPV, f.Prune, f.IndexTX, f.IndexAddress)
}

// DecodeFlags parses a persisted "O" record.
func DecodeFlags(b []byte) (ChainFlags, error) {
	fields, err := wire.DecodeFlags(b)
	if err != nil {
		return ChainFlags{}, err
	}
	return ChainFlags{
		Network:      fields.Network,
		SPV:          fields.SPV,
		Prune:        fields.Prune,
		IndexTX:      fields.IndexTX,
		IndexAddress: fields.IndexAddress,
	}, nil
}

// LoadFlags reads the "O" record. The bool reports whether one existed.
func LoadFlags(store *metadb.Store) (ChainFlags, bool, error) {
	b, err := store.Get(layout.FlagsKey())
	if err != nil || b == nil {
		return ChainFlags{}, false, err
	}
	f, err := DecodeFlags(b)
	return f, err == nil, err
}

// StageFlags stages a write of f into a batch. Callers only do this
// once, the first time a database is created.
func StageFlags(b *metadb.Batch, f ChainFlags) {
	b.Put(layout.FlagsKey(), f.Encode())
}

// Matches reports whether an on-disk flag set is compatible with the
// flags requested for this open — every field must agree exactly,
// since flags describe an immutable on-disk layout choice (pruned vs
// full, indexed vs not) rather than a runtime toggle.
func (f ChainFlags) Matches(other ChainFlags) bool {
	return f == other
}
