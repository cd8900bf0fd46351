// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainquery

import (
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
)

// addrHash matches applyblock.addrHash so lookups key the same way
// saveView indexed them.
func addrHash(addr []byte) chainmodel.Hash {
	return blake2b.Sum256(addr)
}

// GetHashesByAddress returns every transaction hash indexed against
// addr, in leveldb key order: sorted by txid, not by height or by the
// order the transactions were indexed.
func (r *Reader) GetHashesByAddress(addr []byte) ([]chainmodel.Hash, error) {
	prefix := layout.AddrTXPrefix(addrHash(addr))
	var out []chainmodel.Hash
	err := r.meta.ScanPrefix(prefix, layout.RangeUpperBound(prefix), func(key, value []byte) bool {
		var h chainmodel.Hash
		copy(h[:], key)
		out = append(out, h)
		return true
	})
	return out, err
}

// GetCoinsByAddress returns every unspent coin ever indexed as paid to
// addr. Coins spent since indexing was enabled are skipped (the coin
// key is deleted on spend; the address-coin key is deleted alongside
// it by saveView).
func (r *Reader) GetCoinsByAddress(addr []byte) ([]*chainmodel.CoinEntry, error) {
	prefix := layout.AddrCoinPrefix(addrHash(addr))
	var out []*chainmodel.CoinEntry
	err := r.meta.ScanPrefix(prefix, layout.RangeUpperBound(prefix), func(key, value []byte) bool {
		if len(key) < 36 {
			return true
		}
		var op chainmodel.Outpoint
		copy(op.Hash[:], key[:32])
		op.Index = beUint32(key[32:36])
		coin, err := r.GetCoin(op)
		if err != nil {
			return true
		}
		out = append(out, coin)
		return true
	})
	return out, err
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// GetMetaByAddress returns TXMeta for every transaction indexed against
// addr, requiring both indexTX and indexAddress.
func (r *Reader) GetMetaByAddress(addr []byte) ([]*chainmodel.TXMeta, error) {
	hashes, err := r.GetHashesByAddress(addr)
	if err != nil {
		return nil, err
	}
	out := make([]*chainmodel.TXMeta, 0, len(hashes))
	for _, h := range hashes {
		meta, err := r.GetTXMeta(h)
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// GetTXByAddress returns the full transaction bodies indexed against
// addr, resolved through GetMetaByAddress and the containing block.
func (r *Reader) GetTXByAddress(addr []byte) ([]*chainmodel.Transaction, error) {
	metas, err := r.GetMetaByAddress(addr)
	if err != nil {
		return nil, err
	}
	out := make([]*chainmodel.Transaction, 0, len(metas))
	for _, m := range metas {
		block, err := r.GetBlock(m.BlockHash)
		if err != nil {
			continue
		}
		if int(m.Index) < len(block.Transactions) {
			out = append(out, &block.Transactions[m.Index])
		}
	}
	return out, nil
}
