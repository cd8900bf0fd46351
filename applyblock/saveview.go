// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package applyblock

import (
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/wire"
)

// SaveView persists every coin the view touched into the metadb batch
// and stages the matching cache writes. When indexAddress is set it
// also maintains the optional address -> coin index, and the address ->
// tx index when indexTX is set as well; when indexTX is set it
// maintains the tx -> block-position index from txMeta.
func SaveView(view *chainmodel.CoinView, meta *metadb.Batch, caches *cachelayer.Caches, txMeta map[chainmodel.Hash]chainmodel.TXMeta, indexTX, indexAddress bool) {
	for op, sc := range view.Dirty() {
		key := layout.CoinKey(op.Hash, op.Index)
		hash := addrHash(sc.Coin.Output.Address)
		if sc.Spent {
			meta.Delete(key)
			caches.Coins.StageSpend(op)
			if indexAddress {
				meta.Delete(layout.AddrCoinKey(hash, op.Hash, op.Index))
			}
			continue
		}
		meta.Put(key, wire.EncodeCoin(&sc.Coin))
		coin := sc.Coin
		caches.Coins.Stage(op, &coin)
		if indexAddress {
			meta.Put(layout.AddrCoinKey(hash, op.Hash, op.Index), nil)
			if indexTX {
				meta.Put(layout.AddrTXKey(hash, op.Hash), nil)
			}
		}
	}

	if indexTX {
		for hash, m := range txMeta {
			meta.Put(layout.TXMetaKey(hash), wire.EncodeTXMeta(&m))
		}
	}
}

func addrHash(addr []byte) chainmodel.Hash {
	return blake2b.Sum256(addr)
}
