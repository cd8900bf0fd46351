// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainmodel holds the wire-independent domain types shared by
// every chaindb component: hashes, entries, blocks, transactions,
// covenants, coins and name-system state.
package chainmodel

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is the 32-byte opaque identifier used throughout chaindb — for
// block hashes, transaction ids and name hashes alike. Reusing
// chainhash.Hash avoids redefining comparison/String/byte-order helpers
// the storage layer already needs.
type Hash = chainhash.Hash

// Height is a block height. Height 0 is genesis.
type Height = uint32

// Amount is a quantity of the chain's native currency, in the smallest
// unit.
type Amount = uint64

// ZeroHash is the all-zero hash, used as a sentinel for "no parent" and
// "no coin".
var ZeroHash Hash
