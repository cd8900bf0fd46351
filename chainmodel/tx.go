// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmodel

// Outpoint identifies a spendable output by the transaction that
// created it and its index within that transaction.
type Outpoint struct {
	Hash  Hash
	Index uint32
}

// Output is one spendable slot of a transaction.
type Output struct {
	Value    Amount
	Address  []byte
	Covenant Covenant
}

// Unspendable reports whether this output can never be added to the
// coin set (a zero-value data commitment, or a covenant that marks
// itself unspendable).
func (o Output) Unspendable() bool {
	return o.Covenant.Unspendable()
}

// Input references a previously created output being spent.
type Input struct {
	Prevout  Outpoint
	Sequence uint32
}

// Transaction is a full transaction: inputs, outputs, and whether it is
// the block's coinbase (first transaction, no real inputs).
type Transaction struct {
	Hash      Hash
	Inputs    []Input
	Outputs   []Output
	Coinbase  bool
	LockTime  uint32
}

// TXMeta is the persisted index record for indexTX (the "t" key):
// enough to locate the transaction's containing block and position.
type TXMeta struct {
	BlockHash Hash
	Height    Height
	Index     uint32
}

// Block is a full block: header fields needed by chaindb plus its
// transaction list. Full validation-relevant header fields (bits, time,
// nonce, ...) are opaque to chaindb and carried in Header.Extra.
type Block struct {
	Header       Header
	Transactions []Transaction
}

// Header is the subset of block-header fields chaindb persists and
// reasons about; everything else is caller/consensus concern.
type Header struct {
	PrevBlock Hash
	TreeRoot  Hash
	Time      uint32
	Extra     []byte // opaque consensus-specific header bytes (bits, nonce, ...)
}
