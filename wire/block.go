// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/bitmark-inc/chaindb/chainmodel"

// EncodeBlock serializes a full Block for the blob store. The block
// store treats this as an opaque byte string, stored as-is and parsed
// on demand; this codec is what performs that parsing.
func EncodeBlock(blk *chainmodel.Block) []byte {
	buf := make([]byte, 0, 256)
	buf = putHash(buf, blk.Header.PrevBlock)
	buf = putHash(buf, blk.Header.TreeRoot)
	buf = putU32(buf, blk.Header.Time)
	buf = putVarBytes(buf, blk.Header.Extra)
	buf = putU32(buf, uint32(len(blk.Transactions)))
	for i := range blk.Transactions {
		buf = putVarBytes(buf, EncodeTransaction(&blk.Transactions[i]))
	}
	return buf
}

// DecodeBlock parses a raw block blob.
func DecodeBlock(b []byte) (*chainmodel.Block, error) {
	blk := &chainmodel.Block{}
	var err error
	if blk.Header.PrevBlock, b, err = getHash(b); err != nil {
		return nil, err
	}
	if blk.Header.TreeRoot, b, err = getHash(b); err != nil {
		return nil, err
	}
	if blk.Header.Time, b, err = getU32(b); err != nil {
		return nil, err
	}
	if blk.Header.Extra, b, err = getVarBytes(b); err != nil {
		return nil, err
	}
	var count uint32
	if count, b, err = getU32(b); err != nil {
		return nil, err
	}
	txs := make([]chainmodel.Transaction, count)
	for i := range txs {
		var raw []byte
		if raw, b, err = getVarBytes(b); err != nil {
			return nil, err
		}
		tx, err := DecodeTransaction(raw)
		if err != nil {
			return nil, err
		}
		txs[i] = *tx
	}
	blk.Transactions = txs
	return blk, nil
}

// EncodeTransaction serializes a single transaction.
func EncodeTransaction(tx *chainmodel.Transaction) []byte {
	buf := make([]byte, 0, 128)
	buf = putHash(buf, tx.Hash)
	buf = putBool(buf, tx.Coinbase)
	buf = putU32(buf, tx.LockTime)
	buf = putU32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = putHash(buf, in.Prevout.Hash)
		buf = putU32(buf, in.Prevout.Index)
		buf = putU32(buf, in.Sequence)
	}
	buf = putU32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = putU64(buf, out.Value)
		buf = putVarBytes(buf, out.Address)
		buf = append(buf, byte(out.Covenant.Type))
		buf = putU32(buf, uint32(len(out.Covenant.Items)))
		for _, item := range out.Covenant.Items {
			buf = putVarBytes(buf, item)
		}
	}
	return buf
}

// DecodeTransaction parses a single transaction.
func DecodeTransaction(b []byte) (*chainmodel.Transaction, error) {
	tx := &chainmodel.Transaction{}
	var err error
	if tx.Hash, b, err = getHash(b); err != nil {
		return nil, err
	}
	if tx.Coinbase, b, err = getBool(b); err != nil {
		return nil, err
	}
	if tx.LockTime, b, err = getU32(b); err != nil {
		return nil, err
	}
	var inCount uint32
	if inCount, b, err = getU32(b); err != nil {
		return nil, err
	}
	inputs := make([]chainmodel.Input, inCount)
	for i := range inputs {
		var in chainmodel.Input
		if in.Prevout.Hash, b, err = getHash(b); err != nil {
			return nil, err
		}
		if in.Prevout.Index, b, err = getU32(b); err != nil {
			return nil, err
		}
		if in.Sequence, b, err = getU32(b); err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	tx.Inputs = inputs

	var outCount uint32
	if outCount, b, err = getU32(b); err != nil {
		return nil, err
	}
	outputs := make([]chainmodel.Output, outCount)
	for i := range outputs {
		var out chainmodel.Output
		if out.Value, b, err = getU64(b); err != nil {
			return nil, err
		}
		if out.Address, b, err = getVarBytes(b); err != nil {
			return nil, err
		}
		if len(b) < 1 {
			return nil, errTruncated("output covenant type")
		}
		out.Covenant.Type = chainmodel.CovenantType(b[0])
		b = b[1:]
		var itemCount uint32
		if itemCount, b, err = getU32(b); err != nil {
			return nil, err
		}
		items := make([][]byte, itemCount)
		for j := range items {
			var item []byte
			if item, b, err = getVarBytes(b); err != nil {
				return nil, err
			}
			items[j] = item
		}
		out.Covenant.Items = items
		outputs[i] = out
	}
	tx.Outputs = outputs
	return tx, nil
}

// EncodeUndo serializes an UndoCoins log for the blob store.
func EncodeUndo(entries []chainmodel.UndoEntry) []byte {
	buf := make([]byte, 0, 64*len(entries))
	buf = putU32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = putHash(buf, e.Outpoint.Hash)
		buf = putU32(buf, e.Outpoint.Index)
		buf = putVarBytes(buf, EncodeCoin(&e.Coin))
	}
	return buf
}

// DecodeUndo parses an undo blob back into a list of undo entries, in
// the same (reverse-application) order they were encoded.
func DecodeUndo(b []byte) ([]chainmodel.UndoEntry, error) {
	var count uint32
	var err error
	if count, b, err = getU32(b); err != nil {
		return nil, err
	}
	out := make([]chainmodel.UndoEntry, count)
	for i := range out {
		var e chainmodel.UndoEntry
		if e.Outpoint.Hash, b, err = getHash(b); err != nil {
			return nil, err
		}
		if e.Outpoint.Index, b, err = getU32(b); err != nil {
			return nil, err
		}
		var raw []byte
		if raw, b, err = getVarBytes(b); err != nil {
			return nil, err
		}
		coin, err := DecodeCoin(raw)
		if err != nil {
			return nil, err
		}
		e.Coin = *coin
		out[i] = e
	}
	return out, nil
}
