// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package applyblock is the UTXO and name-state application layer
// (component I): per-transaction connect/disconnect against a working
// CoinView, with covenant-aware value accounting (the covenant-locked
// range is bookkeeping-only, REGISTER burns, CLAIM only credits on its
// first sequence).
package applyblock

import (
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainstate"
)

// ConnectBlock applies every transaction in block to view, mutating cs
// in place (TxCount/CoinCount/Value/Burned). height is the height the
// block is being connected at.
func ConnectBlock(view *chainmodel.CoinView, cs *chainstate.ChainState, height chainmodel.Height, block *chainmodel.Block) error {
	for _, tx := range block.Transactions {
		if !tx.Coinbase {
			for _, in := range tx.Inputs {
				coin, spent, ok := view.GetCoin(in.Prevout)
				if !ok {
					return chainerr.ErrCoinNotFound
				}
				if spent {
					return chainerr.ErrCoinNotFound
				}
				view.Undo.Push(in.Prevout, coin)
				if !coin.Output.Covenant.IsLocked() {
					view.SpendCoin(in.Prevout, coin)
					cs.Value -= coin.Output.Value
					cs.CoinCount--
				}
			}
		}
		for outIdx, out := range tx.Outputs {
			if out.Unspendable() {
				continue
			}
			if !out.Covenant.IsLocked() {
				op := chainmodel.Outpoint{Hash: tx.Hash, Index: uint32(outIdx)}
				view.AddCoin(op, chainmodel.CoinEntry{Output: out, Height: height, Coinbase: tx.Coinbase})
				cs.CoinCount++
			}
			creditValue(cs, out.Covenant, out.Value, 1)
		}
		cs.TxCount++
	}
	return nil
}

// DisconnectBlock reverts block's transactions against view in exactly
// the reverse order ConnectBlock applied them: outputs removed newest
// tx first, inputs restored from the undo log.
func DisconnectBlock(view *chainmodel.CoinView, cs *chainstate.ChainState, height chainmodel.Height, block *chainmodel.Block) error {
	for i := len(block.Transactions) - 1; i >= 0; i-- {
		tx := block.Transactions[i]
		cs.TxCount--

		for outIdx := len(tx.Outputs) - 1; outIdx >= 0; outIdx-- {
			out := tx.Outputs[outIdx]
			if out.Unspendable() {
				continue
			}
			if !out.Covenant.IsLocked() {
				op := chainmodel.Outpoint{Hash: tx.Hash, Index: uint32(outIdx)}
				view.SpendCoin(op, chainmodel.CoinEntry{Output: out, Height: height, Coinbase: tx.Coinbase})
				cs.CoinCount--
			}
			creditValue(cs, out.Covenant, out.Value, -1)
		}

		if !tx.Coinbase {
			for range tx.Inputs {
				op, coin, ok := view.Undo.Pop()
				if !ok {
					return chainerr.ErrCoinNotFound
				}
				if !coin.Output.Covenant.IsLocked() {
					view.AddCoin(op, coin)
					cs.Value += coin.Output.Value
					cs.CoinCount++
				}
			}
		}
	}
	return nil
}

// creditValue applies sign * value to the chain's Value or Burned
// counter according to covenant type: REGISTER burns, CLAIM credits
// only on its first sequence, the rest of the covenant-locked range
// [REGISTER, REVOKE] is bookkeeping-only, everything else is a normal
// value-bearing output.
func creditValue(cs *chainstate.ChainState, c chainmodel.Covenant, value chainmodel.Amount, sign int) {
	switch {
	case c.IsRegister():
		if sign > 0 {
			cs.Burned += value
		} else {
			cs.Burned -= value
		}
	case c.IsClaim():
		if c.ClaimSequence() != 1 {
			return
		}
		if sign > 0 {
			cs.Value += value
		} else {
			cs.Value -= value
		}
	case c.IsLocked():
		// no-op: bookkeeping-only range
	default:
		if sign > 0 {
			cs.Value += value
		} else {
			cs.Value -= value
		}
	}
}
