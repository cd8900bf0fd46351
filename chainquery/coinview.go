// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainquery

import (
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
)

// GetCoinView resolves every input of tx against the current UTXO set,
// building a working CoinView a caller can hand to applyblock.ConnectBlock
// to validate/connect a candidate transaction. Inputs that don't
// resolve to a live coin are simply absent from the view; the caller is
// responsible for treating that as a validation failure.
func (r *Reader) GetCoinView(tx *chainmodel.Transaction) (*chainmodel.CoinView, error) {
	view := chainmodel.NewCoinView()
	if tx.Coinbase {
		return view, nil
	}
	for _, in := range tx.Inputs {
		coin, err := r.GetCoin(in.Prevout)
		if err != nil {
			if chainerr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		view.AddCoin(in.Prevout, *coin)
	}
	return view, nil
}

// GetBlockView resolves every input spent by every non-coinbase
// transaction in block against the historical UTXO set via
// GetSpentView, folding the results into one CoinView. Suited to
// re-deriving a whole already-connected block's view (e.g. for a
// consistency check or a wallet rescanning a confirmed block) rather
// than validating a candidate transaction against the live set.
func (r *Reader) GetBlockView(block *chainmodel.Block) (*chainmodel.CoinView, error) {
	view := chainmodel.NewCoinView()
	for i := range block.Transactions {
		txView, err := r.GetSpentView(&block.Transactions[i])
		if err != nil {
			return nil, err
		}
		for _, in := range block.Transactions[i].Inputs {
			coin, spent, ok := txView.GetCoin(in.Prevout)
			if !ok || spent {
				continue
			}
			view.AddCoin(in.Prevout, coin)
		}
	}
	return view, nil
}

// GetSpentView extends GetCoinView by also resolving inputs that
// reference an already-spent output, recovering the original coin from
// the tx index and its containing block. Requires indexTX; inputs that
// still don't resolve (unindexed, or genuinely unknown) are left absent
// exactly as GetCoinView leaves them.
func (r *Reader) GetSpentView(tx *chainmodel.Transaction) (*chainmodel.CoinView, error) {
	view, err := r.GetCoinView(tx)
	if err != nil {
		return nil, err
	}
	for _, in := range tx.Inputs {
		if _, _, ok := view.GetCoin(in.Prevout); ok {
			continue
		}
		meta, err := r.GetTXMeta(in.Prevout.Hash)
		if err != nil {
			continue
		}
		block, err := r.GetBlock(meta.BlockHash)
		if err != nil {
			continue
		}
		if int(meta.Index) >= len(block.Transactions) {
			continue
		}
		srcTx := block.Transactions[meta.Index]
		if int(in.Prevout.Index) >= len(srcTx.Outputs) {
			continue
		}
		view.AddCoin(in.Prevout, chainmodel.CoinEntry{
			Output:   srcTx.Outputs[in.Prevout.Index],
			Height:   meta.Height,
			Coinbase: srcTx.Coinbase,
		})
	}
	return view, nil
}
