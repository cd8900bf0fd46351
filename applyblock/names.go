// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package applyblock

import (
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/urkel"
	"github.com/bitmark-inc/chaindb/wire"
)

// NameReader resolves the currently committed state of a name, backed
// by a tree snapshot. ConnectNames checks the batch's working view
// first, so a name touched twice within the same block
// sees its own pending change rather than the stale committed one.
type NameReader interface {
	Get(nameHash chainmodel.Hash) (*chainmodel.NameState, bool, error)
}

type treeNameReader struct {
	snap *urkel.Snapshot
}

// NewTreeNameReader adapts a tree snapshot into a NameReader.
func NewTreeNameReader(snap *urkel.Snapshot) NameReader {
	return &treeNameReader{snap: snap}
}

func (r *treeNameReader) Get(nameHash chainmodel.Hash) (*chainmodel.NameState, bool, error) {
	raw, ok, err := r.snap.Get(nameHash[:])
	if err != nil || !ok {
		return nil, ok, err
	}
	ns, err := wire.DecodeName(raw)
	if err != nil {
		return nil, false, err
	}
	return ns, true, nil
}

func resolveName(view *chainmodel.CoinView, reader NameReader, nameHash chainmodel.Hash) (*chainmodel.NameState, error) {
	if ns, ok := view.GetName(nameHash); ok {
		return ns, nil
	}
	ns, _, err := reader.Get(nameHash)
	return ns, err
}

// nameHashFromCovenant reads the name hash carried at Items[0], the
// position every name-system covenant type shares.
func nameHashFromCovenant(c chainmodel.Covenant) (chainmodel.Hash, bool) {
	if len(c.Items) < 1 || len(c.Items[0]) != 32 {
		return chainmodel.Hash{}, false
	}
	var h chainmodel.Hash
	copy(h[:], c.Items[0])
	return h, true
}

// ConnectNames applies every name-system covenant output in tx against
// view, recording a NameDelta (the pre-image) for each name touched so
// DisconnectNames can restore it exactly.
func ConnectNames(view *chainmodel.CoinView, reader NameReader, height chainmodel.Height, tx *chainmodel.Transaction) (chainmodel.NameUndo, error) {
	var undo chainmodel.NameUndo
	for outIdx, out := range tx.Outputs {
		nameHash, ok := nameHashFromCovenant(out.Covenant)
		if !ok {
			continue
		}
		prev, err := resolveName(view, reader, nameHash)
		if err != nil {
			return undo, err
		}
		undo.Deltas = append(undo.Deltas, chainmodel.NameDelta{NameHash: nameHash, Previous: prev.Clone()})

		op := chainmodel.Outpoint{Hash: tx.Hash, Index: uint32(outIdx)}
		view.SetName(nameHash, applyCovenant(prev, out.Covenant, op, out.Value, height))
	}
	return undo, nil
}

// applyCovenant computes the next NameState implied by one
// covenant-carrying output. Auction-timing validity (is this BID
// inside the bidding window, does REVEAL match a prior BID, ...) is
// the caller-supplied Validator's job; this only performs the
// bookkeeping transition a covenant of this type always implies.
//
// The auction itself is a blind (Vickrey-style) one: a BID commits to
// a hash of the true value, so nothing about it is recorded until the
// matching REVEAL exposes the real amount as its output value. Highest
// and WeakHeight track the current front-runner through that phase:
// whichever REVEAL exposes the largest value so far becomes Highest,
// and WeakHeight records the height it was revealed at, so a tie is
// broken by whoever revealed first. REDEEM only returns a losing
// bidder's lockup and never changes name ownership, so it stays a
// no-op here.
func applyCovenant(prev *chainmodel.NameState, c chainmodel.Covenant, op chainmodel.Outpoint, value chainmodel.Amount, height chainmodel.Height) *chainmodel.NameState {
	ns := prev.Clone()
	if ns == nil {
		ns = &chainmodel.NameState{}
	}
	switch c.Type {
	case chainmodel.CovenantClaim:
		ns.Owner = op
		ns.Claimed = true
		ns.RegisteredAt = height
	case chainmodel.CovenantOpen:
		ns.Highest = 0
		ns.WeakHeight = 0
	case chainmodel.CovenantBid:
		// blind commitment only; nothing observable until REVEAL.
	case chainmodel.CovenantReveal:
		if value > ns.Highest {
			ns.Highest = value
			ns.WeakHeight = height
		}
	case chainmodel.CovenantRedeem:
		// returns a losing bidder's lockup, ownership is untouched.
	case chainmodel.CovenantRegister:
		ns.Owner = op
		ns.RegisteredAt = height
		ns.Revoked = false
		ns.Highest = 0
		ns.WeakHeight = 0
	case chainmodel.CovenantUpdate:
		ns.Owner = op
	case chainmodel.CovenantRenew:
		ns.Owner = op
		ns.RenewedAt = height
		ns.RenewalCount++
	case chainmodel.CovenantTransfer:
		to := op
		ns.TransferTo = &to
		ns.TransferAt = height
	case chainmodel.CovenantFinalize:
		ns.Owner = op
		ns.TransferTo = nil
		ns.TransferAt = 0
	case chainmodel.CovenantRevoke:
		ns.Revoked = true
	}
	return ns
}

// DisconnectNames reverts every delta in undo, in reverse order,
// restoring each name's previous state (nil meaning the name did not
// exist before the block being disconnected).
func DisconnectNames(view *chainmodel.CoinView, undo chainmodel.NameUndo) {
	for i := len(undo.Deltas) - 1; i >= 0; i-- {
		d := undo.Deltas[i]
		view.SetName(d.NameHash, d.Previous)
	}
}

// SaveNames writes every name the view touched into the tree
// transaction: a nil NameState removes the leaf, otherwise it is
// re-encoded and inserted.
func SaveNames(view *chainmodel.CoinView, txn *urkel.Txn) error {
	for nameHash, ns := range view.Names {
		if ns == nil {
			if err := txn.Remove(nameHash[:]); err != nil {
				return err
			}
			continue
		}
		if err := txn.Insert(nameHash[:], wire.EncodeName(ns)); err != nil {
			return err
		}
	}
	return nil
}
