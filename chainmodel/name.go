// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmodel

// NameState is the per-name authenticated record stored only in the
// authenticated tree (component C), never in the meta store. It is
// keyed by NameHash = hash(name).
//
// The field set covers the full name lifecycle (open, bid, reveal,
// register, transfer, renew, revoke, expiry) rather than just an
// owner/value pair; every covenant type in chainmodel.CovenantType
// touches one of these fields.
type NameState struct {
	Owner        Outpoint
	Value        Amount
	Highest      Amount
	RegisteredAt Height
	RenewedAt    Height
	RenewalCount Height
	TransferAt   Height
	TransferTo   *Outpoint
	Revoked      bool
	Claimed      bool
	WeakHeight   Height
}

// Clone returns a deep copy safe to mutate independently of ns.
func (ns *NameState) Clone() *NameState {
	if ns == nil {
		return nil
	}
	cp := *ns
	if ns.TransferTo != nil {
		to := *ns.TransferTo
		cp.TransferTo = &to
	}
	return &cp
}

// IsExpired reports whether the name's registration has lapsed by the
// given height, using the caller-supplied renewal window (chaindb does
// not itself decide auction/renewal rules — that is consensus logic;
// this predicate exists purely so index scans can filter cheaply).
func (ns *NameState) IsExpired(height Height, renewalWindow Height) bool {
	if ns == nil || ns.Revoked {
		return true
	}
	if ns.RegisteredAt == 0 && ns.RenewedAt == 0 {
		return false
	}
	last := ns.RegisteredAt
	if ns.RenewedAt > last {
		last = ns.RenewedAt
	}
	return height > last+renewalWindow
}

// NameDelta is one reversible change to a name's state, keyed by the
// name hash it applies to. Previous is the state before the block that
// produced this delta was connected (nil meaning "the name did not
// exist").
type NameDelta struct {
	NameHash Hash
	Previous *NameState
}

// NameUndo is the list of (nameHash, delta) pairs needed to revert
// name-state changes for one block. Persisted in the meta store under
// w(height).
type NameUndo struct {
	Deltas []NameDelta
}

// Empty reports whether the block produced no name-state changes.
func (u NameUndo) Empty() bool {
	return len(u.Deltas) == 0
}
