// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainquery

import (
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
)

// Lookup resolves a plaintext name to its current state, hashing it the
// same way covenant name hashes are derived.
func (r *Reader) Lookup(name string) (*chainmodel.NameState, error) {
	if r.state.Load().Flags.SPV {
		return nil, chainerr.ErrSPVMode
	}
	hash := blake2b.Sum256([]byte(name))
	return r.GetName(hash)
}

// GetNameStateByName is an alias of Lookup kept for parity with the
// caller-facing operation name.
func (r *Reader) GetNameStateByName(name string) (*chainmodel.NameState, error) {
	return r.Lookup(name)
}

// NameStatus summarizes a NameState relative to the current height for
// callers that don't want to reimplement the revoked/expired/live
// distinction themselves.
type NameStatus struct {
	Exists  bool
	Revoked bool
	Expired bool
	Claimed bool
	Owner   chainmodel.Outpoint
}

// GetNameStatus resolves nameHash and classifies it against the chain's
// current tip height using renewalWindow (a consensus parameter chaindb
// itself does not know).
func (r *Reader) GetNameStatus(nameHash chainmodel.Hash, renewalWindow chainmodel.Height) (NameStatus, error) {
	ns, err := r.GetName(nameHash)
	if err != nil {
		if chainerr.IsNotFound(err) {
			return NameStatus{}, nil
		}
		return NameStatus{}, err
	}
	tip, err := r.Tip()
	if err != nil {
		return NameStatus{}, err
	}
	return NameStatus{
		Exists:  true,
		Revoked: ns.Revoked,
		Expired: ns.IsExpired(tip.Height, renewalWindow),
		Claimed: ns.Claimed,
		Owner:   ns.Owner,
	}, nil
}
