// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate

import (
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/wire"
)

// Deployments is the "D" versionbit-signalling table. A malformed
// on-disk record decodes to an invalid Deployments rather than an
// error (see DESIGN.md's Open Question resolution): verifyDeployments
// then treats every bit as Unknown instead of failing the read.
type Deployments struct {
	rows  []wire.Deployment
	valid bool
}

// NewDeployments builds a valid deployment table from rows.
func NewDeployments(rows []wire.Deployment) Deployments {
	return Deployments{rows: rows, valid: true}
}

// Valid reports whether the table decoded cleanly.
func (d Deployments) Valid() bool { return d.valid }

// Rows returns the deployment rows, empty if invalid.
func (d Deployments) Rows() []wire.Deployment { return d.rows }

// Encode serializes d for storage under layout.DeploymentsKey.
func (d Deployments) Encode() []byte {
	return wire.EncodeDeployments(d.rows)
}

// DecodeDeployments parses a persisted "D" record.
func DecodeDeployments(b []byte) Deployments {
	rows, ok := wire.DecodeDeployments(b)
	return Deployments{rows: rows, valid: ok}
}

// LoadDeployments reads the "D" record, returning an empty, valid
// table if none has been written yet.
func LoadDeployments(store *metadb.Store) (Deployments, error) {
	b, err := store.Get(layout.DeploymentsKey())
	if err != nil {
		return Deployments{}, err
	}
	if b == nil {
		return NewDeployments(nil), nil
	}
	return DecodeDeployments(b), nil
}

// StageDeployments stages a write of d into a batch.
func StageDeployments(b *metadb.Batch, d Deployments) {
	b.Put(layout.DeploymentsKey(), d.Encode())
}

// DeploymentState is the per-height, per-bit signalling outcome that
// VerifyDeployments reports. Nothing in this module writes it under
// layout.DeployStateKey.
type DeploymentState byte

const (
	DeployUnknown DeploymentState = iota
	DeployDefined
	DeployStarted
	DeployLockedIn
	DeployActive
	DeployFailed
)

// VerifyDeployments checks height against every row in d, returning
// the bit -> state map. Bits from a Deployments that failed to decode,
// or a row whose Bit index is unreachable, resolve to DeployUnknown
// rather than raising an error.
func VerifyDeployments(d Deployments, height chainmodel.Height) map[byte]DeploymentState {
	out := make(map[byte]DeploymentState)
	if !d.valid {
		return out
	}
	for _, row := range d.rows {
		if int(row.Bit) >= len(d.rows) {
			continue
		}
		switch {
		case uint32(height) < row.StartTime:
			out[row.Bit] = DeployDefined
		case row.Timeout != 0 && uint32(height) >= row.Timeout:
			out[row.Bit] = DeployFailed
		default:
			out[row.Bit] = DeployStarted
		}
	}
	return out
}
