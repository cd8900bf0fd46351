// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/bitmark-inc/chaindb/chainmodel"

// EncodeBitField serializes the "f" record: bit count followed by the
// packed bytes, matching BitField.Bytes.
func EncodeBitField(b *chainmodel.BitField) []byte {
	buf := make([]byte, 0, 4+len(b.Bytes()))
	buf = putU32(buf, uint32(b.Len()))
	buf = append(buf, b.Bytes()...)
	return buf
}

// DecodeBitField parses an "f" record.
func DecodeBitField(b []byte) (*chainmodel.BitField, error) {
	n, rest, err := getU32(b)
	if err != nil {
		return nil, err
	}
	field := chainmodel.NewBitField(int(n))
	need := (int(n) + 7) / 8
	if len(rest) < need {
		return nil, errTruncated("bitfield")
	}
	copy(field.Bytes(), rest[:need])
	return field, nil
}

// EncodeTXMeta serializes a "t" record.
func EncodeTXMeta(m *chainmodel.TXMeta) []byte {
	buf := make([]byte, 0, 32+4+4)
	buf = putHash(buf, m.BlockHash)
	buf = putU32(buf, m.Height)
	buf = putU32(buf, m.Index)
	return buf
}

// DecodeTXMeta parses a "t" record.
func DecodeTXMeta(b []byte) (*chainmodel.TXMeta, error) {
	m := &chainmodel.TXMeta{}
	var err error
	if m.BlockHash, b, err = getHash(b); err != nil {
		return nil, err
	}
	if m.Height, b, err = getU32(b); err != nil {
		return nil, err
	}
	if m.Index, _, err = getU32(b); err != nil {
		return nil, err
	}
	return m, nil
}

// Deployment is one row of the "D" deployment table: a versionbit
// signalling window for a soft-fork-style feature.
type Deployment struct {
	Bit       byte
	StartTime uint32
	Timeout   uint32
	Threshold int32
	Window    int32
}

const deploymentRecordSize = 1 + 4 + 4 + 4 + 4 // 17 bytes

// EncodeDeployments serializes the "D" record: u8 count then 17 bytes
// each.
func EncodeDeployments(deployments []Deployment) []byte {
	buf := make([]byte, 0, 1+deploymentRecordSize*len(deployments))
	buf = append(buf, byte(len(deployments)))
	for _, d := range deployments {
		buf = append(buf, d.Bit)
		buf = putU32(buf, d.StartTime)
		buf = putU32(buf, d.Timeout)
		buf = putU32(buf, uint32(d.Threshold))
		buf = putU32(buf, uint32(d.Window))
	}
	return buf
}

// DecodeDeployments parses a "D" record. A malformed table is not an
// error: it is reported as "all bits invalid" via a nil, false return,
// letting the caller invalidate its cache rather than fail the read.
func DecodeDeployments(b []byte) ([]Deployment, bool) {
	if len(b) < 1 {
		return nil, false
	}
	count := int(b[0])
	b = b[1:]
	if len(b) < count*deploymentRecordSize {
		return nil, false
	}
	out := make([]Deployment, count)
	for i := 0; i < count; i++ {
		row := b[i*deploymentRecordSize : (i+1)*deploymentRecordSize]
		out[i] = Deployment{
			Bit:       row[0],
			StartTime: leU32(row[1:5]),
			Timeout:   leU32(row[5:9]),
			Threshold: int32(leU32(row[9:13])),
			Window:    int32(leU32(row[13:17])),
		}
	}
	return out, true
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
