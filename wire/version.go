// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the binary encode/decode for every persisted
// record, following the manual pack/unpack style of
// blockrecord/transactionrecord rather than a reflection-based codec;
// see DESIGN.md component D for why.
package wire

import (
	"encoding/binary"
	"fmt"
)

// SchemaName is the fixed ASCII tag stored at the head of the version
// record.
const SchemaName = "chain"

// SchemaVersion is the current on-disk schema version.
const SchemaVersion = 3

// EncodeVersion produces the "chain"||u32-LE version record.
func EncodeVersion(version uint32) []byte {
	buf := make([]byte, len(SchemaName)+4)
	copy(buf, SchemaName)
	binary.LittleEndian.PutUint32(buf[len(SchemaName):], version)
	return buf
}

// DecodeVersion parses the version record, verifying the schema tag.
func DecodeVersion(b []byte) (uint32, error) {
	if len(b) != len(SchemaName)+4 {
		return 0, fmt.Errorf("wire: version record has wrong length %d", len(b))
	}
	if string(b[:len(SchemaName)]) != SchemaName {
		return 0, fmt.Errorf("wire: version record has wrong schema tag %q", b[:len(SchemaName)])
	}
	return binary.LittleEndian.Uint32(b[len(SchemaName):]), nil
}
