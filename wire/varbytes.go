// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
)

// putVarBytes appends a u32-LE length prefix followed by b.
func putVarBytes(buf []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, b...)
	return buf
}

// getVarBytes reads a u32-LE length prefix followed by that many bytes,
// returning the remainder of buf after the record.
func getVarBytes(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("wire: truncated length prefix")
	}
	n := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	if uint64(len(buf)) < uint64(n) {
		return nil, nil, fmt.Errorf("wire: truncated var-bytes field: want %d have %d", n, len(buf))
	}
	return buf[:n], buf[n:], nil
}

func putHash(buf []byte, h [32]byte) []byte {
	return append(buf, h[:]...)
}

func getHash(buf []byte) ([32]byte, []byte, error) {
	var h [32]byte
	if len(buf) < 32 {
		return h, nil, fmt.Errorf("wire: truncated hash")
	}
	copy(h[:], buf[:32])
	return h, buf[32:], nil
}

func putU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func getU32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, fmt.Errorf("wire: truncated u32")
	}
	return binary.LittleEndian.Uint32(buf), buf[4:], nil
}

func putU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func getU64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("wire: truncated u64")
	}
	return binary.LittleEndian.Uint64(buf), buf[8:], nil
}

func putBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func getBool(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, nil, fmt.Errorf("wire: truncated bool")
	}
	return buf[0] != 0, buf[1:], nil
}
