// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metadb

import ldb_util "github.com/syndtr/goleveldb/leveldb/util"

// Element is one key/value pair returned from a range scan, with the
// table prefix already stripped — mirrors storage.Element.
type Element struct {
	Key   []byte
	Value []byte
}

// ScanPrefix walks every key beginning with prefix (up to but excluding
// limit, or to the end of the table if limit is nil), invoking fn with
// the prefix stripped from each key. Iteration stops early if fn
// returns false.
func (b *Batch) ScanPrefix(prefix, limit []byte, fn func(key, value []byte) bool) error {
	r := &ldb_util.Range{Start: prefix, Limit: limit}
	iter := b.Iterator(r)
	defer iter.Release()
	for iter.Next() {
		key := make([]byte, len(iter.Key())-len(prefix))
		copy(key, iter.Key()[len(prefix):])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}

// ScanPrefix on Store performs the same walk directly against the
// underlying database (used for reads outside of any batch, e.g. by
// chainquery).
func (s *Store) ScanPrefix(prefix, limit []byte, fn func(key, value []byte) bool) error {
	r := &ldb_util.Range{Start: prefix, Limit: limit}
	iter := s.Iterator(r)
	defer iter.Release()
	for iter.Next() {
		key := make([]byte, len(iter.Key())-len(prefix))
		copy(key, iter.Key()[len(prefix):])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}
