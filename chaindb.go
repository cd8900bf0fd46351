// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaindb is the persistence and state-management core of a
// name-aware UTXO blockchain full node: block/UTXO/name-tree storage,
// atomic connect/reconnect/disconnect/reset/prune/compact, and a
// cache-aware read API, composed from the metadb, blobdb, urkel,
// cachelayer, chainstate, batch, applyblock, chainmutate and chainquery
// packages.
package chaindb

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/chaindb/blobdb"
	"github.com/bitmark-inc/chaindb/cachelayer"
	"github.com/bitmark-inc/chaindb/chain"
	"github.com/bitmark-inc/chaindb/chainerr"
	"github.com/bitmark-inc/chaindb/chainmodel"
	"github.com/bitmark-inc/chaindb/chainmutate"
	"github.com/bitmark-inc/chaindb/chainquery"
	"github.com/bitmark-inc/chaindb/chainstate"
	"github.com/bitmark-inc/chaindb/layout"
	"github.com/bitmark-inc/chaindb/metadb"
	"github.com/bitmark-inc/chaindb/urkel"
	"github.com/bitmark-inc/chaindb/wire"
)

// DB is a fully opened chain database: the five backing stores plus the
// mutation engine and read API layered over them.
type DB struct {
	meta   *metadb.Store
	blobs  *blobdb.Store
	tree   *urkel.Tree
	caches *cachelayer.Caches
	state  *chainstate.StateCache

	*chainmutate.Engine
	*chainquery.Reader
}

// Options configures Open. Flags is written on a fresh database; on an
// existing one a writable Open compares it against the stored flags and
// fails with chainerr.ErrFlagMismatch on any difference, while a
// ReadOnly Open skips that comparison.
type Options struct {
	Flags    chainstate.ChainFlags
	ReadOnly bool
}

// Open opens (creating on first use) a chain database rooted at dir,
// which holds three leveldb subdirectories: meta/, blobs/, tree/.
func Open(dir string, opts Options) (*DB, error) {
	meta, err := metadb.Open(filepath.Join(dir, "meta"), opts.ReadOnly)
	if err != nil {
		return nil, err
	}
	blobs, err := blobdb.Open(filepath.Join(dir, "blobs"), opts.ReadOnly)
	if err != nil {
		meta.Close()
		return nil, err
	}
	tree, err := urkel.Open(filepath.Join(dir, "tree"), opts.ReadOnly)
	if err != nil {
		meta.Close()
		blobs.Close()
		return nil, err
	}

	caches, err := cachelayer.New()
	if err != nil {
		meta.Close()
		blobs.Close()
		tree.Close()
		return nil, err
	}

	if err := ensureSchema(meta, opts.Flags); err != nil {
		meta.Close()
		blobs.Close()
		tree.Close()
		return nil, err
	}

	snap, err := chainstate.Load(meta)
	if err != nil {
		meta.Close()
		blobs.Close()
		tree.Close()
		return nil, err
	}
	if err := tree.Inject(snap.Tree.TreeRoot); err != nil {
		meta.Close()
		blobs.Close()
		tree.Close()
		return nil, err
	}

	// A read-only caller (e.g. cmd/chaindbcli) is inspecting whatever
	// configuration is already on disk and can't be expected to know it
	// in advance, so the mismatch check only applies to a writer.
	if !opts.ReadOnly && !snap.Flags.Matches(opts.Flags) {
		meta.Close()
		blobs.Close()
		tree.Close()
		return nil, chainerr.ErrFlagMismatch
	}

	state := chainstate.NewStateCache(snap)

	db := &DB{
		meta:   meta,
		blobs:  blobs,
		tree:   tree,
		caches: caches,
		state:  state,
		Engine: chainmutate.New(meta, blobs, tree, caches, state),
		Reader: chainquery.New(meta, blobs, tree, caches, state),
	}
	return db, nil
}

// ensureSchema writes the version, the given flags, an empty deployment
// table and an empty ChainState on a database that has never been
// opened before. An existing database is left untouched here apart from
// a schema-version check (chainerr.ErrVersionMismatch); flag
// compatibility is checked by the caller against the loaded state.
func ensureSchema(meta *metadb.Store, flags chainstate.ChainFlags) error {
	has, err := meta.Has(layout.VersionKey())
	if err != nil {
		return err
	}
	if has {
		existing, err := meta.Get(layout.VersionKey())
		if err != nil {
			return err
		}
		version, err := wire.DecodeVersion(existing)
		if err != nil {
			return err
		}
		if version != wire.SchemaVersion {
			return chainerr.ErrVersionMismatch
		}
		return nil
	}

	if !chain.Valid(flags.Network) {
		return chainerr.ErrUnknownNetwork
	}

	if err := meta.Put(layout.VersionKey(), wire.EncodeVersion(wire.SchemaVersion)); err != nil {
		return err
	}
	if err := meta.Put(layout.FlagsKey(), flags.Encode()); err != nil {
		return err
	}
	if err := meta.Put(layout.DeploymentsKey(), chainstate.NewDeployments(nil).Encode()); err != nil {
		return err
	}
	return meta.Put(layout.ChainStateKey(), chainstate.ChainState{}.Encode())
}

// Close releases the three backing stores. The tree's write
// transaction, if any, must be committed or dropped by the caller
// before Close, the same way a storage layer forbids closing under a
// live transaction.
func (db *DB) Close() error {
	treeErr := db.tree.Close()
	blobErr := db.blobs.Close()
	metaErr := db.meta.Close()
	if treeErr != nil {
		return treeErr
	}
	if blobErr != nil {
		return blobErr
	}
	return metaErr
}

// SaveFlags persists a new ChainFlags record directly, outside the
// normal batch coordinator — flags govern indexing/pruning policy, not
// per-block state, so they do not participate in the connect/disconnect
// crash-consistency envelope.
func (db *DB) SaveFlags(flags chainstate.ChainFlags) error {
	if err := db.meta.Put(layout.FlagsKey(), flags.Encode()); err != nil {
		return err
	}
	db.state.SwapFlags(flags)
	return nil
}

// VerifyFlags reports whether flags matches the currently stored
// configuration.
func (db *DB) VerifyFlags(flags chainstate.ChainFlags) bool {
	return db.state.Load().Flags.Matches(flags)
}

// SaveDeployments persists a new soft-fork deployment table.
func (db *DB) SaveDeployments(rows []wire.Deployment) error {
	d := chainstate.NewDeployments(rows)
	if err := db.meta.Put(layout.DeploymentsKey(), d.Encode()); err != nil {
		return err
	}
	db.state.SwapDeployments(d)
	return nil
}

// VerifyDeployments classifies every declared deployment bit against
// height using the currently stored table.
func (db *DB) VerifyDeployments(height chainmodel.Height) map[byte]chainstate.DeploymentState {
	return chainstate.VerifyDeployments(db.state.Load().Deployments, height)
}

// TreeInterval returns the authenticated-tree commit period for the
// network this database was opened against, so a caller assembling
// headers knows how often a tree root is expected to change.
func (db *DB) TreeInterval() uint32 {
	return chain.TreeInterval(db.state.Load().Flags.Network)
}

// Destroy removes the on-disk database entirely. The caller must Close
// first.
func Destroy(dir string) error {
	return os.RemoveAll(dir)
}
