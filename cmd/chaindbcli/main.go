// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command chaindbcli is a read-only inspection tool over an on-disk
// chain database: dump a chain entry, dump a name's current state, or
// scan the main chain printing one line per block. It only ever opens
// the database read-only, so it is safe to run against a live node's
// data directory.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/bitmark-inc/chaindb"
	"github.com/bitmark-inc/chaindb/chainmodel"
)

func main() {
	flags := []option{
		{long: "help", short: 'h'},
		{long: "verbose", short: 'v'},
		{long: "dir", short: 'd', kind: requiredArgument},
	}

	program, options, arguments, err := getOS(flags)
	if err != nil {
		die("%s: %s", program, err)
	}
	if len(options["help"]) > 0 || len(options["dir"]) != 1 || len(arguments) == 0 {
		die("usage: %s --dir=PATH [--verbose] <dump-entry|dump-name|scan> ARGS...", program)
	}

	dir := options["dir"][0]
	verbose := len(options["verbose"]) > 0

	db, err := chaindb.Open(dir, chaindb.Options{ReadOnly: true})
	if err != nil {
		die("%s: open %s: %s", program, dir, err)
	}
	defer db.Close()

	command := arguments[0]
	rest := arguments[1:]

	switch command {
	case "dump-entry":
		runDumpEntry(program, db, rest)
	case "dump-name":
		runDumpName(program, db, rest)
	case "scan":
		runScan(program, db, rest, verbose)
	default:
		die("%s: unknown command %q", program, command)
	}
}

func parseHash(program, s string) chainmodel.Hash {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		die("%s: invalid hash %q", program, s)
	}
	var h chainmodel.Hash
	copy(h[:], b)
	return h
}

func runDumpEntry(program string, db *chaindb.DB, args []string) {
	if len(args) != 1 {
		die("usage: %s ... dump-entry HASH-HEX", program)
	}
	hash := parseHash(program, args[0])
	entry, err := db.GetEntry(hash)
	if err != nil {
		die("%s: %s", program, err)
	}
	fmt.Printf("hash:      %x\n", entry.Hash)
	fmt.Printf("height:    %d\n", entry.Height)
	fmt.Printf("prevBlock: %x\n", entry.PrevBlock)
	fmt.Printf("treeRoot:  %x\n", entry.TreeRoot)
	fmt.Printf("time:      %d\n", entry.Time)

	main, err := db.IsMainChain(hash)
	if err != nil {
		die("%s: %s", program, err)
	}
	fmt.Printf("mainChain: %v\n", main)
}

func runDumpName(program string, db *chaindb.DB, args []string) {
	if len(args) != 1 {
		die("usage: %s ... dump-name NAME", program)
	}
	ns, err := db.Lookup(args[0])
	if err != nil {
		die("%s: %s", program, err)
	}
	fmt.Printf("owner:        %x:%d\n", ns.Owner.Hash, ns.Owner.Index)
	fmt.Printf("value:        %d\n", ns.Value)
	fmt.Printf("registeredAt: %d\n", ns.RegisteredAt)
	fmt.Printf("renewedAt:    %d\n", ns.RenewedAt)
	fmt.Printf("renewals:     %d\n", ns.RenewalCount)
	fmt.Printf("revoked:      %v\n", ns.Revoked)
	fmt.Printf("claimed:      %v\n", ns.Claimed)
}

func runScan(program string, db *chaindb.DB, args []string, verbose bool) {
	start := db.ChainState().Tip
	if start == (chainmodel.Hash{}) {
		fmt.Fprintln(os.Stderr, "empty chain")
		return
	}
	if len(args) == 1 {
		start = parseHash(program, args[0])
	}

	err := db.Scan(genesisOf(db, start), nil, func(entry *chainmodel.ChainEntry, matched []*chainmodel.Transaction) error {
		fmt.Printf("%8d  %x  %d txs\n", entry.Height, entry.Hash, len(matched))
		return nil
	})
	if err != nil {
		die("%s: scan: %s", program, err)
	}

	if verbose {
		flags := db.Flags()
		fmt.Fprintf(os.Stderr, "network=%s spv=%v prune=%v indexTX=%v indexAddress=%v\n",
			flags.Network, flags.SPV, flags.Prune, flags.IndexTX, flags.IndexAddress)
	}
}

func genesisOf(db *chaindb.DB, hash chainmodel.Hash) chainmodel.Hash {
	entry, err := db.GetEntry(hash)
	if err != nil {
		return hash
	}
	for !entry.IsGenesis() {
		prev, err := db.GetEntry(entry.PrevBlock)
		if err != nil {
			return entry.Hash
		}
		entry = prev
	}
	return entry.Hash
}
