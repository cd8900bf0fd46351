// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// argKind mirrors github.com/bitmark-inc/getoptions's HasArg constants —
// this file is a small hand-rolled stand-in for that dependency, kept
// out of go.mod because a one-off debug CLI is out of scope for the
// core, not because the idiom is any different.
type argKind int

const (
	noArgument argKind = iota
	requiredArgument
)

// option describes one recognised flag.
type option struct {
	long  string
	short byte
	kind  argKind
}

// getOS parses os.Args the same way getoptions.GetOS does:
// "-x"/"--xyz"/"--xyz=value" tokens in any order, interleaved with bare
// arguments; only "--" ends option parsing.
func getOS(flags []option) (program string, options map[string][]string, arguments []string, err error) {
	program = filepath.Base(os.Args[0])
	options, arguments, err = getOpt(os.Args[1:], flags)
	return
}

func getOpt(inputs []string, flags []option) (map[string][]string, []string, error) {
	byLong := make(map[string]option, len(flags))
	byShort := make(map[byte]option, len(flags))
	for _, f := range flags {
		byLong[f.long] = f
		if f.short != 0 {
			byShort[f.short] = f
		}
	}

	options := make(map[string][]string)
	var arguments []string

	for i := 0; i < len(inputs); i++ {
		item := inputs[i]
		if item == "--" {
			arguments = append(arguments, inputs[i+1:]...)
			break
		}
		if !strings.HasPrefix(item, "-") || item == "-" {
			arguments = append(arguments, item)
			continue
		}

		name := strings.TrimLeft(item, "-")
		value := ""
		if idx := strings.IndexByte(name, '='); idx >= 0 {
			value, name = name[idx+1:], name[:idx]
		}

		var opt option
		var ok bool
		if strings.HasPrefix(item, "--") {
			opt, ok = byLong[name]
		} else if len(name) == 1 {
			opt, ok = byShort[name[0]]
			if ok {
				name = opt.long
			}
		}
		if !ok {
			return nil, nil, fmt.Errorf("unrecognised option: %s", item)
		}

		if opt.kind == requiredArgument && value == "" {
			if i+1 >= len(inputs) {
				return nil, nil, fmt.Errorf("option %s requires a value", item)
			}
			i++
			value = inputs[i]
		}
		options[name] = append(options[name], value)
	}
	return options, arguments, nil
}

// die prints a usage-style message to stderr and exits non-zero,
// mirroring exitwithstatus.Message for this single-binary tool.
func die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
