// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainerr

import (
	"fmt"
)

// Logger is the narrow surface chainerr needs from
// github.com/bitmark-inc/logger's *logger.L, so packages can inject a
// fake in tests instead of depending on a live logger channel.
type Logger interface {
	Criticalf(format string, arguments ...interface{})
}

// nopLogger discards everything; used until SetLogger is called so a
// corruption panic never itself panics on a nil logger.
type nopLogger struct{}

func (nopLogger) Criticalf(string, ...interface{}) {}

var log Logger = nopLogger{}

// SetLogger installs the channel used by Corrupt to log before
// panicking, mirroring fault.Initialise's one-shot logger setup.
func SetLogger(l Logger) {
	if l != nil {
		log = l
	}
}

// Corrupt logs msg at Critical and panics. It is reserved for invariant
// violations that mean the on-disk state is already inconsistent — a
// missing deployment table, an undo stream that didn't drain to empty —
// where returning an error would just let the caller paper over
// corruption. Mirrors fault.Panicf/fault.PanicIfError.
func Corrupt(format string, arguments ...interface{}) {
	msg := fmt.Sprintf(format, arguments...)
	log.Criticalf("corruption: %s", msg)
	panic(msg)
}

// CorruptIfError calls Corrupt when err is non-nil.
func CorruptIfError(context string, err error) {
	if err == nil {
		return
	}
	Corrupt("%s: %v", context, err)
}
