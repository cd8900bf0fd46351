// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainmodel

// CoinEntry is the spendable form of an output: the output itself plus
// the height it was created at (needed for coinbase-maturity style
// checks by the caller, and for undo bookkeeping).
type CoinEntry struct {
	Output   Output
	Height   Height
	Coinbase bool
}

// UndoEntry is one record in an UndoCoins log: a coin that was spent by
// the block being connected, kept so disconnect can restore it.
type UndoEntry struct {
	Outpoint Outpoint
	Coin     CoinEntry
}

// UndoCoins is the ordered list of coins a block consumed, stored in
// reverse-application order (last input spent is first to restore).
type UndoCoins struct {
	entries []UndoEntry
}

// Push appends a spent coin to the undo log. Blocks push while
// connecting, in transaction/input order; Pop consumes in the opposite
// order during disconnect.
func (u *UndoCoins) Push(op Outpoint, coin CoinEntry) {
	u.entries = append(u.entries, UndoEntry{Outpoint: op, Coin: coin})
}

// Pop removes and returns the most recently pushed entry. ok is false
// if the log is empty.
func (u *UndoCoins) Pop() (Outpoint, CoinEntry, bool) {
	n := len(u.entries)
	if n == 0 {
		return Outpoint{}, CoinEntry{}, false
	}
	e := u.entries[n-1]
	u.entries = u.entries[:n-1]
	return e.Outpoint, e.Coin, true
}

// Entries returns the raw entry list in push order, for serialization.
func (u *UndoCoins) Entries() []UndoEntry {
	return u.entries
}

// UndoCoinsFromEntries rebuilds an UndoCoins log from a decoded entry
// list, preserving push order so Pop still consumes in reverse.
func UndoCoinsFromEntries(entries []UndoEntry) UndoCoins {
	return UndoCoins{entries: entries}
}

// Len reports how many spent coins remain in the log.
func (u *UndoCoins) Len() int {
	return len(u.entries)
}

// Empty reports whether the log has been fully consumed.
func (u *UndoCoins) Empty() bool {
	return len(u.entries) == 0
}

// spentCoin is a working-set entry: the coin plus whether the batch has
// marked it spent (deleted) or newly created (added).
type spentCoin struct {
	Coin  CoinEntry
	Spent bool
}

// CoinView is the working set a block's application mutates: coins
// touched during connect/disconnect, the undo log for spent coins, the
// name-hash -> NameState deltas, and a bitfield delta.
type CoinView struct {
	coins   map[Outpoint]*spentCoin
	Undo    UndoCoins
	Names   map[Hash]*NameState // nil value means "removed"
	Bits    BitFieldDelta
}

// NewCoinView returns an empty working set.
func NewCoinView() *CoinView {
	return &CoinView{
		coins: make(map[Outpoint]*spentCoin),
		Names: make(map[Hash]*NameState),
	}
}

// AddCoin records a newly created, unspent coin in the view (used both
// when connecting a block's outputs and when disconnect restores a
// previously spent coin from undo data).
func (v *CoinView) AddCoin(op Outpoint, coin CoinEntry) {
	v.coins[op] = &spentCoin{Coin: coin, Spent: false}
}

// SpendCoin marks a coin consumed by the block currently being applied.
// It leaves the coin visible to later reads in the same view (so a
// transaction can look at its own block's earlier outputs) but flags it
// dirty-spent for saveView.
func (v *CoinView) SpendCoin(op Outpoint, coin CoinEntry) {
	v.coins[op] = &spentCoin{Coin: coin, Spent: true}
}

// GetCoin returns the coin at op if the view has touched it, and
// whether it is currently marked spent.
func (v *CoinView) GetCoin(op Outpoint) (CoinEntry, bool, bool) {
	c, ok := v.coins[op]
	if !ok {
		return CoinEntry{}, false, false
	}
	return c.Coin, c.Spent, true
}

// Dirty returns every coin the view touched, in map order (persistence
// order does not matter — each key appears once). Used by saveView.
func (v *CoinView) Dirty() map[Outpoint]*spentCoin {
	return v.coins
}

// GetName returns the working-set name state for hash, or (nil, false)
// if the view hasn't touched it.
func (v *CoinView) GetName(hash Hash) (*NameState, bool) {
	ns, ok := v.Names[hash]
	return ns, ok
}

// SetName stages a name-state update (or, with ns == nil, a removal) in
// the view.
func (v *CoinView) SetName(hash Hash, ns *NameState) {
	v.Names[hash] = ns
}
