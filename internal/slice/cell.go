// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"fmt"

	"github.com/specialistvlad/ambigrid/internal/decl"
)

// CellState is the resolution state of a Cell.
type CellState int

const (
	Unresolved CellState = iota
	InProgress
	ResolvedValue
	ResolvedMissing
)

func (s CellState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case InProgress:
		return "in-progress"
	case ResolvedValue:
		return "resolved-value"
	case ResolvedMissing:
		return "resolved-missing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Cell holds the resolution of one property on one instance. Only the
// resolution engine moves a cell through its states; once resolved it never
// changes again.
type Cell struct {
	// Entry is the leaf's merged entry for the property.
	Entry *decl.Entry

	state CellState
	value Value

	hookDone  bool
	hookValue Value
}

func (c *Cell) State() CellState { return c.state }

// Resolved reports whether the cell reached a final state.
func (c *Cell) Resolved() bool {
	return c.state == ResolvedValue || c.state == ResolvedMissing
}

// Value returns the resolved value. It is Missing until the cell is resolved.
func (c *Cell) Value() Value {
	return c.value
}

// Enter marks the cell in progress. It panics if the cell is not unresolved.
func (c *Cell) Enter() {
	if c.state != Unresolved {
		panic(fmt.Sprintf("cell %s entered in state %s", c.Entry.Name, c.state))
	}
	c.state = InProgress
}

// Reset returns an in-progress cell to Unresolved without caching anything.
func (c *Cell) Reset() {
	if c.state == InProgress {
		c.state = Unresolved
	}
}

// Finish stores the final value of an in-progress cell.
func (c *Cell) Finish(v Value) {
	if c.state != InProgress {
		panic(fmt.Sprintf("cell %s finished in state %s", c.Entry.Name, c.state))
	}
	c.value = v
	if v.IsMissing() {
		c.state = ResolvedMissing
	} else {
		c.state = ResolvedValue
	}
}

// HookResult returns the memoized result of the external value hook and
// whether the hook was already consulted for this cell.
func (c *Cell) HookResult() (Value, bool) {
	return c.hookValue, c.hookDone
}

// SetHookResult memoizes the external value hook result.
func (c *Cell) SetHookResult(v Value) {
	c.hookDone = true
	c.hookValue = v
}
