// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package bhav

// BehaviorGraph is one decoded BHAV program: an ordered instruction
// sequence plus the declared local-variable and argument counts the
// validator checks references against.
//
// Invariant: every non-sentinel exit in every instruction indexes into
// the same graph's Instructions slice.
type BehaviorGraph struct {
	ID         uint16
	Name       string
	LocalCount uint8
	ArgCount   uint8
	// EntryPoint marks graphs invoked directly by the engine (menu
	// interactions, main trees). Call-graph usage queries never report
	// an entry point as unused.
	EntryPoint   bool
	Instructions []Instruction
}

// Len returns the instruction count.
func (g *BehaviorGraph) Len() int {
	return len(g.Instructions)
}

// InBounds reports whether exit is a valid successor for this graph:
// either a sentinel or an index into the sequence.
func (g *BehaviorGraph) InBounds(exit uint8) bool {
	return IsSentinel(exit) || int(exit) < len(g.Instructions)
}

// Renumber rewrites every Position field to match the instruction's
// index. Positions are derived, never authoritative; callers run this
// after any structural change.
func (g *BehaviorGraph) Renumber() {
	for i := range g.Instructions {
		g.Instructions[i].Position = i
	}
}

// Clone deep-copies the graph. The rewiring engine snapshots through
// this so edits can be rolled back or diffed against the original.
func (g *BehaviorGraph) Clone() *BehaviorGraph {
	out := *g
	out.Instructions = make([]Instruction, len(g.Instructions))
	copy(out.Instructions, g.Instructions)
	return &out
}

// Package is a set of behavior graphs analyzed together for
// cross-program call relationships, keyed by graph id.
type Package map[uint16]*BehaviorGraph
