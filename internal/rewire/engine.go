// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package rewire implements transactional structural edits on a
// behavior graph: insert, delete, move, and reorder. Every operation
// either applies completely, repairing all successor pointers the
// edit would otherwise invalidate, or fails with zero mutation. The
// engine keeps an immutable snapshot of the graph taken at
// construction so edits can be diffed or rolled back.
//
// An engine owns exclusive mutable access to one graph. Callers
// editing many graphs concurrently use one engine per graph.
package rewire

import (
	"fmt"
	"sort"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/errors"
)

// Result is the audit trail of one successful operation: the new
// sequence plus a human-readable log of every changed pointer. The
// mutation-gate caller consumes this before deciding to commit.
type Result struct {
	Operation    string
	Instructions []bhav.Instruction
	Log          []string
	Warnings     []string
}

// Engine performs structural edits on a single behavior graph.
type Engine struct {
	graph    *bhav.BehaviorGraph
	snapshot *bhav.BehaviorGraph
}

// New wraps a graph for editing, snapshotting its current state.
func New(g *bhav.BehaviorGraph) *Engine {
	return &Engine{graph: g, snapshot: g.Clone()}
}

// Graph returns the live graph the engine edits.
func (e *Engine) Graph() *bhav.BehaviorGraph {
	return e.graph
}

// Snapshot returns the immutable state captured at construction.
func (e *Engine) Snapshot() *bhav.BehaviorGraph {
	return e.snapshot
}

// Insert splices instructions into the sequence at position at
// (0 <= at <= len). Exits of existing instructions are remapped so
// every pointer still targets the instruction it targeted before the
// edit; exits of the new instructions are taken verbatim in
// post-insert coordinates. The sequence can never grow past 253
// instructions: positions 253-255 are the reserved exit sentinels, so
// an instruction at or beyond that index could not be pointed at.
func (e *Engine) Insert(at int, instructions []bhav.Instruction) (Result, error) {
	n := e.graph.Len()
	if at < 0 || at > n {
		return Result{}, errors.WrapIndexOutOfRange(at, n+1)
	}
	if grown := n + len(instructions); grown > int(bhav.ExitError) {
		return Result{}, errors.WrapIndexOutOfRange(grown-1, int(bhav.ExitError))
	}

	m := make(remap, n)
	for i := 0; i < n; i++ {
		if i < at {
			m[i] = i
		} else {
			m[i] = i + len(instructions)
		}
	}

	next := cloneSeq(e.graph.Instructions)
	log, warnings := m.applyExits(next)

	next = append(next[:at:at], append(cloneSeq(instructions), next[at:]...)...)
	for i := range next {
		next[i].Position = i
	}

	e.graph.Instructions = next
	e.graph.Renumber()
	return Result{
		Operation:    fmt.Sprintf("insert %d instruction(s) at %d", len(instructions), at),
		Instructions: next,
		Log:          log,
		Warnings:     warnings,
	}, nil
}

// Delete removes the given positions from the sequence. Remaining
// instructions compact downward; any exit that pointed at a deleted
// instruction becomes the ERROR sentinel and is reported as a
// warning. An edit must never leave a dangling reference.
func (e *Engine) Delete(indices []int) (Result, error) {
	n := e.graph.Len()
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return Result{}, errors.WrapIndexOutOfRange(idx, n)
		}
		drop[idx] = true
	}

	m := make(remap, n)
	next := make([]bhav.Instruction, 0, n-len(drop))
	for i := 0; i < n; i++ {
		if drop[i] {
			m[i] = removed
			continue
		}
		m[i] = len(next)
		next = append(next, e.graph.Instructions[i])
	}

	log, warnings := m.applyExits(next)

	e.graph.Instructions = next
	e.graph.Renumber()
	return Result{
		Operation:    fmt.Sprintf("delete %d instruction(s)", len(drop)),
		Instructions: next,
		Log:          log,
		Warnings:     warnings,
	}, nil
}

// Move relocates one instruction from position from to position to,
// shifting everything strictly between them one slot toward the
// vacated position. Move(i, i) is a no-op.
func (e *Engine) Move(from, to int) (Result, error) {
	n := e.graph.Len()
	if from < 0 || from >= n {
		return Result{}, errors.WrapIndexOutOfRange(from, n)
	}
	if to < 0 || to >= n {
		return Result{}, errors.WrapIndexOutOfRange(to, n)
	}
	if from == to {
		return Result{
			Operation:    fmt.Sprintf("move %d -> %d (no-op)", from, to),
			Instructions: e.graph.Instructions,
		}, nil
	}

	m := identity(n)
	m[from] = to
	if from < to {
		for i := from + 1; i <= to; i++ {
			m[i] = i - 1
		}
	} else {
		for i := to; i < from; i++ {
			m[i] = i + 1
		}
	}
	if err := m.checkAddressable(); err != nil {
		return Result{}, err
	}

	return e.applyPermutation(m, fmt.Sprintf("move %d -> %d", from, to)), nil
}

// Reorder rearranges the whole sequence. order lists old indices in
// their new sequence order and must be a permutation of [0, len):
// same length, each index exactly once. Anything else fails without
// mutation.
func (e *Engine) Reorder(order []int) (Result, error) {
	n := e.graph.Len()
	if len(order) != n {
		return Result{}, errors.WrapBadPermutation(
			fmt.Sprintf("length %d, graph has %d instructions", len(order), n))
	}
	seen := make(map[int]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n {
			return Result{}, errors.WrapBadPermutation(fmt.Sprintf("index %d out of range", idx))
		}
		if seen[idx] {
			return Result{}, errors.WrapBadPermutation(fmt.Sprintf("index %d appears twice", idx))
		}
		seen[idx] = true
	}

	m := make(remap, n)
	for newPos, oldIdx := range order {
		m[oldIdx] = newPos
	}
	if err := m.checkAddressable(); err != nil {
		return Result{}, err
	}

	return e.applyPermutation(m, fmt.Sprintf("reorder %d instruction(s)", n)), nil
}

// applyPermutation rewrites exits through a bijective remap, then
// re-sorts the sequence by final position and renumbers.
func (e *Engine) applyPermutation(m remap, op string) Result {
	next := cloneSeq(e.graph.Instructions)
	log, warnings := m.applyExits(next)

	for i := range next {
		next[i].Position = m[i]
	}
	sort.Slice(next, func(a, b int) bool {
		return next[a].Position < next[b].Position
	})

	e.graph.Instructions = next
	e.graph.Renumber()
	return Result{
		Operation:    op,
		Instructions: next,
		Log:          log,
		Warnings:     warnings,
	}
}

// Validate confirms every non-sentinel exit is in bounds. Run as a
// post-condition after each operation.
func (e *Engine) Validate() []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	for _, in := range e.graph.Instructions {
		for _, exit := range []struct {
			which string
			value uint8
		}{{"true", in.TrueExit}, {"false", in.FalseExit}} {
			if !e.graph.InBounds(exit.value) {
				diags = append(diags, bhav.Diagnostic{
					Category: "control-flow",
					Severity: bhav.SeverityError,
					Position: in.Position,
					Message: fmt.Sprintf("%s exit %d is outside [0, %d)",
						exit.which, exit.value, e.graph.Len()),
				})
			}
		}
	}
	return diags
}

// Reset restores the graph to the snapshot taken at construction.
func (e *Engine) Reset() {
	restored := e.snapshot.Clone()
	e.graph.Instructions = restored.Instructions
	e.graph.Renumber()
}

func cloneSeq(in []bhav.Instruction) []bhav.Instruction {
	out := make([]bhav.Instruction, len(in))
	copy(out, in)
	return out
}
