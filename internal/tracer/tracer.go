// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package tracer walks behavior graphs without performing any real
// side effect. A walk follows one exit per step under a fixed branch
// policy, descends into callee graphs through the call-graph's edges,
// and always terminates: a shared step budget and a call-depth bound
// convert infinite or mutually recursive graphs into a reportable
// terminal classification instead of a hang.
package tracer

import (
	"fmt"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/callgraph"
	"github.com/dotandev/simantix/internal/errors"
	"github.com/dotandev/simantix/internal/primitives"
)

// Terminal classifies how a walk ended.
type Terminal string

const (
	TerminalReturnTrue  Terminal = "RETURN_TRUE"
	TerminalReturnFalse Terminal = "RETURN_FALSE"
	TerminalError       Terminal = "ERROR"
	// TerminalBudget means the walk was cut off by the step budget or
	// call-depth bound. This is the contract that keeps the tracer
	// from hanging on loops and mutual recursion.
	TerminalBudget Terminal = "EXCEEDED_STEP_BUDGET"
)

// Step is one visited instruction.
type Step struct {
	GraphID  uint16 `json:"graph_id"`
	Position int    `json:"position"`
	TookTrue bool   `json:"took_true"`
	// Abstract stack depth around the step, for correlation with the
	// validator's balance check.
	DepthBefore int `json:"depth_before"`
	DepthAfter  int `json:"depth_after"`
}

// Trace is the ordered record of one walk.
type Trace struct {
	GraphID  uint16   `json:"graph_id"`
	Steps    []Step   `json:"steps"`
	Terminal Terminal `json:"terminal"`
}

// Defaults for the cancellation bounds. Every walk is bounded and
// synchronous; these are the only cutoffs it needs.
const (
	DefaultStepBudget   = 1000
	DefaultMaxCallDepth = 64
)

// Tracer walks graphs against a primitive table. Zero-value bounds
// are replaced with the defaults.
type Tracer struct {
	lookup       primitives.Lookup
	pkg          bhav.Package
	calls        *callgraph.Graph
	StepBudget   int
	MaxCallDepth int
}

// New builds a single-graph tracer.
func New(lookup primitives.Lookup) *Tracer {
	return &Tracer{
		lookup:       lookup,
		StepBudget:   DefaultStepBudget,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

// WithPackage enables cross-graph walks: call-type instructions
// descend into their callee when the call graph records the edge.
func (t *Tracer) WithPackage(pkg bhav.Package, calls *callgraph.Graph) *Tracer {
	t.pkg = pkg
	t.calls = calls
	return t
}

// walkState is shared across call boundaries so the budget bounds the
// whole walk, not each graph separately.
type walkState struct {
	steps     []Step
	stepsUsed int
	depth     int
	callStack []uint16
}

// Trace walks from the given entry instruction, taking the true exit
// at every branch: the static stand-in for "the primitive succeeds".
func (t *Tracer) Trace(g *bhav.BehaviorGraph, entry int) (*Trace, error) {
	if entry < 0 || entry >= g.Len() {
		return nil, errors.WrapIndexOutOfRange(entry, g.Len())
	}
	state := &walkState{callStack: []uint16{g.ID}}
	terminal := t.walk(g, entry, state)
	return &Trace{GraphID: g.ID, Steps: state.steps, Terminal: terminal}, nil
}

// walk runs one graph until a sentinel or a budget cutoff. Callee
// walks nest through the call instruction: the callee's terminal
// selects which exit of the call the caller follows.
func (t *Tracer) walk(g *bhav.BehaviorGraph, pos int, state *walkState) Terminal {
	budget := t.StepBudget
	if budget <= 0 {
		budget = DefaultStepBudget
	}
	maxDepth := t.MaxCallDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxCallDepth
	}

	for {
		if state.stepsUsed >= budget {
			return TerminalBudget
		}
		if pos < 0 || pos >= g.Len() {
			// Dangling exits are a validator finding; the walk
			// classifies them as the error terminal.
			return TerminalError
		}
		state.stepsUsed++

		in := g.Instructions[pos]
		prim, _ := t.lookup.Lookup(in.Opcode)

		before := state.depth
		state.depth += prim.StackDelta
		stepIdx := len(state.steps)
		state.steps = append(state.steps, Step{
			GraphID:     g.ID,
			Position:    pos,
			TookTrue:    true,
			DepthBefore: before,
			DepthAfter:  state.depth,
		})

		tookTrue := true
		if callee, ok := t.resolveCall(g, prim, in); ok {
			if len(state.callStack) >= maxDepth {
				return TerminalBudget
			}
			state.callStack = append(state.callStack, callee.ID)
			sub := t.walk(callee, 0, state)
			state.callStack = state.callStack[:len(state.callStack)-1]
			switch sub {
			case TerminalReturnTrue:
				tookTrue = true
			case TerminalReturnFalse:
				tookTrue = false
			default:
				return sub
			}
		}

		exit := in.TrueExit
		if !tookTrue {
			exit = in.FalseExit
		}
		state.steps[stepIdx].TookTrue = tookTrue

		if bhav.IsSentinel(exit) {
			switch exit {
			case bhav.ExitReturnTrue:
				return TerminalReturnTrue
			case bhav.ExitReturnFalse:
				return TerminalReturnFalse
			default:
				return TerminalError
			}
		}
		pos = int(exit)
	}
}

// resolveCall returns the callee graph when the instruction is a call
// the call-graph index knows about.
func (t *Tracer) resolveCall(g *bhav.BehaviorGraph, prim primitives.Primitive, in bhav.Instruction) (*bhav.BehaviorGraph, bool) {
	if !prim.IsCall() || t.pkg == nil || t.calls == nil {
		return nil, false
	}
	calleeID := in.CalleeID()
	for _, known := range t.calls.CalleesOf(g.ID) {
		if known == calleeID {
			callee, ok := t.pkg[calleeID]
			return callee, ok && callee.Len() > 0
		}
	}
	return nil, false
}

// Explore enumerates every branch decision reachable from entry in
// one graph, true exit first, without deduplicating revisits: it is
// path enumeration, not reachability. The step budget is the only
// stop condition on cyclic graphs. The trace terminal is the first
// terminal any path reaches, or the budget classification.
func (t *Tracer) Explore(g *bhav.BehaviorGraph, entry int) (*Trace, error) {
	if entry < 0 || entry >= g.Len() {
		return nil, errors.WrapIndexOutOfRange(entry, g.Len())
	}
	budget := t.StepBudget
	if budget <= 0 {
		budget = DefaultStepBudget
	}

	type visit struct {
		pos   int
		depth int
	}

	out := &Trace{GraphID: g.ID, Terminal: TerminalBudget}
	stack := []visit{{pos: entry}}
	used := 0
	var firstTerminal Terminal

	for len(stack) > 0 {
		if used >= budget {
			out.Terminal = TerminalBudget
			return out, nil
		}
		used++

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		in := g.Instructions[cur.pos]
		prim, _ := t.lookup.Lookup(in.Opcode)
		after := cur.depth + prim.StackDelta

		var pending []visit
		for _, br := range []struct {
			exit uint8
			took bool
		}{{in.TrueExit, true}, {in.FalseExit, false}} {
			out.Steps = append(out.Steps, Step{
				GraphID:     g.ID,
				Position:    cur.pos,
				TookTrue:    br.took,
				DepthBefore: cur.depth,
				DepthAfter:  after,
			})
			if bhav.IsSentinel(br.exit) {
				if firstTerminal == "" {
					firstTerminal = sentinelTerminal(br.exit)
				}
				continue
			}
			if int(br.exit) < g.Len() {
				pending = append(pending, visit{pos: int(br.exit), depth: after})
			}
		}
		// Push in reverse so the true branch pops first.
		for i := len(pending) - 1; i >= 0; i-- {
			stack = append(stack, pending[i])
		}
	}

	if firstTerminal != "" {
		out.Terminal = firstTerminal
	}
	return out, nil
}

func sentinelTerminal(exit uint8) Terminal {
	switch exit {
	case bhav.ExitReturnTrue:
		return TerminalReturnTrue
	case bhav.ExitReturnFalse:
		return TerminalReturnFalse
	default:
		return TerminalError
	}
}

func (t Terminal) String() string {
	return string(t)
}

// Summary renders a one-line description for logs.
func (tr *Trace) Summary() string {
	return fmt.Sprintf("graph 0x%04X: %d step(s), terminal %s", tr.GraphID, len(tr.Steps), tr.Terminal)
}
