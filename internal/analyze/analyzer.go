// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package analyze derives reachability, loop, hot-spot, and
// complexity facts from a behavior graph without executing it.
package analyze

import (
	"fmt"
	"sort"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/primitives"
)

// Loop is one detected back edge: an instruction whose exit targets a
// position at or before itself. The span [Start, End] covers every
// position the loop can revisit.
type Loop struct {
	Start int `json:"start"`
	End   int `json:"end"`
	// Infinite marks an instruction branching to itself.
	Infinite bool `json:"infinite"`
	// ContainsCalls marks loop spans that include a call-type
	// instruction, an input to hot-spot ranking.
	ContainsCalls bool `json:"contains_calls"`
}

// HotSpot is an expensive primitive occurring inside a loop span.
type HotSpot struct {
	Position  int    `json:"position"`
	Opcode    uint16 `json:"opcode"`
	Primitive string `json:"primitive"`
	LoopStart int    `json:"loop_start"`
	LoopEnd   int    `json:"loop_end"`
}

// Report is the full analysis result for one graph.
type Report struct {
	GraphID    uint16    `json:"graph_id"`
	Reachable  []int     `json:"reachable"`
	Dead       []int     `json:"dead"`
	Loops      []Loop    `json:"loops"`
	HotSpots   []HotSpot `json:"hot_spots"`
	Cyclomatic int       `json:"cyclomatic"`
	MaxNesting int       `json:"max_nesting"`
	Coverage   float64   `json:"coverage"`
}

// Analyzer runs static analysis against the primitive metadata it was
// constructed with.
type Analyzer struct {
	lookup primitives.Lookup
}

// New builds an analyzer over the given opcode metadata.
func New(lookup primitives.Lookup) *Analyzer {
	return &Analyzer{lookup: lookup}
}

// Analyze computes the full report. It never fails: malformed exits
// simply do not contribute edges.
func (a *Analyzer) Analyze(g *bhav.BehaviorGraph) *Report {
	r := &Report{GraphID: g.ID}
	r.Reachable = reachable(g)
	r.Dead = dead(g, r.Reachable)
	r.Loops = a.loops(g)
	r.HotSpots = a.hotSpots(g, r.Loops)
	r.Cyclomatic = cyclomatic(g)
	r.MaxNesting = maxNesting(g)
	if n := g.Len(); n > 0 {
		r.Coverage = float64(len(r.Reachable)) / float64(n)
	} else {
		r.Coverage = 1.0
	}
	return r
}

// reachable walks breadth-first from instruction 0 following both
// exits.
func reachable(g *bhav.BehaviorGraph) []int {
	n := g.Len()
	if n == 0 {
		return nil
	}
	seen := make([]bool, n)
	queue := []int{0}
	seen[0] = true
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		in := g.Instructions[pos]
		for _, exit := range []uint8{in.TrueExit, in.FalseExit} {
			if bhav.IsSentinel(exit) || int(exit) >= n {
				continue
			}
			if !seen[exit] {
				seen[exit] = true
				queue = append(queue, int(exit))
			}
		}
	}
	var out []int
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func dead(g *bhav.BehaviorGraph, reached []int) []int {
	seen := make(map[int]bool, len(reached))
	for _, p := range reached {
		seen[p] = true
	}
	var out []int
	for i := 0; i < g.Len(); i++ {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}

// loops records a span [target, pos] for every backward exit. When
// both exits of one instruction point backward, each contributes its
// own loop; identical spans are reported once.
func (a *Analyzer) loops(g *bhav.BehaviorGraph) []Loop {
	n := g.Len()
	seen := make(map[[2]int]bool)
	var out []Loop
	for _, in := range g.Instructions {
		for _, exit := range []uint8{in.TrueExit, in.FalseExit} {
			if bhav.IsSentinel(exit) || int(exit) >= n || int(exit) > in.Position {
				continue
			}
			span := [2]int{int(exit), in.Position}
			if seen[span] {
				continue
			}
			seen[span] = true
			loop := Loop{
				Start:    span[0],
				End:      span[1],
				Infinite: span[0] == span[1],
			}
			for p := loop.Start; p <= loop.End; p++ {
				prim, _ := a.lookup.Lookup(g.Instructions[p].Opcode)
				if prim.IsCall() {
					loop.ContainsCalls = true
					break
				}
			}
			out = append(out, loop)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// hotSpots reports expensive primitives occurring inside any loop
// span, once per (position, loop).
func (a *Analyzer) hotSpots(g *bhav.BehaviorGraph, loops []Loop) []HotSpot {
	var out []HotSpot
	for _, loop := range loops {
		for p := loop.Start; p <= loop.End && p < g.Len(); p++ {
			prim, ok := a.lookup.Lookup(g.Instructions[p].Opcode)
			if ok && prim.Expensive {
				out = append(out, HotSpot{
					Position:  p,
					Opcode:    g.Instructions[p].Opcode,
					Primitive: prim.Name,
					LoopStart: loop.Start,
					LoopEnd:   loop.End,
				})
			}
		}
	}
	return out
}

// cyclomatic is the count of instructions that can actually branch,
// plus one.
func cyclomatic(g *bhav.BehaviorGraph) int {
	count := 0
	for _, in := range g.Instructions {
		if in.Conditional() {
			count++
		}
	}
	return count + 1
}

// maxNesting is the deepest point of the graph, where the nesting
// depth at a position is the number of still-open forward branches:
// instructions before it whose exit jumps past it.
func maxNesting(g *bhav.BehaviorGraph) int {
	n := g.Len()
	max := 0
	for p := 0; p < n; p++ {
		depth := 0
		for j := 0; j < p; j++ {
			in := g.Instructions[j]
			for _, exit := range []uint8{in.TrueExit, in.FalseExit} {
				if !bhav.IsSentinel(exit) && int(exit) > p {
					depth++
					break
				}
			}
		}
		if depth > max {
			max = depth
		}
	}
	return max
}

// Diagnostics renders the report's findings in the shared diagnostic
// shape callers merge with validator output.
func (r *Report) Diagnostics() []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	for _, p := range r.Dead {
		diags = append(diags, bhav.Diagnostic{
			Category: "dead-code",
			Severity: bhav.SeverityWarning,
			Position: p,
			Message:  "instruction is unreachable from the entry point",
		})
	}
	for _, loop := range r.Loops {
		if loop.Infinite {
			diags = append(diags, bhav.Diagnostic{
				Category: "loop",
				Severity: bhav.SeverityWarning,
				Position: loop.End,
				Message:  "instruction branches to itself",
			})
		} else if loop.ContainsCalls {
			diags = append(diags, bhav.Diagnostic{
				Category: "loop",
				Severity: bhav.SeverityInfo,
				Position: loop.End,
				Message:  fmt.Sprintf("loop [%d, %d] contains subroutine calls", loop.Start, loop.End),
			})
		}
	}
	for _, h := range r.HotSpots {
		diags = append(diags, bhav.Diagnostic{
			Category: "hot-spot",
			Severity: bhav.SeverityWarning,
			Position: h.Position,
			Message:  fmt.Sprintf("expensive primitive %s inside loop [%d, %d]", h.Primitive, h.LoopStart, h.LoopEnd),
		})
	}
	return diags
}
