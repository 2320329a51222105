// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package callgraph aggregates call edges across every behavior graph
// in a package and answers cross-reference queries: callers, callees,
// transitive closures, recursion, cycles, and usage rankings. The
// index is rebuilt from scratch whenever the underlying package
// changes; it is never patched incrementally.
package callgraph

import (
	"runtime"
	"sort"
	"sync"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/primitives"
)

// Edge is one caller/callee relationship. Sites lists every
// instruction position in the caller that makes the call.
type Edge struct {
	Caller uint16             `json:"caller"`
	Callee uint16             `json:"callee"`
	Kind   primitives.CallKind `json:"kind"`
	Sites  []int              `json:"sites"`
}

// Graph is the built cross-reference index. Read-only after Build;
// safe for concurrent queries.
type Graph struct {
	edges   []Edge
	callees map[uint16][]uint16
	callers map[uint16][]uint16
	ids     []uint16
	entry   map[uint16]bool
	cycles  [][]uint16
}

// Build scans every graph in the package for call-type opcodes,
// extracts the callee id from the operand, and merges the edges into
// one index. The per-graph scan is embarrassingly parallel; edges
// meet at a single merge point.
func Build(pkg bhav.Package, lookup primitives.Lookup) *Graph {
	ids := make([]uint16, 0, len(pkg))
	for id := range pkg {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	type scanResult struct {
		caller uint16
		edges  []Edge
	}

	jobs := make(chan uint16)
	results := make(chan scanResult, len(pkg))
	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	if workers > len(pkg) {
		workers = len(pkg)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- scanResult{caller: id, edges: scanGraph(pkg[id], lookup)}
			}
		}()
	}
	go func() {
		for _, id := range ids {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	byCaller := make(map[uint16][]Edge, len(pkg))
	for res := range results {
		byCaller[res.caller] = res.edges
	}

	g := &Graph{
		callees: make(map[uint16][]uint16),
		callers: make(map[uint16][]uint16),
		ids:     ids,
		entry:   make(map[uint16]bool),
	}
	for _, id := range ids {
		if pkg[id].EntryPoint {
			g.entry[id] = true
		}
		for _, e := range byCaller[id] {
			g.edges = append(g.edges, e)
			g.callees[e.Caller] = appendUnique(g.callees[e.Caller], e.Callee)
			g.callers[e.Callee] = appendUnique(g.callers[e.Callee], e.Caller)
		}
	}
	for _, adj := range []map[uint16][]uint16{g.callees, g.callers} {
		for _, list := range adj {
			sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		}
	}

	g.cycles = g.findCycles()
	return g
}

// scanGraph extracts the call edges of one behavior graph, merging
// repeated calls to the same callee into one edge with multiple
// sites.
func scanGraph(g *bhav.BehaviorGraph, lookup primitives.Lookup) []Edge {
	type key struct {
		callee uint16
		kind   primitives.CallKind
	}
	merged := make(map[key]*Edge)
	var order []key
	for _, in := range g.Instructions {
		prim, ok := lookup.Lookup(in.Opcode)
		if !ok || !prim.IsCall() {
			continue
		}
		k := key{callee: in.CalleeID(), kind: prim.CallKind}
		e, seen := merged[k]
		if !seen {
			e = &Edge{Caller: g.ID, Callee: k.callee, Kind: k.kind}
			merged[k] = e
			order = append(order, k)
		}
		e.Sites = append(e.Sites, in.Position)
	}
	out := make([]Edge, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return out
}

// Edges returns every recorded call edge.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// IDs returns every graph id in the package, ascending.
func (g *Graph) IDs() []uint16 {
	return g.ids
}

// Cycles returns every distinct call cycle. Each cycle is an ordered
// id list returning to its start, e.g. [A B A].
func (g *Graph) Cycles() [][]uint16 {
	return g.cycles
}

func appendUnique(list []uint16, id uint16) []uint16 {
	for _, have := range list {
		if have == id {
			return list
		}
	}
	return append(list, id)
}
