// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package callgraph

import "sort"

// CallersOf returns the graphs that call id directly.
func (g *Graph) CallersOf(id uint16) []uint16 {
	return append([]uint16(nil), g.callers[id]...)
}

// CalleesOf returns the graphs id calls directly.
func (g *Graph) CalleesOf(id uint16) []uint16 {
	return append([]uint16(nil), g.callees[id]...)
}

// CallDepth returns the length of the shortest call chain from one
// graph to another, or -1 when the target is unreachable. A graph is
// at depth 0 from itself.
func (g *Graph) CallDepth(from, to uint16) int {
	if from == to {
		return 0
	}
	depth := map[uint16]int{from: 0}
	queue := []uint16{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.callees[cur] {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[cur] + 1
			if next == to {
				return depth[next]
			}
			queue = append(queue, next)
		}
	}
	return -1
}

// IsRecursive reports whether a call chain leads from id back to
// itself, including direct self-calls.
func (g *Graph) IsRecursive(id uint16) bool {
	for _, start := range g.callees[id] {
		if start == id {
			return true
		}
		if g.CallDepth(start, id) >= 0 {
			return true
		}
	}
	return false
}

// Descendants returns every graph reachable through calls from id,
// ascending. id itself appears only when it is recursive.
func (g *Graph) Descendants(id uint16) []uint16 {
	return g.closure(id, g.callees)
}

// Ancestors returns every graph that can reach id through calls,
// ascending. id itself appears only when it is recursive.
func (g *Graph) Ancestors(id uint16) []uint16 {
	return g.closure(id, g.callers)
}

func (g *Graph) closure(id uint16, adj map[uint16][]uint16) []uint16 {
	seen := make(map[uint16]bool)
	queue := append([]uint16(nil), adj[id]...)
	for _, n := range queue {
		seen[n] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	out := make([]uint16, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Unused returns graphs with no callers that are not marked entry
// points: candidates for removal from the package.
func (g *Graph) Unused() []uint16 {
	var out []uint16
	for _, id := range g.ids {
		if len(g.callers[id]) == 0 && !g.entry[id] {
			out = append(out, id)
		}
	}
	return out
}

// Leaves returns graphs that call nothing.
func (g *Graph) Leaves() []uint16 {
	var out []uint16
	for _, id := range g.ids {
		if len(g.callees[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Roots returns graphs nothing calls.
func (g *Graph) Roots() []uint16 {
	var out []uint16
	for _, id := range g.ids {
		if len(g.callers[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// RankEntry pairs a graph id with a usage count.
type RankEntry struct {
	ID    uint16 `json:"id"`
	Count int    `json:"count"`
}

// MostCalled ranks graphs by distinct direct callers, descending,
// returning at most n entries.
func (g *Graph) MostCalled(n int) []RankEntry {
	return g.rank(g.callers, n)
}

// MostCalling ranks graphs by distinct direct callees, descending,
// returning at most n entries.
func (g *Graph) MostCalling(n int) []RankEntry {
	return g.rank(g.callees, n)
}

func (g *Graph) rank(adj map[uint16][]uint16, n int) []RankEntry {
	out := make([]RankEntry, 0, len(g.ids))
	for _, id := range g.ids {
		if count := len(adj[id]); count > 0 {
			out = append(out, RankEntry{ID: id, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
