// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package callgraph

import "fmt"

// findCycles runs a depth-first search with an explicit recursion
// stack over the callee adjacency. A back edge to a node still on the
// stack yields a cycle: the stack slice from that node to the current
// node, closed by repeating the start. The DFS is iterative so
// hostile packages cannot overflow the goroutine stack.
func (g *Graph) findCycles() [][]uint16 {
	const (
		white = iota // never visited
		gray         // on the current DFS path
		black        // fully explored
	)

	color := make(map[uint16]int, len(g.ids))
	var cycles [][]uint16
	seen := make(map[string]bool)

	type frame struct {
		node uint16
		next int
	}

	for _, root := range g.ids {
		if color[root] != white {
			continue
		}
		stack := []frame{{node: root}}
		path := []uint16{root}
		onPath := map[uint16]int{root: 0}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.callees[top.node]
			if top.next < len(children) {
				child := children[top.next]
				top.next++
				switch color[child] {
				case white:
					color[child] = gray
					onPath[child] = len(path)
					path = append(path, child)
					stack = append(stack, frame{node: child})
				case gray:
					cycle := append([]uint16(nil), path[onPath[child]:]...)
					cycle = append(cycle, child)
					if key := cycleKey(cycle); !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
				continue
			}
			color[top.node] = black
			delete(onPath, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return cycles
}

// cycleKey canonicalizes a cycle so the same loop discovered from
// different roots is reported once. The closing repeat is dropped and
// the rotation starting at the smallest id is used as the key.
func cycleKey(cycle []uint16) string {
	body := cycle[:len(cycle)-1]
	if len(body) == 0 {
		return ""
	}
	min := 0
	for i := range body {
		if body[i] < body[min] {
			min = i
		}
	}
	key := ""
	for i := 0; i < len(body); i++ {
		key += fmt.Sprintf("%04x.", body[(min+i)%len(body)])
	}
	return key
}
