// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// RenderTree draws the call tree rooted at id as indented text for
// the CLI. Depth bounds the walk; nodes already on the current branch
// are marked recursive instead of expanded again.
func (g *Graph) RenderTree(id uint16, depth int) string {
	root := treeprint.NewWithRoot(nodeLabel(id))
	g.addBranches(root, id, depth, map[uint16]bool{id: true})
	return root.String()
}

func (g *Graph) addBranches(node treeprint.Tree, id uint16, depth int, onBranch map[uint16]bool) {
	if depth <= 0 {
		if len(g.callees[id]) > 0 {
			node.AddNode("...")
		}
		return
	}
	for _, callee := range g.callees[id] {
		if onBranch[callee] {
			node.AddNode(nodeLabel(callee) + " (recursive)")
			continue
		}
		child := node.AddBranch(nodeLabel(callee))
		onBranch[callee] = true
		g.addBranches(child, callee, depth-1, onBranch)
		delete(onBranch, callee)
	}
}

func nodeLabel(id uint16) string {
	return fmt.Sprintf("0x%04X", id)
}
