// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"fmt"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/primitives"
)

// varBits tracks which of up to 256 local slots are definitely
// written. Fixed-size so the dataflow sets copy by value.
type varBits [4]uint64

func (b *varBits) set(i uint8)     { b[i>>6] |= 1 << (i & 63) }
func (b varBits) has(i uint8) bool { return b[i>>6]&(1<<(i&63)) != 0 }

func (b varBits) and(o varBits) varBits {
	var out varBits
	for i := range b {
		out[i] = b[i] & o[i]
	}
	return out
}

var allBits = varBits{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}

// checkVariableScope validates local and argument references against
// the graph's declared counts (error when out of range) and warns
// about locals read on some path with no preceding write on that
// path. Arguments are caller-supplied, so only range is checked for
// them.
//
// "Written before" is a must-reach dataflow fact: the in-set of an
// instruction is the intersection of its predecessors' out-sets,
// iterated to a fixpoint so loops converge.
func (v *Validator) checkVariableScope(g *bhav.BehaviorGraph) []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	n := g.Len()
	if n == 0 {
		return nil
	}

	// Range checks first: they do not depend on flow.
	for _, in := range g.Instructions {
		prim, ok := v.lookup.Lookup(in.Opcode)
		if !ok {
			continue
		}
		for _, f := range prim.Operands {
			if f.Var == "" || f.Offset < 0 || f.Offset >= bhav.OperandSize {
				continue
			}
			slot := in.Operand[f.Offset]
			switch f.Var {
			case primitives.VarLocal:
				if slot >= g.LocalCount {
					diags = append(diags, bhav.Diagnostic{
						Category: "scope",
						Severity: bhav.SeverityError,
						Position: in.Position,
						Message: fmt.Sprintf("%s.%s references local %d, graph declares %d",
							prim.Name, f.Name, slot, g.LocalCount),
					})
				}
			case primitives.VarArg:
				if slot >= g.ArgCount {
					diags = append(diags, bhav.Diagnostic{
						Category: "scope",
						Severity: bhav.SeverityError,
						Position: in.Position,
						Message: fmt.Sprintf("%s.%s references argument %d, graph declares %d",
							prim.Name, f.Name, slot, g.ArgCount),
					})
				}
			}
		}
	}

	// Must-write dataflow over the control-flow graph.
	preds := make([][]int, n)
	for _, in := range g.Instructions {
		for _, exit := range []uint8{in.TrueExit, in.FalseExit} {
			if !bhav.IsSentinel(exit) && int(exit) < n {
				preds[exit] = append(preds[exit], in.Position)
			}
		}
	}

	in := make([]varBits, n)
	out := make([]varBits, n)
	for i := range in {
		in[i] = allBits
		out[i] = allBits
	}
	in[0] = varBits{}
	out[0] = in[0]
	for _, f := range v.writeFields(g.Instructions[0]) {
		out[0].set(g.Instructions[0].Operand[f.Offset])
	}

	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			merged := in[i]
			if i != 0 {
				merged = allBits
				for _, p := range preds[i] {
					merged = merged.and(out[p])
				}
				if len(preds[i]) == 0 {
					// Unreachable except as entry; keep top so no
					// spurious warning fires here.
					merged = allBits
				}
			}
			next := merged
			for _, f := range v.writeFields(g.Instructions[i]) {
				next.set(g.Instructions[i].Operand[f.Offset])
			}
			if merged != in[i] || next != out[i] {
				in[i] = merged
				out[i] = next
				changed = true
			}
		}
	}

	for _, inst := range g.Instructions {
		prim, ok := v.lookup.Lookup(inst.Opcode)
		if !ok {
			continue
		}
		for _, f := range prim.Operands {
			if f.Var != primitives.VarLocal || f.Access != primitives.AccessRead {
				continue
			}
			if f.Offset < 0 || f.Offset >= bhav.OperandSize {
				continue
			}
			slot := inst.Operand[f.Offset]
			if slot < g.LocalCount && !in[inst.Position].has(slot) {
				diags = append(diags, bhav.Diagnostic{
					Category: "scope",
					Severity: bhav.SeverityWarning,
					Position: inst.Position,
					Message: fmt.Sprintf("%s.%s reads local %d before any write on some path",
						prim.Name, f.Name, slot),
				})
			}
		}
	}
	return diags
}

func (v *Validator) writeFields(in bhav.Instruction) []primitives.OperandField {
	prim, ok := v.lookup.Lookup(in.Opcode)
	if !ok {
		return nil
	}
	var fields []primitives.OperandField
	for _, f := range prim.Operands {
		if f.Var == primitives.VarLocal && f.Access == primitives.AccessWrite &&
			f.Offset >= 0 && f.Offset < bhav.OperandSize {
			fields = append(fields, f)
		}
	}
	return fields
}
