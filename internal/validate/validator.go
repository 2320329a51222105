// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package validate runs the structural soundness checks on a decoded
// behavior graph: opcode resolution, abstract stack balance, variable
// scope, control-flow bounds, and branch logic. Checks never fail;
// they always produce a merged diagnostics report, and only
// error-severity findings are meant to block a commit.
package validate

import (
	"fmt"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/primitives"
)

// StackWarnThreshold is the abstract stack depth past which the
// balance check assumes a runaway push loop.
const StackWarnThreshold = 20

// Validator checks behavior graphs against the primitive metadata it
// was constructed with.
type Validator struct {
	lookup primitives.Lookup
}

// New builds a validator over the given opcode metadata.
func New(lookup primitives.Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate runs every check and merges their diagnostics.
func (v *Validator) Validate(g *bhav.BehaviorGraph) []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	diags = append(diags, v.checkTypes(g)...)
	diags = append(diags, v.checkStackBalance(g)...)
	diags = append(diags, v.checkVariableScope(g)...)
	diags = append(diags, v.checkControlFlow(g)...)
	diags = append(diags, v.checkLogic(g)...)
	return diags
}

// IsValid reports whether the graph passes with no error-severity
// diagnostic.
func (v *Validator) IsValid(g *bhav.BehaviorGraph) bool {
	return !bhav.HasErrors(v.Validate(g))
}

// checkTypes confirms every opcode resolves in the primitive table.
// Unresolved opcodes are errors; operand bytes set outside the
// declared schema are shape warnings.
func (v *Validator) checkTypes(g *bhav.BehaviorGraph) []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	for _, in := range g.Instructions {
		prim, ok := v.lookup.Lookup(in.Opcode)
		if !ok {
			diags = append(diags, bhav.Diagnostic{
				Category: "type",
				Severity: bhav.SeverityError,
				Position: in.Position,
				Message:  fmt.Sprintf("opcode 0x%04X does not resolve to a primitive", in.Opcode),
			})
			continue
		}
		if len(prim.Operands) == 0 {
			continue
		}
		declared := make(map[int]bool, len(prim.Operands))
		for _, f := range prim.Operands {
			declared[f.Offset] = true
		}
		for off, b := range in.Operand {
			if b != 0 && !declared[off] {
				diags = append(diags, bhav.Diagnostic{
					Category: "type",
					Severity: bhav.SeverityWarning,
					Position: in.Position,
					Message: fmt.Sprintf("%s: operand byte %d is 0x%02X but the schema declares no field there",
						prim.Name, off, b),
				})
			}
		}
	}
	return diags
}

// checkStackBalance simulates an abstract stack depth over the
// sequence using each primitive's declared delta. Negative depth is
// an error (reset to 0 to keep scanning); depth beyond the sanity
// threshold and a non-zero depth at the last instruction are
// warnings.
func (v *Validator) checkStackBalance(g *bhav.BehaviorGraph) []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	depth := 0
	for _, in := range g.Instructions {
		prim, _ := v.lookup.Lookup(in.Opcode)
		depth += prim.StackDelta
		if depth < 0 {
			diags = append(diags, bhav.Diagnostic{
				Category: "stack",
				Severity: bhav.SeverityError,
				Position: in.Position,
				Message:  fmt.Sprintf("stack depth goes negative (%d) after %s", depth, prim.Name),
			})
			depth = 0
		}
		if depth > StackWarnThreshold {
			diags = append(diags, bhav.Diagnostic{
				Category: "stack",
				Severity: bhav.SeverityWarning,
				Position: in.Position,
				Message:  fmt.Sprintf("stack depth %d exceeds sanity threshold %d", depth, StackWarnThreshold),
			})
		}
	}
	if depth != 0 && len(g.Instructions) > 0 {
		diags = append(diags, bhav.Diagnostic{
			Category: "stack",
			Severity: bhav.SeverityWarning,
			Position: g.Instructions[len(g.Instructions)-1].Position,
			Message:  fmt.Sprintf("stack depth is %d at the last instruction, expected 0", depth),
		})
	}
	return diags
}

// checkControlFlow confirms every exit is a sentinel or in bounds.
func (v *Validator) checkControlFlow(g *bhav.BehaviorGraph) []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	for _, in := range g.Instructions {
		for _, exit := range []struct {
			which string
			value uint8
		}{{"true", in.TrueExit}, {"false", in.FalseExit}} {
			if !g.InBounds(exit.value) {
				diags = append(diags, bhav.Diagnostic{
					Category: "control-flow",
					Severity: bhav.SeverityError,
					Position: in.Position,
					Message:  fmt.Sprintf("%s exit %d is outside [0, %d)", exit.which, exit.value, g.Len()),
				})
			}
		}
	}
	return diags
}

// checkLogic flags branches whose outcome cannot matter.
func (v *Validator) checkLogic(g *bhav.BehaviorGraph) []bhav.Diagnostic {
	var diags []bhav.Diagnostic
	for _, in := range g.Instructions {
		if in.TrueExit == in.FalseExit {
			diags = append(diags, bhav.Diagnostic{
				Category: "logic",
				Severity: bhav.SeverityWarning,
				Position: in.Position,
				Message:  fmt.Sprintf("true and false exits both target %s", bhav.ExitName(in.TrueExit)),
			})
		}
	}
	return diags
}
