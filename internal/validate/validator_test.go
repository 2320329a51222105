// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/primitives"
)

// Opcodes from the embedded table used throughout these tests.
const (
	opSleep      = 0x0000
	opExpression = 0x0002 // writes local operand[0], reads local operand[1]
	opGrab       = 0x0004 // stack +1
	opDrop       = 0x0005 // stack -1
	opTestArg    = 0x000A // reads arg operand[0]
	opCall       = 0x000D
)

func ins(opcode uint16, trueExit, falseExit uint8, operand ...byte) bhav.Instruction {
	in := bhav.Instruction{Opcode: opcode, TrueExit: trueExit, FalseExit: falseExit}
	copy(in.Operand[:], operand)
	return in
}

func graph(locals, args uint8, instructions ...bhav.Instruction) *bhav.BehaviorGraph {
	g := &bhav.BehaviorGraph{ID: 0x1000, LocalCount: locals, ArgCount: args, Instructions: instructions}
	g.Renumber()
	return g
}

func filterCategory(diags []bhav.Diagnostic, category string) []bhav.Diagnostic {
	var out []bhav.Diagnostic
	for _, d := range diags {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

func TestFreshDecodeHasNoControlFlowErrors(t *testing.T) {
	raw := bhav.Encode(graph(0, 0,
		ins(opSleep, 1, bhav.ExitError),
		ins(opSleep, bhav.ExitReturnTrue, bhav.ExitError),
	))
	g, err := bhav.Decode(raw, 1)
	require.NoError(t, err)

	diags := New(primitives.Default()).Validate(g)
	assert.Empty(t, filterCategory(diags, "control-flow"))
}

func TestUnknownOpcodeIsError(t *testing.T) {
	g := graph(0, 0, ins(0x0FFF, bhav.ExitReturnTrue, bhav.ExitError))
	v := New(primitives.Default())

	diags := filterCategory(v.Validate(g), "type")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityError, diags[0].Severity)
	assert.False(t, v.IsValid(g))
}

func TestOperandShapeMismatchIsWarning(t *testing.T) {
	// sleep declares only operand byte 0; byte 3 set is a shape issue.
	g := graph(0, 0, ins(opSleep, bhav.ExitReturnTrue, bhav.ExitError, 5, 0, 0, 0x7F))
	diags := filterCategory(New(primitives.Default()).Validate(g), "type")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityWarning, diags[0].Severity)
	assert.Equal(t, 0, diags[0].Position)
}

func TestStackUnderflowIsErrorAndScanContinues(t *testing.T) {
	g := graph(0, 0,
		ins(opDrop, 1, bhav.ExitError),
		ins(opDrop, bhav.ExitReturnTrue, bhav.ExitError),
	)
	diags := filterCategory(New(primitives.Default()).Validate(g), "stack")

	// Depth resets to 0 after each underflow, so both positions report.
	errorsFound := 0
	for _, d := range diags {
		if d.Severity == bhav.SeverityError {
			errorsFound++
		}
	}
	assert.Equal(t, 2, errorsFound)
}

func TestStackDepthThresholdWarning(t *testing.T) {
	var seq []bhav.Instruction
	for i := 0; i < StackWarnThreshold+1; i++ {
		seq = append(seq, ins(opGrab, uint8(i+1), bhav.ExitError))
	}
	seq = append(seq, ins(opSleep, bhav.ExitReturnTrue, bhav.ExitError))
	g := graph(0, 0, seq...)

	diags := filterCategory(New(primitives.Default()).Validate(g), "stack")
	var warned bool
	for _, d := range diags {
		if d.Severity == bhav.SeverityWarning && d.Position == StackWarnThreshold {
			warned = true
		}
	}
	assert.True(t, warned, "expected a depth warning once past the threshold")
}

func TestUnbalancedStackAtEndIsWarning(t *testing.T) {
	g := graph(0, 0, ins(opGrab, bhav.ExitReturnTrue, bhav.ExitError))
	diags := filterCategory(New(primitives.Default()).Validate(g), "stack")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityWarning, diags[0].Severity)
}

func TestLocalReferenceOutOfScope(t *testing.T) {
	// expression writes local 4 in a graph declaring 2 locals.
	g := graph(2, 0, ins(opExpression, bhav.ExitReturnTrue, bhav.ExitError, 4, 0))
	diags := filterCategory(New(primitives.Default()).Validate(g), "scope")
	require.NotEmpty(t, diags)
	assert.Equal(t, bhav.SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "local 4")
}

func TestArgReferenceOutOfScope(t *testing.T) {
	g := graph(0, 1, ins(opTestArg, bhav.ExitReturnTrue, bhav.ExitError, 3))
	diags := filterCategory(New(primitives.Default()).Validate(g), "scope")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "argument 3")
}

func TestReadBeforeWriteWarning(t *testing.T) {
	// Instruction 0 reads local 1 with no write anywhere before it.
	g := graph(2, 0, ins(opExpression, bhav.ExitReturnTrue, bhav.ExitError, 0, 1))
	diags := filterCategory(New(primitives.Default()).Validate(g), "scope")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "reads local 1")
}

func TestReadAfterWriteOnAllPathsIsClean(t *testing.T) {
	// 0 writes local 1, then 1 reads it.
	g := graph(2, 0,
		ins(opExpression, 1, bhav.ExitError, 1, 1), // dst=1 src=1: write wins for successors
		ins(opExpression, bhav.ExitReturnTrue, bhav.ExitError, 0, 1),
	)
	diags := filterCategory(New(primitives.Default()).Validate(g), "scope")
	// Position 0 reads local 1 before writing it; position 1 must not warn.
	for _, d := range diags {
		assert.NotEqual(t, 1, d.Position)
	}
}

func TestReadWrittenOnOnlyOnePathWarns(t *testing.T) {
	// 0 branches: true path writes local 0 at 1, false path skips to 2.
	// 2 reads local 0, so one incoming path lacks the write.
	g := graph(1, 0,
		ins(opSleep, 1, 2),
		ins(opExpression, 2, bhav.ExitError, 0, 0),
		ins(opExpression, bhav.ExitReturnTrue, bhav.ExitError, 0, 0),
	)
	diags := filterCategory(New(primitives.Default()).Validate(g), "scope")
	positions := make(map[int]bool)
	for _, d := range diags {
		if d.Severity == bhav.SeverityWarning {
			positions[d.Position] = true
		}
	}
	assert.True(t, positions[2], "merge point read must warn")
}

func TestControlFlowOutOfBounds(t *testing.T) {
	g := graph(0, 0, ins(opSleep, 200, bhav.ExitReturnTrue))
	v := New(primitives.Default())
	diags := filterCategory(v.Validate(g), "control-flow")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityError, diags[0].Severity)
	assert.False(t, v.IsValid(g))
}

func TestPointlessBranchWarning(t *testing.T) {
	g := graph(0, 0,
		ins(opSleep, 1, 1),
		ins(opSleep, bhav.ExitReturnTrue, bhav.ExitError),
	)
	diags := filterCategory(New(primitives.Default()).Validate(g), "logic")
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityWarning, diags[0].Severity)
	assert.Equal(t, 0, diags[0].Position)
}

func TestIsValidIgnoresWarnings(t *testing.T) {
	g := graph(0, 0, ins(opSleep, 1, 1), ins(opSleep, bhav.ExitReturnTrue, bhav.ExitReturnTrue))
	v := New(primitives.Default())
	assert.True(t, v.IsValid(g), "warnings alone must not invalidate")
}

func TestEmptyGraphIsValid(t *testing.T) {
	g := graph(0, 0)
	assert.True(t, New(primitives.Default()).IsValid(g))
}
