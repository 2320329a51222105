// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package rewire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/errors"
)

// =============================================================================
// Test graph builder
// =============================================================================

func ins(opcode uint16, trueExit, falseExit uint8) bhav.Instruction {
	return bhav.Instruction{Opcode: opcode, TrueExit: trueExit, FalseExit: falseExit}
}

// chain builds 0 -> 1 -> 2 -> ... -> RETURN_TRUE with ERROR false
// exits, the straight-line shape most real BHAVs use.
func chain(n int) *bhav.BehaviorGraph {
	g := &bhav.BehaviorGraph{ID: 0x1000}
	for i := 0; i < n; i++ {
		trueExit := uint8(i + 1)
		if i == n-1 {
			trueExit = bhav.ExitReturnTrue
		}
		g.Instructions = append(g.Instructions, ins(uint16(i), trueExit, bhav.ExitError))
	}
	g.Renumber()
	return g
}

func exits(g *bhav.BehaviorGraph) [][2]uint8 {
	out := make([][2]uint8, g.Len())
	for i, in := range g.Instructions {
		out[i] = [2]uint8{in.TrueExit, in.FalseExit}
	}
	return out
}

// =============================================================================
// Insert
// =============================================================================

func TestInsertShiftsLaterPointers(t *testing.T) {
	g := chain(3)
	e := New(g)

	result, err := e.Insert(1, []bhav.Instruction{ins(0x99, 2, bhav.ExitError)})
	require.NoError(t, err)

	require.Equal(t, 4, g.Len())
	// Old instruction 0 pointed at 1, which moved to 2.
	assert.Equal(t, uint8(2), g.Instructions[0].TrueExit)
	// The new instruction keeps its exits verbatim.
	assert.Equal(t, uint8(2), g.Instructions[1].TrueExit)
	// Old instruction 1 (now 2) pointed at 2, which moved to 3.
	assert.Equal(t, uint8(3), g.Instructions[2].TrueExit)
	assert.NotEmpty(t, result.Log)
	assert.Empty(t, e.Validate())
}

func TestInsertCountAndSentinels(t *testing.T) {
	for _, at := range []int{0, 1, 2, 3} {
		g := chain(3)
		e := New(g)

		_, err := e.Insert(at, []bhav.Instruction{
			ins(0x90, bhav.ExitReturnTrue, bhav.ExitError),
			ins(0x91, bhav.ExitReturnFalse, bhav.ExitError),
		})
		require.NoError(t, err)
		assert.Equal(t, 5, g.Len(), "at=%d", at)

		// Every sentinel exit of the pre-image survives unchanged.
		for _, in := range g.Instructions {
			if bhav.IsSentinel(in.FalseExit) {
				assert.Equal(t, bhav.ExitError, in.FalseExit)
			}
		}
		for i, in := range g.Instructions {
			assert.Equal(t, i, in.Position)
		}
		assert.Empty(t, e.Validate())
	}
}

func TestInsertEmptySliceIsNoop(t *testing.T) {
	g := chain(2)
	before := exits(g)
	_, err := New(g).Insert(1, nil)
	require.NoError(t, err)
	assert.Equal(t, before, exits(g))
}

func TestInsertOutOfRangeFailsWithoutMutation(t *testing.T) {
	g := chain(3)
	before := exits(g)
	e := New(g)

	for _, at := range []int{-1, 4, 100} {
		_, err := e.Insert(at, []bhav.Instruction{ins(1, bhav.ExitReturnTrue, bhav.ExitError)})
		require.Error(t, err, "at=%d", at)
		assert.ErrorIs(t, err, errors.ErrIndexOutOfRange)
		assert.Equal(t, before, exits(g))
	}
}

func TestInsertRefusesGrowthPastAddressableRange(t *testing.T) {
	// 253 instructions is the largest fully addressable graph: exit
	// values 253-255 are sentinels. Growing it would shift instruction
	// 251's pointer at 252 into sentinel territory.
	g := chain(253)
	before := exits(g)
	e := New(g)

	_, err := e.Insert(0, []bhav.Instruction{ins(0x99, bhav.ExitReturnTrue, bhav.ExitError)})
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)

	assert.Equal(t, 253, g.Len())
	assert.Equal(t, before, exits(g))
	assert.Equal(t, uint8(252), g.Instructions[251].TrueExit)
	assert.False(t, bhav.IsSentinel(g.Instructions[251].TrueExit))

	// Appending past the cap is refused too, even though nothing
	// shifts: the new instruction itself would sit at position 253.
	_, err = e.Insert(253, []bhav.Instruction{ins(0x99, bhav.ExitReturnTrue, bhav.ExitError)})
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
	assert.Equal(t, 253, g.Len())
}

func TestInsertAllowedUpToAddressableRange(t *testing.T) {
	g := chain(252)
	e := New(g)

	_, err := e.Insert(252, []bhav.Instruction{ins(0x99, bhav.ExitReturnTrue, bhav.ExitError)})
	require.NoError(t, err)
	assert.Equal(t, 253, g.Len())
	assert.Empty(t, e.Validate())
}

// =============================================================================
// Delete
// =============================================================================

func TestDeleteCompactsAndRepairsPointers(t *testing.T) {
	g := chain(4)
	e := New(g)

	result, err := e.Delete([]int{1})
	require.NoError(t, err)

	require.Equal(t, 3, g.Len())
	// 0 pointed at deleted 1: becomes ERROR with a warning.
	assert.Equal(t, bhav.ExitError, g.Instructions[0].TrueExit)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "deleted instruction 1")
	// 2 (now 1) pointed at 3, which compacted to 2.
	assert.Equal(t, uint8(2), g.Instructions[1].TrueExit)
	assert.Empty(t, e.Validate())
}

func TestDeleteNeverLeavesDanglingReferences(t *testing.T) {
	g := chain(6)
	e := New(g)

	_, err := e.Delete([]int{0, 2, 5})
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	for _, in := range g.Instructions {
		assert.True(t, g.InBounds(in.TrueExit), "true exit of %d", in.Position)
		assert.True(t, g.InBounds(in.FalseExit), "false exit of %d", in.Position)
	}
	assert.Empty(t, e.Validate())
}

func TestDeleteDuplicateIndices(t *testing.T) {
	g := chain(3)
	_, err := New(g).Delete([]int{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestDeleteOutOfRangeFailsWithoutMutation(t *testing.T) {
	g := chain(3)
	before := exits(g)

	_, err := New(g).Delete([]int{0, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIndexOutOfRange)
	assert.Equal(t, before, exits(g))
	assert.Equal(t, 3, g.Len())
}

// =============================================================================
// Move
// =============================================================================

func TestMoveForwardShiftsBetween(t *testing.T) {
	g := chain(4)
	e := New(g)

	_, err := e.Move(0, 2)
	require.NoError(t, err)

	// Old order 0,1,2,3 becomes 1,2,0,3.
	assert.Equal(t, uint16(1), g.Instructions[0].Opcode)
	assert.Equal(t, uint16(2), g.Instructions[1].Opcode)
	assert.Equal(t, uint16(0), g.Instructions[2].Opcode)
	assert.Equal(t, uint16(3), g.Instructions[3].Opcode)

	// Old 0 pointed at old 1, now at position 0.
	assert.Equal(t, uint8(0), g.Instructions[2].TrueExit)
	assert.Empty(t, e.Validate())
}

func TestMoveBackward(t *testing.T) {
	g := chain(4)
	e := New(g)

	_, err := e.Move(3, 1)
	require.NoError(t, err)

	assert.Equal(t, uint16(0), g.Instructions[0].Opcode)
	assert.Equal(t, uint16(3), g.Instructions[1].Opcode)
	assert.Equal(t, uint16(1), g.Instructions[2].Opcode)
	assert.Equal(t, uint16(2), g.Instructions[3].Opcode)
	assert.Empty(t, e.Validate())
}

func TestMoveSamePositionIsNoop(t *testing.T) {
	g := chain(3)
	before := exits(g)

	result, err := New(g).Move(1, 1)
	require.NoError(t, err)
	assert.Equal(t, before, exits(g))
	assert.Empty(t, result.Log)
}

func TestMoveOutOfRange(t *testing.T) {
	g := chain(3)
	before := exits(g)

	for _, pair := range [][2]int{{-1, 0}, {0, 3}, {5, 1}} {
		_, err := New(g).Move(pair[0], pair[1])
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIndexOutOfRange)
		assert.Equal(t, before, exits(g))
	}
}

func TestMoveRefusesUnaddressableDestination(t *testing.T) {
	// Decode accepts buffers longer than 253 records; the tail is
	// simply unreachable. Moving a pointed-at instruction into that
	// tail would wrap its byte-sized references.
	g := &bhav.BehaviorGraph{ID: 0x1000}
	for i := 0; i < 260; i++ {
		g.Instructions = append(g.Instructions, ins(uint16(i), bhav.ExitReturnTrue, bhav.ExitError))
	}
	g.Instructions[0].TrueExit = 5
	g.Renumber()
	before := exits(g)

	_, err := New(g).Move(5, 258)
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
	assert.Equal(t, before, exits(g))
}

// =============================================================================
// Reorder
// =============================================================================

func TestReorderIdentityIsNoop(t *testing.T) {
	g := chain(4)
	before := exits(g)

	result, err := New(g).Reorder([]int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, before, exits(g))
	assert.Empty(t, result.Log)
}

func TestReorderReverse(t *testing.T) {
	g := chain(3)
	e := New(g)

	_, err := e.Reorder([]int{2, 1, 0})
	require.NoError(t, err)

	assert.Equal(t, uint16(2), g.Instructions[0].Opcode)
	assert.Equal(t, uint16(1), g.Instructions[1].Opcode)
	assert.Equal(t, uint16(0), g.Instructions[2].Opcode)

	// Old 0 (now 2) pointed at old 1, now position 1.
	assert.Equal(t, uint8(1), g.Instructions[2].TrueExit)
	// Old 1 (now 1) pointed at old 2, now position 0.
	assert.Equal(t, uint8(0), g.Instructions[1].TrueExit)
	assert.Empty(t, e.Validate())
}

func TestReorderMalformedPermutations(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{"wrong length", []int{0, 1}},
		{"duplicate index", []int{0, 1, 1}},
		{"missing index", []int{0, 1, 3}},
		{"negative index", []int{0, 1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(3)
			before := exits(g)

			_, err := New(g).Reorder(tt.order)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrBadPermutation)
			assert.Equal(t, before, exits(g))
		})
	}
}

// =============================================================================
// Snapshot / reset / audit
// =============================================================================

func TestResetRestoresSnapshot(t *testing.T) {
	g := chain(3)
	original := exits(g)
	e := New(g)

	_, err := e.Delete([]int{0, 1})
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())

	e.Reset()
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, original, exits(g))
}

func TestSnapshotSurvivesEdits(t *testing.T) {
	g := chain(2)
	e := New(g)
	_, err := e.Insert(0, []bhav.Instruction{ins(9, bhav.ExitReturnTrue, bhav.ExitError)})
	require.NoError(t, err)
	assert.Equal(t, 2, e.Snapshot().Len())
}

func TestAuditLogRecordsChangedPointers(t *testing.T) {
	g := chain(3)
	result, err := New(g).Insert(0, []bhav.Instruction{ins(9, 1, bhav.ExitError)})
	require.NoError(t, err)

	// Pointers of instructions 0 and 1 both shifted.
	require.Len(t, result.Log, 2)
	assert.Contains(t, result.Log[0], "true exit 1 -> 2")
	assert.Contains(t, result.Operation, "insert 1 instruction(s) at 0")
}

func TestValidateReportsDanglingExits(t *testing.T) {
	g := &bhav.BehaviorGraph{Instructions: []bhav.Instruction{
		ins(0, 5, bhav.ExitReturnTrue),
	}}
	g.Renumber()

	diags := New(g).Validate()
	require.Len(t, diags, 1)
	assert.Equal(t, bhav.SeverityError, diags[0].Severity)
	assert.Equal(t, "control-flow", diags[0].Category)
}
