// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package bhav defines the in-memory model for SimAntics behavior
// programs: instructions, behavior graphs, diagnostics, and the
// fixed-width wire codec. Every other package in this module reads
// or writes these types; none of them touch disk containers.
package bhav

import (
	"encoding/binary"
	"fmt"
)

// Reserved successor sentinels. A sentinel terminates execution
// instead of continuing to another instruction. Sentinels are opaque:
// no transform in this module ever remaps or dereferences one.
const (
	ExitError       uint8 = 253
	ExitReturnTrue  uint8 = 254
	ExitReturnFalse uint8 = 255
)

// IsSentinel reports whether exit is one of the three reserved
// terminal successor values.
func IsSentinel(exit uint8) bool {
	return exit >= ExitError
}

// ExitName renders an exit reference for logs and listings.
func ExitName(exit uint8) string {
	switch exit {
	case ExitError:
		return "ERROR"
	case ExitReturnTrue:
		return "RETURN_TRUE"
	case ExitReturnFalse:
		return "RETURN_FALSE"
	default:
		return fmt.Sprintf("%d", exit)
	}
}

// OperandSize is the fixed operand payload width in bytes.
const OperandSize = 8

// InstructionSize is the wire width of one instruction record.
const InstructionSize = 12

// Instruction is a single node of a behavior graph. Position is
// derived state: it always equals the instruction's index in the
// owning graph's sequence and is recomputed after every structural
// change.
type Instruction struct {
	Position  int
	Opcode    uint16
	TrueExit  uint8
	FalseExit uint8
	Operand   [OperandSize]byte
}

// CalleeID extracts the target graph id a call-type instruction
// encodes in its operand. Only meaningful when the opcode's primitive
// metadata marks it as a call.
func (in Instruction) CalleeID() uint16 {
	return binary.LittleEndian.Uint16(in.Operand[0:2])
}

// Conditional reports whether the instruction can actually branch:
// its two exits disagree.
func (in Instruction) Conditional() bool {
	return in.TrueExit != in.FalseExit
}

func (in Instruction) String() string {
	return fmt.Sprintf("[%d] op=0x%04X true=%s false=%s",
		in.Position, in.Opcode, ExitName(in.TrueExit), ExitName(in.FalseExit))
}
