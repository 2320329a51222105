// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package primitives is the opcode metadata collaborator: it maps a
// 16-bit opcode to the name, category, stack delta, operand schema,
// and call classification the validator, tracer, and call-graph
// builder need. The core never embeds a hard-coded opcode table;
// consumers depend on the Lookup interface and receive a Registry at
// construction.
package primitives

import "fmt"

// CallKind classifies how a call-type primitive transfers control to
// another behavior graph.
type CallKind string

const (
	CallSubroutine  CallKind = "subroutine"
	CallCallback    CallKind = "callback"
	CallInteraction CallKind = "interaction"
	CallAutonomous  CallKind = "autonomous"
)

// VarKind names the variable space an operand field references.
type VarKind string

const (
	VarLocal VarKind = "local"
	VarArg   VarKind = "arg"
)

// Access marks whether a variable operand field reads or writes.
type Access string

const (
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

// OperandField declares the meaning of one byte of an instruction's
// 8-byte operand. Offsets not covered by any field are expected to be
// zero; the validator reports non-zero stray bytes as a shape warning.
type OperandField struct {
	Name   string  `json:"name"`
	Offset int     `json:"offset"`
	Var    VarKind `json:"var,omitempty"`
	Access Access  `json:"access,omitempty"`
}

// Primitive is the metadata record for one opcode.
type Primitive struct {
	Opcode     uint16         `json:"opcode"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	StackDelta int            `json:"stack_delta"`
	Operands   []OperandField `json:"operands,omitempty"`
	CallKind   CallKind       `json:"call_kind,omitempty"`
	// Expensive marks primitives that dominate simulation cost
	// (object creation, fund transfers). The analyzer flags these
	// inside loop spans.
	Expensive bool `json:"expensive,omitempty"`
}

// IsCall reports whether the primitive transfers control to another
// behavior graph.
func (p Primitive) IsCall() bool {
	return p.CallKind != ""
}

// Unknown builds the first-class value returned for opcodes absent
// from the table. Unknown opcodes are data, never an error.
func Unknown(opcode uint16) Primitive {
	return Primitive{
		Opcode:   opcode,
		Name:     fmt.Sprintf("unknown-0x%04X", opcode),
		Category: "unknown",
	}
}

// Lookup is the read-only capability the core depends on. The second
// return reports whether the opcode resolved; callers still receive a
// usable Unknown value when it did not.
type Lookup interface {
	Lookup(opcode uint16) (Primitive, bool)
}
