// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package bhav

import (
	"encoding/binary"
	"fmt"

	"github.com/dotandev/simantix/internal/errors"
)

// Decode materializes a behavior graph from a flat buffer of 12-byte
// instruction records: opcode u16 little-endian, true exit u8, false
// exit u8, 8 operand bytes. There is no terminator; the record count
// is len(raw)/12.
//
// A buffer whose length is not a multiple of the record size fails
// fast and produces no partial graph.
func Decode(raw []byte, id uint16) (*BehaviorGraph, error) {
	if len(raw)%InstructionSize != 0 {
		return nil, errors.WrapDecodeFailed(
			fmt.Sprintf("buffer length %d is not a multiple of %d", len(raw), InstructionSize))
	}

	count := len(raw) / InstructionSize
	g := &BehaviorGraph{
		ID:           id,
		Instructions: make([]Instruction, count),
	}
	for i := 0; i < count; i++ {
		rec := raw[i*InstructionSize : (i+1)*InstructionSize]
		in := Instruction{
			Position:  i,
			Opcode:    binary.LittleEndian.Uint16(rec[0:2]),
			TrueExit:  rec[2],
			FalseExit: rec[3],
		}
		copy(in.Operand[:], rec[4:12])
		g.Instructions[i] = in
	}
	return g, nil
}

// Encode serializes the graph back to the flat record layout Decode
// consumes. Positions are ignored; the wire order is the sequence
// order.
func Encode(g *BehaviorGraph) []byte {
	out := make([]byte, 0, len(g.Instructions)*InstructionSize)
	var rec [InstructionSize]byte
	for _, in := range g.Instructions {
		binary.LittleEndian.PutUint16(rec[0:2], in.Opcode)
		rec[2] = in.TrueExit
		rec[3] = in.FalseExit
		copy(rec[4:12], in.Operand[:])
		out = append(out, rec[:]...)
	}
	return out
}
