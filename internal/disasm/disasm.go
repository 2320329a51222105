// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package disasm renders behavior graphs as human-readable listings
// for the CLI and for forensic reports.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/primitives"
)

var (
	posStyle      = color.New(color.FgHiBlack)
	nameStyle     = color.New(color.FgCyan)
	callStyle     = color.New(color.FgYellow)
	unknownStyle  = color.New(color.FgRed)
	sentinelStyle = color.New(color.FgMagenta)
)

// Printer writes listings for graphs against one primitive table.
type Printer struct {
	lookup primitives.Lookup
	// NoColor disables ANSI styling, for piped output and reports.
	NoColor bool
}

// New builds a printer over the given opcode metadata.
func New(lookup primitives.Lookup) *Printer {
	return &Printer{lookup: lookup}
}

// Print writes the full listing of a graph.
func (p *Printer) Print(w io.Writer, g *bhav.BehaviorGraph) {
	header := fmt.Sprintf("; graph 0x%04X %q  locals=%d args=%d  %d instruction(s)",
		g.ID, g.Name, g.LocalCount, g.ArgCount, g.Len())
	fmt.Fprintln(w, header)
	for _, in := range g.Instructions {
		fmt.Fprintln(w, p.Line(in))
	}
}

// Line renders one instruction.
func (p *Printer) Line(in bhav.Instruction) string {
	prim, known := p.lookup.Lookup(in.Opcode)

	name := prim.Name
	switch {
	case !known:
		name = p.paint(unknownStyle, name)
	case prim.IsCall():
		name = p.paint(callStyle, fmt.Sprintf("%s -> 0x%04X", prim.Name, in.CalleeID()))
	default:
		name = p.paint(nameStyle, name)
	}

	return fmt.Sprintf("%s  %-40s true=%s false=%s  %s",
		p.paint(posStyle, fmt.Sprintf("%4d", in.Position)),
		name,
		p.exit(in.TrueExit),
		p.exit(in.FalseExit),
		operandHex(in.Operand))
}

func (p *Printer) exit(exit uint8) string {
	if bhav.IsSentinel(exit) {
		return p.paint(sentinelStyle, bhav.ExitName(exit))
	}
	return bhav.ExitName(exit)
}

func (p *Printer) paint(c *color.Color, s string) string {
	if p.NoColor {
		return s
	}
	return c.Sprint(s)
}

func operandHex(operand [bhav.OperandSize]byte) string {
	var b strings.Builder
	for i, v := range operand {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", v)
	}
	return b.String()
}
