// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package rewire

import (
	"fmt"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/errors"
)

// removed marks an old index whose instruction no longer exists after
// the edit. Exits resolving to a removed index become the ERROR
// sentinel.
const removed = -1

// remap is a total function from old instruction index to new index
// (or removed), built once per operation and applied in a single
// pass. Sentinels are never keys; they always map to themselves.
type remap map[int]int

// checkAddressable rejects a remap that would move a referencable
// instruction to a position at or above ExitError. Exits are single
// bytes with 253-255 reserved, so such an image would masquerade as a
// sentinel when written back into an exit.
func (m remap) checkAddressable() error {
	for old, target := range m {
		if old >= int(bhav.ExitError) {
			continue
		}
		if target != removed && target >= int(bhav.ExitError) {
			return errors.WrapIndexOutOfRange(target, int(bhav.ExitError))
		}
	}
	return nil
}

// identity builds the self-map over [0, n).
func identity(n int) remap {
	m := make(remap, n)
	for i := 0; i < n; i++ {
		m[i] = i
	}
	return m
}

// applyExits rewrites both exits of every instruction through the
// map. Sentinel exits are copied verbatim. Returns one audit line per
// changed pointer and one warning per pointer that resolved to a
// removed instruction.
func (m remap) applyExits(instructions []bhav.Instruction) (log, warnings []string) {
	for i := range instructions {
		in := &instructions[i]
		if line, warn := m.applyOne(in.Position, "true", &in.TrueExit); line != "" {
			log = append(log, line)
			if warn != "" {
				warnings = append(warnings, warn)
			}
		}
		if line, warn := m.applyOne(in.Position, "false", &in.FalseExit); line != "" {
			log = append(log, line)
			if warn != "" {
				warnings = append(warnings, warn)
			}
		}
	}
	return log, warnings
}

func (m remap) applyOne(pos int, which string, exit *uint8) (line, warn string) {
	if bhav.IsSentinel(*exit) {
		return "", ""
	}
	target, ok := m[int(*exit)]
	if !ok {
		// Exits outside the map were already dangling before the
		// edit; leave them for validate() to report.
		return "", ""
	}
	if target == removed {
		old := *exit
		*exit = bhav.ExitError
		line = fmt.Sprintf("instruction %d: %s exit %d -> ERROR", pos, which, old)
		warn = fmt.Sprintf("instruction %d: pointer to deleted instruction %d became ERROR", pos, old)
		return line, warn
	}
	if int(*exit) != target {
		line = fmt.Sprintf("instruction %d: %s exit %d -> %d", pos, which, *exit, target)
		*exit = uint8(target)
	}
	return line, ""
}
