// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package primitives

import (
	_ "embed"
	"encoding/json"
	"os"

	goversion "github.com/hashicorp/go-version"

	"github.com/dotandev/simantix/internal/errors"
)

//go:embed table.json
var defaultTable []byte

// supportedTables is the schema version range this build understands.
// Tables outside the range are rejected rather than misread.
const supportedTables = ">= 1.0.0, < 2.0.0"

type tableFile struct {
	SchemaVersion string      `json:"schema_version"`
	Primitives    []Primitive `json:"primitives"`
}

// Registry is the standard Lookup implementation: an immutable opcode
// table loaded once at construction. No process-wide state; every
// consumer receives its own reference.
type Registry struct {
	byOpcode map[uint16]Primitive
}

var _ Lookup = (*Registry)(nil)

// Default returns a registry backed by the embedded primitive table.
func Default() *Registry {
	reg, err := parseTable(defaultTable)
	if err != nil {
		// The embedded table ships with the binary; failing to parse
		// it is a build defect, not a runtime condition.
		panic(err)
	}
	return reg
}

// LoadFile reads a primitive table from disk, layered over the
// embedded defaults. Entries in the file win on opcode collision, so
// modders can correct or extend the shipped metadata.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapTableLoad(err)
	}
	override, err := parseTable(raw)
	if err != nil {
		return nil, err
	}

	reg := Default()
	for op, p := range override.byOpcode {
		reg.byOpcode[op] = p
	}
	return reg, nil
}

func parseTable(raw []byte) (*Registry, error) {
	var tf tableFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, errors.WrapTableLoad(err)
	}

	ver, err := goversion.NewVersion(tf.SchemaVersion)
	if err != nil {
		return nil, errors.WrapTableLoad(err)
	}
	constraint, err := goversion.NewConstraint(supportedTables)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(ver) {
		return nil, errors.WrapTableVersion(tf.SchemaVersion, supportedTables)
	}

	reg := &Registry{byOpcode: make(map[uint16]Primitive, len(tf.Primitives))}
	for _, p := range tf.Primitives {
		reg.byOpcode[p.Opcode] = p
	}
	return reg, nil
}

// Lookup resolves an opcode. Unresolved opcodes return a usable
// Unknown value with ok=false.
func (r *Registry) Lookup(opcode uint16) (Primitive, bool) {
	if p, ok := r.byOpcode[opcode]; ok {
		return p, true
	}
	return Unknown(opcode), false
}

// Len returns the number of table entries, for doctor-style reporting.
func (r *Registry) Len() int {
	return len(r.byOpcode)
}
