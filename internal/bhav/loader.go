// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package bhav

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotandev/simantix/internal/errors"
)

// ManifestEntry describes one behavior program in a package manifest.
// The raw instruction buffer lives in File (relative to the manifest
// directory); the counts and entry-point flag are container metadata
// the wire format itself does not carry.
type ManifestEntry struct {
	ID         uint16 `json:"id"`
	Name       string `json:"name"`
	File       string `json:"file"`
	LocalCount uint8  `json:"locals"`
	ArgCount   uint8  `json:"args"`
	EntryPoint bool   `json:"entry_point,omitempty"`
}

// Manifest is the package.json sidecar listing every graph in an
// extracted package directory.
type Manifest struct {
	Package string          `json:"package"`
	Graphs  []ManifestEntry `json:"graphs"`
}

// LoadPackage reads an extracted package directory: a package.json
// manifest plus one .bhav file of raw instruction records per graph.
// This is the minimal stand-in for the container collaborator; all
// byte-level I/O in this module happens here, at the edge.
func LoadPackage(dir string) (Package, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, errors.WrapManifestInvalid(err)
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.WrapManifestInvalid(err)
	}

	pkg := make(Package, len(manifest.Graphs))
	for _, entry := range manifest.Graphs {
		if _, dup := pkg[entry.ID]; dup {
			return nil, errors.WrapManifestInvalid(
				fmt.Errorf("duplicate graph id 0x%04X", entry.ID))
		}
		buf, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			return nil, errors.WrapManifestInvalid(err)
		}
		g, err := Decode(buf, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("graph 0x%04X (%s): %w", entry.ID, entry.Name, err)
		}
		g.Name = entry.Name
		g.LocalCount = entry.LocalCount
		g.ArgCount = entry.ArgCount
		g.EntryPoint = entry.EntryPoint
		pkg[entry.ID] = g
	}
	return pkg, nil
}

// LoadGraph reads a single .bhav file without a manifest. The caller
// supplies the counts the container would normally provide.
func LoadGraph(path string, id uint16, locals, args uint8) (*BehaviorGraph, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Decode(buf, id)
	if err != nil {
		return nil, err
	}
	g.Name = filepath.Base(path)
	g.LocalCount = locals
	g.ArgCount = args
	return g, nil
}
