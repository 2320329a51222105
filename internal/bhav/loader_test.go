// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package bhav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simantix/internal/errors"
)

func writePackage(t *testing.T, manifest string, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
	for name, raw := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
	}
	return dir
}

func TestLoadPackage(t *testing.T) {
	manifest := `{
		"package": "test",
		"graphs": [
			{"id": 4096, "name": "main", "file": "main.bhav", "locals": 2, "args": 1, "entry_point": true},
			{"id": 4097, "name": "helper", "file": "helper.bhav"}
		]
	}`
	dir := writePackage(t, manifest, map[string][]byte{
		"main.bhav":   record(0x0000, ExitReturnTrue, ExitError),
		"helper.bhav": {},
	})

	pkg, err := LoadPackage(dir)
	require.NoError(t, err)
	require.Len(t, pkg, 2)

	main := pkg[4096]
	require.NotNil(t, main)
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, uint8(2), main.LocalCount)
	assert.Equal(t, uint8(1), main.ArgCount)
	assert.True(t, main.EntryPoint)
	assert.Equal(t, 1, main.Len())

	helper := pkg[4097]
	require.NotNil(t, helper)
	assert.Equal(t, 0, helper.Len())
	assert.False(t, helper.EntryPoint)
}

func TestLoadPackageRejectsDuplicateIDs(t *testing.T) {
	manifest := `{"graphs": [
		{"id": 1, "name": "a", "file": "a.bhav"},
		{"id": 1, "name": "b", "file": "a.bhav"}
	]}`
	dir := writePackage(t, manifest, map[string][]byte{"a.bhav": {}})

	_, err := LoadPackage(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrManifestInvalid)
}

func TestLoadPackageMissingManifest(t *testing.T) {
	_, err := LoadPackage(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrManifestInvalid)
}

func TestLoadPackagePropagatesDecodeFailure(t *testing.T) {
	manifest := `{"graphs": [{"id": 1, "name": "bad", "file": "bad.bhav"}]}`
	dir := writePackage(t, manifest, map[string][]byte{"bad.bhav": {1, 2, 3}})

	_, err := LoadPackage(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDecodeFailed)
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.bhav")
	require.NoError(t, os.WriteFile(path, record(0x0002, 0, ExitReturnFalse), 0o644))

	g, err := LoadGraph(path, 0x2000, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2000), g.ID)
	assert.Equal(t, uint8(3), g.LocalCount)
	assert.Equal(t, uint8(2), g.ArgCount)
	assert.Equal(t, "tree.bhav", g.Name)
}
