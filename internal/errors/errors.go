// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrDecodeFailed    = errors.New("instruction buffer decode failed")
	ErrIndexOutOfRange = errors.New("instruction index out of range")
	ErrBadPermutation  = errors.New("reorder sequence is not a permutation")
	ErrUnknownGraph    = errors.New("graph not present in package")
	ErrTableVersion    = errors.New("unsupported primitive table version")
	ErrTableLoad       = errors.New("failed to load primitive table")
	ErrManifestInvalid = errors.New("invalid package manifest")
	ErrStoreFailed     = errors.New("report store operation failed")
)

// Wrap functions for consistent error wrapping
func WrapDecodeFailed(msg string) error {
	return fmt.Errorf("%w: %s", ErrDecodeFailed, msg)
}

func WrapIndexOutOfRange(index, length int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, length)
}

func WrapBadPermutation(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadPermutation, msg)
}

func WrapUnknownGraph(id uint16) error {
	return fmt.Errorf("%w: 0x%04X", ErrUnknownGraph, id)
}

func WrapTableVersion(got, want string) error {
	return fmt.Errorf("%w: table declares %s, this build supports %s", ErrTableVersion, got, want)
}

func WrapTableLoad(err error) error {
	return fmt.Errorf("%w: %w", ErrTableLoad, err)
}

func WrapManifestInvalid(err error) error {
	return fmt.Errorf("%w: %w", ErrManifestInvalid, err)
}

func WrapStoreFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFailed, err)
}
