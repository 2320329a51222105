// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{WrapDecodeFailed("short buffer"), ErrDecodeFailed},
		{WrapIndexOutOfRange(7, 4), ErrIndexOutOfRange},
		{WrapBadPermutation("index 2 appears twice"), ErrBadPermutation},
		{WrapUnknownGraph(0x1001), ErrUnknownGraph},
		{WrapTableVersion("3.0.0", ">= 1.0.0, < 2.0.0"), ErrTableVersion},
		{WrapTableLoad(errors.New("no such file")), ErrTableLoad},
		{WrapManifestInvalid(errors.New("duplicate id")), ErrManifestInvalid},
		{WrapStoreFailed(errors.New("disk full")), ErrStoreFailed},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.sentinel)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapTableLoad(cause)
	assert.ErrorIs(t, err, cause)
}

func TestWrapDetailInMessage(t *testing.T) {
	assert.Contains(t, WrapIndexOutOfRange(7, 4).Error(), "7 not in [0, 4)")
	assert.Contains(t, WrapUnknownGraph(0x1001).Error(), "0x1001")

	wrapped := fmt.Errorf("graph 0x2000: %w", WrapDecodeFailed("length 13"))
	assert.ErrorIs(t, wrapped, ErrDecodeFailed)
}
