// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zero

import (
	"bytes"
	"testing"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 31, 32, 33, 127, 1000} {
		b := make([]byte, n)
		for i := range b {
			b[i] = 0xff
		}
		Bytes(b)
		if !bytes.Equal(b, make([]byte, n)) {
			t.Errorf("slice of length %d not zeroed", n)
		}
	}
}

func TestBytea32(t *testing.T) {
	t.Parallel()

	var b [32]byte
	for i := range b {
		b[i] = 0xff
	}
	Bytea32(&b)
	if b != [32]byte{} {
		t.Error("array not zeroed")
	}
}
