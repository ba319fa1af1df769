// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zero contains functions to clear sensitive data from memory.
package zero

// Bytes sets all bytes in the passed slice to zero.  This is used to
// explicitly clear private key material and passphrases from memory as soon
// as they are no longer needed.
func Bytes(b []byte) {
	z := [32]byte{}
	n := uint(copy(b, z[:]))
	for n < uint(len(b)) {
		copy(b[n:], b[:n])
		n <<= 1
	}
}

// Bytea32 clears the 32-byte array by filling it with the zero value.  This
// is used to explicitly clear derived symmetric keys from memory.
func Bytea32(b *[32]byte) {
	*b = [32]byte{}
}
