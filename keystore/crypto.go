// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"

	"github.com/satwallet/satwallet/internal/zero"
)

const (
	// saltSize is the number of bytes of the random salt prepended to
	// every encrypted container.
	saltSize = 16

	// nonceSize is the secretbox nonce size.
	nonceSize = 24

	// keySize is the derived symmetric key size.
	keySize = 32

	// kdfIterations is the PBKDF2 iteration count.  Deliberately slow so
	// offline password guessing against a stolen container is expensive.
	kdfIterations = 100000
)

// ErrDecryptionFailure is returned for every failure to decrypt a container:
// wrong password, truncation, corruption, or tampering detected by the
// authentication tag.  The cause is intentionally not distinguished, so an
// attacker guessing passwords learns nothing from the error.
var ErrDecryptionFailure = errors.New("unable to decrypt: wrong password or corrupted container")

// Encrypt derives a symmetric key from password using PBKDF2-SHA256 with a
// freshly generated random salt, then seals data with authenticated
// encryption.  The output layout is salt ‖ nonce ‖ box; the salt is
// regenerated on every call and never reused across containers, so two
// encryptions of identical data under the same password produce unrelated
// ciphertexts.
func Encrypt(data, password []byte) ([]byte, error) {
	var salt [saltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	var key [keySize]byte
	deriveKey(password, salt[:], &key)
	defer zero.Bytea32(&key)

	blob := make([]byte, 0, saltSize+nonceSize+len(data)+secretbox.Overhead)
	blob = append(blob, salt[:]...)
	blob = append(blob, nonce[:]...)
	blob = secretbox.Seal(blob, data, &nonce, &key)
	return blob, nil
}

// Decrypt splits the leading salt from the container, re-derives the
// symmetric key from password and that salt, and attempts authenticated
// decryption.  All failures are reported uniformly as ErrDecryptionFailure.
func Decrypt(blob, password []byte) ([]byte, error) {
	// A sealed empty message is exactly salt+nonce+overhead bytes, and its
	// authentication tag still verifies, so only shorter containers are
	// structurally invalid.
	if len(blob) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrDecryptionFailure
	}

	var salt [saltSize]byte
	copy(salt[:], blob[:saltSize])
	var nonce [nonceSize]byte
	copy(nonce[:], blob[saltSize:saltSize+nonceSize])

	var key [keySize]byte
	deriveKey(password, salt[:], &key)
	defer zero.Bytea32(&key)

	data, ok := secretbox.Open(nil, blob[saltSize+nonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrDecryptionFailure
	}
	return data, nil
}

// deriveKey fills key with the PBKDF2-SHA256 derivation of password and
// salt.  The intermediate slice is wiped before returning.
func deriveKey(password, salt []byte, key *[keySize]byte) {
	derived := pbkdf2.Key(password, salt, kdfIterations, keySize, sha256.New)
	copy(key[:], derived)
	zero.Bytes(derived)
}
