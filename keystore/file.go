// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"fmt"
	"os"

	"github.com/satwallet/satwallet/internal/zero"
)

// FileNotFoundError describes a missing key file.  It is reported before any
// decryption is attempted, so a missing file is never confused with a wrong
// password.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("key file %s does not exist", e.Path)
}

// SaveToFile encrypts the key material under password and writes the
// container to path with owner-only permissions.  The plaintext serialization
// is wiped before returning.
func (k *KeyMaterial) SaveToFile(path string, password []byte) error {
	plaintext, err := k.Serialize()
	if err != nil {
		return err
	}
	defer zero.Bytes(plaintext)

	blob, err := Encrypt(plaintext, password)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, blob, 0600); err != nil {
		return err
	}

	log.Infof("Encrypted key for address %s saved to %s", k.Address, path)
	return nil
}

// LoadFromFile reads an encrypted container from path and decrypts it under
// password.  A missing file is reported as *FileNotFoundError; any decryption
// failure as ErrDecryptionFailure.
func LoadFromFile(path string, password []byte) (*KeyMaterial, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, err
	}

	plaintext, err := Decrypt(blob, password)
	if err != nil {
		return nil, err
	}
	defer zero.Bytes(plaintext)

	return DeserializeKeyMaterial(plaintext)
}
