// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keystore implements key custody for the wallet: generation and
// import of single private keys, address derivation, and password-based
// authenticated encryption of key material at rest.
//
// A key is always in exactly one of three states: generated or imported
// (plaintext, in memory), encrypted (at rest), or decrypted (plaintext, in
// memory again).  There are no partial states.
package keystore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/satwallet/satwallet/internal/zero"
	"github.com/satwallet/satwallet/netparams"
)

// AddressType selects the address form derived for a key.
type AddressType int

const (
	// P2PKH derives a legacy pay-to-pubkey-hash address.
	P2PKH AddressType = iota

	// P2WPKH derives a segwit version 0 pay-to-witness-pubkey-hash
	// address.
	P2WPKH
)

// String returns the conventional lowercase identifier for the address type.
func (t AddressType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2WPKH:
		return "p2wpkh"
	}
	return "unknown"
}

// ParseAddressType maps a lowercase address type identifier to its
// AddressType.  Anything other than the two supported single-key forms
// results in an *UnsupportedAddressTypeError.
func ParseAddressType(s string) (AddressType, error) {
	switch s {
	case "p2pkh":
		return P2PKH, nil
	case "p2wpkh":
		return P2WPKH, nil
	}
	return 0, &UnsupportedAddressTypeError{Type: s}
}

// UnsupportedAddressTypeError describes an address type other than the
// supported legacy and segwit single-key forms.
type UnsupportedAddressTypeError struct {
	Type string
}

func (e *UnsupportedAddressTypeError) Error() string {
	return fmt.Sprintf("unsupported address type %q: must be p2pkh or "+
		"p2wpkh", e.Type)
}

// InvalidKeyEncodingError describes an externally supplied key string that
// does not decode to a valid key for the stated network.
type InvalidKeyEncodingError struct {
	Reason string
	Err    error
}

func (e *InvalidKeyEncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid key encoding: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid key encoding: %s", e.Reason)
}

// Unwrap returns the underlying decode error, if any.
func (e *InvalidKeyEncodingError) Unwrap() error {
	return e.Err
}

// KeyMaterial is a single key pair together with its derived address.  The
// network and address type are fixed at creation and determine the address
// derivation; the value is immutable once generated or imported.  It is
// persisted only in encrypted form.
type KeyMaterial struct {
	// WIF is the private key in wallet import format.
	WIF string

	// Address is the derived address in its string form.
	Address string

	// PrivKey is the raw 32-byte private key.  Call Zero when the
	// material is no longer needed.
	PrivKey []byte

	// PubKey is the serialized public key, compressed unless the key was
	// imported from an uncompressed WIF.
	PubKey []byte

	// Network is the network identifier the key was created for.
	Network string

	// AddressType is the address form derived for the key.
	AddressType AddressType
}

// Zero clears the raw private key bytes.  The WIF string cannot be wiped in
// place; callers holding it are expected to let it go out of scope promptly.
func (k *KeyMaterial) Zero() {
	zero.Bytes(k.PrivKey)
}

// Generate produces a cryptographically random private key and derives the
// public key and requested address form for the given network.
func Generate(net *netparams.Params, addrType AddressType) (*KeyMaterial, error) {
	if addrType != P2PKH && addrType != P2WPKH {
		return nil, &UnsupportedAddressTypeError{Type: addrType.String()}
	}

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	wif, err := btcutil.NewWIF(priv, net.Params, true)
	if err != nil {
		return nil, err
	}

	pubKey := priv.PubKey().SerializeCompressed()
	addr, err := deriveAddress(pubKey, addrType, net.Params)
	if err != nil {
		return nil, err
	}

	log.Debugf("generated %s key for %s: %s", addrType, net.Name,
		addr.EncodeAddress())

	return &KeyMaterial{
		WIF:         wif.String(),
		Address:     addr.EncodeAddress(),
		PrivKey:     priv.Serialize(),
		PubKey:      pubKey,
		Network:     net.Name,
		AddressType: addrType,
	}, nil
}

// ImportWIF parses an externally supplied WIF-encoded private key and
// derives the requested address form for the given network.
func ImportWIF(wifStr string, net *netparams.Params,
	addrType AddressType) (*KeyMaterial, error) {

	if addrType != P2PKH && addrType != P2WPKH {
		return nil, &UnsupportedAddressTypeError{Type: addrType.String()}
	}

	wif, err := btcutil.DecodeWIF(wifStr)
	if err != nil {
		return nil, &InvalidKeyEncodingError{
			Reason: "not a valid WIF string",
			Err:    err,
		}
	}
	if !wif.IsForNet(net.Params) {
		return nil, &InvalidKeyEncodingError{
			Reason: fmt.Sprintf("key is not for network %s", net.Name),
		}
	}

	// Witness addresses commit to the hash of the compressed public key;
	// an uncompressed key has no defined P2WPKH form.
	if addrType == P2WPKH && !wif.CompressPubKey {
		return nil, &InvalidKeyEncodingError{
			Reason: "p2wpkh requires a compressed key",
		}
	}

	pubKey := wif.SerializePubKey()
	addr, err := deriveAddress(pubKey, addrType, net.Params)
	if err != nil {
		return nil, err
	}

	return &KeyMaterial{
		WIF:         wifStr,
		Address:     addr.EncodeAddress(),
		PrivKey:     wif.PrivKey.Serialize(),
		PubKey:      pubKey,
		Network:     net.Name,
		AddressType: addrType,
	}, nil
}

// deriveAddress derives the address of the given type for a serialized
// public key.
func deriveAddress(pubKey []byte, addrType AddressType,
	net *chaincfg.Params) (btcutil.Address, error) {

	pkHash := btcutil.Hash160(pubKey)
	switch addrType {
	case P2PKH:
		return btcutil.NewAddressPubKeyHash(pkHash, net)
	case P2WPKH:
		return btcutil.NewAddressWitnessPubKeyHash(pkHash, net)
	}
	return nil, &UnsupportedAddressTypeError{Type: addrType.String()}
}

// keyMaterialJSON is the serialized form of KeyMaterial inside an encrypted
// container.
type keyMaterialJSON struct {
	WIF         string `json:"wif"`
	Address     string `json:"address"`
	PrivKeyHex  string `json:"private_key_hex"`
	PubKeyHex   string `json:"public_key_hex"`
	Network     string `json:"network"`
	AddressType string `json:"address_type"`
}

// Serialize encodes the key material for encryption.  The caller must wipe
// the returned bytes once they have been encrypted.
func (k *KeyMaterial) Serialize() ([]byte, error) {
	return json.Marshal(&keyMaterialJSON{
		WIF:         k.WIF,
		Address:     k.Address,
		PrivKeyHex:  hex.EncodeToString(k.PrivKey),
		PubKeyHex:   hex.EncodeToString(k.PubKey),
		Network:     k.Network,
		AddressType: k.AddressType.String(),
	})
}

// DeserializeKeyMaterial decodes key material produced by Serialize.
func DeserializeKeyMaterial(data []byte) (*KeyMaterial, error) {
	var km keyMaterialJSON
	if err := json.Unmarshal(data, &km); err != nil {
		return nil, &InvalidKeyEncodingError{
			Reason: "malformed key material",
			Err:    err,
		}
	}

	addrType, err := ParseAddressType(km.AddressType)
	if err != nil {
		return nil, err
	}
	privKey, err := hex.DecodeString(km.PrivKeyHex)
	if err != nil {
		return nil, &InvalidKeyEncodingError{
			Reason: "malformed private key hex",
			Err:    err,
		}
	}
	pubKey, err := hex.DecodeString(km.PubKeyHex)
	if err != nil {
		return nil, &InvalidKeyEncodingError{
			Reason: "malformed public key hex",
			Err:    err,
		}
	}

	return &KeyMaterial{
		WIF:         km.WIF,
		Address:     km.Address,
		PrivKey:     privKey,
		PubKey:      pubKey,
		Network:     km.Network,
		AddressType: addrType,
	}, nil
}
