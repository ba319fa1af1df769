// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/satwallet/satwallet/netparams"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		net        *netparams.Params
		addrType   AddressType
		addrPrefix string
	}{
		{&netparams.MainNetParams, P2PKH, "1"},
		{&netparams.MainNetParams, P2WPKH, "bc1"},
		{&netparams.TestNet3Params, P2WPKH, "tb1"},
		{&netparams.RegressionNetParams, P2WPKH, "bcrt1"},
	}
	for _, test := range tests {
		km, err := Generate(test.net, test.addrType)
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(km.Address, test.addrPrefix),
			"%s %s address %s lacks prefix %s", test.net.Name,
			test.addrType, km.Address, test.addrPrefix)
		require.Len(t, km.PrivKey, 32)
		require.Len(t, km.PubKey, 33)
		require.Equal(t, test.net.Name, km.Network)

		wif, err := btcutil.DecodeWIF(km.WIF)
		require.NoError(t, err)
		require.True(t, wif.IsForNet(test.net.Params))
	}
}

func TestGenerateUnsupportedAddressType(t *testing.T) {
	t.Parallel()

	_, err := Generate(&netparams.TestNet3Params, AddressType(99))
	var unsupported *UnsupportedAddressTypeError
	require.ErrorAs(t, err, &unsupported)
}

func TestParseAddressType(t *testing.T) {
	t.Parallel()

	for _, want := range []AddressType{P2PKH, P2WPKH} {
		got, err := ParseAddressType(want.String())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseAddressType("p2sh")
	var unsupported *UnsupportedAddressTypeError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "p2sh", unsupported.Type)
}

func TestImportWIFRoundTrip(t *testing.T) {
	t.Parallel()

	// Importing the WIF of a freshly generated key must reproduce the
	// same address and key bytes.
	km, err := Generate(&netparams.TestNet3Params, P2WPKH)
	require.NoError(t, err)

	imported, err := ImportWIF(km.WIF, &netparams.TestNet3Params, P2WPKH)
	require.NoError(t, err)
	require.Equal(t, km.Address, imported.Address)
	require.Equal(t, km.PrivKey, imported.PrivKey)
	require.Equal(t, km.PubKey, imported.PubKey)
}

func TestImportWIFErrors(t *testing.T) {
	t.Parallel()

	var invalid *InvalidKeyEncodingError

	// Not a WIF string at all.
	_, err := ImportWIF("definitely not a key", &netparams.TestNet3Params,
		P2PKH)
	require.ErrorAs(t, err, &invalid)

	// A mainnet key presented as a testnet key.
	km, err := Generate(&netparams.MainNetParams, P2PKH)
	require.NoError(t, err)
	_, err = ImportWIF(km.WIF, &netparams.TestNet3Params, P2PKH)
	require.ErrorAs(t, err, &invalid)

	// Uncompressed keys have no defined P2WPKH form.
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	uncompressed, err := btcutil.NewWIF(priv,
		netparams.TestNet3Params.Params, false)
	require.NoError(t, err)
	_, err = ImportWIF(uncompressed.String(), &netparams.TestNet3Params,
		P2WPKH)
	require.ErrorAs(t, err, &invalid)

	// An uncompressed key is still fine for legacy addresses.
	_, err = ImportWIF(uncompressed.String(), &netparams.TestNet3Params,
		P2PKH)
	require.NoError(t, err)
}

func TestKeyMaterialSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	km, err := Generate(&netparams.TestNet3Params, P2PKH)
	require.NoError(t, err)

	data, err := km.Serialize()
	require.NoError(t, err)

	got, err := DeserializeKeyMaterial(data)
	require.NoError(t, err)
	require.Equal(t, km, got)
}

func TestDeserializeKeyMaterialMalformed(t *testing.T) {
	t.Parallel()

	var invalid *InvalidKeyEncodingError
	_, err := DeserializeKeyMaterial([]byte("not json"))
	require.ErrorAs(t, err, &invalid)

	_, err = DeserializeKeyMaterial([]byte(`{"address_type":"p2tr"}`))
	var unsupported *UnsupportedAddressTypeError
	require.ErrorAs(t, err, &unsupported)
}

func TestSaveLoadFile(t *testing.T) {
	t.Parallel()

	km, err := Generate(&netparams.RegressionNetParams, P2WPKH)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.enc")
	password := []byte("hunter2")
	require.NoError(t, km.SaveToFile(path, password))

	got, err := LoadFromFile(path, password)
	require.NoError(t, err)
	require.Equal(t, km, got)

	_, err = LoadFromFile(path, []byte("wrong"))
	require.ErrorIs(t, err, ErrDecryptionFailure)
}

func TestLoadFileNotFound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.enc")
	_, err := LoadFromFile(path, []byte("password"))

	var notFound *FileNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, path, notFound.Path)
}
