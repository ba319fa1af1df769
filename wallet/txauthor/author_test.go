// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/satwallet/satwallet/netparams"
	"github.com/satwallet/satwallet/wallet/txsizes"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

const (
	// Testnet addresses used throughout: a legacy P2PKH recipient and a
	// bech32 P2WPKH change address.
	testRecipientP2PKH = "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn"
	testChangeP2WPKH   = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"

	// Mainnet address, invalid on testnet.
	mainnetP2PKH = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
)

// decodeTx deserializes the hex an authored transaction reports, proving the
// codec round trip.
func decodeTx(t *testing.T, txHex string) *wire.MsgTx {
	t.Helper()

	raw, err := hex.DecodeString(txHex)
	require.NoError(t, err)

	var tx wire.MsgTx
	require.NoError(t, tx.Deserialize(bytes.NewReader(raw)))
	return &tx
}

// sumOutputs returns the summed output value of a transaction.
func sumOutputs(tx *wire.MsgTx) btcutil.Amount {
	var total btcutil.Amount
	for _, out := range tx.TxOut {
		total += btcutil.Amount(out.Value)
	}
	return total
}

func TestNewUnsignedTransactionWithChange(t *testing.T) {
	t.Parallel()

	inputs := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 500000),
	}

	atx, err := NewUnsignedTransaction(testRecipientP2PKH, 200000, 2,
		inputs, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	require.NoError(t, err)

	// fee(1-in/2-out, p2wpkh inputs, p2pkh recipient, 2 sat/vB) = 292.
	require.Equal(t, btcutil.Amount(292), atx.Fee)
	require.Equal(t, 1, atx.ChangeIndex)
	require.Len(t, atx.Tx.TxOut, 2)
	require.Equal(t, int64(200000), atx.Tx.TxOut[0].Value)
	require.Equal(t, int64(299708), atx.Tx.TxOut[1].Value)

	// No signature data on an unsigned transaction.
	for _, txIn := range atx.Tx.TxIn {
		require.Empty(t, txIn.SignatureScript)
		require.Empty(t, txIn.Witness)
	}

	// The serialized form must decode back to the same composition, and
	// the balance invariant must hold exactly.
	decoded := decodeTx(t, atx.TxHex)
	require.Len(t, decoded.TxOut, 2)
	require.Equal(t, atx.TotalInput, sumOutputs(decoded)+atx.Fee)
}

func TestCreateTransactionSelectsCoveringSubset(t *testing.T) {
	t.Parallel()

	// 0.005 and 0.003 BTC available; a 200000 sat payment at 2 sat/vB is
	// covered by the largest output alone, so the smaller one must stay
	// unspent.
	available := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 1, 300000),
		testUTXO("cafebabe00000000000000000000000000000000000000000000000000000000", 0, 500000),
	}

	atx, err := CreateTransaction(testRecipientP2PKH, 200000, 2,
		available, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	require.NoError(t, err)

	require.Len(t, atx.Inputs, 1)
	require.Equal(t, btcutil.Amount(500000), atx.Inputs[0].Amount)
	require.Equal(t, btcutil.Amount(292), atx.Fee)
	require.Equal(t, 1, atx.ChangeIndex)
	require.Equal(t, atx.TotalInput, sumOutputs(atx.Tx)+atx.Fee)
}

func TestCreateTransactionAccumulatesInputs(t *testing.T) {
	t.Parallel()

	// No single output covers the payment, so selection must accumulate
	// largest-first until the target plus fee is covered.
	available := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 120000),
		testUTXO("cafebabe00000000000000000000000000000000000000000000000000000000", 1, 90000),
		testUTXO("f000000000000000000000000000000000000000000000000000000000000000", 2, 50000),
	}

	atx, err := CreateTransaction(testRecipientP2PKH, 200000, 1,
		available, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	require.NoError(t, err)

	// fee(2-in/2-out at 1 sat/vB) = 214, so the two largest outputs
	// (210000 sats) cover the payment and the smallest stays unspent.
	require.Len(t, atx.Inputs, 2)
	require.Equal(t, btcutil.Amount(120000), atx.Inputs[0].Amount)
	require.Equal(t, btcutil.Amount(90000), atx.Inputs[1].Amount)
	require.Equal(t, btcutil.Amount(210000), atx.TotalInput)
	require.Equal(t, atx.TotalInput, sumOutputs(atx.Tx)+atx.Fee)
}

func TestNewUnsignedTransactionDustChangeFoldsIntoFee(t *testing.T) {
	t.Parallel()

	// fee(1-in/2-out, 1 sat/vB) = 146, so an input of target+146+500
	// leaves 500 sats of change: below the dust threshold, it must be
	// folded into the fee instead of creating an output.
	inputs := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 10000+146+500),
	}

	atx, err := NewUnsignedTransaction(testRecipientP2PKH, 10000, 1,
		inputs, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	require.NoError(t, err)

	require.Equal(t, -1, atx.ChangeIndex)
	require.Len(t, atx.Tx.TxOut, 1)
	require.Equal(t, btcutil.Amount(646), atx.Fee)
	require.Equal(t, atx.TotalInput, sumOutputs(atx.Tx)+atx.Fee)
}

func TestNewUnsignedTransactionExactBalance(t *testing.T) {
	t.Parallel()

	// The input covers the target plus exactly the fee of a changeless
	// transaction: fee(1-in/1-out, 1 sat/vB) = 112.
	inputs := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 50000+112),
	}

	atx, err := NewUnsignedTransaction(testRecipientP2PKH, 50000, 1,
		inputs, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	require.NoError(t, err)

	require.Equal(t, -1, atx.ChangeIndex)
	require.Len(t, atx.Tx.TxOut, 1)
	require.Equal(t, btcutil.Amount(112), atx.Fee)
	require.Equal(t, atx.TotalInput, sumOutputs(atx.Tx)+atx.Fee)
}

func TestNewUnsignedTransactionChangeAtDustThreshold(t *testing.T) {
	t.Parallel()

	// Change of exactly 546 sats is economically spendable and must
	// become a real output.
	inputs := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 10000+146+546),
	}

	atx, err := NewUnsignedTransaction(testRecipientP2PKH, 10000, 1,
		inputs, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	require.NoError(t, err)

	require.Equal(t, 1, atx.ChangeIndex)
	require.Len(t, atx.Tx.TxOut, 2)
	require.Equal(t, int64(546), atx.Tx.TxOut[1].Value)
	require.Equal(t, btcutil.Amount(146), atx.Fee)
	require.Equal(t, atx.TotalInput, sumOutputs(atx.Tx)+atx.Fee)
}

func TestNewUnsignedTransactionInsufficientFunds(t *testing.T) {
	t.Parallel()

	// 50 sats over the target cannot cover even the changeless fee.
	inputs := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 10050),
	}

	_, err := NewUnsignedTransaction(testRecipientP2PKH, 10000, 1,
		inputs, testChangeP2WPKH, "testnet", txsizes.P2WPKH)

	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, btcutil.Amount(10050), insufficient.Available)
}

func TestNewUnsignedTransactionValidation(t *testing.T) {
	t.Parallel()

	inputs := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 500000),
	}

	// Unsupported network identifier.
	_, err := NewUnsignedTransaction(testRecipientP2PKH, 10000, 1, inputs,
		testChangeP2WPKH, "signet", txsizes.P2WPKH)
	var unsupported *netparams.ErrUnsupportedNetwork
	require.ErrorAs(t, err, &unsupported)

	// Recipient address from the wrong network.
	_, err = NewUnsignedTransaction(mainnetP2PKH, 10000, 1, inputs,
		testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	var invalidAddr *InvalidAddressError
	require.ErrorAs(t, err, &invalidAddr)
	require.Equal(t, mainnetP2PKH, invalidAddr.Address)

	// Change address garbage.
	_, err = NewUnsignedTransaction(testRecipientP2PKH, 10000, 1, inputs,
		"notanaddress", "testnet", txsizes.P2WPKH)
	require.ErrorAs(t, err, &invalidAddr)

	// Malformed input set.
	bad := inputs[0]
	bad.PkScript = nil
	_, err = NewUnsignedTransaction(testRecipientP2PKH, 10000, 1,
		[]utxomgr.UTXO{bad}, testChangeP2WPKH, "testnet", txsizes.P2WPKH)
	var malformed *utxomgr.MalformedUTXOError
	require.ErrorAs(t, err, &malformed)
}
