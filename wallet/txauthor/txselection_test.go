// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/satwallet/satwallet/wallet/txsizes"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

func testUTXO(txid string, vout uint32, sats btcutil.Amount) utxomgr.UTXO {
	return utxomgr.UTXO{
		TxID:          txid,
		Vout:          vout,
		Amount:        sats,
		PkScript:      []byte{0x00, 0x14, 0xde, 0xad},
		Confirmations: 6,
	}
}

// TestSelectInputsCoversTarget covers the concrete scenario of two segwit
// outputs of 0.005 and 0.003 BTC funding a 0.002 BTC payment at 2 sat/vB:
// the 0.005 BTC output alone covers the target plus the 1-in/2-out fee.
func TestSelectInputsCoversTarget(t *testing.T) {
	t.Parallel()

	utxos := []utxomgr.UTXO{
		testUTXO("deadbeef00000000000000000000000000000000000000000000000000000000", 0, 500000),
		testUTXO("cafebabe00000000000000000000000000000000000000000000000000000000", 1, 300000),
	}

	sel, err := SelectInputs(utxos, 200000, 2, txsizes.P2WPKH, txsizes.P2PKH)
	if err != nil {
		t.Fatal(err)
	}

	if len(sel.Inputs) != 1 {
		t.Fatalf("selected %d inputs, want 1", len(sel.Inputs))
	}
	if sel.Inputs[0].Amount != 500000 {
		t.Errorf("selected wrong utxo: %d sats", sel.Inputs[0].Amount)
	}
	if sel.Total != 500000 {
		t.Errorf("total: got %d, want 500000", sel.Total)
	}

	// 1 input * 68 + 2 outputs * 34 + 10 overhead = 146 vB at 2 sat/vB.
	if sel.Fee.TotalFee != 292 {
		t.Errorf("fee: got %d, want 292", sel.Fee.TotalFee)
	}
	if sel.Total < 200000+sel.Fee.TotalFee {
		t.Error("selection does not cover target plus fee")
	}
}

func TestSelectInputsAccumulates(t *testing.T) {
	t.Parallel()

	// No single output covers the target, so multiple must accumulate.
	utxos := []utxomgr.UTXO{
		testUTXO("aa00000000000000000000000000000000000000000000000000000000000000", 0, 40000),
		testUTXO("bb00000000000000000000000000000000000000000000000000000000000000", 0, 60000),
		testUTXO("cc00000000000000000000000000000000000000000000000000000000000000", 0, 50000),
	}

	sel, err := SelectInputs(utxos, 100000, 1, txsizes.P2WPKH, txsizes.P2PKH)
	if err != nil {
		t.Fatal(err)
	}

	// Largest-first: 60000 then 50000 suffices.
	if len(sel.Inputs) != 2 {
		t.Fatalf("selected %d inputs, want 2", len(sel.Inputs))
	}
	if sel.Inputs[0].Amount != 60000 || sel.Inputs[1].Amount != 50000 {
		t.Errorf("unexpected selection order: %d, %d",
			sel.Inputs[0].Amount, sel.Inputs[1].Amount)
	}
	if sel.Total < 100000+sel.Fee.TotalFee {
		t.Error("selection does not cover target plus fee")
	}
}

func TestSelectInputsStableTies(t *testing.T) {
	t.Parallel()

	// Equal-valued outputs must keep their original relative order so the
	// selection is deterministic for identical input.
	utxos := []utxomgr.UTXO{
		testUTXO("aa00000000000000000000000000000000000000000000000000000000000000", 0, 50000),
		testUTXO("bb00000000000000000000000000000000000000000000000000000000000000", 1, 50000),
		testUTXO("cc00000000000000000000000000000000000000000000000000000000000000", 2, 50000),
	}

	for i := 0; i < 10; i++ {
		sel, err := SelectInputs(utxos, 120000, 1, txsizes.P2WPKH,
			txsizes.P2PKH)
		if err != nil {
			t.Fatal(err)
		}
		if len(sel.Inputs) != 3 {
			t.Fatalf("selected %d inputs, want 3", len(sel.Inputs))
		}
		for j, want := range []string{"aa", "bb", "cc"} {
			if sel.Inputs[j].TxID[:2] != want {
				t.Fatalf("tie order not stable: position %d is %s",
					j, sel.Inputs[j].TxID[:2])
			}
		}
	}
}

func TestSelectInputsInsufficientFunds(t *testing.T) {
	t.Parallel()

	utxos := []utxomgr.UTXO{
		testUTXO("aa00000000000000000000000000000000000000000000000000000000000000", 0, 1000),
		testUTXO("bb00000000000000000000000000000000000000000000000000000000000000", 0, 2000),
	}

	_, err := SelectInputs(utxos, 100000, 1, txsizes.P2WPKH, txsizes.P2PKH)
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if insufficient.Available != 3000 {
		t.Errorf("available: got %d, want 3000", insufficient.Available)
	}
	if insufficient.UTXOsTried != 2 {
		t.Errorf("utxos tried: got %d, want 2", insufficient.UTXOsTried)
	}
	if insufficient.Shortfall() <= 0 {
		t.Errorf("non-positive shortfall: %d", insufficient.Shortfall())
	}

	// The typed error doubles as an InputSourceError.
	var srcErr InputSourceError
	if !errors.As(err, &srcErr) {
		t.Error("error does not implement InputSourceError")
	}
}

func TestSelectInputsEmptySet(t *testing.T) {
	t.Parallel()

	_, err := SelectInputs(nil, 1000, 1, txsizes.P2WPKH, txsizes.P2PKH)
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
}

func TestSelectInputsMalformed(t *testing.T) {
	t.Parallel()

	bad := testUTXO("bb00000000000000000000000000000000000000000000000000000000000000", 0, 5000)
	bad.PkScript = nil
	utxos := []utxomgr.UTXO{
		testUTXO("aa00000000000000000000000000000000000000000000000000000000000000", 0, 5000),
		bad,
	}

	_, err := SelectInputs(utxos, 1000, 1, txsizes.P2WPKH, txsizes.P2PKH)
	var malformed *utxomgr.MalformedUTXOError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedUTXOError, got %v", err)
	}
	if malformed.Index != 1 {
		t.Errorf("offending index: got %d, want 1", malformed.Index)
	}
}

// TestSelectInputsExactCover exercises the boundary where the accumulated
// total exactly equals target plus the 2-output fee: the final fee is then
// settled for a single-output transaction.
func TestSelectInputsExactCover(t *testing.T) {
	t.Parallel()

	// fee(1-in/2-out, p2wpkh->p2pkh, 1 sat/vB) = 68 + 2*34 + 10 = 146.
	target := btcutil.Amount(10000)
	utxos := []utxomgr.UTXO{
		testUTXO("aa00000000000000000000000000000000000000000000000000000000000000", 0, target+146),
	}

	sel, err := SelectInputs(utxos, target, 1, txsizes.P2WPKH, txsizes.P2PKH)
	if err != nil {
		t.Fatal(err)
	}

	// fee(1-in/1-out) = 68 + 34 + 10 = 112.
	if sel.Fee.TotalFee != 112 {
		t.Errorf("fee: got %d, want 112", sel.Fee.TotalFee)
	}
	if sel.Total < target+sel.Fee.TotalFee {
		t.Error("selection does not cover target plus fee")
	}
}
