// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package utxomgr defines the unspent transaction output record the wallet
// spends from and the fixed-scale conversions between decimal bitcoin
// amounts and integer satoshis.
package utxomgr

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// UTXO is an unspent transaction output supplied by an external source.  The
// wallet treats it as read-only input: it is validated, selected, and
// referenced by constructed transactions, but never mutated.
type UTXO struct {
	// TxID is the hash of the transaction containing the output, in the
	// conventional reversed hex form.
	TxID string

	// Vout is the index of the output within its transaction.
	Vout uint32

	// Amount is the output value in satoshis.  Amounts are always exact
	// integers; any decimal BTC value is converted at ingestion with
	// truncation.
	Amount btcutil.Amount

	// PkScript is the output's locking script.
	PkScript []byte

	// Confirmations is the number of confirmations the containing
	// transaction has.
	Confirmations int64
}

// MalformedUTXOError describes a UTXO missing one of its required fields.
// Index identifies the offending element of the input slice.
type MalformedUTXOError struct {
	Index  int
	Reason string
}

func (e *MalformedUTXOError) Error() string {
	return fmt.Sprintf("malformed utxo at index %d: %s", e.Index, e.Reason)
}

// Check verifies that the UTXO carries every required field.  The returned
// error, if any, is a *MalformedUTXOError annotated with index.
func (u *UTXO) Check(index int) error {
	switch {
	case u.TxID == "":
		return &MalformedUTXOError{Index: index, Reason: "missing txid"}
	case len(u.PkScript) == 0:
		return &MalformedUTXOError{Index: index, Reason: "missing scriptPubKey"}
	case u.Amount <= 0:
		return &MalformedUTXOError{
			Index:  index,
			Reason: fmt.Sprintf("non-positive amount %d", u.Amount),
		}
	}
	return nil
}

// CheckAll verifies every UTXO in the slice, failing on the first malformed
// element.
func CheckAll(utxos []UTXO) error {
	for i := range utxos {
		if err := utxos[i].Check(i); err != nil {
			return err
		}
	}
	return nil
}

// FilterSpendable returns the subset of utxos with at least minConf
// confirmations.  The relative order of the input is preserved.
func FilterSpendable(utxos []UTXO, minConf int64) []UTXO {
	spendable := make([]UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Confirmations >= minConf {
			spendable = append(spendable, u)
		}
	}
	return spendable
}

// Sum returns the total satoshi value of the given outputs.
func Sum(utxos []UTXO) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range utxos {
		total += u.Amount
	}
	return total
}
