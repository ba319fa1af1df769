// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// errWrongNetwork is wrapped by InvalidAddressError when an address parses
// but belongs to a different network.
var errWrongNetwork = errors.New("address intended for a different network")

// InputSourceError describes the failure to provide enough input value from
// unspent transaction outputs to meet a target amount.  A typed error is
// used so callers can distinguish a funding problem from validation errors.
type InputSourceError interface {
	error
	InputSourceError()
}

// InsufficientFundsError reports that the available unspent outputs cannot
// cover the target amount plus the fee required to spend them.
type InsufficientFundsError struct {
	// Target is the amount the transaction pays to the recipient.
	Target btcutil.Amount

	// Fee is the final fee estimate the target was evaluated against.
	Fee btcutil.Amount

	// Available is the total value of the considered unspent outputs.
	Available btcutil.Amount

	// UTXOsTried is the number of unspent outputs considered.
	UTXOsTried int
}

// InputSourceError marks the error as a funding failure.
func (e *InsufficientFundsError) InputSourceError() {}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d satoshis (amount %d + "+
		"fee %d), have %d satoshis from %d utxos (shortfall %d)",
		e.Target+e.Fee, e.Target, e.Fee, e.Available, e.UTXOsTried,
		e.Shortfall())
}

// Shortfall returns the number of satoshis missing to fund the transaction.
func (e *InsufficientFundsError) Shortfall() btcutil.Amount {
	return e.Target + e.Fee - e.Available
}

// InvalidAddressError describes an address that does not parse as a valid
// address for the stated network.
type InvalidAddressError struct {
	Address string
	Network string
	Err     error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q for network %s: %v", e.Address,
		e.Network, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *InvalidAddressError) Unwrap() error {
	return e.Err
}

// BalanceInvariantError reports that an assembled transaction violates
// sum(inputs) == sum(outputs) + fee.  It indicates an internal bug and is
// never silently corrected.
type BalanceInvariantError struct {
	Inputs  btcutil.Amount
	Outputs btcutil.Amount
	Fee     btcutil.Amount
}

func (e *BalanceInvariantError) Error() string {
	return fmt.Sprintf("balance invariant violation: inputs %d != "+
		"outputs %d + fee %d", e.Inputs, e.Outputs, e.Fee)
}
