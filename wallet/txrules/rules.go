// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txrules provides transaction policy rules applied when the wallet
// constructs transactions.
package txrules

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
)

// DustThreshold is the minimum output value, in satoshis, for a single-key
// output to be considered economically spendable.  Outputs below this value
// are rejected by nodes with default relay policies, and spending them later
// would cost more in fees than they are worth.  Change below this threshold
// is folded into the transaction fee instead of creating an output.
const DustThreshold btcutil.Amount = 546

// Transaction rule violations.
var (
	ErrAmountNegative   = errors.New("transaction output amount is negative")
	ErrAmountExceedsMax = errors.New("transaction output amount exceeds maximum value")
	ErrOutputIsDust     = errors.New("transaction output is dust")
)

// IsDustAmount determines whether an output value would cause the output to
// be considered dust.
func IsDustAmount(amount btcutil.Amount) bool {
	return amount < DustThreshold
}

// CheckOutput performs simple consensus and policy tests on a transaction
// output value.
func CheckOutput(amount btcutil.Amount) error {
	if amount < 0 {
		return ErrAmountNegative
	}
	if amount > btcutil.MaxSatoshi {
		return ErrAmountExceedsMax
	}
	if IsDustAmount(amount) {
		return ErrOutputIsDust
	}
	return nil
}
