// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsizes implements the wallet's transaction size and fee model.
//
// The per-element constants are fixed approximations in virtual bytes for
// witness-bearing inputs and raw bytes otherwise.  They are intentionally not
// protocol-exact weight accounting: estimates produced here are planning
// figures and may differ slightly from what a full node computes for the
// final signed transaction.
package txsizes

import (
	"github.com/btcsuite/btcd/btcutil"
)

// ScriptType identifies the script form of a transaction input or output for
// size estimation purposes.
type ScriptType int

const (
	// P2PKH is a legacy pay-to-pubkey-hash script.
	P2PKH ScriptType = iota

	// P2WPKH is a segwit version 0 pay-to-witness-pubkey-hash script.
	P2WPKH

	// NestedP2WPKH is a P2WPKH witness program nested in P2SH.
	NestedP2WPKH
)

// String returns the conventional lowercase identifier for the script type.
func (t ScriptType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2WPKH:
		return "p2wpkh"
	case NestedP2WPKH:
		return "p2sh-p2wpkh"
	}
	return "unknown"
}

// ParseScriptType maps a lowercase script type identifier to its ScriptType.
func ParseScriptType(s string) (ScriptType, bool) {
	switch s {
	case "p2pkh":
		return P2PKH, true
	case "p2wpkh":
		return P2WPKH, true
	case "p2sh-p2wpkh", "p2sh":
		return NestedP2WPKH, true
	}
	return 0, false
}

// Approximate per-element size estimates.
const (
	// RedeemP2WPKHInputVSize is the virtual size of a transaction input
	// redeeming a P2WPKH output.  It is calculated as:
	//
	//   - base: 32 bytes previous tx + 4 bytes output index +
	//     1 byte empty sigscript + 4 bytes sequence = 41 bytes
	//   - witness: 1 item count + 73 signature + 33 pubkey = 107 WU
	//   - vsize = ceil((41*4 + 107) / 4) = 68
	RedeemP2WPKHInputVSize = 68

	// RedeemP2PKHInputSize is the serialize size of a transaction input
	// redeeming a compressed P2PKH output.  It is calculated as:
	//
	//   - 32 bytes previous tx
	//   - 4 bytes output index
	//   - 1 byte compact int encoding value 107
	//   - 107 bytes signature script
	//   - 4 bytes sequence
	RedeemP2PKHInputSize = 32 + 4 + 1 + 107 + 4

	// UnknownInputSize is a rough fallback estimate used for inputs whose
	// script type is not recognized.
	UnknownInputSize = 100

	// P2PKHOutputSize is the serialize size of a transaction output with a
	// P2PKH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 25
	//   - 25 bytes P2PKH output script
	P2PKHOutputSize = 8 + 1 + 25

	// P2WPKHOutputSize is the serialize size of a transaction output with
	// a P2WPKH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 22
	//   - 22 bytes P2WPKH output script
	P2WPKHOutputSize = 8 + 1 + 22

	// NestedP2WPKHOutputSize is the serialize size of a transaction output
	// with a P2SH output script, as used for nested segwit outputs.  It is
	// calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 23
	//   - 23 bytes P2SH output script
	NestedP2WPKHOutputSize = 8 + 1 + 23

	// baseOverhead accounts for the transaction version, locktime, and the
	// input and output count varints when both counts fit in a single
	// byte.
	baseOverhead = 10

	// extraVarIntSize is the additional varint size when an input or
	// output count exceeds 0xfc and the compact int grows from one byte
	// to three.
	extraVarIntSize = 2

	// varIntThreshold is the largest count representable by a single-byte
	// compact int.
	varIntThreshold = 252
)

// DefaultFeeRatePerVByte is the fee rate applied when the caller does not
// supply an explicit rate.
const DefaultFeeRatePerVByte btcutil.Amount = 10

// FeeEstimate describes the estimated size of a transaction and the fee
// required to relay it at a given rate.  It is recomputed whenever the
// input or output composition changes and is never cached across different
// selections.
type FeeEstimate struct {
	// SizeVBytes is the estimated transaction size in virtual bytes.
	SizeVBytes int

	// FeeRate is the fee rate, in satoshis per virtual byte, the estimate
	// was computed with.
	FeeRate btcutil.Amount

	// TotalFee is SizeVBytes * FeeRate, in satoshis.
	TotalFee btcutil.Amount
}

// InputVSize returns the estimated virtual size contributed by a single input
// of the given script type.  Unrecognized types fall back to a rough estimate
// and log a warning rather than failing.
func InputVSize(inputType ScriptType) int {
	switch inputType {
	case P2WPKH:
		return RedeemP2WPKHInputVSize
	case P2PKH:
		return RedeemP2PKHInputSize
	}
	log.Warnf("unknown input type %v for size estimation, using %d vB "+
		"fallback", inputType, UnknownInputSize)
	return UnknownInputSize
}

// OutputVSize returns the estimated serialize size contributed by a single
// output of the given script type.  Unrecognized types fall back to the
// P2PKH output size and log a warning.
func OutputVSize(outputType ScriptType) int {
	switch outputType {
	case P2PKH:
		return P2PKHOutputSize
	case P2WPKH:
		return P2WPKHOutputSize
	case NestedP2WPKH:
		return NestedP2WPKHOutputSize
	}
	log.Warnf("unknown output type %v for size estimation, using %d vB "+
		"fallback", outputType, P2PKHOutputSize)
	return P2PKHOutputSize
}

// EstimateVirtualSize returns the estimated virtual size of a transaction
// with numInputs inputs of inputType and numOutputs outputs of outputType.
// The result is monotonically non-decreasing in both counts for fixed types.
func EstimateVirtualSize(numInputs, numOutputs int, inputType,
	outputType ScriptType) int {

	overhead := baseOverhead
	if numInputs > varIntThreshold {
		overhead += extraVarIntSize
	}
	if numOutputs > varIntThreshold {
		overhead += extraVarIntSize
	}

	return numInputs*InputVSize(inputType) +
		numOutputs*OutputVSize(outputType) + overhead
}

// EstimateFee computes the fee estimate for a transaction with the given
// input and output composition at feeRate satoshis per virtual byte.  A
// feeRate of zero or less selects DefaultFeeRatePerVByte.  All arithmetic is
// integer; there are no fractional satoshis.
func EstimateFee(numInputs, numOutputs int, inputType, outputType ScriptType,
	feeRate btcutil.Amount) FeeEstimate {

	if feeRate <= 0 {
		feeRate = DefaultFeeRatePerVByte
	}

	size := EstimateVirtualSize(numInputs, numOutputs, inputType, outputType)
	return FeeEstimate{
		SizeVBytes: size,
		FeeRate:    feeRate,
		TotalFee:   btcutil.Amount(size) * feeRate,
	}
}
