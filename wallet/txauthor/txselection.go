// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/satwallet/satwallet/wallet/txsizes"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

// InputSelection is the result of selecting unspent outputs to fund a target
// amount.  Inputs are ordered by selection order, largest value first.
type InputSelection struct {
	// Inputs is the covering set of unspent outputs.
	Inputs []utxomgr.UTXO

	// Total is the summed satoshi value of Inputs.
	Total btcutil.Amount

	// Fee is the final fee estimate for a transaction spending Inputs
	// with the output count the selection ended up requiring.
	Fee txsizes.FeeEstimate
}

// SelectInputs picks a subset of the available unspent outputs covering
// target plus the fee required to spend the subset.
//
// The strategy is greedy largest-first: outputs are sorted descending by
// value (ties keep their original relative order, so selection is
// deterministic for identical inputs) and appended one at a time, with the
// fee re-estimated after each addition assuming two outputs (recipient and
// change).  Once the accumulated value covers target plus the current fee
// estimate, the fee is recomputed a final time with the output count the
// transaction will actually have.  The strategy minimizes input count, not
// fee or fragmentation.
//
// A *utxomgr.MalformedUTXOError is returned if any element is missing a
// required field, and an *InsufficientFundsError if the set cannot cover the
// target.
func SelectInputs(utxos []utxomgr.UTXO, target btcutil.Amount,
	feeRate btcutil.Amount, inputType,
	outputType txsizes.ScriptType) (*InputSelection, error) {

	if len(utxos) == 0 {
		return nil, &InsufficientFundsError{Target: target}
	}
	if err := utxomgr.CheckAll(utxos); err != nil {
		return nil, err
	}

	sorted := make([]utxomgr.UTXO, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})

	var (
		selected []utxomgr.UTXO
		total    btcutil.Amount
		fee      txsizes.FeeEstimate
	)
	for _, u := range sorted {
		selected = append(selected, u)
		total += u.Amount

		// Assume two outputs (recipient + change) while accumulating.
		fee = txsizes.EstimateFee(len(selected), 2, inputType,
			outputType, feeRate)
		if total >= target+fee.TotalFee {
			break
		}
	}

	// Determine whether a change output will actually be needed and settle
	// the fee with the correct output count.
	numOutputs := 1
	if total > target+fee.TotalFee {
		numOutputs = 2
	}
	fee = txsizes.EstimateFee(len(selected), numOutputs, inputType,
		outputType, feeRate)

	if total < target+fee.TotalFee {
		return nil, &InsufficientFundsError{
			Target:     target,
			Fee:        fee.TotalFee,
			Available:  total,
			UTXOsTried: len(selected),
		}
	}

	return &InputSelection{
		Inputs: selected,
		Total:  total,
		Fee:    fee,
	}, nil
}
