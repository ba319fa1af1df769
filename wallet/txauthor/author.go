// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txauthor provides unsigned transaction creation for the wallet:
// input selection over a set of unspent outputs and assembly of the final
// input/output composition with change and dust handling.
//
// Nothing in this package signs anything.  Signature scripts and witness
// fields of authored transactions are left empty for an external signer to
// fill in.
package txauthor

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/satwallet/satwallet/netparams"
	"github.com/satwallet/satwallet/wallet/txrules"
	"github.com/satwallet/satwallet/wallet/txsizes"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

// AuthoredTx holds a newly-created unsigned transaction along with the data
// needed to hand it to an external signer.
type AuthoredTx struct {
	// Tx is the unsigned transaction.  Signature scripts and witnesses
	// are empty.
	Tx *wire.MsgTx

	// TxHex is the serialized unsigned transaction in hex form, as
	// produced by the wire codec.
	TxHex string

	// Fee is the transaction fee in satoshis, including any change that
	// was folded into it by the dust policy.
	Fee btcutil.Amount

	// TotalInput is the summed value of the spent outputs.
	TotalInput btcutil.Amount

	// ChangeIndex is the output index of the change output, or negative
	// if the transaction has none.
	ChangeIndex int

	// Inputs are the unspent outputs the transaction spends, in input
	// order.  The external signer needs their scripts and values.
	Inputs []utxomgr.UTXO
}

// NewUnsignedTransaction assembles an unsigned transaction paying amount to
// recipient from the previously selected inputs, returning any remainder
// above the fee to changeAddr.
//
// Validation happens before any construction: network must name a supported
// network (*netparams.ErrUnsupportedNetwork), both addresses must parse for
// that network (*InvalidAddressError), and every input must carry its
// required fields (*utxomgr.MalformedUTXOError).
//
// The fee is estimated assuming a change output exists.  If the remainder
// after subtracting amount and fee is at least the dust threshold, a change
// output is created.  A smaller positive remainder is folded entirely into
// the fee rather than creating an output a node would reject.  If the inputs
// cannot cover amount plus the fee of a changeless transaction, an
// *InsufficientFundsError is returned; with a correctly-selected input set
// this also indicates an internal consistency fault in the caller.
func NewUnsignedTransaction(recipient string, amount btcutil.Amount,
	feeRate btcutil.Amount, inputs []utxomgr.UTXO, changeAddr string,
	network string, inputType txsizes.ScriptType) (*AuthoredTx, error) {

	net, err := netparams.Resolve(network)
	if err != nil {
		return nil, err
	}

	recipientAddr, err := decodeAddress(recipient, net)
	if err != nil {
		return nil, err
	}
	changeAddress, err := decodeAddress(changeAddr, net)
	if err != nil {
		return nil, err
	}

	if err := utxomgr.CheckAll(inputs); err != nil {
		return nil, err
	}
	if err := txrules.CheckOutput(amount); err != nil {
		return nil, err
	}

	// The fee model sizes outputs by the recipient's script form.
	outputType := scriptTypeOfAddress(recipientAddr)

	totalInput := utxomgr.Sum(inputs)

	// Estimate the fee assuming a change output exists, then decide what
	// to do with the remainder.
	feeWithChange := txsizes.EstimateFee(len(inputs), 2, inputType,
		outputType, feeRate).TotalFee
	change := totalInput - amount - feeWithChange

	var fee btcutil.Amount
	switch {
	case change >= txrules.DustThreshold:
		fee = feeWithChange

	default:
		// No change output.  Whatever remains above the recipient
		// amount is the fee: this folds sub-dust change into the fee
		// and also covers the exact-balance case.  The remainder must
		// still cover the fee of the smaller changeless transaction.
		feeNoChange := txsizes.EstimateFee(len(inputs), 1, inputType,
			outputType, feeRate).TotalFee
		if totalInput-amount < feeNoChange {
			return nil, &InsufficientFundsError{
				Target:     amount,
				Fee:        feeNoChange,
				Available:  totalInput,
				UTXOsTried: len(inputs),
			}
		}
		fee = totalInput - amount
		if change > 0 {
			log.Debugf("change %d below dust threshold %d, folding "+
				"into fee", change, txrules.DustThreshold)
		}
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for i := range inputs {
		prevHash, err := chainhash.NewHashFromStr(inputs[i].TxID)
		if err != nil {
			return nil, &utxomgr.MalformedUTXOError{
				Index:  i,
				Reason: "invalid txid: " + err.Error(),
			}
		}
		outPoint := wire.NewOutPoint(prevHash, inputs[i].Vout)
		tx.AddTxIn(wire.NewTxIn(outPoint, nil, nil))
	}

	recipientScript, err := txscript.PayToAddrScript(recipientAddr)
	if err != nil {
		return nil, err
	}
	tx.AddTxOut(wire.NewTxOut(int64(amount), recipientScript))

	changeIndex := -1
	if change >= txrules.DustThreshold {
		changeScript, err := txscript.PayToAddrScript(changeAddress)
		if err != nil {
			return nil, err
		}
		changeIndex = len(tx.TxOut)
		tx.AddTxOut(wire.NewTxOut(int64(change), changeScript))
	}

	// The assembled transaction must balance exactly.  A mismatch here is
	// an internal bug; never return an inconsistent transaction.
	var totalOutput btcutil.Amount
	for _, out := range tx.TxOut {
		totalOutput += btcutil.Amount(out.Value)
	}
	if totalOutput+fee != totalInput {
		return nil, &BalanceInvariantError{
			Inputs:  totalInput,
			Outputs: totalOutput,
			Fee:     fee,
		}
	}

	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}

	return &AuthoredTx{
		Tx:          tx,
		TxHex:       hex.EncodeToString(buf.Bytes()),
		Fee:         fee,
		TotalInput:  totalInput,
		ChangeIndex: changeIndex,
		Inputs:      inputs,
	}, nil
}

// CreateTransaction selects a covering subset of the available unspent
// outputs and authors the unsigned transaction spending it: the composition
// of SelectInputs and NewUnsignedTransaction.  Outputs that selection does
// not need are left unspent.
func CreateTransaction(recipient string, amount, feeRate btcutil.Amount,
	available []utxomgr.UTXO, changeAddr string, network string,
	inputType txsizes.ScriptType) (*AuthoredTx, error) {

	net, err := netparams.Resolve(network)
	if err != nil {
		return nil, err
	}
	recipientAddr, err := decodeAddress(recipient, net)
	if err != nil {
		return nil, err
	}

	selection, err := SelectInputs(available, amount, feeRate, inputType,
		scriptTypeOfAddress(recipientAddr))
	if err != nil {
		return nil, err
	}
	log.Debugf("Selected %d of %d output(s) worth %v to fund %v",
		len(selection.Inputs), len(available), selection.Total, amount)

	return NewUnsignedTransaction(recipient, amount, feeRate,
		selection.Inputs, changeAddr, network, inputType)
}

// decodeAddress parses addr and verifies it is valid for the given network.
func decodeAddress(addr string, net *netparams.Params) (btcutil.Address, error) {
	a, err := btcutil.DecodeAddress(addr, net.Params)
	if err != nil {
		return nil, &InvalidAddressError{
			Address: addr,
			Network: net.Name,
			Err:     err,
		}
	}
	if !a.IsForNet(net.Params) {
		return nil, &InvalidAddressError{
			Address: addr,
			Network: net.Name,
			Err:     errWrongNetwork,
		}
	}
	return a, nil
}

// scriptTypeOfAddress maps an address to the script type used for fee
// estimation of outputs paying to it.
func scriptTypeOfAddress(addr btcutil.Address) txsizes.ScriptType {
	switch addr.(type) {
	case *btcutil.AddressWitnessPubKeyHash:
		return txsizes.P2WPKH
	case *btcutil.AddressScriptHash:
		return txsizes.NestedP2WPKH
	default:
		return txsizes.P2PKH
	}
}
