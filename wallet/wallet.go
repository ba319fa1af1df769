// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet ties the custody, coin selection, transaction authoring,
// node RPC, and ledger components into the wallet's top level operations:
// creating and importing keys, checking balances, sending funds, and
// reporting history.
package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/satwallet/satwallet/chain"
	"github.com/satwallet/satwallet/keystore"
	"github.com/satwallet/satwallet/ledger"
	"github.com/satwallet/satwallet/netparams"
	"github.com/satwallet/satwallet/wallet/txauthor"
	"github.com/satwallet/satwallet/wallet/txsizes"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

// ChainService is the node RPC surface the wallet depends on.  It is
// satisfied by *chain.Client and by test doubles.
type ChainService interface {
	// ListUnspent returns the unspent outputs paying to address with at
	// least minConf confirmations.
	ListUnspent(address string, minConf int) ([]utxomgr.UTXO, error)

	// SignTransaction signs a serialized transaction with the given
	// WIF-encoded keys, using spent as previous-output hints.  An
	// incomplete signature set is reported through the result, not as an
	// error.
	SignTransaction(txHex string, wifs []string,
		spent []utxomgr.UTXO) (*chain.SignResult, error)

	// Broadcast relays a signed serialized transaction and returns its
	// transaction hash.
	Broadcast(txHex string) (string, error)
}

// Wallet is a single-key wallet bound to one network.  Key material is
// loaded from encrypted files per operation and never retained.
type Wallet struct {
	net    *netparams.Params
	chain  ChainService
	ledger *ledger.Store
}

// New constructs a wallet over the given chain service and ledger.
func New(net *netparams.Params, chain ChainService, store *ledger.Store) *Wallet {
	return &Wallet{net: net, chain: chain, ledger: store}
}

// SendResult reports a completed send: the transaction as broadcast and the
// exact accounting of where every satoshi went.
type SendResult struct {
	TxID        string
	SignedTx    string
	Amount      btcutil.Amount
	Fee         btcutil.Amount
	TotalInput  btcutil.Amount
	ChangeIndex int
}

// CreateKey generates a new key for the wallet's network, persists it
// encrypted under password at keyPath, and records the address in the
// ledger.
func (w *Wallet) CreateKey(addrType keystore.AddressType, keyPath string,
	password []byte, label string) (*keystore.KeyMaterial, error) {

	km, err := keystore.Generate(w.net, addrType)
	if err != nil {
		return nil, err
	}
	if err := w.storeKey(km, keyPath, password, label); err != nil {
		return nil, err
	}
	return km, nil
}

// ImportKey imports a WIF-encoded key for the wallet's network, persists it
// encrypted under password at keyPath, and records the address in the
// ledger.
func (w *Wallet) ImportKey(wif string, addrType keystore.AddressType,
	keyPath string, password []byte, label string) (*keystore.KeyMaterial, error) {

	km, err := keystore.ImportWIF(wif, w.net, addrType)
	if err != nil {
		return nil, err
	}
	if err := w.storeKey(km, keyPath, password, label); err != nil {
		return nil, err
	}
	return km, nil
}

func (w *Wallet) storeKey(km *keystore.KeyMaterial, keyPath string,
	password []byte, label string) error {

	if err := km.SaveToFile(keyPath, password); err != nil {
		return err
	}
	return w.ledger.AddKey(&ledger.KeyRecord{
		Address:     km.Address,
		KeyFile:     keyPath,
		Label:       label,
		Network:     km.Network,
		AddressType: km.AddressType.String(),
	})
}

// LoadKey decrypts the key file at keyPath and verifies the key belongs to
// the wallet's network.
func (w *Wallet) LoadKey(keyPath string, password []byte) (*keystore.KeyMaterial, error) {
	km, err := keystore.LoadFromFile(keyPath, password)
	if err != nil {
		return nil, err
	}
	if km.Network != w.net.Name {
		km.Zero()
		return nil, &keystore.InvalidKeyEncodingError{
			Reason: fmt.Sprintf("key file is for network %s, wallet "+
				"is on %s", km.Network, w.net.Name),
		}
	}
	return km, nil
}

// Balance returns the total confirmed spendable value paying to address and
// the number of outputs holding it.
func (w *Wallet) Balance(address string, minConf int) (btcutil.Amount, int, error) {
	utxos, err := w.chain.ListUnspent(address, minConf)
	if err != nil {
		return 0, 0, err
	}
	spendable := utxomgr.FilterSpendable(utxos, int64(minConf))
	return utxomgr.Sum(spendable), len(spendable), nil
}

// Send builds, signs, broadcasts, and records a payment of amount to
// recipient, funded by the outputs paying to the key's address.  Change, if
// any, returns to the same address.  The returned result accounts for every
// satoshi consumed: TotalInput == Amount + change + Fee.
func (w *Wallet) Send(km *keystore.KeyMaterial, recipient string,
	amount, feeRate btcutil.Amount, minConf int, notes string) (*SendResult, error) {

	if km.Network != w.net.Name {
		return nil, &keystore.InvalidKeyEncodingError{
			Reason: fmt.Sprintf("key is for network %s, wallet is "+
				"on %s", km.Network, w.net.Name),
		}
	}

	utxos, err := w.chain.ListUnspent(km.Address, minConf)
	if err != nil {
		return nil, err
	}
	utxos = utxomgr.FilterSpendable(utxos, int64(minConf))
	log.Debugf("Funding send of %v with %d spendable output(s) worth %v",
		amount, len(utxos), utxomgr.Sum(utxos))

	atx, err := txauthor.CreateTransaction(recipient, amount, feeRate,
		utxos, km.Address, w.net.Name, inputScriptType(km.AddressType))
	if err != nil {
		return nil, err
	}

	signResult, err := w.chain.SignTransaction(atx.TxHex,
		[]string{km.WIF}, atx.Inputs)
	if err != nil {
		return nil, err
	}

	// A partially signed transaction cannot be relayed, and a single-key
	// wallet has no other signer to continue with.  The partial hex is
	// carried in the error so it is not lost.
	if !signResult.Complete {
		return nil, &chain.SigningIncompleteError{
			PartialTx: signResult.Hex,
			Errors:    signResult.Errors,
		}
	}

	txid, err := w.chain.Broadcast(signResult.Hex)
	if err != nil {
		return nil, err
	}
	log.Infof("Sent %v to %s in transaction %s (fee %v)", amount,
		recipient, txid, atx.Fee)

	// The transaction is already on the network; a ledger failure here
	// must not mask the txid from the caller.
	err = w.ledger.AddTransaction(&ledger.TxRecord{
		TxID:      txid,
		Amount:    amount,
		Fee:       atx.Fee,
		Recipient: recipient,
		Status:    ledger.StatusBroadcast,
		Notes:     notes,
	})
	if err != nil {
		log.Errorf("Transaction %s broadcast but not recorded: %v",
			txid, err)
	}

	return &SendResult{
		TxID:        txid,
		SignedTx:    signResult.Hex,
		Amount:      amount,
		Fee:         atx.Fee,
		TotalInput:  atx.TotalInput,
		ChangeIndex: atx.ChangeIndex,
	}, nil
}

// History returns up to limit of the wallet's sent transactions, newest
// first.
func (w *Wallet) History(limit int) ([]ledger.TxRecord, error) {
	return w.ledger.Transactions(limit)
}

// Addresses returns the ledger records of all wallet-controlled addresses,
// newest first.
func (w *Wallet) Addresses() ([]ledger.KeyRecord, error) {
	return w.ledger.Keys()
}

// inputScriptType maps a custody address type to the script type used for
// fee estimation of inputs it funds.
func inputScriptType(addrType keystore.AddressType) txsizes.ScriptType {
	if addrType == keystore.P2PKH {
		return txsizes.P2PKH
	}
	return txsizes.P2WPKH
}
