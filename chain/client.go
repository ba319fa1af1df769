// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain provides the wallet's view of an external bitcoin node over
// JSON-RPC: querying spendable outputs, signing, and broadcast.  The wallet
// itself never signs or relays; those operations are delegated to the node
// and their results are mapped into the wallet's error taxonomy.
package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"

	"github.com/satwallet/satwallet/netparams"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

// Config describes the connection to the bitcoin node's JSON-RPC interface.
type Config struct {
	// Host is the RPC host:port of the node.
	Host string

	// User and Pass are the RPC credentials.
	User string
	Pass string
}

// Client is a JSON-RPC client for a bitcoin full node.  All methods are safe
// for concurrent use.
type Client struct {
	rpc *rpcclient.Client
	net *netparams.Params
}

// NewClient establishes an HTTP POST mode connection to the node described
// by cfg.  No RPC call is made until a method is invoked.
func NewClient(net *netparams.Params, cfg *Config) (*Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host: cfg.Host,
		User: cfg.User,
		Pass: cfg.Pass,

		// Bitcoin nodes only support HTTP POST mode without TLS on
		// their RPC interface.
		HTTPPostMode: true,
		DisableTLS:   true,
	}
	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, &ServiceError{Op: "connect", Err: err}
	}

	log.Debugf("RPC client created for %s node at %s", net.Name, cfg.Host)
	return &Client{rpc: rpc, net: net}, nil
}

// Shutdown tears down the underlying RPC connection.
func (c *Client) Shutdown() {
	c.rpc.Shutdown()
}

// ListUnspent queries the node for the confirmed spendable outputs paying to
// address.
func (c *Client) ListUnspent(address string, minConf int) ([]utxomgr.UTXO, error) {
	addr, err := btcutil.DecodeAddress(address, c.net.Params)
	if err != nil {
		return nil, &ServiceError{Op: "listunspent", Err: err}
	}

	// Query failures are service errors even when the node reports them:
	// no transaction was submitted, so nothing was rejected.
	results, err := c.rpc.ListUnspentMinMaxAddresses(minConf, 9999999,
		[]btcutil.Address{addr})
	if err != nil {
		return nil, &ServiceError{Op: "listunspent", Err: err}
	}

	utxos := make([]utxomgr.UTXO, 0, len(results))
	for _, result := range results {
		utxo, err := unspentToUTXO(result.TxID, result.Vout,
			result.Amount, result.ScriptPubKey, result.Confirmations)
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, utxo)
	}

	log.Debugf("Node reported %d unspent output(s) for %s", len(utxos),
		address)
	return utxos, nil
}

// unspentToUTXO converts a single listunspent result into the wallet's UTXO
// representation.  The node reports amounts in decimal BTC; they are
// converted to exact satoshis here, at the boundary, and never used as
// floating point afterwards.
func unspentToUTXO(txid string, vout uint32, amountBTC float64,
	pkScriptHex string, confirmations int64) (utxomgr.UTXO, error) {

	amount, err := utxomgr.AmountFromBTCFloat64(amountBTC)
	if err != nil {
		return utxomgr.UTXO{}, &ServiceError{Op: "listunspent", Err: err}
	}
	pkScript, err := hex.DecodeString(pkScriptHex)
	if err != nil {
		return utxomgr.UTXO{}, &ServiceError{Op: "listunspent", Err: err}
	}

	return utxomgr.UTXO{
		TxID:          txid,
		Vout:          vout,
		Amount:        amount,
		PkScript:      pkScript,
		Confirmations: confirmations,
	}, nil
}

// prevTx is the previous output detail the node requires to sign an input it
// has no index entry for.  The amount is decimal BTC, matching the node's
// JSON conventions.
type prevTx struct {
	TxID         string  `json:"txid"`
	Vout         uint32  `json:"vout"`
	ScriptPubKey string  `json:"scriptPubKey"`
	Amount       float64 `json:"amount"`
}

// prevTxFromUTXO builds the signing hint for a consumed output.
func prevTxFromUTXO(utxo utxomgr.UTXO) prevTx {
	return prevTx{
		TxID:         utxo.TxID,
		Vout:         utxo.Vout,
		ScriptPubKey: hex.EncodeToString(utxo.PkScript),
		Amount:       utxo.Amount.ToBTC(),
	}
}

// SignResult is the node's answer to a signing request.  Complete reports
// whether every input is fully signed.  A false Complete is not an error:
// Hex still carries the partially signed transaction and Errors the node's
// per-input failure details, so a caller can continue a partial-signing
// workflow.
type SignResult struct {
	Hex      string           `json:"hex"`
	Complete bool             `json:"complete"`
	Errors   []SignInputError `json:"errors"`
}

// parseSignResult decodes the node's signrawtransactionwithkey response.
func parseSignResult(response []byte) (*SignResult, error) {
	var result SignResult
	if err := json.Unmarshal(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignTransaction submits an unsigned serialized transaction to the node for
// signing with the given WIF-encoded keys.  The consumed outputs are passed
// along as signing hints so the node does not need its own index of them.
// The result is returned even when the signature set is incomplete; the
// per-input failures are logged and left for the caller to act on.
func (c *Client) SignTransaction(txHex string, wifs []string,
	spent []utxomgr.UTXO) (*SignResult, error) {

	prevTxs := make([]prevTx, 0, len(spent))
	for _, utxo := range spent {
		prevTxs = append(prevTxs, prevTxFromUTXO(utxo))
	}

	params := make([]json.RawMessage, 0, 3)
	for _, param := range []interface{}{txHex, wifs, prevTxs} {
		marshaled, err := json.Marshal(param)
		if err != nil {
			return nil, &ServiceError{Op: "sign", Err: err}
		}
		params = append(params, marshaled)
	}

	response, err := c.rpc.RawRequest("signrawtransactionwithkey", params)
	if err != nil {
		return nil, mapRPCError("sign", err)
	}

	result, err := parseSignResult(response)
	if err != nil {
		return nil, &ServiceError{Op: "sign", Err: err}
	}
	if !result.Complete {
		log.Warnf("Node could not fully sign the transaction (%d "+
			"input error(s))", len(result.Errors))
		for _, inputErr := range result.Errors {
			log.Warnf("Input %d of %s not signed: %s",
				inputErr.Vout, inputErr.TxID, inputErr.Message)
		}
	}

	return result, nil
}

// Broadcast relays a fully signed serialized transaction through the node
// and returns the transaction hash the node reports.  Rejections are
// reported as *TxRejectedError.
func (c *Client) Broadcast(txHex string) (string, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return "", &ServiceError{Op: "broadcast", Err: err}
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return "", &ServiceError{Op: "broadcast", Err: err}
	}

	hash, err := c.rpc.SendRawTransaction(&tx, false)
	if err != nil {
		return "", mapRPCError("broadcast", err)
	}

	log.Infof("Broadcast transaction %v", hash)
	return hash.String(), nil
}
