// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
)

// ServiceError describes a failure to reach or query the RPC service:
// connection refused, authentication failure, timeouts, or malformed
// responses.  It is distinct from TxRejectedError, which means the service
// was reached and refused the transaction.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("rpc service error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying RPC error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// TxRejectedError describes a transaction that the node accepted for
// evaluation and refused to relay, for example due to policy or consensus
// rules.
type TxRejectedError struct {
	Code    btcjson.RPCErrorCode
	Message string
}

func (e *TxRejectedError) Error() string {
	return fmt.Sprintf("transaction rejected by node (code %d): %s",
		e.Code, e.Message)
}

// SigningIncompleteError describes a signing request the node processed but
// could not fully complete, usually because a supplied key does not control
// one of the inputs.  PartialTx carries the partially signed transaction the
// node produced, so the signing workflow can be continued elsewhere.
type SigningIncompleteError struct {
	PartialTx string
	Errors    []SignInputError
}

func (e *SigningIncompleteError) Error() string {
	if len(e.Errors) == 0 {
		return "signing incomplete: not all inputs could be signed"
	}
	return fmt.Sprintf("signing incomplete: input %d of %s: %s",
		e.Errors[0].Vout, e.Errors[0].TxID, e.Errors[0].Message)
}

// SignInputError is the per-input failure detail a node reports for a
// signing request it could not fully complete.
type SignInputError struct {
	TxID    string `json:"txid"`
	Vout    uint32 `json:"vout"`
	Message string `json:"error"`
}

// mapRPCError converts an error from the RPC client into the package error
// taxonomy for the operations that submit a transaction to the node (sign
// and broadcast): node-reported errors there mean the node evaluated and
// refused the transaction and become *TxRejectedError, everything else
// (transport, auth, decode) becomes a *ServiceError.  Query operations never
// use this mapping; their failures are always service errors.
func mapRPCError(op string, err error) error {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		return &TxRejectedError{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
		}
	}
	return &ServiceError{Op: op, Err: err}
}
