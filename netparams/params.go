// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netparams

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Params is used to group parameters for the various networks the wallet can
// run against, such as the main network and test networks.
type Params struct {
	*chaincfg.Params

	// Name is the identifier used on the command line and in the key and
	// ledger records ("mainnet", "testnet" or "regtest").  It differs from
	// chaincfg's internal naming for the test networks.
	Name string

	// RPCServerPort is the default JSON-RPC port of a full node running on
	// this network.
	RPCServerPort string
}

// MainNetParams contains parameters specific to running against a node on the
// main network (wire.MainNet).
var MainNetParams = Params{
	Params:        &chaincfg.MainNetParams,
	Name:          "mainnet",
	RPCServerPort: "8332",
}

// TestNet3Params contains parameters specific to running against a node on
// the test network (version 3) (wire.TestNet3).
var TestNet3Params = Params{
	Params:        &chaincfg.TestNet3Params,
	Name:          "testnet",
	RPCServerPort: "18332",
}

// RegressionNetParams contains parameters specific to running against a node
// on the local regression test network.
var RegressionNetParams = Params{
	Params:        &chaincfg.RegressionNetParams,
	Name:          "regtest",
	RPCServerPort: "18443",
}

// ErrUnsupportedNetwork describes a network identifier that does not name one
// of the supported networks.
type ErrUnsupportedNetwork struct {
	Network string
}

func (e *ErrUnsupportedNetwork) Error() string {
	return fmt.Sprintf("unsupported network %q: must be one of mainnet, "+
		"testnet or regtest", e.Network)
}

// Resolve maps a network identifier to its parameters.  The identifier must
// name one of the three supported networks, otherwise an
// *ErrUnsupportedNetwork is returned.
func Resolve(name string) (*Params, error) {
	switch name {
	case "mainnet":
		return &MainNetParams, nil
	case "testnet":
		return &TestNet3Params, nil
	case "regtest":
		return &RegressionNetParams, nil
	}
	return nil, &ErrUnsupportedNetwork{Network: name}
}
