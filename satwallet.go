// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/satwallet/satwallet/chain"
	"github.com/satwallet/satwallet/internal/prompt"
	"github.com/satwallet/satwallet/internal/zero"
	"github.com/satwallet/satwallet/keystore"
	"github.com/satwallet/satwallet/ledger"
	"github.com/satwallet/satwallet/netparams"
	"github.com/satwallet/satwallet/wallet"
	"github.com/satwallet/satwallet/wallet/utxomgr"
)

func main() {
	if err := walletMain(); err != nil {
		os.Exit(1)
	}
}

// usage prints the supported commands to stderr.
func usage() {
	fmt.Fprintln(os.Stderr, `Commands:
  genkey                     Generate a new key and encrypted key file
  importkey                  Import a WIF private key into an encrypted key file
  address                    Show the wallet address
  balance [address]          Show the confirmed spendable balance
  send <address> <amount>    Send the BTC-denominated amount to an address
  history                    Show sent transactions`)
}

// walletMain is a work-around main function that is required since deferred
// functions (such as log flushing) are not called with calls to os.Exit.
// Instead, main runs this function and checks for a non-nil error, at which
// point any defers have already run, and if the error is non-nil, the program
// can be exited with an error exit status.
func walletMain() error {
	cfg, activeNet, args, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	if len(args) == 0 {
		usage()
		return fmt.Errorf("no command specified")
	}
	command, args := args[0], args[1:]

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		log.Errorf("Unable to create data directory: %v", err)
		return err
	}

	store, err := ledger.Open(filepath.Join(cfg.DataDir, defaultDBFilename))
	if err != nil {
		log.Errorf("Unable to open ledger: %v", err)
		return err
	}
	defer store.Close()

	// Only the commands that talk to a node get an RPC client.
	var chainClient *chain.Client
	var w *wallet.Wallet
	switch command {
	case "send", "balance":
		chainClient, err = chain.NewClient(activeNet, &chain.Config{
			Host: cfg.RPCConnect,
			User: cfg.RPCUser,
			Pass: cfg.RPCPass,
		})
		if err != nil {
			log.Errorf("Unable to create node RPC client: %v", err)
			return err
		}
		defer chainClient.Shutdown()
		w = wallet.New(activeNet, chainClient, store)

	default:
		w = wallet.New(activeNet, nil, store)
	}

	log.Infof("Running command %q on %s", command, activeNet.Name)

	switch command {
	case "genkey":
		err = genKey(cfg, w)
	case "importkey":
		err = importKey(cfg, w)
	case "address":
		err = showAddress(cfg, w)
	case "balance":
		err = showBalance(cfg, w, args)
	case "send":
		err = sendFunds(cfg, activeNet, w, args)
	case "history":
		err = showHistory(cfg, w)
	default:
		usage()
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		log.Errorf("Command %q failed: %v", command, err)
		return err
	}
	return nil
}

// loadWalletKey prompts for the key file passphrase and decrypts the
// configured key file.
func loadWalletKey(cfg *config, w *wallet.Wallet) (*keystore.KeyMaterial, error) {
	pass, err := prompt.Passphrase("key file passphrase", false)
	if err != nil {
		return nil, err
	}
	defer zero.Bytes(pass)

	return w.LoadKey(cfg.KeyFile, pass)
}

func genKey(cfg *config, w *wallet.Wallet) error {
	addrType, err := keystore.ParseAddressType(cfg.AddressType)
	if err != nil {
		return err
	}

	// Refuse to clobber an existing key file: the key inside may control
	// funds and would be unrecoverable.
	if _, err := os.Stat(cfg.KeyFile); err == nil {
		return fmt.Errorf("key file %s already exists; refusing to "+
			"overwrite it", cfg.KeyFile)
	}

	pass, err := prompt.Passphrase("encryption passphrase", true)
	if err != nil {
		return err
	}
	defer zero.Bytes(pass)

	km, err := w.CreateKey(addrType, cfg.KeyFile, pass, cfg.Label)
	if err != nil {
		return err
	}
	defer km.Zero()

	fmt.Printf("Generated %s address: %s\n", km.AddressType, km.Address)
	fmt.Printf("Encrypted key file: %s\n", cfg.KeyFile)
	return nil
}

func importKey(cfg *config, w *wallet.Wallet) error {
	addrType, err := keystore.ParseAddressType(cfg.AddressType)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.KeyFile); err == nil {
		return fmt.Errorf("key file %s already exists; refusing to "+
			"overwrite it", cfg.KeyFile)
	}

	wif, err := prompt.Secret("WIF private key")
	if err != nil {
		return err
	}
	defer zero.Bytes(wif)

	pass, err := prompt.Passphrase("encryption passphrase", true)
	if err != nil {
		return err
	}
	defer zero.Bytes(pass)

	km, err := w.ImportKey(string(wif), addrType, cfg.KeyFile, pass,
		cfg.Label)
	if err != nil {
		return err
	}
	defer km.Zero()

	fmt.Printf("Imported %s address: %s\n", km.AddressType, km.Address)
	fmt.Printf("Encrypted key file: %s\n", cfg.KeyFile)
	return nil
}

func showAddress(cfg *config, w *wallet.Wallet) error {
	km, err := loadWalletKey(cfg, w)
	if err != nil {
		return err
	}
	defer km.Zero()

	fmt.Printf("Address: %s (%s, %s)\n", km.Address, km.AddressType,
		km.Network)
	return nil
}

func showBalance(cfg *config, w *wallet.Wallet, args []string) error {
	var address string
	if len(args) > 0 {
		address = args[0]
	} else {
		km, err := loadWalletKey(cfg, w)
		if err != nil {
			return err
		}
		km.Zero()
		address = km.Address
	}

	total, count, err := w.Balance(address, cfg.MinConf)
	if err != nil {
		return err
	}

	fmt.Printf("Balance of %s: %v in %d output(s) with %d+ "+
		"confirmation(s)\n", address, total, count, cfg.MinConf)
	return nil
}

func sendFunds(cfg *config, net *netparams.Params, w *wallet.Wallet,
	args []string) error {

	if len(args) != 2 {
		return fmt.Errorf("send requires a recipient address and a " +
			"BTC-denominated amount")
	}
	recipient := args[0]

	amount, err := utxomgr.AmountFromBTCString(args[1])
	if err != nil {
		return err
	}

	km, err := loadWalletKey(cfg, w)
	if err != nil {
		return err
	}
	defer km.Zero()

	result, err := w.Send(km, recipient, amount,
		btcutil.Amount(cfg.FeeRate), cfg.MinConf, cfg.Notes)
	if err != nil {
		return err
	}

	fmt.Printf("Sent %v to %s on %s\n", result.Amount, recipient, net.Name)
	fmt.Printf("Transaction: %s\n", result.TxID)
	fmt.Printf("Fee: %v (%d sat/vB)\n", result.Fee, cfg.FeeRate)
	if result.ChangeIndex >= 0 {
		change := result.TotalInput - result.Amount - result.Fee
		fmt.Printf("Change: %v back to %s\n", change, km.Address)
	}
	return nil
}

func showHistory(cfg *config, w *wallet.Wallet) error {
	recs, err := w.History(cfg.Limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No sent transactions recorded.")
		return nil
	}

	for _, rec := range recs {
		fmt.Printf("%s  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.TxID)
		fmt.Printf("    %v to %s (fee %v, %s)\n", rec.Amount,
			rec.Recipient, rec.Fee, rec.Status)
		if rec.Notes != "" {
			fmt.Printf("    %s\n", rec.Notes)
		}
	}
	return nil
}
