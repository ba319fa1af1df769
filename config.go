// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/satwallet/satwallet/netparams"
	"github.com/satwallet/satwallet/wallet/txsizes"
)

const (
	defaultConfigFilename = "satwallet.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "satwallet.log"
	defaultKeyFilename    = "key.enc"
	defaultDBFilename     = "ledger.sqlite"
	defaultMinConf        = 1
	defaultHistoryLimit   = 50
)

var (
	satwalletHomeDir  = btcutil.AppDataDir("satwallet", false)
	defaultConfigFile = filepath.Join(satwalletHomeDir, defaultConfigFilename)
	defaultDataDir    = satwalletHomeDir
	defaultLogDir     = filepath.Join(satwalletHomeDir, defaultLogDirname)
)

type config struct {
	// General application behavior
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store the key file and ledger database"`
	TestNet     bool   `long:"testnet" description:"Use the test network (default mainnet)"`
	RegTest     bool   `long:"regtest" description:"Use the local regression test network (default mainnet)"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogDir      string `long:"logdir" description:"Directory to log output"`

	// Key options
	KeyFile     string `long:"keyfile" description:"Path to the encrypted key file"`
	AddressType string `long:"addresstype" description:"Address type for generated or imported keys (p2pkh or p2wpkh)"`
	Label       string `long:"label" description:"Label to record with a new key"`

	// RPC client options
	RPCConnect string `short:"c" long:"rpcconnect" description:"Hostname/IP and port of the bitcoin node RPC server (default localhost:8332, testnet: localhost:18332, regtest: localhost:18443)"`
	RPCUser    string `short:"u" long:"rpcuser" description:"Username for node RPC authentication"`
	RPCPass    string `short:"P" long:"rpcpass" default-mask:"-" description:"Password for node RPC authentication"`

	// Transaction options
	FeeRate int64  `long:"feerate" description:"Fee rate in satoshis per virtual byte"`
	MinConf int    `long:"minconf" description:"Minimum confirmations an output needs to be spendable"`
	Notes   string `long:"notes" description:"Free-form note to record with a sent transaction"`
	Limit   int    `long:"limit" description:"Maximum number of history entries to display"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(satwalletHomeDir)
		if u, err := user.Current(); err == nil {
			homeDir = u.HomeDir
		}
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//	1) Start with a default config with sane settings
//	2) Pre-parse the command line to check for an alternative config file
//	3) Load configuration file overwriting defaults with any specified options
//	4) Parse CLI options and overwrite/add any specified options
//
// The above results in satwallet functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.
func loadConfig() (*config, *netparams.Params, []string, error) {
	cfg := config{
		ConfigFile:  defaultConfigFile,
		DataDir:     defaultDataDir,
		DebugLevel:  defaultLogLevel,
		LogDir:      defaultLogDir,
		AddressType: "p2wpkh",
		FeeRate:     int64(txsizes.DefaultFeeRatePerVByte),
		MinConf:     defaultMinConf,
		Limit:       defaultHistoryLimit,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			preParser.WriteHelp(os.Stderr)
		}
		return nil, nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Printf("%s version %s\n", appName, version())
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	err = flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, nil, err
		}
		// A missing config file is fine unless one was explicitly set.
		if preCfg.ConfigFile != defaultConfigFile {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	args, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, nil, err
	}

	// Multiple networks can't be selected simultaneously.
	numNets := 0
	activeNet := &netparams.MainNetParams
	if cfg.TestNet {
		activeNet = &netparams.TestNet3Params
		numNets++
	}
	if cfg.RegTest {
		activeNet = &netparams.RegressionNetParams
		numNets++
	}
	if numNets > 1 {
		err := fmt.Errorf("the testnet and regtest params can't be " +
			"used together -- choose one")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, nil, err
	}

	// Network-specific data lives in its own subdirectory so switching
	// networks never mixes keys or ledger records.
	cfg.DataDir = filepath.Join(cleanAndExpandPath(cfg.DataDir),
		activeNet.Name)
	if cfg.KeyFile == "" {
		cfg.KeyFile = filepath.Join(cfg.DataDir, defaultKeyFilename)
	} else {
		cfg.KeyFile = cleanAndExpandPath(cfg.KeyFile)
	}
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir),
		activeNet.Name)

	if cfg.RPCConnect == "" {
		cfg.RPCConnect = net.JoinHostPort("localhost",
			activeNet.RPCServerPort)
	}

	if cfg.FeeRate <= 0 {
		err := fmt.Errorf("feerate must be a positive number of "+
			"satoshis per virtual byte: %d", cfg.FeeRate)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, nil, err
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", "loadConfig", err.Error())
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, nil, err
	}

	return &cfg, activeNet, args, nil
}
