// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxomgr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// AmountFromBTCString converts a decimal BTC amount, expressed as a string,
// to an exact integer satoshi amount using the fixed scale of 100,000,000
// satoshis per BTC.  Digits beyond the eighth decimal place are truncated,
// never rounded up, so a conversion can never manufacture value.
//
// String parsing is used instead of floating point so amounts such as
// "0.1" convert exactly.
func AmountFromBTCString(s string) (btcutil.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid BTC amount %q", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	wholeUnits, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid BTC amount %q: %v", s, err)
	}

	// Reject out-of-range whole BTC before scaling to satoshis, as the
	// multiplication below would overflow int64 for values far smaller
	// than ParseInt accepts.
	const maxWholeBTC = btcutil.MaxSatoshi / btcutil.SatoshiPerBitcoin
	if wholeUnits > maxWholeBTC {
		return 0, fmt.Errorf("BTC amount %q exceeds maximum", s)
	}

	// Truncate the fractional part to satoshi precision and right-pad it
	// to exactly eight digits.
	if len(frac) > 8 {
		frac = frac[:8]
	}
	fracSats := int64(0)
	if frac != "" {
		fracSats, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || fracSats < 0 {
			return 0, fmt.Errorf("invalid BTC amount %q", s)
		}
		for i := len(frac); i < 8; i++ {
			fracSats *= 10
		}
	}

	sats := wholeUnits*btcutil.SatoshiPerBitcoin + fracSats
	if sats > btcutil.MaxSatoshi {
		return 0, fmt.Errorf("BTC amount %q exceeds maximum", s)
	}
	return btcutil.Amount(sats), nil
}

// AmountFromBTCFloat64 converts a decimal BTC amount received from a JSON-RPC
// boundary to satoshis.  The float is first formatted back to the eight
// decimal places the node serialized, recovering the exact decimal value,
// and then converted with the same truncating rules as AmountFromBTCString.
func AmountFromBTCFloat64(btc float64) (btcutil.Amount, error) {
	return AmountFromBTCString(strconv.FormatFloat(btc, 'f', 8, 64))
}
