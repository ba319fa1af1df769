// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prompt provides interactive terminal prompts for passphrases and
// secrets.  Input is read without echo when standard input is a terminal.
package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/satwallet/satwallet/internal/zero"
)

// ErrPassphraseMismatch is returned when a confirmation entry does not match
// the first passphrase entry.
var ErrPassphraseMismatch = errors.New("the entered passphrases do not match")

// readPassword reads a line of input without echoing it when standard input
// is a terminal, falling back to plain buffered reads otherwise so the
// prompts remain usable under pipes and tests.
func readPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pass, err := term.ReadPassword(fd)
		fmt.Println()
		return pass, err
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// Passphrase prompts for a non-empty passphrase.  When confirm is true a
// second matching entry is required; a mismatched confirmation wipes both
// entries and reports ErrPassphraseMismatch.
func Passphrase(what string, confirm bool) ([]byte, error) {
	for {
		fmt.Printf("Enter %s: ", what)
		pass, err := readPassword()
		if err != nil {
			return nil, err
		}
		pass = bytes.TrimSpace(pass)
		if len(pass) == 0 {
			fmt.Printf("%s may not be empty.\n", what)
			continue
		}

		if !confirm {
			return pass, nil
		}

		fmt.Printf("Confirm %s: ", what)
		confirmPass, err := readPassword()
		if err != nil {
			zero.Bytes(pass)
			return nil, err
		}
		confirmPass = bytes.TrimSpace(confirmPass)
		if !bytes.Equal(pass, confirmPass) {
			zero.Bytes(pass)
			zero.Bytes(confirmPass)
			return nil, ErrPassphraseMismatch
		}
		zero.Bytes(confirmPass)
		return pass, nil
	}
}

// Secret prompts for a single secret value, such as a WIF key, without echo.
func Secret(what string) ([]byte, error) {
	fmt.Printf("Enter %s: ", what)
	secret, err := readPassword()
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(secret), nil
}
