// Copyright (c) 2025 The satwallet developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger provides durable wallet records in a local SQLite database:
// which addresses the wallet controls and which transactions it has sent.
// The ledger is bookkeeping only; it holds no key material and no funds.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	_ "modernc.org/sqlite"
)

// Transaction status values recorded in the ledger.
const (
	// StatusBroadcast marks a transaction that was relayed to the
	// network but whose confirmation has not been observed.
	StatusBroadcast = "broadcast"

	// StatusConfirmed marks a transaction observed in a block.
	StatusConfirmed = "confirmed"
)

// NotFoundError describes a lookup for a record the ledger does not hold.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s record for %s", e.Kind, e.Key)
}

// DuplicateError describes an insert that collides with an existing record
// on a unique column.
type DuplicateError struct {
	Kind string
	Key  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s record for %s already exists", e.Kind, e.Key)
}

// KeyRecord is the ledger's view of a wallet-controlled address.  The key
// material itself lives in an encrypted keystore file; the ledger records
// only which file and what the address is.
type KeyRecord struct {
	ID          int64
	Address     string
	KeyFile     string
	Label       string
	Network     string
	AddressType string
	CreatedAt   time.Time
}

// TxRecord is a sent-transaction entry.  Amounts are exact satoshis.
type TxRecord struct {
	ID        int64
	TxID      string
	Amount    btcutil.Amount
	Fee       btcutil.Amount
	Recipient string
	Status    string
	Notes     string
	CreatedAt time.Time
}

// Store is a handle to the wallet ledger database.  It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debugf("Ledger opened at %s", path)
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS keys (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT UNIQUE NOT NULL,
		key_file TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		network TEXT NOT NULL,
		address_type TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		txid TEXT UNIQUE NOT NULL,
		amount_sats INTEGER NOT NULL,
		fee_sats INTEGER NOT NULL,
		recipient_address TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);`

	_, err := db.Exec(schema)
	return err
}

// AddKey records a wallet-controlled address.  Re-adding an existing address
// is reported as *DuplicateError and leaves the original record untouched.
func (s *Store) AddKey(rec *KeyRecord) error {
	result, err := s.db.Exec(`INSERT OR IGNORE INTO keys
		(address, key_file, label, network, address_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Address, rec.KeyFile, rec.Label, rec.Network,
		rec.AddressType, time.Now().Unix())
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return &DuplicateError{Kind: "key", Key: rec.Address}
	}

	log.Infof("Recorded key for address %s", rec.Address)
	return nil
}

// KeyByAddress fetches the record for a single address.
func (s *Store) KeyByAddress(address string) (*KeyRecord, error) {
	row := s.db.QueryRow(`SELECT id, address, key_file, label, network,
		address_type, created_at FROM keys WHERE address = ?`, address)

	var rec KeyRecord
	var created int64
	err := row.Scan(&rec.ID, &rec.Address, &rec.KeyFile, &rec.Label,
		&rec.Network, &rec.AddressType, &created)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "key", Key: address}
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(created, 0)
	return &rec, nil
}

// Keys returns all recorded addresses, newest first.
func (s *Store) Keys() ([]KeyRecord, error) {
	rows, err := s.db.Query(`SELECT id, address, key_file, label, network,
		address_type, created_at FROM keys ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []KeyRecord
	for rows.Next() {
		var rec KeyRecord
		var created int64
		err := rows.Scan(&rec.ID, &rec.Address, &rec.KeyFile,
			&rec.Label, &rec.Network, &rec.AddressType, &created)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(created, 0)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// UpdateKeyLabel replaces the label on an existing address record.
func (s *Store) UpdateKeyLabel(address, label string) error {
	result, err := s.db.Exec(`UPDATE keys SET label = ? WHERE address = ?`,
		label, address)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return &NotFoundError{Kind: "key", Key: address}
	}
	return nil
}

// AddTransaction records a sent transaction.  Duplicate transaction hashes
// are reported as *DuplicateError.
func (s *Store) AddTransaction(rec *TxRecord) error {
	result, err := s.db.Exec(`INSERT OR IGNORE INTO transactions
		(txid, amount_sats, fee_sats, recipient_address, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TxID, int64(rec.Amount), int64(rec.Fee), rec.Recipient,
		rec.Status, rec.Notes, time.Now().Unix())
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return &DuplicateError{Kind: "transaction", Key: rec.TxID}
	}

	log.Infof("Recorded transaction %s (%v to %s, fee %v)", rec.TxID,
		rec.Amount, rec.Recipient, rec.Fee)
	return nil
}

// TransactionByTxID fetches the record of a single sent transaction.
func (s *Store) TransactionByTxID(txid string) (*TxRecord, error) {
	row := s.db.QueryRow(`SELECT id, txid, amount_sats, fee_sats,
		recipient_address, status, notes, created_at
		FROM transactions WHERE txid = ?`, txid)

	rec, err := scanTxRecord(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "transaction", Key: txid}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Transactions returns up to limit sent transactions, newest first.  A
// non-positive limit returns all records.
func (s *Store) Transactions(limit int) ([]TxRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}
	rows, err := s.db.Query(`SELECT id, txid, amount_sats, fee_sats,
		recipient_address, status, notes, created_at
		FROM transactions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []TxRecord
	for rows.Next() {
		rec, err := scanTxRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// UpdateTransactionStatus replaces the status on an existing transaction
// record.
func (s *Store) UpdateTransactionStatus(txid, status string) error {
	result, err := s.db.Exec(`UPDATE transactions SET status = ?
		WHERE txid = ?`, status, txid)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return &NotFoundError{Kind: "transaction", Key: txid}
	}
	return nil
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTxRecord(row rowScanner) (*TxRecord, error) {
	var rec TxRecord
	var amount, fee, created int64
	err := row.Scan(&rec.ID, &rec.TxID, &amount, &fee, &rec.Recipient,
		&rec.Status, &rec.Notes, &created)
	if err != nil {
		return nil, err
	}
	rec.Amount = btcutil.Amount(amount)
	rec.Fee = btcutil.Amount(fee)
	rec.CreatedAt = time.Unix(created, 0)
	return &rec, nil
}
