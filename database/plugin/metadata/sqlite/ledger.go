// Copyright 2026 Fleetshare Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite

import (
	"errors"
	"fmt"

	"github.com/fleetshare-labs/covo/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetLedger retrieves a fund ledger by ID. Returns nil if not found.
func (d *MetadataStoreSqlite) GetLedger(
	id uint,
	txn *gorm.DB,
) (*models.FundLedger, error) {
	var ledger models.FundLedger
	if result := d.resolve(txn).First(&ledger, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ledger, nil
}

// GetLedgerByVehicle retrieves the fund ledger for a vehicle.
func (d *MetadataStoreSqlite) GetLedgerByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) (*models.FundLedger, error) {
	var ledger models.FundLedger
	if result := d.resolve(txn).Where(
		"vehicle_id = ?",
		vehicleID,
	).First(&ledger); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ledger, nil
}

// AddLedger creates a fund ledger record.
func (d *MetadataStoreSqlite) AddLedger(
	ledger *models.FundLedger,
	txn *gorm.DB,
) error {
	if result := d.resolve(txn).Create(ledger); result.Error != nil {
		return result.Error
	}
	return nil
}

// DebitLedger performs an atomic read-check-write debit against a fund
// ledger and appends the matching ledger entry. The balance update is
// guarded on the previously read balance value, so two concurrent debits
// can never both apply against the same starting balance; the loser sees
// zero rows affected and the surrounding transaction rolls back.
// Returns models.ErrInsufficientFunds when the balance cannot cover the
// amount; the ledger is left untouched.
func (d *MetadataStoreSqlite) DebitLedger(
	ledgerID uint,
	amount decimal.Decimal,
	proposalID *uint,
	memo string,
	txn *gorm.DB,
) error {
	db := d.resolve(txn)
	ledger, err := d.GetLedger(ledgerID, txn)
	if err != nil {
		return err
	}
	if ledger == nil {
		return models.ErrLedgerNotFound
	}
	if ledger.Balance.LessThan(amount) {
		return models.ErrInsufficientFunds
	}
	newBalance := ledger.Balance.Sub(amount)
	result := db.Model(&models.FundLedger{}).
		Where("id = ? AND balance = ?", ledgerID, ledger.Balance).
		Update("balance", newBalance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Balance moved between read and write
		return fmt.Errorf("concurrent ledger modification: ledger %d", ledgerID)
	}
	entry := &models.LedgerEntry{
		LedgerID:   ledgerID,
		ProposalID: proposalID,
		Direction:  models.LedgerDirectionDebit,
		Amount:     amount,
		Memo:       memo,
	}
	if result := db.Create(entry); result.Error != nil {
		return result.Error
	}
	return nil
}

// CreditLedger performs an atomic credit against a fund ledger and appends
// the matching ledger entry.
func (d *MetadataStoreSqlite) CreditLedger(
	ledgerID uint,
	amount decimal.Decimal,
	proposalID *uint,
	memo string,
	txn *gorm.DB,
) error {
	db := d.resolve(txn)
	ledger, err := d.GetLedger(ledgerID, txn)
	if err != nil {
		return err
	}
	if ledger == nil {
		return models.ErrLedgerNotFound
	}
	newBalance := ledger.Balance.Add(amount)
	result := db.Model(&models.FundLedger{}).
		Where("id = ? AND balance = ?", ledgerID, ledger.Balance).
		Update("balance", newBalance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("concurrent ledger modification: ledger %d", ledgerID)
	}
	entry := &models.LedgerEntry{
		LedgerID:   ledgerID,
		ProposalID: proposalID,
		Direction:  models.LedgerDirectionCredit,
		Amount:     amount,
		Memo:       memo,
	}
	if result := db.Create(entry); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetLedgerEntries retrieves the append-only entry history for a ledger.
func (d *MetadataStoreSqlite) GetLedgerEntries(
	ledgerID uint,
	txn *gorm.DB,
) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if result := d.resolve(txn).Where(
		"ledger_id = ?",
		ledgerID,
	).Order("id").Find(&entries); result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}
