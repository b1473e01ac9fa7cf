// Copyright 2025 Fleetshare Labs
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

package database

import (
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetLedger returns a fund ledger by its row ID
func (d *Database) GetLedger(
	ledgerID uint,
	txn *gorm.DB,
) (*models.FundLedger, error) {
	return d.metadata.GetLedger(ledgerID, txn)
}

// GetLedgerByVehicle returns the fund ledger for a vehicle
func (d *Database) GetLedgerByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) (*models.FundLedger, error) {
	return d.metadata.GetLedgerByVehicle(vehicleID, txn)
}

// AddLedger stores a new fund ledger record
func (d *Database) AddLedger(
	ledger *models.FundLedger,
	txn *gorm.DB,
) error {
	return d.metadata.AddLedger(ledger, txn)
}

// DebitLedger withdraws the given amount from a ledger and records a ledger
// entry. It returns models.ErrInsufficientFunds when the balance does not
// cover the amount.
func (d *Database) DebitLedger(
	ledgerID uint,
	amount decimal.Decimal,
	proposalID *uint,
	memo string,
	txn *gorm.DB,
) error {
	return d.metadata.DebitLedger(ledgerID, amount, proposalID, memo, txn)
}

// CreditLedger deposits the given amount into a ledger and records a ledger
// entry
func (d *Database) CreditLedger(
	ledgerID uint,
	amount decimal.Decimal,
	proposalID *uint,
	memo string,
	txn *gorm.DB,
) error {
	return d.metadata.CreditLedger(ledgerID, amount, proposalID, memo, txn)
}

// GetLedgerEntries returns the entries recorded against a ledger in
// insertion order
func (d *Database) GetLedgerEntries(
	ledgerID uint,
	txn *gorm.DB,
) ([]models.LedgerEntry, error) {
	return d.metadata.GetLedgerEntries(ledgerID, txn)
}
