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

package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLedgerNotFound = errors.New("fund ledger not found")

	// ErrInsufficientFunds is returned by conditional debit operations when
	// the ledger balance cannot cover the requested amount. The balance is
	// left untouched.
	ErrInsufficientFunds = errors.New("insufficient ledger balance")
)

// LedgerEntry direction constants.
const (
	LedgerDirectionDebit  = 0
	LedgerDirectionCredit = 1
)

// FundLedger is the shared fund balance for a vehicle. The balance is never
// negative and is only ever mutated by atomic debit/credit operations.
type FundLedger struct {
	ID        uint            `gorm:"primarykey"`
	VehicleID uint            `gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FundLedger) TableName() string {
	return "fund_ledger"
}

// LedgerEntry records one debit or credit against a fund ledger. Entries are
// append-only; the ProposalID links an entry to the proposal whose execution
// caused it, and is nil for direct contributions.
type LedgerEntry struct {
	ID         uint  `gorm:"primarykey"`
	LedgerID   uint  `gorm:"index;not null"`
	ProposalID *uint `gorm:"index"`
	Direction  uint8 `gorm:"not null"` // 0=debit, 1=credit
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Memo       string          `gorm:"size:256"`
	CreatedAt  time.Time
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}
