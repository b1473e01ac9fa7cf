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

var ErrCoOwnerNotFound = errors.New("co-owner not found")

// CoOwner represents one party's share in a vehicle. The set of active
// rows for a vehicle forms its ownership partition; the share percentages
// of that set must sum to 100.
type CoOwner struct {
	ID         uint            `gorm:"primarykey"`
	VehicleID  uint            `gorm:"uniqueIndex:idx_co_owner_vehicle_user,priority:1;not null"`
	UserID     uint            `gorm:"uniqueIndex:idx_co_owner_vehicle_user,priority:2;index;not null"`
	SharePct   decimal.Decimal `gorm:"type:decimal(8,3);not null"`
	Investment decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Active     bool            `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CoOwner) TableName() string {
	return "co_owner"
}

// OwnershipChange is one row of the append-only audit trail written when a
// reallocation proposal is executed. Rows are never updated or deleted.
type OwnershipChange struct {
	ID             uint            `gorm:"primarykey"`
	VehicleID      uint            `gorm:"index;not null"`
	ProposalID     uint            `gorm:"index;not null"`
	UserID         uint            `gorm:"index;not null"`
	PrevPct        decimal.Decimal `gorm:"type:decimal(8,3);not null"`
	NewPct         decimal.Decimal `gorm:"type:decimal(8,3);not null"`
	PrevInvestment decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	NewInvestment  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	ActorID        uint            `gorm:"not null"`
	CreatedAt      time.Time
}

func (OwnershipChange) TableName() string {
	return "ownership_change"
}
