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

package models

import (
	"errors"
	"time"
)

var ErrProposalNotFound = errors.New("proposal not found")

// ProposalKind constants represent the kind of change a proposal requests.
const (
	ProposalKindFundExpenditure       = 0
	ProposalKindOwnershipReallocation = 1
	ProposalKindVehicleUpgrade        = 2
)

// ProposalStatus constants. A proposal moves forward-only through these and
// is immutable once it reaches a terminal status.
const (
	ProposalStatusPending           = 0
	ProposalStatusApproved          = 1 // transient: quorum met, effect in flight
	ProposalStatusRejected          = 2
	ProposalStatusCancelled         = 3
	ProposalStatusAwaitingExecution = 4 // upgrades: approved, cost not yet known
	ProposalStatusExecuted          = 5
	ProposalStatusInsufficientFunds = 6 // quorum met but the fund could not cover it
	ProposalStatusMembershipChanged = 7 // reallocation payload no longer matches membership
)

// Proposal is a request to change shared vehicle state that requires
// multi-party approval before taking effect. RequiredApprovals is frozen at
// creation from the co-owner count at that instant; later membership changes
// do not retroactively change the threshold.
type Proposal struct {
	ID                uint   `gorm:"primarykey"`
	Ref               string `gorm:"uniqueIndex;size:36;not null"`
	VehicleID         uint   `gorm:"index;not null"`
	Kind              uint8  `gorm:"index;not null"`
	ProposerID        uint   `gorm:"index;not null"`
	Status            uint8  `gorm:"index;not null"`
	RequiredApprovals int    `gorm:"not null"`
	Payload           []byte `gorm:"not null"` // kind-specific JSON, immutable
	CreatedAt         time.Time
	FinalizedAt       *time.Time
	ExecutedAt        *time.Time
}

func (Proposal) TableName() string {
	return "proposal"
}

// Terminal returns true for statuses that end the proposal lifecycle.
func (p *Proposal) Terminal() bool {
	switch p.Status {
	case ProposalStatusRejected,
		ProposalStatusCancelled,
		ProposalStatusExecuted,
		ProposalStatusInsufficientFunds,
		ProposalStatusMembershipChanged:
		return true
	default:
		return false
	}
}
