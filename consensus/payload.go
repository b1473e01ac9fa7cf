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

package consensus

import (
	"encoding/json"
	"fmt"

	"github.com/fleetshare-labs/covo/database/models"
	"github.com/shopspring/decimal"
)

// PartitionTolerance is the maximum deviation from 100 percent allowed for
// a reallocation payload's proposed share sum
var PartitionTolerance = decimal.NewFromFloat(0.001)

var oneHundred = decimal.NewFromInt(100)

// ExpenditurePayload describes a one-time withdrawal from a vehicle's fund
type ExpenditurePayload struct {
	LedgerID        uint            `json:"ledgerId"`
	Amount          decimal.Decimal `json:"amount"`
	CostReferenceID string          `json:"costReferenceId,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// ReallocationShare is one co-owner's entry in a reallocation payload. The
// payload must include every currently-active co-owner exactly once.
type ReallocationShare struct {
	UserID             uint            `json:"userId"`
	CurrentPct         decimal.Decimal `json:"currentPct"`
	ProposedPct        decimal.Decimal `json:"proposedPct"`
	CurrentInvestment  decimal.Decimal `json:"currentInvestment"`
	ProposedInvestment decimal.Decimal `json:"proposedInvestment"`
}

// ReallocationPayload describes a full replacement of a vehicle's
// ownership partition
type ReallocationPayload struct {
	Shares []ReallocationShare `json:"shares"`
}

// UpgradePayload describes a vehicle upgrade whose actual cost is only
// known after the work is performed. Approval flips the proposal to an
// awaiting-execution status; the fund is debited later by an explicit
// execution confirmation carrying the actual cost.
type UpgradePayload struct {
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	Vendor        string          `json:"vendor,omitempty"`
	Description   string          `json:"description,omitempty"`
}

func (p *ExpenditurePayload) validate() error {
	if p.LedgerID == 0 {
		return fmt.Errorf("%w: missing ledger", ErrInvalidPayload)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPayload)
	}
	return nil
}

// validate checks the payload against the vehicle's current active
// co-owners: every co-owner appears exactly once and the proposed share
// percentages sum to 100 within tolerance
func (p *ReallocationPayload) validate(owners []models.CoOwner) error {
	if len(p.Shares) != len(owners) {
		return fmt.Errorf(
			"%w: payload covers %d co-owners, vehicle has %d",
			ErrInvalidPayload,
			len(p.Shares),
			len(owners),
		)
	}
	ownerSet := make(map[uint]struct{}, len(owners))
	for _, owner := range owners {
		ownerSet[owner.UserID] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(p.Shares))
	sum := decimal.Zero
	for _, share := range p.Shares {
		if _, ok := ownerSet[share.UserID]; !ok {
			return fmt.Errorf(
				"%w: user %d is not an active co-owner",
				ErrInvalidPayload,
				share.UserID,
			)
		}
		if _, ok := seen[share.UserID]; ok {
			return fmt.Errorf(
				"%w: duplicate share for user %d",
				ErrInvalidPayload,
				share.UserID,
			)
		}
		seen[share.UserID] = struct{}{}
		if share.ProposedPct.IsNegative() {
			return fmt.Errorf(
				"%w: negative share for user %d",
				ErrInvalidPayload,
				share.UserID,
			)
		}
		if share.ProposedInvestment.IsNegative() {
			return fmt.Errorf(
				"%w: negative investment for user %d",
				ErrInvalidPayload,
				share.UserID,
			)
		}
		sum = sum.Add(share.ProposedPct)
	}
	if sum.Sub(oneHundred).Abs().GreaterThan(PartitionTolerance) {
		return fmt.Errorf(
			"%w: proposed shares sum to %s, expected 100",
			ErrInvalidPayload,
			sum.String(),
		)
	}
	return nil
}

// matchesMembership reports whether the payload's co-owner set still equals
// the vehicle's current active co-owner set. Checked again at execution
// time so a membership change between approval and execution never results
// in a partial reallocation.
func (p *ReallocationPayload) matchesMembership(owners []models.CoOwner) bool {
	if len(p.Shares) != len(owners) {
		return false
	}
	ownerSet := make(map[uint]struct{}, len(owners))
	for _, owner := range owners {
		ownerSet[owner.UserID] = struct{}{}
	}
	for _, share := range p.Shares {
		if _, ok := ownerSet[share.UserID]; !ok {
			return false
		}
	}
	return true
}

func (p *UpgradePayload) validate() error {
	if !p.EstimatedCost.IsPositive() {
		return fmt.Errorf(
			"%w: estimated cost must be positive",
			ErrInvalidPayload,
		)
	}
	return nil
}

// encodePayload validates a kind-specific payload against the vehicle's
// current state and returns its serialized form for storage on the proposal
func encodePayload(
	kind uint8,
	payload any,
	owners []models.CoOwner,
) ([]byte, error) {
	switch kind {
	case models.ProposalKindFundExpenditure:
		p, ok := payload.(*ExpenditurePayload)
		if !ok {
			return nil, fmt.Errorf(
				"%w: expected expenditure payload",
				ErrInvalidPayload,
			)
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return json.Marshal(p)
	case models.ProposalKindOwnershipReallocation:
		p, ok := payload.(*ReallocationPayload)
		if !ok {
			return nil, fmt.Errorf(
				"%w: expected reallocation payload",
				ErrInvalidPayload,
			)
		}
		if err := p.validate(owners); err != nil {
			return nil, err
		}
		return json.Marshal(p)
	case models.ProposalKindVehicleUpgrade:
		p, ok := payload.(*UpgradePayload)
		if !ok {
			return nil, fmt.Errorf(
				"%w: expected upgrade payload",
				ErrInvalidPayload,
			)
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return json.Marshal(p)
	default:
		return nil, fmt.Errorf(
			"%w: unknown proposal kind %d",
			ErrInvalidPayload,
			kind,
		)
	}
}

func decodeExpenditure(data []byte) (*ExpenditurePayload, error) {
	var p ExpenditurePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode expenditure payload: %w", err)
	}
	return &p, nil
}

func decodeReallocation(data []byte) (*ReallocationPayload, error) {
	var p ReallocationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode reallocation payload: %w", err)
	}
	return &p, nil
}

func decodeUpgrade(data []byte) (*UpgradePayload, error) {
	var p UpgradePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode upgrade payload: %w", err)
	}
	return &p, nil
}
