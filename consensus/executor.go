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
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/fleetshare-labs/covo/database/plugin/metadata/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// effectExecutor applies the kind-specific side effect of an approved
// proposal. All mutations happen inside the caller's transaction so the
// status transition and the effect commit or roll back together.
type effectExecutor struct {
	db     *database.Database
	logger *slog.Logger
}

// apply performs the effect for a proposal that has just reached quorum and
// returns the terminal (or awaiting-execution) status the proposal should
// move to. Resource and integrity failures are reported as statuses, not
// errors; an error return means the surrounding transaction must roll back.
func (e *effectExecutor) apply(
	proposal *models.Proposal,
	txn *gorm.DB,
) (uint8, error) {
	switch proposal.Kind {
	case models.ProposalKindFundExpenditure:
		return e.applyExpenditure(proposal, txn)
	case models.ProposalKindOwnershipReallocation:
		return e.applyReallocation(proposal, txn)
	case models.ProposalKindVehicleUpgrade:
		// Cost is only known after the work is done. Approval parks the
		// proposal until an explicit execution confirmation arrives.
		return models.ProposalStatusAwaitingExecution, nil
	default:
		return 0, fmt.Errorf(
			"proposal %s: unknown kind %d",
			proposal.Ref,
			proposal.Kind,
		)
	}
}

func (e *effectExecutor) applyExpenditure(
	proposal *models.Proposal,
	txn *gorm.DB,
) (uint8, error) {
	payload, err := decodeExpenditure(proposal.Payload)
	if err != nil {
		return 0, err
	}
	err = e.db.DebitLedger(
		payload.LedgerID,
		payload.Amount,
		&proposal.ID,
		fmt.Sprintf("expenditure %s", proposal.Ref),
		txn,
	)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			e.logger.Info(
				"expenditure exceeds fund balance",
				"component", "consensus",
				"proposal", proposal.Ref,
				"amount", payload.Amount.String(),
			)
			return models.ProposalStatusInsufficientFunds, nil
		}
		return 0, err
	}
	return models.ProposalStatusExecuted, nil
}

func (e *effectExecutor) applyReallocation(
	proposal *models.Proposal,
	txn *gorm.DB,
) (uint8, error) {
	payload, err := decodeReallocation(proposal.Payload)
	if err != nil {
		return 0, err
	}
	owners, err := e.db.GetActiveCoOwners(proposal.VehicleID, txn)
	if err != nil {
		return 0, err
	}
	// Membership may have drifted between creation and execution. Applying
	// the stale payload would break the partition-sum invariant, so the
	// proposal fails into an explicit status instead.
	if !payload.matchesMembership(owners) {
		e.logger.Info(
			"reallocation no longer matches active co-owners",
			"component", "consensus",
			"proposal", proposal.Ref,
		)
		return models.ProposalStatusMembershipChanged, nil
	}
	shares := make([]sqlite.OwnershipShare, 0, len(payload.Shares))
	changes := make([]models.OwnershipChange, 0, len(payload.Shares))
	for _, share := range payload.Shares {
		shares = append(shares, sqlite.OwnershipShare{
			UserID:     share.UserID,
			SharePct:   share.ProposedPct,
			Investment: share.ProposedInvestment,
		})
		changes = append(changes, models.OwnershipChange{
			VehicleID:      proposal.VehicleID,
			ProposalID:     proposal.ID,
			UserID:         share.UserID,
			PrevPct:        share.CurrentPct,
			NewPct:         share.ProposedPct,
			PrevInvestment: share.CurrentInvestment,
			NewInvestment:  share.ProposedInvestment,
			ActorID:        proposal.ProposerID,
		})
	}
	err = e.db.ReplaceOwnershipPartition(
		proposal.VehicleID,
		shares,
		changes,
		txn,
	)
	if err != nil {
		return 0, err
	}
	return models.ProposalStatusExecuted, nil
}

// confirm performs the deferred fund deduction for an approved upgrade
// proposal using the actual cost supplied by the caller
func (e *effectExecutor) confirm(
	proposal *models.Proposal,
	actualCost decimal.Decimal,
	txn *gorm.DB,
) (uint8, error) {
	ledger, err := e.db.GetLedgerByVehicle(proposal.VehicleID, txn)
	if err != nil {
		return 0, err
	}
	if ledger == nil {
		return 0, models.ErrLedgerNotFound
	}
	err = e.db.DebitLedger(
		ledger.ID,
		actualCost,
		&proposal.ID,
		fmt.Sprintf("upgrade %s", proposal.Ref),
		txn,
	)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			e.logger.Info(
				"upgrade cost exceeds fund balance",
				"component", "consensus",
				"proposal", proposal.Ref,
				"cost", actualCost.String(),
			)
			return models.ProposalStatusInsufficientFunds, nil
		}
		return 0, err
	}
	return models.ProposalStatusExecuted, nil
}
