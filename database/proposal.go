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
	"time"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetProposal returns a proposal by its public reference
func (d *Database) GetProposal(
	ref string,
	txn *gorm.DB,
) (*models.Proposal, error) {
	return d.metadata.GetProposal(ref, txn)
}

// GetProposalByID returns a proposal by its row ID
func (d *Database) GetProposalByID(
	proposalID uint,
	txn *gorm.DB,
) (*models.Proposal, error) {
	return d.metadata.GetProposalByID(proposalID, txn)
}

// GetProposalsByVehicle returns the proposals for a vehicle, newest first
func (d *Database) GetProposalsByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) ([]*models.Proposal, error) {
	return d.metadata.GetProposalsByVehicle(vehicleID, txn)
}

// AddProposal stores a new proposal record
func (d *Database) AddProposal(
	proposal *models.Proposal,
	txn *gorm.DB,
) error {
	return d.metadata.AddProposal(proposal, txn)
}

// TransitionProposal atomically moves a proposal from one status to another.
// It returns false without error when the proposal was no longer in the
// expected source status.
func (d *Database) TransitionProposal(
	proposalID uint,
	fromStatus uint8,
	toStatus uint8,
	finalizedAt *time.Time,
	executedAt *time.Time,
	txn *gorm.DB,
) (bool, error) {
	return d.metadata.TransitionProposal(
		proposalID,
		fromStatus,
		toStatus,
		finalizedAt,
		executedAt,
		txn,
	)
}

// AddProposalVote records a vote for a proposal. It returns false when the
// voter had already cast a vote for the proposal.
func (d *Database) AddProposalVote(
	vote *models.ProposalVote,
	txn *gorm.DB,
) (bool, error) {
	return d.metadata.AddProposalVote(vote, txn)
}

// GetProposalVotes returns the votes cast for a proposal in cast order
func (d *Database) GetProposalVotes(
	proposalID uint,
	txn *gorm.DB,
) ([]models.ProposalVote, error) {
	return d.metadata.GetProposalVotes(proposalID, txn)
}
