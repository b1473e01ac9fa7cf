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
	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddProposalVote records a vote on a proposal. The insert and the
// one-vote-per-voter uniqueness check are a single atomic operation: the
// unique index on (proposal_id, voter_id) plus OnConflict DoNothing means
// two concurrent votes from the same voter yield exactly one inserted row.
// Returns false when the voter had already voted.
func (d *MetadataStoreSqlite) AddProposalVote(
	vote *models.ProposalVote,
	txn *gorm.DB,
) (bool, error) {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "voter_id"},
		},
		DoNothing: true,
	}
	result := d.resolve(txn).Clauses(onConflict).Create(vote)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetProposalVotes retrieves all votes for a proposal in cast order.
func (d *MetadataStoreSqlite) GetProposalVotes(
	proposalID uint,
	txn *gorm.DB,
) ([]models.ProposalVote, error) {
	var votes []models.ProposalVote
	if result := d.resolve(txn).Where(
		"proposal_id = ?",
		proposalID,
	).Order("id").Find(&votes); result.Error != nil {
		return nil, result.Error
	}
	return votes, nil
}
