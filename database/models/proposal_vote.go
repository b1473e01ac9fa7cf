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

var ErrDuplicateVote = errors.New("voter already voted on proposal")

// Vote decision constants.
const (
	VoteReject  = 0
	VoteApprove = 1
)

// ProposalVote is one party's vote on a proposal. The unique index on
// (ProposalID, VoterID) enforces at-most-one-vote per voter per proposal at
// write time; rows are insert-only and never revised.
type ProposalVote struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint   `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:1;index;not null"`
	VoterID    uint   `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:2;not null"`
	Decision   uint8  `gorm:"not null"` // 0=reject, 1=approve
	Comment    string `gorm:"size:512"`
	CastAt     time.Time
}

func (ProposalVote) TableName() string {
	return "proposal_vote"
}
