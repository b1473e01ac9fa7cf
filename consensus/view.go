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
	"time"

	"github.com/fleetshare-labs/covo/database/models"
)

// VoteView is one recorded vote as presented to participants
type VoteView struct {
	VoterID  uint      `json:"voterId"`
	Approved bool      `json:"approved"`
	Comment  string    `json:"comment,omitempty"`
	CastAt   time.Time `json:"castAt"`
}

// ProposalView is the read model returned by the service facade: the
// proposal, its tallies, and per-voter vote visibility
type ProposalView struct {
	Ref               string          `json:"ref"`
	VehicleRef        string          `json:"vehicleRef"`
	Kind              string          `json:"kind"`
	ProposerID        uint            `json:"proposerId"`
	Status            string          `json:"status"`
	RequiredApprovals int             `json:"requiredApprovals"`
	Approvals         int             `json:"approvals"`
	Rejections        int             `json:"rejections"`
	Payload           json.RawMessage `json:"payload"`
	CreatedAt         time.Time       `json:"createdAt"`
	FinalizedAt       *time.Time      `json:"finalizedAt,omitempty"`
	ExecutedAt        *time.Time      `json:"executedAt,omitempty"`
	Votes             []VoteView      `json:"votes"`
}

// KindName returns the string form of a proposal kind
func KindName(kind uint8) string {
	switch kind {
	case models.ProposalKindFundExpenditure:
		return "fund_expenditure"
	case models.ProposalKindOwnershipReallocation:
		return "ownership_reallocation"
	case models.ProposalKindVehicleUpgrade:
		return "vehicle_upgrade"
	default:
		return "unknown"
	}
}

// KindFromName returns the proposal kind for its string form
func KindFromName(name string) (uint8, bool) {
	switch name {
	case "fund_expenditure":
		return models.ProposalKindFundExpenditure, true
	case "ownership_reallocation":
		return models.ProposalKindOwnershipReallocation, true
	case "vehicle_upgrade":
		return models.ProposalKindVehicleUpgrade, true
	default:
		return 0, false
	}
}

// StatusName returns the string form of a proposal status
func StatusName(status uint8) string {
	switch status {
	case models.ProposalStatusPending:
		return "pending"
	case models.ProposalStatusApproved:
		return "approved"
	case models.ProposalStatusRejected:
		return "rejected"
	case models.ProposalStatusCancelled:
		return "cancelled"
	case models.ProposalStatusAwaitingExecution:
		return "awaiting_execution"
	case models.ProposalStatusExecuted:
		return "executed"
	case models.ProposalStatusInsufficientFunds:
		return "insufficient_funds"
	case models.ProposalStatusMembershipChanged:
		return "membership_changed"
	default:
		return "unknown"
	}
}

func tally(votes []models.ProposalVote) (approvals int, rejections int) {
	for _, vote := range votes {
		if vote.Decision == models.VoteApprove {
			approvals++
		} else {
			rejections++
		}
	}
	return approvals, rejections
}

func buildView(
	proposal *models.Proposal,
	vehicleRef string,
	votes []models.ProposalVote,
) *ProposalView {
	approvals, rejections := tally(votes)
	voteViews := make([]VoteView, 0, len(votes))
	for _, vote := range votes {
		voteViews = append(voteViews, VoteView{
			VoterID:  vote.VoterID,
			Approved: vote.Decision == models.VoteApprove,
			Comment:  vote.Comment,
			CastAt:   vote.CastAt,
		})
	}
	return &ProposalView{
		Ref:               proposal.Ref,
		VehicleRef:        vehicleRef,
		Kind:              KindName(proposal.Kind),
		ProposerID:        proposal.ProposerID,
		Status:            StatusName(proposal.Status),
		RequiredApprovals: proposal.RequiredApprovals,
		Approvals:         approvals,
		Rejections:        rejections,
		Payload:           json.RawMessage(proposal.Payload),
		CreatedAt:         proposal.CreatedAt,
		FinalizedAt:       proposal.FinalizedAt,
		ExecutedAt:        proposal.ExecutedAt,
		Votes:             voteViews,
	}
}
