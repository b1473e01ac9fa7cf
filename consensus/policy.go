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
	"github.com/fleetshare-labs/covo/database/models"
)

// Policy determines the approval threshold for a proposal kind
type Policy uint8

const (
	PolicyMajority Policy = iota
	PolicyUnanimous
)

func (p Policy) String() string {
	switch p {
	case PolicyMajority:
		return "majority"
	case PolicyUnanimous:
		return "unanimous"
	default:
		return "unknown"
	}
}

// Outcome is the result of evaluating the vote tally for a proposal
type Outcome uint8

const (
	OutcomePending Outcome = iota
	OutcomeApproved
	OutcomeRejected
)

// PolicyForKind maps a proposal kind to its quorum policy. Ownership
// reallocations require every co-owner's consent; everything else is a
// majority decision.
func PolicyForKind(kind uint8) Policy {
	if kind == models.ProposalKindOwnershipReallocation {
		return PolicyUnanimous
	}
	return PolicyMajority
}

// RequiredApprovals returns the approval threshold for the given eligible
// voter count. The result is frozen onto the proposal at creation.
func (p Policy) RequiredApprovals(totalEligible int) int {
	if p == PolicyUnanimous {
		return totalEligible
	}
	// ceil(n/2)
	return (totalEligible + 1) / 2
}

// Evaluate maps a vote tally to an outcome. A single rejection vetoes the
// proposal regardless of policy; otherwise the proposal is approved once
// the policy's threshold is met and stays pending until then.
func (p Policy) Evaluate(totalEligible int, approvals int, rejections int) Outcome {
	if rejections >= 1 {
		return OutcomeRejected
	}
	if approvals >= p.RequiredApprovals(totalEligible) {
		return OutcomeApproved
	}
	return OutcomePending
}

// evaluateTally applies the veto rule and a frozen approval threshold to a
// tally. Used on the vote path, where the threshold recorded on the proposal
// at creation governs rather than the current membership count.
func evaluateTally(requiredApprovals int, approvals int, rejections int) Outcome {
	if rejections >= 1 {
		return OutcomeRejected
	}
	if approvals >= requiredApprovals {
		return OutcomeApproved
	}
	return OutcomePending
}
