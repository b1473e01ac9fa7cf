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
	"testing"

	"github.com/fleetshare-labs/covo/database/models"
	"github.com/stretchr/testify/assert"
)

func TestRequiredApprovals(t *testing.T) {
	testDefs := []struct {
		policy   Policy
		eligible int
		expected int
	}{
		{PolicyMajority, 1, 1},
		{PolicyMajority, 2, 1},
		{PolicyMajority, 3, 2},
		{PolicyMajority, 4, 2},
		{PolicyMajority, 5, 3},
		{PolicyUnanimous, 1, 1},
		{PolicyUnanimous, 3, 3},
		{PolicyUnanimous, 7, 7},
	}
	for _, testDef := range testDefs {
		assert.Equal(
			t,
			testDef.expected,
			testDef.policy.RequiredApprovals(testDef.eligible),
			"policy %s with %d eligible",
			testDef.policy,
			testDef.eligible,
		)
	}
}

func TestEvaluateVeto(t *testing.T) {
	// A single rejection wins regardless of policy or approval count
	assert.Equal(
		t,
		OutcomeRejected,
		PolicyMajority.Evaluate(4, 3, 1),
	)
	assert.Equal(
		t,
		OutcomeRejected,
		PolicyUnanimous.Evaluate(3, 2, 1),
	)
	assert.Equal(
		t,
		OutcomeRejected,
		PolicyMajority.Evaluate(2, 0, 2),
	)
}

func TestEvaluateMajority(t *testing.T) {
	testDefs := []struct {
		eligible  int
		approvals int
		expected  Outcome
	}{
		{4, 1, OutcomePending},
		{4, 2, OutcomeApproved},
		{4, 3, OutcomeApproved},
		{3, 1, OutcomePending},
		{3, 2, OutcomeApproved},
		{1, 1, OutcomeApproved},
	}
	for _, testDef := range testDefs {
		assert.Equal(
			t,
			testDef.expected,
			PolicyMajority.Evaluate(testDef.eligible, testDef.approvals, 0),
			"%d approvals of %d eligible",
			testDef.approvals,
			testDef.eligible,
		)
	}
}

func TestEvaluateUnanimous(t *testing.T) {
	assert.Equal(t, OutcomePending, PolicyUnanimous.Evaluate(3, 2, 0))
	assert.Equal(t, OutcomeApproved, PolicyUnanimous.Evaluate(3, 3, 0))
	assert.Equal(t, OutcomeApproved, PolicyUnanimous.Evaluate(1, 1, 0))
}

func TestPolicyForKind(t *testing.T) {
	assert.Equal(
		t,
		PolicyMajority,
		PolicyForKind(models.ProposalKindFundExpenditure),
	)
	assert.Equal(
		t,
		PolicyUnanimous,
		PolicyForKind(models.ProposalKindOwnershipReallocation),
	)
	assert.Equal(
		t,
		PolicyMajority,
		PolicyForKind(models.ProposalKindVehicleUpgrade),
	)
}

func TestEvaluateTallyFrozenThreshold(t *testing.T) {
	// The frozen threshold governs even when it no longer matches the
	// current membership count
	assert.Equal(t, OutcomeApproved, evaluateTally(2, 2, 0))
	assert.Equal(t, OutcomePending, evaluateTally(2, 1, 0))
	assert.Equal(t, OutcomeRejected, evaluateTally(2, 5, 1))
}
