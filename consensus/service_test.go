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

package consensus_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/fleetshare-labs/covo/consensus"
	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	db      *database.Database
	service *consensus.Service
	vehicle *models.Vehicle
	ledger  *models.FundLedger
	owners  []uint
}

// setupTest creates an in-memory database seeded with one vehicle, the
// given number of active co-owners holding equal shares, and a fund ledger
// with the given balance
func setupTest(
	t *testing.T,
	ownerCount int,
	balance string,
) *testFixture {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("error closing database: %s", err)
		}
	})
	vehicle := &models.Vehicle{
		Ref:    uuid.NewString(),
		Make:   "Toyota",
		Model:  "Hilux",
		Plate:  uuid.NewString()[:12],
		Active: true,
	}
	require.NoError(t, db.AddVehicle(vehicle, nil))
	owners := make([]uint, 0, ownerCount)
	sharePct := decimal.NewFromInt(100).
		Div(decimal.NewFromInt(int64(ownerCount)))
	for i := range ownerCount {
		userID := uint(1000*int(vehicle.ID) + i + 1)
		owners = append(owners, userID)
		require.NoError(t, db.AddCoOwner(&models.CoOwner{
			VehicleID:  vehicle.ID,
			UserID:     userID,
			SharePct:   sharePct,
			Investment: decimal.NewFromInt(10000),
			Active:     true,
		}, nil))
	}
	ledger := &models.FundLedger{
		VehicleID: vehicle.ID,
		Balance:   decimal.RequireFromString(balance),
	}
	require.NoError(t, db.AddLedger(ledger, nil))
	service, err := consensus.NewService(db, nil)
	require.NoError(t, err)
	return &testFixture{
		db:      db,
		service: service,
		vehicle: vehicle,
		ledger:  ledger,
		owners:  owners,
	}
}

func (f *testFixture) expenditure(amount string) *consensus.ExpenditurePayload {
	return &consensus.ExpenditurePayload{
		LedgerID:        f.ledger.ID,
		Amount:          decimal.RequireFromString(amount),
		CostReferenceID: uuid.NewString(),
	}
}

func (f *testFixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	ledger, err := f.db.GetLedger(f.ledger.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, ledger)
	return ledger.Balance
}

func TestExpenditureMajorityExecutesOnce(t *testing.T) {
	f := setupTest(t, 4, "1000000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("500000"),
	)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, 2, view.RequiredApprovals)
	assert.Equal(t, 1, view.Approvals)
	// Second approval meets ceil(4/2)=2 and triggers execution
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	assert.Equal(t, "executed", view.Status)
	assert.NotNil(t, view.ExecutedAt)
	assert.True(
		t,
		f.balance(t).Equal(decimal.RequireFromString("500000")),
		"balance should be reduced by exactly the approved amount",
	)
	// A late vote lands on a finalized proposal
	_, err = f.service.Vote(view.Ref, f.owners[2], true, "")
	assert.ErrorIs(t, err, consensus.ErrProposalNotPending)
}

func TestExpenditureInsufficientFunds(t *testing.T) {
	f := setupTest(t, 4, "300000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("500000"),
	)
	require.NoError(t, err)
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	assert.Equal(t, "insufficient_funds", view.Status)
	assert.Nil(t, view.ExecutedAt)
	assert.True(
		t,
		f.balance(t).Equal(decimal.RequireFromString("300000")),
		"balance must be left untouched",
	)
	entries, err := f.db.GetLedgerEntries(f.ledger.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReallocationVeto(t *testing.T) {
	f := setupTest(t, 3, "0")
	before, err := f.db.GetActiveCoOwners(f.vehicle.ID, nil)
	require.NoError(t, err)
	payload := reallocationPayload(f, []string{"50", "30", "20"})
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindOwnershipReallocation,
		payload,
	)
	require.NoError(t, err)
	assert.Equal(t, 3, view.RequiredApprovals)
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	view, err = f.service.Vote(view.Ref, f.owners[2], false, "too lopsided")
	require.NoError(t, err)
	assert.Equal(t, "rejected", view.Status)
	// Partition unchanged
	after, err := f.db.GetActiveCoOwners(f.vehicle.ID, nil)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range after {
		assert.True(
			t,
			after[i].SharePct.Equal(before[i].SharePct),
			"share for user %d changed",
			after[i].UserID,
		)
	}
	changes, err := f.db.GetOwnershipChanges(f.vehicle.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestReallocationExecution(t *testing.T) {
	f := setupTest(t, 2, "0")
	payload := reallocationPayload(f, []string{"70", "30"})
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindOwnershipReallocation,
		payload,
	)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	assert.Equal(t, "executed", view.Status)
	coOwners, err := f.db.GetActiveCoOwners(f.vehicle.ID, nil)
	require.NoError(t, err)
	require.Len(t, coOwners, 2)
	sum := decimal.Zero
	for _, coOwner := range coOwners {
		sum = sum.Add(coOwner.SharePct)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100)))
	changes, err := f.db.GetOwnershipChanges(f.vehicle.ID, nil)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestSoleOwnerImmediateExecution(t *testing.T) {
	f := setupTest(t, 1, "800000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("250000"),
	)
	require.NoError(t, err)
	assert.Equal(t, "executed", view.Status)
	assert.Equal(t, 1, view.RequiredApprovals)
	assert.Equal(t, 1, view.Approvals)
	assert.True(
		t,
		f.balance(t).Equal(decimal.RequireFromString("550000")),
	)
}

func TestDuplicateVote(t *testing.T) {
	f := setupTest(t, 4, "1000000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	require.NoError(t, err)
	// The proposer's auto-vote already counts; a second vote from the
	// proposer must be refused
	_, err = f.service.Vote(view.Ref, f.owners[0], false, "")
	assert.ErrorIs(t, err, consensus.ErrAlreadyVoted)
	status, err := f.service.GetStatus(view.Ref, f.owners[0])
	require.NoError(t, err)
	assert.Equal(t, 1, status.Approvals)
	assert.Equal(t, 0, status.Rejections)
	assert.Equal(t, "pending", status.Status)
}

func TestUpgradeTwoPhaseExecution(t *testing.T) {
	f := setupTest(t, 2, "400000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindVehicleUpgrade,
		&consensus.UpgradePayload{
			EstimatedCost: decimal.RequireFromString("300000"),
			Vendor:        "Garage Nord",
		},
	)
	require.NoError(t, err)
	// ceil(2/2)=1, so the proposer's auto-vote approves immediately, but
	// an upgrade only parks awaiting its actual cost
	assert.Equal(t, "awaiting_execution", view.Status)
	assert.Nil(t, view.ExecutedAt)
	// Actual cost exceeds the fund
	view, err = f.service.ConfirmExecution(
		view.Ref,
		f.owners[0],
		decimal.RequireFromString("500000"),
	)
	require.NoError(t, err)
	assert.Equal(t, "insufficient_funds", view.Status)
	assert.Nil(t, view.ExecutedAt)
	assert.True(
		t,
		f.balance(t).Equal(decimal.RequireFromString("400000")),
	)
	// The failure status is terminal
	_, err = f.service.ConfirmExecution(
		view.Ref,
		f.owners[0],
		decimal.RequireFromString("100"),
	)
	assert.ErrorIs(t, err, consensus.ErrNotAwaitingExecution)
}

func TestUpgradeConfirmAuthorization(t *testing.T) {
	f := setupTest(t, 3, "400000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindVehicleUpgrade,
		&consensus.UpgradePayload{
			EstimatedCost: decimal.RequireFromString("1000"),
		},
	)
	require.NoError(t, err)
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	require.Equal(t, "awaiting_execution", view.Status)
	// A non-proposer co-owner cannot confirm
	_, err = f.service.ConfirmExecution(
		view.Ref,
		f.owners[1],
		decimal.RequireFromString("900"),
	)
	assert.ErrorIs(t, err, consensus.ErrNotAuthorized)
	view, err = f.service.ConfirmExecution(
		view.Ref,
		f.owners[0],
		decimal.RequireFromString("900"),
	)
	require.NoError(t, err)
	assert.Equal(t, "executed", view.Status)
	assert.True(
		t,
		f.balance(t).Equal(decimal.RequireFromString("399100")),
	)
}

func TestVetoBeatsLateApprovals(t *testing.T) {
	f := setupTest(t, 4, "1000000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	require.NoError(t, err)
	view, err = f.service.Vote(view.Ref, f.owners[1], false, "no")
	require.NoError(t, err)
	assert.Equal(t, "rejected", view.Status)
	_, err = f.service.Vote(view.Ref, f.owners[2], true, "")
	assert.ErrorIs(t, err, consensus.ErrProposalNotPending)
	assert.True(
		t,
		f.balance(t).Equal(decimal.RequireFromString("1000000")),
	)
}

func TestFrozenThreshold(t *testing.T) {
	f := setupTest(t, 3, "1000000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("1000"),
	)
	require.NoError(t, err)
	require.Equal(t, 2, view.RequiredApprovals)
	// A fourth co-owner joins after creation; the threshold stays at 2
	require.NoError(t, f.db.AddCoOwner(&models.CoOwner{
		VehicleID:  f.vehicle.ID,
		UserID:     f.owners[0] + 100,
		SharePct:   decimal.Zero,
		Investment: decimal.Zero,
		Active:     true,
	}, nil))
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.RequiredApprovals)
	assert.Equal(t, "executed", view.Status)
}

func TestReallocationMembershipDrift(t *testing.T) {
	f := setupTest(t, 2, "0")
	payload := reallocationPayload(f, []string{"60", "40"})
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindOwnershipReallocation,
		payload,
	)
	require.NoError(t, err)
	// Membership changes between creation and the final approval
	require.NoError(t, f.db.AddCoOwner(&models.CoOwner{
		VehicleID:  f.vehicle.ID,
		UserID:     f.owners[0] + 100,
		SharePct:   decimal.Zero,
		Investment: decimal.Zero,
		Active:     true,
	}, nil))
	view, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	require.NoError(t, err)
	assert.Equal(t, "membership_changed", view.Status)
	changes, err := f.db.GetOwnershipChanges(f.vehicle.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestCancellation(t *testing.T) {
	f := setupTest(t, 3, "1000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	require.NoError(t, err)
	// Only the proposer or an administrator may cancel
	_, err = f.service.Cancel(view.Ref, f.owners[1])
	assert.ErrorIs(t, err, consensus.ErrNotAuthorized)
	view, err = f.service.Cancel(view.Ref, f.owners[0])
	require.NoError(t, err)
	assert.Equal(t, "cancelled", view.Status)
	// Cancelling again fails since the proposal is no longer pending
	_, err = f.service.Cancel(view.Ref, f.owners[0])
	assert.ErrorIs(t, err, consensus.ErrProposalNotPending)
	_, err = f.service.Vote(view.Ref, f.owners[1], true, "")
	assert.ErrorIs(t, err, consensus.ErrProposalNotPending)
}

func TestAdminCancel(t *testing.T) {
	f := setupTest(t, 3, "1000")
	adminID := uint(9999)
	service, err := consensus.NewService(f.db, &consensus.ServiceConfig{
		AdminIDs: []uint{adminID},
	})
	require.NoError(t, err)
	view, err := service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	require.NoError(t, err)
	view, err = service.Cancel(view.Ref, adminID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", view.Status)
}

func TestProposeValidation(t *testing.T) {
	f := setupTest(t, 3, "1000")
	// Non-co-owner cannot propose
	_, err := f.service.Propose(
		f.vehicle.Ref,
		uint(424242),
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	assert.ErrorIs(t, err, consensus.ErrNotCoOwner)
	// Amount must be positive
	_, err = f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("-5"),
	)
	assert.ErrorIs(t, err, consensus.ErrInvalidPayload)
	// Reallocation shares must sum to 100
	_, err = f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindOwnershipReallocation,
		reallocationPayload(f, []string{"50", "30", "10"}),
	)
	assert.ErrorIs(t, err, consensus.ErrInvalidPayload)
	// Unknown vehicle
	_, err = f.service.Propose(
		uuid.NewString(),
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	assert.ErrorIs(t, err, models.ErrVehicleNotFound)
}

func TestNonCoOwnerCannotVote(t *testing.T) {
	f := setupTest(t, 3, "1000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	require.NoError(t, err)
	_, err = f.service.Vote(view.Ref, uint(424242), true, "")
	assert.ErrorIs(t, err, consensus.ErrNotCoOwner)
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	f := setupTest(t, 5, "1000000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("100"),
	)
	require.NoError(t, err)
	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := f.service.Vote(view.Ref, f.owners[1], true, "")
			errs[idx] = err
		}(i)
	}
	wg.Wait()
	var successes, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, consensus.ErrAlreadyVoted):
			duplicates++
		default:
			t.Fatalf("unexpected error: %s", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)
	status, err := f.service.GetStatus(view.Ref, f.owners[0])
	require.NoError(t, err)
	assert.Equal(t, 2, status.Approvals)
}

func TestConcurrentThresholdVotesExecuteOnce(t *testing.T) {
	f := setupTest(t, 5, "500000")
	view, err := f.service.Propose(
		f.vehicle.Ref,
		f.owners[0],
		models.ProposalKindFundExpenditure,
		f.expenditure("500000"),
	)
	require.NoError(t, err)
	require.Equal(t, 3, view.RequiredApprovals)
	// Four approvals race; any two of them cross the threshold, but the
	// debit must land exactly once
	var wg sync.WaitGroup
	for _, voter := range f.owners[1:] {
		wg.Add(1)
		go func(voterID uint) {
			defer wg.Done()
			_, err := f.service.Vote(view.Ref, voterID, true, "")
			if err != nil &&
				!errors.Is(err, consensus.ErrProposalNotPending) {
				t.Errorf("unexpected error: %s", err)
			}
		}(voter)
	}
	wg.Wait()
	status, err := f.service.GetStatus(view.Ref, f.owners[0])
	require.NoError(t, err)
	assert.Equal(t, "executed", status.Status)
	assert.True(
		t,
		f.balance(t).Equal(decimal.Zero),
		"balance must be debited exactly once",
	)
	entries, err := f.db.GetLedgerEntries(f.ledger.ID, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// reallocationPayload builds a reallocation covering the fixture's active
// co-owners with the given proposed percentages
func reallocationPayload(
	f *testFixture,
	proposedPcts []string,
) *consensus.ReallocationPayload {
	currentPct := decimal.NewFromInt(100).
		Div(decimal.NewFromInt(int64(len(f.owners))))
	shares := make([]consensus.ReallocationShare, 0, len(f.owners))
	for i, userID := range f.owners {
		shares = append(shares, consensus.ReallocationShare{
			UserID:             userID,
			CurrentPct:         currentPct,
			ProposedPct:        decimal.RequireFromString(proposedPcts[i]),
			CurrentInvestment:  decimal.NewFromInt(10000),
			ProposedInvestment: decimal.NewFromInt(10000),
		})
	}
	return &consensus.ReallocationPayload{Shares: shares}
}
