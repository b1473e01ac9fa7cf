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

package database_test

import (
	"testing"
	"time"

	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbConfig = &database.Config{
	Logger:       nil,
	PromRegistry: nil,
	DataDir:      "",
}

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %s", err)
		}
	})
	return db
}

func newTestVehicle(t *testing.T, db *database.Database) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		Ref:    uuid.NewString(),
		Make:   "Toyota",
		Model:  "Corolla",
		Plate:  uuid.NewString()[:12],
		Active: true,
	}
	require.NoError(t, db.AddVehicle(vehicle, nil))
	return vehicle
}

// TestInMemorySqliteMultipleTransaction tests that our sqlite connection allows multiple
// concurrent transactions when using in-memory mode. This requires special URI flags, and
// this is mostly making sure that we don't lose them
func TestInMemorySqliteMultipleTransaction(t *testing.T) {
	db := newTestDatabase(t)
	doQuery := func(sleep time.Duration) error {
		txn := db.Transaction()
		if result := txn.First(&models.Vehicle{}); result.Error != nil {
			return result.Error
		}
		time.Sleep(sleep)
		if result := txn.Commit(); result.Error != nil {
			return result.Error
		}
		return nil
	}
	newTestVehicle(t, db)
	// The linter calls us on the lack of error checking, but it's a goroutine...
	//nolint:errcheck
	go doQuery(2 * time.Second)
	time.Sleep(500 * time.Millisecond)
	if err := doQuery(0); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestVehicleNotFound(t *testing.T) {
	db := newTestDatabase(t)
	vehicle, err := db.GetVehicle(uuid.NewString(), nil)
	require.NoError(t, err)
	assert.Nil(t, vehicle)
}

func TestProposalVoteAtMostOnce(t *testing.T) {
	db := newTestDatabase(t)
	vehicle := newTestVehicle(t, db)
	proposal := &models.Proposal{
		Ref:               uuid.NewString(),
		VehicleID:         vehicle.ID,
		Kind:              models.ProposalKindFundExpenditure,
		ProposerID:        71,
		Status:            models.ProposalStatusPending,
		RequiredApprovals: 2,
		Payload:           []byte(`{}`),
	}
	require.NoError(t, db.AddProposal(proposal, nil))

	inserted, err := db.AddProposalVote(&models.ProposalVote{
		ProposalID: proposal.ID,
		VoterID:    71,
		Decision:   models.VoteApprove,
		CastAt:     time.Now(),
	}, nil)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Second vote by the same voter is ignored regardless of decision
	inserted, err = db.AddProposalVote(&models.ProposalVote{
		ProposalID: proposal.ID,
		VoterID:    71,
		Decision:   models.VoteReject,
		CastAt:     time.Now(),
	}, nil)
	require.NoError(t, err)
	assert.False(t, inserted)

	votes, err := db.GetProposalVotes(proposal.ID, nil)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, uint8(models.VoteApprove), votes[0].Decision)
}

func TestTransitionProposalConditional(t *testing.T) {
	db := newTestDatabase(t)
	vehicle := newTestVehicle(t, db)
	proposal := &models.Proposal{
		Ref:               uuid.NewString(),
		VehicleID:         vehicle.ID,
		Kind:              models.ProposalKindFundExpenditure,
		ProposerID:        72,
		Status:            models.ProposalStatusPending,
		RequiredApprovals: 1,
		Payload:           []byte(`{}`),
	}
	require.NoError(t, db.AddProposal(proposal, nil))

	now := time.Now()
	ok, err := db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusApproved,
		nil,
		nil,
		nil,
	)
	require.NoError(t, err)
	assert.True(t, ok)

	// The source status no longer matches, so the transition is a no-op
	ok, err = db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusCancelled,
		&now,
		nil,
		nil,
	)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusApproved,
		models.ProposalStatusExecuted,
		&now,
		&now,
		nil,
	)
	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := db.GetProposalByID(proposal.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, uint8(models.ProposalStatusExecuted), updated.Status)
	require.NotNil(t, updated.FinalizedAt)
	require.NotNil(t, updated.ExecutedAt)
}

func TestLedgerDebitCredit(t *testing.T) {
	db := newTestDatabase(t)
	vehicle := newTestVehicle(t, db)
	ledger := &models.FundLedger{
		VehicleID: vehicle.ID,
		Balance:   decimal.RequireFromString("1000.00"),
	}
	require.NoError(t, db.AddLedger(ledger, nil))

	err := db.DebitLedger(
		ledger.ID,
		decimal.RequireFromString("400.00"),
		nil,
		"maintenance",
		nil,
	)
	require.NoError(t, err)

	// A debit over the remaining balance fails and leaves the balance alone
	err = db.DebitLedger(
		ledger.ID,
		decimal.RequireFromString("600.01"),
		nil,
		"too big",
		nil,
	)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	err = db.CreditLedger(
		ledger.ID,
		decimal.RequireFromString("50.00"),
		nil,
		"contribution",
		nil,
	)
	require.NoError(t, err)

	updated, err := db.GetLedger(ledger.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(
		t,
		updated.Balance.Equal(decimal.RequireFromString("650.00")),
		"expected balance 650.00, got %s",
		updated.Balance,
	)

	// Only the successful operations leave entries behind
	entries, err := db.GetLedgerEntries(ledger.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint8(models.LedgerDirectionDebit), entries[0].Direction)
	assert.Equal(t, uint8(models.LedgerDirectionCredit), entries[1].Direction)
}

func TestBookingOverlapCount(t *testing.T) {
	db := newTestDatabase(t)
	vehicle := newTestVehicle(t, db)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		VehicleID: vehicle.ID,
		UserID:    81,
		StartsAt:  base,
		EndsAt:    base.Add(2 * time.Hour),
		Status:    models.BookingStatusActive,
	}
	require.NoError(t, db.AddBooking(booking, nil))

	// Overlapping window
	count, err := db.CountOverlappingBookings(
		vehicle.ID,
		base.Add(1*time.Hour),
		base.Add(3*time.Hour),
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Back-to-back window does not overlap
	count, err = db.CountOverlappingBookings(
		vehicle.ID,
		base.Add(2*time.Hour),
		base.Add(4*time.Hour),
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	cancelled, err := db.CancelBooking(booking.ID, nil)
	require.NoError(t, err)
	assert.True(t, cancelled)

	// Cancelled bookings no longer block the window
	count, err = db.CountOverlappingBookings(
		vehicle.ID,
		base,
		base.Add(2*time.Hour),
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Cancelling twice is a no-op
	cancelled, err = db.CancelBooking(booking.ID, nil)
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestDocumentRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	vehicle := newTestVehicle(t, db)
	content := []byte("insurance policy PDF bytes")
	document := &models.Document{
		Ref:         uuid.NewString(),
		VehicleID:   vehicle.ID,
		Name:        "insurance.pdf",
		ContentType: "application/pdf",
		UploadedBy:  91,
	}
	require.NoError(t, db.AddDocument(document, content, nil))
	assert.Equal(t, int64(len(content)), document.Size)
	assert.NotEmpty(t, document.BlobKey)

	stored, err := db.GetDocument(document.Ref, nil)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, document.Name, stored.Name)

	got, err := db.GetDocumentContent(stored)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
