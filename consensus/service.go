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
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/fleetshare-labs/covo/event"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the only entry point for proposal lifecycle operations. It
// owns authorization checks, payload validation, quorum evaluation, and
// effect execution; other packages never touch votes or ledger effects
// directly.
type Service struct {
	db            *database.Database
	eventBus      *event.EventBus
	logger        *slog.Logger
	executor      *effectExecutor
	metrics       *serviceMetrics
	proposalLocks *keyedMutex
	admins        map[uint]struct{}
}

// ServiceConfig contains the configuration for a consensus Service
type ServiceConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	// AdminIDs are users allowed to cancel and confirm execution of any
	// proposal in addition to its proposer
	AdminIDs []uint
}

// NewService creates a consensus Service around the given database
func NewService(db *database.Database, cfg *ServiceConfig) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if cfg == nil {
		cfg = &ServiceConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Service{
		db:       db,
		eventBus: cfg.EventBus,
		logger:   logger,
		executor: &effectExecutor{
			db:     db,
			logger: logger,
		},
		proposalLocks: newKeyedMutex(),
		admins:        make(map[uint]struct{}, len(cfg.AdminIDs)),
	}
	for _, id := range cfg.AdminIDs {
		s.admins[id] = struct{}{}
	}
	if cfg.PromRegistry != nil {
		s.initMetrics(cfg.PromRegistry)
	}
	return s, nil
}

func (s *Service) isAdmin(userID uint) bool {
	_, ok := s.admins[userID]
	return ok
}

// Propose validates and persists a new proposal, records the proposer's
// implicit approval, and runs one quorum evaluation pass so a sole owner's
// proposal executes immediately
func (s *Service) Propose(
	vehicleRef string,
	proposerID uint,
	kind uint8,
	payload any,
) (*ProposalView, error) {
	vehicle, err := s.db.GetVehicle(vehicleRef, nil)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}
	isOwner, err := s.db.IsActiveCoOwner(vehicle.ID, proposerID, nil)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNotCoOwner
	}
	owners, err := s.db.GetActiveCoOwners(vehicle.ID, nil)
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, ErrNoEligibleVoters
	}
	if kind == models.ProposalKindFundExpenditure {
		if err := s.checkExpenditureLedger(vehicle.ID, payload); err != nil {
			return nil, err
		}
	}
	data, err := encodePayload(kind, payload, owners)
	if err != nil {
		return nil, err
	}
	policy := PolicyForKind(kind)
	proposal := &models.Proposal{
		Ref:               uuid.NewString(),
		VehicleID:         vehicle.ID,
		Kind:              kind,
		ProposerID:        proposerID,
		Status:            models.ProposalStatusPending,
		RequiredApprovals: policy.RequiredApprovals(len(owners)),
		Payload:           data,
	}
	var votes []models.ProposalVote
	err = s.db.WithTransaction(func(txn *gorm.DB) error {
		if err := s.db.AddProposal(proposal, txn); err != nil {
			return err
		}
		autoVote := &models.ProposalVote{
			ProposalID: proposal.ID,
			VoterID:    proposerID,
			Decision:   models.VoteApprove,
			CastAt:     time.Now(),
		}
		inserted, err := s.db.AddProposalVote(autoVote, txn)
		if err != nil {
			return err
		}
		if !inserted {
			return fmt.Errorf(
				"proposal %s: auto-vote conflict",
				proposal.Ref,
			)
		}
		votes = []models.ProposalVote{*autoVote}
		// Sole-owner edge case: the proposer's own approval may already
		// satisfy the threshold
		outcome := evaluateTally(proposal.RequiredApprovals, 1, 0)
		if outcome == OutcomeApproved {
			return s.finalizeApproved(proposal, txn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.proposalsTotal.WithLabelValues(KindName(kind)).Inc()
	}
	s.logger.Info(
		"proposal created",
		"component", "consensus",
		"proposal", proposal.Ref,
		"vehicle", vehicleRef,
		"kind", KindName(kind),
		"required_approvals", proposal.RequiredApprovals,
	)
	s.publish(event.ProposalCreatedEventType, event.ProposalCreatedEvent{
		ProposalRef:       proposal.Ref,
		VehicleRef:        vehicle.Ref,
		Kind:              kind,
		ProposerID:        proposerID,
		RequiredApprovals: proposal.RequiredApprovals,
	})
	s.afterFinalize(proposal, vehicle.Ref)
	return buildView(proposal, vehicle.Ref, votes), nil
}

// Vote records a decision for an eligible voter and advances the proposal:
// any rejection vetoes it, and the approval that meets the frozen threshold
// triggers effect execution within the same transaction
func (s *Service) Vote(
	proposalRef string,
	voterID uint,
	approve bool,
	comment string,
) (*ProposalView, error) {
	proposal, err := s.db.GetProposal(proposalRef, nil)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	// Serialize the vote-tally-execute sequence per proposal so two
	// concurrent threshold-crossing votes cannot both trigger the effect
	lock := s.proposalLocks.Lock(proposal.ID)
	defer lock.Unlock()
	// Re-read now that we hold the lock; another voter may have finalized
	proposal, err = s.db.GetProposal(proposalRef, nil)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, ErrProposalNotPending
	}
	vehicle, err := s.db.GetVehicleByID(proposal.VehicleID, nil)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}
	isOwner, err := s.db.IsActiveCoOwner(proposal.VehicleID, voterID, nil)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNotCoOwner
	}
	decision := uint8(models.VoteReject)
	if approve {
		decision = models.VoteApprove
	}
	var votes []models.ProposalVote
	err = s.db.WithTransaction(func(txn *gorm.DB) error {
		vote := &models.ProposalVote{
			ProposalID: proposal.ID,
			VoterID:    voterID,
			Decision:   decision,
			Comment:    comment,
			CastAt:     time.Now(),
		}
		inserted, err := s.db.AddProposalVote(vote, txn)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyVoted
		}
		// Recompute the tally from the durable vote records rather than a
		// cached counter
		votes, err = s.db.GetProposalVotes(proposal.ID, txn)
		if err != nil {
			return err
		}
		approvals, rejections := tally(votes)
		switch evaluateTally(proposal.RequiredApprovals, approvals, rejections) {
		case OutcomeRejected:
			return s.finalizeRejected(proposal, txn)
		case OutcomeApproved:
			return s.finalizeApproved(proposal, txn)
		default:
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		label := "reject"
		if approve {
			label = "approve"
		}
		s.metrics.votesTotal.WithLabelValues(label).Inc()
	}
	s.logger.Info(
		"vote recorded",
		"component", "consensus",
		"proposal", proposal.Ref,
		"voter", voterID,
		"approve", approve,
		"status", StatusName(proposal.Status),
	)
	s.publish(event.ProposalVoteEventType, event.ProposalVoteEvent{
		ProposalRef: proposal.Ref,
		VoterID:     voterID,
		Approved:    approve,
	})
	s.afterFinalize(proposal, vehicle.Ref)
	return buildView(proposal, vehicle.Ref, votes), nil
}

// Cancel withdraws a pending proposal. Only the proposer or an
// administrator may cancel, and only while the proposal is pending.
func (s *Service) Cancel(
	proposalRef string,
	requesterID uint,
) (*ProposalView, error) {
	proposal, err := s.db.GetProposal(proposalRef, nil)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	if proposal.ProposerID != requesterID && !s.isAdmin(requesterID) {
		return nil, ErrNotAuthorized
	}
	lock := s.proposalLocks.Lock(proposal.ID)
	defer lock.Unlock()
	now := time.Now()
	ok, err := s.db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusCancelled,
		&now,
		nil,
		nil,
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProposalNotPending
	}
	proposal.Status = models.ProposalStatusCancelled
	proposal.FinalizedAt = &now
	vehicle, err := s.db.GetVehicleByID(proposal.VehicleID, nil)
	if err != nil {
		return nil, err
	}
	votes, err := s.db.GetProposalVotes(proposal.ID, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info(
		"proposal cancelled",
		"component", "consensus",
		"proposal", proposal.Ref,
		"requester", requesterID,
	)
	s.afterFinalize(proposal, vehicle.Ref)
	return buildView(proposal, vehicle.Ref, votes), nil
}

// ConfirmExecution performs the deferred fund deduction for an approved
// upgrade proposal. The actual cost may differ from the estimate; an
// insufficient balance moves the proposal to the insufficient-funds status
// rather than failing the call.
func (s *Service) ConfirmExecution(
	proposalRef string,
	requesterID uint,
	actualCost decimal.Decimal,
) (*ProposalView, error) {
	if !actualCost.IsPositive() {
		return nil, fmt.Errorf(
			"%w: actual cost must be positive",
			ErrInvalidPayload,
		)
	}
	proposal, err := s.db.GetProposal(proposalRef, nil)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	if proposal.ProposerID != requesterID && !s.isAdmin(requesterID) {
		return nil, ErrNotAuthorized
	}
	lock := s.proposalLocks.Lock(proposal.ID)
	defer lock.Unlock()
	// Re-read under the lock; a concurrent confirmation may have won
	proposal, err = s.db.GetProposal(proposalRef, nil)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	if proposal.Status != models.ProposalStatusAwaitingExecution {
		return nil, ErrNotAwaitingExecution
	}
	err = s.db.WithTransaction(func(txn *gorm.DB) error {
		status, err := s.executor.confirm(proposal, actualCost, txn)
		if err != nil {
			return err
		}
		now := time.Now()
		var executedAt *time.Time
		if status == models.ProposalStatusExecuted {
			executedAt = &now
		}
		ok, err := s.db.TransitionProposal(
			proposal.ID,
			models.ProposalStatusAwaitingExecution,
			status,
			&now,
			executedAt,
			txn,
		)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAwaitingExecution
		}
		proposal.Status = status
		proposal.FinalizedAt = &now
		proposal.ExecutedAt = executedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	vehicle, err := s.db.GetVehicleByID(proposal.VehicleID, nil)
	if err != nil {
		return nil, err
	}
	votes, err := s.db.GetProposalVotes(proposal.ID, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info(
		"upgrade execution confirmed",
		"component", "consensus",
		"proposal", proposal.Ref,
		"requester", requesterID,
		"cost", actualCost.String(),
		"status", StatusName(proposal.Status),
	)
	s.afterFinalize(proposal, vehicle.Ref)
	return buildView(proposal, vehicle.Ref, votes), nil
}

// GetStatus returns the read model for a proposal. Visible to active
// co-owners of the vehicle and administrators.
func (s *Service) GetStatus(
	proposalRef string,
	requesterID uint,
) (*ProposalView, error) {
	proposal, err := s.db.GetProposal(proposalRef, nil)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	if !s.isAdmin(requesterID) {
		isOwner, err := s.db.IsActiveCoOwner(
			proposal.VehicleID,
			requesterID,
			nil,
		)
		if err != nil {
			return nil, err
		}
		if !isOwner {
			return nil, ErrNotCoOwner
		}
	}
	vehicle, err := s.db.GetVehicleByID(proposal.VehicleID, nil)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}
	votes, err := s.db.GetProposalVotes(proposal.ID, nil)
	if err != nil {
		return nil, err
	}
	return buildView(proposal, vehicle.Ref, votes), nil
}

// ListProposals returns the read models for all proposals of a vehicle,
// newest first
func (s *Service) ListProposals(
	vehicleRef string,
	requesterID uint,
) ([]*ProposalView, error) {
	vehicle, err := s.db.GetVehicle(vehicleRef, nil)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}
	if !s.isAdmin(requesterID) {
		isOwner, err := s.db.IsActiveCoOwner(vehicle.ID, requesterID, nil)
		if err != nil {
			return nil, err
		}
		if !isOwner {
			return nil, ErrNotCoOwner
		}
	}
	proposals, err := s.db.GetProposalsByVehicle(vehicle.ID, nil)
	if err != nil {
		return nil, err
	}
	views := make([]*ProposalView, 0, len(proposals))
	for _, proposal := range proposals {
		votes, err := s.db.GetProposalVotes(proposal.ID, nil)
		if err != nil {
			return nil, err
		}
		views = append(views, buildView(proposal, vehicle.Ref, votes))
	}
	return views, nil
}

// finalizeApproved moves a pending proposal through the transient approved
// status and applies its effect, all within the given transaction. The
// proposal is never observable as approved without its effect either
// applied or parked in an explicit failure status.
func (s *Service) finalizeApproved(
	proposal *models.Proposal,
	txn *gorm.DB,
) error {
	ok, err := s.db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusApproved,
		nil,
		nil,
		txn,
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProposalNotPending
	}
	status, err := s.executor.apply(proposal, txn)
	if err != nil {
		return err
	}
	now := time.Now()
	var executedAt *time.Time
	if status == models.ProposalStatusExecuted {
		executedAt = &now
	}
	ok, err = s.db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusApproved,
		status,
		&now,
		executedAt,
		txn,
	)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf(
			"proposal %s: lost approved status during execution",
			proposal.Ref,
		)
	}
	proposal.Status = status
	proposal.FinalizedAt = &now
	proposal.ExecutedAt = executedAt
	return nil
}

func (s *Service) finalizeRejected(
	proposal *models.Proposal,
	txn *gorm.DB,
) error {
	now := time.Now()
	ok, err := s.db.TransitionProposal(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusRejected,
		&now,
		nil,
		txn,
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProposalNotPending
	}
	proposal.Status = models.ProposalStatusRejected
	proposal.FinalizedAt = &now
	return nil
}

// afterFinalize emits the finalized event and metric once a proposal has
// reached a terminal status. Safe to call with a non-terminal proposal.
func (s *Service) afterFinalize(proposal *models.Proposal, vehicleRef string) {
	if !proposal.Terminal() {
		return
	}
	if s.metrics != nil {
		s.metrics.finalizedTotal.
			WithLabelValues(StatusName(proposal.Status)).
			Inc()
	}
	s.publish(event.ProposalFinalizedEventType, event.ProposalFinalizedEvent{
		ProposalRef: proposal.Ref,
		VehicleRef:  vehicleRef,
		Kind:        proposal.Kind,
		Status:      proposal.Status,
	})
}

// publish sends a notification event without blocking the request path.
// Delivery failures never roll back committed state.
func (s *Service) publish(eventType event.EventType, data any) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.PublishAsync(eventType, event.NewEvent(eventType, data))
}

func (s *Service) checkExpenditureLedger(vehicleID uint, payload any) error {
	p, ok := payload.(*ExpenditurePayload)
	if !ok {
		return fmt.Errorf(
			"%w: expected expenditure payload",
			ErrInvalidPayload,
		)
	}
	ledger, err := s.db.GetLedger(p.LedgerID, nil)
	if err != nil {
		return err
	}
	if ledger == nil || ledger.VehicleID != vehicleID {
		return fmt.Errorf(
			"%w: ledger does not belong to vehicle",
			ErrInvalidPayload,
		)
	}
	return nil
}
