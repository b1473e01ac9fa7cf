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

package event

// ProposalCreatedEventType is the event type for newly submitted proposals
const ProposalCreatedEventType = EventType("proposal.created")

// ProposalCreatedEvent is emitted when a proposal is accepted for voting.
// The proposer's implicit approval has already been recorded when this event
// is published.
type ProposalCreatedEvent struct {
	// ProposalRef is the public reference of the proposal
	ProposalRef string
	// VehicleRef is the public reference of the vehicle
	VehicleRef string
	// Kind is the proposal kind
	Kind uint8
	// ProposerID is the user who submitted the proposal
	ProposerID uint
	// RequiredApprovals is the approval threshold frozen at creation
	RequiredApprovals int
}

// ProposalVoteEventType is the event type for recorded votes
const ProposalVoteEventType = EventType("proposal.vote")

// ProposalVoteEvent is emitted after a vote has been durably recorded
type ProposalVoteEvent struct {
	// ProposalRef is the public reference of the proposal
	ProposalRef string
	// VoterID is the user who cast the vote
	VoterID uint
	// Approved is true for an approval and false for a rejection
	Approved bool
}

// ProposalFinalizedEventType is the event type for proposals reaching a
// terminal status
const ProposalFinalizedEventType = EventType("proposal.finalized")

// ProposalFinalizedEvent is emitted exactly once per proposal when it
// reaches a terminal status. For approved proposals the effect has already
// been applied when this event is published.
type ProposalFinalizedEvent struct {
	// ProposalRef is the public reference of the proposal
	ProposalRef string
	// VehicleRef is the public reference of the vehicle
	VehicleRef string
	// Kind is the proposal kind
	Kind uint8
	// Status is the terminal status the proposal reached
	Status uint8
}
