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

import "errors"

var (
	// ErrNotCoOwner is returned when the acting user is not an active
	// co-owner of the proposal's vehicle
	ErrNotCoOwner = errors.New("user is not an active co-owner of the vehicle")

	// ErrNotAuthorized is returned when the acting user is a co-owner but
	// lacks the right to perform the operation (cancel, confirm execution)
	ErrNotAuthorized = errors.New("user is not authorized for this operation")

	// ErrAlreadyVoted is returned when a voter attempts a second vote on
	// the same proposal
	ErrAlreadyVoted = errors.New("voter already voted on proposal")

	// ErrProposalNotPending is returned when voting on or cancelling a
	// proposal that has left the pending status
	ErrProposalNotPending = errors.New("proposal is not pending")

	// ErrNotAwaitingExecution is returned when confirming execution of a
	// proposal that is not in the awaiting-execution status
	ErrNotAwaitingExecution = errors.New("proposal is not awaiting execution")

	// ErrInvalidPayload is returned when a proposal payload fails
	// validation at creation time
	ErrInvalidPayload = errors.New("invalid proposal payload")

	// ErrNoEligibleVoters is returned when a vehicle has no active
	// co-owners at proposal creation
	ErrNoEligibleVoters = errors.New("vehicle has no active co-owners")
)
