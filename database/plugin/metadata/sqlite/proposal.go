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
	"errors"
	"time"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetProposal retrieves a proposal by its external reference.
// Returns nil if no proposal matches.
func (d *MetadataStoreSqlite) GetProposal(
	ref string,
	txn *gorm.DB,
) (*models.Proposal, error) {
	var proposal models.Proposal
	if result := d.resolve(txn).Where(
		"ref = ?",
		ref,
	).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposalByID retrieves a proposal by its internal ID.
func (d *MetadataStoreSqlite) GetProposalByID(
	id uint,
	txn *gorm.DB,
) (*models.Proposal, error) {
	var proposal models.Proposal
	if result := d.resolve(txn).First(&proposal, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposalsByVehicle retrieves all proposals for a vehicle, newest first.
func (d *MetadataStoreSqlite) GetProposalsByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	if result := d.resolve(txn).Where(
		"vehicle_id = ?",
		vehicleID,
	).Order("id DESC").Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// AddProposal creates a proposal record.
func (d *MetadataStoreSqlite) AddProposal(
	proposal *models.Proposal,
	txn *gorm.DB,
) error {
	if result := d.resolve(txn).Create(proposal); result.Error != nil {
		return result.Error
	}
	return nil
}

// TransitionProposal moves a proposal from one status to another. The update
// is conditional on the current status, so of two racing writers exactly one
// observes a row change; the other gets false and must re-read.
func (d *MetadataStoreSqlite) TransitionProposal(
	proposalID uint,
	fromStatus uint8,
	toStatus uint8,
	finalizedAt *time.Time,
	executedAt *time.Time,
	txn *gorm.DB,
) (bool, error) {
	updates := map[string]any{
		"status": toStatus,
	}
	if finalizedAt != nil {
		updates["finalized_at"] = *finalizedAt
	}
	if executedAt != nil {
		updates["executed_at"] = *executedAt
	}
	result := d.resolve(txn).Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalID, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
