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
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OwnershipShare is one co-owner's new allocation applied by
// ReplaceOwnershipPartition.
type OwnershipShare struct {
	UserID     uint
	SharePct   decimal.Decimal
	Investment decimal.Decimal
}

// ReplaceOwnershipPartition updates every active co-owner row for the
// vehicle to its new share and appends one audit row per co-owner, all
// within the caller's transaction. Callers must pass shares covering the
// complete active co-owner set; partial partitions would break the
// sum-to-100 invariant.
func (d *MetadataStoreSqlite) ReplaceOwnershipPartition(
	vehicleID uint,
	shares []OwnershipShare,
	changes []models.OwnershipChange,
	txn *gorm.DB,
) error {
	db := d.resolve(txn)
	for _, share := range shares {
		result := db.Model(&models.CoOwner{}).
			Where(
				"vehicle_id = ? AND user_id = ? AND active = ?",
				vehicleID,
				share.UserID,
				true,
			).
			Updates(map[string]any{
				"share_pct":  share.SharePct,
				"investment": share.Investment,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrCoOwnerNotFound
		}
	}
	for i := range changes {
		if result := db.Create(&changes[i]); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// GetOwnershipChanges retrieves the audit trail of ownership changes for a
// vehicle in the order they were applied.
func (d *MetadataStoreSqlite) GetOwnershipChanges(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.OwnershipChange, error) {
	var changes []models.OwnershipChange
	if result := d.resolve(txn).Where(
		"vehicle_id = ?",
		vehicleID,
	).Order("id").Find(&changes); result.Error != nil {
		return nil, result.Error
	}
	return changes, nil
}
