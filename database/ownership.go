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

package database

import (
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/fleetshare-labs/covo/database/plugin/metadata/sqlite"
	"gorm.io/gorm"
)

// ReplaceOwnershipPartition applies a new ownership partition to the active
// co-owners of a vehicle and records the accompanying audit rows
func (d *Database) ReplaceOwnershipPartition(
	vehicleID uint,
	shares []sqlite.OwnershipShare,
	changes []models.OwnershipChange,
	txn *gorm.DB,
) error {
	return d.metadata.ReplaceOwnershipPartition(
		vehicleID,
		shares,
		changes,
		txn,
	)
}

// GetOwnershipChanges returns the ownership change audit records for a
// vehicle, newest first
func (d *Database) GetOwnershipChanges(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.OwnershipChange, error) {
	return d.metadata.GetOwnershipChanges(vehicleID, txn)
}
