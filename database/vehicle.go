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
	"gorm.io/gorm"
)

// GetVehicle returns a vehicle by its public reference
func (d *Database) GetVehicle(
	ref string,
	txn *gorm.DB,
) (*models.Vehicle, error) {
	return d.metadata.GetVehicle(ref, txn)
}

// GetVehicleByID returns a vehicle by its row ID
func (d *Database) GetVehicleByID(
	vehicleID uint,
	txn *gorm.DB,
) (*models.Vehicle, error) {
	return d.metadata.GetVehicleByID(vehicleID, txn)
}

// AddVehicle stores a new vehicle record
func (d *Database) AddVehicle(
	vehicle *models.Vehicle,
	txn *gorm.DB,
) error {
	return d.metadata.AddVehicle(vehicle, txn)
}

// GetActiveCoOwners returns the active co-owners for a vehicle
func (d *Database) GetActiveCoOwners(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.CoOwner, error) {
	return d.metadata.GetActiveCoOwners(vehicleID, txn)
}

// IsActiveCoOwner reports whether the given user is an active co-owner of
// the vehicle
func (d *Database) IsActiveCoOwner(
	vehicleID uint,
	userID uint,
	txn *gorm.DB,
) (bool, error) {
	return d.metadata.IsActiveCoOwner(vehicleID, userID, txn)
}

// AddCoOwner stores a new co-owner record
func (d *Database) AddCoOwner(
	coOwner *models.CoOwner,
	txn *gorm.DB,
) error {
	return d.metadata.AddCoOwner(coOwner, txn)
}
