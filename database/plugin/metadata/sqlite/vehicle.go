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

package sqlite

import (
	"errors"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetVehicle retrieves a vehicle by its external reference.
// Returns nil if no vehicle matches.
func (d *MetadataStoreSqlite) GetVehicle(
	ref string,
	txn *gorm.DB,
) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if result := d.resolve(txn).Where(
		"ref = ?",
		ref,
	).First(&vehicle); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &vehicle, nil
}

// GetVehicleByID retrieves a vehicle by its internal ID.
func (d *MetadataStoreSqlite) GetVehicleByID(
	id uint,
	txn *gorm.DB,
) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if result := d.resolve(txn).First(&vehicle, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &vehicle, nil
}

// AddVehicle creates a vehicle record.
func (d *MetadataStoreSqlite) AddVehicle(
	vehicle *models.Vehicle,
	txn *gorm.DB,
) error {
	if result := d.resolve(txn).Create(vehicle); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetActiveCoOwners retrieves the active co-owner partition for a vehicle.
func (d *MetadataStoreSqlite) GetActiveCoOwners(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.CoOwner, error) {
	var owners []models.CoOwner
	if result := d.resolve(txn).Where(
		"vehicle_id = ? AND active = ?",
		vehicleID,
		true,
	).Order("user_id").Find(&owners); result.Error != nil {
		return nil, result.Error
	}
	return owners, nil
}

// IsActiveCoOwner returns whether the user holds an active share in the vehicle.
func (d *MetadataStoreSqlite) IsActiveCoOwner(
	vehicleID uint,
	userID uint,
	txn *gorm.DB,
) (bool, error) {
	var count int64
	if result := d.resolve(txn).Model(&models.CoOwner{}).Where(
		"vehicle_id = ? AND user_id = ? AND active = ?",
		vehicleID,
		userID,
		true,
	).Count(&count); result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// AddCoOwner creates a co-owner share row.
func (d *MetadataStoreSqlite) AddCoOwner(
	owner *models.CoOwner,
	txn *gorm.DB,
) error {
	if result := d.resolve(txn).Create(owner); result.Error != nil {
		return result.Error
	}
	return nil
}
