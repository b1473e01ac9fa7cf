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
	"time"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetBooking retrieves a booking by ID. Returns nil if not found.
func (d *MetadataStoreSqlite) GetBooking(
	id uint,
	txn *gorm.DB,
) (*models.Booking, error) {
	var booking models.Booking
	if result := d.resolve(txn).First(&booking, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &booking, nil
}

// GetBookingsByVehicle retrieves all active bookings for a vehicle ordered
// by start time.
func (d *MetadataStoreSqlite) GetBookingsByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.Booking, error) {
	var bookings []models.Booking
	if result := d.resolve(txn).Where(
		"vehicle_id = ? AND status = ?",
		vehicleID,
		models.BookingStatusActive,
	).Order("starts_at").Find(&bookings); result.Error != nil {
		return nil, result.Error
	}
	return bookings, nil
}

// CountOverlappingBookings counts active bookings for a vehicle that
// overlap the given window.
func (d *MetadataStoreSqlite) CountOverlappingBookings(
	vehicleID uint,
	startsAt time.Time,
	endsAt time.Time,
	txn *gorm.DB,
) (int64, error) {
	var count int64
	if result := d.resolve(txn).Model(&models.Booking{}).Where(
		"vehicle_id = ? AND status = ? AND starts_at < ? AND ends_at > ?",
		vehicleID,
		models.BookingStatusActive,
		endsAt,
		startsAt,
	).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// AddBooking creates a booking record.
func (d *MetadataStoreSqlite) AddBooking(
	booking *models.Booking,
	txn *gorm.DB,
) error {
	if result := d.resolve(txn).Create(booking); result.Error != nil {
		return result.Error
	}
	return nil
}

// CancelBooking marks an active booking as cancelled. The update is
// conditional on the booking still being active.
func (d *MetadataStoreSqlite) CancelBooking(
	id uint,
	txn *gorm.DB,
) (bool, error) {
	result := d.resolve(txn).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, models.BookingStatusActive).
		Update("status", models.BookingStatusCancelled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
