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
	"time"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetBooking returns a booking by its row ID
func (d *Database) GetBooking(
	bookingID uint,
	txn *gorm.DB,
) (*models.Booking, error) {
	return d.metadata.GetBooking(bookingID, txn)
}

// GetBookingsByVehicle returns the active bookings for a vehicle ordered by
// start time
func (d *Database) GetBookingsByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.Booking, error) {
	return d.metadata.GetBookingsByVehicle(vehicleID, txn)
}

// CountOverlappingBookings returns the number of active bookings for the
// vehicle that overlap the given window
func (d *Database) CountOverlappingBookings(
	vehicleID uint,
	startsAt time.Time,
	endsAt time.Time,
	txn *gorm.DB,
) (int64, error) {
	return d.metadata.CountOverlappingBookings(
		vehicleID,
		startsAt,
		endsAt,
		txn,
	)
}

// AddBooking stores a new booking record
func (d *Database) AddBooking(
	booking *models.Booking,
	txn *gorm.DB,
) error {
	return d.metadata.AddBooking(booking, txn)
}

// CancelBooking marks an active booking as cancelled. It returns false when
// the booking was not active.
func (d *Database) CancelBooking(
	bookingID uint,
	txn *gorm.DB,
) (bool, error) {
	return d.metadata.CancelBooking(bookingID, txn)
}
