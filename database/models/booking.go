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

package models

import (
	"errors"
	"time"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrBookingOverlap  = errors.New("booking overlaps an existing booking")
)

// Booking status constants.
const (
	BookingStatusActive    = 0
	BookingStatusCancelled = 1
)

// Booking reserves a vehicle for a co-owner over a time window.
type Booking struct {
	ID        uint      `gorm:"primarykey"`
	VehicleID uint      `gorm:"index:idx_booking_vehicle_window,priority:1;not null"`
	UserID    uint      `gorm:"index;not null"`
	StartsAt  time.Time `gorm:"index:idx_booking_vehicle_window,priority:2;not null"`
	EndsAt    time.Time `gorm:"not null"`
	Status    uint8     `gorm:"index;not null"`
	Notes     string    `gorm:"size:512"`
	CreatedAt time.Time
}

func (Booking) TableName() string {
	return "booking"
}
