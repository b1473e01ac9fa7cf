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

import "time"

// BookingCreatedEventType is the event type for newly reserved usage windows
const BookingCreatedEventType = EventType("booking.created")

// BookingCreatedEvent is emitted after a booking has been durably recorded
type BookingCreatedEvent struct {
	// BookingID is the row ID of the booking
	BookingID uint
	// VehicleRef is the public reference of the vehicle
	VehicleRef string
	// UserID is the co-owner holding the reservation
	UserID uint
	// StartsAt is the start of the reserved window
	StartsAt time.Time
	// EndsAt is the end of the reserved window
	EndsAt time.Time
}

// BookingCancelledEventType is the event type for cancelled bookings
const BookingCancelledEventType = EventType("booking.cancelled")

// BookingCancelledEvent is emitted after a booking has been cancelled
type BookingCancelledEvent struct {
	// BookingID is the row ID of the booking
	BookingID uint
	// VehicleRef is the public reference of the vehicle
	VehicleRef string
	// UserID is the co-owner who held the reservation
	UserID uint
}
