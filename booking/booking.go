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

package booking

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/fleetshare-labs/covo/event"
	"gorm.io/gorm"
)

var (
	// ErrNotCoOwner is returned when the acting user is not an active
	// co-owner of the vehicle
	ErrNotCoOwner = errors.New("user is not an active co-owner of the vehicle")

	// ErrInvalidWindow is returned when a reservation window is empty or
	// inverted
	ErrInvalidWindow = errors.New("booking window is invalid")

	// ErrNotBookingHolder is returned when a user attempts to cancel a
	// booking held by someone else
	ErrNotBookingHolder = errors.New("booking belongs to another user")

	// ErrNotActive is returned when cancelling a booking that is not
	// active
	ErrNotActive = errors.New("booking is not active")
)

// Service manages vehicle usage reservations. Bookings need no group
// consensus; the only rule is that active windows for a vehicle never
// overlap.
type Service struct {
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
}

// NewService creates a booking Service around the given database
func NewService(
	db *database.Database,
	eventBus *event.EventBus,
	logger *slog.Logger,
) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		db:       db,
		eventBus: eventBus,
		logger:   logger,
	}, nil
}

// Create reserves a usage window for a co-owner. The overlap check and the
// insert run in one transaction so two racing reservations cannot both
// land on the same window.
func (s *Service) Create(
	vehicleRef string,
	userID uint,
	startsAt time.Time,
	endsAt time.Time,
	notes string,
) (*models.Booking, error) {
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidWindow
	}
	vehicle, err := s.db.GetVehicle(vehicleRef, nil)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}
	isOwner, err := s.db.IsActiveCoOwner(vehicle.ID, userID, nil)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNotCoOwner
	}
	booking := &models.Booking{
		VehicleID: vehicle.ID,
		UserID:    userID,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Status:    models.BookingStatusActive,
		Notes:     notes,
	}
	err = s.db.WithTransaction(func(txn *gorm.DB) error {
		overlapping, err := s.db.CountOverlappingBookings(
			vehicle.ID,
			startsAt,
			endsAt,
			txn,
		)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return models.ErrBookingOverlap
		}
		return s.db.AddBooking(booking, txn)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(
		"booking created",
		"component", "booking",
		"vehicle", vehicleRef,
		"user", userID,
		"starts_at", startsAt,
		"ends_at", endsAt,
	)
	if s.eventBus != nil {
		s.eventBus.PublishAsync(
			event.BookingCreatedEventType,
			event.NewEvent(
				event.BookingCreatedEventType,
				event.BookingCreatedEvent{
					BookingID:  booking.ID,
					VehicleRef: vehicle.Ref,
					UserID:     userID,
					StartsAt:   startsAt,
					EndsAt:     endsAt,
				},
			),
		)
	}
	return booking, nil
}

// List returns the active bookings for a vehicle ordered by start time
func (s *Service) List(vehicleRef string) ([]models.Booking, error) {
	vehicle, err := s.db.GetVehicle(vehicleRef, nil)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}
	return s.db.GetBookingsByVehicle(vehicle.ID, nil)
}

// Cancel releases a booking. Only the holder may cancel.
func (s *Service) Cancel(bookingID uint, userID uint) error {
	booking, err := s.db.GetBooking(bookingID, nil)
	if err != nil {
		return err
	}
	if booking == nil {
		return models.ErrBookingNotFound
	}
	if booking.UserID != userID {
		return ErrNotBookingHolder
	}
	ok, err := s.db.CancelBooking(bookingID, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotActive
	}
	vehicle, err := s.db.GetVehicleByID(booking.VehicleID, nil)
	if err != nil {
		return err
	}
	s.logger.Info(
		"booking cancelled",
		"component", "booking",
		"booking", bookingID,
		"user", userID,
	)
	if s.eventBus != nil && vehicle != nil {
		s.eventBus.PublishAsync(
			event.BookingCancelledEventType,
			event.NewEvent(
				event.BookingCancelledEventType,
				event.BookingCancelledEvent{
					BookingID:  bookingID,
					VehicleRef: vehicle.Ref,
					UserID:     userID,
				},
			),
		)
	}
	return nil
}
