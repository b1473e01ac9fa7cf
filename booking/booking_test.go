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

package booking_test

import (
	"testing"
	"time"

	"github.com/fleetshare-labs/covo/booking"
	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) (*booking.Service, *models.Vehicle, []uint) {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("error closing database: %s", err)
		}
	})
	vehicle := &models.Vehicle{
		Ref:    uuid.NewString(),
		Make:   "Volkswagen",
		Model:  "Transporter",
		Plate:  uuid.NewString()[:12],
		Active: true,
	}
	require.NoError(t, db.AddVehicle(vehicle, nil))
	owners := []uint{uint(2000*int(vehicle.ID) + 1), uint(2000*int(vehicle.ID) + 2)}
	for _, userID := range owners {
		require.NoError(t, db.AddCoOwner(&models.CoOwner{
			VehicleID:  vehicle.ID,
			UserID:     userID,
			SharePct:   decimal.NewFromInt(50),
			Investment: decimal.NewFromInt(5000),
			Active:     true,
		}, nil))
	}
	service, err := booking.NewService(db, nil, nil)
	require.NoError(t, err)
	return service, vehicle, owners
}

func TestBookingLifecycle(t *testing.T) {
	service, vehicle, owners := setupTest(t)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(4 * time.Hour)
	created, err := service.Create(
		vehicle.Ref,
		owners[0],
		start,
		end,
		"weekend trip",
	)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	bookings, err := service.List(vehicle.Ref)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, owners[0], bookings[0].UserID)
	require.NoError(t, service.Cancel(created.ID, owners[0]))
	bookings, err = service.List(vehicle.Ref)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingOverlapRejected(t *testing.T) {
	service, vehicle, owners := setupTest(t)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(4 * time.Hour)
	_, err := service.Create(vehicle.Ref, owners[0], start, end, "")
	require.NoError(t, err)
	// Window fully inside the existing one
	_, err = service.Create(
		vehicle.Ref,
		owners[1],
		start.Add(time.Hour),
		end.Add(-time.Hour),
		"",
	)
	assert.ErrorIs(t, err, models.ErrBookingOverlap)
	// Window straddling the end of the existing one
	_, err = service.Create(
		vehicle.Ref,
		owners[1],
		end.Add(-time.Minute),
		end.Add(time.Hour),
		"",
	)
	assert.ErrorIs(t, err, models.ErrBookingOverlap)
	// Back-to-back windows do not overlap
	_, err = service.Create(
		vehicle.Ref,
		owners[1],
		end,
		end.Add(2*time.Hour),
		"",
	)
	assert.NoError(t, err)
}

func TestBookingCancelledWindowReusable(t *testing.T) {
	service, vehicle, owners := setupTest(t)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)
	created, err := service.Create(vehicle.Ref, owners[0], start, end, "")
	require.NoError(t, err)
	require.NoError(t, service.Cancel(created.ID, owners[0]))
	_, err = service.Create(vehicle.Ref, owners[1], start, end, "")
	assert.NoError(t, err)
}

func TestBookingValidation(t *testing.T) {
	service, vehicle, owners := setupTest(t)
	start := time.Now().Add(24 * time.Hour)
	// Inverted window
	_, err := service.Create(
		vehicle.Ref,
		owners[0],
		start,
		start.Add(-time.Hour),
		"",
	)
	assert.ErrorIs(t, err, booking.ErrInvalidWindow)
	// Non-co-owner
	_, err = service.Create(
		vehicle.Ref,
		uint(424242),
		start,
		start.Add(time.Hour),
		"",
	)
	assert.ErrorIs(t, err, booking.ErrNotCoOwner)
	// Only the holder may cancel
	created, err := service.Create(
		vehicle.Ref,
		owners[0],
		start,
		start.Add(time.Hour),
		"",
	)
	require.NoError(t, err)
	err = service.Cancel(created.ID, owners[1])
	assert.ErrorIs(t, err, booking.ErrNotBookingHolder)
}
