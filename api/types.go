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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the error body returned for all failed requests
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// RootResponse is returned by GET /
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// OwnerShareRequest is one co-owner entry in a vehicle registration
type OwnerShareRequest struct {
	UserID     uint            `json:"userId"`
	SharePct   decimal.Decimal `json:"sharePct"`
	Investment decimal.Decimal `json:"investment"`
}

// RegisterVehicleRequest is the body for POST /api/v1/vehicles
type RegisterVehicleRequest struct {
	Make           string              `json:"make"`
	Model          string              `json:"model"`
	Plate          string              `json:"plate"`
	Owners         []OwnerShareRequest `json:"owners"`
	InitialBalance decimal.Decimal     `json:"initialBalance"`
}

// VehicleResponse describes a registered vehicle
type VehicleResponse struct {
	Ref       string    `json:"ref"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Plate     string    `json:"plate"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnerResponse is one active co-owner of a vehicle
type OwnerResponse struct {
	UserID     uint            `json:"userId"`
	SharePct   decimal.Decimal `json:"sharePct"`
	Investment decimal.Decimal `json:"investment"`
}

// LedgerEntryResponse is one debit or credit against a vehicle fund
type LedgerEntryResponse struct {
	Direction string          `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FundResponse describes a vehicle fund and its history
type FundResponse struct {
	LedgerID uint                  `json:"ledgerId"`
	Balance  decimal.Decimal       `json:"balance"`
	Entries  []LedgerEntryResponse `json:"entries"`
}

// ContributionRequest is the body for fund contributions
type ContributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Memo   string          `json:"memo,omitempty"`
}

// CreateProposalRequest is the body for POST /api/v1/vehicles/{ref}/proposals.
// Payload is the kind-specific payload document.
type CreateProposalRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// VoteRequest is the body for POST /api/v1/proposals/{ref}/votes
type VoteRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment,omitempty"`
}

// ConfirmExecutionRequest is the body for
// POST /api/v1/proposals/{ref}/execution
type ConfirmExecutionRequest struct {
	ActualCost decimal.Decimal `json:"actualCost"`
}

// CreateBookingRequest is the body for POST /api/v1/vehicles/{ref}/bookings
type CreateBookingRequest struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Notes    string    `json:"notes,omitempty"`
}

// BookingResponse describes one reservation
type BookingResponse struct {
	ID       uint      `json:"id"`
	UserID   uint      `json:"userId"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Notes    string    `json:"notes,omitempty"`
}

// DocumentResponse describes an uploaded document's metadata
type DocumentResponse struct {
	Ref         string    `json:"ref"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	UploadedBy  uint      `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
