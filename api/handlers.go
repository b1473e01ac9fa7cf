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
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fleetshare-labs/covo/booking"
	"github.com/fleetshare-labs/covo/consensus"
	"github.com/fleetshare-labs/covo/database/models"
	"github.com/fleetshare-labs/covo/internal/version"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxDocumentSize caps document uploads at 16 MiB
const maxDocumentSize = 16 << 20

// userIDHeader carries the authenticated user identity. Authentication
// itself is handled upstream; the API trusts this header.
const userIDHeader = "X-User-Id"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeDomainError maps domain errors onto HTTP statuses
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrVehicleNotFound),
		errors.Is(err, models.ErrProposalNotFound),
		errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrDocumentNotFound),
		errors.Is(err, models.ErrLedgerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, consensus.ErrNotCoOwner),
		errors.Is(err, booking.ErrNotCoOwner),
		errors.Is(err, consensus.ErrNotAuthorized),
		errors.Is(err, booking.ErrNotBookingHolder):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, consensus.ErrAlreadyVoted),
		errors.Is(err, consensus.ErrProposalNotPending),
		errors.Is(err, consensus.ErrNotAwaitingExecution),
		errors.Is(err, models.ErrBookingOverlap),
		errors.Is(err, booking.ErrNotActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, consensus.ErrInvalidPayload),
		errors.Is(err, consensus.ErrNoEligibleVoters),
		errors.Is(err, booking.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(
			"request failed",
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"internal server error",
		)
	}
}

// userFromRequest extracts the acting user from the identity header
func userFromRequest(r *http.Request) (uint, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "covo",
		Version: version.GetVersionString(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

func (s *Server) handleRegisterVehicle(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req RegisterVehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Plate == "" {
		writeError(w, http.StatusBadRequest, "plate is required")
		return
	}
	if len(req.Owners) == 0 {
		writeError(
			w,
			http.StatusBadRequest,
			"at least one co-owner is required",
		)
		return
	}
	if req.InitialBalance.IsNegative() {
		writeError(
			w,
			http.StatusBadRequest,
			"initial balance cannot be negative",
		)
		return
	}
	sum := decimal.Zero
	seen := make(map[uint]struct{}, len(req.Owners))
	for _, owner := range req.Owners {
		if owner.UserID == 0 {
			writeError(w, http.StatusBadRequest, "invalid co-owner id")
			return
		}
		if _, ok := seen[owner.UserID]; ok {
			writeError(
				w,
				http.StatusBadRequest,
				"duplicate co-owner in registration",
			)
			return
		}
		seen[owner.UserID] = struct{}{}
		if owner.SharePct.IsNegative() {
			writeError(w, http.StatusBadRequest, "negative share")
			return
		}
		sum = sum.Add(owner.SharePct)
	}
	if sum.Sub(decimal.NewFromInt(100)).Abs().
		GreaterThan(consensus.PartitionTolerance) {
		writeError(
			w,
			http.StatusBadRequest,
			"co-owner shares must sum to 100",
		)
		return
	}
	vehicle := &models.Vehicle{
		Ref:    uuid.NewString(),
		Make:   req.Make,
		Model:  req.Model,
		Plate:  req.Plate,
		Active: true,
	}
	err := s.db.WithTransaction(func(txn *gorm.DB) error {
		if err := s.db.AddVehicle(vehicle, txn); err != nil {
			return err
		}
		for _, owner := range req.Owners {
			err := s.db.AddCoOwner(&models.CoOwner{
				VehicleID:  vehicle.ID,
				UserID:     owner.UserID,
				SharePct:   owner.SharePct,
				Investment: owner.Investment,
				Active:     true,
			}, txn)
			if err != nil {
				return err
			}
		}
		return s.db.AddLedger(&models.FundLedger{
			VehicleID: vehicle.ID,
			Balance:   req.InitialBalance,
		}, txn)
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info(
		"vehicle registered",
		"vehicle", vehicle.Ref,
		"plate", vehicle.Plate,
		"owners", len(req.Owners),
	)
	writeJSON(w, http.StatusCreated, vehicleResponse(vehicle))
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.db.GetVehicle(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if vehicle == nil {
		s.writeDomainError(w, models.ErrVehicleNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse(vehicle))
}

func (s *Server) handleListOwners(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.db.GetVehicle(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if vehicle == nil {
		s.writeDomainError(w, models.ErrVehicleNotFound)
		return
	}
	owners, err := s.db.GetActiveCoOwners(vehicle.ID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	resp := make([]OwnerResponse, 0, len(owners))
	for _, owner := range owners {
		resp = append(resp, OwnerResponse{
			UserID:     owner.UserID,
			SharePct:   owner.SharePct,
			Investment: owner.Investment,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.db.GetVehicle(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if vehicle == nil {
		s.writeDomainError(w, models.ErrVehicleNotFound)
		return
	}
	ledger, err := s.db.GetLedgerByVehicle(vehicle.ID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if ledger == nil {
		s.writeDomainError(w, models.ErrLedgerNotFound)
		return
	}
	entries, err := s.db.GetLedgerEntries(ledger.ID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	resp := FundResponse{
		LedgerID: ledger.ID,
		Balance:  ledger.Balance,
		Entries:  make([]LedgerEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		direction := "debit"
		if entry.Direction == models.LedgerDirectionCredit {
			direction = "credit"
		}
		resp.Entries = append(resp.Entries, LedgerEntryResponse{
			Direction: direction,
			Amount:    entry.Amount,
			Memo:      entry.Memo,
			CreatedAt: entry.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req ContributionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	vehicle, err := s.db.GetVehicle(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if vehicle == nil {
		s.writeDomainError(w, models.ErrVehicleNotFound)
		return
	}
	isOwner, err := s.db.IsActiveCoOwner(vehicle.ID, userID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !isOwner {
		s.writeDomainError(w, consensus.ErrNotCoOwner)
		return
	}
	ledger, err := s.db.GetLedgerByVehicle(vehicle.ID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if ledger == nil {
		s.writeDomainError(w, models.ErrLedgerNotFound)
		return
	}
	memo := req.Memo
	if memo == "" {
		memo = "contribution"
	}
	err = s.db.WithTransaction(func(txn *gorm.DB) error {
		return s.db.CreditLedger(ledger.ID, req.Amount, nil, memo, txn)
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info(
		"fund contribution recorded",
		"vehicle", vehicle.Ref,
		"user", userID,
		"amount", req.Amount.String(),
	)
	ledger, err = s.db.GetLedger(ledger.ID, nil)
	if err != nil || ledger == nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FundResponse{
		LedgerID: ledger.ID,
		Balance:  ledger.Balance,
		Entries:  []LedgerEntryResponse{},
	})
}

func (s *Server) handleCreateProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind, ok := consensus.KindFromName(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown proposal kind")
		return
	}
	var payload any
	switch kind {
	case models.ProposalKindFundExpenditure:
		payload = &consensus.ExpenditurePayload{}
	case models.ProposalKindOwnershipReallocation:
		payload = &consensus.ReallocationPayload{}
	case models.ProposalKindVehicleUpgrade:
		payload = &consensus.UpgradePayload{}
	}
	if err := json.Unmarshal(req.Payload, payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal payload")
		return
	}
	view, err := s.consensus.Propose(
		r.PathValue("ref"),
		userID,
		kind,
		payload,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	views, err := s.consensus.ListProposals(r.PathValue("ref"), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	view, err := s.consensus.GetStatus(r.PathValue("ref"), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.consensus.Vote(
		r.PathValue("ref"),
		userID,
		req.Approve,
		req.Comment,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	view, err := s.consensus.Cancel(r.PathValue("ref"), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleConfirmExecution(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req ConfirmExecutionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.consensus.ConfirmExecution(
		r.PathValue("ref"),
		userID,
		req.ActualCost,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.List(r.PathValue("ref"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, bookingResponse(&b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.bookings.Create(
		r.PathValue("ref"),
		userID,
		req.StartsAt,
		req.EndsAt,
		req.Notes,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse(created))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	bookingID, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	if err := s.bookings.Cancel(uint(bookingID), userID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.db.GetVehicle(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if vehicle == nil {
		s.writeDomainError(w, models.ErrVehicleNotFound)
		return
	}
	documents, err := s.db.GetDocumentsByVehicle(vehicle.ID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	resp := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		resp = append(resp, documentResponse(&document))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUploadDocument(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID, ok := userFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	vehicle, err := s.db.GetVehicle(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if vehicle == nil {
		s.writeDomainError(w, models.ErrVehicleNotFound)
		return
	}
	isOwner, err := s.db.IsActiveCoOwner(vehicle.ID, userID, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !isOwner {
		s.writeDomainError(w, consensus.ErrNotCoOwner)
		return
	}
	content, err := io.ReadAll(
		http.MaxBytesReader(w, r.Body, maxDocumentSize),
	)
	if err != nil {
		writeError(
			w,
			http.StatusRequestEntityTooLarge,
			"document too large",
		)
		return
	}
	document := &models.Document{
		Ref:         uuid.NewString(),
		VehicleID:   vehicle.ID,
		Name:        name,
		ContentType: r.Header.Get("Content-Type"),
		UploadedBy:  userID,
	}
	if err := s.db.AddDocument(document, content, nil); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info(
		"document uploaded",
		"vehicle", vehicle.Ref,
		"document", document.Ref,
		"size", document.Size,
	)
	writeJSON(w, http.StatusCreated, documentResponse(document))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	document, err := s.db.GetDocument(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if document == nil {
		s.writeDomainError(w, models.ErrDocumentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(document))
}

func (s *Server) handleGetDocumentContent(
	w http.ResponseWriter,
	r *http.Request,
) {
	document, err := s.db.GetDocument(r.PathValue("ref"), nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if document == nil {
		s.writeDomainError(w, models.ErrDocumentNotFound)
		return
	}
	content, err := s.db.GetDocumentContent(document)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	contentType := document.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(content)
}

func vehicleResponse(vehicle *models.Vehicle) VehicleResponse {
	return VehicleResponse{
		Ref:       vehicle.Ref,
		Make:      vehicle.Make,
		Model:     vehicle.Model,
		Plate:     vehicle.Plate,
		Active:    vehicle.Active,
		CreatedAt: vehicle.CreatedAt,
	}
}

func bookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:       b.ID,
		UserID:   b.UserID,
		StartsAt: b.StartsAt,
		EndsAt:   b.EndsAt,
		Notes:    b.Notes,
	}
}

func documentResponse(document *models.Document) DocumentResponse {
	return DocumentResponse{
		Ref:         document.Ref,
		Name:        document.Name,
		ContentType: document.ContentType,
		Size:        document.Size,
		UploadedBy:  document.UploadedBy,
		CreatedAt:   document.CreatedAt,
	}
}
