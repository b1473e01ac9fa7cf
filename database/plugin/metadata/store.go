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

package metadata

import (
	"log/slog"
	"time"

	"github.com/fleetshare-labs/covo/database/models"
	"github.com/fleetshare-labs/covo/database/plugin/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	Transaction() *gorm.DB

	// Vehicles and ownership
	AddVehicle(*models.Vehicle, *gorm.DB) error
	GetVehicle(string, *gorm.DB) (*models.Vehicle, error)
	GetVehicleByID(uint, *gorm.DB) (*models.Vehicle, error)
	AddCoOwner(*models.CoOwner, *gorm.DB) error
	GetActiveCoOwners(uint, *gorm.DB) ([]models.CoOwner, error)
	IsActiveCoOwner(uint, uint, *gorm.DB) (bool, error)
	ReplaceOwnershipPartition(
		uint, // vehicleID
		[]sqlite.OwnershipShare,
		[]models.OwnershipChange,
		*gorm.DB,
	) error
	GetOwnershipChanges(uint, *gorm.DB) ([]models.OwnershipChange, error)

	// Fund ledgers
	AddLedger(*models.FundLedger, *gorm.DB) error
	GetLedger(uint, *gorm.DB) (*models.FundLedger, error)
	GetLedgerByVehicle(uint, *gorm.DB) (*models.FundLedger, error)
	DebitLedger(
		uint, // ledgerID
		decimal.Decimal,
		*uint, // proposalID
		string, // memo
		*gorm.DB,
	) error
	CreditLedger(
		uint, // ledgerID
		decimal.Decimal,
		*uint, // proposalID
		string, // memo
		*gorm.DB,
	) error
	GetLedgerEntries(uint, *gorm.DB) ([]models.LedgerEntry, error)

	// Proposals and votes
	AddProposal(*models.Proposal, *gorm.DB) error
	GetProposal(string, *gorm.DB) (*models.Proposal, error)
	GetProposalByID(uint, *gorm.DB) (*models.Proposal, error)
	GetProposalsByVehicle(uint, *gorm.DB) ([]*models.Proposal, error)
	TransitionProposal(
		uint, // proposalID
		uint8, // fromStatus
		uint8, // toStatus
		*time.Time, // finalizedAt
		*time.Time, // executedAt
		*gorm.DB,
	) (bool, error)
	AddProposalVote(*models.ProposalVote, *gorm.DB) (bool, error)
	GetProposalVotes(uint, *gorm.DB) ([]models.ProposalVote, error)

	// Bookings
	AddBooking(*models.Booking, *gorm.DB) error
	GetBooking(uint, *gorm.DB) (*models.Booking, error)
	GetBookingsByVehicle(uint, *gorm.DB) ([]models.Booking, error)
	CountOverlappingBookings(
		uint, // vehicleID
		time.Time,
		time.Time,
		*gorm.DB,
	) (int64, error)
	CancelBooking(uint, *gorm.DB) (bool, error)

	// Documents
	AddDocument(*models.Document, *gorm.DB) error
	GetDocument(string, *gorm.DB) (*models.Document, error)
	GetDocumentsByVehicle(uint, *gorm.DB) ([]models.Document, error)
}

// New creates a new metadata store. SQLite is currently the only metadata
// store plugin; the interface exists so additional engines can be added
// without touching callers.
func New(
	pluginName string,
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	switch pluginName {
	case "sqlite":
		return sqlite.New(dataDir, logger, promRegistry)
	default:
		return nil, ErrUnknownPlugin
	}
}
