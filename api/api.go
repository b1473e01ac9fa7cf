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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fleetshare-labs/covo/booking"
	"github.com/fleetshare-labs/covo/consensus"
	"github.com/fleetshare-labs/covo/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains the configuration for the REST API server
type Config struct {
	ListenAddress string
}

// Server is the REST API server exposing vehicles, funds, proposals,
// bookings, and documents
type Server struct {
	config       Config
	logger       *slog.Logger
	db           *database.Database
	consensus    *consensus.Service
	bookings     *booking.Service
	promRegistry *prometheus.Registry
	httpServer   *http.Server
	mu           sync.Mutex
}

// New creates a new API server instance
func New(
	cfg Config,
	db *database.Database,
	consensusService *consensus.Service,
	bookingService *booking.Service,
	promRegistry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &Server{
		config:       cfg,
		logger:       logger,
		db:           db,
		consensus:    consensusService,
		bookings:     bookingService,
		promRegistry: promRegistry,
	}
}

// Start starts the HTTP server in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	// Bind the listening socket first so port conflicts are detected
	// immediately, then serve in a background goroutine
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()

	s.logger.Info(
		"API listener started on " + s.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()

		if srv != nil {
			s.logger.Debug(
				"context cancelled, shutting down API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}

// Handler returns the route table as an http.Handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.promRegistry != nil {
		mux.Handle(
			"GET /metrics",
			promhttp.HandlerFor(
				s.promRegistry,
				promhttp.HandlerOpts{},
			),
		)
	}
	mux.HandleFunc(
		"POST /api/v1/vehicles",
		s.handleRegisterVehicle,
	)
	mux.HandleFunc(
		"GET /api/v1/vehicles/{ref}",
		s.handleGetVehicle,
	)
	mux.HandleFunc(
		"GET /api/v1/vehicles/{ref}/owners",
		s.handleListOwners,
	)
	mux.HandleFunc(
		"GET /api/v1/vehicles/{ref}/fund",
		s.handleGetFund,
	)
	mux.HandleFunc(
		"POST /api/v1/vehicles/{ref}/fund/contributions",
		s.handleContribute,
	)
	mux.HandleFunc(
		"POST /api/v1/vehicles/{ref}/proposals",
		s.handleCreateProposal,
	)
	mux.HandleFunc(
		"GET /api/v1/vehicles/{ref}/proposals",
		s.handleListProposals,
	)
	mux.HandleFunc(
		"GET /api/v1/proposals/{ref}",
		s.handleGetProposal,
	)
	mux.HandleFunc(
		"POST /api/v1/proposals/{ref}/votes",
		s.handleVote,
	)
	mux.HandleFunc(
		"POST /api/v1/proposals/{ref}/cancel",
		s.handleCancelProposal,
	)
	mux.HandleFunc(
		"POST /api/v1/proposals/{ref}/execution",
		s.handleConfirmExecution,
	)
	mux.HandleFunc(
		"GET /api/v1/vehicles/{ref}/bookings",
		s.handleListBookings,
	)
	mux.HandleFunc(
		"POST /api/v1/vehicles/{ref}/bookings",
		s.handleCreateBooking,
	)
	mux.HandleFunc(
		"DELETE /api/v1/bookings/{id}",
		s.handleCancelBooking,
	)
	mux.HandleFunc(
		"GET /api/v1/vehicles/{ref}/documents",
		s.handleListDocuments,
	)
	mux.HandleFunc(
		"POST /api/v1/vehicles/{ref}/documents",
		s.handleUploadDocument,
	)
	mux.HandleFunc(
		"GET /api/v1/documents/{ref}",
		s.handleGetDocument,
	)
	mux.HandleFunc(
		"GET /api/v1/documents/{ref}/content",
		s.handleGetDocumentContent,
	)
	return mux
}
