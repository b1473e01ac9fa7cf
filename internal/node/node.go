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

package node

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetshare-labs/covo/api"
	"github.com/fleetshare-labs/covo/booking"
	"github.com/fleetshare-labs/covo/consensus"
	"github.com/fleetshare-labs/covo/database"
	"github.com/fleetshare-labs/covo/event"
	"github.com/fleetshare-labs/covo/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Run wires the storage, event bus, domain services, and API server
// together and blocks until a termination signal arrives
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(
		fmt.Sprintf("config: %+v", cfg),
		"component", "node",
	)
	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.Tracing {
		tracingShutdown, err := setupTracing(
			context.Background(),
			cfg.TracingStdout,
		)
		if err != nil {
			return fmt.Errorf("configuring tracing: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			if err := tracingShutdown(flushCtx); err != nil {
				logger.Error(
					"failed to shutdown tracing",
					"component", "node",
					"error", err,
				)
			}
		}()
	}
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := database.New(&database.Config{
		DataDir:        cfg.DataDir,
		Logger:         logger,
		PromRegistry:   promRegistry,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	eventBus := event.NewEventBus(promRegistry, logger)
	consensusService, err := consensus.NewService(
		db,
		&consensus.ServiceConfig{
			Logger:       logger,
			EventBus:     eventBus,
			PromRegistry: promRegistry,
			AdminIDs:     cfg.AdminIDs,
		},
	)
	if err != nil {
		return fmt.Errorf("creating consensus service: %w", err)
	}
	bookingService, err := booking.NewService(db, eventBus, logger)
	if err != nil {
		return fmt.Errorf("creating booking service: %w", err)
	}
	apiServer := api.New(
		api.Config{
			ListenAddress: cfg.ApiListenAddress(),
		},
		db,
		consensusService,
		bookingService,
		promRegistry,
		logger,
	)

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	if err := apiServer.Start(signalCtx); err != nil {
		eventBus.Stop()
		if dbErr := db.Close(); dbErr != nil {
			logger.Error(
				"failed to close database",
				"component", "node",
				"error", dbErr,
			)
		}
		return fmt.Errorf("starting API server: %w", err)
	}

	<-signalCtx.Done()
	logger.Info(
		"signal received, initiating graceful shutdown",
		"component", "node",
	)
	signalCtxStop()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error(
			"failed to shutdown API server",
			"component", "node",
			"error", err,
		)
	}
	eventBus.Stop()
	if err := db.Close(); err != nil {
		logger.Error(
			"failed to close database",
			"component", "node",
			"error", err,
		)
	}
	logger.Info("shutdown complete", "component", "node")
	return nil
}
