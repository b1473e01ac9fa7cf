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

package consensus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type serviceMetrics struct {
	proposalsTotal *prometheus.CounterVec
	votesTotal     *prometheus.CounterVec
	finalizedTotal *prometheus.CounterVec
}

func (s *Service) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	s.metrics = &serviceMetrics{
		proposalsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consensus_proposals_total",
				Help: "proposals created by kind",
			},
			[]string{"kind"},
		),
		votesTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consensus_votes_total",
				Help: "votes recorded by decision",
			},
			[]string{"decision"},
		),
		finalizedTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consensus_proposals_finalized_total",
				Help: "proposals finalized by terminal status",
			},
			[]string{"status"},
		),
	}
}
