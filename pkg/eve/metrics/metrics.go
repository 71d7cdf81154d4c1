// Copyright © 2024 Martin Novak
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the progress of a duel as prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the collectors of a duel. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// games counts finished games by termination and result for the
	// measured engine
	games *prometheus.CounterVec

	// inFlight is the number of games being played
	inFlight prometheus.Gauge

	// llr is the log-likelihood ratio after the last decision
	llr prometheus.Gauge

	// moveSeconds tracks engine thinking time per move
	moveSeconds prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		games: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "engineduel_games_total",
			Help: "Finished games by termination and result",
		}, []string{"termination", "result"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "engineduel_games_in_flight",
			Help: "Games currently being played",
		}),

		llr: factory.NewGauge(prometheus.GaugeOpts{
			Name: "engineduel_llr",
			Help: "Log-likelihood ratio of the sequential test",
		}),

		moveSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "engineduel_move_seconds",
			Help:    "Engine thinking time per move in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
	}
}

func (metrics *Metrics) GameStarted() {
	if metrics != nil {
		metrics.inFlight.Inc()
	}
}

// GameFinished records a finished game, or one which was aborted when
// result is empty.
func (metrics *Metrics) GameFinished(termination, result string) {
	if metrics == nil {
		return
	}

	metrics.inFlight.Dec()
	if result != "" {
		metrics.games.WithLabelValues(termination, result).Inc()
	}
}

func (metrics *Metrics) ObserveMove(spent time.Duration) {
	if metrics != nil {
		metrics.moveSeconds.Observe(spent.Seconds())
	}
}

func (metrics *Metrics) SetLLR(llr float64) {
	if metrics != nil {
		metrics.llr.Set(llr)
	}
}

// Handler serves the metrics in the prometheus text format.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

// Serve serves the metrics on addr until ctx is done.
func (metrics *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
