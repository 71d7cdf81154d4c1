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

// Package openings supplies the opening positions games are started from.
package openings

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

// Source is a store of openings, each a line of space separated moves in
// long algebraic notation played from the starting position.
type Source interface {
	// Fetch returns up to n randomly chosen openings.
	Fetch(ctx context.Context, n int) ([]string, error)
}

const (
	SeedSize    = 50 // openings fetched when the supplier is created
	RefillBelow = 10 // pool size under which a pop refills first
	RefillSize  = 20 // openings fetched by a refill
)

// Supplier is a pool of openings shared by concurrent games, refilled
// from a Source as it drains. Failures of the source are logged and the
// supplier carries on with what it has. It is safe for concurrent use.
type Supplier struct {
	mu   sync.Mutex
	pool []string

	source Source
	logger logrus.FieldLogger

	// Attempts is the number of tries of a single fetch.
	Attempts uint
}

// NewSupplier creates a supplier seeded from source. A nil source makes a
// supplier which always has no opening, and a nil logger logs to the
// standard logger.
func NewSupplier(ctx context.Context, source Source, logger logrus.FieldLogger) *Supplier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	supplier := &Supplier{
		source:   source,
		logger:   logger,
		Attempts: 3,
	}

	supplier.fill(ctx, SeedSize)
	return supplier
}

// Pop removes an opening from the pool and returns its moves, refilling
// the pool first if it runs low. No moves are returned when the pool is
// empty, which means the game starts from the starting position.
func (supplier *Supplier) Pop(ctx context.Context) []string {
	supplier.mu.Lock()
	defer supplier.mu.Unlock()

	if len(supplier.pool) < RefillBelow {
		supplier.fill(ctx, RefillSize)
	}

	if len(supplier.pool) == 0 {
		return nil
	}

	last := len(supplier.pool) - 1
	opening := supplier.pool[last]
	supplier.pool = supplier.pool[:last]

	return strings.Fields(opening)
}

// Len returns the number of openings in the pool.
func (supplier *Supplier) Len() int {
	supplier.mu.Lock()
	defer supplier.mu.Unlock()
	return len(supplier.pool)
}

// fill adds up to n openings from the source to the pool. The caller must
// hold the lock or be the only user of the supplier.
func (supplier *Supplier) fill(ctx context.Context, n int) {
	if supplier.source == nil {
		return
	}

	var fetched []string
	err := retry.Do(
		func() (err error) {
			fetched, err = supplier.source.Fetch(ctx, n)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(supplier.Attempts),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		supplier.logger.Warnf("openings: fetching %d openings: %v", n, err)
		return
	}

	for _, opening := range fetched {
		if opening = strings.TrimSpace(opening); opening != "" {
			supplier.pool = append(supplier.pool, opening)
		}
	}
}
