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

package stats

import "math"

// Decision is the verdict of a sequential test after a game.
type Decision int

const (
	Continue Decision = iota // keep playing
	AcceptH0                 // elo0 is more likely
	AcceptH1                 // elo1 is more likely
)

// Stop reports whether the decision concludes the test.
func (decision Decision) Stop() bool {
	return decision != Continue
}

// String returns a string representation of the given Decision.
func (decision Decision) String() string {
	switch decision {
	case Continue:
		return "keep playing"
	case AcceptH0:
		return "H0 accepted"
	case AcceptH1:
		return "H1 accepted"
	default:
		return "unknown"
	}
}

// SPRT is a generalized sequential probability ratio test between the
// hypotheses elo = Elo0 (H0) and elo = Elo1 (H1). It uses the normal
// approximation of the trinomial score distribution. The zero value is
// not usable; construct one with NewSPRT.
type SPRT struct {
	Alpha, Beta float64
	Elo0, Elo1  float64

	Lower, Upper float64 // llr stopping bounds
	P0, P1       float64 // expected scores under H0 and H1
}

// NewSPRT derives the stopping bounds and hypothesis scores of a test.
func NewSPRT(alpha, beta, elo0, elo1 float64) SPRT {
	lower, upper := StoppingBounds(alpha, beta)
	return SPRT{
		Alpha: alpha, Beta: beta,
		Elo0: elo0, Elo1: elo1,

		Lower: lower, Upper: upper,
		P0: EloToScore(elo0), P1: EloToScore(elo1),
	}
}

// LLR calculates the log-likelihood ratio of H1 against H0 from the given
// number of wins, draws and losses. It returns 0 when no games were played
// or the measured score has no variance.
func (test SPRT) LLR(ws, ds, ls int) float64 {
	N := float64(ws + ds + ls) // total number of games
	if N == 0 {
		return 0
	}

	w := float64(ws) / N // measured win probability
	d := float64(ds) / N // measured draw probability

	score := w + d/2
	variance := (w + d/4 - score*score) / N
	if variance <= 0 {
		return 0
	}

	return (test.P1 - test.P0) * (2*score - test.P0 - test.P1) / (2 * variance)
}

// Test evaluates the test on the given results. Until at least two of the
// three result kinds have been observed the variance estimate is useless,
// so the test always continues.
func (test SPRT) Test(ws, ds, ls int) Decision {
	if degenerate(ws, ds, ls) {
		return Continue
	}

	llr := test.LLR(ws, ds, ls)
	switch {
	case math.IsNaN(llr):
		return Continue
	case llr > test.Upper:
		return AcceptH1
	case llr <= test.Lower:
		return AcceptH0
	default:
		return Continue
	}
}

func degenerate(ws, ds, ls int) bool {
	return (ws == 0 && ds == 0) ||
		(ws == 0 && ls == 0) ||
		(ds == 0 && ls == 0)
}
