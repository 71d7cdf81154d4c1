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

// Package stats implements the statistics used to judge an engine duel:
// the sequential probability ratio test deciding when to stop and the
// elo estimates printed in reports.
package stats

import "math"

// StoppingBounds returns the llr bounds of a sequential test with the
// given type I (alpha) and type II (beta) error rates.
func StoppingBounds(alpha, beta float64) (lower float64, upper float64) {
	lower = math.Log(beta / (1 - alpha))
	upper = math.Log((1 - beta) / alpha)
	return
}

// EloToScore converts an elo difference to the expected score.
func EloToScore(elo float64) float64 {
	return 1 / (1 + math.Pow(10, -elo/400))
}

// ScoreToElo converts an expected score to an elo difference. Scores outside
// the open interval (0, 1) have no finite elo and report 0.
func ScoreToElo(x float64) float64 {
	switch {
	case x <= 0, x >= 1:
		return 0

	default:
		return -400 * math.Log10(1/x-1)
	}
}

// coefficients of the rational approximation used by PhiInv
const (
	a0 = 2.50662823884
	a1 = -18.61500062529
	a2 = 41.39119773534
	a3 = -25.44106049637

	b1 = -8.47351093090
	b2 = 23.08336743743
	b3 = -21.06224101826
	b4 = 3.13082909833

	c0 = -2.78718931138
	c1 = -2.29796479134
	c2 = 4.85014127135
	c3 = 2.32121276858

	d1 = 3.54388924762
	d2 = 1.63706781897
)

// PhiInv approximates the quantile function of the standard normal
// distribution with a rational function for the center and another
// one for the tails. p must lie in (0, 1).
func PhiInv(p float64) float64 {
	x := p - 0.5

	if math.Abs(x) < 0.42 {
		r := x * x
		return x * (((a3*r+a2)*r+a1)*r + a0) /
			((((b4*r+b3)*r+b2)*r+b1)*r + 1)
	}

	r := p
	if x > 0 {
		r = 1 - p
	}

	r = math.Sqrt(-math.Log(r))
	r = (((c3*r+c2)*r+c1)*r + c0) / ((d2*r+d1)*r + 1)

	if x < 0 {
		return -r
	}

	return r
}
