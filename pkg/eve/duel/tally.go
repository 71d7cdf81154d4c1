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

package duel

import (
	"sync/atomic"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
)

// WDL counts wins, draws and losses.
type WDL struct {
	Wins   int `yaml:"wins"`
	Draws  int `yaml:"draws"`
	Losses int `yaml:"losses"`
}

// Games returns the number of games counted.
func (wdl WDL) Games() int {
	return wdl.Wins + wdl.Draws + wdl.Losses
}

// Score is a snapshot of a Tally: the results of engine A, in total and
// with each color, and its game pair results indexed by match.PairResult.
type Score struct {
	WDL   `yaml:",inline"`
	White WDL `yaml:"white"`
	Black WDL `yaml:"black"`

	Penta [5]int `yaml:"penta"`
}

// Rounds returns the number of completed game pairs.
func (score Score) Rounds() int {
	rounds := 0
	for _, pairs := range score.Penta {
		rounds += pairs
	}

	return rounds
}

// without returns the score with a game result of engine A, playing
// color, taken out.
func (score Score) without(color match.Color, result match.Result) Score {
	remove := func(wdl *WDL) {
		switch result {
		case match.Win:
			wdl.Wins--
		case match.Draw:
			wdl.Draws--
		case match.Loss:
			wdl.Losses--
		}
	}

	remove(&score.WDL)
	if color == match.White {
		remove(&score.White)
	} else {
		remove(&score.Black)
	}

	return score
}

// Tally accumulates the results of engine A. Its counters are updated
// atomically, so it is safe for concurrent use.
type Tally struct {
	counts [2][3]atomic.Int64 // color of A, win/draw/loss
	penta  [5]atomic.Int64
}

// NewTally creates a tally starting from the given score.
func NewTally(seed Score) *Tally {
	var tally Tally

	for color, wdl := range [2]WDL{seed.White, seed.Black} {
		tally.counts[color][0].Store(int64(wdl.Wins))
		tally.counts[color][1].Store(int64(wdl.Draws))
		tally.counts[color][2].Store(int64(wdl.Losses))
	}

	for i, pairs := range seed.Penta {
		tally.penta[i].Store(int64(pairs))
	}

	return &tally
}

// Record counts a game result of engine A, playing color.
func (tally *Tally) Record(color match.Color, result match.Result) {
	var index int
	switch result {
	case match.Win:
		index = 0
	case match.Draw:
		index = 1
	case match.Loss:
		index = 2
	default:
		return
	}

	tally.counts[color][index].Add(1)
}

// RecordPair counts a game pair result of engine A.
func (tally *Tally) RecordPair(pair match.PairResult) {
	if pair >= match.LossLoss && pair <= match.WinWin {
		tally.penta[pair].Add(1)
	}
}

// Score returns a snapshot of the tally.
func (tally *Tally) Score() Score {
	var score Score

	for color, wdl := range [2]*WDL{&score.White, &score.Black} {
		wdl.Wins = int(tally.counts[color][0].Load())
		wdl.Draws = int(tally.counts[color][1].Load())
		wdl.Losses = int(tally.counts[color][2].Load())
	}

	score.Wins = score.White.Wins + score.Black.Wins
	score.Draws = score.White.Draws + score.Black.Draws
	score.Losses = score.White.Losses + score.Black.Losses

	for i := range score.Penta {
		score.Penta[i] = int(tally.penta[i].Load())
	}

	return score
}
