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

package match

// Color is the side an engine plays.
type Color int

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (color Color) Other() Color {
	return color ^ 1
}

func (color Color) String() string {
	if color == White {
		return "white"
	}

	return "black"
}

// Termination is the way a game ended.
type Termination int

const (
	Checkmate   Termination = iota // the mover checkmated its opponent
	Drawn                          // draw by rule or by the move ceiling
	TimeForfeit                    // the mover ran out of time
	IllegalMove                    // the mover sent an illegal or no move
	Aborted                        // the run was cancelled mid game
)

var terminations = [...]string{
	Checkmate:   "checkmate",
	Drawn:       "draw",
	TimeForfeit: "time forfeit",
	IllegalMove: "illegal move",
	Aborted:     "aborted",
}

func (termination Termination) String() string {
	if termination < 0 || int(termination) >= len(terminations) {
		return "unknown"
	}

	return terminations[termination]
}

// Result represents the result of a single game from the point of view of
// one of its players, white unless stated otherwise.
type Result int

const (
	Win  Result = +1
	Draw Result = 0
	Loss Result = -1
)

// GameLostBy maps the losing color to the game's Result for white.
var GameLostBy = [2]Result{
	White: Loss,
	Black: Win,
}

// String returns a string representation of the given Result.
func (result Result) String() string {
	switch result {
	case Win:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case Loss:
		return "0-1"
	default:
		return "*"
	}
}

// For returns the result from color's point of view, assuming result is
// from white's.
func (result Result) For(color Color) Result {
	if color == Black {
		return -result
	}

	return result
}

// Score returns the result for white of a game ending with termination
// after the given color moved. It is false for aborted games.
func Score(termination Termination, mover Color) (Result, bool) {
	switch termination {
	case Checkmate:
		return GameLostBy[mover.Other()], true
	case Drawn:
		return Draw, true
	case TimeForfeit, IllegalMove:
		return GameLostBy[mover], true
	default:
		return 0, false
	}
}

// ResultTag maps the way a game ended and the color which made the last
// move to the game's result tag. Games without a result are tagged "*".
func ResultTag(termination Termination, mover Color) string {
	result, ok := Score(termination, mover)
	if !ok {
		return "*"
	}

	return result.String()
}

// PairResult is the result of a game pair from one player's point of view.
type PairResult int

const (
	LossLoss PairResult = iota
	LossDraw
	DrawDraw // also win-loss
	WinDraw
	WinWin
)

// GetPairResult returns the PairResult given the Result of each game in
// the pair, both from the same player's point of view.
func GetPairResult(result1, result2 Result) PairResult {
	return PairResult(result1 + result2 + 2)
}
