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

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martinnovaak/engineduel/pkg/eve/match/games"
)

// DefaultMaxMoves is the number of full moves after which a game is
// adjudicated a draw.
const DefaultMaxMoves = 250

// Game is a single game between two initialized engines.
type Game struct {
	// Opening moves played before the engines take over.
	Opening []string

	Engines [2]*Engine // indexed by Color
	Oracle  games.Oracle

	// MaxMoves is the full move ceiling; zero means DefaultMaxMoves.
	MaxMoves int

	Notation *Notation

	// OnMove, if set, is called after every engine move.
	OnMove func(mover Color, move string, spent time.Duration)
}

// Outcome describes how a game ended.
type Outcome struct {
	Termination Termination
	Mover       Color  // the side which made the last move
	Result      Result // for white
	Reason      string
	Moves       []string
}

// Tag returns the outcome's result tag.
func (outcome Outcome) Tag() string {
	return ResultTag(outcome.Termination, outcome.Mover)
}

// Play plays the game until it ends or ctx is cancelled.
func (game *Game) Play(ctx context.Context) Outcome {
	if game.Notation == nil {
		game.Notation = NewNotation()
	}

	maxPlies := 2 * game.MaxMoves
	if maxPlies <= 0 {
		maxPlies = 2 * DefaultMaxMoves
	}

	moves := game.opening()
	for _, move := range moves {
		game.Notation.Play(move)
	}

	toMove := Color(len(moves) % 2)
	end := func(termination Termination, mover Color, reason string) Outcome {
		result, _ := Score(termination, mover)
		return Outcome{
			Termination: termination,
			Mover:       mover,
			Result:      result,
			Reason:      reason,
			Moves:       moves,
		}
	}

	for plies := 0; ; plies++ {
		if ctx.Err() != nil {
			return end(Aborted, toMove.Other(), "aborted")
		}

		if plies >= maxPlies {
			game.Notation.Comment("Move limit reached")
			return end(Drawn, toMove.Other(), "move limit")
		}

		engine := game.Engines[toMove]
		move, err := game.ask(ctx, engine, moves)
		if ctx.Err() != nil {
			return end(Aborted, toMove, "aborted")
		}

		if game.OnMove != nil {
			game.OnMove(toMove, move, engine.Spent())
		}

		var state games.State
		shaped := IsLegalMoveString(move)
		if shaped {
			state = game.Oracle.Evaluate(strings.Join(append(moves[:len(moves):len(moves)], move), " "))
		}

		switch {
		case err != nil:
			game.Notation.Comment(fmt.Sprintf("Engine error: %v", err))
			return end(IllegalMove, toMove, err.Error())

		case !shaped || state == games.Error:
			game.Notation.Comment(fmt.Sprintf("Illegal move %s", move))
			return end(IllegalMove, toMove, "illegal move "+move)
		}

		moves = append(moves, move)
		game.Notation.Play(move)

		switch {
		case !engine.HasTimeLeft():
			game.Notation.Comment("Lost on time")
			return end(TimeForfeit, toMove, "time forfeit")

		case state == games.Checkmate:
			return end(Checkmate, toMove, "checkmate")

		case state == games.Draw:
			return end(Drawn, toMove, "draw")
		}

		toMove = toMove.Other()
	}
}

// opening returns the opening moves if the oracle accepts them as an
// unfinished game, and no moves otherwise.
func (game *Game) opening() []string {
	if len(game.Opening) == 0 {
		return nil
	}

	if state := game.Oracle.Evaluate(strings.Join(game.Opening, " ")); state != games.Ongoing {
		logrus.Warnf("opening %q is %s, playing from the start position", strings.Join(game.Opening, " "), state)
		return nil
	}

	return append([]string(nil), game.Opening...)
}

func (game *Game) ask(ctx context.Context, engine *Engine, moves []string) (string, error) {
	if err := engine.SetPosition(moves); err != nil {
		return "", err
	}

	return engine.Go(ctx, game.Engines[White].Clock(), game.Engines[Black].Clock())
}
