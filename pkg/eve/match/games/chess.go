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

package games

import (
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/move"
)

// Chess is the oracle for standard chess. It replays every move history
// from the starting position, so a single value serves any number of
// concurrent games.
type Chess struct{}

func (Chess) Evaluate(moves string) State {
	b := board.New(board.FEN(board.StartFEN))

	legal := b.GenerateMoves(false)
	for _, mov_str := range strings.Fields(moves) {
		mov, found := find(legal, mov_str)
		if !found {
			return Error
		}

		b.MakeMove(mov)
		legal = b.GenerateMoves(false)
	}

	switch {
	case len(legal) == 0:
		if b.IsInCheck(b.SideToMove) {
			return Checkmate
		}

		return Draw // stalemate

	case b.DrawClock >= 100,
		b.IsThreefoldRepetition(),
		b.IsInsufficientMaterial():
		return Draw
	}

	return Ongoing
}

func find(moves []move.Move, mov_str string) (move.Move, bool) {
	for _, mov := range moves {
		if strings.EqualFold(mov.String(), mov_str) {
			return mov, true
		}
	}

	var null move.Move
	return null, false
}
