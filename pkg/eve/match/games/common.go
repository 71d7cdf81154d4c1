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

// Package games contains the oracles which judge the moves played in a
// game and detect its end.
package games

// State is the verdict of an oracle on a game so far.
type State uint8

const (
	Ongoing   State = iota
	Draw            // draw by rule
	Checkmate       // the side which moved last has won
	Error           // the move history is not a legal game
)

func (state State) String() string {
	switch state {
	case Ongoing:
		return "ongoing"
	case Draw:
		return "draw"
	case Checkmate:
		return "checkmate"
	default:
		return "error"
	}
}

// Oracle judges a game given its whole move history, as space separated
// moves played from the starting position. Implementations must be safe
// for concurrent use.
type Oracle interface {
	Evaluate(moves string) State
}

// OracleFunc adapts an ordinary function to the Oracle interface.
type OracleFunc func(moves string) State

func (f OracleFunc) Evaluate(moves string) State {
	return f(moves)
}

// GetOracle returns the oracle for the named game, or nil.
func GetOracle(name string) Oracle {
	switch name {
	case "chess", "":
		return Chess{}
	default:
		return nil
	}
}
