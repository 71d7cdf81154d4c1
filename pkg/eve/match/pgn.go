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
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Notation records the moves of a game for its pgn transcript. It keeps
// track of the board so that moves can be written with their piece and
// castling can be recognized.
type Notation struct {
	board [64]byte

	preamble string // comment before the first move
	plies    []ply
}

type ply struct {
	text    string
	comment string
}

// NewNotation returns a Notation for a game from the starting position.
func NewNotation() *Notation {
	var notation Notation

	copy(notation.board[0:8], "RNBQKBNR")
	copy(notation.board[8:16], "PPPPPPPP")
	copy(notation.board[48:56], "pppppppp")
	copy(notation.board[56:64], "rnbqkbnr")

	return &notation
}

func square(file, rank byte) int {
	return int(rank-'1')*8 + int(file-'a')
}

// Play records a move given in long algebraic notation. Moves which do
// not have the shape of one are ignored.
func (notation *Notation) Play(move string) {
	if !IsLegalMoveString(move) {
		return
	}

	from, to := square(move[0], move[1]), square(move[2], move[3])
	piece := notation.board[from]

	var text string
	switch {
	case (piece == 'K' || piece == 'k') && abs(from-to) == 2:
		// castling: the rook jumps over the king
		rook := from - 4
		text = "O-O-O"
		if to > from {
			rook = from + 3
			text = "O-O"
		}

		notation.board[(from+to)/2] = notation.board[rook]
		notation.board[rook] = 0

	case piece == 'P' || piece == 'p':
		text = move[:4]

		// en passant: a diagonal move to an empty square
		if from%8 != to%8 && notation.board[to] == 0 {
			notation.board[from-from%8+to%8] = 0
		}

		if len(move) == 5 {
			promoted := move[4]
			if piece == 'P' {
				promoted -= 'a' - 'A'
			}

			piece = promoted
			text += "=" + strings.ToUpper(move[4:])
		}

	case piece == 0:
		text = move

	default:
		text = strings.ToUpper(string(piece)) + move[:4]
	}

	notation.board[to] = piece
	notation.board[from] = 0

	notation.plies = append(notation.plies, ply{text: text})
}

// Comment attaches a comment after the last recorded move.
func (notation *Notation) Comment(text string) {
	if len(notation.plies) == 0 {
		notation.preamble = text
		return
	}

	notation.plies[len(notation.plies)-1].comment = text
}

// Len returns the number of recorded moves.
func (notation *Notation) Len() int {
	return len(notation.plies)
}

// Header holds the tag pairs of a pgn record.
type Header struct {
	Event, Site  string
	Date         time.Time
	Round        int
	White, Black string
	Result       string
}

// Render returns the pgn record of the game with the given header.
func (notation *Notation) Render(header Header) string {
	var pgn strings.Builder

	tag := func(name, value string) {
		if value == "" {
			value = "?"
		}

		fmt.Fprintf(&pgn, "[%s \"%s\"]\n", name, value)
	}

	tag("Event", header.Event)
	tag("Site", header.Site)
	tag("Date", header.Date.Format("2006.01.02"))
	tag("Round", fmt.Sprint(header.Round))
	tag("White", header.White)
	tag("Black", header.Black)
	tag("Result", header.Result)
	pgn.WriteByte('\n')

	if notation.preamble != "" {
		fmt.Fprintf(&pgn, "{%s} ", notation.preamble)
	}

	for i, ply := range notation.plies {
		if i%2 == 0 {
			fmt.Fprintf(&pgn, "%d. ", i/2+1)
		}

		pgn.WriteString(ply.text)
		pgn.WriteByte(' ')

		if ply.comment != "" {
			fmt.Fprintf(&pgn, "{%s} ", ply.comment)
		}
	}

	result := header.Result
	if result == "" {
		result = "*"
	}

	pgn.WriteString(result)
	pgn.WriteString("\n\n")
	return pgn.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

// PGNWriter appends pgn records to a file. It is safe for concurrent use.
type PGNWriter struct {
	mu   sync.Mutex
	path string

	round atomic.Int64
}

// NewPGNWriter returns a writer appending to the file at path. An empty
// path discards every record.
func NewPGNWriter(path string) *PGNWriter {
	return &PGNWriter{path: path}
}

// NextRound returns the number of the next finished game, starting at 1.
func (writer *PGNWriter) NextRound() int {
	return int(writer.round.Add(1))
}

// Write appends a record to the file, creating it if needed.
func (writer *PGNWriter) Write(record string) error {
	if writer.path == "" {
		return nil
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()

	file, err := os.OpenFile(writer.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(record); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
