package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotationEnPassant(t *testing.T) {
	notation := NewNotation()
	for _, move := range []string{"e2e4", "a7a6", "e4e5", "d7d5", "e5d6"} {
		notation.Play(move)
	}

	assert.Equal(t, byte('P'), notation.board[square('d', '6')])
	assert.Zero(t, notation.board[square('d', '5')])
	assert.Zero(t, notation.board[square('e', '5')])
}

func TestNotationCastlingMovesRook(t *testing.T) {
	notation := NewNotation()
	for _, move := range []string{"e2e4", "e7e5", "g1f3", "g8f6", "f1c4", "f8c5", "e1g1", "e8g8"} {
		notation.Play(move)
	}

	assert.Equal(t, byte('K'), notation.board[square('g', '1')])
	assert.Equal(t, byte('R'), notation.board[square('f', '1')])
	assert.Zero(t, notation.board[square('h', '1')])
	assert.Equal(t, byte('k'), notation.board[square('g', '8')])
	assert.Equal(t, byte('r'), notation.board[square('f', '8')])
}
