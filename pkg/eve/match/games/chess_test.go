package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChessEvaluate(t *testing.T) {
	cases := []struct {
		name  string
		moves string
		state State
	}{
		{"start position", "", Ongoing},
		{"opening", "e2e4 e7e5 g1f3 b8c6", Ongoing},
		{"scholar's mate", "e2e4 e7e5 d1h5 b8c6 f1c4 g8f6 h5f7", Checkmate},
		{"fool's mate", "f2f3 e7e5 g2g4 d8h4", Checkmate},
		{"illegal move", "e2e5", Error},
		{"garbage", "e2e4 hello", Error},
		{"repetition", "g1f3 g8f6 f3g1 f6g8 g1f3 g8f6 f3g1 f6g8", Draw},
		{
			"stalemate",
			"e2e3 a7a5 d1h5 a8a6 h5a5 h7h5 h2h4 a6h6 a5c7 f7f6 c7d7 e8f7 " +
				"d7b7 d8d3 b7b8 d3h7 b8c8 f7g6 c8e6",
			Draw,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.state, Chess{}.Evaluate(c.moves))
		})
	}
}

func TestGetOracle(t *testing.T) {
	assert.NotNil(t, GetOracle("chess"))
	assert.Nil(t, GetOracle("ataxx"))

	oracle := OracleFunc(func(string) State { return Draw })
	assert.Equal(t, Draw, oracle.Evaluate("e2e4"))
}
