package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/martinnovaak/engineduel/pkg/eve/stats"
)

func TestPhiInvMatchesNormalQuantile(t *testing.T) {
	for _, p := range []float64{0.001, 0.01, 0.025, 0.05, 0.08, 0.1, 0.3, 0.5, 0.7, 0.9, 0.92, 0.975, 0.99} {
		assert.InDelta(t, distuv.UnitNormal.Quantile(p), stats.PhiInv(p), 1e-3, "p=%v", p)
	}
}

func TestPhiInvSymmetry(t *testing.T) {
	for _, p := range []float64{0.01, 0.2, 0.45} {
		assert.InDelta(t, -stats.PhiInv(p), stats.PhiInv(1-p), 1e-9)
	}

	assert.Zero(t, stats.PhiInv(0.5))
}

func TestScoreToElo(t *testing.T) {
	assert.Zero(t, stats.ScoreToElo(0.5))
	assert.Zero(t, stats.ScoreToElo(0))
	assert.Zero(t, stats.ScoreToElo(1))
	assert.InDelta(t, 147.190714, stats.ScoreToElo(0.7), 1e-5)
	assert.InDelta(t, 0.7, stats.EloToScore(stats.ScoreToElo(0.7)), 1e-9)
}

func TestElo(t *testing.T) {
	lower, elo, upper := stats.Elo(60, 20, 20)
	assert.InDelta(t, 147.19, elo, 0.01)
	assert.InDelta(t, 86.23, lower, 0.1)
	assert.InDelta(t, 218.25, upper, 0.1)

	lower, elo, upper = stats.Elo(25, 50, 25)
	assert.Zero(t, elo)
	assert.InDelta(t, -lower, upper, 1e-9)
}

func TestEloWithoutGames(t *testing.T) {
	lower, elo, upper := stats.Elo(0, 0, 0)
	assert.Zero(t, lower)
	assert.Zero(t, elo)
	assert.Zero(t, upper)

	lower, elo, upper = stats.PentaElo(0, 0, 0, 0, 0)
	assert.Zero(t, lower+elo+upper)
}

func TestPentaElo(t *testing.T) {
	lower, elo, upper := stats.PentaElo(5, 10, 20, 10, 5)
	assert.Zero(t, elo)
	assert.Less(t, lower, elo)
	assert.Greater(t, upper, elo)

	_, elo, _ = stats.PentaElo(0, 0, 10, 20, 10)
	assert.Greater(t, elo, 0.0)
}
