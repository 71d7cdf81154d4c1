package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/eve/stats"
)

func TestNewSPRTBounds(t *testing.T) {
	test := stats.NewSPRT(0.05, 0.05, 0, 5)

	assert.InDelta(t, -2.944439, test.Lower, 1e-6)
	assert.InDelta(t, 2.944439, test.Upper, 1e-6)
	assert.InDelta(t, 0.5, test.P0, 1e-12)
	assert.InDelta(t, 0.507195, test.P1, 1e-6)
}

func TestSPRTLLR(t *testing.T) {
	test := stats.NewSPRT(0.05, 0.05, 0, 5)

	cases := []struct {
		w, d, l int
		llr     float64
	}{
		{10, 10, 10, -0.004659},
		{700, 0, 300, 6.729199},
		{300, 0, 700, -6.975719},
		{600, 0, 400, 2.890098},
		{120, 100, 80, 0.839196},
	}

	for _, c := range cases {
		assert.InDelta(t, c.llr, test.LLR(c.w, c.d, c.l), 1e-5, "w=%d d=%d l=%d", c.w, c.d, c.l)
	}

	assert.Zero(t, test.LLR(0, 0, 0))
}

func TestSPRTDecisions(t *testing.T) {
	test := stats.NewSPRT(0.05, 0.05, 0, 5)

	assert.Equal(t, stats.Continue, test.Test(10, 10, 10))
	assert.Equal(t, stats.Continue, test.Test(600, 0, 400))
	assert.Equal(t, stats.AcceptH1, test.Test(700, 0, 300))
	assert.Equal(t, stats.AcceptH0, test.Test(300, 0, 700))
}

func TestSPRTDegenerateGuard(t *testing.T) {
	test := stats.NewSPRT(0.05, 0.05, 0, 5)

	// one sided results carry no usable variance, however lopsided
	for _, results := range [][3]int{
		{1000, 0, 0},
		{0, 1000, 0},
		{0, 0, 1000},
		{0, 0, 0},
		{1, 0, 0},
	} {
		decision := test.Test(results[0], results[1], results[2])
		assert.Equal(t, stats.Continue, decision, "%v", results)
		assert.False(t, decision.Stop())
	}
}

func TestSPRTDeterministic(t *testing.T) {
	test := stats.NewSPRT(0.05, 0.05, 0, 5)

	first := test.Test(120, 100, 80)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, test.Test(120, 100, 80))
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "keep playing", stats.Continue.String())
	assert.Equal(t, "H0 accepted", stats.AcceptH0.String())
	assert.Equal(t, "H1 accepted", stats.AcceptH1.String())
	assert.True(t, stats.AcceptH0.Stop())
	assert.True(t, stats.AcceptH1.Stop())
}
