package match_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
)

func TestParseTime(t *testing.T) {
	tc, err := match.ParseTime("8+0.08")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, tc.Remaining)
	assert.Equal(t, 80*time.Millisecond, tc.Increment)
	assert.Equal(t, "8+0.08", tc.String())

	tc, err = match.ParseTime("60+0")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, tc.Remaining)
	assert.Zero(t, tc.Increment)

	for _, bad := range []string{"", "8", "x+1", "8+y", "0+1", "-1+0", "10+-1"} {
		_, err := match.ParseTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeControlCharge(t *testing.T) {
	tc := match.TimeControl{Remaining: 100 * time.Millisecond, Increment: 10 * time.Millisecond}

	tc.Charge(60 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, tc.Remaining)
	assert.True(t, tc.HasTimeLeft())

	tc.Charge(70 * time.Millisecond)
	assert.Equal(t, -10*time.Millisecond, tc.Remaining)
	assert.False(t, tc.HasTimeLeft())

	tc = match.TimeControl{Remaining: 5 * time.Millisecond}
	tc.Charge(5 * time.Millisecond)
	assert.False(t, tc.HasTimeLeft())
}
