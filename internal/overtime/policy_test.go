package overtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-overtime/internal/overtime"
)

func TestParseClock(t *testing.T) {
	d, err := overtime.ParseClock("17:30")
	require.NoError(t, err)
	assert.Equal(t, 17*time.Hour+30*time.Minute, d)

	d, err = overtime.ParseClock("00:00")
	require.NoError(t, err)
	assert.Zero(t, d)

	for _, bad := range []string{"", "5pm", "25:00", "17:60", "17.30"} {
		_, err := overtime.ParseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := overtime.DefaultPolicy()

	assert.Equal(t, "UB3", p.HomeCode)
	assert.Equal(t, 7.5, p.FullDay.Hours())
	assert.Equal(t, 0.5, p.Granularity.Hours())
	assert.Equal(t, 16*time.Hour+30*time.Minute, p.WeekendCutoff)
	assert.Equal(t, 17*time.Hour+30*time.Minute, p.WeekdayCutoff)
}
