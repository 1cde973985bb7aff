package hawl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"started today", now, 354},
		{"started 100 days ago", now.Add(-100 * day), 254},
		{"exactly one cycle ago", now.Add(-Period), 354},
		{"one cycle and one second ago", now.Add(-Period - time.Second), 354},
		{"one second short of a cycle", now.Add(-Period + time.Second), 1},
		{"ten cycles and a day ago", now.Add(-10*Period - day), 353},
		{"partial day rounds up", now.Add(-(12 * time.Hour)), 354},
		{"start in the future", now.Add(10 * day), 364},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysUntil(tt.start, now), tt.name)
	}
}

func TestDaysUntil_BoundedAndCountsDownAfterAnniversary(t *testing.T) {
	start := now.AddDate(-40, 0, 0)
	for i := 0; i < 2000; i++ {
		at := now.Add(time.Duration(i) * 7 * time.Hour)
		d := DaysUntil(start, at)
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, LunarYearDays)

		// A day past the anniversary the countdown is already below a full year.
		anniversary := NextAnniversary(start, at)
		after := anniversary.Add(day + time.Minute)
		assert.Less(t, DaysUntil(start, after), LunarYearDays)
	}
}

func TestNextAnniversary_LongAgo(t *testing.T) {
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	end := NextAnniversary(start, now)
	assert.True(t, end.After(now))
	assert.False(t, end.Add(-Period).After(now))
	assert.Equal(t, time.Duration(0), end.Sub(start)%Period)
}

func TestInfo(t *testing.T) {
	start := now.Add(-400 * day)
	info := Info(start, now)
	assert.Equal(t, start.Add(Period), info.StartDate)
	assert.Equal(t, start.Add(2*Period), info.EndDate)
}

func TestProgress(t *testing.T) {
	assert.InDelta(t, 0.0, Progress(now, now), 1e-9)
	assert.InDelta(t, 177.0/354.0, Progress(now.Add(-177*day), now), 1e-9)
	assert.InDelta(t, 0.0, Progress(now.Add(-Period), now), 1e-9, "anniversary resets progress")
	assert.InDelta(t, 0.0, Progress(now.Add(30*day), now), 1e-9, "future start clamps to zero")
}

func TestCompleted(t *testing.T) {
	assert.False(t, Completed(now.Add(-100*day), now))
	assert.True(t, Completed(now.Add(-Period), now))
	assert.True(t, Completed(now.Add(-3*Period), now))
}
