// Package hawl tracks the lunar holding period.
package hawl

import (
	"time"

	"github.com/cleared-dev/nisab/internal/model"
)

// LunarYearDays is the length of a Hawl.
const LunarYearDays = 354

const day = 24 * time.Hour

// Period is one lunar year.
const Period = LunarYearDays * day

// NextAnniversary returns the first start + k×354 days (k >= 1) strictly
// after now. Reaching the anniversary instant starts the next countdown.
func NextAnniversary(start, now time.Time) time.Time {
	end := start.Add(Period)
	if end.After(now) {
		return end
	}
	// Skip whole elapsed cycles, then step to be exact at the boundary.
	cycles := int64(now.Sub(end) / Period)
	end = end.Add(time.Duration(cycles) * Period)
	for !end.After(now) {
		end = end.Add(Period)
	}
	return end
}

// Info returns the current holding period relative to now.
func Info(start, now time.Time) model.HawlInfo {
	end := NextAnniversary(start, now)
	return model.HawlInfo{StartDate: end.Add(-Period), EndDate: end}
}

// DaysUntil returns the whole days, rounded up, until the next anniversary.
func DaysUntil(start, now time.Time) int {
	remaining := NextAnniversary(start, now).Sub(now)
	days := int(remaining / day)
	if remaining%day != 0 {
		days++
	}
	return days
}

// Progress returns the elapsed fraction of the current period in [0, 1].
func Progress(start, now time.Time) float64 {
	p := float64(LunarYearDays-DaysUntil(start, now)) / LunarYearDays
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Completed reports whether at least one full lunar year has passed since start.
func Completed(start, now time.Time) bool {
	return !start.Add(Period).After(now)
}
