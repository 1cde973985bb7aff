package report

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cleared-dev/nisab/internal/hawl"
)

// Hawl writes the current holding period and a progress bar through it.
func Hawl(w io.Writer, start, now time.Time) error {
	info := hawl.Info(start, now)
	days := hawl.DaysUntil(start, now)

	if _, err := fmt.Fprintf(w, "%s\n%s -> %s\n", titleStyle.Render("Hawl"),
		info.StartDate.Format("2006-01-02"), info.EndDate.Format("2006-01-02")); err != nil {
		return err
	}

	bar := progressbar.NewOptions(hawl.LunarYearDays,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetDescription("days"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	elapsed := min(max(hawl.LunarYearDays-days, 0), hawl.LunarYearDays)
	if err := bar.Set(elapsed); err != nil {
		return fmt.Errorf("rendering hawl progress: %w", err)
	}

	status := fmt.Sprintf("%d days until the next anniversary", days)
	if hawl.Completed(start, now) {
		status += " (first hawl complete)"
	}
	_, err := fmt.Fprintf(w, "\n%s\n", status)
	return err
}
