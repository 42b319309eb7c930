package reporting

import (
	"fmt"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
)

const dateLayout = "2006-01-02"

// Window is the inclusive time span a report covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) toModel() models.ReportWindow {
	return models.ReportWindow{Start: w.Start, End: w.End}
}

// ResolveWindow turns the configured date range into concrete bounds relative to now.
func ResolveWindow(cfg models.ReportConfig, now time.Time) (Window, error) {
	now = now.UTC()

	if !cfg.DateRange.IsValid() {
		return Window{}, errors.NewInvalidConfigurationError(
			fmt.Sprintf("unsupported dateRange %q", cfg.DateRange))
	}

	if cfg.DateRange != models.DateRangeCustom {
		return Window{
			Start: now.AddDate(0, 0, -cfg.DateRange.Days()),
			End:   now,
		}, nil
	}

	if cfg.CustomStart == "" || cfg.CustomEnd == "" {
		return Window{}, errors.NewInvalidConfigurationError("custom dateRange requires customStart and customEnd")
	}
	start, err := time.ParseInLocation(dateLayout, cfg.CustomStart, time.UTC)
	if err != nil {
		return Window{}, errors.NewInvalidConfigurationError(fmt.Sprintf("customStart %q is not YYYY-MM-DD", cfg.CustomStart))
	}
	end, err := time.ParseInLocation(dateLayout, cfg.CustomEnd, time.UTC)
	if err != nil {
		return Window{}, errors.NewInvalidConfigurationError(fmt.Sprintf("customEnd %q is not YYYY-MM-DD", cfg.CustomEnd))
	}
	if end.Before(start) {
		return Window{}, errors.NewInvalidConfigurationError("customEnd is before customStart")
	}

	return Window{
		Start: start,
		End:   end.Add(24*time.Hour - time.Second),
	}, nil
}

// DaysUntil counts whole calendar days (UTC) from now to t. Past dates are negative.
func DaysUntil(now, t time.Time) int {
	from := truncateDay(now)
	to := truncateDay(t)
	return int(to.Sub(from).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
