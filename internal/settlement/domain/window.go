package settlement

import "time"

// Window is the half-open booking date range [From, To) aggregated into
// one settlement. To is the first instant of the following month, so a
// booking ending any time on the last day of the month is included and
// one ending on the first day of the next month is excluded.
type Window struct {
	MonthStart time.Time
	From       time.Time
	To         time.Time
}

// PreviousMonthWindow computes the settlement window for the calendar
// month immediately preceding now. The whole run uses one canonical UTC
// clock; a run on any day in March settles February.
func PreviousMonthWindow(now time.Time) Window {
	utc := now.UTC()
	runMonthStart := time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthStart := runMonthStart.AddDate(0, -1, 0)
	return Window{
		MonthStart: monthStart,
		From:       monthStart,
		To:         runMonthStart,
	}
}

// Contains reports whether a booking end timestamp falls in the window.
func (w Window) Contains(endDate time.Time) bool {
	utc := endDate.UTC()
	return !utc.Before(w.From) && utc.Before(w.To)
}
