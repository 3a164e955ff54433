package settlement

import "time"

// TimeKey is the persisted representation of a settlement month.
type TimeKey string

// NewMonthTimeKey builds a TimeKey for the given month start.
func NewMonthTimeKey(monthStart time.Time) (TimeKey, error) {
	if err := validateMonthStart(monthStart); err != nil {
		return "", err
	}
	return TimeKey(monthStart.UTC().Format("200601")), nil
}

// String returns the raw string for storage.
func (k TimeKey) String() string { return string(k) }

func validateMonthStart(monthStart time.Time) error {
	if monthStart.IsZero() {
		return ErrInvalidMonthStart
	}
	utc := monthStart.UTC()
	if utc.Day() != 1 || utc.Hour() != 0 || utc.Minute() != 0 || utc.Second() != 0 || utc.Nanosecond() != 0 {
		return ErrInvalidMonthStart
	}
	return nil
}
