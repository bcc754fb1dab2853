package util

import "time"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from t1 to t2.
func DaysBetween(t1, t2 time.Time) int {
	return int(t2.Sub(t1).Hours() / 24)
}
