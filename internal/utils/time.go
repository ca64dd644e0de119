package utils

import "time"

const (
	layoutDateBR     = "02/01/2006"
	layoutDateTimeBR = "02/01/2006 15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDateBR formats a date the way it is shown to users (dd/mm/yyyy).
func FormatDateBR(t time.Time) string {
	return t.Format(layoutDateBR)
}

// FormatDateTimeBR formats a timestamp as dd/mm/yyyy hh:mm.
func FormatDateTimeBR(t time.Time) string {
	return t.Format(layoutDateTimeBR)
}
