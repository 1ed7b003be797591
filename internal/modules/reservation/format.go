package reservation

import "time"

// FormatLongDate renders 2026-01-01 as "Thursday, January 1, 2026". Input that
// is not an ISO date is returned unchanged.
func FormatLongDate(date string) string {
	t, ok := parseDate(date, time.UTC)
	if !ok {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
