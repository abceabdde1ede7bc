// Package timeutil formats timestamps the way the vendor's web console
// expects them: dates as DD-MM-YYYY and times as 12-hour clock with AM/PM,
// both rendered in the document's declared timezone.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDate renders t in the given IANA timezone as DD-MM-YYYY.
// An unknown timezone falls back to UTC rather than failing the caller.
func FormatDate(t time.Time, timezone string) string {
	return inZone(t, timezone).Format("02-01-2006")
}

// FormatTime renders t in the given IANA timezone as hh:mm AM/PM.
func FormatTime(t time.Time, timezone string) string {
	return inZone(t, timezone).Format("03:04 PM")
}

// ParseInZone parses an ISO 8601 timestamp and shifts it into the given zone.
func ParseInZone(isoDate, timezone string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, isoDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid ISO date %q: %w", isoDate, err)
	}
	return inZone(t, timezone), nil
}

func inZone(t time.Time, timezone string) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}
