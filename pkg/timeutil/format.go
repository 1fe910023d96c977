// Package timeutil provides time formatting utilities for Fathom.
//
// All timestamps in Fathom are stored as Unix nanoseconds (int64).
// This package handles conversion to human-readable formats
// for the TUI, CLI output, and logbook reports.
package timeutil

import (
	"fmt"
	"time"
)

// FromNano converts a Unix nanosecond timestamp to time.Time.
func FromNano(ns int64) time.Time {
	return time.Unix(0, ns)
}

// ToNano converts a time.Time to Unix nanoseconds.
func ToNano(t time.Time) int64 {
	return t.UnixNano()
}

// NowNano returns the current time as Unix nanoseconds.
func NowNano() int64 {
	return time.Now().UnixNano()
}

// FormatDiveDate formats a Unix nanosecond timestamp as a calendar
// date for logbook rows. Format: "2006-01-02"
func FormatDiveDate(ns int64) string {
	return FromNano(ns).Format("2006-01-02")
}

// FormatDiveTime formats a Unix nanosecond timestamp with the time of
// entry. Format: "2006-01-02 15:04"
func FormatDiveTime(ns int64) string {
	return FromNano(ns).Format("2006-01-02 15:04")
}

// FormatBottomTime formats a dive duration in whole minutes.
// Examples: "44 min", "1h 23m"
func FormatBottomTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// RelativeTime returns a human-readable relative time string.
// Examples: "just now", "5s ago", "2m ago", "1h ago"
func RelativeTime(ns int64) string {
	diff := time.Since(FromNano(ns))

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
}
