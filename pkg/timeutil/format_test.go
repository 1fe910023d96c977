package timeutil

import (
	"testing"
	"time"
)

func TestNanoRoundTrip(t *testing.T) {
	now := time.Now()
	got := FromNano(ToNano(now))
	if !got.Equal(now) {
		t.Errorf("round trip mismatch: %v != %v", got, now)
	}
}

func TestFormatDiveDate(t *testing.T) {
	ts := time.Date(2026, 6, 14, 9, 30, 0, 0, time.Local).UnixNano()
	if got := FormatDiveDate(ts); got != "2026-06-14" {
		t.Errorf("FormatDiveDate = %q", got)
	}
	if got := FormatDiveTime(ts); got != "2026-06-14 09:30" {
		t.Errorf("FormatDiveTime = %q", got)
	}
}

func TestFormatBottomTime(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0 min"},
		{44, "44 min"},
		{60, "1h 00m"},
		{83, "1h 23m"},
		{125, "2h 05m"},
	}
	for _, tc := range cases {
		if got := FormatBottomTime(tc.minutes); got != tc.want {
			t.Errorf("FormatBottomTime(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	if got := RelativeTime(NowNano()); got != "just now" {
		t.Errorf("RelativeTime(now) = %q", got)
	}
	fiveMinAgo := time.Now().Add(-5 * time.Minute).UnixNano()
	if got := RelativeTime(fiveMinAgo); got != "5m ago" {
		t.Errorf("RelativeTime(-5m) = %q", got)
	}
	twoDaysAgo := time.Now().Add(-48 * time.Hour).UnixNano()
	if got := RelativeTime(twoDaysAgo); got != "2d ago" {
		t.Errorf("RelativeTime(-48h) = %q", got)
	}
}
