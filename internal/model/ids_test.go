package model

import (
	"sort"
	"testing"
	"time"
)

func TestFormatTime_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(100 * time.Millisecond),
		base.Add(120 * time.Millisecond),
		base.Add(500 * time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Second + time.Nanosecond),
	}
	var stamps []string
	for i := len(times) - 1; i >= 0; i-- {
		stamps = append(stamps, FormatTime(times[i]))
	}
	sort.Strings(stamps)
	for i, s := range stamps {
		if want := FormatTime(times[i]); s != want {
			t.Fatalf("position %d: got %s, want %s", i, s, want)
		}
	}
	if len(stamps[0]) != len(stamps[len(stamps)-1]) {
		t.Fatalf("stamps differ in width: %q %q", stamps[0], stamps[len(stamps)-1])
	}
}

func TestFormatTime_UTC(t *testing.T) {
	loc := time.FixedZone("X", 2*60*60)
	got := FormatTime(time.Date(2026, 1, 1, 2, 0, 0, 0, loc))
	if got != "2026-01-01T00:00:00.000000000Z" {
		t.Fatalf("got %s", got)
	}
	if _, err := time.Parse(time.RFC3339Nano, Now()); err != nil {
		t.Fatalf("Now is not RFC 3339: %v", err)
	}
}
