package forecast

import (
	"testing"
	"time"
)

func usableHours(timestamps ...int64) ConsensusSet {
	cs := make(ConsensusSet, len(timestamps))
	for _, ts := range timestamps {
		cs[ts] = ConsensusHour{Timestamp: ts, Cloud: 10, PrecipProb: 0}
	}
	return cs
}

func TestExtractWindowsMerge(t *testing.T) {
	const T int64 = 1767214800

	cs := usableHours(T, T+3600, T+7200, T+14400) // gap at T+10800
	got := ExtractWindows(cs, 35, 20, 1)

	want := []TimeWindow{
		{Start: T, End: T + 10800},
		{Start: T + 14400, End: T + 18000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// Re-running extraction on the hours of its own output yields the same
// windows.
func TestExtractWindowsIdempotent(t *testing.T) {
	const T int64 = 1767214800

	cs := usableHours(T, T+3600, T+7200, T+14400)
	first := ExtractWindows(cs, 35, 20, 1)

	rehydrated := make(ConsensusSet)
	for _, w := range first {
		for ts := w.Start; ts < w.End; ts += 3600 {
			rehydrated[ts] = ConsensusHour{Timestamp: ts, Cloud: 10, PrecipProb: 0}
		}
	}
	second := ExtractWindows(rehydrated, 35, 20, 1)

	if len(first) != len(second) {
		t.Fatalf("got %d windows on rerun, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("window %d changed on rerun: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestExtractWindowsMinDuration(t *testing.T) {
	const T int64 = 1767214800

	// One isolated hour and one three-hour run.
	cs := usableHours(T, T+10800, T+14400, T+18000)
	got := ExtractWindows(cs, 35, 20, 2)

	if len(got) != 1 {
		t.Fatalf("got %d windows, want 1", len(got))
	}
	if got[0].Start != T+10800 || got[0].End != T+21600 {
		t.Fatalf("window = %+v, want [%d, %d)", got[0], T+10800, T+21600)
	}
}

func TestExtractWindowsThresholds(t *testing.T) {
	const T int64 = 1767214800
	cs := ConsensusSet{
		T:        {Timestamp: T, Cloud: 35, PrecipProb: 20},     // exactly at thresholds: usable
		T + 3600: {Timestamp: T + 3600, Cloud: 36, PrecipProb: 0}, // cloud above
		T + 7200: {Timestamp: T + 7200, Cloud: 0, PrecipProb: 21}, // precip above
	}
	got := ExtractWindows(cs, 35, 20, 1)
	if len(got) != 1 {
		t.Fatalf("got %d windows, want 1", len(got))
	}
	if got[0].Start != T || got[0].End != T+3600 {
		t.Fatalf("window = %+v, want [%d, %d)", got[0], T, T+3600)
	}
}

func TestExtractWindowsEmpty(t *testing.T) {
	if got := ExtractWindows(ConsensusSet{}, 35, 20, 1); len(got) != 0 {
		t.Fatalf("got %d windows from empty set, want 0", len(got))
	}
}

func TestClearFraction(t *testing.T) {
	dusk := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	dawn := dusk.Add(4 * time.Hour)
	T := dusk.Unix()

	cs := ConsensusSet{
		T:         {Timestamp: T, Cloud: 10, PrecipProb: 0},
		T + 3600:  {Timestamp: T + 3600, Cloud: 90, PrecipProb: 0},
		T + 7200:  {Timestamp: T + 7200, Cloud: 10, PrecipProb: 0},
		T + 10800: {Timestamp: T + 10800, Cloud: 10, PrecipProb: 50},
		dawn.Unix() + 3600: {Timestamp: dawn.Unix() + 3600, Cloud: 0, PrecipProb: 0}, // outside the night
	}

	got := ClearFraction(cs, dusk, dawn, 35, 20)
	if got != 50 {
		t.Fatalf("clear fraction = %v, want 50", got)
	}
}

func TestClearFractionZeroCases(t *testing.T) {
	dusk := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	dawn := dusk.Add(4 * time.Hour)

	if got := ClearFraction(ConsensusSet{}, dusk, dawn, 35, 20); got != 0 {
		t.Fatalf("clear fraction of empty set = %v, want 0", got)
	}

	outside := ConsensusSet{
		dawn.Unix() + 3600: {Timestamp: dawn.Unix() + 3600, Cloud: 0, PrecipProb: 0},
	}
	if got := ClearFraction(outside, dusk, dawn, 35, 20); got != 0 {
		t.Fatalf("clear fraction with no in-window hours = %v, want 0", got)
	}
}
