package forecast

import (
	"testing"
	"time"

	"github.com/clearnightbot/clearnight/internal/astro"
)

func moonState(illum float64, overlaps []astro.Interval) astro.MoonState {
	status := astro.MoonNoRiseSetData
	if len(overlaps) > 0 {
		status = astro.MoonAboveHorizonDuringNight
	}
	return astro.MoonState{
		Illumination:     illum,
		HorizonIntervals: overlaps,
		NightOverlaps:    overlaps,
		Status:           status,
	}
}

func TestApplyMoonFilterDisabled(t *testing.T) {
	const T int64 = 1767214800
	cs := usableHours(T, T+3600)
	overlap := astro.Interval{
		Start: time.Unix(T, 0).UTC(),
		End:   time.Unix(T+7200, 0).UTC(),
	}

	got := ApplyMoonFilter(cs, moonState(95, []astro.Interval{overlap}), false, 40)
	if len(got) != len(cs) {
		t.Fatalf("disabled filter changed the set: %d hours, want %d", len(got), len(cs))
	}
}

func TestApplyMoonFilterDimMoon(t *testing.T) {
	const T int64 = 1767214800
	cs := usableHours(T, T+3600)
	overlap := astro.Interval{
		Start: time.Unix(T, 0).UTC(),
		End:   time.Unix(T+7200, 0).UTC(),
	}

	got := ApplyMoonFilter(cs, moonState(30, []astro.Interval{overlap}), true, 40)
	if len(got) != len(cs) {
		t.Fatalf("dim moon changed the set: %d hours, want %d", len(got), len(cs))
	}
}

func TestApplyMoonFilterNoOverlaps(t *testing.T) {
	const T int64 = 1767214800
	cs := usableHours(T, T+3600)

	got := ApplyMoonFilter(cs, moonState(95, nil), true, 40)
	if len(got) != len(cs) {
		t.Fatalf("overlap-free moon changed the set: %d hours, want %d", len(got), len(cs))
	}
}

// The filter removes exactly the hours inside the overlap intervals and
// leaves the rest untouched.
func TestApplyMoonFilterRemovesOverlapHours(t *testing.T) {
	const T int64 = 1767214800
	cs := usableHours(T, T+3600, T+7200, T+10800)
	overlap := astro.Interval{
		Start: time.Unix(T+3600, 0).UTC(),
		End:   time.Unix(T+10800, 0).UTC(), // half-open: T+10800 itself survives
	}

	got := ApplyMoonFilter(cs, moonState(95, []astro.Interval{overlap}), true, 40)

	if len(got) != 2 {
		t.Fatalf("got %d hours, want 2", len(got))
	}
	for _, ts := range []int64{T, T + 10800} {
		h, ok := got[ts]
		if !ok {
			t.Fatalf("hour %d missing from filtered set", ts)
		}
		if h != cs[ts] {
			t.Fatalf("hour %d changed: %+v vs %+v", ts, h, cs[ts])
		}
	}
	for _, ts := range []int64{T + 3600, T + 7200} {
		if _, ok := got[ts]; ok {
			t.Fatalf("hour %d should have been filtered out", ts)
		}
	}
}
