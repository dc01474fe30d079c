package astro

import (
	"math"
	"time"

	"github.com/thurmanmarka/astroglide"
)

// synodicMonth is the mean length of a lunation in days.
const synodicMonth = 29.530588

// newMoonEpoch is the reference new moon (2000-01-06 18:14 UTC) used by the
// synodic-phase age calculation.
var newMoonEpoch = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// MoonStatus classifies the moon's position relative to the night window.
type MoonStatus int

const (
	// MoonNoRiseSetData means no horizon interval could be derived for the date.
	MoonNoRiseSetData MoonStatus = iota
	// MoonAboveHorizonDuringNight means at least one horizon interval
	// overlaps the night window.
	MoonAboveHorizonDuringNight
	// MoonAboveHorizonOutsideNight means the moon is up at some point in the
	// 24h span, but never inside the night window.
	MoonAboveHorizonOutsideNight
)

func (s MoonStatus) String() string {
	switch s {
	case MoonAboveHorizonDuringNight:
		return "above horizon during night"
	case MoonAboveHorizonOutsideNight:
		return "above horizon outside night"
	default:
		return "no rise/set data"
	}
}

// MoonState describes the moon for one report: illumination, age, the spans
// it is above the horizon, and how those spans intersect the night window.
type MoonState struct {
	Illumination     float64 // percent, 0..100
	AgeDays          float64 // days since new moon, 0..~29.53
	HorizonIntervals []Interval
	NightOverlaps    []Interval
	Status           MoonStatus
}

// MoonState computes the moon state for the given calendar date and its
// night window.
func (e *Engine) MoonState(date time.Time, nw NightWindow) MoonState {
	local := date.In(e.tz)
	y, m, d := local.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, e.tz)
	nextDayStart := dayStart.AddDate(0, 0, 1)

	age := moonAge(dayStart)

	rise0, set0 := e.moonRiseSet(dayStart)
	rise1, set1 := e.moonRiseSet(nextDayStart)

	intervals := horizonIntervals(dayStart, nextDayStart, rise0, set0, rise1, set1)
	overlaps := clipToNight(intervals, nw)

	return MoonState{
		Illumination:     illuminationPct(age),
		AgeDays:          age,
		HorizonIntervals: intervals,
		NightOverlaps:    overlaps,
		Status:           deriveMoonStatus(intervals, overlaps),
	}
}

// moonRiseSet looks up moonrise and moonset for one local calendar day.
// A lookup that finds neither event is "no event", not an error; a zero time
// from the library likewise means that event does not occur on the day.
func (e *Engine) moonRiseSet(day time.Time) (rise, set *time.Time) {
	rs, err := astroglide.RiseSetFor(astroglide.Moon, astroglide.Coordinates{Lat: e.lat, Lon: e.lon}, day)
	if err != nil {
		return nil, nil
	}
	if !rs.Rise.IsZero() {
		r := rs.Rise
		rise = &r
	}
	if !rs.Set.IsZero() {
		s := rs.Set
		set = &s
	}
	return rise, set
}

// horizonIntervals builds the above-horizon spans for the 24h starting at
// dayStart from the day's and next day's rise/set events, in priority order:
//
//  1. rise and set found, rise < set: [rise, set]
//  2. rise and set found, rise >= set (moon up past midnight):
//     [rise, end of day], plus [start of next day, next set] if known
//  3. only rise: [rise, end of day]
//  4. only set: [start of day, set]
//  5. nothing today but next day has rise < set: [start of next day, next set]
//  6. otherwise no interval
func horizonIntervals(dayStart, nextDayStart time.Time, rise0, set0, rise1, set1 *time.Time) []Interval {
	switch {
	case rise0 != nil && set0 != nil:
		if rise0.Before(*set0) {
			return []Interval{{Start: *rise0, End: *set0}}
		}
		ivs := []Interval{{Start: *rise0, End: nextDayStart}}
		if set1 != nil {
			ivs = append(ivs, Interval{Start: nextDayStart, End: *set1})
		}
		return ivs
	case rise0 != nil:
		return []Interval{{Start: *rise0, End: nextDayStart}}
	case set0 != nil:
		return []Interval{{Start: dayStart, End: *set0}}
	case rise1 != nil && set1 != nil && rise1.Before(*set1):
		return []Interval{{Start: nextDayStart, End: *set1}}
	default:
		return nil
	}
}

// clipToNight clips each horizon interval to [dusk, dawn), keeping only
// clips with positive duration.
func clipToNight(intervals []Interval, nw NightWindow) []Interval {
	var out []Interval
	for _, iv := range intervals {
		start := iv.Start
		if start.Before(nw.Dusk) {
			start = nw.Dusk
		}
		end := iv.End
		if end.After(nw.Dawn) {
			end = nw.Dawn
		}
		if start.Before(end) {
			out = append(out, Interval{Start: start, End: end})
		}
	}
	return out
}

func deriveMoonStatus(intervals, overlaps []Interval) MoonStatus {
	switch {
	case len(overlaps) > 0:
		return MoonAboveHorizonDuringNight
	case len(intervals) > 0:
		return MoonAboveHorizonOutsideNight
	default:
		return MoonNoRiseSetData
	}
}

// moonAge returns the days elapsed in the current lunation at t.
func moonAge(t time.Time) float64 {
	days := t.Sub(newMoonEpoch).Hours() / 24
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}
	return age
}

// illuminationPct maps lunar age to an illuminated-fraction percentage via
// the cosine phase model. This is deliberately the coarse age-based
// approximation, not a topocentric illuminated fraction.
func illuminationPct(age float64) float64 {
	frac := (1 - math.Cos(2*math.Pi*age/synodicMonth)) / 2
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac * 100
}
