package astro

import (
	"errors"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// ErrNoNightWindow is returned when the solar computation yields no usable
// dusk/dawn pair for a date (polar day, polar night). Callers must turn this
// into the "no usable night window" report fallback, never a crash.
var ErrNoNightWindow = errors.New("no usable night window for this date and location")

// twilightOffset approximates astronomical twilight relative to
// sunset/sunrise: dusk = sunset + 90min, dawn = next sunrise - 90min.
const twilightOffset = 90 * time.Minute

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies inside the half-open interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// NightWindow is the observation night for one calendar date: dusk on that
// evening through dawn the following morning, in the site timezone.
// Invariant: Dawn is strictly after Dusk.
type NightWindow struct {
	Dusk time.Time
	Dawn time.Time
}

// Engine computes night windows and moon state for a fixed site.
type Engine struct {
	lat float64
	lon float64
	tz  *time.Location
}

func NewEngine(lat, lon float64, tz *time.Location) *Engine {
	return &Engine{lat: lat, lon: lon, tz: tz}
}

// NightWindow returns the dusk/dawn window for the given calendar date,
// interpreted in the site timezone.
func (e *Engine) NightWindow(date time.Time) (NightWindow, error) {
	local := date.In(e.tz)
	y, m, d := local.Date()
	_, sunset := sunrise.SunriseSunset(e.lat, e.lon, y, m, d)

	next := local.AddDate(0, 0, 1)
	y2, m2, d2 := next.Date()
	nextSunrise, _ := sunrise.SunriseSunset(e.lat, e.lon, y2, m2, d2)

	// go-sunrise reports zero times when the sun does not cross the horizon.
	if sunset.IsZero() || nextSunrise.IsZero() {
		return NightWindow{}, ErrNoNightWindow
	}

	return nightWindowFromEvents(sunset.In(e.tz), nextSunrise.In(e.tz))
}

// nightWindowFromEvents applies the twilight offsets to a sunset and the
// following sunrise. When the offsets would invert the window (short
// high-latitude nights), the window collapses to [sunset, sunrise).
func nightWindowFromEvents(sunset, nextSunrise time.Time) (NightWindow, error) {
	dusk := sunset.Add(twilightOffset)
	dawn := nextSunrise.Add(-twilightOffset)
	if !dawn.After(dusk) {
		dusk = sunset
		dawn = nextSunrise
	}
	if !dawn.After(dusk) {
		return NightWindow{}, ErrNoNightWindow
	}
	return NightWindow{Dusk: dusk, Dawn: dawn}, nil
}
