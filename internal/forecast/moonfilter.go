package forecast

import (
	"time"

	"github.com/clearnightbot/clearnight/internal/astro"
)

// ApplyMoonFilter removes consensus hours that fall inside any of the
// moon's night-overlap intervals. It is the identity unless the filter is
// enabled, the moon is brighter than maxIllumination, and at least one
// overlap exists. The filter must run before window extraction, since
// removing hours can split or shrink windows.
func ApplyMoonFilter(cs ConsensusSet, moon astro.MoonState, enabled bool, maxIllumination float64) ConsensusSet {
	if !enabled || len(cs) == 0 {
		return cs
	}
	if moon.Illumination <= maxIllumination || len(moon.NightOverlaps) == 0 {
		return cs
	}

	out := make(ConsensusSet, len(cs))
	for ts, h := range cs {
		if moonBlocks(ts, moon.NightOverlaps) {
			continue
		}
		out[ts] = h
	}
	return out
}

func moonBlocks(ts int64, overlaps []astro.Interval) bool {
	t := time.Unix(ts, 0).UTC()
	for _, iv := range overlaps {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}
