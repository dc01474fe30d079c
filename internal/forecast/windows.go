package forecast

import (
	"sort"
	"time"
)

const hourSeconds = 3600

// usable reports whether a consensus hour satisfies both thresholds.
func usable(h ConsensusHour, cloudThreshold, precipThreshold float64) bool {
	return h.Cloud <= cloudThreshold && h.PrecipProb <= precipThreshold
}

// ExtractWindows classifies each consensus hour against the thresholds and
// merges runs of consecutive usable hours into half-open windows
// [first, last+1h). Windows shorter than minWindowHours are discarded.
// No usable hours yields an empty result, not an error.
func ExtractWindows(cs ConsensusSet, cloudThreshold, precipThreshold, minWindowHours float64) []TimeWindow {
	var allowed []int64
	for ts, h := range cs {
		if usable(h, cloudThreshold, precipThreshold) {
			allowed = append(allowed, ts)
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	sort.Slice(allowed, func(i, j int) bool { return allowed[i] < allowed[j] })

	var raw []TimeWindow
	start, prev := allowed[0], allowed[0]
	for _, ts := range allowed[1:] {
		if ts-prev == hourSeconds {
			prev = ts
			continue
		}
		raw = append(raw, TimeWindow{Start: start, End: prev + hourSeconds})
		start, prev = ts, ts
	}
	raw = append(raw, TimeWindow{Start: start, End: prev + hourSeconds})

	out := make([]TimeWindow, 0, len(raw))
	for _, w := range raw {
		if w.Hours() >= minWindowHours {
			out = append(out, w)
		}
	}
	return out
}

// ClearFraction returns the percentage of consensus hours inside
// [dusk, dawn) that are usable. It returns 0 for an empty set and when no
// hours fall inside the window.
func ClearFraction(cs ConsensusSet, dusk, dawn time.Time, cloudThreshold, precipThreshold float64) float64 {
	if len(cs) == 0 {
		return 0
	}
	duskTS, dawnTS := dusk.Unix(), dawn.Unix()
	var total, good int
	for ts, h := range cs {
		if ts < duskTS || ts >= dawnTS {
			continue
		}
		total++
		if usable(h, cloudThreshold, precipThreshold) {
			good++
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(good) / float64(total)
}
