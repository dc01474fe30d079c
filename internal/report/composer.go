package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clearnightbot/clearnight/internal/astro"
	"github.com/clearnightbot/clearnight/internal/forecast"
)

const (
	dateFormat     = "02.01.2006"
	timeFormat     = "15:04"
	dateTimeFormat = "02.01 15:04"
)

// Composer renders the final human-facing report text.
type Composer struct {
	tz          *time.Location
	siteName    string
	showSources bool
}

func NewComposer(tz *time.Location, siteName string, showSources bool) *Composer {
	return &Composer{tz: tz, siteName: siteName, showSources: showSources}
}

// ComposeInput carries everything one report needs. Consensus is the
// unfiltered set: window bullets quote average cloud over what the
// providers actually said, even when the moon filter trimmed the windows.
type ComposeInput struct {
	Date                time.Time
	Night               astro.NightWindow
	Consensus           forecast.ConsensusSet
	Windows             []forecast.TimeWindow
	Moon                astro.MoonState
	Contributions       map[string]int
	CloudThreshold      float64
	PrecipThreshold     float64
	ClearNightThreshold float64
}

// Compose renders the report: a one-line verdict, then the night window,
// moon status, and usable windows (or the defined fallback bodies).
func (c *Composer) Compose(in ComposeInput) string {
	var b strings.Builder

	clearPct := forecast.ClearFraction(in.Consensus, in.Night.Dusk, in.Night.Dawn, in.CloudThreshold, in.PrecipThreshold)
	b.WriteString(c.header(in, clearPct))
	b.WriteString("\n\n")

	switch {
	case len(in.Consensus) == 0:
		b.WriteString("No data from weather services for the requested interval.")
	case len(in.Windows) == 0:
		fmt.Fprintf(&b, "Cloudy or precipitating all night on %s.\n", in.Date.In(c.tz).Format(dateFormat))
		fmt.Fprintf(&b, "Night window: %s–%s\n", in.Night.Dusk.In(c.tz).Format(timeFormat), in.Night.Dawn.In(c.tz).Format(timeFormat))
		b.WriteString(c.moonLine(in.Moon))
	default:
		fmt.Fprintf(&b, "Night of %s at %s\n", in.Date.In(c.tz).Format(dateFormat), c.siteName)
		fmt.Fprintf(&b, "Night window: %s–%s\n", in.Night.Dusk.In(c.tz).Format(timeFormat), in.Night.Dawn.In(c.tz).Format(timeFormat))
		b.WriteString(c.moonLine(in.Moon))
		b.WriteString("\nViewing windows:\n")
		for _, w := range in.Windows {
			fmt.Fprintf(&b, "• %s–%s (avg cloud: %.0f%%)\n",
				time.Unix(w.Start, 0).In(c.tz).Format(timeFormat),
				time.Unix(w.End, 0).In(c.tz).Format(timeFormat),
				windowAvgCloud(in.Consensus, w))
		}
	}

	if c.showSources {
		if footer := sourcesFooter(in.Contributions); footer != "" {
			b.WriteString("\n")
			b.WriteString(footer)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// NoNightWindow is the fallback report for dates with no usable dusk/dawn
// pair (polar day or night).
func (c *Composer) NoNightWindow(date time.Time) string {
	return fmt.Sprintf("No usable night window on %s: the sun does not get far enough below the horizon at this location.",
		date.In(c.tz).Format(dateFormat))
}

func (c *Composer) header(in ComposeInput, clearPct float64) string {
	switch {
	case len(in.Windows) > 0 && clearPct >= in.ClearNightThreshold:
		return fmt.Sprintf("\U0001F319 Clear night ahead: %.0f%% of night hours look good.", clearPct)
	case len(in.Windows) > 0:
		longest := longestWindow(in.Windows)
		return fmt.Sprintf("\U0001F325 Gaps possible: best stretch %s–%s.",
			time.Unix(longest.Start, 0).In(c.tz).Format(timeFormat),
			time.Unix(longest.End, 0).In(c.tz).Format(timeFormat))
	default:
		return "☁️ Fully overcast, better cancel tonight."
	}
}

// longestWindow returns the first window of maximal duration. Ties resolve
// to the earliest window since the slice is chronological.
func longestWindow(windows []forecast.TimeWindow) forecast.TimeWindow {
	best := windows[0]
	for _, w := range windows[1:] {
		if w.Hours() > best.Hours() {
			best = w
		}
	}
	return best
}

func windowAvgCloud(cs forecast.ConsensusSet, w forecast.TimeWindow) float64 {
	var sum float64
	var n int
	for ts := w.Start; ts < w.End; ts += 3600 {
		if h, ok := cs[ts]; ok {
			sum += h.Cloud
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (c *Composer) moonLine(moon astro.MoonState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Moon: %.0f%% illuminated (age %.1f d)", moon.Illumination, moon.AgeDays)

	switch moon.Status {
	case astro.MoonAboveHorizonDuringNight:
		parts := make([]string, 0, len(moon.NightOverlaps))
		for _, iv := range moon.NightOverlaps {
			parts = append(parts, fmt.Sprintf("%s–%s", iv.Start.In(c.tz).Format(timeFormat), iv.End.In(c.tz).Format(timeFormat)))
		}
		fmt.Fprintf(&b, ", above the horizon %s", strings.Join(parts, ", "))
	case astro.MoonAboveHorizonOutsideNight:
		parts := make([]string, 0, len(moon.HorizonIntervals))
		for _, iv := range moon.HorizonIntervals {
			parts = append(parts, fmt.Sprintf("%s–%s", iv.Start.In(c.tz).Format(dateTimeFormat), iv.End.In(c.tz).Format(dateTimeFormat)))
		}
		fmt.Fprintf(&b, ", up outside the night window (%s)", strings.Join(parts, ", "))
	default:
		b.WriteString(", rise/set data unavailable")
	}
	b.WriteString("\n")
	return b.String()
}

func sourcesFooter(contributions map[string]int) string {
	names := make([]string, 0, len(contributions))
	for name, n := range contributions {
		if n > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, contributions[name]))
	}
	return "Sources: " + strings.Join(parts, ", ")
}
