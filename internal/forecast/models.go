package forecast

import (
	"context"
	"sort"
	"time"
)

// HourlySample is a single provider's reading for one hour. Timestamp is
// hour-aligned epoch seconds in UTC. Cloud and PrecipProb are nil when the
// vendor reported nothing for that hour, so "absent" is never confusable
// with zero.
type HourlySample struct {
	Timestamp  int64
	Cloud      *float64 // percent, 0..100
	PrecipProb *float64 // percent, 0..100
}

// ConsensusHour is the fused reading for one hour across all responding
// providers.
type ConsensusHour struct {
	Timestamp  int64   `json:"timestamp"`
	Cloud      float64 `json:"cloud"`
	PrecipProb float64 `json:"precip_prob"`
}

// ConsensusSet maps hour-aligned epoch seconds to fused readings.
type ConsensusSet map[int64]ConsensusHour

// Timestamps returns the hours of the set in ascending order.
func (cs ConsensusSet) Timestamps() []int64 {
	out := make([]int64, 0, len(cs))
	for ts := range cs {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TimeWindow is a half-open, hour-aligned interval [Start, End) in epoch
// seconds. Windows are immutable once produced by ExtractWindows.
type TimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Hours returns the window duration in hours.
func (w TimeWindow) Hours() float64 {
	return float64(w.End-w.Start) / 3600
}

// Provider abstracts one external forecast source. FetchHours returns
// hour-aligned samples inside [start, end]; any failure is returned to the
// aggregation engine, which downgrades the provider to zero contribution
// for that build.
type Provider interface {
	Name() string
	FetchHours(ctx context.Context, lat, lon float64, start, end time.Time) ([]HourlySample, error)
}
