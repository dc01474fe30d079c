package forecast

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// providerCallTimeout bounds each provider call so one unresponsive vendor
// cannot stall the whole aggregation.
const providerCallTimeout = 30 * time.Second

// Service fans out to all enabled providers and fuses their hourly samples
// into a per-hour consensus.
type Service struct {
	providers []Provider
	logger    *zap.Logger
}

func NewService(providers []Provider, logger *zap.Logger) *Service {
	return &Service{providers: providers, logger: logger}
}

type providerBatch struct {
	name    string
	samples []HourlySample
}

// FetchAndFuse invokes every provider concurrently for [start, end], waits
// for all calls to settle, and fuses overlapping samples into one consensus
// value per hour. A failing or timed-out provider contributes zero samples;
// it never aborts the others. The second return value holds per-provider
// contribution counts (hours with a cloud value), including zero entries.
func (s *Service) FetchAndFuse(ctx context.Context, lat, lon float64, start, end time.Time) (ConsensusSet, map[string]int) {
	contrib := make(map[string]int, len(s.providers))
	for _, p := range s.providers {
		contrib[p.Name()] = 0
	}

	batches := make(chan providerBatch, len(s.providers))
	var wg sync.WaitGroup
	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, providerCallTimeout)
			defer cancel()

			samples, err := p.FetchHours(callCtx, lat, lon, start, end)
			if err != nil {
				// Log and continue; we want partial success when possible.
				s.logger.Warn("provider fetch failed",
					zap.String("provider", p.Name()),
					zap.Error(err))
				return
			}
			batches <- providerBatch{name: p.Name(), samples: samples}
		}(p)
	}
	wg.Wait()
	close(batches)

	type cell struct {
		cloud  []float64
		precip []float64
	}
	cells := make(map[int64]*cell)
	for b := range batches {
		for _, sm := range b.samples {
			c, ok := cells[sm.Timestamp]
			if !ok {
				c = &cell{}
				cells[sm.Timestamp] = c
			}
			if sm.Cloud != nil {
				c.cloud = append(c.cloud, *sm.Cloud)
				contrib[b.name]++
			}
			if sm.PrecipProb != nil {
				c.precip = append(c.precip, *sm.PrecipProb)
			}
		}
	}

	fused := make(ConsensusSet, len(cells))
	for ts, c := range cells {
		// An hour nobody reported anything for is dropped, not synthesized.
		if len(c.cloud) == 0 && len(c.precip) == 0 {
			continue
		}
		cloud := 100.0 // no cloud reports: assume overcast
		if len(c.cloud) > 0 {
			cloud = mean(c.cloud)
		}
		precip := 0.0
		if len(c.precip) > 0 {
			precip = mean(c.precip)
		}
		fused[ts] = ConsensusHour{Timestamp: ts, Cloud: cloud, PrecipProb: precip}
	}
	return fused, contrib
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
