package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/clearnightbot/clearnight/internal/forecast"
)

// WindyProvider queries the Windy point-forecast API (GFS model). Windy
// reports cloud cover per layer, so the adapter averages whichever of the
// low/mid/high layers are present. Precipitation comes back as accumulated
// amounts rather than a probability, so any rainfall maps to a fixed 60%
// and dryness to 0%.
type WindyProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWindyProvider(client *http.Client, apiKey string) *WindyProvider {
	return &WindyProvider{
		name:    "windy",
		apiKey:  apiKey,
		baseURL: "https://api.windy.com/api/point-forecast/v2",
		client:  client,
		backoff: defaultBackoff(),
		circuit: newVendorBreaker("windy"),
	}
}

func (p *WindyProvider) Name() string {
	return p.name
}

type windyRequest struct {
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Model      string   `json:"model"`
	Parameters []string `json:"parameters"`
	Levels     []string `json:"levels"`
	Key        string   `json:"key"`
}

func (p *WindyProvider) FetchHours(ctx context.Context, lat, lon float64, start, end time.Time) ([]forecast.HourlySample, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("windy api key is not configured")
	}

	body, err := json.Marshal(windyRequest{
		Lat:        lat,
		Lon:        lon,
		Model:      "gfs",
		Parameters: []string{"lclouds", "mclouds", "hclouds", "precip"},
		Levels:     []string{"surface"},
		Key:        p.apiKey,
	})
	if err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, p.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := fetchWithResilience(ctx, p.client, p.backoff, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Ts     []int64    `json:"ts"`
		Low    []*float64 `json:"lclouds-surface"`
		Mid    []*float64 `json:"mclouds-surface"`
		High   []*float64 `json:"hclouds-surface"`
		Precip []*float64 `json:"past3hprecip-surface"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	startTS, endTS := hourBounds(start, end)
	var out []forecast.HourlySample
	for i, tsMillis := range payload.Ts {
		ts := tsMillis / 1000 // Windy timestamps are in milliseconds
		if ts < startTS || ts > endTS {
			continue
		}
		s := forecast.HourlySample{Timestamp: ts}
		s.Cloud = layerMean(pick(payload.Low, i), pick(payload.Mid, i), pick(payload.High, i))
		if v := pick(payload.Precip, i); v != nil && *v > 0 {
			s.PrecipProb = f64(60)
		} else {
			s.PrecipProb = f64(0)
		}
		out = append(out, s)
	}
	return out, nil
}

func pick(vs []*float64, i int) *float64 {
	if i < len(vs) {
		return vs[i]
	}
	return nil
}

// layerMean averages the cloud layers that are present. All layers missing
// means the hour carries no cloud report at all.
func layerMean(layers ...*float64) *float64 {
	var sum float64
	var n int
	for _, v := range layers {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return f64(sum / float64(n))
}
