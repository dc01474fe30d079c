package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/clearnightbot/clearnight/internal/forecast"
)

// VisualCrossingProvider uses the Timeline API with hourly resolution.
type VisualCrossingProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewVisualCrossingProvider(client *http.Client, apiKey string) *VisualCrossingProvider {
	return &VisualCrossingProvider{
		name:    "visualcrossing",
		apiKey:  apiKey,
		baseURL: "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		client:  client,
		backoff: defaultBackoff(),
		circuit: newVendorBreaker("visualcrossing"),
	}
}

func (p *VisualCrossingProvider) Name() string {
	return p.name
}

func (p *VisualCrossingProvider) FetchHours(ctx context.Context, lat, lon float64, start, end time.Time) ([]forecast.HourlySample, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("visualcrossing api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("unitGroup", "metric")
		values.Set("include", "hours")
		values.Set("key", p.apiKey)
		values.Set("contentType", "json")
		endpoint := fmt.Sprintf("%s/%.4f,%.4f?%s", p.baseURL, lat, lon, values.Encode())
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}

	resp, err := fetchWithResilience(ctx, p.client, p.backoff, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Days []struct {
			Hours []struct {
				DatetimeEpoch int64    `json:"datetimeEpoch"`
				CloudCover    *float64 `json:"cloudcover"`
				PrecipProb    *float64 `json:"precipprob"`
			} `json:"hours"`
		} `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	startTS, endTS := hourBounds(start, end)
	var out []forecast.HourlySample
	for _, day := range payload.Days {
		for _, hour := range day.Hours {
			ts := hour.DatetimeEpoch
			if ts < startTS || ts > endTS {
				continue
			}
			s := forecast.HourlySample{Timestamp: ts, Cloud: hour.CloudCover, PrecipProb: hour.PrecipProb}
			if s.Cloud == nil {
				s.Cloud = f64(100)
			}
			if s.PrecipProb == nil {
				s.PrecipProb = f64(0)
			}
			out = append(out, s)
		}
	}
	return out, nil
}
