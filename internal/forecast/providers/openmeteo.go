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

// OpenMeteoProvider fetches hourly cloud cover and precipitation
// probability from Open-Meteo. No API key is required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "open-meteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		backoff: defaultBackoff(),
		circuit: newVendorBreaker("open-meteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchHours(ctx context.Context, lat, lon float64, start, end time.Time) ([]forecast.HourlySample, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", lat))
		values.Set("longitude", fmt.Sprintf("%.4f", lon))
		values.Set("hourly", "cloudcover,precipitation_probability")
		values.Set("timeformat", "unixtime")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetchWithResilience(ctx, p.client, p.backoff, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time        []int64    `json:"time"`
			CloudCover  []*float64 `json:"cloudcover"`
			PrecipProb  []*float64 `json:"precipitation_probability"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	startTS, endTS := hourBounds(start, end)
	var out []forecast.HourlySample
	for i, ts := range payload.Hourly.Time {
		if ts < startTS || ts > endTS {
			continue
		}
		s := forecast.HourlySample{Timestamp: ts}
		if i < len(payload.Hourly.CloudCover) && payload.Hourly.CloudCover[i] != nil {
			s.Cloud = payload.Hourly.CloudCover[i]
		}
		if i < len(payload.Hourly.PrecipProb) && payload.Hourly.PrecipProb[i] != nil {
			s.PrecipProb = payload.Hourly.PrecipProb[i]
		} else {
			s.PrecipProb = f64(0)
		}
		out = append(out, s)
	}
	return out, nil
}
