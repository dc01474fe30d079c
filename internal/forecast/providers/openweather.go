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

// OpenWeatherProvider uses the free 5-day/3-hour forecast endpoint and
// expands each 3-hour block into three hourly samples.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		client:  client,
		backoff: defaultBackoff(),
		circuit: newVendorBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchHours(ctx context.Context, lat, lon float64, start, end time.Time) ([]forecast.HourlySample, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%.4f", lat))
		values.Set("lon", fmt.Sprintf("%.4f", lon))
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetchWithResilience(ctx, p.client, p.backoff, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt     int64 `json:"dt"`
			Clouds struct {
				All float64 `json:"all"`
			} `json:"clouds"`
			Pop float64 `json:"pop"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	startTS, endTS := hourBounds(start, end)
	var out []forecast.HourlySample
	for _, item := range payload.List {
		pop := item.Pop * 100 // probability 0..1 -> percent
		for k := int64(0); k < 3; k++ {
			ts := item.Dt + k*hourSeconds
			if ts < startTS || ts > endTS {
				continue
			}
			out = append(out, forecast.HourlySample{
				Timestamp:  ts,
				Cloud:      f64(item.Clouds.All),
				PrecipProb: f64(pop),
			})
		}
	}
	return out, nil
}
