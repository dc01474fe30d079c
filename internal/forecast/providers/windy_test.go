package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWindyFetchHours(t *testing.T) {
	start := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	t0 := start.Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req windyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Key != "secret" || req.Model != "gfs" {
			t.Errorf("unexpected request body: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		// Millisecond timestamps; second hour is missing the high layer,
		// third hour has no cloud layers at all.
		fmt.Fprintf(w, `{
			"ts": [%d, %d, %d],
			"lclouds-surface": [30, 10, null],
			"mclouds-surface": [60, 20, null],
			"hclouds-surface": [90, null, null],
			"past3hprecip-surface": [0, 0.4, 0]
		}`, t0*1000, (t0+3600)*1000, (t0+7200)*1000)
	}))
	defer srv.Close()

	p := NewWindyProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	samples, err := p.FetchHours(context.Background(), 55.85, 38.45, start, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}

	if samples[0].Timestamp != t0 {
		t.Fatalf("timestamp = %d, want %d (milliseconds must be converted)", samples[0].Timestamp, t0)
	}
	if samples[0].Cloud == nil || *samples[0].Cloud != 60 {
		t.Fatalf("cloud = %v, want the three-layer mean 60", samples[0].Cloud)
	}
	if *samples[0].PrecipProb != 0 {
		t.Fatalf("dry hour precip = %v, want 0", *samples[0].PrecipProb)
	}

	if samples[1].Cloud == nil || *samples[1].Cloud != 15 {
		t.Fatalf("cloud = %v, want the two-layer mean 15", samples[1].Cloud)
	}
	if *samples[1].PrecipProb != 60 {
		t.Fatalf("wet hour precip = %v, want the fixed 60", *samples[1].PrecipProb)
	}

	if samples[2].Cloud != nil {
		t.Fatalf("all layers missing must yield no cloud value, got %v", *samples[2].Cloud)
	}
}

func TestWindyRequiresKey(t *testing.T) {
	p := NewWindyProvider(http.DefaultClient, "")
	start := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	if _, err := p.FetchHours(context.Background(), 55.85, 38.45, start, start.Add(time.Hour)); err == nil {
		t.Fatal("expected an error without an api key")
	}
}
