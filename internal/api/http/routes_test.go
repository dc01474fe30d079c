package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clearnightbot/clearnight/internal/config"
	"github.com/clearnightbot/clearnight/internal/store"
)

type stubBuilder struct{}

func (stubBuilder) Build(_ context.Context, date time.Time) (string, error) {
	return "report for " + date.Format("2006-01-02"), nil
}

func newTestApp(t *testing.T) (*fiber.App, *config.SettingsStore) {
	t.Helper()

	chats, err := store.OpenChatRegistry(filepath.Join(t.TempDir(), "chat_ids.json"))
	if err != nil {
		t.Fatalf("open chat registry: %v", err)
	}
	settings, err := config.NewSettingsStore(config.Settings{
		CloudThreshold:      35,
		PrecipThreshold:     20,
		MinWindowHours:      1,
		ClearNightThreshold: 60,
		MoonMaxIllumination: 40,
	})
	if err != nil {
		t.Fatalf("settings store: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, stubBuilder{}, chats, settings, time.UTC)
	return app, settings
}

func TestReportDateValidation(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report?date=not-a-date", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	for _, q := range []string{"", "?date=today", "?date=tomorrow", "?date=2026-03-10"} {
		req = httptest.NewRequest(http.MethodGet, "/api/v1/report"+q, nil)
		resp, err = app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("query %q: expected status %d, got %d", q, http.StatusOK, resp.StatusCode)
		}
	}
}

func TestSubscribeValidation(t *testing.T) {
	app, _ := newTestApp(t)

	// Missing chat_id should return 400.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscribers", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/subscribers", bytes.NewBufferString(`{"chat_id": 42}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

// An out-of-range settings update must be rejected and leave the stored
// settings untouched.
func TestSettingsUpdateValidation(t *testing.T) {
	app, settings := newTestApp(t)
	before := settings.Snapshot()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", bytes.NewBufferString(`{"cloud_threshold": 150}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if settings.Snapshot() != before {
		t.Fatal("rejected update must not change the stored settings")
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/settings", bytes.NewBufferString(`{"cloud_threshold": 50}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	after := settings.Snapshot()
	if after.CloudThreshold != 50 {
		t.Fatalf("cloud threshold = %v, want 50", after.CloudThreshold)
	}
	// Fields absent from the body keep their previous values.
	if after.PrecipThreshold != before.PrecipThreshold {
		t.Fatalf("precip threshold changed unexpectedly: %v", after.PrecipThreshold)
	}
}
