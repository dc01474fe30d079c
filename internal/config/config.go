package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
)

// AppConfig holds the process-wide, effectively constant configuration:
// the site, the timezone, provider keys, and delivery wiring. Tunable
// report parameters live in Settings instead, since operators may change
// them at runtime.
type AppConfig struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Timezone  string  `validate:"required"`
	SiteName  string

	OpenWeatherAPIKey    string
	WindyAPIKey          string
	VisualCrossingAPIKey string

	DailyNotifyHour   int `validate:"gte=0,lte=23"`
	DailyNotifyMinute int `validate:"gte=0,lte=59"`

	ChatDBPath       string `validate:"required"`
	NotifyWebhookURL string

	ShowSources bool
	Port        string `validate:"required"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Latitude:             getenvFloat("LAT", 55.85),
		Longitude:            getenvFloat("LON", 38.45),
		Timezone:             getenvDefault("TIMEZONE", "Europe/Moscow"),
		SiteName:             getenvDefault("SITE_NAME", "the observation site"),
		OpenWeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
		WindyAPIKey:          os.Getenv("WINDY_API_KEY"),
		VisualCrossingAPIKey: os.Getenv("VISUALCROSSING_API_KEY"),
		DailyNotifyHour:      getenvInt("DAILY_NOTIFY_HOUR", 15),
		DailyNotifyMinute:    getenvInt("DAILY_NOTIFY_MINUTE", 0),
		ChatDBPath:           getenvDefault("CHAT_DB", "chat_ids.json"),
		NotifyWebhookURL:     os.Getenv("NOTIFY_WEBHOOK_URL"),
		ShowSources:          getenvBool("SHOW_SOURCES", false),
		Port:                 getenvDefault("PORT", "8080"),
	}

	// A city/country pair can stand in for explicit coordinates.
	if os.Getenv("LAT") == "" && os.Getenv("LON") == "" && os.Getenv("SITE_CITY") != "" {
		lat, lon, err := geocodeSite(os.Getenv("SITE_CITY"), os.Getenv("SITE_COUNTRY"))
		if err != nil {
			return nil, fmt.Errorf("geocoding SITE_CITY: %w", err)
		}
		cfg.Latitude = lat
		cfg.Longitude = lon
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func geocodeSite(city, country string) (float64, float64, error) {
	geocoder.ApiKey = os.Getenv("GEOCODER_API_KEY")
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return 0, 0, err
	}
	return loc.Latitude, loc.Longitude, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
