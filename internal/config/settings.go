package config

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Settings are the report parameters operators may change at runtime.
// Each report build reads one snapshot; staleness of one update is fine.
type Settings struct {
	CloudThreshold      float64 `json:"cloud_threshold" validate:"gte=0,lte=100"`
	PrecipThreshold     float64 `json:"precip_threshold" validate:"gte=0,lte=100"`
	MinWindowHours      float64 `json:"min_window_hours" validate:"gte=0,lte=24"`
	ClearNightThreshold float64 `json:"clear_night_threshold" validate:"gte=0,lte=100"`
	UseMoonFilter       bool    `json:"use_moon_filter"`
	MoonMaxIllumination float64 `json:"moon_max_illumination" validate:"gte=0,lte=100"`
}

// DefaultSettings returns the startup values, overridable via environment.
func DefaultSettings() Settings {
	return Settings{
		CloudThreshold:      getenvFloat("CLOUD_THRESHOLD", 35),
		PrecipThreshold:     getenvFloat("PRECIP_THRESHOLD", 20),
		MinWindowHours:      getenvFloat("MIN_WINDOW_HOURS", 1),
		ClearNightThreshold: getenvFloat("CLEAR_NIGHT_THRESHOLD", 60),
		UseMoonFilter:       getenvBool("USE_MOON_FILTER", false),
		MoonMaxIllumination: getenvFloat("MOON_MAX_ILLUM", 40),
	}
}

// SettingsStore guards the mutable settings. Updates are validated as a
// whole; an invalid update leaves the previous settings untouched.
type SettingsStore struct {
	mu       sync.RWMutex
	current  Settings
	validate *validator.Validate
}

func NewSettingsStore(initial Settings) (*SettingsStore, error) {
	v := validator.New()
	if err := v.Struct(initial); err != nil {
		return nil, err
	}
	return &SettingsStore{current: initial, validate: v}, nil
}

// Snapshot returns a copy of the current settings.
func (s *SettingsStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the settings atomically after validation.
func (s *SettingsStore) Update(next Settings) error {
	if err := s.validate.Struct(next); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return nil
}
