package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clearnightbot/clearnight/internal/astro"
	"github.com/clearnightbot/clearnight/internal/config"
	"github.com/clearnightbot/clearnight/internal/forecast"
)

// Builder runs the full pipeline for one date: night window, fetch+fuse,
// moon filter, window extraction, and composition.
type Builder struct {
	astro    *astro.Engine
	forecast *forecast.Service
	settings *config.SettingsStore
	composer *Composer
	lat      float64
	lon      float64
	logger   *zap.Logger
}

func NewBuilder(
	astroEngine *astro.Engine,
	forecastSvc *forecast.Service,
	settings *config.SettingsStore,
	composer *Composer,
	lat, lon float64,
	logger *zap.Logger,
) *Builder {
	return &Builder{
		astro:    astroEngine,
		forecast: forecastSvc,
		settings: settings,
		composer: composer,
		lat:      lat,
		lon:      lon,
		logger:   logger,
	}
}

// Build produces the report text for the given calendar date. Settings are
// snapshotted once at the start and used for the whole build. A valid date
// always yields a report string; astronomical failure becomes the
// "no usable night window" fallback rather than an error.
func (b *Builder) Build(ctx context.Context, date time.Time) (string, error) {
	settings := b.settings.Snapshot()

	night, err := b.astro.NightWindow(date)
	if err != nil {
		if errors.Is(err, astro.ErrNoNightWindow) {
			b.logger.Info("no usable night window", zap.Time("date", date))
			return b.composer.NoNightWindow(date), nil
		}
		return "", err
	}

	consensus, contrib := b.forecast.FetchAndFuse(ctx, b.lat, b.lon, night.Dusk.UTC(), night.Dawn.UTC())

	moon := b.astro.MoonState(date, night)

	filtered := forecast.ApplyMoonFilter(consensus, moon, settings.UseMoonFilter, settings.MoonMaxIllumination)
	windows := forecast.ExtractWindows(filtered, settings.CloudThreshold, settings.PrecipThreshold, settings.MinWindowHours)

	return b.composer.Compose(ComposeInput{
		Date:                date,
		Night:               night,
		Consensus:           consensus,
		Windows:             windows,
		Moon:                moon,
		Contributions:       contrib,
		CloudThreshold:      settings.CloudThreshold,
		PrecipThreshold:     settings.PrecipThreshold,
		ClearNightThreshold: settings.ClearNightThreshold,
	}), nil
}
