package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/clearnightbot/clearnight/internal/notify"
)

// ReportBuilder produces the report text for a calendar date.
type ReportBuilder interface {
	Build(ctx context.Context, date time.Time) (string, error)
}

// Recipients lists the chat ids that receive the daily digest.
type Recipients interface {
	ListAll() []int64
}

// Scheduler delivers today's report to every recipient once a day at the
// configured local time.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	builder    ReportBuilder
	recipients Recipients
	notifier   notify.Notifier
	tz         *time.Location
	logger     *zap.Logger
}

func New(builder ReportBuilder, recipients Recipients, notifier notify.Notifier, tz *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(tz),
		builder:    builder,
		recipients: recipients,
		notifier:   notifier,
		tz:         tz,
		logger:     logger,
	}
}

// Start schedules the daily digest and starts the underlying scheduler.
func (s *Scheduler) Start(hour, minute int) error {
	at := fmt.Sprintf("%02d:%02d", hour, minute)
	_, err := s.scheduler.Every(1).Day().At(at).Do(s.runDigest)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("daily digest scheduled", zap.String("at", at))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	today := time.Now().In(s.tz)
	text, err := s.builder.Build(ctx, today)
	if err != nil {
		s.logger.Error("daily report build failed", zap.Error(err))
		return
	}

	ids := s.recipients.ListAll()
	var delivered int
	for _, id := range ids {
		if err := s.notifier.Send(ctx, id, text); err != nil {
			s.logger.Warn("digest delivery failed",
				zap.Int64("chat_id", id),
				zap.Error(err))
			continue
		}
		delivered++
	}
	s.logger.Info("daily digest completed",
		zap.Int("recipients", len(ids)),
		zap.Int("delivered", delivered))
}
