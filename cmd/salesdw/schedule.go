package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// runScheduled calls job every interval, starting immediately, until ctx is
// done. A run that is still going when the next one is due delays it rather
// than overlapping.
func runScheduled(ctx context.Context, every time.Duration, job func(context.Context), log zerolog.Logger) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if _, err := s.Every(every).Do(func() {
		log.Info().Msg("scheduled run starting")
		job(ctx)
	}); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}

	log.Info().Dur("interval", every).Msg("scheduler started")
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	log.Info().Msg("scheduler stopped")
	return nil
}
