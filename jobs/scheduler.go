// Package jobs runs the periodic maintenance tasks of the booking service.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ConfirmationRetrier resends booking confirmations that failed earlier.
type ConfirmationRetrier interface {
	RetryUnsentConfirmations(ctx context.Context) (int, error)
}

// NewScheduler returns a started scheduler that retries unsent
// confirmation emails every interval.
func NewScheduler(ctx context.Context, retrier ConfirmationRetrier, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(RetryConfirmations, ctx, retrier),
		gocron.WithName("retry-unsent-confirmations"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		sched.Shutdown()
		return nil, err
	}
	log.Printf("[Jobs] %s scheduled every %s (%s)", j.Name(), interval, j.ID())
	sched.Start()
	return sched, nil
}

// RetryConfirmations is one run of the retry job.
func RetryConfirmations(ctx context.Context, retrier ConfirmationRetrier) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	sent, err := retrier.RetryUnsentConfirmations(ctx)
	if err != nil {
		log.Printf("[Jobs] retry unsent confirmations: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("[Jobs] resent %d confirmation(s)", sent)
	}
}
