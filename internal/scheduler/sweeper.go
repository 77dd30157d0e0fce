package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// Sweeper periodically enqueues the expiry sweep so overdue pending offers
// are expired and rerouted even when no provider ever comes back to look at
// them.
type Sweeper struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

// NewSweeper creates the sweep scheduler.
func NewSweeper(client *Client, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{client: client, interval: interval, log: log}
}

// Run enqueues a sweep every interval until the context is cancelled. The
// first sweep is enqueued immediately so a restart never extends the gap.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.enqueue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.enqueue(ctx)
		}
	}
}

func (s *Sweeper) enqueue(ctx context.Context) {
	err := s.client.EnqueueExpirySweep(ctx, s.interval)
	if err == nil || errors.Is(err, asynq.ErrDuplicateTask) {
		return
	}
	s.log.Error("failed to enqueue expiry sweep", "error", err.Error())
}
