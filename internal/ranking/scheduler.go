package ranking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler triggers a full rebuild at process start and then on a fixed
// interval. A store or upstream outage at boot is tolerated: the run is
// logged and the next tick tries again.
type Scheduler struct {
	rebuilder *Rebuilder
	interval  time.Duration
	logger    *zap.SugaredLogger
}

func NewScheduler(rebuilder *Rebuilder, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{rebuilder: rebuilder, interval: interval, logger: logger.Sugar()}
}

// Start launches the schedule loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		s.run(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.rebuilder.RebuildAll(ctx); err != nil {
		if errors.Is(err, ErrRebuildInProgress) {
			s.logger.Warnw("Skipping scheduled rebuild, previous run still going")
			return
		}
		s.logger.Warnw("Scheduled rebuild finished with errors", "error", err)
	}
}
