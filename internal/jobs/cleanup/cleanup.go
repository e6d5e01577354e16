package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type sessionSweeper interface {
	Sweep(retention time.Duration) int
}

// Job drops long-dead check-in sessions from the in-memory registry so the
// arena does not grow without bound across a long process lifetime.
type Job struct {
	registry  sessionSweeper
	retention time.Duration
	logger    *zap.Logger
}

func New(registry sessionSweeper, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		registry:  registry,
		retention: retention,
		logger:    logger,
	}
}

func (j *Job) Run(_ context.Context) error {
	if j.registry == nil {
		return nil
	}

	removed := j.registry.Sweep(j.retention)
	if removed > 0 {
		j.logger.Info("swept dead check-in sessions", zap.Int("removed", removed))
	}
	return nil
}

// RunLoop executes the sweep immediately and then on every tick until ctx
// is cancelled.
func (j *Job) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	if err := j.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				return err
			}
		}
	}
}
