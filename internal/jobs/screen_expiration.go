package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// IdleCloser tears down screens untouched since a given moment.
type IdleCloser interface {
	CloseIdle(before time.Time) int
}

// ScreenExpirationJob closes booking and tickets screens the visitor abandoned without dismounting them.
type ScreenExpirationJob struct {
	screens     IdleCloser
	idleTimeout time.Duration
	interval    time.Duration
	clock       clockwork.Clock

	ticker   clockwork.Ticker
	done     chan bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScreenExpirationJob creates a new idle screen sweeper
func NewScreenExpirationJob(screens IdleCloser, idleTimeout, interval time.Duration, clock clockwork.Clock) *ScreenExpirationJob {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ScreenExpirationJob{
		screens:     screens,
		idleTimeout: idleTimeout,
		interval:    interval,
		clock:       clock,
		done:        make(chan bool),
	}
}

// Start begins the background sweep
func (j *ScreenExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting screen expiration job", "check_interval", j.interval.String(), "idle_timeout", j.idleTimeout.String())

	j.ticker = j.clock.NewTicker(j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		for {
			select {
			case <-j.ticker.Chan():
				j.closeIdleScreens()
			case <-ctx.Done():
				slog.Info("Screen expiration job stopped", "reason", ctx.Err())
				return
			case <-j.done:
				slog.Info("Screen expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job and waits for a running sweep
func (j *ScreenExpirationJob) Stop() {
	j.stopOnce.Do(func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.done)
	})
	j.wg.Wait()
}

func (j *ScreenExpirationJob) closeIdleScreens() {
	before := j.clock.Now().Add(-j.idleTimeout)

	closed := j.screens.CloseIdle(before)
	if closed == 0 {
		slog.Debug("No idle screens found")
		return
	}

	slog.Info("Closed idle screens", "count", closed, "idle_since", before)
}
