package arena

import (
	"time"

	"go.uber.org/zap"
)

// TickManager drives the simulation clock: it invokes the tick callback once
// per interval until stopped. It implements the lifecycle Service interface.
//
// Invariant: the callback is invoked at most once per interval and never
// concurrently with itself.
type TickManager struct {
	interval time.Duration
	tick     func()
	logger   *zap.Logger
	done     chan struct{}
	stopped  chan struct{}
}

// NewTickManager returns a manager that calls tick every interval.
//
// Precondition: interval must be > 0; tick must be non-nil.
func NewTickManager(interval time.Duration, tick func(), logger *zap.Logger) *TickManager {
	if interval <= 0 {
		panic("arena.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		tick:     tick,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs the tick loop. It blocks until Stop is called.
func (t *TickManager) Start() error {
	t.logger.Info("simulation tick started", zap.Duration("interval", t.interval))
	ticker := time.NewTicker(t.interval)
	defer func() {
		ticker.Stop()
		close(t.stopped)
	}()

	for {
		select {
		case <-t.done:
			return nil
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop halts the tick loop and waits for the in-flight tick to finish.
func (t *TickManager) Stop() {
	close(t.done)
	<-t.stopped
}
