// Package schedule drives the screen clock. Every interval it posts a tick to
// the state machine so the header time and greeting advance without a fetch.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/screen"
)

// DefaultInterval is the clock tick period.
const DefaultInterval = time.Minute

// tickTimeout bounds a single tick delivery to a busy event loop.
const tickTimeout = 5 * time.Second

// Ticker receives clock ticks.
type Ticker interface {
	Tick(ctx context.Context) (screen.State, error)
}

// Config holds configuration for the clock scheduler.
type Config struct {
	Target   Ticker
	Interval time.Duration
	Logger   zerolog.Logger
}

// Clock posts ticks to its target on a gocron schedule.
type Clock struct {
	scheduler *gocron.Scheduler
	target    Ticker
	interval  time.Duration
	logger    zerolog.Logger
}

// New creates a clock. It does nothing until Start is called.
func New(cfg Config) *Clock {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Clock{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    cfg.Target,
		interval:  interval,
		logger:    cfg.Logger.With().Str("component", "clock").Logger(),
	}
}

// Start schedules the tick job and starts the scheduler in the background.
func (c *Clock) Start() error {
	_, err := c.scheduler.Every(c.interval).SingletonMode().Do(c.tick)
	if err != nil {
		return fmt.Errorf("scheduling clock tick: %w", err)
	}

	c.scheduler.StartAsync()
	c.logger.Info().Dur("interval", c.interval).Msg("clock started")
	return nil
}

// Stop stops the scheduler. Ticks already in flight complete.
func (c *Clock) Stop() {
	c.scheduler.Stop()
	c.logger.Info().Msg("clock stopped")
}

func (c *Clock) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	state, err := c.target.Tick(ctx)
	switch {
	case errors.Is(err, screen.ErrStopped):
		c.logger.Debug().Msg("screen stopped; tick skipped")
	case err != nil:
		c.logger.Warn().Err(err).Msg("tick failed")
	default:
		c.logger.Debug().Uint64("revision", state.Revision).Msg("tick")
	}
}
