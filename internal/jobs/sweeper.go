package jobs

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically evicts terminal jobs from a registry so the job
// map does not grow for the lifetime of the process.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
}

// NewSweeper creates a sweeper for the given registry.
func NewSweeper(registry *Registry, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		interval: interval,
		maxAge:   maxAge,
		stopChan: make(chan struct{}),
	}
}

// Start begins periodic sweeping in the background.
func (s *Sweeper) Start() {
	ticker := time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.registry.sweep(s.maxAge)
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Info().
		Dur("interval", s.interval).
		Dur("max_age", s.maxAge).
		Msg("job sweeper started")
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}
