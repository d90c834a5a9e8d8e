package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is a supervisor lifecycle state
type State string

const (
	StateStarting     State = "starting"
	StateRunning      State = "running"
	StateShuttingDown State = "shutting_down"
	StateRestarting   State = "restarting"
	StateStopped      State = "stopped"
)

const (
	// DefaultMaxAttempts bounds how many times the daemon is run before a
	// fatal failure becomes terminal
	DefaultMaxAttempts = 3
	// DefaultBackoff is the fixed delay before a restart attempt
	DefaultBackoff = 5 * time.Second
)

// RunFunc runs one full daemon lifetime: initialize, serve, shut down. It
// returns nil on a clean, signal-driven shutdown and an error on a fatal
// failure.
type RunFunc func() error

// Supervisor restarts the daemon after fatal failures, bounded by an attempt
// budget. Exhausting the budget is terminal.
type Supervisor struct {
	run         RunFunc
	maxAttempts int
	backoff     time.Duration
	logger      zerolog.Logger

	state State
	mu    sync.RWMutex
}

// NewSupervisor creates a new supervisor around a run function
func NewSupervisor(run RunFunc, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		run:         run,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		logger:      logger.With().Str("component", "supervisor").Logger(),
		state:       StateStarting,
	}
}

// SetMaxAttempts overrides the attempt budget
func (s *Supervisor) SetMaxAttempts(n int) {
	s.maxAttempts = n
}

// SetBackoff overrides the restart delay
func (s *Supervisor) SetBackoff(d time.Duration) {
	s.backoff = d
}

// State returns the current lifecycle state
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.logger.Debug().Str("state", string(state)).Msg("State transition")
}

// Run runs the daemon until a clean shutdown or until the attempt budget is
// exhausted. Each attempt reinitializes all components from scratch.
func (s *Supervisor) Run() error {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.setState(StateStarting)
		s.setState(StateRunning)

		err := s.run()

		s.setState(StateShuttingDown)

		if err == nil {
			// Explicit shutdown was requested; no restart.
			s.setState(StateStopped)
			s.logger.Info().Msg("Clean shutdown")
			return nil
		}

		lastErr = err
		s.logger.Error().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", s.maxAttempts).
			Msg("Fatal failure")

		if attempt < s.maxAttempts {
			s.setState(StateRestarting)
			s.logger.Info().
				Dur("backoff", s.backoff).
				Msg("Restarting after backoff")
			time.Sleep(s.backoff)
		}
	}

	s.setState(StateStopped)

	return fmt.Errorf("giving up after %d failed attempts: %w", s.maxAttempts, lastErr)
}
