// Package daemon wires the relay's components together and governs the
// process lifecycle: startup order, signal handling, graceful shutdown, and
// bounded restart after fatal failures.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harun/mira/internal/ai"
	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/dispatch"
	"github.com/harun/mira/internal/health"
	"github.com/harun/mira/internal/logger"
	"github.com/harun/mira/internal/metrics"
	"github.com/harun/mira/internal/session"
	"github.com/harun/mira/internal/telegram"
	"github.com/robfig/cron/v3"
)

// Daemon represents one full initialization of the relay. The supervisor
// builds a fresh Daemon per attempt; session state is intentionally not
// preserved across restarts.
type Daemon struct {
	config *config.Config
	logger *logger.Logger

	// Core modules
	metrics    *metrics.Metrics
	store      *session.Store
	completer  ai.Completer
	dispatcher *dispatch.Dispatcher

	// Services
	bot          *telegram.Bot
	healthServer *health.Server
	maintenance  *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	startTime time.Time
	running   bool
	mu        sync.RWMutex
}

// Status describes the daemon's runtime state
type Status struct {
	Running   bool
	StartTime time.Time
	Uptime    time.Duration
}

// New creates a new daemon instance with all components initialized in
// dependency order
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config: cfg,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := d.initialize(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize daemon: %w", err)
	}

	return d, nil
}

// initialize builds all components in dependency order
func (d *Daemon) initialize() error {
	zl := d.logger.GetZerolog()

	d.metrics = metrics.NewMetrics()
	d.logger.Info().Msg("Metrics initialized")

	d.store = session.NewStore(d.config.Session.MaxHistory, zl)
	d.logger.Info().Int("max_history", d.config.Session.MaxHistory).Msg("Session store initialized")

	completer, err := ai.New(d.ctx, d.config.AI, zl)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}
	d.completer = completer
	d.logger.Info().Str("provider", completer.Name()).Msg("Completion provider initialized")

	d.dispatcher = dispatch.New(d.store, d.completer, d.metrics, zl)
	d.logger.Info().Msg("Dispatcher initialized")

	bot, err := telegram.New(&d.config.Telegram, d.store, d.dispatcher, d.metrics, d.logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	d.bot = bot

	d.healthServer = health.NewServer(d.config.Health.Host, d.config.Health.Port, d.metrics.Handler(), zl)

	d.maintenance = cron.New()
	if _, err := d.maintenance.AddFunc("@every 1m", d.logStats); err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	return nil
}

// Start starts all services
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	d.logger.Info().Msg("Starting Mira daemon")

	// Health probe runs regardless of transport state
	d.healthServer.Start()

	if err := d.bot.Start(); err != nil {
		return fmt.Errorf("failed to start telegram bot: %w", err)
	}

	d.maintenance.Start()

	d.logger.Info().Msg("Daemon started successfully")

	return nil
}

// Stop stops all services gracefully: new inbound messages are refused
// first, then the health endpoint closes, then everything else.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info().Msg("Stopping Mira daemon")

	if err := d.bot.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop telegram bot")
	}

	if err := d.healthServer.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop health endpoint")
	}

	ctx := d.maintenance.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		d.logger.Warn().Msg("Timeout waiting for maintenance jobs to stop")
	}

	if err := d.completer.Close(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to close completion provider")
	}

	d.store.Reset()
	d.cancel()

	d.logger.Info().Msg("Daemon stopped successfully")

	return nil
}

// Wait blocks until a termination signal arrives or the transport fails
// fatally. A clean signal-driven shutdown returns nil; a fatal transport
// failure shuts down and returns the error so the supervisor can restart.
func (d *Daemon) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		d.logger.Info().Str("signal", sig.String()).Msg("Received signal")
		if err := d.Stop(); err != nil {
			d.logger.Error().Err(err).Msg("Failed to stop daemon")
		}
		return nil

	case err := <-d.bot.Fatal():
		d.metrics.FatalFailuresTotal.Inc()
		d.logger.Error().Err(err).Msg("Fatal transport failure")
		if stopErr := d.Stop(); stopErr != nil {
			d.logger.Error().Err(stopErr).Msg("Failed to stop daemon")
		}
		return err
	}
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running: d.running,
	}

	if d.running {
		status.StartTime = d.startTime
		status.Uptime = time.Since(d.startTime)
	}

	return status
}

// logStats is the periodic maintenance job
func (d *Daemon) logStats() {
	count := d.store.Count()
	d.metrics.SessionsActive.Set(float64(count))

	d.logger.Debug().
		Int("sessions", count).
		Dur("uptime", time.Since(d.startTime)).
		Msg("Maintenance stats")
}

// Run initializes, starts, and waits for one daemon lifetime. It is the unit
// of work the supervisor retries.
func Run(cfg *config.Config, log *logger.Logger) error {
	d, err := New(cfg, log)
	if err != nil {
		return err
	}

	if err := d.Start(); err != nil {
		// Partial startup still needs teardown
		_ = d.Stop()
		return err
	}

	return d.Wait()
}
