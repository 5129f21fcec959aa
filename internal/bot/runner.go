package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/config"
	"github.com/Nixiestone/smcbot/internal/database"
	"github.com/Nixiestone/smcbot/internal/market"
	"github.com/Nixiestone/smcbot/internal/ml"
	"github.com/Nixiestone/smcbot/internal/signal"
	"github.com/Nixiestone/smcbot/models"
)

// Runner drives the scan and monitor cycles from a single goroutine.
// Symbols are processed independently: one symbol failing never stops
// the cycle for the rest.
type Runner struct {
	cfg      *config.Config
	builder  *market.Builder
	manager  *signal.Manager
	engine   *ml.Engine
	db       *database.DB
	notifier models.Notifier
	logger   zerolog.Logger
}

// NewRunner wires the cycle driver. db and notifier may be nil when
// persistence or delivery is disabled.
func NewRunner(cfg *config.Config, builder *market.Builder, manager *signal.Manager, engine *ml.Engine, db *database.DB, notifier models.Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		builder:  builder,
		manager:  manager,
		engine:   engine,
		db:       db,
		notifier: notifier,
		logger:   log.With().Str("component", "bot").Logger(),
	}
}

// Run blocks until the context is cancelled. A full scan happens
// immediately on start, then on every scan tick; active signals are
// checked on the faster monitor tick.
func (r *Runner) Run(ctx context.Context) error {
	scanTicker := time.NewTicker(time.Duration(r.cfg.ScanIntervalSec) * time.Second)
	defer scanTicker.Stop()
	monitorTicker := time.NewTicker(time.Duration(r.cfg.MonitorIntervalSec) * time.Second)
	defer monitorTicker.Stop()
	hourlyTicker := time.NewTicker(time.Hour)
	defer hourlyTicker.Stop()

	r.logger.Info().
		Int("symbols", len(r.cfg.Symbols)).
		Int("scan_interval", r.cfg.ScanIntervalSec).
		Int("monitor_interval", r.cfg.MonitorIntervalSec).
		Msg("runner started")

	r.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("runner stopping")
			return ctx.Err()
		case <-scanTicker.C:
			r.scan(ctx)
		case <-monitorTicker.C:
			r.monitor(ctx)
		case <-hourlyTicker.C:
			if r.cfg.HourlyUpdate {
				r.hourlySummary(ctx)
			}
		}
	}
}

// scan builds a fresh market state per symbol and runs signal
// generation against it.
func (r *Runner) scan(ctx context.Context) {
	for _, symbol := range r.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}

		state, err := r.builder.Build(ctx, symbol)
		if err != nil {
			r.logger.Warn().Err(err).Str("symbol", symbol).Msg("skipping symbol this cycle")
			continue
		}

		sig, skip := r.manager.Generate(ctx, state)
		if sig == nil {
			r.logger.Debug().Str("symbol", symbol).Str("reason", skip).Msg("no signal")
			continue
		}

		if r.notifier != nil {
			if err := r.notifier.BroadcastSignal(ctx, sig); err != nil {
				r.logger.Error().Err(err).Str("signal_id", sig.SignalID).Msg("broadcasting signal failed")
			}
		}
	}
}

// monitor closes signals that hit their levels and retrains the
// confidence model when the ledger grew.
func (r *Runner) monitor(ctx context.Context) {
	closures := r.manager.CheckActive(ctx)
	if len(closures) == 0 {
		return
	}

	for i := range closures {
		if r.notifier != nil {
			if err := r.notifier.BroadcastClosure(ctx, &closures[i]); err != nil {
				r.logger.Error().Err(err).Str("signal_id", closures[i].SignalID).Msg("broadcasting closure failed")
			}
		}
	}

	r.retrain(ctx)
}

func (r *Runner) retrain(ctx context.Context) {
	if r.db == nil {
		return
	}
	samples, err := r.db.TrainingSamples(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("loading training ledger failed")
		return
	}
	r.engine.Retrain(samples)
}

// hourlySummary broadcasts the running performance numbers.
func (r *Runner) hourlySummary(ctx context.Context) {
	if r.notifier == nil {
		return
	}

	stats := r.manager.WinRate()
	text := fmt.Sprintf(
		"Hourly update\nActive signals: %d\nClosed: %d (W %d / L %d)\nWin rate: %.1f%%",
		r.manager.ActiveCount(), stats.Total, stats.Wins, stats.Losses, stats.WinRate,
	)
	if err := r.notifier.BroadcastMessage(ctx, text); err != nil {
		r.logger.Error().Err(err).Msg("broadcasting hourly update failed")
	}
}
