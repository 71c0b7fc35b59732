// Package scheduler manages the three background goroutines that run the
// betting-league lifecycle:
//  1. oddsSyncLoop   – refreshes the odds board from the provider.
//  2. lockSweepLoop  – locks options and bets on games past kickoff.
//  3. settleLoop     – resolves bets and settles completed matchups.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/service"
)

// Scheduler wires together the services and runs the background loops.
// Call Start(ctx) once from main(); cancel the context to shut it down
// gracefully.
type Scheduler struct {
	oddsSvc       *service.OddsService
	settlementSvc *service.SettlementService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	oddsSvc *service.OddsService,
	settlementSvc *service.SettlementService,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		oddsSvc:       oddsSvc,
		settlementSvc: settlementSvc,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches the three background goroutines.  It returns immediately;
// all loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.oddsSyncLoop(ctx)
	go s.lockSweepLoop(ctx)
	go s.settleLoop(ctx)
	s.logger.Info("scheduler started",
		"odds_sync", s.cfg.Odds.SyncInterval,
		"lock_sweep", s.cfg.League.LockCheckInterval,
		"settle", s.cfg.League.SettleInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// oddsSyncLoop
// ──────────────────────────────────────────────────────────────────────────────

// oddsSyncLoop refreshes the current week's odds board on the configured
// interval. One sync runs at startup so a fresh deployment has a board
// immediately.
func (s *Scheduler) oddsSyncLoop(ctx context.Context) {
	defer s.recoverAndLog("oddsSyncLoop")

	s.syncOdds(ctx)

	ticker := time.NewTicker(s.cfg.Odds.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("oddsSyncLoop: shutting down")
			return
		case <-ticker.C:
			s.syncOdds(ctx)
		}
	}
}

func (s *Scheduler) syncOdds(ctx context.Context) {
	week := s.cfg.League.CurrentWeek(time.Now().UTC())
	games, options, err := s.oddsSvc.SyncWeek(ctx, week)
	if err != nil {
		s.logger.Error("oddsSyncLoop: sync failed", "week", week, "err", err)
		return
	}
	s.logger.Info("odds synced", "week", week, "games", games, "options", options)
}

// ──────────────────────────────────────────────────────────────────────────────
// lockSweepLoop
// ──────────────────────────────────────────────────────────────────────────────

// lockSweepLoop locks betting on started games.
func (s *Scheduler) lockSweepLoop(ctx context.Context) {
	defer s.recoverAndLog("lockSweepLoop")

	ticker := time.NewTicker(s.cfg.League.LockCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lockSweepLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.settlementSvc.LockStartedGames(ctx); err != nil {
				s.logger.Error("lockSweepLoop: LockStartedGames", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// settleLoop
// ──────────────────────────────────────────────────────────────────────────────

// settleLoop settles every matchup whose bets have all resolved.
func (s *Scheduler) settleLoop(ctx context.Context) {
	defer s.recoverAndLog("settleLoop")

	ticker := time.NewTicker(s.cfg.League.SettleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settleLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.settlementSvc.SettleDueMatchups(ctx); err != nil {
				s.logger.Error("settleLoop: SettleDueMatchups", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
