package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ScheduleService generates and manages a league's season: the regular-season
// round-robin, the playoff bracket, and schedule reset.
type ScheduleService struct {
	db          *sqlx.DB
	leagueRepo  *repository.LeagueRepository
	matchupRepo *repository.MatchupRepository
	cfg         *config.Config
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(
	db *sqlx.DB,
	leagueRepo *repository.LeagueRepository,
	matchupRepo *repository.MatchupRepository,
	cfg *config.Config,
) *ScheduleService {
	return &ScheduleService{
		db:          db,
		leagueRepo:  leagueRepo,
		matchupRepo: matchupRepo,
		cfg:         cfg,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Regular season
// ──────────────────────────────────────────────────────────────────────────────

// Generate builds the full regular-season schedule. Only the commissioner may
// call it, and it succeeds at most once per league: the setup_complete flip
// and the matchup inserts share one transaction, so a concurrent call either
// sees ErrScheduleAlreadyGenerated or nothing at all.
func (s *ScheduleService) Generate(ctx context.Context, leagueID, callerID uuid.UUID) (err error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return err
	}
	if league.CommissionerID != callerID {
		return domain.ErrNotCommissioner
	}
	if league.SetupComplete {
		return domain.ErrScheduleAlreadyGenerated
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("schedule_service.Generate: members: %w", err)
	}
	participants := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		participants = append(participants, m.UserID)
	}

	weeks, err := domain.RoundRobinSchedule(participants, s.cfg.League.SeasonWeeks)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	matchups := make([]*domain.Matchup, 0, len(participants)/2*len(weeks))
	for i, pairings := range weeks {
		week := i + 1
		for _, p := range pairings {
			home, away := p.Home, p.Away
			matchups = append(matchups, &domain.Matchup{
				ID:         uuid.New(),
				LeagueID:   leagueID,
				Week:       week,
				Stage:      domain.StageRegular,
				HomeUserID: &home,
				AwayUserID: &away,
				CreatedAt:  now,
			})
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schedule_service.Generate: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The flip is the once-only gate; losing the race surfaces here.
	if err = s.leagueRepo.MarkSetupComplete(ctx, tx, leagueID); err != nil {
		return err
	}
	if err = s.matchupRepo.CreateBatch(ctx, tx, matchups); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("schedule_service.Generate: commit: %w", err)
	}

	log.Printf("[schedule] league %s: generated %d matchups over %d weeks",
		leagueID, len(matchups), len(weeks))
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Playoffs
// ──────────────────────────────────────────────────────────────────────────────

// GeneratePlayoffs seeds the bracket from current standings and persists every
// round up front. Later rounds start with empty sides pointing at the matchups
// that feed them; settlement fills the slots as winners emerge.
func (s *ScheduleService) GeneratePlayoffs(ctx context.Context, leagueID, callerID uuid.UUID) (err error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return err
	}
	if league.CommissionerID != callerID {
		return domain.ErrNotCommissioner
	}
	if !league.SetupComplete {
		return domain.ErrScheduleAlreadyGenerated
	}

	existing, err := s.matchupRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("schedule_service.GeneratePlayoffs: %w", err)
	}
	for _, m := range existing {
		if m.Stage == domain.StagePlayoff {
			return domain.ErrScheduleAlreadyGenerated
		}
	}

	standings, err := s.leagueRepo.Standings(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("schedule_service.GeneratePlayoffs: standings: %w", err)
	}
	seeds := make([]uuid.UUID, 0, len(standings))
	for _, row := range standings {
		seeds = append(seeds, row.UserID)
	}

	bracket, err := domain.PlayoffBracket(seeds, s.cfg.League.PlayoffTeams, s.cfg.League.PlayoffStartWeek)
	if err != nil {
		return err
	}

	// Pre-assign ids so source references can point at sibling matchups.
	now := time.Now().UTC()
	ids := make([]uuid.UUID, len(bracket))
	for i := range ids {
		ids[i] = uuid.New()
	}

	matchups := make([]*domain.Matchup, 0, len(bracket))
	for i, slot := range bracket {
		m := &domain.Matchup{
			ID:        ids[i],
			LeagueID:  leagueID,
			Week:      slot.Week,
			Stage:     domain.StagePlayoff,
			CreatedAt: now,
		}
		if slot.Home != uuid.Nil {
			home := slot.Home
			m.HomeUserID = &home
		} else if slot.HomeSource != nil {
			source := ids[*slot.HomeSource]
			m.HomeSourceID = &source
		}
		if slot.Away != uuid.Nil {
			away := slot.Away
			m.AwayUserID = &away
		} else if slot.AwaySource != nil {
			source := ids[*slot.AwaySource]
			m.AwaySourceID = &source
		}
		matchups = append(matchups, m)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schedule_service.GeneratePlayoffs: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.matchupRepo.CreateBatch(ctx, tx, matchups); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("schedule_service.GeneratePlayoffs: commit: %w", err)
	}

	log.Printf("[schedule] league %s: playoff bracket created with %d matchups", leagueID, len(matchups))
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reset
// ──────────────────────────────────────────────────────────────────────────────

// Reset wipes a league's schedule and reopens setup. Bets hanging off the
// deleted matchups cascade away with them.
func (s *ScheduleService) Reset(ctx context.Context, leagueID, callerID uuid.UUID) (err error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return err
	}
	if league.CommissionerID != callerID {
		return domain.ErrNotCommissioner
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schedule_service.Reset: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleted, err := s.matchupRepo.DeleteByLeague(ctx, tx, leagueID)
	if err != nil {
		return err
	}
	if err = s.leagueRepo.ClearSetup(ctx, tx, leagueID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("schedule_service.Reset: commit: %w", err)
	}

	log.Printf("[schedule] league %s: schedule reset, %d matchups removed", leagueID, deleted)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Views
// ──────────────────────────────────────────────────────────────────────────────

// WeekMatchups lists a league week's matchups for a member.
func (s *ScheduleService) WeekMatchups(ctx context.Context, leagueID, viewerID uuid.UUID, week int) ([]*domain.Matchup, error) {
	if _, err := s.leagueRepo.GetMember(ctx, leagueID, viewerID); err != nil {
		return nil, err
	}
	return s.matchupRepo.ListByLeagueWeek(ctx, leagueID, week)
}

// FullSchedule lists the whole season for a member.
func (s *ScheduleService) FullSchedule(ctx context.Context, leagueID, viewerID uuid.UUID) ([]*domain.Matchup, error) {
	if _, err := s.leagueRepo.GetMember(ctx, leagueID, viewerID); err != nil {
		return nil, err
	}
	return s.matchupRepo.ListByLeague(ctx, leagueID)
}

// MyMatchup returns the caller's own matchup for a week.
func (s *ScheduleService) MyMatchup(ctx context.Context, leagueID, userID uuid.UUID, week int) (*domain.Matchup, error) {
	return s.matchupRepo.GetByUserWeek(ctx, leagueID, userID, week)
}
