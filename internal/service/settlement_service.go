package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SettlementService resolves bets from posted game results and settles
// matchups: it computes both participants' final weekly balances, declares a
// winner, updates standings, and advances playoff brackets.
type SettlementService struct {
	db          *sqlx.DB
	betRepo     *repository.BetRepository
	gameRepo    *repository.GameRepository
	matchupRepo *repository.MatchupRepository
	leagueRepo  *repository.LeagueRepository
	cfg         *config.Config
	broadcaster Broadcaster
}

// NewSettlementService builds a SettlementService.
func NewSettlementService(
	db *sqlx.DB,
	betRepo *repository.BetRepository,
	gameRepo *repository.GameRepository,
	matchupRepo *repository.MatchupRepository,
	leagueRepo *repository.LeagueRepository,
	cfg *config.Config,
) *SettlementService {
	return &SettlementService{
		db:          db,
		betRepo:     betRepo,
		gameRepo:    gameRepo,
		matchupRepo: matchupRepo,
		leagueRepo:  leagueRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *SettlementService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// Bet evaluation
// ──────────────────────────────────────────────────────────────────────────────

// evaluateOutcome maps one selection against a final game. A tie loses every
// h2h selection; spreads and totals have no settlement policy yet and stay
// pending.
func evaluateOutcome(market domain.MarketType, outcomeName string, game *domain.Game) domain.BetStatus {
	if !game.IsFinal() {
		return domain.BetStatusPending
	}
	if market != domain.MarketH2H {
		return domain.BetStatusPending
	}
	if *game.Result == domain.ResultTie {
		return domain.BetStatusLost
	}
	if outcomeName == game.WinningTeam() {
		return domain.BetStatusWon
	}
	return domain.BetStatusLost
}

// parlayStatus folds leg statuses into the parlay's status: one lost leg loses
// the whole bet, all legs won wins it, anything else keeps it open.
func parlayStatus(legs []domain.BetLeg) domain.BetStatus {
	allWon := true
	for _, leg := range legs {
		switch leg.Status {
		case domain.BetStatusLost:
			return domain.BetStatusLost
		case domain.BetStatusWon:
		default:
			allWon = false
		}
	}
	if allWon {
		return domain.BetStatusWon
	}
	return domain.BetStatusPending
}

// ──────────────────────────────────────────────────────────────────────────────
// Game resolution
// ──────────────────────────────────────────────────────────────────────────────

// PostResult records a game's final score category and resolves every bet the
// game touches. Re-posting the same result is a no-op; a conflicting result is
// ignored because the first one stands.
func (s *SettlementService) PostResult(ctx context.Context, gameID string, result domain.GameResult) error {
	switch result {
	case domain.ResultHomeWin, domain.ResultAwayWin, domain.ResultTie:
	default:
		return fmt.Errorf("settlement_service.PostResult: unknown result %q", result)
	}

	if err := s.gameRepo.SetResult(ctx, gameID, result); err != nil {
		return fmt.Errorf("settlement_service.PostResult: %w", err)
	}
	return s.ResolveGameBets(ctx, gameID)
}

// ResolveGameBets resolves every pending or locked bet touching a final game,
// directly or through a parlay leg. A single failing bet does NOT abort the
// others.
func (s *SettlementService) ResolveGameBets(ctx context.Context, gameID string) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("settlement_service.ResolveGameBets: %w", err)
	}
	if !game.IsFinal() {
		return nil
	}

	bets, err := s.betRepo.ListUnresolvedByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("settlement_service.ResolveGameBets: %w", err)
	}

	for _, bet := range bets {
		if err := s.resolveBet(ctx, bet, game); err != nil {
			log.Printf("[settlement] ERROR resolving bet %s: %v", bet.ID, err)
		}
	}
	return nil
}

// resolveBet evaluates one bet against a final game and writes the terminal
// status if one is reached.
func (s *SettlementService) resolveBet(ctx context.Context, bet *domain.Bet, game *domain.Game) (err error) {
	var status domain.BetStatus
	var legUpdates []domain.BetLeg

	switch bet.Kind {
	case domain.BetKindSingle:
		option, optErr := s.gameRepo.GetOption(ctx, *bet.OptionID)
		if optErr != nil {
			return fmt.Errorf("resolveBet: get option: %w", optErr)
		}
		status = evaluateOutcome(option.MarketType, bet.OutcomeName, game)

	case domain.BetKindParlay:
		// Evaluate only the legs on this game; the rest keep their status.
		legs := make([]domain.BetLeg, len(bet.Legs))
		copy(legs, bet.Legs)
		for i := range legs {
			if legs[i].GameID != game.ID || legs[i].Status.IsTerminal() {
				continue
			}
			legStatus := evaluateOutcome(legs[i].MarketType, legs[i].OutcomeName, game)
			if legStatus.IsTerminal() {
				legs[i].Status = legStatus
				legUpdates = append(legUpdates, legs[i])
			}
		}
		status = parlayStatus(legs)

	default:
		return fmt.Errorf("resolveBet: unknown kind %q", bet.Kind)
	}

	if len(legUpdates) == 0 && !status.IsTerminal() {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("resolveBet: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, leg := range legUpdates {
		if err = s.betRepo.ResolveLeg(ctx, tx, leg.ID, leg.Status); err != nil {
			return err
		}
	}
	if status.IsTerminal() {
		if _, err = s.betRepo.Resolve(ctx, tx, bet.ID, status); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("resolveBet: commit: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Weekly balance
// ──────────────────────────────────────────────────────────────────────────────

// FinalBalance folds a side's resolved bets into a weekly balance starting
// from the full allowance. Pending, locked, and cancelled bets contribute
// nothing, so the fold is order-independent.
func FinalBalance(budget decimal.Decimal, bets []*domain.Bet) decimal.Decimal {
	balance := budget
	for _, b := range bets {
		balance = balance.Add(b.NetResult())
	}
	return balance
}

// ──────────────────────────────────────────────────────────────────────────────
// Matchup settlement
// ──────────────────────────────────────────────────────────────────────────────

// matchupOutcome is the settlement decision derived from both final balances.
type matchupOutcome struct {
	winnerID      *uuid.UUID
	loserID       *uuid.UUID
	winnerBalance decimal.Decimal
	loserBalance  decimal.Decimal
}

// movesStandings reports whether the outcome counts in the standings table.
// Every declared winner counts, playoff rounds included; only a tie leaves
// the table untouched.
func (o matchupOutcome) movesStandings() bool { return o.winnerID != nil }

// decideMatchup applies the strict-greater rule to both final balances. Equal
// balances declare no winner.
func decideMatchup(m *domain.Matchup, homeBalance, awayBalance decimal.Decimal) matchupOutcome {
	out := matchupOutcome{winnerBalance: homeBalance, loserBalance: awayBalance}
	switch {
	case homeBalance.GreaterThan(awayBalance):
		out.winnerID, out.loserID = m.HomeUserID, m.AwayUserID
	case awayBalance.GreaterThan(homeBalance):
		out.winnerID, out.loserID = m.AwayUserID, m.HomeUserID
		out.winnerBalance, out.loserBalance = awayBalance, homeBalance
	}
	return out
}

// SettleMatchup computes both final balances, declares the winner, and updates
// standings in one transaction. Calling it twice is harmless: the settled_at
// guard makes the second call a no-op. A strict balance tie records NULL as
// the winner, permanently.
func (s *SettlementService) SettleMatchup(ctx context.Context, matchupID uuid.UUID) (err error) {
	matchup, err := s.matchupRepo.GetByID(ctx, matchupID)
	if err != nil {
		return fmt.Errorf("settlement_service.SettleMatchup: %w", err)
	}
	if matchup.SettledAt != nil {
		return nil
	}
	if matchup.AwaitingAdvancement() {
		return fmt.Errorf("settlement_service.SettleMatchup %s: %w", matchupID, domain.ErrMatchupNotReady)
	}

	// Every bet must be terminal before a balance means anything.
	unresolved, err := s.betRepo.HasUnresolved(ctx, matchupID)
	if err != nil {
		return fmt.Errorf("settlement_service.SettleMatchup: %w", err)
	}
	if unresolved {
		return fmt.Errorf("settlement_service.SettleMatchup %s: %w", matchupID, domain.ErrMatchupNotReady)
	}

	bets, err := s.betRepo.ListByMatchup(ctx, matchupID)
	if err != nil {
		return fmt.Errorf("settlement_service.SettleMatchup: %w", err)
	}

	budget := decimal.NewFromFloat(s.cfg.League.WeeklyBudget)
	homeBets := make([]*domain.Bet, 0, len(bets))
	awayBets := make([]*domain.Bet, 0, len(bets))
	for _, b := range bets {
		switch b.UserID {
		case *matchup.HomeUserID:
			homeBets = append(homeBets, b)
		case *matchup.AwayUserID:
			awayBets = append(awayBets, b)
		}
	}
	homeBalance := FinalBalance(budget, homeBets)
	awayBalance := FinalBalance(budget, awayBets)

	out := decideMatchup(matchup, homeBalance, awayBalance)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settlement_service.SettleMatchup: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	settled, err := s.matchupRepo.SetResult(ctx, tx, matchupID, out.winnerID, homeBalance, awayBalance)
	if err != nil {
		return err
	}
	if !settled {
		// Lost the race to another settler.
		return tx.Commit()
	}

	if out.movesStandings() {
		if err = s.leagueRepo.ApplyMatchupResult(ctx, tx, matchup.LeagueID,
			*out.winnerID, *out.loserID, out.winnerBalance, out.loserBalance); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("settlement_service.SettleMatchup: commit: %w", err)
	}

	if out.winnerID != nil && matchup.Stage == domain.StagePlayoff {
		if err := s.matchupRepo.FillAdvancementSlots(ctx, matchupID, *out.winnerID); err != nil {
			log.Printf("[settlement] WARN: could not advance winner of matchup %s: %v", matchupID, err)
		}
	}

	log.Printf("[settlement] matchup %s settled: home=%s away=%s", matchupID,
		homeBalance.StringFixed(2), awayBalance.StringFixed(2))

	s.broadcastSettled(ctx, matchup.LeagueID, matchupID)
	return nil
}

func (s *SettlementService) broadcastSettled(ctx context.Context, leagueID, matchupID uuid.UUID) {
	if s.broadcaster == nil {
		return
	}
	matchup, err := s.matchupRepo.GetByID(ctx, matchupID)
	if err != nil {
		return
	}
	s.broadcaster.BroadcastMatchupSettled(leagueID, matchup)

	standings, err := s.leagueRepo.Standings(ctx, leagueID)
	if err != nil {
		return
	}
	s.broadcaster.BroadcastStandings(leagueID, standings)
}

// SettleDueMatchups walks every unsettled matchup with both sides filled and
// tries to settle it. Matchups still waiting on game results are skipped
// without noise; real failures are logged and do NOT block the others.
func (s *SettlementService) SettleDueMatchups(ctx context.Context) error {
	matchups, err := s.matchupRepo.ListUnsettled(ctx)
	if err != nil {
		return fmt.Errorf("settlement_service.SettleDueMatchups: %w", err)
	}
	for _, m := range matchups {
		if err := s.SettleMatchup(ctx, m.ID); err != nil {
			if errors.Is(err, domain.ErrMatchupNotReady) {
				continue
			}
			log.Printf("[settlement] ERROR settling matchup %s: %v", m.ID, err)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Lock sweep
// ──────────────────────────────────────────────────────────────────────────────

// LockStartedGames locks every betting option on games past kickoff and moves
// their pending bets to locked, in one transaction.
func (s *SettlementService) LockStartedGames(ctx context.Context) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settlement_service.LockStartedGames: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	gameIDs, err := s.gameRepo.LockOptionsForStartedGames(ctx, tx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(gameIDs) == 0 {
		return tx.Commit()
	}

	locked, err := s.betRepo.LockPendingByGames(ctx, tx, gameIDs)
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("settlement_service.LockStartedGames: commit: %w", err)
	}

	if locked > 0 {
		log.Printf("[settlement] locked %d bets across %d started games", locked, len(gameIDs))
	}
	return nil
}
