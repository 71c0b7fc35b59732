package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into services to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// Broadcaster is the minimal interface the services need from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastBetPlaced(leagueID uuid.UUID, bet *domain.Bet)
	BroadcastMatchupSettled(leagueID uuid.UUID, matchup *domain.Matchup)
	BroadcastStandings(leagueID uuid.UUID, standings []*domain.StandingRow)
}

// ──────────────────────────────────────────────────────────────────────────────
// BetService
// ──────────────────────────────────────────────────────────────────────────────

// BetService orchestrates bet placement against the weekly allowance.
// The budget check and the bet insert happen inside a single PostgreSQL
// transaction serialized on the participant's league_members row, so two
// concurrent placements can never jointly overshoot the allowance.
type BetService struct {
	db          *sqlx.DB
	betRepo     *repository.BetRepository
	gameRepo    *repository.GameRepository
	matchupRepo *repository.MatchupRepository
	leagueRepo  *repository.LeagueRepository
	cfg         *config.Config
	broadcaster Broadcaster // injected after WS Hub is built
}

// NewBetService creates a BetService.
func NewBetService(
	db *sqlx.DB,
	betRepo *repository.BetRepository,
	gameRepo *repository.GameRepository,
	matchupRepo *repository.MatchupRepository,
	leagueRepo *repository.LeagueRepository,
	cfg *config.Config,
) *BetService {
	return &BetService{
		db:          db,
		betRepo:     betRepo,
		gameRepo:    gameRepo,
		matchupRepo: matchupRepo,
		leagueRepo:  leagueRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *BetService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

func (s *BetService) weeklyBudget() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.League.WeeklyBudget)
}

func (s *BetService) maxBetAmount() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.League.MaxBetAmount)
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBet
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBet validates the request and records a single bet with its odds
// snapshot. Checks run in a fixed order so callers always see the same error
// for the same state: participation, option lock, game start, amount, budget.
func (s *BetService) PlaceBet(ctx context.Context, req domain.PlaceBetRequest) (*domain.Bet, error) {
	// ── 1. Matchup and participation ─────────────────────────────────────────
	matchup, err := s.matchupRepo.GetByID(ctx, req.MatchupID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: get matchup: %w", err)
	}
	if !matchup.HasParticipant(req.UserID) {
		return nil, domain.ErrNotAParticipant
	}

	// ── 2. Option must be open ───────────────────────────────────────────────
	option, err := s.gameRepo.GetOption(ctx, req.OptionID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: get option: %w", err)
	}
	if option.IsLocked {
		return nil, domain.ErrOptionLocked
	}

	// ── 3. Game must not have kicked off ─────────────────────────────────────
	game, err := s.gameRepo.GetByID(ctx, option.GameID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: get game: %w", err)
	}
	if game.HasStarted(time.Now().UTC()) {
		return nil, domain.ErrGameStarted
	}

	// ── 4. Amount bounds ─────────────────────────────────────────────────────
	if req.Amount.LessThanOrEqual(decimal.Zero) || req.Amount.GreaterThan(s.maxBetAmount()) {
		return nil, domain.ErrInvalidAmount
	}

	// ── 5. Odds snapshot — always derived from the American value ────────────
	decimalOdds, err := domain.AmericanToDecimal(option.AmericanOdds)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: odds: %w", err)
	}

	// ── 6. Transaction: budget check and insert behind the member lock ───────
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.leagueRepo.LockMember(ctx, tx, matchup.LeagueID, req.UserID); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: lock member: %w", err)
	}

	staked, err := s.betRepo.WeeklyStaked(ctx, tx, matchup.LeagueID, req.UserID, matchup.Week)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: weekly staked: %w", err)
	}
	if staked.Add(req.Amount).GreaterThan(s.weeklyBudget()) {
		err = &domain.BudgetExceededError{Remaining: s.weeklyBudget().Sub(staked)}
		return nil, err
	}

	now := time.Now().UTC()
	optionID := option.ID
	bet := &domain.Bet{
		ID:              uuid.New(),
		UserID:          req.UserID,
		MatchupID:       req.MatchupID,
		Kind:            domain.BetKindSingle,
		OptionID:        &optionID,
		OutcomeName:     option.OutcomeName,
		Bookmaker:       option.Bookmaker,
		AmericanOdds:    option.AmericanOdds,
		DecimalOdds:     decimalOdds,
		Amount:          req.Amount,
		PotentialPayout: domain.SinglePayout(req.Amount, decimalOdds),
		Status:          domain.BetStatusPending,
		PlacedAt:        now,
	}
	if err = s.betRepo.Create(ctx, tx, bet); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: create bet: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: commit: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBetPlaced(matchup.LeagueID, bet)
	}
	return bet, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceParlay
// ──────────────────────────────────────────────────────────────────────────────

// PlaceParlay records one combined bet over several options. Every leg is
// validated before anything is written; the single transaction makes the
// placement all-or-nothing, and the stake counts against the weekly budget
// once, not per leg.
func (s *BetService) PlaceParlay(ctx context.Context, req domain.PlaceParlayRequest) (*domain.Bet, error) {
	if len(req.OptionIDs) < 2 {
		return nil, domain.ErrInvalidParlay
	}
	if len(req.OptionIDs) > s.cfg.League.MaxParlayLegs {
		return nil, domain.ErrTooManyLegs
	}

	matchup, err := s.matchupRepo.GetByID(ctx, req.MatchupID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: get matchup: %w", err)
	}
	if !matchup.HasParticipant(req.UserID) {
		return nil, domain.ErrNotAParticipant
	}

	// Validate every leg before touching the database for writes.
	now := time.Now().UTC()
	options := make([]*domain.BettingOption, 0, len(req.OptionIDs))
	americans := make([]int64, 0, len(req.OptionIDs))
	for _, optionID := range req.OptionIDs {
		option, err := s.gameRepo.GetOption(ctx, optionID)
		if err != nil {
			return nil, fmt.Errorf("bet_service.PlaceParlay: get option: %w", err)
		}
		if option.IsLocked {
			return nil, domain.ErrOptionLocked
		}
		game, err := s.gameRepo.GetByID(ctx, option.GameID)
		if err != nil {
			return nil, fmt.Errorf("bet_service.PlaceParlay: get game: %w", err)
		}
		if game.HasStarted(now) {
			return nil, domain.ErrGameStarted
		}
		options = append(options, option)
		americans = append(americans, option.AmericanOdds)
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) || req.Amount.GreaterThan(s.maxBetAmount()) {
		return nil, domain.ErrInvalidAmount
	}

	combined, err := domain.ParlayDecimalOdds(americans)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: odds: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.leagueRepo.LockMember(ctx, tx, matchup.LeagueID, req.UserID); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: lock member: %w", err)
	}

	staked, err := s.betRepo.WeeklyStaked(ctx, tx, matchup.LeagueID, req.UserID, matchup.Week)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: weekly staked: %w", err)
	}
	if staked.Add(req.Amount).GreaterThan(s.weeklyBudget()) {
		err = &domain.BudgetExceededError{Remaining: s.weeklyBudget().Sub(staked)}
		return nil, err
	}

	bet := &domain.Bet{
		ID:              uuid.New(),
		UserID:          req.UserID,
		MatchupID:       req.MatchupID,
		Kind:            domain.BetKindParlay,
		OutcomeName:     fmt.Sprintf("%d-leg parlay", len(options)),
		AmericanOdds:    0,
		DecimalOdds:     combined,
		Amount:          req.Amount,
		PotentialPayout: domain.SinglePayout(req.Amount, combined),
		Status:          domain.BetStatusPending,
		PlacedAt:        now,
	}

	legs := make([]domain.BetLeg, 0, len(options))
	for _, option := range options {
		legOdds, oddsErr := domain.AmericanToDecimal(option.AmericanOdds)
		if oddsErr != nil {
			err = fmt.Errorf("bet_service.PlaceParlay: leg odds: %w", oddsErr)
			return nil, err
		}
		legs = append(legs, domain.BetLeg{
			ID:           uuid.New(),
			BetID:        bet.ID,
			OptionID:     option.ID,
			GameID:       option.GameID,
			OutcomeName:  option.OutcomeName,
			MarketType:   option.MarketType,
			Bookmaker:    option.Bookmaker,
			AmericanOdds: option.AmericanOdds,
			DecimalOdds:  legOdds,
			Status:       domain.BetStatusPending,
		})
	}
	bet.Legs = legs

	if err = s.betRepo.Create(ctx, tx, bet); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: create bet: %w", err)
	}
	if err = s.betRepo.CreateLegs(ctx, tx, legs); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: create legs: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bet_service.PlaceParlay: commit: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBetPlaced(matchup.LeagueID, bet)
	}
	return bet, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// QuoteParlay
// ──────────────────────────────────────────────────────────────────────────────

// ParlayLegQuote mirrors one selection in a parlay quote.
type ParlayLegQuote struct {
	OptionID     uuid.UUID         `json:"option_id"`
	OutcomeName  string            `json:"outcome_name"`
	MarketType   domain.MarketType `json:"market_type"`
	Bookmaker    string            `json:"bookmaker"`
	AmericanOdds int64             `json:"american_odds"`
	DecimalOdds  decimal.Decimal   `json:"decimal_odds"`
}

// ParlayQuoteResponse is the full quote for a prospective parlay.
type ParlayQuoteResponse struct {
	domain.ParlayQuote
	LegCount int              `json:"leg_count"`
	Legs     []ParlayLegQuote `json:"legs"`
}

// QuoteParlay prices a parlay without placing it.
func (s *BetService) QuoteParlay(ctx context.Context, stake decimal.Decimal, optionIDs []uuid.UUID) (*ParlayQuoteResponse, error) {
	if len(optionIDs) < 2 {
		return nil, domain.ErrInvalidParlay
	}
	if len(optionIDs) > s.cfg.League.MaxParlayLegs {
		return nil, domain.ErrTooManyLegs
	}

	americans := make([]int64, 0, len(optionIDs))
	legs := make([]ParlayLegQuote, 0, len(optionIDs))
	for _, optionID := range optionIDs {
		option, err := s.gameRepo.GetOption(ctx, optionID)
		if err != nil {
			return nil, fmt.Errorf("bet_service.QuoteParlay: get option: %w", err)
		}
		legOdds, err := domain.AmericanToDecimal(option.AmericanOdds)
		if err != nil {
			return nil, fmt.Errorf("bet_service.QuoteParlay: leg odds: %w", err)
		}
		americans = append(americans, option.AmericanOdds)
		legs = append(legs, ParlayLegQuote{
			OptionID:     option.ID,
			OutcomeName:  option.OutcomeName,
			MarketType:   option.MarketType,
			Bookmaker:    option.Bookmaker,
			AmericanOdds: option.AmericanOdds,
			DecimalOdds:  legOdds.Round(4),
		})
	}

	quote, err := domain.ParlayProfit(stake, americans)
	if err != nil {
		return nil, fmt.Errorf("bet_service.QuoteParlay: %w", err)
	}
	return &ParlayQuoteResponse{ParlayQuote: quote, LegCount: len(legs), Legs: legs}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Query helpers
// ──────────────────────────────────────────────────────────────────────────────

// GetWeekBets returns a user's bets for a league week with budget accounting.
func (s *BetService) GetWeekBets(ctx context.Context, leagueID, userID uuid.UUID, week int) (*domain.WeeklyBets, error) {
	bets, err := s.betRepo.ListByUserWeek(ctx, leagueID, userID, week)
	if err != nil {
		return nil, fmt.Errorf("bet_service.GetWeekBets: %w", err)
	}

	total := decimal.Zero
	result := make([]domain.Bet, 0, len(bets))
	for _, b := range bets {
		if b.Status != domain.BetStatusCancelled {
			total = total.Add(b.Amount)
		}
		result = append(result, *b)
	}
	return &domain.WeeklyBets{
		Week:        week,
		Bets:        result,
		TotalStaked: total,
		Remaining:   s.weeklyBudget().Sub(total),
	}, nil
}

// MatchupSideBets groups one participant's bets with totals.
type MatchupSideBets struct {
	UserID           *uuid.UUID      `json:"user_id"`
	Bets             []domain.Bet    `json:"bets"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PotentialPayout  decimal.Decimal `json:"potential_payout"`
	RemainingBudget  decimal.Decimal `json:"remaining_budget"`
}

// GetMatchupBets returns both sides of a matchup. Only league members may
// look inside.
func (s *BetService) GetMatchupBets(ctx context.Context, matchupID, viewerID uuid.UUID) (*domain.Matchup, *MatchupSideBets, *MatchupSideBets, error) {
	matchup, err := s.matchupRepo.GetByID(ctx, matchupID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("bet_service.GetMatchupBets: %w", err)
	}
	if _, err := s.leagueRepo.GetMember(ctx, matchup.LeagueID, viewerID); err != nil {
		return nil, nil, nil, err
	}

	bets, err := s.betRepo.ListByMatchup(ctx, matchupID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("bet_service.GetMatchupBets: %w", err)
	}

	home := s.sideBets(matchup.HomeUserID, bets)
	away := s.sideBets(matchup.AwayUserID, bets)
	return matchup, home, away, nil
}

func (s *BetService) sideBets(userID *uuid.UUID, all []*domain.Bet) *MatchupSideBets {
	side := &MatchupSideBets{
		UserID:          userID,
		Bets:            []domain.Bet{},
		TotalAmount:     decimal.Zero,
		PotentialPayout: decimal.Zero,
	}
	if userID == nil {
		side.RemainingBudget = s.weeklyBudget()
		return side
	}
	for _, b := range all {
		if b.UserID != *userID {
			continue
		}
		side.Bets = append(side.Bets, *b)
		if b.Status != domain.BetStatusCancelled {
			side.TotalAmount = side.TotalAmount.Add(b.Amount)
			side.PotentialPayout = side.PotentialPayout.Add(b.PotentialPayout)
		}
	}
	side.RemainingBudget = s.weeklyBudget().Sub(side.TotalAmount)
	return side
}

// CancelBet voids a pending or locked bet (back-office action). Cancelled
// stakes return to the weekly budget and contribute nothing at settlement.
func (s *BetService) CancelBet(ctx context.Context, betID uuid.UUID) error {
	if err := s.betRepo.Cancel(ctx, betID); err != nil {
		return fmt.Errorf("bet_service.CancelBet: %w", err)
	}
	return nil
}

// GetBetByID returns a single bet only if it belongs to userID.
func (s *BetService) GetBetByID(ctx context.Context, betID, userID uuid.UUID) (*domain.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("bet_service.GetBetByID: %w", err)
	}
	if bet.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return bet, nil
}
