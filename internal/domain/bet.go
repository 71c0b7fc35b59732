package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BetStatus represents the current state of a participant's bet.
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"   // placed, game not started
	BetStatusLocked    BetStatus = "locked"    // game underway, awaiting result
	BetStatusWon       BetStatus = "won"       // resolved in the bettor's favour
	BetStatusLost      BetStatus = "lost"      // resolved against the bettor
	BetStatusCancelled BetStatus = "cancelled" // voided; excluded from everything
)

// IsTerminal reports whether the status can no longer change.
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusCancelled
}

// BetKind distinguishes singles from parlays.
type BetKind string

const (
	BetKindSingle BetKind = "single"
	BetKindParlay BetKind = "parlay"
)

// WeeklyBudget is the virtual allowance each participant can stake per
// matchup week. Non-cancelled bets count against it.
var WeeklyBudget = decimal.NewFromInt(100)

// MaxParlayLegs caps how many legs a single parlay may combine.
const MaxParlayLegs = 10

// ──────────────────────────────────────────────────────────────────────────────
// Bet
// ──────────────────────────────────────────────────────────────────────────────

// Bet is a wager by one participant inside one matchup. Odds are snapshotted
// at placement; later provider updates never touch an existing bet. For
// parlays the snapshot holds the combined odds and the per-leg detail lives
// in Legs.
type Bet struct {
	ID              uuid.UUID       `json:"id"               db:"id"`
	UserID          uuid.UUID       `json:"user_id"          db:"user_id"`
	MatchupID       uuid.UUID       `json:"matchup_id"       db:"matchup_id"`
	Kind            BetKind         `json:"kind"             db:"kind"`
	OptionID        *uuid.UUID      `json:"option_id"        db:"option_id"` // NULL for parlays
	OutcomeName     string          `json:"outcome_name"     db:"outcome_name"`
	Bookmaker       string          `json:"bookmaker"        db:"bookmaker"`
	AmericanOdds    int64           `json:"american_odds"    db:"american_odds"`
	DecimalOdds     decimal.Decimal `json:"decimal_odds"     db:"decimal_odds"`
	Amount          decimal.Decimal `json:"amount"           db:"amount"`
	PotentialPayout decimal.Decimal `json:"potential_payout" db:"potential_payout"`
	Status          BetStatus       `json:"status"           db:"status"`
	Legs            []BetLeg        `json:"legs,omitempty"   db:"-"`
	PlacedAt        time.Time       `json:"placed_at"        db:"placed_at"`
	LockedAt        *time.Time      `json:"locked_at"        db:"locked_at"`
	ResolvedAt      *time.Time      `json:"resolved_at"      db:"resolved_at"`
}

// BetLeg is one selection inside a parlay, with its own odds snapshot so the
// combined price can always be audited.
type BetLeg struct {
	ID           uuid.UUID       `json:"id"            db:"id"`
	BetID        uuid.UUID       `json:"bet_id"        db:"bet_id"`
	OptionID     uuid.UUID       `json:"option_id"     db:"option_id"`
	GameID       string          `json:"game_id"       db:"game_id"`
	OutcomeName  string          `json:"outcome_name"  db:"outcome_name"`
	MarketType   MarketType      `json:"market_type"   db:"market_type"`
	Bookmaker    string          `json:"bookmaker"     db:"bookmaker"`
	AmericanOdds int64           `json:"american_odds" db:"american_odds"`
	DecimalOdds  decimal.Decimal `json:"decimal_odds"  db:"decimal_odds"`
	Status       BetStatus       `json:"status"        db:"status"`
}

// NetResult is the bet's contribution to a weekly balance: payout minus stake
// when won, minus stake when lost, zero otherwise.
func (b *Bet) NetResult() decimal.Decimal {
	switch b.Status {
	case BetStatusWon:
		return b.PotentialPayout.Sub(b.Amount)
	case BetStatusLost:
		return b.Amount.Neg()
	}
	return decimal.Zero
}

// ──────────────────────────────────────────────────────────────────────────────
// Requests — value objects used by BetService
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBetRequest carries the inputs for a single bet.
type PlaceBetRequest struct {
	UserID    uuid.UUID
	MatchupID uuid.UUID
	OptionID  uuid.UUID
	Amount    decimal.Decimal
}

// PlaceParlayRequest carries the inputs for a parlay: one stake over several
// option selections, all placed or none.
type PlaceParlayRequest struct {
	UserID    uuid.UUID
	MatchupID uuid.UUID
	OptionIDs []uuid.UUID
	Amount    decimal.Decimal
}

// WeeklyBets is the per-week bet view with budget accounting.
type WeeklyBets struct {
	Week        int             `json:"week"`
	Bets        []Bet           `json:"bets"`
	TotalStaked decimal.Decimal `json:"total_staked"`
	Remaining   decimal.Decimal `json:"remaining"`
}
