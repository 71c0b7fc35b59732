package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Game
// ──────────────────────────────────────────────────────────────────────────────

// GameResult is the final outcome of a real-world game as posted by the
// results feed. A tie resolves every h2h bet on the game as lost.
type GameResult string

const (
	ResultHomeWin GameResult = "home_win"
	ResultAwayWin GameResult = "away_win"
	ResultTie     GameResult = "tie"
)

// Game is a real-world fixture imported from the odds provider. The ID is the
// provider's own string identifier, not a UUID, so re-syncs are idempotent.
type Game struct {
	ID        string      `json:"id"         db:"id"`
	HomeTeam  string      `json:"home_team"  db:"home_team"`
	AwayTeam  string      `json:"away_team"  db:"away_team"`
	Week      int         `json:"week"       db:"week"`
	StartTime time.Time   `json:"start_time" db:"start_time"`
	Result    *GameResult `json:"result"     db:"result"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// HasStarted reports whether the kickoff time has passed.
func (g *Game) HasStarted(now time.Time) bool {
	return !now.Before(g.StartTime)
}

// IsFinal reports whether a result has been posted.
func (g *Game) IsFinal() bool {
	return g.Result != nil
}

// WinningTeam returns the team name implied by the result, or "" for a tie
// or an unfinished game.
func (g *Game) WinningTeam() string {
	if g.Result == nil {
		return ""
	}
	switch *g.Result {
	case ResultHomeWin:
		return g.HomeTeam
	case ResultAwayWin:
		return g.AwayTeam
	}
	return ""
}

// ──────────────────────────────────────────────────────────────────────────────
// BettingOption
// ──────────────────────────────────────────────────────────────────────────────

// MarketType enumerates the bet markets offered per game. Only h2h resolves
// today; spreads and totals stay pending until a settlement policy exists.
type MarketType string

const (
	MarketH2H     MarketType = "h2h"
	MarketSpreads MarketType = "spreads"
	MarketTotals  MarketType = "totals"
)

// BettingOption is one priced outcome on a game from one bookmaker. Decimal
// odds are always derived from the American value at sync time; provider
// decimals are never stored.
type BettingOption struct {
	ID           uuid.UUID       `json:"id"            db:"id"`
	GameID       string          `json:"game_id"       db:"game_id"`
	Bookmaker    string          `json:"bookmaker"     db:"bookmaker"`
	MarketType   MarketType      `json:"market_type"   db:"market_type"`
	OutcomeName  string          `json:"outcome_name"  db:"outcome_name"`
	AmericanOdds int64           `json:"american_odds" db:"american_odds"`
	DecimalOdds  decimal.Decimal `json:"decimal_odds"  db:"decimal_odds"`
	Point        *decimal.Decimal `json:"point"        db:"point"` // spread/total line
	IsLocked     bool            `json:"is_locked"     db:"is_locked"`
	LockedAt     *time.Time      `json:"locked_at"     db:"locked_at"`
	UpdatedAt    time.Time       `json:"updated_at"    db:"updated_at"`
}

// GameOdds groups a game with its current options for the weekly odds view.
type GameOdds struct {
	Game    Game            `json:"game"`
	Options []BettingOption `json:"options"`
}
