// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeBetPlaced       MsgType = "bet_placed"
	MsgTypeMatchupSettled  MsgType = "matchup_settled"
	MsgTypeStandingsUpdate MsgType = "standings_update"
	MsgTypeError           MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// BetPlacedMessage — broadcast to a league when a member's bet is accepted.
// ──────────────────────────────────────────────────────────────────────────────

// BetPlacedMessage announces a new wager without exposing the selection: rival
// picks stay hidden until settlement.
type BetPlacedMessage struct {
	Type      MsgType         `json:"type"`
	LeagueID  uuid.UUID       `json:"league_id"`
	MatchupID uuid.UUID       `json:"matchup_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Kind      domain.BetKind  `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// MatchupSettledMessage — broadcast when a matchup's winner is declared.
// ──────────────────────────────────────────────────────────────────────────────

// MatchupSettledMessage carries the final balances; a nil winner means a tie.
type MatchupSettledMessage struct {
	Type         MsgType          `json:"type"`
	LeagueID     uuid.UUID        `json:"league_id"`
	MatchupID    uuid.UUID        `json:"matchup_id"`
	Week         int              `json:"week"`
	WinnerUserID *uuid.UUID       `json:"winner_user_id"`
	HomeBalance  *decimal.Decimal `json:"home_balance"`
	AwayBalance  *decimal.Decimal `json:"away_balance"`
	Timestamp    time.Time        `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// StandingsUpdateMessage — broadcast after standings change.
// ──────────────────────────────────────────────────────────────────────────────

// StandingsUpdateMessage carries the full ranked table.
type StandingsUpdateMessage struct {
	Type      MsgType                `json:"type"`
	LeagueID  uuid.UUID              `json:"league_id"`
	Standings []*domain.StandingRow  `json:"standings"`
	Timestamp time.Time              `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
