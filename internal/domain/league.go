// Package domain defines the core business entities and types for the
// fantasy-sports betting league system.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// League
// ──────────────────────────────────────────────────────────────────────────────

// League is a private group of participants playing a season against each
// other. The commissioner owns schedule generation and league admin actions.
type League struct {
	ID               uuid.UUID  `json:"id"                 db:"id"`
	Name             string     `json:"name"               db:"name"`
	CommissionerID   uuid.UUID  `json:"commissioner_id"    db:"commissioner_id"`
	InviteCode       string     `json:"invite_code"        db:"invite_code"`
	SetupComplete    bool       `json:"setup_complete"     db:"setup_complete"`
	SetupCompletedAt *time.Time `json:"setup_completed_at" db:"setup_completed_at"`
	CreatedAt        time.Time  `json:"created_at"         db:"created_at"`
}

// LeagueMember is one participant's row in a league, carrying the running
// standings counters. The row is also the lock target for the weekly budget
// check: placing a bet locks it FOR UPDATE.
type LeagueMember struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	LeagueID      uuid.UUID       `json:"league_id"      db:"league_id"`
	UserID        uuid.UUID       `json:"user_id"        db:"user_id"`
	Wins          int             `json:"wins"           db:"wins"`
	Losses        int             `json:"losses"         db:"losses"`
	PointsFor     decimal.Decimal `json:"points_for"     db:"points_for"`
	PointsAgainst decimal.Decimal `json:"points_against" db:"points_against"`
	JoinedAt      time.Time       `json:"joined_at"      db:"joined_at"`
}

// StandingRow is a member joined with their username and computed rank.
type StandingRow struct {
	Rank          int             `json:"rank"`
	UserID        uuid.UUID       `json:"user_id"`
	Username      string          `json:"username"`
	Wins          int             `json:"wins"`
	Losses        int             `json:"losses"`
	WinPct        decimal.Decimal `json:"win_pct"`
	PointsFor     decimal.Decimal `json:"points_for"`
	PointsAgainst decimal.Decimal `json:"points_against"`
}

// BetRecord counts a member's bets by outcome across a league.
type BetRecord struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
	Open int `json:"open"`
}

// DetailedStandingRow is a standing row augmented with the member's betting
// record.
type DetailedStandingRow struct {
	StandingRow
	Bets BetRecord `json:"bets"`
}

// WinPercentage computes wins/(wins+losses) at 3 dp, zero before any result.
func (m *LeagueMember) WinPercentage() decimal.Decimal {
	played := m.Wins + m.Losses
	if played == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m.Wins)).
		Div(decimal.NewFromInt(int64(played))).Round(3)
}

// ──────────────────────────────────────────────────────────────────────────────
// Matchup
// ──────────────────────────────────────────────────────────────────────────────

// MatchupStage distinguishes regular-season weeks from playoff rounds.
type MatchupStage string

const (
	StageRegular MatchupStage = "regular"
	StagePlayoff MatchupStage = "playoff"
)

// Matchup is one week's head-to-head between two participants. Playoff
// matchups may start with empty sides: a nil HomeUserID/AwayUserID together
// with a source matchup reference means the slot is filled by that matchup's
// winner once it settles.
type Matchup struct {
	ID           uuid.UUID        `json:"id"             db:"id"`
	LeagueID     uuid.UUID        `json:"league_id"      db:"league_id"`
	Week         int              `json:"week"           db:"week"`
	Stage        MatchupStage     `json:"stage"          db:"stage"`
	HomeUserID   *uuid.UUID       `json:"home_user_id"   db:"home_user_id"`
	AwayUserID   *uuid.UUID       `json:"away_user_id"   db:"away_user_id"`
	HomeSourceID *uuid.UUID       `json:"home_source_id" db:"home_source_id"`
	AwaySourceID *uuid.UUID       `json:"away_source_id" db:"away_source_id"`
	WinnerUserID *uuid.UUID       `json:"winner_user_id" db:"winner_user_id"`
	HomeBalance  *decimal.Decimal `json:"home_balance"   db:"home_balance"`
	AwayBalance  *decimal.Decimal `json:"away_balance"   db:"away_balance"`
	SettledAt    *time.Time       `json:"settled_at"     db:"settled_at"`
	CreatedAt    time.Time        `json:"created_at"     db:"created_at"`
}

// HasParticipant reports whether the user plays on either side.
func (m *Matchup) HasParticipant(userID uuid.UUID) bool {
	return (m.HomeUserID != nil && *m.HomeUserID == userID) ||
		(m.AwayUserID != nil && *m.AwayUserID == userID)
}

// IsSettled reports whether a winner has been declared. A tied matchup never
// settles; its winner stays NULL.
func (m *Matchup) IsSettled() bool {
	return m.WinnerUserID != nil
}

// AwaitingAdvancement reports whether either side still waits on a feeding
// playoff matchup.
func (m *Matchup) AwaitingAdvancement() bool {
	return m.HomeUserID == nil || m.AwayUserID == nil
}
