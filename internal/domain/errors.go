package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Odds / payout errors
var (
	// ErrInvalidOdds is returned when an American odds value of 0 is supplied;
	// zero has no decimal equivalent.
	ErrInvalidOdds = errors.New("american odds value must be non-zero")

	// ErrInvalidParlay is returned when a parlay is built from fewer than two legs.
	ErrInvalidParlay = errors.New("a parlay requires at least two legs")

	// ErrTooManyLegs is returned when a parlay exceeds the configured leg limit.
	ErrTooManyLegs = errors.New("parlay exceeds the maximum number of legs")
)

// League / schedule errors
var (
	// ErrLeagueNotFound is returned when no league matches the given criteria.
	ErrLeagueNotFound = errors.New("league not found")

	// ErrInviteCodeInvalid is returned when a join attempt uses an unknown code.
	ErrInviteCodeInvalid = errors.New("invite code does not match any league")

	// ErrAlreadyMember is returned when a user joins a league twice.
	ErrAlreadyMember = errors.New("user is already a member of this league")

	// ErrNotCommissioner is returned when a league-admin action is attempted by
	// a regular member.
	ErrNotCommissioner = errors.New("only the league commissioner can do this")

	// ErrScheduleAlreadyGenerated is returned when schedule generation is
	// attempted on a league whose setup is already complete.
	ErrScheduleAlreadyGenerated = errors.New("schedule has already been generated")

	// ErrInsufficientParticipants is returned when a schedule or bracket is
	// requested for fewer than two participants.
	ErrInsufficientParticipants = errors.New("at least two participants are required")
)

// Matchup errors
var (
	// ErrMatchupNotFound is returned when no matchup matches the given criteria.
	ErrMatchupNotFound = errors.New("matchup not found")

	// ErrNotAParticipant is returned when a user acts on a matchup they are not
	// part of.
	ErrNotAParticipant = errors.New("user is not a participant in this matchup")

	// ErrMatchupNotReady is returned when settlement is attempted while either
	// side still has unresolved bets. This is the expected "come back later"
	// outcome, not a fault.
	ErrMatchupNotReady = errors.New("matchup has unresolved bets")
)

// Game / betting option errors
var (
	// ErrGameNotFound is returned when no game matches the given criteria.
	ErrGameNotFound = errors.New("game not found")

	// ErrOptionNotFound is returned when no betting option matches the given id.
	ErrOptionNotFound = errors.New("betting option not found")

	// ErrOptionLocked is returned when a bet targets a locked betting option.
	ErrOptionLocked = errors.New("betting option is locked")

	// ErrGameStarted is returned when a bet targets a game past its start time.
	ErrGameStarted = errors.New("game has already started")
)

// Bet errors
var (
	// ErrBetNotFound is returned when no bet matches the given criteria.
	ErrBetNotFound = errors.New("bet not found")

	// ErrInvalidAmount is returned when a stake is zero, negative, or above the
	// single-bet cap.
	ErrInvalidAmount = errors.New("bet amount must be between 1 and 100")

	// ErrBetNotCancellable is returned when cancellation is attempted on a bet
	// that is already terminal.
	ErrBetNotCancellable = errors.New("bet is already resolved")
)

// BudgetExceededError is returned when a bet would push a participant past
// their weekly allowance. It carries the remaining headroom so callers can
// surface it.
type BudgetExceededError struct {
	Remaining decimal.Decimal
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("weekly limit exceeded: %s remaining", e.Remaining.StringFixed(2))
}

// ErrBudgetExceeded is the sentinel target for BudgetExceededError, so that
// errors.Is(err, ErrBudgetExceeded) works regardless of the headroom value.
var ErrBudgetExceeded = errors.New("weekly betting limit exceeded")

// Is makes BudgetExceededError match ErrBudgetExceeded.
func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// User errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended user attempts an action.
	ErrUserInactive = errors.New("user account is inactive")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned when a JWT or refresh token has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its signature
	// does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrLeagueNotFound,
	ErrMatchupNotFound,
	ErrGameNotFound,
	ErrOptionNotFound,
	ErrBetNotFound,
	ErrUserNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values directly
// when you need to translate domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (e.g.
// duplicate membership or double schedule generation).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrEmailTaken,
		ErrUsernameTaken,
		ErrAlreadyMember,
		ErrScheduleAlreadyGenerated,
		ErrBetNotCancellable,
		ErrMatchupNotReady,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPolicy returns true for business-rule violations on otherwise valid input
// (locked options, started games, budget breaches). These map to HTTP 422.
func IsPolicy(err error) bool {
	policyErrors := []error{
		ErrOptionLocked,
		ErrGameStarted,
		ErrBudgetExceeded,
		ErrNotAParticipant,
		ErrNotCommissioner,
	}
	for _, target := range policyErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
