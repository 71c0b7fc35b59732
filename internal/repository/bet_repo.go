package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// BetRepository handles all database operations for Bets and their parlay legs.
type BetRepository struct {
	db *sqlx.DB
}

// NewBetRepository creates a new BetRepository.
func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

// Create inserts a new bet inside an existing transaction.
func (r *BetRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bet) error {
	query := `
		INSERT INTO bets
			(id, user_id, matchup_id, kind, option_id, outcome_name, bookmaker,
			 american_odds, decimal_odds, amount, potential_payout, status, placed_at)
		VALUES
			(:id, :user_id, :matchup_id, :kind, :option_id, :outcome_name, :bookmaker,
			 :american_odds, :decimal_odds, :amount, :potential_payout, :status, :placed_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bet_repo.Create: %w", err)
	}
	return nil
}

// CreateLegs inserts a parlay's legs inside the same transaction as its bet.
func (r *BetRepository) CreateLegs(ctx context.Context, tx *sqlx.Tx, legs []domain.BetLeg) error {
	query := `
		INSERT INTO bet_legs
			(id, bet_id, option_id, game_id, outcome_name, market_type, bookmaker,
			 american_odds, decimal_odds, status)
		VALUES
			(:id, :bet_id, :option_id, :game_id, :outcome_name, :market_type, :bookmaker,
			 :american_odds, :decimal_odds, :status)`
	for i := range legs {
		if _, err := tx.NamedExecContext(ctx, query, &legs[i]); err != nil {
			return fmt.Errorf("bet_repo.CreateLegs: %w", err)
		}
	}
	return nil
}

// GetByID fetches a bet by its primary key, with legs for parlays.
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	var b domain.Bet
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bets WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBetNotFound
		}
		return nil, fmt.Errorf("bet_repo.GetByID: %w", err)
	}
	if b.Kind == domain.BetKindParlay {
		if b.Legs, err = r.getLegs(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (r *BetRepository) getLegs(ctx context.Context, betID uuid.UUID) ([]domain.BetLeg, error) {
	var legs []domain.BetLeg
	err := r.db.SelectContext(ctx, &legs,
		`SELECT * FROM bet_legs WHERE bet_id = $1 ORDER BY id`, betID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.getLegs: %w", err)
	}
	return legs, nil
}

// ListByMatchup returns every bet inside a matchup, oldest first.
func (r *BetRepository) ListByMatchup(ctx context.Context, matchupID uuid.UUID) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE matchup_id = $1 ORDER BY placed_at ASC`, matchupID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ListByMatchup: %w", err)
	}
	return bets, nil
}

// ListByMatchupUser returns one side's bets inside a matchup.
func (r *BetRepository) ListByMatchupUser(ctx context.Context, matchupID, userID uuid.UUID) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE matchup_id = $1 AND user_id = $2 ORDER BY placed_at ASC`,
		matchupID, userID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ListByMatchupUser: %w", err)
	}
	return bets, nil
}

// ListByUserWeek returns a user's bets across a league week.
func (r *BetRepository) ListByUserWeek(ctx context.Context, leagueID, userID uuid.UUID, week int) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets, `
		SELECT b.*
		FROM bets b
		JOIN matchups m ON m.id = b.matchup_id
		WHERE m.league_id = $1 AND m.week = $2 AND b.user_id = $3
		ORDER BY b.placed_at ASC`,
		leagueID, week, userID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ListByUserWeek: %w", err)
	}
	return bets, nil
}

// WeeklyStaked sums a user's non-cancelled stakes for a league week. Called
// inside the placement transaction, after the member row is locked, so the
// total cannot move under the caller.
func (r *BetRepository) WeeklyStaked(ctx context.Context, tx *sqlx.Tx, leagueID, userID uuid.UUID, week int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(b.amount), 0)
		FROM bets b
		JOIN matchups m ON m.id = b.matchup_id
		WHERE m.league_id = $1 AND m.week = $2 AND b.user_id = $3
		  AND b.status <> 'cancelled'`,
		leagueID, week, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bet_repo.WeeklyStaked: %w", err)
	}
	return total, nil
}

// Resolve sets a terminal status on a bet that is still pending or locked.
// The WHERE guard prevents double resolution; zero affected rows means the
// bet was already terminal and the caller may move on.
func (r *BetRepository) Resolve(ctx context.Context, tx *sqlx.Tx, betID uuid.UUID, status domain.BetStatus) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE bets
		SET status      = $1,
		    resolved_at = now()
		WHERE id = $2 AND status IN ('pending','locked')`,
		string(status), betID)
	if err != nil {
		return false, fmt.Errorf("bet_repo.Resolve: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ResolveLeg sets a terminal status on a single parlay leg.
func (r *BetRepository) ResolveLeg(ctx context.Context, tx *sqlx.Tx, legID uuid.UUID, status domain.BetStatus) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE bet_legs
		SET status = $1
		WHERE id = $2 AND status IN ('pending','locked')`,
		string(status), legID); err != nil {
		return fmt.Errorf("bet_repo.ResolveLeg: %w", err)
	}
	return nil
}

// Cancel voids a bet that has not resolved yet.
func (r *BetRepository) Cancel(ctx context.Context, betID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bets
		SET status      = 'cancelled',
		    resolved_at = now()
		WHERE id = $1 AND status IN ('pending','locked')`,
		betID)
	if err != nil {
		return fmt.Errorf("bet_repo.Cancel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBetNotCancellable
	}
	return nil
}

// LockPendingByGames moves pending bets on the given games to locked, in the
// same transaction that locks the games' options.
func (r *BetRepository) LockPendingByGames(ctx context.Context, tx *sqlx.Tx, gameIDs []string) (int64, error) {
	if len(gameIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		UPDATE bets
		SET status    = 'locked',
		    locked_at = now()
		WHERE status = 'pending'
		  AND (option_id IN (SELECT id FROM betting_options WHERE game_id IN (?))
		       OR id IN (SELECT bet_id FROM bet_legs WHERE game_id IN (?)))`,
		gameIDs, gameIDs)
	if err != nil {
		return 0, fmt.Errorf("bet_repo.LockPendingByGames in: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("bet_repo.LockPendingByGames update: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListUnresolvedByGame returns pending and locked bets touching a game,
// either directly or through a parlay leg. Legs are attached for parlays.
func (r *BetRepository) ListUnresolvedByGame(ctx context.Context, gameID string) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets, `
		SELECT DISTINCT b.*
		FROM bets b
		LEFT JOIN betting_options bo ON bo.id = b.option_id
		LEFT JOIN bet_legs bl ON bl.bet_id = b.id
		WHERE b.status IN ('pending','locked')
		  AND (bo.game_id = $1 OR bl.game_id = $1)
		ORDER BY b.placed_at ASC`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ListUnresolvedByGame: %w", err)
	}
	for _, b := range bets {
		if b.Kind == domain.BetKindParlay {
			legs, err := r.getLegs(ctx, b.ID)
			if err != nil {
				return nil, err
			}
			b.Legs = legs
		}
	}
	return bets, nil
}

// HasUnresolved reports whether a matchup still carries pending or locked
// bets on either side.
func (r *BetRepository) HasUnresolved(ctx context.Context, matchupID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM bets WHERE matchup_id = $1 AND status IN ('pending','locked')`,
		matchupID)
	if err != nil {
		return false, fmt.Errorf("bet_repo.HasUnresolved: %w", err)
	}
	return count > 0, nil
}
