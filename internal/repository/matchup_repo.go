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

// MatchupRepository handles all database operations for Matchups.
type MatchupRepository struct {
	db *sqlx.DB
}

// NewMatchupRepository creates a new MatchupRepository.
func NewMatchupRepository(db *sqlx.DB) *MatchupRepository {
	return &MatchupRepository{db: db}
}

// CreateBatch inserts a whole schedule's worth of matchups inside one
// transaction, so a generation failure leaves nothing behind.
func (r *MatchupRepository) CreateBatch(ctx context.Context, tx *sqlx.Tx, matchups []*domain.Matchup) error {
	query := `
		INSERT INTO matchups
			(id, league_id, week, stage, home_user_id, away_user_id, home_source_id, away_source_id, created_at)
		VALUES
			(:id, :league_id, :week, :stage, :home_user_id, :away_user_id, :home_source_id, :away_source_id, :created_at)`
	for _, m := range matchups {
		if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
			return fmt.Errorf("matchup_repo.CreateBatch: %w", err)
		}
	}
	return nil
}

// GetByID fetches a matchup by its primary key.
func (r *MatchupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Matchup, error) {
	var m domain.Matchup
	err := r.db.GetContext(ctx, &m, `SELECT * FROM matchups WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchupNotFound
		}
		return nil, fmt.Errorf("matchup_repo.GetByID: %w", err)
	}
	return &m, nil
}

// ListByLeagueWeek returns all of a league's matchups for one week.
func (r *MatchupRepository) ListByLeagueWeek(ctx context.Context, leagueID uuid.UUID, week int) ([]*domain.Matchup, error) {
	var matchups []*domain.Matchup
	err := r.db.SelectContext(ctx, &matchups,
		`SELECT * FROM matchups WHERE league_id = $1 AND week = $2 ORDER BY created_at ASC`,
		leagueID, week)
	if err != nil {
		return nil, fmt.Errorf("matchup_repo.ListByLeagueWeek: %w", err)
	}
	return matchups, nil
}

// ListByLeague returns a league's full schedule in week order.
func (r *MatchupRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.Matchup, error) {
	var matchups []*domain.Matchup
	err := r.db.SelectContext(ctx, &matchups,
		`SELECT * FROM matchups WHERE league_id = $1 ORDER BY week ASC, created_at ASC`,
		leagueID)
	if err != nil {
		return nil, fmt.Errorf("matchup_repo.ListByLeague: %w", err)
	}
	return matchups, nil
}

// GetByUserWeek returns the user's matchup for a league week, if any.
func (r *MatchupRepository) GetByUserWeek(ctx context.Context, leagueID, userID uuid.UUID, week int) (*domain.Matchup, error) {
	var m domain.Matchup
	err := r.db.GetContext(ctx, &m, `
		SELECT * FROM matchups
		WHERE league_id = $1 AND week = $2
		  AND (home_user_id = $3 OR away_user_id = $3)`,
		leagueID, week, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchupNotFound
		}
		return nil, fmt.Errorf("matchup_repo.GetByUserWeek: %w", err)
	}
	return &m, nil
}

// ListUnsettled returns matchups with both sides filled and no winner yet,
// the settlement loop's work queue.
func (r *MatchupRepository) ListUnsettled(ctx context.Context) ([]*domain.Matchup, error) {
	var matchups []*domain.Matchup
	err := r.db.SelectContext(ctx, &matchups, `
		SELECT * FROM matchups
		WHERE winner_user_id IS NULL AND settled_at IS NULL
		  AND home_user_id IS NOT NULL AND away_user_id IS NOT NULL
		ORDER BY week ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("matchup_repo.ListUnsettled: %w", err)
	}
	return matchups, nil
}

// SetResult records the winner and both final balances exactly once. The
// WHERE guard makes re-settlement a no-op; the caller treats zero affected
// rows as already settled. A tie records balances and settled_at with a NULL
// winner, which then stays NULL for good.
func (r *MatchupRepository) SetResult(ctx context.Context, tx *sqlx.Tx, matchupID uuid.UUID,
	winnerID *uuid.UUID, homeBalance, awayBalance decimal.Decimal) (bool, error) {

	res, err := tx.ExecContext(ctx, `
		UPDATE matchups
		SET winner_user_id = $1,
		    home_balance   = $2,
		    away_balance   = $3,
		    settled_at     = now()
		WHERE id = $4 AND settled_at IS NULL`,
		winnerID, homeBalance, awayBalance, matchupID)
	if err != nil {
		return false, fmt.Errorf("matchup_repo.SetResult: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// FillAdvancementSlots writes a settled matchup's winner into any playoff
// matchup waiting on it. Only empty slots are filled, so replays are safe.
func (r *MatchupRepository) FillAdvancementSlots(ctx context.Context, sourceMatchupID, winnerID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE matchups
		SET home_user_id = $1
		WHERE home_source_id = $2 AND home_user_id IS NULL`,
		winnerID, sourceMatchupID); err != nil {
		return fmt.Errorf("matchup_repo.FillAdvancementSlots home: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		UPDATE matchups
		SET away_user_id = $1
		WHERE away_source_id = $2 AND away_user_id IS NULL`,
		winnerID, sourceMatchupID); err != nil {
		return fmt.Errorf("matchup_repo.FillAdvancementSlots away: %w", err)
	}
	return nil
}

// DeleteByLeague removes a league's matchups (bets cascade via FK) during a
// schedule reset.
func (r *MatchupRepository) DeleteByLeague(ctx context.Context, tx *sqlx.Tx, leagueID uuid.UUID) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM matchups WHERE league_id = $1`, leagueID)
	if err != nil {
		return 0, fmt.Errorf("matchup_repo.DeleteByLeague: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
