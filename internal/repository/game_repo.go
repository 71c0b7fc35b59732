package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GameRepository handles all database operations for Games and their
// BettingOptions.
type GameRepository struct {
	db *sqlx.DB
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// ── Games ─────────────────────────────────────────────────────────────────────

// Upsert inserts a game or refreshes its start time on re-sync. The provider
// id is the primary key, so repeated syncs of the same week are idempotent.
// A posted result is never touched here.
func (r *GameRepository) Upsert(ctx context.Context, g *domain.Game) error {
	query := `
		INSERT INTO games (id, home_team, away_team, week, start_time, created_at)
		VALUES (:id, :home_team, :away_team, :week, :start_time, :created_at)
		ON CONFLICT (id) DO UPDATE
		SET home_team = EXCLUDED.home_team,
		    away_team = EXCLUDED.away_team,
		    start_time = EXCLUDED.start_time`
	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("game_repo.Upsert: %w", err)
	}
	return nil
}

// GetByID fetches a game by its provider id.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	var g domain.Game
	err := r.db.GetContext(ctx, &g, `SELECT * FROM games WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("game_repo.GetByID: %w", err)
	}
	return &g, nil
}

// ListByWeek returns the week's games ordered by kickoff.
func (r *GameRepository) ListByWeek(ctx context.Context, week int) ([]*domain.Game, error) {
	var games []*domain.Game
	err := r.db.SelectContext(ctx, &games,
		`SELECT * FROM games WHERE week = $1 ORDER BY start_time ASC`, week)
	if err != nil {
		return nil, fmt.Errorf("game_repo.ListByWeek: %w", err)
	}
	return games, nil
}

// SetResult records a final result. The WHERE guard keeps an already-posted
// result from being overwritten by a replayed feed.
func (r *GameRepository) SetResult(ctx context.Context, gameID string, result domain.GameResult) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET result = $1 WHERE id = $2 AND result IS NULL`,
		string(result), gameID)
	if err != nil {
		return fmt.Errorf("game_repo.SetResult: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the game is unknown or the result already stands.
		if _, getErr := r.GetByID(ctx, gameID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// ── Betting options ───────────────────────────────────────────────────────────

// UpsertOption inserts or refreshes one priced outcome. Odds updates stop the
// moment an option is locked; placed bets are untouched either way because
// they carry their own snapshot.
func (r *GameRepository) UpsertOption(ctx context.Context, o *domain.BettingOption) error {
	query := `
		INSERT INTO betting_options
			(id, game_id, bookmaker, market_type, outcome_name, american_odds, decimal_odds, point, is_locked, updated_at)
		VALUES
			(:id, :game_id, :bookmaker, :market_type, :outcome_name, :american_odds, :decimal_odds, :point, :is_locked, :updated_at)
		ON CONFLICT (game_id, bookmaker, market_type, outcome_name) DO UPDATE
		SET american_odds = EXCLUDED.american_odds,
		    decimal_odds  = EXCLUDED.decimal_odds,
		    point         = EXCLUDED.point,
		    updated_at    = EXCLUDED.updated_at
		WHERE betting_options.is_locked = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("game_repo.UpsertOption: %w", err)
	}
	return nil
}

// GetOption fetches a betting option by id.
func (r *GameRepository) GetOption(ctx context.Context, id uuid.UUID) (*domain.BettingOption, error) {
	var o domain.BettingOption
	err := r.db.GetContext(ctx, &o, `SELECT * FROM betting_options WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOptionNotFound
		}
		return nil, fmt.Errorf("game_repo.GetOption: %w", err)
	}
	return &o, nil
}

// ListOptionsByGame returns every option priced on a game.
func (r *GameRepository) ListOptionsByGame(ctx context.Context, gameID string) ([]*domain.BettingOption, error) {
	var options []*domain.BettingOption
	err := r.db.SelectContext(ctx, &options,
		`SELECT * FROM betting_options WHERE game_id = $1 ORDER BY market_type, bookmaker, outcome_name`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("game_repo.ListOptionsByGame: %w", err)
	}
	return options, nil
}

// ListWeekOdds returns the week's games with their current options.
func (r *GameRepository) ListWeekOdds(ctx context.Context, week int) ([]*domain.GameOdds, error) {
	games, err := r.ListByWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.GameOdds, 0, len(games))
	for _, g := range games {
		options, err := r.ListOptionsByGame(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		odds := &domain.GameOdds{Game: *g}
		for _, o := range options {
			odds.Options = append(odds.Options, *o)
		}
		result = append(result, odds)
	}
	return result, nil
}

// LockOptionsForStartedGames marks every option of started games as locked.
// Returns the ids of the games whose options were just locked so the caller
// can move their pending bets to locked too.
func (r *GameRepository) LockOptionsForStartedGames(ctx context.Context, tx *sqlx.Tx, now time.Time) ([]string, error) {
	var gameIDs []string
	err := tx.SelectContext(ctx, &gameIDs, `
		SELECT DISTINCT bo.game_id
		FROM betting_options bo
		JOIN games g ON g.id = bo.game_id
		WHERE g.start_time <= $1 AND bo.is_locked = FALSE`,
		now)
	if err != nil {
		return nil, fmt.Errorf("game_repo.LockOptionsForStartedGames select: %w", err)
	}
	if len(gameIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		UPDATE betting_options
		SET is_locked = TRUE, locked_at = ?
		WHERE game_id IN (?) AND is_locked = FALSE`, now, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("game_repo.LockOptionsForStartedGames in: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("game_repo.LockOptionsForStartedGames update: %w", err)
	}
	return gameIDs, nil
}
