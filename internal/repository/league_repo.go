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

// LeagueRepository handles all database operations for Leagues, their members
// and the standings counters kept on the member rows.
type LeagueRepository struct {
	db *sqlx.DB
}

// NewLeagueRepository creates a new LeagueRepository.
func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

// ── Leagues ───────────────────────────────────────────────────────────────────

// Create inserts a new league row.
func (r *LeagueRepository) Create(ctx context.Context, l *domain.League) error {
	query := `
		INSERT INTO leagues (id, name, commissioner_id, invite_code, setup_complete, created_at)
		VALUES (:id, :name, :commissioner_id, :invite_code, :setup_complete, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("league_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a league by primary key.
func (r *LeagueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	var l domain.League
	err := r.db.GetContext(ctx, &l, `SELECT * FROM leagues WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeagueNotFound
		}
		return nil, fmt.Errorf("league_repo.GetByID: %w", err)
	}
	return &l, nil
}

// GetByInviteCode fetches a league by its invite code (used for joining).
func (r *LeagueRepository) GetByInviteCode(ctx context.Context, code string) (*domain.League, error) {
	var l domain.League
	err := r.db.GetContext(ctx, &l, `SELECT * FROM leagues WHERE invite_code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInviteCodeInvalid
		}
		return nil, fmt.Errorf("league_repo.GetByInviteCode: %w", err)
	}
	return &l, nil
}

// ListByUser returns all leagues the user belongs to.
func (r *LeagueRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.League, error) {
	var leagues []*domain.League
	err := r.db.SelectContext(ctx, &leagues, `
		SELECT l.*
		FROM leagues l
		JOIN league_members m ON m.league_id = l.id
		WHERE m.user_id = $1
		ORDER BY l.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("league_repo.ListByUser: %w", err)
	}
	return leagues, nil
}

// List returns a paginated list of all leagues (back-office view).
func (r *LeagueRepository) List(ctx context.Context, limit, offset int) ([]*domain.League, int, error) {
	var leagues []*domain.League
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM leagues`); err != nil {
		return nil, 0, fmt.Errorf("league_repo.List count: %w", err)
	}
	if err := r.db.SelectContext(ctx, &leagues,
		`SELECT * FROM leagues ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("league_repo.List select: %w", err)
	}
	return leagues, total, nil
}

// MarkSetupComplete flips setup_complete exactly once. The WHERE guard makes
// a second generation attempt visible as zero affected rows.
func (r *LeagueRepository) MarkSetupComplete(ctx context.Context, tx *sqlx.Tx, leagueID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE leagues
		SET setup_complete = TRUE, setup_completed_at = now()
		WHERE id = $1 AND setup_complete = FALSE`,
		leagueID)
	if err != nil {
		return fmt.Errorf("league_repo.MarkSetupComplete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrScheduleAlreadyGenerated
	}
	return nil
}

// ClearSetup reverts setup_complete after a schedule reset.
func (r *LeagueRepository) ClearSetup(ctx context.Context, tx *sqlx.Tx, leagueID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE leagues
		SET setup_complete = FALSE, setup_completed_at = NULL
		WHERE id = $1`,
		leagueID); err != nil {
		return fmt.Errorf("league_repo.ClearSetup: %w", err)
	}
	return nil
}

// ── Members ───────────────────────────────────────────────────────────────────

// AddMember inserts a membership row; the unique (league_id, user_id)
// constraint turns double joins into domain.ErrAlreadyMember.
func (r *LeagueRepository) AddMember(ctx context.Context, m *domain.LeagueMember) error {
	query := `
		INSERT INTO league_members (id, league_id, user_id, wins, losses, points_for, points_against, joined_at)
		VALUES (:id, :league_id, :user_id, :wins, :losses, :points_for, :points_against, :joined_at)`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		if isPgUniqueViolation(err, "league_members_league_id_user_id_key") {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("league_repo.AddMember: %w", err)
	}
	return nil
}

// GetMember fetches one membership row.
func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID uuid.UUID) (*domain.LeagueMember, error) {
	var m domain.LeagueMember
	err := r.db.GetContext(ctx, &m,
		`SELECT * FROM league_members WHERE league_id = $1 AND user_id = $2`,
		leagueID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotAParticipant
		}
		return nil, fmt.Errorf("league_repo.GetMember: %w", err)
	}
	return &m, nil
}

// ListMembers returns every member of a league in join order. Join order is
// also the stable tie-break behind the standings sort.
func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]*domain.LeagueMember, error) {
	var members []*domain.LeagueMember
	err := r.db.SelectContext(ctx, &members,
		`SELECT * FROM league_members WHERE league_id = $1 ORDER BY joined_at ASC`,
		leagueID)
	if err != nil {
		return nil, fmt.Errorf("league_repo.ListMembers: %w", err)
	}
	return members, nil
}

// Standings returns members ordered by wins then points_for, joined with
// usernames. Rank is assigned by the caller-visible row order.
func (r *LeagueRepository) Standings(ctx context.Context, leagueID uuid.UUID) ([]*domain.StandingRow, error) {
	rows := []*struct {
		UserID        uuid.UUID       `db:"user_id"`
		Username      string          `db:"username"`
		Wins          int             `db:"wins"`
		Losses        int             `db:"losses"`
		PointsFor     decimal.Decimal `db:"points_for"`
		PointsAgainst decimal.Decimal `db:"points_against"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT m.user_id, u.username, m.wins, m.losses, m.points_for, m.points_against
		FROM league_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.league_id = $1
		ORDER BY m.wins DESC, m.points_for DESC, m.joined_at ASC`,
		leagueID)
	if err != nil {
		return nil, fmt.Errorf("league_repo.Standings: %w", err)
	}

	standings := make([]*domain.StandingRow, 0, len(rows))
	for i, row := range rows {
		member := domain.LeagueMember{Wins: row.Wins, Losses: row.Losses}
		standings = append(standings, &domain.StandingRow{
			Rank:          i + 1,
			UserID:        row.UserID,
			Username:      row.Username,
			Wins:          row.Wins,
			Losses:        row.Losses,
			WinPct:        member.WinPercentage(),
			PointsFor:     row.PointsFor,
			PointsAgainst: row.PointsAgainst,
		})
	}
	return standings, nil
}

// BetRecords counts each member's won, lost, and still-open bets across the
// whole league. Cancelled bets are excluded.
func (r *LeagueRepository) BetRecords(ctx context.Context, leagueID uuid.UUID) (map[uuid.UUID]domain.BetRecord, error) {
	rows := []*struct {
		UserID uuid.UUID `db:"user_id"`
		Won    int       `db:"won"`
		Lost   int       `db:"lost"`
		Open   int       `db:"open"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT b.user_id,
		       COUNT(*) FILTER (WHERE b.status = 'won')  AS won,
		       COUNT(*) FILTER (WHERE b.status = 'lost') AS lost,
		       COUNT(*) FILTER (WHERE b.status IN ('pending', 'locked')) AS open
		FROM bets b
		JOIN matchups m ON m.id = b.matchup_id
		WHERE m.league_id = $1
		GROUP BY b.user_id`,
		leagueID)
	if err != nil {
		return nil, fmt.Errorf("league_repo.BetRecords: %w", err)
	}

	records := make(map[uuid.UUID]domain.BetRecord, len(rows))
	for _, row := range rows {
		records[row.UserID] = domain.BetRecord{Won: row.Won, Lost: row.Lost, Open: row.Open}
	}
	return records, nil
}

// LockMember locks a membership row FOR UPDATE inside a transaction. It is
// the serialization point for the weekly budget check: concurrent placements
// by the same participant queue behind this lock.
func (r *LeagueRepository) LockMember(ctx context.Context, tx *sqlx.Tx, leagueID, userID uuid.UUID) (*domain.LeagueMember, error) {
	var m domain.LeagueMember
	err := tx.GetContext(ctx, &m,
		`SELECT * FROM league_members WHERE league_id = $1 AND user_id = $2 FOR UPDATE`,
		leagueID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotAParticipant
		}
		return nil, fmt.Errorf("league_repo.LockMember lock: %w", err)
	}
	return &m, nil
}

// ApplyMatchupResult updates both members' standings counters inside the
// settlement transaction. winnerID nil means a tie and must not reach here;
// the settlement service only calls this with a declared winner.
func (r *LeagueRepository) ApplyMatchupResult(ctx context.Context, tx *sqlx.Tx, leagueID uuid.UUID,
	winnerID, loserID uuid.UUID, winnerBalance, loserBalance decimal.Decimal) error {

	res, err := tx.ExecContext(ctx, `
		UPDATE league_members
		SET wins = wins + 1,
		    points_for = points_for + $1,
		    points_against = points_against + $2
		WHERE league_id = $3 AND user_id = $4`,
		winnerBalance, loserBalance, leagueID, winnerID)
	if err != nil {
		return fmt.Errorf("league_repo.ApplyMatchupResult winner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotAParticipant
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE league_members
		SET losses = losses + 1,
		    points_for = points_for + $1,
		    points_against = points_against + $2
		WHERE league_id = $3 AND user_id = $4`,
		loserBalance, winnerBalance, leagueID, loserID)
	if err != nil {
		return fmt.Errorf("league_repo.ApplyMatchupResult loser: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotAParticipant
	}
	return nil
}
