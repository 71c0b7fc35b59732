package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/google/uuid"
)

// inviteAlphabet omits 0/O and 1/I so codes survive being read out loud.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const inviteCodeLen = 8

// LeagueService manages league lifecycle and membership.
type LeagueService struct {
	leagueRepo *repository.LeagueRepository
	userRepo   *repository.UserRepository
}

// NewLeagueService creates a LeagueService.
func NewLeagueService(leagueRepo *repository.LeagueRepository, userRepo *repository.UserRepository) *LeagueService {
	return &LeagueService{leagueRepo: leagueRepo, userRepo: userRepo}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────────────────────────────────

// CreateLeague creates a league with a fresh invite code and enrolls the
// creator as commissioner and first member.
func (s *LeagueService) CreateLeague(ctx context.Context, commissionerID uuid.UUID, name string) (*domain.League, error) {
	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("league_service.CreateLeague: invite code: %w", err)
	}

	now := time.Now().UTC()
	league := &domain.League{
		ID:             uuid.New(),
		Name:           name,
		CommissionerID: commissionerID,
		InviteCode:     code,
		CreatedAt:      now,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, fmt.Errorf("league_service.CreateLeague: %w", err)
	}

	member := &domain.LeagueMember{
		ID:       uuid.New(),
		LeagueID: league.ID,
		UserID:   commissionerID,
		JoinedAt: now,
	}
	if err := s.leagueRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("league_service.CreateLeague: add commissioner: %w", err)
	}
	return league, nil
}

// JoinByInviteCode enrolls a user into the league behind the code. Joining is
// closed once the schedule exists: a mid-season member would have no matchups.
func (s *LeagueService) JoinByInviteCode(ctx context.Context, userID uuid.UUID, code string) (*domain.League, error) {
	league, err := s.leagueRepo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if league.SetupComplete {
		return nil, domain.ErrScheduleAlreadyGenerated
	}

	member := &domain.LeagueMember{
		ID:       uuid.New(),
		LeagueID: league.ID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.leagueRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return league, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// GetLeague returns a league only to its members.
func (s *LeagueService) GetLeague(ctx context.Context, leagueID, viewerID uuid.UUID) (*domain.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.leagueRepo.GetMember(ctx, leagueID, viewerID); err != nil {
		return nil, err
	}
	return league, nil
}

// ListMyLeagues returns every league the user belongs to.
func (s *LeagueService) ListMyLeagues(ctx context.Context, userID uuid.UUID) ([]*domain.League, error) {
	leagues, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("league_service.ListMyLeagues: %w", err)
	}
	return leagues, nil
}

// ListMembers returns a league's roster in join order, members only.
func (s *LeagueService) ListMembers(ctx context.Context, leagueID, viewerID uuid.UUID) ([]*domain.LeagueMember, error) {
	if _, err := s.leagueRepo.GetMember(ctx, leagueID, viewerID); err != nil {
		return nil, err
	}
	return s.leagueRepo.ListMembers(ctx, leagueID)
}

// Standings returns ranked standings for a league, members only.
func (s *LeagueService) Standings(ctx context.Context, leagueID, viewerID uuid.UUID) ([]*domain.StandingRow, error) {
	if _, err := s.leagueRepo.GetMember(ctx, leagueID, viewerID); err != nil {
		return nil, err
	}
	return s.leagueRepo.Standings(ctx, leagueID)
}

// DetailedStandings augments the standings table with each member's bet
// record (won / lost / still open).
func (s *LeagueService) DetailedStandings(ctx context.Context, leagueID, viewerID uuid.UUID) ([]*domain.DetailedStandingRow, error) {
	standings, err := s.Standings(ctx, leagueID, viewerID)
	if err != nil {
		return nil, err
	}
	records, err := s.leagueRepo.BetRecords(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	detailed := make([]*domain.DetailedStandingRow, 0, len(standings))
	for _, row := range standings {
		detailed = append(detailed, &domain.DetailedStandingRow{
			StandingRow: *row,
			Bets:        records[row.UserID],
		})
	}
	return detailed, nil
}

// RequireCommissioner loads a league and verifies the caller runs it.
func (s *LeagueService) RequireCommissioner(ctx context.Context, leagueID, userID uuid.UUID) (*domain.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league.CommissionerID != userID {
		return nil, domain.ErrNotCommissioner
	}
	return league, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Invite codes
// ──────────────────────────────────────────────────────────────────────────────

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
