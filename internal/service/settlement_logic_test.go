package service

import (
	"testing"
	"time"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func finalGame(result domain.GameResult) *domain.Game {
	return &domain.Game{
		ID:        "g1",
		HomeTeam:  "Kansas City Chiefs",
		AwayTeam:  "Denver Broncos",
		Week:      1,
		StartTime: time.Now().Add(-4 * time.Hour),
		Result:    &result,
	}
}

// ── evaluateOutcome ───────────────────────────────────────────────────────────

func TestEvaluateOutcome_UnfinishedGameStaysPending(t *testing.T) {
	game := &domain.Game{HomeTeam: "A", AwayTeam: "B"}
	got := evaluateOutcome(domain.MarketH2H, "A", game)
	if got != domain.BetStatusPending {
		t.Errorf("unfinished game: status = %s, want pending", got)
	}
}

func TestEvaluateOutcome_WinnerPickWins(t *testing.T) {
	game := finalGame(domain.ResultHomeWin)
	got := evaluateOutcome(domain.MarketH2H, "Kansas City Chiefs", game)
	if got != domain.BetStatusWon {
		t.Errorf("winner pick: status = %s, want won", got)
	}
}

func TestEvaluateOutcome_LoserPickLoses(t *testing.T) {
	game := finalGame(domain.ResultHomeWin)
	got := evaluateOutcome(domain.MarketH2H, "Denver Broncos", game)
	if got != domain.BetStatusLost {
		t.Errorf("loser pick: status = %s, want lost", got)
	}
}

func TestEvaluateOutcome_TieLosesEveryH2H(t *testing.T) {
	game := finalGame(domain.ResultTie)
	for _, pick := range []string{"Kansas City Chiefs", "Denver Broncos"} {
		if got := evaluateOutcome(domain.MarketH2H, pick, game); got != domain.BetStatusLost {
			t.Errorf("tie with pick %q: status = %s, want lost", pick, got)
		}
	}
}

func TestEvaluateOutcome_SpreadsHaveNoPolicyYet(t *testing.T) {
	game := finalGame(domain.ResultHomeWin)
	if got := evaluateOutcome(domain.MarketSpreads, "Kansas City Chiefs", game); got != domain.BetStatusPending {
		t.Errorf("spreads: status = %s, want pending", got)
	}
	if got := evaluateOutcome(domain.MarketTotals, "Over", game); got != domain.BetStatusPending {
		t.Errorf("totals: status = %s, want pending", got)
	}
}

// ── parlayStatus ──────────────────────────────────────────────────────────────

func legs(statuses ...domain.BetStatus) []domain.BetLeg {
	out := make([]domain.BetLeg, len(statuses))
	for i, s := range statuses {
		out[i] = domain.BetLeg{Status: s}
	}
	return out
}

func TestParlayStatus_OneLostLegSinksTheBet(t *testing.T) {
	got := parlayStatus(legs(domain.BetStatusWon, domain.BetStatusLost, domain.BetStatusPending))
	if got != domain.BetStatusLost {
		t.Errorf("parlay with a lost leg = %s, want lost", got)
	}
}

func TestParlayStatus_AllWonWins(t *testing.T) {
	got := parlayStatus(legs(domain.BetStatusWon, domain.BetStatusWon, domain.BetStatusWon))
	if got != domain.BetStatusWon {
		t.Errorf("parlay with all legs won = %s, want won", got)
	}
}

func TestParlayStatus_OpenLegKeepsItPending(t *testing.T) {
	got := parlayStatus(legs(domain.BetStatusWon, domain.BetStatusPending))
	if got != domain.BetStatusPending {
		t.Errorf("parlay with an open leg = %s, want pending", got)
	}
	got = parlayStatus(legs(domain.BetStatusWon, domain.BetStatusLocked))
	if got != domain.BetStatusPending {
		t.Errorf("parlay with a locked leg = %s, want pending", got)
	}
}

// ── FinalBalance ──────────────────────────────────────────────────────────────

func bet(status domain.BetStatus, amount, payout string) *domain.Bet {
	return &domain.Bet{
		Status:          status,
		Amount:          decimal.RequireFromString(amount),
		PotentialPayout: decimal.RequireFromString(payout),
	}
}

func TestFinalBalance_FoldsNetResults(t *testing.T) {
	budget := decimal.NewFromInt(100)
	bets := []*domain.Bet{
		bet(domain.BetStatusWon, "20.00", "38.18"),  // +18.18
		bet(domain.BetStatusLost, "30.00", "75.00"), // -30.00
		bet(domain.BetStatusPending, "10.00", "19.09"),
		bet(domain.BetStatusCancelled, "50.00", "95.45"),
	}

	got := FinalBalance(budget, bets)
	want := decimal.RequireFromString("88.18")
	if !got.Equal(want) {
		t.Errorf("FinalBalance = %s, want %s", got, want)
	}
}

func TestFinalBalance_NoBetsKeepsFullBudget(t *testing.T) {
	budget := decimal.NewFromInt(100)
	got := FinalBalance(budget, nil)
	if !got.Equal(budget) {
		t.Errorf("FinalBalance with no bets = %s, want %s", got, budget)
	}
}

// ── decideMatchup ─────────────────────────────────────────────────────────────

func matchupAt(stage domain.MatchupStage) (*domain.Matchup, uuid.UUID, uuid.UUID) {
	home, away := uuid.New(), uuid.New()
	return &domain.Matchup{Stage: stage, HomeUserID: &home, AwayUserID: &away}, home, away
}

func TestDecideMatchup_HigherBalanceWins(t *testing.T) {
	m, home, _ := matchupAt(domain.StageRegular)
	out := decideMatchup(m, decimal.NewFromInt(120), decimal.NewFromInt(80))
	if out.winnerID == nil || *out.winnerID != home {
		t.Fatalf("winner = %v, want home %s", out.winnerID, home)
	}
	if !out.winnerBalance.Equal(decimal.NewFromInt(120)) ||
		!out.loserBalance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("balances = %s/%s, want 120/80", out.winnerBalance, out.loserBalance)
	}
	if !out.movesStandings() {
		t.Error("declared winner must count in the standings table")
	}
}

func TestDecideMatchup_PlayoffWinnerMovesStandings(t *testing.T) {
	m, _, away := matchupAt(domain.StagePlayoff)
	out := decideMatchup(m, decimal.NewFromInt(90), decimal.NewFromInt(110))
	if out.winnerID == nil || *out.winnerID != away {
		t.Fatalf("winner = %v, want away %s", out.winnerID, away)
	}
	if !out.movesStandings() {
		t.Error("playoff winner must count in the standings table")
	}
}

func TestDecideMatchup_TieMovesNothing(t *testing.T) {
	m, _, _ := matchupAt(domain.StagePlayoff)
	out := decideMatchup(m, decimal.NewFromInt(100), decimal.NewFromInt(100))
	if out.winnerID != nil || out.loserID != nil {
		t.Fatalf("tie declared a winner: %v / %v", out.winnerID, out.loserID)
	}
	if out.movesStandings() {
		t.Error("tie must not move standings")
	}
}

func TestFinalBalance_OrderIndependent(t *testing.T) {
	budget := decimal.NewFromInt(100)
	a := []*domain.Bet{
		bet(domain.BetStatusWon, "25.00", "60.00"),
		bet(domain.BetStatusLost, "40.00", "80.00"),
	}
	b := []*domain.Bet{a[1], a[0]}

	if got, want := FinalBalance(budget, a), FinalBalance(budget, b); !got.Equal(want) {
		t.Errorf("fold is order-dependent: %s vs %s", got, want)
	}
}
