package domain_test

import (
	"errors"
	"testing"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/shopspring/decimal"
)

// TestAmericanToDecimal validates the conversion table. No I/O — pure
// arithmetic.
func TestAmericanToDecimal(t *testing.T) {
	cases := []struct {
		american int64
		want     string
	}{
		{100, "2"},
		{150, "2.5"},
		{-200, "1.5"},
		{-110, "1.9090909090909090909090909090909091"},
		{250, "3.5"},
		{-100, "2"},
	}
	for _, c := range cases {
		got, err := domain.AmericanToDecimal(c.american)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%d): %v", c.american, err)
		}
		want, _ := decimal.NewFromString(c.want)
		if got.Sub(want).Abs().GreaterThan(decimal.NewFromFloat(0.0000001)) {
			t.Errorf("AmericanToDecimal(%d) = %s, want %s", c.american, got, want)
		}
	}
}

func TestAmericanToDecimalZero(t *testing.T) {
	_, err := domain.AmericanToDecimal(0)
	if !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("AmericanToDecimal(0) err = %v, want ErrInvalidOdds", err)
	}
}

// TestSinglePayout checks rounding at the money boundary: 2 places, half away
// from zero.
func TestSinglePayout(t *testing.T) {
	cases := []struct {
		stake    int64
		american int64
		want     string
	}{
		{50, 150, "125"},    // 50 × 2.5
		{110, -110, "210"},  // 110 × 21/11 is exact
		{25, -110, "47.73"}, // 47.7272… rounds up
		{100, -200, "150"},
	}
	for _, c := range cases {
		odds, err := domain.AmericanToDecimal(c.american)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%d): %v", c.american, err)
		}
		got := domain.SinglePayout(decimal.NewFromInt(c.stake), odds)
		want, _ := decimal.NewFromString(c.want)
		if !got.Equal(want) {
			t.Errorf("SinglePayout(%d, %d) = %s, want %s", c.stake, c.american, got, want)
		}
	}
}

// TestParlayMath validates the three-leg reference parlay.
//
//	Legs: -110, +150, -200 → 1.9090… × 2.5 × 1.5 ≈ 7.1591
//	Stake 100 → return 715.91, profit 615.91
func TestParlayMath(t *testing.T) {
	legs := []int64{-110, 150, -200}
	stake := decimal.NewFromInt(100)

	quote, err := domain.ParlayProfit(stake, legs)
	if err != nil {
		t.Fatalf("ParlayProfit: %v", err)
	}

	wantOdds, _ := decimal.NewFromString("7.1591")
	if !quote.DecimalOdds.Equal(wantOdds) {
		t.Errorf("decimal odds = %s, want %s", quote.DecimalOdds, wantOdds)
	}
	wantReturn, _ := decimal.NewFromString("715.91")
	if !quote.Return.Equal(wantReturn) {
		t.Errorf("return = %s, want %s", quote.Return, wantReturn)
	}
	wantProfit, _ := decimal.NewFromString("615.91")
	if !quote.Profit.Equal(wantProfit) {
		t.Errorf("profit = %s, want %s", quote.Profit, wantProfit)
	}
}

// TestParlayRoundingBoundary ensures intermediate odds keep full precision:
// rounding each leg first would drift the final return.
func TestParlayRoundingBoundary(t *testing.T) {
	legs := []int64{-110, -110, -110}
	stake := decimal.NewFromInt(100)

	payout, err := domain.ParlayPayout(stake, legs)
	if err != nil {
		t.Fatalf("ParlayPayout: %v", err)
	}

	// (21/11)^3 × 100 = 926100/1331 = 695.7926...
	want, _ := decimal.NewFromString("695.79")
	if !payout.Equal(want) {
		t.Errorf("payout = %s, want %s", payout, want)
	}
}

func TestParlayLegValidation(t *testing.T) {
	if _, err := domain.ParlayDecimalOdds([]int64{-110}); !errors.Is(err, domain.ErrInvalidParlay) {
		t.Errorf("one leg err = %v, want ErrInvalidParlay", err)
	}
	if _, err := domain.ParlayDecimalOdds(nil); !errors.Is(err, domain.ErrInvalidParlay) {
		t.Errorf("no legs err = %v, want ErrInvalidParlay", err)
	}
	if _, err := domain.ParlayDecimalOdds([]int64{-110, 0}); !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("zero leg err = %v, want ErrInvalidOdds", err)
	}
}

// TestNetResult checks the per-bet balance contribution used by settlement.
func TestNetResult(t *testing.T) {
	won := &domain.Bet{
		Status:          domain.BetStatusWon,
		Amount:          decimal.NewFromInt(20),
		PotentialPayout: decimal.NewFromFloat(38.18),
	}
	if want, _ := decimal.NewFromString("18.18"); !won.NetResult().Equal(want) {
		t.Errorf("won net = %s, want %s", won.NetResult(), want)
	}

	lost := &domain.Bet{Status: domain.BetStatusLost, Amount: decimal.NewFromInt(30)}
	if want := decimal.NewFromInt(-30); !lost.NetResult().Equal(want) {
		t.Errorf("lost net = %s, want %s", lost.NetResult(), want)
	}

	for _, s := range []domain.BetStatus{domain.BetStatusPending, domain.BetStatusLocked, domain.BetStatusCancelled} {
		b := &domain.Bet{Status: s, Amount: decimal.NewFromInt(50), PotentialPayout: decimal.NewFromInt(75)}
		if !b.NetResult().IsZero() {
			t.Errorf("%s net = %s, want 0", s, b.NetResult())
		}
	}
}
