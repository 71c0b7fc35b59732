package domain

import (
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Odds math — pure functions, full precision until the payout boundary
// ──────────────────────────────────────────────────────────────────────────────

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// AmericanToDecimal converts American odds to their decimal multiplier.
//
//	positive a: a/100 + 1   (+150 → 2.5)
//	negative a: 100/|a| + 1 (-110 → 1.9090…)
//
// An American value of 0 has no decimal form and returns ErrInvalidOdds.
// The result keeps full precision; round only at payout time.
func AmericanToDecimal(american int64) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, ErrInvalidOdds
	}
	a := decimal.NewFromInt(american)
	if american > 0 {
		return a.Div(oneHundred).Add(one), nil
	}
	return oneHundred.Div(a.Abs()).Add(one), nil
}

// SinglePayout returns the total return of a winning single bet:
// stake × decimalOdds, rounded to 2 places, half away from zero.
func SinglePayout(stake, decimalOdds decimal.Decimal) decimal.Decimal {
	return stake.Mul(decimalOdds).Round(2)
}

// ParlayDecimalOdds multiplies the per-leg decimal odds of a parlay.
// Fewer than two legs returns ErrInvalidParlay; any zero leg returns
// ErrInvalidOdds. The leg-count ceiling is a policy decision enforced by the
// bet service, not here.
func ParlayDecimalOdds(americanLegs []int64) (decimal.Decimal, error) {
	if len(americanLegs) < 2 {
		return decimal.Zero, ErrInvalidParlay
	}
	combined := one
	for _, leg := range americanLegs {
		d, err := AmericanToDecimal(leg)
		if err != nil {
			return decimal.Zero, err
		}
		combined = combined.Mul(d)
	}
	return combined, nil
}

// ParlayPayout returns the total return of a winning parlay for the given
// stake, rounded to 2 places at the end only.
func ParlayPayout(stake decimal.Decimal, americanLegs []int64) (decimal.Decimal, error) {
	combined, err := ParlayDecimalOdds(americanLegs)
	if err != nil {
		return decimal.Zero, err
	}
	return SinglePayout(stake, combined), nil
}

// ParlayQuote is the full breakdown of a prospective parlay.
type ParlayQuote struct {
	Stake       decimal.Decimal `json:"stake"`
	DecimalOdds decimal.Decimal `json:"decimal_odds"` // 4 dp, display only
	Return      decimal.Decimal `json:"return"`       // 2 dp
	Profit      decimal.Decimal `json:"profit"`       // 2 dp
}

// ParlayProfit computes the quote for a parlay: combined odds (shown at 4 dp),
// total return and net profit (both 2 dp). The return is computed from the
// unrounded combined odds so the displayed odds never feed back into money.
func ParlayProfit(stake decimal.Decimal, americanLegs []int64) (ParlayQuote, error) {
	combined, err := ParlayDecimalOdds(americanLegs)
	if err != nil {
		return ParlayQuote{}, err
	}
	ret := SinglePayout(stake, combined)
	return ParlayQuote{
		Stake:       stake,
		DecimalOdds: combined.Round(4),
		Return:      ret,
		Profit:      ret.Sub(stake).Round(2),
	}, nil
}
