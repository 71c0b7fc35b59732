package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

// TestConcurrentWeeklyBudgetGuard simulates 50 goroutines simultaneously
// staking against one participant's weekly allowance — protected by a mutex.
// This test verifies our concurrency guard pattern compiles and passes -race.
//
// In the real BetService, the FOR UPDATE lock on the league_members row plus
// the in-transaction staked sum provide this guarantee.  Here we replicate the
// same guard with sync primitives so the race detector can confirm the
// pattern is sound.
func TestConcurrentWeeklyBudgetGuard(t *testing.T) {
	const workers = 50
	const stakeEach = 10

	budget := decimal.NewFromInt(100) // allows exactly 10 stakes of 10
	staked := decimal.Zero
	var mu sync.Mutex
	var accepted, rejected int64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			stake := decimal.NewFromInt(stakeEach)

			mu.Lock()
			defer mu.Unlock()

			if staked.Add(stake).GreaterThan(budget) {
				atomic.AddInt64(&rejected, 1)
				return
			}
			staked = staked.Add(stake)
			atomic.AddInt64(&accepted, 1)
		}()
	}
	wg.Wait()

	// Exactly budget/stake bets fit; the rest must bounce off the cap.
	if accepted != 10 {
		t.Errorf("accepted = %d, want 10", accepted)
	}
	if rejected != workers-10 {
		t.Errorf("rejected = %d, want %d", rejected, workers-10)
	}
	if !staked.Equal(budget) {
		t.Errorf("total staked = %s, want %s", staked, budget)
	}
}

// TestConcurrentSettlementGuard verifies that the settled-once protection
// works under concurrent access: only one of N goroutines settles a matchup.
func TestConcurrentSettlementGuard(t *testing.T) {
	const workers = 20
	type matchupState struct {
		mu      sync.Mutex
		settled bool
	}

	var (
		m      matchupState
		wins   int64
		noops  int64
		wg     sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			m.mu.Lock()
			defer m.mu.Unlock()

			if m.settled {
				// Second+ call: silent no-op, like the settled_at guard
				atomic.AddInt64(&noops, 1)
				return
			}
			m.settled = true
			atomic.AddInt64(&wins, 1)
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("exactly 1 goroutine should have settled the matchup, got %d", wins)
	}
	if noops != workers-1 {
		t.Errorf("expected %d no-ops, got %d", workers-1, noops)
	}
}
