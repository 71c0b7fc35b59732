package domain_test

import (
	"errors"
	"testing"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/google/uuid"
)

func makeParticipants(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

// TestRoundRobinSixParticipants checks the full-season invariants for the
// common league size: three pairings a week, everyone plays exactly once,
// and a full cycle meets every opponent exactly once.
func TestRoundRobinSixParticipants(t *testing.T) {
	participants := makeParticipants(6)

	schedule, err := domain.RoundRobinSchedule(participants, 14)
	if err != nil {
		t.Fatalf("RoundRobinSchedule: %v", err)
	}
	if len(schedule) != 14 {
		t.Fatalf("weeks = %d, want 14", len(schedule))
	}

	opponents := map[uuid.UUID]map[uuid.UUID]int{}
	for _, id := range participants {
		opponents[id] = map[uuid.UUID]int{}
	}

	for week, pairings := range schedule {
		if len(pairings) != 3 {
			t.Fatalf("week %d: pairings = %d, want 3", week+1, len(pairings))
		}
		seen := map[uuid.UUID]bool{}
		for _, p := range pairings {
			if p.Home == p.Away {
				t.Fatalf("week %d: participant paired with itself", week+1)
			}
			if seen[p.Home] || seen[p.Away] {
				t.Fatalf("week %d: participant appears twice", week+1)
			}
			seen[p.Home], seen[p.Away] = true, true
			if week < 5 { // first full cycle
				opponents[p.Home][p.Away]++
				opponents[p.Away][p.Home]++
			}
		}
	}

	// Within the first n-1 rounds every pair meets exactly once.
	for _, a := range participants {
		for _, b := range participants {
			if a == b {
				continue
			}
			if opponents[a][b] != 1 {
				t.Errorf("first cycle: pair met %d times, want 1", opponents[a][b])
			}
		}
	}
}

// TestRoundRobinWraps verifies that rounds past a full cycle restart the
// rotation instead of failing or repeating a stale state.
func TestRoundRobinWraps(t *testing.T) {
	participants := makeParticipants(6)

	first, err := domain.RoundRobinRound(participants, 0)
	if err != nil {
		t.Fatalf("round 0: %v", err)
	}
	wrapped, err := domain.RoundRobinRound(participants, 5) // 5 mod 5 == 0
	if err != nil {
		t.Fatalf("round 5: %v", err)
	}
	if len(first) != len(wrapped) {
		t.Fatalf("pairing counts differ: %d vs %d", len(first), len(wrapped))
	}
	for i := range first {
		if first[i] != wrapped[i] {
			t.Errorf("pairing %d: round 5 != round 0", i)
		}
	}
}

// TestRoundRobinOddRoster checks the bye: five participants produce two
// pairings a week with one participant sitting out.
func TestRoundRobinOddRoster(t *testing.T) {
	participants := makeParticipants(5)

	for round := 0; round < 10; round++ {
		pairings, err := domain.RoundRobinRound(participants, round)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(pairings) != 2 {
			t.Fatalf("round %d: pairings = %d, want 2", round, len(pairings))
		}
		seen := map[uuid.UUID]bool{}
		for _, p := range pairings {
			if p.Home == uuid.Nil || p.Away == uuid.Nil {
				t.Fatalf("round %d: bye slot leaked into a pairing", round)
			}
			if seen[p.Home] || seen[p.Away] {
				t.Fatalf("round %d: participant appears twice", round)
			}
			seen[p.Home], seen[p.Away] = true, true
		}
	}
}

func TestRoundRobinRejectsSmallRoster(t *testing.T) {
	_, err := domain.RoundRobinRound(makeParticipants(1), 0)
	if !errors.Is(err, domain.ErrInsufficientParticipants) {
		t.Errorf("err = %v, want ErrInsufficientParticipants", err)
	}
}

// TestPlayoffBracketFour checks the four-team shape: seeded semifinals plus a
// final whose sides reference the semifinal indices.
func TestPlayoffBracketFour(t *testing.T) {
	seeds := makeParticipants(6)

	slots, err := domain.PlayoffBracket(seeds, 4, 15)
	if err != nil {
		t.Fatalf("PlayoffBracket: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(slots))
	}

	if slots[0].Home != seeds[0] || slots[0].Away != seeds[3] {
		t.Errorf("semifinal 1 = %s v %s, want seed1 v seed4", slots[0].Home, slots[0].Away)
	}
	if slots[1].Home != seeds[1] || slots[1].Away != seeds[2] {
		t.Errorf("semifinal 2 = %s v %s, want seed2 v seed3", slots[1].Home, slots[1].Away)
	}
	if slots[0].Week != 15 || slots[1].Week != 15 {
		t.Errorf("semifinal weeks = %d/%d, want 15", slots[0].Week, slots[1].Week)
	}

	final := slots[2]
	if !final.Pending() {
		t.Error("final should start pending")
	}
	if final.Week != 16 {
		t.Errorf("final week = %d, want 16", final.Week)
	}
	if final.HomeSource == nil || *final.HomeSource != 0 {
		t.Error("final home should come from semifinal 1")
	}
	if final.AwaySource == nil || *final.AwaySource != 1 {
		t.Error("final away should come from semifinal 2")
	}
}

// TestPlayoffBracketSix checks byes for the top two seeds and the wildcard
// references feeding the semifinals.
func TestPlayoffBracketSix(t *testing.T) {
	seeds := makeParticipants(8)

	slots, err := domain.PlayoffBracket(seeds, 6, 15)
	if err != nil {
		t.Fatalf("PlayoffBracket: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("slots = %d, want 5", len(slots))
	}

	if slots[0].Home != seeds[2] || slots[0].Away != seeds[5] {
		t.Errorf("wildcard 1: want seed3 v seed6")
	}
	if slots[1].Home != seeds[3] || slots[1].Away != seeds[4] {
		t.Errorf("wildcard 2: want seed4 v seed5")
	}

	if slots[2].Home != seeds[0] || slots[2].AwaySource == nil || *slots[2].AwaySource != 1 {
		t.Errorf("semifinal 1: want seed1 v winner of wildcard 2")
	}
	if slots[3].Home != seeds[1] || slots[3].AwaySource == nil || *slots[3].AwaySource != 0 {
		t.Errorf("semifinal 2: want seed2 v winner of wildcard 1")
	}

	final := slots[4]
	if final.Week != 17 || final.HomeSource == nil || final.AwaySource == nil {
		t.Errorf("final should sit in week 17 with both sides pending")
	}
}

func TestPlayoffBracketClamps(t *testing.T) {
	// Three seeds with a four-team request collapse to a single final.
	seeds := makeParticipants(3)
	slots, err := domain.PlayoffBracket(seeds, 4, 15)
	if err != nil {
		t.Fatalf("PlayoffBracket: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(slots))
	}
	if slots[0].Home != seeds[0] || slots[0].Away != seeds[1] {
		t.Error("final should pair the top two seeds")
	}

	if _, err := domain.PlayoffBracket(makeParticipants(1), 4, 15); !errors.Is(err, domain.ErrInsufficientParticipants) {
		t.Errorf("err = %v, want ErrInsufficientParticipants", err)
	}
}
