package domain

import (
	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Round-robin schedule — circle method, pure function of the round index
// ──────────────────────────────────────────────────────────────────────────────

// Pairing is one head-to-head assignment within a week.
type Pairing struct {
	Home uuid.UUID
	Away uuid.UUID
}

// byeID marks the synthetic slot added when the roster is odd. Pairings
// against it are dropped; uuid.Nil is never a real participant.
var byeID = uuid.Nil

// RoundRobinRound returns the pairings for a single round, derived entirely
// from the round index. Round r uses rotation offset r mod (n-1), so rounds
// past a full cycle restart with fresh offsets and the same participant pool.
//
// Layout: participants[0] stays fixed in slot 0; the rest rotate one position
// per round. Slot i is paired against slot n-1-i. Pairings involving the bye
// slot are omitted.
func RoundRobinRound(participants []uuid.UUID, round int) ([]Pairing, error) {
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	pool := participants
	if len(pool)%2 == 1 {
		pool = append(append([]uuid.UUID{}, pool...), byeID)
	}

	n := len(pool)
	m := n - 1 // rotating slots
	k := round % m

	// slot returns the participant occupying position i after k rotations.
	slot := func(i int) uuid.UUID {
		if i == 0 {
			return pool[0]
		}
		return pool[1+((i-1-k)%m+m)%m]
	}

	pairings := make([]Pairing, 0, n/2)
	for i := 0; i < n/2; i++ {
		home, away := slot(i), slot(n-1-i)
		if home == byeID || away == byeID {
			continue
		}
		pairings = append(pairings, Pairing{Home: home, Away: away})
	}
	return pairings, nil
}

// RoundRobinSchedule returns one round of pairings per week. When weeks
// exceeds a full cycle (n-1 rounds) the rotation wraps and opponents repeat.
func RoundRobinSchedule(participants []uuid.UUID, weeks int) ([][]Pairing, error) {
	if weeks < 0 {
		weeks = 0
	}
	schedule := make([][]Pairing, 0, weeks)
	for round := 0; round < weeks; round++ {
		pairings, err := RoundRobinRound(participants, round)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, pairings)
	}
	return schedule, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Playoff bracket — pending slots carry references to their feeding matchups
// ──────────────────────────────────────────────────────────────────────────────

// BracketSlot is one playoff matchup. A side is either a seeded participant or
// pending: uuid.Nil plus the index (within the returned bracket) of the
// matchup whose winner fills it.
type BracketSlot struct {
	Week       int
	Round      int // 1-based playoff round
	Home       uuid.UUID
	Away       uuid.UUID
	HomeSource *int // bracket index feeding the home side, nil when seeded
	AwaySource *int
}

// Pending reports whether either side of the slot still awaits a winner.
func (s BracketSlot) Pending() bool {
	return s.Home == uuid.Nil || s.Away == uuid.Nil
}

// PlayoffBracket builds the playoff slots from final standings order
// (seeds[0] is the top seed). The field size is clamped to the roster, then
// snapped down to the nearest supported shape:
//
//	6+ seeds, teams=6: seeds 1-2 bye; wildcard 3v6 and 4v5; semifinals
//	  1 vs winner(4v5) and 2 vs winner(3v6); final.
//	4-5 seeds, or teams=4: semifinals 1v4 and 2v3; final.
//	2-3 seeds: a single final between the top two.
//
// Fewer than two seeds returns ErrInsufficientParticipants.
func PlayoffBracket(seeds []uuid.UUID, teams, startWeek int) ([]BracketSlot, error) {
	if len(seeds) < 2 {
		return nil, ErrInsufficientParticipants
	}
	if teams > len(seeds) {
		teams = len(seeds)
	}

	ref := func(i int) *int { return &i }

	switch {
	case teams >= 6:
		return []BracketSlot{
			{Week: startWeek, Round: 1, Home: seeds[2], Away: seeds[5]},
			{Week: startWeek, Round: 1, Home: seeds[3], Away: seeds[4]},
			{Week: startWeek + 1, Round: 2, Home: seeds[0], AwaySource: ref(1)},
			{Week: startWeek + 1, Round: 2, Home: seeds[1], AwaySource: ref(0)},
			{Week: startWeek + 2, Round: 3, HomeSource: ref(2), AwaySource: ref(3)},
		}, nil
	case teams >= 4:
		return []BracketSlot{
			{Week: startWeek, Round: 1, Home: seeds[0], Away: seeds[3]},
			{Week: startWeek, Round: 1, Home: seeds[1], Away: seeds[2]},
			{Week: startWeek + 1, Round: 2, HomeSource: ref(0), AwaySource: ref(1)},
		}, nil
	default:
		return []BracketSlot{
			{Week: startWeek, Round: 1, Home: seeds[0], Away: seeds[1]},
		}, nil
	}
}
