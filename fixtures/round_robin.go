// Package fixtures builds round-robin match schedules using the circle method.
package fixtures

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParticipantCount = errors.New("at least two participants are required")
	ErrInvalidLegs             = errors.New("legs must be 1 or 2")
)

// Fixture is a single pairing. Its position inside a Schedule is its
// sequence within the round.
type Fixture[T comparable] struct {
	Round int `json:"round"`
	Home  T   `json:"home"`
	Away  T   `json:"away"`
}

type Schedule[T comparable] []Fixture[T]

// GenerateSchedule returns a single round-robin for participants.
//
// The first participant stays fixed while the others rotate one position per
// round. When the count is odd a bye slot is added and every pairing against
// it is dropped, so each participant rests exactly once. Home and away flip on
// every odd round. The input slice is not modified and the result depends only
// on its order. Duplicate participants are not detected.
func GenerateSchedule[T comparable](participants []T) (Schedule[T], error) {
	n := len(participants)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParticipantCount, n)
	}

	// Work on indices so the bye never has to be a value of T.
	size := n
	if size%2 != 0 {
		size++
	}
	bye := n

	rotating := make([]int, size-1)
	for i := range rotating {
		rotating[i] = i + 1
	}
	const fixed = 0

	schedule := make(Schedule[T], 0, n*(n-1)/2)
	for r := 0; r < size-1; r++ {
		pairs := make([][2]int, 0, size/2)
		pairs = append(pairs, [2]int{fixed, rotating[0]})
		for i := 1; i < size/2; i++ {
			pairs = append(pairs, [2]int{rotating[i], rotating[size-1-i]})
		}

		for _, p := range pairs {
			home, away := p[0], p[1]
			if r%2 == 1 {
				home, away = away, home
			}
			if home == bye || away == bye {
				continue
			}
			schedule = append(schedule, Fixture[T]{
				Round: r + 1,
				Home:  participants[home],
				Away:  participants[away],
			})
		}

		last := rotating[len(rotating)-1]
		copy(rotating[1:], rotating[:len(rotating)-1])
		rotating[0] = last
	}

	return schedule, nil
}

// GenerateDoubleSchedule returns the single round-robin followed by its
// mirror: the same pairings in the same order with home and away swapped and
// rounds numbered after the first leg.
func GenerateDoubleSchedule[T comparable](participants []T) (Schedule[T], error) {
	first, err := GenerateSchedule(participants)
	if err != nil {
		return nil, err
	}

	rounds := first.Rounds()
	schedule := make(Schedule[T], 0, len(first)*2)
	schedule = append(schedule, first...)
	for _, f := range first {
		schedule = append(schedule, Fixture[T]{
			Round: f.Round + rounds,
			Home:  f.Away,
			Away:  f.Home,
		})
	}
	return schedule, nil
}

// Rounds returns the highest round number in the schedule.
func (s Schedule[T]) Rounds() int {
	rounds := 0
	for _, f := range s {
		if f.Round > rounds {
			rounds = f.Round
		}
	}
	return rounds
}

// ByRound groups fixtures by round; index 0 holds round 1.
func (s Schedule[T]) ByRound() [][]Fixture[T] {
	grouped := make([][]Fixture[T], s.Rounds())
	for _, f := range s {
		grouped[f.Round-1] = append(grouped[f.Round-1], f)
	}
	return grouped
}

// Byes reports, per round, which of participants do not play.
// Rounds in which everybody plays are omitted.
func (s Schedule[T]) Byes(participants []T) map[int][]T {
	byes := make(map[int][]T)
	for round, fixtures := range s.ByRound() {
		playing := make(map[T]bool, len(fixtures)*2)
		for _, f := range fixtures {
			playing[f.Home] = true
			playing[f.Away] = true
		}
		for _, p := range participants {
			if !playing[p] {
				byes[round+1] = append(byes[round+1], p)
			}
		}
	}
	return byes
}

// HomeCounts returns how many times each participant is the home side.
func (s Schedule[T]) HomeCounts() map[T]int {
	counts := make(map[T]int)
	for _, f := range s {
		counts[f.Home]++
	}
	return counts
}
