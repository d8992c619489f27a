package fixtures

import "fmt"

// Generator produces a fixture list for an ordered set of participants.
type Generator[T comparable] interface {
	Generate(participants []T) (Schedule[T], error)

	Name() string
}

type roundRobinGenerator[T comparable] struct {
	legs int
}

// NewRoundRobinGenerator returns a single (legs=1) or double (legs=2)
// round-robin generator.
func NewRoundRobinGenerator[T comparable](legs int) (Generator[T], error) {
	if legs != 1 && legs != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLegs, legs)
	}
	return &roundRobinGenerator[T]{legs: legs}, nil
}

func (g *roundRobinGenerator[T]) Generate(participants []T) (Schedule[T], error) {
	if g.legs == 2 {
		return GenerateDoubleSchedule(participants)
	}
	return GenerateSchedule(participants)
}

func (g *roundRobinGenerator[T]) Name() string {
	if g.legs == 2 {
		return "DoubleRoundRobin"
	}
	return "RoundRobin"
}
