package fixtures

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 100 + i*7
	}
	return ids
}

type pair struct{ a, b int }

func unordered(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

func TestGenerateSchedule_FourTeams(t *testing.T) {
	got, err := GenerateSchedule([]string{"T1", "T2", "T3", "T4"})
	require.NoError(t, err)

	want := Schedule[string]{
		{Round: 1, Home: "T1", Away: "T2"},
		{Round: 1, Home: "T3", Away: "T4"},
		{Round: 2, Home: "T4", Away: "T1"},
		{Round: 2, Home: "T3", Away: "T2"},
		{Round: 3, Home: "T1", Away: "T3"},
		{Round: 3, Home: "T4", Away: "T2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schedule mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, got.Rounds())
	for _, round := range got.ByRound() {
		assert.Len(t, round, 2)
	}
}

func TestGenerateSchedule_ThreeTeams(t *testing.T) {
	teams := []string{"T1", "T2", "T3"}
	got, err := GenerateSchedule(teams)
	require.NoError(t, err)

	want := Schedule[string]{
		{Round: 1, Home: "T1", Away: "T2"},
		{Round: 2, Home: "T3", Away: "T2"},
		{Round: 3, Home: "T1", Away: "T3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schedule mismatch (-want +got):\n%s", diff)
	}

	byes := got.Byes(teams)
	assert.Equal(t, map[int][]string{1: {"T3"}, 2: {"T1"}, 3: {"T2"}}, byes)
}

func TestGenerateSchedule_TooFewParticipants(t *testing.T) {
	tests := []struct {
		name  string
		input []int
	}{
		{name: "nil", input: nil},
		{name: "empty", input: []int{}},
		{name: "single", input: []int{42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSchedule(tt.input)
			assert.ErrorIs(t, err, ErrInvalidParticipantCount)
			assert.Nil(t, got)

			got, err = GenerateDoubleSchedule(tt.input)
			assert.ErrorIs(t, err, ErrInvalidParticipantCount)
			assert.Nil(t, got)
		})
	}
}

func TestGenerateSchedule_Properties(t *testing.T) {
	for n := 2; n <= 40; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ids := teamIDs(n)
			s, err := GenerateSchedule(ids)
			require.NoError(t, err)

			require.Len(t, s, n*(n-1)/2)

			seen := make(map[pair]int)
			for _, f := range s {
				require.NotEqual(t, f.Home, f.Away, "self pairing in round %d", f.Round)
				seen[unordered(f.Home, f.Away)]++
			}
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					assert.Equal(t, 1, seen[unordered(ids[i], ids[j])], "pair %d-%d", ids[i], ids[j])
				}
			}

			wantRounds := n - 1
			perRound := n / 2
			if n%2 != 0 {
				wantRounds = n
				perRound = (n - 1) / 2
			}
			require.Equal(t, wantRounds, s.Rounds())

			for r, round := range s.ByRound() {
				assert.Len(t, round, perRound, "round %d", r+1)
				playing := make(map[int]bool)
				for _, f := range round {
					assert.False(t, playing[f.Home], "team %d twice in round %d", f.Home, r+1)
					assert.False(t, playing[f.Away], "team %d twice in round %d", f.Away, r+1)
					playing[f.Home] = true
					playing[f.Away] = true
				}
			}

			byes := s.Byes(ids)
			if n%2 == 0 {
				assert.Empty(t, byes)
			} else {
				rested := make(map[int]int)
				for _, teams := range byes {
					require.Len(t, teams, 1)
					rested[teams[0]]++
				}
				for _, id := range ids {
					assert.Equal(t, 1, rested[id], "team %d byes", id)
				}
			}

			limit := (wantRounds+1)/2 + 1
			for id, home := range s.HomeCounts() {
				assert.LessOrEqual(t, home, limit, "team %d home count", id)
			}
		})
	}
}

func TestGenerateSchedule_Deterministic(t *testing.T) {
	names := make([]string, 11)
	for i := range names {
		names[i] = fmt.Sprintf("%s %d", gofakeit.City(), i)
	}

	first, err := GenerateSchedule(names)
	require.NoError(t, err)
	second, err := GenerateSchedule(names)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("two runs differ (-first +second):\n%s", diff)
	}
}

func TestGenerateSchedule_DoesNotMutateInput(t *testing.T) {
	ids := teamIDs(7)
	before := append([]int(nil), ids...)

	_, err := GenerateSchedule(ids)
	require.NoError(t, err)
	assert.Equal(t, before, ids)
}

func TestGenerateDoubleSchedule(t *testing.T) {
	for _, n := range []int{2, 3, 6, 9} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ids := teamIDs(n)
			single, err := GenerateSchedule(ids)
			require.NoError(t, err)
			double, err := GenerateDoubleSchedule(ids)
			require.NoError(t, err)

			require.Len(t, double, 2*len(single))
			assert.Equal(t, 2*single.Rounds(), double.Rounds())
			assert.Equal(t, single, double[:len(single)])

			ordered := make(map[[2]int]int)
			for _, f := range double {
				ordered[[2]int{f.Home, f.Away}]++
			}
			for _, a := range ids {
				for _, b := range ids {
					if a == b {
						continue
					}
					assert.Equal(t, 1, ordered[[2]int{a, b}], "%d hosting %d", a, b)
				}
			}

			for i, f := range single {
				mirror := double[len(single)+i]
				assert.Equal(t, f.Round+single.Rounds(), mirror.Round)
				assert.Equal(t, f.Home, mirror.Away)
				assert.Equal(t, f.Away, mirror.Home)
			}
		})
	}
}

func TestNewRoundRobinGenerator(t *testing.T) {
	single, err := NewRoundRobinGenerator[int](1)
	require.NoError(t, err)
	assert.Equal(t, "RoundRobin", single.Name())

	double, err := NewRoundRobinGenerator[int](2)
	require.NoError(t, err)
	assert.Equal(t, "DoubleRoundRobin", double.Name())

	s, err := double.Generate(teamIDs(4))
	require.NoError(t, err)
	assert.Len(t, s, 12)

	_, err = NewRoundRobinGenerator[int](3)
	assert.ErrorIs(t, err, ErrInvalidLegs)
}
