package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-system/models"
)

func completed(home, away, homeScore, awayScore int) *models.Match {
	return &models.Match{
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
		Status:     models.MatchStatusCompleted,
	}
}

func standingOrder(standings []models.Standing) []int {
	ids := make([]int, 0, len(standings))
	for _, s := range standings {
		ids = append(ids, s.TeamID)
	}
	return ids
}

func TestComputeStandings_PointsAndTotals(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "Aurora"}, {ID: 2, Name: "Bonsucesso"}, {ID: 3, Name: "Canarinhos"}}
	matches := []*models.Match{
		completed(1, 2, 2, 0),
		completed(2, 3, 1, 1),
		completed(1, 3, 1, 0),
	}

	standings := ComputeStandings(teams, matches, models.DefaultChampionshipConfig())
	require.Len(t, standings, 3)
	// Bonsucesso and Canarinhos are level on points and wins; goal difference splits them.
	assert.Equal(t, []int{1, 3, 2}, standingOrder(standings))

	leader := standings[0]
	assert.Equal(t, 1, leader.Position)
	assert.Equal(t, 2, leader.Played)
	assert.Equal(t, 2, leader.Wins)
	assert.Equal(t, 3, leader.GoalsFor)
	assert.Equal(t, 0, leader.GoalsAgainst)
	assert.Equal(t, 3, leader.GoalDifference)
	assert.Equal(t, 6, leader.Points)

	assert.Equal(t, 1, standings[1].Points)
	assert.Equal(t, -1, standings[1].GoalDifference)
	assert.Equal(t, 3, standings[2].Position)
	assert.Equal(t, -2, standings[2].GoalDifference)
}

func TestComputeStandings_CustomPoints(t *testing.T) {
	cfg := models.DefaultChampionshipConfig()
	cfg.PointsWin, cfg.PointsDraw, cfg.PointsLoss = 2, 1, 1
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	standings := ComputeStandings(teams, []*models.Match{completed(2, 1, 3, 2)}, cfg)
	require.Len(t, standings, 2)
	assert.Equal(t, 2, standings[0].TeamID)
	assert.Equal(t, 2, standings[0].Points)
	assert.Equal(t, 1, standings[1].Points)
	assert.Equal(t, 1, standings[1].Losses)
}

func TestComputeStandings_HeadToHead(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	// A and B finish on 3 points; B has the better goal difference but lost to A.
	matches := []*models.Match{
		completed(1, 2, 1, 0),
		completed(2, 3, 5, 0),
	}

	cfg := models.DefaultChampionshipConfig()
	cfg.TieBreakers = []models.TieBreaker{models.TieBreakerHeadToHead}
	assert.Equal(t, []int{1, 2, 3}, standingOrder(ComputeStandings(teams, matches, cfg)))

	cfg.TieBreakers = []models.TieBreaker{models.TieBreakerGoalDifference, models.TieBreakerHeadToHead}
	assert.Equal(t, []int{2, 1, 3}, standingOrder(ComputeStandings(teams, matches, cfg)))
}

func TestComputeStandings_IgnoresUnplayedAndForeignMatches(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "Zebra"}, {ID: 2, Name: "Alpha"}}
	matches := []*models.Match{
		{HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchStatusScheduled},
		{HomeTeamID: 1, AwayTeamID: 2, HomeScore: intPtr(3), AwayScore: intPtr(0), Status: models.MatchStatusCanceled},
		completed(1, 99, 4, 0),
		nil,
	}

	standings := ComputeStandings(teams, matches, models.DefaultChampionshipConfig())
	require.Len(t, standings, 2)
	assert.Equal(t, []int{2, 1}, standingOrder(standings), "level teams fall back to name order")
	for _, s := range standings {
		assert.Zero(t, s.Played)
		assert.Zero(t, s.Points)
	}
}

func TestComputeStandings_SkipsDuplicateTeams(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 1, Name: "A"}, nil, {ID: 2, Name: "B"}}
	standings := ComputeStandings(teams, []*models.Match{completed(1, 2, 0, 0)}, models.DefaultChampionshipConfig())
	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Draws)
	assert.Equal(t, 1, standings[0].Points)
}
