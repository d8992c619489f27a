package services

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Dosada05/championship-system/models"
)

// rankByPoints is the primary ordering applied before the configured tie-breakers.
const rankByPoints models.TieBreaker = "points"

// ComputeStandings builds the league table from completed matches.
//
// Teams are ranked by points, then by each configured tie-breaker in order,
// then by name and ID. head_to_head compares the points earned in matches
// played among the teams still tied at that step.
func ComputeStandings(teams []*models.Team, matches []*models.Match, cfg models.ChampionshipConfig) []models.Standing {
	rows := make([]*models.Standing, 0, len(teams))
	byTeam := make(map[int]*models.Standing, len(teams))
	for _, t := range teams {
		if t == nil {
			continue
		}
		if _, dup := byTeam[t.ID]; dup {
			continue
		}
		row := &models.Standing{TeamID: t.ID, TeamName: t.Name}
		rows = append(rows, row)
		byTeam[t.ID] = row
	}

	played := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m == nil || !m.HasResult() {
			continue
		}
		home, okHome := byTeam[m.HomeTeamID]
		away, okAway := byTeam[m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}
		played = append(played, m)
		applyResult(home, away, *m.HomeScore, *m.AwayScore, cfg)
	}

	slices.SortStableFunc(rows, func(a, b *models.Standing) int {
		if c := strings.Compare(a.TeamName, b.TeamName); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})

	criteria := append([]models.TieBreaker{rankByPoints}, cfg.TieBreakers...)
	groups := [][]*models.Standing{rows}
	for _, criterion := range criteria {
		next := make([][]*models.Standing, 0, len(groups))
		for _, group := range groups {
			if len(group) < 2 {
				next = append(next, group)
				continue
			}
			values := criterionValues(criterion, group, played, cfg)
			slices.SortStableFunc(group, func(a, b *models.Standing) int {
				return cmp.Compare(values[b.TeamID], values[a.TeamID])
			})
			start := 0
			for i := 1; i <= len(group); i++ {
				if i == len(group) || values[group[i].TeamID] != values[group[start].TeamID] {
					next = append(next, group[start:i])
					start = i
				}
			}
		}
		groups = next
	}

	standings := make([]models.Standing, 0, len(rows))
	for _, group := range groups {
		for _, row := range group {
			row.Position = len(standings) + 1
			standings = append(standings, *row)
		}
	}
	return standings
}

func applyResult(home, away *models.Standing, homeScore, awayScore int, cfg models.ChampionshipConfig) {
	home.Played++
	away.Played++
	home.GoalsFor += homeScore
	home.GoalsAgainst += awayScore
	away.GoalsFor += awayScore
	away.GoalsAgainst += homeScore
	home.GoalDifference = home.GoalsFor - home.GoalsAgainst
	away.GoalDifference = away.GoalsFor - away.GoalsAgainst

	switch {
	case homeScore > awayScore:
		home.Wins++
		away.Losses++
		home.Points += cfg.PointsWin
		away.Points += cfg.PointsLoss
	case homeScore < awayScore:
		away.Wins++
		home.Losses++
		away.Points += cfg.PointsWin
		home.Points += cfg.PointsLoss
	default:
		home.Draws++
		away.Draws++
		home.Points += cfg.PointsDraw
		away.Points += cfg.PointsDraw
	}
}

// criterionValues returns, per team of the group, the value to rank by (higher is better).
func criterionValues(criterion models.TieBreaker, group []*models.Standing, played []*models.Match, cfg models.ChampionshipConfig) map[int]int {
	values := make(map[int]int, len(group))
	switch criterion {
	case rankByPoints:
		for _, row := range group {
			values[row.TeamID] = row.Points
		}
	case models.TieBreakerWins:
		for _, row := range group {
			values[row.TeamID] = row.Wins
		}
	case models.TieBreakerGoalDifference:
		for _, row := range group {
			values[row.TeamID] = row.GoalDifference
		}
	case models.TieBreakerGoalsFor:
		for _, row := range group {
			values[row.TeamID] = row.GoalsFor
		}
	case models.TieBreakerHeadToHead:
		mini := make(map[int]*models.Standing, len(group))
		for _, row := range group {
			mini[row.TeamID] = &models.Standing{TeamID: row.TeamID}
		}
		for _, m := range played {
			home, okHome := mini[m.HomeTeamID]
			away, okAway := mini[m.AwayTeamID]
			if okHome && okAway {
				applyResult(home, away, *m.HomeScore, *m.AwayScore, cfg)
			}
		}
		for id, row := range mini {
			values[id] = row.Points
		}
	}
	return values
}
