package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

// Match is a persisted fixture. Scores stay nil until a result is recorded.
type Match struct {
	ID             int         `json:"id" db:"id"`
	ChampionshipID int         `json:"championship_id" db:"championship_id"`
	Round          int         `json:"round" db:"round"`
	Sequence       int         `json:"sequence" db:"sequence"`
	HomeTeamID     int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID     int         `json:"away_team_id" db:"away_team_id"`
	HomeScore      *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore      *int        `json:"away_score,omitempty" db:"away_score"`
	Status         MatchStatus `json:"status" db:"status"`
	ScheduledAt    *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	HomeTeam *Team `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team `json:"away_team,omitempty" db:"-"`
}

// HasResult reports whether the match counts for the table.
func (m Match) HasResult() bool {
	return m.Status == MatchStatusCompleted && m.HomeScore != nil && m.AwayScore != nil
}
