package models

// ScheduledFixture is a generated pairing not yet written to the database.
type ScheduledFixture struct {
	Round      int    `json:"round"`
	Sequence   int    `json:"sequence"`
	HomeTeamID int    `json:"home_team_id"`
	HomeTeam   string `json:"home_team"`
	AwayTeamID int    `json:"away_team_id"`
	AwayTeam   string `json:"away_team"`
}

type SchedulePreview struct {
	ChampionshipID  int                `json:"championship_id"`
	Fingerprint     string             `json:"fingerprint"`
	Generator       string             `json:"generator"`
	Rounds          int                `json:"rounds"`
	Fixtures        []ScheduledFixture `json:"fixtures"`
	Byes            map[int][]int      `json:"byes,omitempty"`
	ExistingMatches int                `json:"existing_matches"`
	RecordedResults int                `json:"recorded_results"`
}

type ScheduleResult struct {
	ChampionshipID int     `json:"championship_id"`
	Rounds         int     `json:"rounds"`
	Matches        []Match `json:"matches"`
	Discarded      int     `json:"discarded_matches"`
}
