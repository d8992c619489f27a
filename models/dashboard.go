package models

type ChampionshipOverview struct {
	ChampionshipID int `json:"championship_id"`
	TeamsTotal     int `json:"teams_total"`
	AthletesTotal  int `json:"athletes_total"`
	MatchesTotal   int `json:"matches_total"`
	MatchesPlayed  int `json:"matches_played"`
	RoundsTotal    int `json:"rounds_total"`
	SponsorsTotal  int `json:"sponsors_total"`
}

type PublicChampionship struct {
	Championship *Championship `json:"championship"`
	Teams        []Team        `json:"teams"`
	Matches      []Match       `json:"matches"`
	Standings    []Standing    `json:"standings,omitempty"`
}

type PlanInfo struct {
	Name             Plan     `json:"name"`
	Price            string   `json:"price"`
	Period           string   `json:"period"`
	MaxChampionships int      `json:"max_championships"`
	MaxTeams         int      `json:"max_teams"`
	Features         []string `json:"features"`
	Highlighted      bool     `json:"highlighted"`
}

type SiteInfo struct {
	Maintenance bool       `json:"maintenance"`
	Message     string     `json:"message,omitempty"`
	Plans       []PlanInfo `json:"plans"`
}
