package models

// ChampionshipTypeInfo describes one competition format offered in the dashboard.
type ChampionshipTypeInfo struct {
	Code string `json:"code"`
	// Schedulable is false for formats the round-robin generator cannot serve.
	Schedulable bool `json:"schedulable"`
}

// SportCatalog lists the values accepted when creating a championship.
type SportCatalog struct {
	Sports      []string               `json:"sports"`
	Types       []ChampionshipTypeInfo `json:"types"`
	TieBreakers []TieBreaker           `json:"tie_breakers"`
	Defaults    ChampionshipConfig     `json:"default_config"`
}
