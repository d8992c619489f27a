package models

type Sponsor struct {
	ID      int     `json:"id" db:"id"`
	TeamID  int     `json:"team_id" db:"team_id"`
	Name    string  `json:"name" db:"name"`
	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
