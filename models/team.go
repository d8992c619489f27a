package models

import "time"

type Team struct {
	ID             int       `json:"id" db:"id"`
	ChampionshipID int       `json:"championship_id" db:"championship_id"`
	Name           string    `json:"name" db:"name"`
	Coach          *string   `json:"coach,omitempty" db:"coach"`
	ContactPhone   *string   `json:"contact_phone,omitempty" db:"contact_phone"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Athletes []Athlete `json:"athletes,omitempty" db:"-"`
	Sponsors []Sponsor `json:"sponsors,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
