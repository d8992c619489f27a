package models

import "time"

type Athlete struct {
	ID          int       `json:"id" db:"id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	Name        string    `json:"name" db:"name"`
	ShirtNumber *int      `json:"shirt_number,omitempty" db:"shirt_number"`
	Position    *string   `json:"position,omitempty" db:"position"`
	Document    *string   `json:"document,omitempty" db:"document"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
